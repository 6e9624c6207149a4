package core

import (
	"context"
	"fmt"
)

// FeatureNames is the classifier feature vector, in order.
var FeatureNames = []string{
	"AuthorCount",
	"DaysActive",
	"CommitCount",
	"AuthorCommitCount_stdev",
	"commitCentrality_NumberHighCentralityAuthors",
	"commitCentrality_PercentageHighCentralityAuthors",
	"SponsoredAuthorCount",
	"PercentageSponsoredAuthors",
	"NumberPRs",
	"PRParticipantsCount_stdev",
	"PRParticipantsCount_mean",
	"NumberIssues",
	"IssueParticipantCount_stdev",
	"IssueCountPositiveComments_mean",
	"commitCentrality_Centrality_count",
	"commitCentrality_Centrality_stdev",
	"commitCentrality_Betweenness_count",
	"commitCentrality_Closeness_count",
	"commitCentrality_Density",
	"commitCentrality_CommunityAuthorCount_count",
	"commitCentrality_CommunityAuthorItemCount_mean",
	"commitCentrality_CommunityAuthorItemCount_stdev",
	"commitCentrality_CommunityAuthorCount_mean",
	"commitCentrality_CommunityAuthorCount_stdev",
	"TimezoneCount",
	"TimezoneCommitCount_mean",
	"TimezoneCommitCount_stdev",
	"TimezoneAuthorCount_mean",
	"TimezoneAuthorCount_stdev",
	"NumberReleases",
	"ReleaseCommitCount_mean",
	"ReleaseCommitCount_stdev",
	"FN",
	"PRDuration_mean",
	"IssueDuration_mean",
	"BusFactorNumber",
	"commitCentrality_TFN",
	"commitCentrality_TFC",
	"PRCommentsCount_mean",
	"PRCommitsCount_mean",
	"NumberIssueComments",
	"IssueCommentsCount_mean",
	"IssueCommentsCount_stdev",
	"PRCommentsToxicityPercentage",
	"IssueCommentsToxicityPercentage",
	"RPCPR",
	"RPCIssue",
	"IssueCountNegativeComments_mean",
	"PRCountNegativeComments_mean",
	"ACCL",
}

// features builds the classifier input of a batch. Missing metrics are 0.
func (a *analysis) features(idx int) []float64 {
	out := make([]float64, len(FeatureNames))
	var missing []string
	for i, name := range FeatureNames {
		v, ok := a.acc.Value(idx, name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		out[i] = v
	}
	if len(missing) > 0 {
		a.log.Warnw("Classifier features missing, using 0", "batch", idx, "count", len(missing), "features", missing)
	}
	return out
}

// detectSmells classifies one batch and records every predicted smell.
func (a *analysis) detectSmells(ctx context.Context, idx int) error {
	smells, err := a.deps.Classifier.Predict(ctx, a.features(idx))
	if err != nil {
		return fmt.Errorf("smell detection of batch %d: %w", idx, err)
	}
	for _, s := range smells {
		if err := a.acc.AddSmell(idx, s); err != nil {
			return err
		}
	}
	return nil
}
