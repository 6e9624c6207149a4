package result

import "github.com/huangsam/teamsmell/schema"

// Scalar metric names recorded per batch.
const (
	CommitCount                = "CommitCount"
	DaysActive                 = "DaysActive"
	AuthorCount                = "AuthorCount"
	SponsoredAuthorCount       = "SponsoredAuthorCount"
	PercentageSponsoredAuthors = "PercentageSponsoredAuthors"
	TimezoneCount              = "TimezoneCount"

	TagCount = "TagCount"
	FN       = "FN"

	NumberReleases       = "NumberReleases"
	NumberReleaseAuthors = "NumberReleaseAuthors"

	ACCL     = "ACCL"
	RPCPR    = "RPCPR"
	RPCIssue = "RPCIssue"

	NumberActiveExperiencedDevs = "NumberActiveExperiencedDevs"
	BusFactorNumber             = "BusFactorNumber"
	SponsoredTFC                = "SponsoredTFC"
	ExperiencedTFC              = "ExperiencedTFC"
)

// streamNames holds the per-stream metric names.
type streamNames struct {
	count, comments, positive, negative, negativeRatio, toxicity string
}

var streamMetricNames = map[schema.Stream]streamNames{
	schema.PullRequests: {
		count:         "NumberPRs",
		comments:      "NumberPRComments",
		positive:      "PRCommentsPositive",
		negative:      "PRCommentsNegative",
		negativeRatio: "PRCommentsNegativeRatio",
		toxicity:      "PRCommentsToxicityPercentage",
	},
	schema.Issues: {
		count:         "NumberIssues",
		comments:      "NumberIssueComments",
		positive:      "IssueCommentsPositive",
		negative:      "IssueCommentsNegative",
		negativeRatio: "IssueCommentsNegativeRatio",
		toxicity:      "IssueCommentsToxicityPercentage",
	},
}

// EntityCountName returns the name of the entity count metric of a stream, e.g. NumberPRs.
func EntityCountName(stream schema.Stream) string {
	return streamMetricNames[stream].count
}
