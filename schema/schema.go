// Package schema has the data model shared by every part of teamsmell.
package schema

import "time"

// Commit is a read-only snapshot of one repository commit.
type Commit struct {
	Hash        string
	AuthorName  string
	AuthorEmail string
	Author      string    // canonical identity, set by the identity resolver
	AuthoredAt  time.Time // keeps the author's timezone offset
	CommittedAt time.Time
	Message     string
}

// Tag is a repository tag with the number of commits it introduced.
type Tag struct {
	Name        string
	Date        time.Time
	CommitCount int
}

// Release is a published release on the remote source.
type Release struct {
	Name      string
	CreatedAt time.Time
	Author    string
}

// Collaboration is a pull request or issue retrieved from the remote source.
// ClosedAt holds the fetch time when the entity is still open.
type Collaboration struct {
	Number       int
	CreatedAt    time.Time
	ClosedAt     time.Time
	Open         bool
	Participants []string
	Comments     []string
	CommitCount  int // pull requests only
}

// MetricRow is one name/value metric of a batch.
type MetricRow struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// StatRow holds descriptive statistics for one metric of a batch.
// Stdev is zero when Count < 2.
type StatRow struct {
	Metric string  `json:"metric"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Stdev  float64 `json:"stdev"`
}

// Rows expands the statistics into the metric_count, metric_mean and metric_stdev rows.
func (s StatRow) Rows() []MetricRow {
	return []MetricRow{
		{Name: s.Metric + "_count", Value: float64(s.Count)},
		{Name: s.Metric + "_mean", Value: s.Mean},
		{Name: s.Metric + "_stdev", Value: s.Stdev},
	}
}
