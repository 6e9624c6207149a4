// Package result holds the validated accumulator every analyzer writes its
// per-batch metrics into.
package result

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/huangsam/teamsmell/schema"
)

// Errors returned by the accumulator. They signal integration bugs and abort the run.
var (
	ErrBatchIndex    = errors.New("batch index out of range")
	ErrInvalidValue  = errors.New("invalid metric value")
	ErrUnknownSmell  = errors.New("unknown smell code")
	ErrUnknownStream = errors.New("unknown collaboration stream")
)

type batchData struct {
	firstCommit time.Time
	lastCommit  time.Time
	coreDevs    []string
	smells      []schema.SmellCode
	values      []schema.MetricRow
	stats       []schema.StatRow
}

// Accumulator collects every per-batch metric of one run. It is not safe for
// concurrent use; the only way to change it is through its Add methods.
type Accumulator struct {
	dates   []time.Time
	batches []batchData
}

// New creates an accumulator with no registered batches.
func New() *Accumulator {
	return &Accumulator{}
}

// RegisterBatches sets the batch start dates and clears every accumulated series.
func (a *Accumulator) RegisterBatches(dates []time.Time) error {
	for i, d := range dates {
		if d.IsZero() {
			return fmt.Errorf("%w: batch %d has no start date", ErrInvalidValue, i)
		}
	}
	a.dates = slices.Clone(dates)
	a.batches = make([]batchData, len(dates))
	return nil
}

// Len is the number of registered batches.
func (a *Accumulator) Len() int {
	return len(a.dates)
}

// Dates returns a copy of the batch start dates.
func (a *Accumulator) Dates() []time.Time {
	return slices.Clone(a.dates)
}

func (a *Accumulator) batch(idx int) (*batchData, error) {
	if idx < 0 || idx >= len(a.batches) {
		return nil, fmt.Errorf("%w: %d of %d registered batches", ErrBatchIndex, idx, len(a.batches))
	}
	return &a.batches[idx], nil
}

// set records value under name. A repeated name keeps its first position and
// takes the last value written.
func (a *Accumulator) set(idx int, name string, value float64) error {
	b, err := a.batch(idx)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: empty metric name", ErrInvalidValue)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s is %v", ErrInvalidValue, name, value)
	}
	for i := range b.values {
		if b.values[i].Name == name {
			b.values[i].Value = value
			return nil
		}
	}
	b.values = append(b.values, schema.MetricRow{Name: name, Value: value})
	return nil
}

func (a *Accumulator) setCount(idx int, name string, n int) error {
	if n < 0 {
		if _, err := a.batch(idx); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s cannot be negative (%d)", ErrInvalidValue, name, n)
	}
	return a.set(idx, name, float64(n))
}

func (a *Accumulator) setFraction(idx int, name string, v float64) error {
	if v < 0 || v > 1 {
		if _, err := a.batch(idx); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s must be within [0,1] (%v)", ErrInvalidValue, name, v)
	}
	return a.set(idx, name, v)
}

func streamFor(stream schema.Stream) (streamNames, error) {
	names, ok := streamMetricNames[stream]
	if !ok {
		return streamNames{}, fmt.Errorf("%w: %q", ErrUnknownStream, stream)
	}
	return names, nil
}

// AddCommitCount records the number of commits of a batch.
func (a *Accumulator) AddCommitCount(idx, n int) error {
	return a.setCount(idx, CommitCount, n)
}

// AddDaysActive records the days between the first and last commit of a batch.
func (a *Accumulator) AddDaysActive(idx, days int) error {
	return a.setCount(idx, DaysActive, days)
}

// AddAuthorCount records the number of distinct authors of a batch.
func (a *Accumulator) AddAuthorCount(idx, n int) error {
	return a.setCount(idx, AuthorCount, n)
}

// AddSponsoredAuthorCount records the number of sponsored authors of a batch.
func (a *Accumulator) AddSponsoredAuthorCount(idx, n int) error {
	return a.setCount(idx, SponsoredAuthorCount, n)
}

// AddPercentageSponsoredAuthors records the sponsored share of authors, a fraction.
func (a *Accumulator) AddPercentageSponsoredAuthors(idx int, v float64) error {
	return a.setFraction(idx, PercentageSponsoredAuthors, v)
}

// AddTimezoneCount records the number of distinct author timezones of a batch.
func (a *Accumulator) AddTimezoneCount(idx, n int) error {
	return a.setCount(idx, TimezoneCount, n)
}

// AddFirstCommitDate records when the first commit of a batch was made.
func (a *Accumulator) AddFirstCommitDate(idx int, t time.Time) error {
	b, err := a.batch(idx)
	if err != nil {
		return err
	}
	if t.IsZero() {
		return fmt.Errorf("%w: zero first commit date", ErrInvalidValue)
	}
	b.firstCommit = t
	return nil
}

// AddLastCommitDate records when the last commit of a batch was made.
func (a *Accumulator) AddLastCommitDate(idx int, t time.Time) error {
	b, err := a.batch(idx)
	if err != nil {
		return err
	}
	if t.IsZero() {
		return fmt.Errorf("%w: zero last commit date", ErrInvalidValue)
	}
	b.lastCommit = t
	return nil
}

// AddEntityCount records the number of pull requests or issues of a batch.
func (a *Accumulator) AddEntityCount(stream schema.Stream, idx, n int) error {
	names, err := streamFor(stream)
	if err != nil {
		return err
	}
	return a.setCount(idx, names.count, n)
}

// AddCommentCount records the number of scored comments of a stream in a batch.
func (a *Accumulator) AddCommentCount(stream schema.Stream, idx, n int) error {
	names, err := streamFor(stream)
	if err != nil {
		return err
	}
	return a.setCount(idx, names.comments, n)
}

// AddCommentSentiment records the positive and negative comment counts of a stream.
func (a *Accumulator) AddCommentSentiment(stream schema.Stream, idx, positive, negative int) error {
	names, err := streamFor(stream)
	if err != nil {
		return err
	}
	if err := a.setCount(idx, names.positive, positive); err != nil {
		return err
	}
	return a.setCount(idx, names.negative, negative)
}

// AddNegativeRatio records the share of entities whose comments are generally negative.
func (a *Accumulator) AddNegativeRatio(stream schema.Stream, idx int, ratio float64) error {
	names, err := streamFor(stream)
	if err != nil {
		return err
	}
	return a.setFraction(idx, names.negativeRatio, ratio)
}

// AddToxicityPercentage records the share of toxic comments, a fraction.
func (a *Accumulator) AddToxicityPercentage(stream schema.Stream, idx int, v float64) error {
	names, err := streamFor(stream)
	if err != nil {
		return err
	}
	return a.setFraction(idx, names.toxicity, v)
}

// AddValue records any other named scalar metric. Recording the same name
// twice keeps the last value.
func (a *Accumulator) AddValue(idx int, name string, v float64) error {
	return a.set(idx, name, v)
}

// AddMetricData records the descriptive statistics of one metric.
func (a *Accumulator) AddMetricData(idx int, row schema.StatRow) error {
	b, err := a.batch(idx)
	if err != nil {
		return err
	}
	switch {
	case row.Metric == "":
		return fmt.Errorf("%w: empty metric name", ErrInvalidValue)
	case row.Count < 0:
		return fmt.Errorf("%w: %s count cannot be negative", ErrInvalidValue, row.Metric)
	case math.IsNaN(row.Mean) || math.IsInf(row.Mean, 0):
		return fmt.Errorf("%w: %s mean is %v", ErrInvalidValue, row.Metric, row.Mean)
	case math.IsNaN(row.Stdev) || math.IsInf(row.Stdev, 0) || row.Stdev < 0:
		return fmt.Errorf("%w: %s stdev is %v", ErrInvalidValue, row.Metric, row.Stdev)
	}
	b.stats = append(b.stats, row)
	return nil
}

// AddCoreDev records a high-centrality author of a batch.
func (a *Accumulator) AddCoreDev(idx int, dev string) error {
	b, err := a.batch(idx)
	if err != nil {
		return err
	}
	if dev == "" {
		return fmt.Errorf("%w: empty core developer", ErrInvalidValue)
	}
	if !slices.Contains(b.coreDevs, dev) {
		b.coreDevs = append(b.coreDevs, dev)
	}
	return nil
}

// AddSmell records a detected smell of a batch.
func (a *Accumulator) AddSmell(idx int, smell schema.SmellCode) error {
	b, err := a.batch(idx)
	if err != nil {
		return err
	}
	if _, ok := schema.ValidSmells[smell]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSmell, smell)
	}
	if !slices.Contains(b.smells, smell) {
		b.smells = append(b.smells, smell)
	}
	return nil
}

// Value returns a recorded scalar of a batch. Statistics rows are addressed
// by their expanded names, e.g. AuthorCommitCount_mean.
func (a *Accumulator) Value(idx int, name string) (float64, bool) {
	if idx < 0 || idx >= len(a.batches) {
		return 0, false
	}
	for _, row := range a.rows(idx) {
		if row.Name == name {
			return row.Value, true
		}
	}
	return 0, false
}

// CoreDevs returns a copy of the core developers of a batch.
func (a *Accumulator) CoreDevs(idx int) []string {
	if idx < 0 || idx >= len(a.batches) {
		return nil
	}
	return slices.Clone(a.batches[idx].coreDevs)
}

// Smells returns a copy of the smells detected in a batch.
func (a *Accumulator) Smells(idx int) []schema.SmellCode {
	if idx < 0 || idx >= len(a.batches) {
		return nil
	}
	return slices.Clone(a.batches[idx].smells)
}

// Stats returns a copy of the statistics rows of a batch.
func (a *Accumulator) Stats(idx int) []schema.StatRow {
	if idx < 0 || idx >= len(a.batches) {
		return nil
	}
	return slices.Clone(a.batches[idx].stats)
}

func (a *Accumulator) rows(idx int) []schema.MetricRow {
	b := a.batches[idx]
	rows := slices.Clone(b.values)
	for _, s := range b.stats {
		rows = append(rows, s.Rows()...)
	}
	return rows
}

// Snapshot returns a detached view of every batch.
func (a *Accumulator) Snapshot() []schema.BatchResult {
	out := make([]schema.BatchResult, len(a.batches))
	for i, b := range a.batches {
		out[i] = schema.BatchResult{
			Index:           i,
			Start:           a.dates[i],
			FirstCommitDate: b.firstCommit,
			LastCommitDate:  b.lastCommit,
			CoreDevs:        slices.Clone(b.coreDevs),
			Smells:          slices.Clone(b.smells),
			Metrics:         a.rows(i),
		}
	}
	return out
}
