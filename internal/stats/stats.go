// Package stats computes the descriptive statistics rows reported per batch.
package stats

import (
	"github.com/huangsam/teamsmell/schema"
	"gonum.org/v1/gonum/stat"
)

// Number is any value a metric series can hold.
type Number interface {
	~int | ~int64 | ~float64
}

// Floats converts a series to float64.
func Floats[N Number](data []N) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

// Describe returns the count, mean and sample standard deviation of data.
// The standard deviation is 0 for fewer than two values. It returns false
// for an empty series, which produces no rows.
func Describe[N Number](metric string, data []N) (schema.StatRow, bool) {
	if len(data) == 0 {
		return schema.StatRow{Metric: metric}, false
	}
	values := Floats(data)
	row := schema.StatRow{Metric: metric, Count: len(values)}
	if len(values) < 2 {
		row.Mean = values[0]
		return row, true
	}
	row.Mean, row.Stdev = stat.MeanStdDev(values, nil)
	return row, true
}

// Mean returns the arithmetic mean of data, or 0 when empty.
func Mean[N Number](data []N) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(Floats(data), nil)
}

// Ratio returns num/den, or 0 and false when den is zero.
func Ratio(num, den float64) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	return num / den, true
}
