package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name  string
		data  []float64
		ok    bool
		count int
		mean  float64
		stdev float64
	}{
		{"empty", nil, false, 0, 0, 0},
		{"single", []float64{4}, true, 1, 4, 0},
		{"pair", []float64{2, 4}, true, 2, 3, 1.4142135623730951},
		{"constant", []float64{5, 5, 5}, true, 3, 5, 0},
		{"sample stdev", []float64{2, 4, 4, 4, 5, 5, 7, 9}, true, 8, 5, 2.138089935299395},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := Describe("Metric", tt.data)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, "Metric", row.Metric)
			assert.Equal(t, tt.count, row.Count)
			assert.InDelta(t, tt.mean, row.Mean, 1e-9)
			assert.InDelta(t, tt.stdev, row.Stdev, 1e-9)
		})
	}
}

func TestDescribeInts(t *testing.T) {
	row, ok := Describe("AuthorCommitCount", []int{1, 2, 3})
	require.True(t, ok)
	assert.Equal(t, 3, row.Count)
	assert.InDelta(t, 2.0, row.Mean, 1e-9)
	assert.InDelta(t, 1.0, row.Stdev, 1e-9)

	rows := row.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "AuthorCommitCount_count", rows[0].Name)
	assert.Equal(t, "AuthorCommitCount_mean", rows[1].Name)
	assert.Equal(t, "AuthorCommitCount_stdev", rows[2].Name)
}

func TestMeanAndRatio(t *testing.T) {
	assert.Equal(t, 0.0, Mean([]int(nil)))
	assert.InDelta(t, 2.5, Mean([]int{2, 3}), 1e-9)

	v, ok := Ratio(1, 4)
	assert.True(t, ok)
	assert.InDelta(t, 0.25, v, 1e-9)

	v, ok = Ratio(1, 0)
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)
}
