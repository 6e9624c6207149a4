package store

import (
	"time"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/schema"
	"github.com/stretchr/testify/mock"
)

// MockMetricsStore is a mock implementation of contract.MetricsStore for testing.
type MockMetricsStore struct {
	mock.Mock
}

var _ contract.MetricsStore = &MockMetricsStore{} // Compile-time check

// BeginRun mocks the BeginRun method.
func (m *MockMetricsStore) BeginRun(startTime time.Time, repository string, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, repository, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// RecordBatch mocks the RecordBatch method.
func (m *MockMetricsStore) RecordBatch(runID int64, batch schema.BatchResult) error {
	args := m.Called(runID, batch)
	return args.Error(0)
}

// EndRun mocks the EndRun method.
func (m *MockMetricsStore) EndRun(runID int64, endTime time.Time, batchCount int) error {
	args := m.Called(runID, endTime, batchCount)
	return args.Error(0)
}

// GetStatus mocks the GetStatus method.
func (m *MockMetricsStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// GetAllRuns mocks the GetAllRuns method.
func (m *MockMetricsStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schema.RunRecord), args.Error(1)
}

// GetBatchMetrics mocks the GetBatchMetrics method.
func (m *MockMetricsStore) GetBatchMetrics(runID int64) ([]schema.BatchMetricRecord, error) {
	args := m.Called(runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schema.BatchMetricRecord), args.Error(1)
}

// Close mocks the Close method.
func (m *MockMetricsStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
