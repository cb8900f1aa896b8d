package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"chunkdash/internal/chunking"
	"chunkdash/internal/datasource"
)

// MockSource is a mock for datasource.Source
type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchRecords(ctx context.Context, ds datasource.Dataset, start, end time.Time) ([]chunking.Record, error) {
	args := m.Called(ctx, ds, start, end)
	recs, _ := args.Get(0).([]chunking.Record)
	return recs, args.Error(1)
}

func (m *MockSource) FetchRecordsByMonthKeys(ctx context.Context, ds datasource.Dataset, keys []chunking.MonthKey) ([]chunking.Record, error) {
	args := m.Called(ctx, ds, keys)
	recs, _ := args.Get(0).([]chunking.Record)
	return recs, args.Error(1)
}

// MockPinger is a mock for datasource.Pinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fixedBreaker string

func (b fixedBreaker) State() string { return string(b) }
