package collector

import (
	"context"

	"tariffwatch/internal/model"
)

// Fetcher defines the interface for retrieving one complete forecast snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) (*model.ForecastSnapshot, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Snapshot *model.ForecastSnapshot
	Err      error
	Calls    int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context) (*model.ForecastSnapshot, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Snapshot, nil
}
