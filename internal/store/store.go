package store

import "tariffwatch/internal/model"

// Store persists the most recently fetched snapshot. Only the latest snapshot
// is kept; every Save replaces the previous one wholesale.
type Store interface {
	Save(snap *model.ForecastSnapshot) error
	Load() (*model.ForecastSnapshot, error)
	Close() error
}

// NoopStore is a no-op implementation used when SQLite is not configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Save(_ *model.ForecastSnapshot) error   { return nil }
func (n *NoopStore) Load() (*model.ForecastSnapshot, error) { return nil, nil }
func (n *NoopStore) Close() error                           { return nil }
