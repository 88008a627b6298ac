package ports

import (
	"context"
	"ttgen/internal/domain"
)

// Port: persistent store of solver results keyed by query.
// Keys are built by the caller and treated as opaque strings.
type TravelTimeCache interface {
	// Fetch cached results; missing keys are absent from the map.
	GetMany(ctx context.Context, keys []string) (map[string]domain.Result, error)
	// Store results by key, overwriting existing entries.
	PutMany(ctx context.Context, results map[string]domain.Result) error
}
