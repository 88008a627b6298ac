package ports

import (
	"context"
	"ttgen/internal/domain"
)

// Destination for fully assembled tables.
type TableSink interface {
	WriteTable(ctx context.Context, table *domain.TravelTimeTable) error
}
