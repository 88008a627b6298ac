package ports

import (
	"context"
	"ttgen/internal/domain"
)

// Contract for an external ray-theoretic travel-time solver.
// Implementations are deterministic and side-effect free for a fixed reference
// model. An empty Result is the NoArrival outcome; errors are solver failures.
type TravelTimeOracle interface {
	// Return every arrival of the given phase branches at one source depth and
	// epicentral distance.
	Compute(ctx context.Context, phases []string, depthKm float64, distanceDeg float64) (domain.Result, error)
}

// Optional extension of TravelTimeOracle that resolves a whole depth row.
type BatchTravelTimeOracle interface {
	TravelTimeOracle
	// Return one Result per distance, in the order of distancesDeg.
	ComputeRow(ctx context.Context, phases []string, depthKm float64, distancesDeg []float64) ([]domain.Result, error)
}
