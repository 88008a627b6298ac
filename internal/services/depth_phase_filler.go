package services

import (
	"context"
	"ttgen/internal/domain"
	"ttgen/internal/ports"
)

// DepthPhaseFiller substitutes the direct phase for a depth phase at zero
// focal depth, where the surface-reflected leg does not exist. Using the direct
// time keeps the table continuous in depth for interpolation.
type DepthPhaseFiller struct {
	Oracle  ports.TravelTimeOracle
	Combine bool
}

// Fill returns the direct phase's value at depth 0 and the given distance,
// evaluated exactly as the direct phase's own table evaluates it.
// ok is false when the direct phase has no arrival either.
func (f DepthPhaseFiller) Fill(ctx context.Context, phase domain.Phase, distanceDeg float64) (float64, bool, error) {
	if !phase.IsDepthPhase {
		return 0, false, nil
	}

	direct := domain.LookupPhase(phase.DirectPhase(), f.Combine)
	return oracleValue(ctx, f.Oracle, direct, 0, distanceDeg)
}

// oracleValue is the oracle step of one table cell: the minimum-time accepted
// arrival, with a defined arrival at zero depth and distance recorded as 0.
func oracleValue(
	ctx context.Context,
	oracle ports.TravelTimeOracle,
	phase domain.Phase,
	depthKm float64,
	distanceDeg float64,
) (float64, bool, error) {
	res, err := oracle.Compute(ctx, phase.Members, depthKm, distanceDeg)
	if err != nil {
		return 0, false, &domain.SolverError{Phase: phase.Name, DepthKm: depthKm, DistanceDeg: distanceDeg, Err: err}
	}
	v, ok := acceptedValue(res, phase, depthKm, distanceDeg)
	return v, ok, nil
}

func acceptedValue(res domain.Result, phase domain.Phase, depthKm, distanceDeg float64) (float64, bool) {
	arr, ok := res.FirstAccepted(phase, distanceDeg)
	if !ok {
		return 0, false
	}
	if depthKm == 0 && distanceDeg == 0 {
		return 0, true
	}
	return arr.Time, true
}
