package oracle

import (
	"context"
	"ttgen/internal/domain"
	"ttgen/internal/ports"
)

// MergedOracle answers from a local model down to its maximum depth and from
// the reference oracle below it.
type MergedOracle struct {
	local     *StraightRayOracle
	reference ports.TravelTimeOracle
}

func NewMergedOracle(local *StraightRayOracle, reference ports.TravelTimeOracle) *MergedOracle {
	return &MergedOracle{local: local, reference: reference}
}

func (o *MergedOracle) pick(depthKm float64) ports.TravelTimeOracle {
	if depthKm <= o.local.MaxDepth() {
		return o.local
	}
	return o.reference
}

func (o *MergedOracle) Compute(ctx context.Context, phases []string, depthKm, distanceDeg float64) (domain.Result, error) {
	return o.pick(depthKm).Compute(ctx, phases, depthKm, distanceDeg)
}

func (o *MergedOracle) ComputeRow(ctx context.Context, phases []string, depthKm float64, distancesDeg []float64) ([]domain.Result, error) {
	return computeRow(ctx, o.pick(depthKm), phases, depthKm, distancesDeg)
}

// computeRow uses the oracle's row path when it has one.
func computeRow(
	ctx context.Context,
	o ports.TravelTimeOracle,
	phases []string,
	depthKm float64,
	distancesDeg []float64,
) ([]domain.Result, error) {
	if bo, ok := o.(ports.BatchTravelTimeOracle); ok {
		return bo.ComputeRow(ctx, phases, depthKm, distancesDeg)
	}

	out := make([]domain.Result, len(distancesDeg))
	for i, d := range distancesDeg {
		r, err := o.Compute(ctx, phases, depthKm, d)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}
