package oracle

import (
	"context"
	"math"
	"ttgen/internal/domain"
)

// Branches the straight-ray approximation answers, with their distance
// ranges in degrees.
var straightRayBranches = map[string][2]float64{
	"P":  {0, 180},
	"S":  {0, 180},
	"Pg": {0, 10},
	"Pb": {0, 10},
	"Sg": {0, 10},
	"Sb": {0, 10},
	"Pn": {2, 15},
	"Sn": {2, 15},
}

// StraightRayOracle approximates travel times through a local velocity model
// as t = hypot(distance_km, depth) / v(depth), using the velocity at the source
// depth. Depths below the model yield NoArrival.
type StraightRayOracle struct {
	model *domain.VelocityModel
}

func NewStraightRayOracle(model *domain.VelocityModel) *StraightRayOracle {
	return &StraightRayOracle{model: model}
}

func (o *StraightRayOracle) MaxDepth() float64 { return o.model.MaxDepth() }

func (o *StraightRayOracle) Compute(ctx context.Context, phases []string, depthKm, distanceDeg float64) (domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}
	if depthKm < 0 {
		return domain.Result{}, &domain.DomainError{Quantity: "depth", Value: depthKm, Min: 0, Max: o.model.MaxDepth()}
	}
	if depthKm > o.model.MaxDepth() {
		return domain.Result{}, nil
	}

	path := math.Hypot(domain.DegreesToKm(distanceDeg), depthKm)

	var res domain.Result
	for _, name := range phases {
		lim, ok := straightRayBranches[name]
		if !ok || distanceDeg < lim[0] || distanceDeg > lim[1] {
			continue
		}

		wave := domain.WaveP
		if name[0] == 'S' {
			wave = domain.WaveS
		}
		v, err := o.model.VelocityAt(depthKm, wave)
		if err != nil {
			// No S velocity in liquid layers.
			continue
		}
		res.Arrivals = append(res.Arrivals, domain.Arrival{Phase: name, Time: path / v})
	}
	return res, nil
}
