package services

import (
	"math"
	"ttgen/internal/adapters/oracle"
	"ttgen/internal/domain"
)

// Synthetic crust: straight rays with v = v0 + k*z per wave type.
func crustTime(wave domain.WaveType, depthKm, distanceDeg float64) float64 {
	v := 5.8 + 0.0006*depthKm
	if wave == domain.WaveS {
		v = 3.36 + 0.00037*depthKm
	}
	return math.Hypot(domain.DegreesToKm(distanceDeg), depthKm) / v
}

// syntheticOracle answers the listed branches with crustal straight-ray
// times; Pg and Sg do not exist below the 20 km Conrad, and depth phases
// do not exist at the surface.
func syntheticOracle() oracle.MockFunc {
	return func(phase string, depthKm, distanceDeg float64) (float64, bool, error) {
		switch phase {
		case "P", "S":
			return crustTime(domain.LookupPhase(phase, false).Wave(), depthKm, distanceDeg) * 0.98, true, nil
		case "Pg", "Sg":
			if depthKm > 20 {
				return 0, false, nil
			}
			return crustTime(domain.LookupPhase(phase, false).Wave(), depthKm, distanceDeg), true, nil
		case "pP", "sS":
			if depthKm == 0 {
				return 0, false, nil
			}
			return crustTime(domain.LookupPhase(phase, false).Wave(), depthKm, distanceDeg) + depthKm/2, true, nil
		}
		return 0, false, nil
	}
}

func customGrid(depths []float64, end, step float64) GridConfig {
	cfg := DefaultGridConfig()
	cfg.Mode = domain.ModeCustom
	cfg.DepthSamples = depths
	cfg.DistanceRange = &DistanceRange{Start: 0, End: end, Step: step}
	return cfg
}
