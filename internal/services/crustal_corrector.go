package services

import (
	"math"
	"slices"
	"ttgen/internal/domain"

	"gonum.org/v1/gonum/stat"
)

// Near-surface velocity v(z) = V0 + K*z in km/s, z in km.
type CrustalVelocity struct {
	V0 float64
	K  float64
}

func (v CrustalVelocity) At(depthKm float64) float64 { return v.V0 + v.K*depthKm }

// Immutable crustal correction settings.
type CrustalConfig struct {
	P CrustalVelocity
	S CrustalVelocity

	// Envelope inside which gaps are filled.
	MaxDepth    float64 // km
	MaxDistance float64 // degrees

	// Crustal phases the corrector fills.
	Phases []string
}

// DefaultCrustalConfig uses the IASP91 upper-crust velocities with the small
// depth gradients that reproduce IASP91 Pg and Sg times.
func DefaultCrustalConfig() CrustalConfig {
	return CrustalConfig{
		P:           CrustalVelocity{V0: 5.8, K: 0.0006},
		S:           CrustalVelocity{V0: 3.36, K: 0.00037},
		MaxDepth:    35,
		MaxDistance: 10,
		Phases:      []string{"Pg", "Sg"},
	}
}

// WithModel takes V0 from the surface layer of a loaded velocity model.
func (c CrustalConfig) WithModel(m *domain.VelocityModel) CrustalConfig {
	if m == nil {
		return c
	}
	if vp, err := m.VelocityAt(0, domain.WaveP); err == nil {
		c.P.V0 = vp
	}
	if vs, err := m.VelocityAt(0, domain.WaveS); err == nil {
		c.S.V0 = vs
	}
	c.Phases = slices.Clone(c.Phases)
	return c
}

func (c CrustalConfig) Validate() error {
	if c.P.V0 <= 0 || c.S.V0 <= 0 {
		return domain.ConfigErrorf("crustal velocities must be positive")
	}
	if c.P.K < 0 || c.S.K < 0 {
		return domain.ConfigErrorf("crustal velocity gradients must not be negative")
	}
	if c.MaxDepth <= 0 || c.MaxDistance <= 0 {
		return domain.ConfigErrorf("crustal envelope must be positive")
	}
	return nil
}

// One oracle-defined travel time used to fit the velocity gradient.
type CrustalSample struct {
	DepthKm     float64
	DistanceDeg float64
	Time        float64
}

// CrustalCorrector fills oracle gaps of shallow crustal phases with
// straight-ray times through a smoothly depth-varying crust. It never
// overrides an oracle arrival.
type CrustalCorrector struct {
	cfg CrustalConfig
}

func NewCrustalCorrector(cfg CrustalConfig) *CrustalCorrector {
	cfg.Phases = slices.Clone(cfg.Phases)
	return &CrustalCorrector{cfg: cfg}
}

// Applies reports whether gaps of phase are filled by the corrector.
func (c *CrustalCorrector) Applies(phase domain.Phase) bool {
	return phase.IsCrustal && slices.Contains(c.cfg.Phases, phase.Name)
}

func (c *CrustalCorrector) Velocity(wave domain.WaveType) CrustalVelocity {
	if wave == domain.WaveS {
		return c.cfg.S
	}
	return c.cfg.P
}

// TravelTime returns the straight-ray time under v_crust. Cells outside the
// envelope yield a DomainError.
func (c *CrustalCorrector) TravelTime(phase domain.Phase, depthKm, distanceDeg float64) (float64, error) {
	if depthKm < 0 || depthKm > c.cfg.MaxDepth {
		return 0, &domain.DomainError{Quantity: "depth", Value: depthKm, Min: 0, Max: c.cfg.MaxDepth}
	}
	if distanceDeg < 0 || distanceDeg > c.cfg.MaxDistance {
		return 0, &domain.DomainError{Quantity: "distance", Value: distanceDeg, Min: 0, Max: c.cfg.MaxDistance}
	}

	v := c.Velocity(phase.Wave()).At(depthKm)
	return math.Hypot(domain.DegreesToKm(distanceDeg), depthKm) / v, nil
}

// Fit returns a corrector whose gradient for the phase's wave type is the
// least-squares slope, through the origin, of (v_eff - V0) against depth,
// where v_eff is the straight-ray velocity implied by each oracle time.
// V0 stays fixed. With fewer than two sampled depths, or a non-positive
// slope, the configured gradient is kept.
func (c *CrustalCorrector) Fit(phase domain.Phase, samples []CrustalSample) *CrustalCorrector {
	wave := phase.Wave()
	v0 := c.Velocity(wave).V0

	xs := make([]float64, 0, len(samples))
	ys := make([]float64, 0, len(samples))
	depths := make(map[float64]struct{})
	for _, s := range samples {
		if s.DepthKm > c.cfg.MaxDepth || s.DistanceDeg > c.cfg.MaxDistance || s.Time <= 0 {
			continue
		}
		path := math.Hypot(domain.DegreesToKm(s.DistanceDeg), s.DepthKm)
		if path == 0 {
			continue
		}
		xs = append(xs, s.DepthKm)
		ys = append(ys, path/s.Time-v0)
		depths[s.DepthKm] = struct{}{}
	}

	if len(depths) < 2 {
		return c
	}

	_, k := stat.LinearRegression(xs, ys, nil, true)
	if math.IsNaN(k) || k <= 0 {
		return c
	}

	cfg := c.cfg
	cfg.Phases = slices.Clone(cfg.Phases)
	if wave == domain.WaveS {
		cfg.S.K = k
	} else {
		cfg.P.K = k
	}
	return &CrustalCorrector{cfg: cfg}
}
