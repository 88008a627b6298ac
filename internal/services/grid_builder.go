package services

import (
	"fmt"
	"math"
	"slices"
	"ttgen/internal/domain"
)

// Distance range triple (start, end, step) in degrees.
type DistanceRange struct {
	Start, End, Step float64
}

// Sampling policy. Breakpoints are configuration, not physics.
type GridConfig struct {
	Mode domain.Mode

	MaxDepth        float64 // km
	DepthStep       float64 // km, above DeepDepthStart
	DeepDepthStep   float64 // km, from DeepDepthStart down
	DeepDepthStart  float64 // km
	CrustalMaxDepth float64 // km, depth range of crustal phases

	MaxDistance          float64 // degrees
	DistanceStep         float64 // degrees
	RegionalDistanceStep float64 // degrees, crustal phases

	// Custom mode only.
	DepthSamples  []float64
	DistanceRange *DistanceRange
}

func DefaultGridConfig() GridConfig {
	return GridConfig{
		Mode:                 domain.ModeDefault,
		MaxDepth:             800,
		DepthStep:            5,
		DeepDepthStep:        50,
		DeepDepthStart:       100,
		CrustalMaxDepth:      35,
		MaxDistance:          180,
		DistanceStep:         1,
		RegionalDistanceStep: 0.2,
	}
}

// Dense near-source distances of the default profile.
var regionalDistances = []float64{
	0.0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.8, 1.0, 1.2, 1.4, 1.6,
	1.8, 2.0, 2.5, 3.0, 3.5, 4.0, 4.5,
}

// Validate rejects inconsistent sampling parameters.
func (c GridConfig) Validate() error {
	if _, err := domain.ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if c.MaxDepth <= 0 || c.DepthStep <= 0 || c.DeepDepthStep <= 0 || c.CrustalMaxDepth <= 0 {
		return domain.ConfigErrorf("depth values must be positive")
	}
	if c.DeepDepthStart < 0 {
		return domain.ConfigErrorf("deep depth start must not be negative")
	}
	if c.MaxDistance <= 0 || c.MaxDistance > 180 || c.DistanceStep <= 0 || c.RegionalDistanceStep <= 0 {
		return domain.ConfigErrorf("distance values must be positive and at most 180")
	}

	for _, x := range []float64{
		c.MaxDepth, c.DepthStep, c.DeepDepthStep, c.DeepDepthStart, c.CrustalMaxDepth,
		c.MaxDistance, c.DistanceStep, c.RegionalDistanceStep,
	} {
		if !onSampleGrid(x) {
			return domain.ConfigErrorf("sampling value %g has more than two decimals", x)
		}
	}

	if (len(c.DepthSamples) > 0 || c.DistanceRange != nil) && c.Mode != domain.ModeCustom {
		return domain.ConfigErrorf("explicit samples require mode %q", domain.ModeCustom)
	}
	if len(c.DepthSamples) > 0 {
		if c.DepthSamples[0] != 0 {
			return domain.ConfigErrorf("depth samples must start at 0")
		}
		for i := 1; i < len(c.DepthSamples); i++ {
			if c.DepthSamples[i] <= c.DepthSamples[i-1] {
				return domain.ConfigErrorf("depth samples must be strictly increasing")
			}
		}
		for _, d := range c.DepthSamples {
			if !onSampleGrid(d) {
				return domain.ConfigErrorf("depth sample %g has more than two decimals", d)
			}
		}
	}
	if r := c.DistanceRange; r != nil {
		if r.Start != 0 || r.Step <= 0 || r.End < r.Start || r.End > 180 {
			return domain.ConfigErrorf("distance range must be 0,end,step with 0 < step and end <= 180")
		}
		if !onSampleGrid(r.End) || !onSampleGrid(r.Step) {
			return domain.ConfigErrorf("distance range %g,%g,%g has more than two decimals", r.Start, r.End, r.Step)
		}
	}
	return nil
}

// Table files print samples with two decimals; finer values would collapse
// into duplicate samples.
func onSampleGrid(x float64) bool {
	c := x * 100
	return math.Abs(c-math.Round(c)) < 1e-6
}

// Resolved maxima of the mode.
type modeProfile struct {
	maxDepth        float64
	crustalMaxDepth float64
	maxDistance     float64
	distanceStep    float64
	regional        []float64
}

func (c GridConfig) profile() modeProfile {
	switch c.Mode {
	case domain.ModeLocal:
		return modeProfile{
			maxDepth:        c.CrustalMaxDepth,
			crustalMaxDepth: c.CrustalMaxDepth,
			maxDistance:     5,
			distanceStep:    0.1,
		}
	case domain.ModeRegional:
		return modeProfile{
			maxDepth:        100,
			crustalMaxDepth: 60,
			maxDistance:     20,
			distanceStep:    0.2,
		}
	default:
		return modeProfile{
			maxDepth:        c.MaxDepth,
			crustalMaxDepth: c.CrustalMaxDepth,
			maxDistance:     c.MaxDistance,
			distanceStep:    c.DistanceStep,
			regional:        regionalDistances,
		}
	}
}

// BuildGrid returns the mode's full (teleseismic) grid.
func BuildGrid(cfg GridConfig) (domain.Grid, error) {
	if err := cfg.Validate(); err != nil {
		return domain.Grid{}, fmt.Errorf("build grid: %w", err)
	}

	p := cfg.profile()
	g := domain.Grid{
		Depths:    cfg.baseDepths(p),
		Distances: cfg.baseDistances(p, p.maxDistance),
	}
	return checked(g)
}

// BuildPhaseGrid applies the phase's depth and distance cutoffs to the mode's
// grid. Crustal phases are sampled over the crustal depth range with the
// regional distance step.
func BuildPhaseGrid(cfg GridConfig, phase domain.Phase) (domain.Grid, error) {
	if err := cfg.Validate(); err != nil {
		return domain.Grid{}, fmt.Errorf("build phase grid %s: %w", phase.Name, err)
	}

	p := cfg.profile()

	maxDist := p.maxDistance
	if phase.MaxDistance > 0 && phase.MaxDistance < maxDist {
		maxDist = phase.MaxDistance
	}

	distances := cfg.baseDistances(p, maxDist)
	if phase.Dense && cfg.DistanceRange == nil {
		distances = merge(distances, arange(0, maxDist, cfg.RegionalDistanceStep))
	}

	var depths []float64
	switch {
	case len(cfg.DepthSamples) > 0:
		depths = slices.Clone(cfg.DepthSamples)
	case phase.CrustalDepths:
		depths = arange(0, math.Min(p.crustalMaxDepth, p.maxDepth), cfg.DepthStep)
	default:
		depths = cfg.baseDepths(p)
		if phase.MaxDepth > 0 {
			depths = upTo(depths, phase.MaxDepth)
		}
		if phase.IsCrustal {
			depths = merge(depths, arange(0, math.Min(p.crustalMaxDepth, p.maxDepth), cfg.DepthStep))
		}
	}

	g, err := checked(domain.Grid{Depths: depths, Distances: distances})
	if err != nil {
		return domain.Grid{}, fmt.Errorf("build phase grid %s: %w", phase.Name, err)
	}
	return g, nil
}

func (c GridConfig) baseDepths(p modeProfile) []float64 {
	if len(c.DepthSamples) > 0 {
		return slices.Clone(c.DepthSamples)
	}
	if p.maxDepth <= c.DeepDepthStart {
		return arange(0, p.maxDepth, c.DepthStep)
	}

	shallow := arange(0, c.DeepDepthStart, c.DepthStep)
	// The shallow range is half-open; the deep range starts at DeepDepthStart.
	shallow = below(shallow, c.DeepDepthStart)
	return merge(shallow, arange(c.DeepDepthStart, p.maxDepth, c.DeepDepthStep))
}

func (c GridConfig) baseDistances(p modeProfile, maxDist float64) []float64 {
	if r := c.DistanceRange; r != nil {
		return arange(r.Start, math.Min(r.End, maxDist), r.Step)
	}
	return merge(upTo(p.regional, maxDist), arange(0, maxDist, p.distanceStep))
}

func checked(g domain.Grid) (domain.Grid, error) {
	if err := g.Validate(); err != nil {
		return domain.Grid{}, fmt.Errorf("%w: %v", domain.ErrConfig, err)
	}
	return g, nil
}

// arange returns start, start+step, ... up to and including end (within
// rounding), computed by multiplication so errors do not accumulate.
func arange(start, end, step float64) []float64 {
	if step <= 0 || end < start {
		return nil
	}
	n := int(math.Floor((end-start)/step+1e-9)) + 1
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, round6(start+float64(i)*step))
	}
	return out
}

// merge returns the sorted union of two sample sets.
func merge(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	for _, x := range a {
		out = append(out, round6(x))
	}
	for _, x := range b {
		out = append(out, round6(x))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func upTo(xs []float64, max float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if x <= max+1e-9 {
			out = append(out, x)
		}
	}
	return out
}

func below(xs []float64, limit float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if x < limit-1e-9 {
			out = append(out, x)
		}
	}
	return out
}

func round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}
