package services

import (
	"math"
	"testing"
	"ttgen/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrustalCorrectorTravelTime(t *testing.T) {
	c := NewCrustalCorrector(DefaultCrustalConfig())
	pg := domain.LookupPhase("Pg", true)
	sg := domain.LookupPhase("Sg", true)

	got, err := c.TravelTime(pg, 10, 1)
	require.NoError(t, err)
	assert.InDelta(t, math.Hypot(domain.DegreesToKm(1), 10)/5.806, got, 1e-9)

	got, err = c.TravelTime(sg, 30, 5)
	require.NoError(t, err)
	assert.InDelta(t, crustTime(domain.WaveS, 30, 5), got, 1e-9)

	got, err = c.TravelTime(pg, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestCrustalCorrectorEnvelope(t *testing.T) {
	c := NewCrustalCorrector(DefaultCrustalConfig())
	pg := domain.LookupPhase("Pg", true)

	for _, cell := range [][2]float64{{36, 1}, {10, 10.5}, {-1, 1}, {10, -0.1}} {
		_, err := c.TravelTime(pg, cell[0], cell[1])
		assert.ErrorIs(t, err, domain.ErrDomain, "cell %v", cell)
	}

	_, err := c.TravelTime(pg, 35, 10)
	assert.NoError(t, err)
}

func TestCrustalCorrectorApplies(t *testing.T) {
	c := NewCrustalCorrector(DefaultCrustalConfig())

	assert.True(t, c.Applies(domain.LookupPhase("Pg", true)))
	assert.True(t, c.Applies(domain.LookupPhase("Sg", false)))
	assert.False(t, c.Applies(domain.LookupPhase("Pn", true)))
	assert.False(t, c.Applies(domain.LookupPhase("P", true)))

	cfg := DefaultCrustalConfig()
	cfg.Phases = append(cfg.Phases, "Pb")
	assert.True(t, NewCrustalCorrector(cfg).Applies(domain.LookupPhase("Pb", true)))
}

func TestCrustalCorrectorFit(t *testing.T) {
	c := NewCrustalCorrector(DefaultCrustalConfig())
	pg := domain.LookupPhase("Pg", true)

	const k = 0.004
	var samples []CrustalSample
	for _, z := range []float64{0, 5, 10, 15, 20} {
		for _, d := range []float64{0, 1, 2, 5} {
			path := math.Hypot(domain.DegreesToKm(d), z)
			samples = append(samples, CrustalSample{DepthKm: z, DistanceDeg: d, Time: path / (5.8 + k*z)})
		}
	}

	fitted := c.Fit(pg, samples)
	assert.InDelta(t, k, fitted.Velocity(domain.WaveP).K, 1e-9)
	assert.Equal(t, 5.8, fitted.Velocity(domain.WaveP).V0)

	// The S gradient and the original corrector are unchanged.
	assert.Equal(t, 0.00037, fitted.Velocity(domain.WaveS).K)
	assert.Equal(t, 0.0006, c.Velocity(domain.WaveP).K)
}

func TestCrustalCorrectorFitKeepsDefault(t *testing.T) {
	c := NewCrustalCorrector(DefaultCrustalConfig())
	sg := domain.LookupPhase("Sg", true)

	oneDepth := []CrustalSample{{DepthKm: 5, DistanceDeg: 1, Time: 33}, {DepthKm: 5, DistanceDeg: 2, Time: 66}}
	assert.Same(t, c, c.Fit(sg, oneDepth))

	// Velocity decreasing with depth.
	var slower []CrustalSample
	for _, z := range []float64{0, 10, 20} {
		path := math.Hypot(domain.DegreesToKm(3), z)
		slower = append(slower, CrustalSample{DepthKm: z, DistanceDeg: 3, Time: path / (3.36 - 0.01*z)})
	}
	assert.Same(t, c, c.Fit(sg, slower))

	assert.Same(t, c, c.Fit(sg, nil))
}

func TestCrustalConfigWithModel(t *testing.T) {
	m, err := domain.NewVelocityModel("local", []domain.VelocityLayer{
		{TopDepth: 0, Vp: 6.1, Vs: 3.5, Density: 2.7},
		{TopDepth: 30, Vp: 8.0, Vs: 4.5, Density: 3.3},
	})
	require.NoError(t, err)

	cfg := DefaultCrustalConfig().WithModel(m)
	assert.Equal(t, 6.1, cfg.P.V0)
	assert.Equal(t, 3.5, cfg.S.V0)
	assert.Equal(t, 0.0006, cfg.P.K)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultCrustalConfig(), DefaultCrustalConfig().WithModel(nil))
}

func TestCrustalConfigValidate(t *testing.T) {
	cfg := DefaultCrustalConfig()
	cfg.P.V0 = 0
	assert.ErrorIs(t, cfg.Validate(), domain.ErrConfig)

	cfg = DefaultCrustalConfig()
	cfg.S.K = -0.1
	assert.ErrorIs(t, cfg.Validate(), domain.ErrConfig)

	cfg = DefaultCrustalConfig()
	cfg.MaxDistance = 0
	assert.ErrorIs(t, cfg.Validate(), domain.ErrConfig)
}
