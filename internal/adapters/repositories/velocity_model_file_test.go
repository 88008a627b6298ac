package repositories

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"ttgen/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const localModel = `# simple two-layer crust
# depth vp vs density
0.0   5.80 3.36 2.72

20.0  6.50 3.75 2.92
35.0  8.04 4.47 3.32
`

func TestParseLocalModel(t *testing.T) {
	m, err := ParseLocalModel(strings.NewReader(localModel), "crust.mod", "crust")
	require.NoError(t, err)

	assert.Equal(t, "crust", m.Name())
	assert.Len(t, m.Layers(), 3)
	assert.Equal(t, 35.0, m.MaxDepth())

	vp, err := m.VelocityAt(20, domain.WaveP)
	require.NoError(t, err)
	assert.Equal(t, 6.5, vp)

	vs, err := m.VelocityAt(10, domain.WaveS)
	require.NoError(t, err)
	assert.Equal(t, 3.36, vs)
}

func TestParseLocalModelMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line int
	}{
		{"non numeric", "0 5.8 3.36 2.7\n10 abc 3.5 2.8\n", 2},
		{"missing column", "0 5.8 3.36 2.7\n10 6.0 3.5\n", 2},
		{"decreasing depth", "0 5.8 3.36 2.7\n10 6.0 3.5 2.8\n5 6.1 3.6 2.8\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLocalModel(strings.NewReader(tt.in), "bad.mod", "bad")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrParse))

			var pe *domain.ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestParseLocalModelRejectsInvalidModel(t *testing.T) {
	_, err := ParseLocalModel(strings.NewReader("5 5.8 3.36 2.7\n"), "m", "m")
	assert.ErrorIs(t, err, domain.ErrParse)

	_, err = ParseLocalModel(strings.NewReader("# only comments\n"), "m", "m")
	assert.ErrorIs(t, err, domain.ErrParse)
}

const tvelModel = `ak135 - P
ak135 - S
   0.000      5.8000      3.4600      2.7200
  20.000      5.8000      3.4600      2.7200
  20.000      6.5000      3.8500      2.9200
  35.000      6.5000      3.8500      2.9200
   0.000      0.0000      0.0000      0.0000
  35.000      8.0400      4.4800      3.3198
2891.500     13.6601      0.0000      9.9145
`

func TestParseTVELModel(t *testing.T) {
	m, err := ParseTVELModel(strings.NewReader(tvelModel), "ak135.tvel", "file")
	require.NoError(t, err)

	assert.Equal(t, "ak135", m.Name())
	assert.Equal(t, 2891.5, m.MaxDepth())

	// The repeated depth keeps the row below the discontinuity.
	vp, err := m.VelocityAt(20, domain.WaveP)
	require.NoError(t, err)
	assert.Equal(t, 6.5, vp)

	vp, err = m.VelocityAt(35, domain.WaveP)
	require.NoError(t, err)
	assert.Equal(t, 8.04, vp)

	_, err = m.VelocityAt(2891.5, domain.WaveS)
	assert.ErrorIs(t, err, domain.ErrDomain)
}

func TestParseTVELModelMalformedRow(t *testing.T) {
	in := "model\n0 5.8 3.4 2.7\n10 x 3.4 2.7\n"
	_, err := ParseTVELModel(strings.NewReader(in), "m.tvel", "m")
	var pe *domain.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
}

func TestLoadVelocityModel(t *testing.T) {
	dir := t.TempDir()

	local := filepath.Join(dir, "crust.mod")
	require.NoError(t, os.WriteFile(local, []byte(localModel), 0o644))
	tvel := filepath.Join(dir, "ak135.tvel")
	require.NoError(t, os.WriteFile(tvel, []byte(tvelModel), 0o644))

	m, err := LoadVelocityModel(local, FormatFromPath(local))
	require.NoError(t, err)
	assert.Equal(t, "crust", m.Name())

	m, err = LoadVelocityModel(tvel, FormatFromPath(tvel))
	require.NoError(t, err)
	assert.Equal(t, "ak135", m.Name())

	_, err = LoadVelocityModel(filepath.Join(dir, "missing.mod"), FormatLocal)
	assert.Error(t, err)

	_, err = LoadVelocityModel(local, ModelFormat("nd"))
	assert.ErrorIs(t, err, domain.ErrConfig)
}
