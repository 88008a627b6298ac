package tables

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"ttgen/internal/domain"
	"ttgen/internal/services"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallTable() *domain.TravelTimeTable {
	tbl := domain.NewTravelTimeTable(
		domain.LookupPhase("P", true),
		domain.Grid{Depths: []float64{0, 10}, Distances: []float64{0, 5}},
	)
	tbl.Values[0][0] = 0
	tbl.Values[0][1] = 80.5
	tbl.Values[1][0] = 1.7
	return tbl
}

func TestFormat(t *testing.T) {
	pad := strings.Repeat(" ", 64)
	want := "P\n" +
		"2    # number of depth samples\n" +
		"    0.00   10.00" + pad + "\n" +
		"2    # number of distance samples\n" +
		"    0.00    5.00" + pad + "\n" +
		"# z = 0.0 km\n" +
		"       0.000\n" +
		"      80.500\n" +
		"# z = 10.0 km\n" +
		"       1.700\n" +
		"      -1.000"

	got := string(Format(smallTable()))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Format mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatSampleLines(t *testing.T) {
	xs := make([]float64, 12)
	for i := range xs {
		xs[i] = float64(i) * 0.5
	}

	lines := sampleLines(xs)
	require.Len(t, lines, 2)
	assert.Len(t, lines[0], 80)
	assert.Len(t, lines[1], 80)
	assert.Equal(t, "    5.00    5.50"+strings.Repeat(" ", 64), lines[1])

	lines = sampleLines(xs[:10])
	require.Len(t, lines, 1)
	assert.Len(t, lines[0], 80)
}

func TestFormatNoTrailingNewline(t *testing.T) {
	out := Format(smallTable())
	assert.False(t, bytes.HasSuffix(out, []byte("\n")))
}

func TestDepthLabel(t *testing.T) {
	assert.Equal(t, "0.0", depthLabel(0))
	assert.Equal(t, "35.0", depthLabel(35))
	assert.Equal(t, "2.5", depthLabel(2.5))
}

func TestParseRoundTrip(t *testing.T) {
	tbl := domain.NewTravelTimeTable(
		domain.LookupPhase("Pg", true),
		domain.Grid{
			Depths:    []float64{0, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50},
			Distances: []float64{0, 0.1, 0.2, 0.5, 1, 2},
		},
	)
	for i, z := range tbl.Grid.Depths {
		for j, d := range tbl.Grid.Distances {
			if z > 40 && d > 1 {
				continue
			}
			tbl.Values[i][j] = z*0.25 + d*18.123
		}
	}

	got, err := Parse(bytes.NewReader(Format(tbl)), "iasp91.Pg")
	require.NoError(t, err)

	assert.Equal(t, "Pg", got.Phase.Name)
	assert.True(t, got.Phase.IsCrustal)
	if diff := cmp.Diff(tbl.Grid, got.Grid); diff != "" {
		t.Fatalf("grid mismatch (-want +got):\n%s", diff)
	}

	formatPrecision := cmp.Comparer(func(a, b float64) bool {
		d := a - b
		return d < 0.001 && d > -0.001
	})
	if diff := cmp.Diff(tbl.Values, got.Values, formatPrecision); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, domain.Sentinel, got.Values[10][5])
}

func TestAcceptedGridsRoundTrip(t *testing.T) {
	custom := services.DefaultGridConfig()
	custom.Mode = domain.ModeCustom
	custom.DepthSamples = []float64{0, 0.25, 1.5, 10}
	custom.DistanceRange = &services.DistanceRange{Start: 0, End: 0.3, Step: 0.05}

	regional := services.DefaultGridConfig()
	regional.Mode = domain.ModeRegional

	for name, cfg := range map[string]services.GridConfig{"custom": custom, "regional": regional} {
		for _, phase := range []string{"P", "Pg"} {
			g, err := services.BuildPhaseGrid(cfg, domain.LookupPhase(phase, true))
			require.NoError(t, err, "%s/%s", name, phase)

			tbl := domain.NewTravelTimeTable(domain.LookupPhase(phase, true), g)
			got, err := Parse(bytes.NewReader(Format(tbl)), phase)
			require.NoError(t, err, "%s/%s", name, phase)
			if diff := cmp.Diff(g, got.Grid); diff != "" {
				t.Fatalf("%s/%s grid mismatch (-want +got):\n%s", name, phase, diff)
			}
		}
	}
}

func TestParseErrors(t *testing.T) {
	valid := string(Format(smallTable()))

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"bad depth count", "P\nx    # number of depth samples\n"},
		{"truncated values", strings.TrimSuffix(valid, "      -1.000")},
		{"non numeric value", strings.Replace(valid, "80.500", "80.5x0", 1)},
		{"trailing value", valid + "\n 12.000"},
		{"decreasing depths", strings.Replace(valid, "   10.00", "   -1.00", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in), "bad")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrParse), "got %v", err)
		})
	}
}

func TestDirSinkWriteTable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tables")
	sink, err := NewDirSink(dir, "iasp91")
	require.NoError(t, err)

	require.NoError(t, sink.WriteTable(context.Background(), smallTable()))

	b, err := os.ReadFile(filepath.Join(dir, "iasp91.P"))
	require.NoError(t, err)
	assert.Equal(t, Format(smallTable()), b)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = NewDirSink("", "iasp91")
	assert.Error(t, err)
	_, err = NewDirSink(dir, "")
	assert.Error(t, err)
	assert.Error(t, sink.WriteTable(context.Background(), nil))
}

func TestDirSinkStaysInsideDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "tables")
	sink, err := NewDirSink(dir, "iasp91")
	require.NoError(t, err)

	for _, name := range []string{"../P", "a/b", `a\b`, "..", ".hidden"} {
		tbl := domain.NewTravelTimeTable(domain.LookupPhase(name, true), smallTable().Grid)
		err := sink.WriteTable(context.Background(), tbl)
		assert.ErrorIs(t, err, domain.ErrConfig, name)
	}

	_, err = NewDirSink(dir, "../iasp91")
	assert.ErrorIs(t, err, domain.ErrConfig)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
