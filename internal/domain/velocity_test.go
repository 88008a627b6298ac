package domain

import (
	"errors"
	"testing"
)

func iasp91Crust(t *testing.T) *VelocityModel {
	t.Helper()

	m, err := NewVelocityModel("iasp91", []VelocityLayer{
		{TopDepth: 0, Vp: 5.8, Vs: 3.36, Density: 2.72},
		{TopDepth: 20, Vp: 6.5, Vs: 3.75, Density: 2.92},
		{TopDepth: 35, Vp: 8.04, Vs: 4.47, Density: 3.32},
		{TopDepth: 2889, Vp: 8.0, Vs: 0, Density: 9.9},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func TestVelocityAtLayerTops(t *testing.T) {
	m := iasp91Crust(t)

	for _, l := range m.Layers() {
		got, err := m.VelocityAt(l.TopDepth, WaveP)
		if err != nil {
			t.Fatalf("VelocityAt(%g) unexpected error: %v", l.TopDepth, err)
		}
		if got != l.Vp {
			t.Errorf("VelocityAt(%g, P) = %g, want %g", l.TopDepth, got, l.Vp)
		}
	}
}

func TestVelocityAtInsideLayers(t *testing.T) {
	m := iasp91Crust(t)

	cases := []struct {
		depth float64
		wave  WaveType
		want  float64
	}{
		{depth: 0.5, wave: WaveP, want: 5.8},
		{depth: 19.999, wave: WaveS, want: 3.36},
		{depth: 20, wave: WaveS, want: 3.75},
		{depth: 34, wave: WaveP, want: 6.5},
		{depth: 100, wave: WaveP, want: 8.04},
	}

	for _, c := range cases {
		got, err := m.VelocityAt(c.depth, c.wave)
		if err != nil {
			t.Fatalf("VelocityAt(%g) unexpected error: %v", c.depth, err)
		}
		if got != c.want {
			t.Errorf("VelocityAt(%g, %s) = %g, want %g", c.depth, c.wave, got, c.want)
		}
	}
}

func TestVelocityAtOutOfRange(t *testing.T) {
	m := iasp91Crust(t)

	for _, depth := range []float64{-1, 2890} {
		_, err := m.VelocityAt(depth, WaveP)
		if !errors.Is(err, ErrDomain) {
			t.Errorf("VelocityAt(%g) err = %v, want ErrDomain", depth, err)
		}
		var de *DomainError
		if !errors.As(err, &de) {
			t.Errorf("VelocityAt(%g) err is not a *DomainError", depth)
		}
	}

	if _, err := m.VelocityAt(3000, WaveS); !errors.Is(err, ErrDomain) {
		t.Errorf("S below max depth err = %v, want ErrDomain", err)
	}
	if _, err := m.VelocityAt(2889, WaveS); !errors.Is(err, ErrDomain) {
		t.Errorf("S in liquid layer err = %v, want ErrDomain", err)
	}
}

func TestNewVelocityModelRejectsBadLayers(t *testing.T) {
	cases := map[string][]VelocityLayer{
		"empty":          nil,
		"not at surface": {{TopDepth: 1, Vp: 5, Vs: 3}},
		"repeated depth": {{TopDepth: 0, Vp: 5, Vs: 3}, {TopDepth: 0, Vp: 6, Vs: 3}},
		"zero vp":        {{TopDepth: 0, Vp: 0, Vs: 3}},
		"negative vs":    {{TopDepth: 0, Vp: 5, Vs: -3}},
	}

	for name, layers := range cases {
		if _, err := NewVelocityModel("x", layers); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}

func TestVelocityModelIsImmutable(t *testing.T) {
	layers := []VelocityLayer{{TopDepth: 0, Vp: 5.8, Vs: 3.36}}
	m, err := NewVelocityModel("x", layers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	layers[0].Vp = 1
	m.Layers()[0].Vp = 2

	if got, _ := m.VelocityAt(0, WaveP); got != 5.8 {
		t.Fatalf("VelocityAt(0) = %g after caller mutation, want 5.8", got)
	}
}

func TestVelocityModelFingerprint(t *testing.T) {
	m := iasp91Crust(t)

	renamed, err := NewVelocityModel("other", m.Layers())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Fingerprint() != renamed.Fingerprint() {
		t.Errorf("fingerprint depends on the name: %s != %s", m.Fingerprint(), renamed.Fingerprint())
	}

	layers := m.Layers()
	layers[1].Vs = 3.7
	changed, err := NewVelocityModel("iasp91", layers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Fingerprint() == changed.Fingerprint() {
		t.Errorf("fingerprint %s unchanged after editing a layer", m.Fingerprint())
	}
	if len(m.Fingerprint()) != 16 {
		t.Errorf("len(Fingerprint()) = %d, want 16", len(m.Fingerprint()))
	}
}
