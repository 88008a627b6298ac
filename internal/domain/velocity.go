package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
)

// WaveType selects the P or S velocity of a layer.
type WaveType int

const (
	WaveP WaveType = iota
	WaveS
)

func (w WaveType) String() string {
	if w == WaveS {
		return "S"
	}
	return "P"
}

// Represents one layer of a one-dimensional Earth model.
// The layer extends from TopDepth down to the next layer's top.
type VelocityLayer struct {
	TopDepth float64 // km
	Vp       float64 // km/s
	Vs       float64 // km/s, 0 in liquid layers
	Density  float64 // g/cm^3
}

// Immutable layered velocity model, loaded once per run.
type VelocityModel struct {
	name   string
	layers []VelocityLayer
}

// NewVelocityModel validates and copies layers.
// Top depths must be strictly increasing and start at 0.
func NewVelocityModel(name string, layers []VelocityLayer) (*VelocityModel, error) {
	if len(layers) == 0 {
		return nil, errors.New("new velocity model: no layers")
	}
	if layers[0].TopDepth != 0 {
		return nil, fmt.Errorf("new velocity model: first layer starts at %g km, want 0", layers[0].TopDepth)
	}

	for i, l := range layers {
		if l.Vp <= 0 {
			return nil, fmt.Errorf("new velocity model: layer %d: vp must be positive, got %g", i, l.Vp)
		}
		if l.Vs < 0 || l.Density < 0 {
			return nil, fmt.Errorf("new velocity model: layer %d: negative vs or density", i)
		}
		if i > 0 && l.TopDepth <= layers[i-1].TopDepth {
			return nil, fmt.Errorf(
				"new velocity model: layer %d: depth %g not greater than %g",
				i, l.TopDepth, layers[i-1].TopDepth,
			)
		}
	}

	cp := make([]VelocityLayer, len(layers))
	copy(cp, layers)

	return &VelocityModel{name: name, layers: cp}, nil
}

func (m *VelocityModel) Name() string { return m.name }

// Fingerprint identifies the layer values. Models with equal layers share a
// fingerprint whatever their name.
func (m *VelocityModel) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte
	for _, l := range m.layers {
		for _, v := range [...]float64{l.TopDepth, l.Vp, l.Vs, l.Density} {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Return a copy of the model's layers.
func (m *VelocityModel) Layers() []VelocityLayer {
	out := make([]VelocityLayer, len(m.layers))
	copy(out, m.layers)
	return out
}

// Top depth of the deepest layer.
func (m *VelocityModel) MaxDepth() float64 {
	return m.layers[len(m.layers)-1].TopDepth
}

// VelocityAt returns Vp or Vs of the layer containing depth.
// Layers are half-open intervals, so a layer top belongs to the layer below it.
func (m *VelocityModel) VelocityAt(depth float64, wave WaveType) (float64, error) {
	if depth < 0 || depth > m.MaxDepth() {
		return 0, &DomainError{Quantity: "depth", Value: depth, Min: 0, Max: m.MaxDepth()}
	}

	// First layer whose top is strictly below depth, minus one.
	i := sort.Search(len(m.layers), func(i int) bool {
		return m.layers[i].TopDepth > depth
	}) - 1

	l := m.layers[i]
	if wave == WaveS {
		if l.Vs == 0 {
			return 0, fmt.Errorf("velocity at %g km: no S propagation: %w", depth, ErrDomain)
		}
		return l.Vs, nil
	}
	return l.Vp, nil
}
