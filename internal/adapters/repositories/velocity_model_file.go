package repositories

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"ttgen/internal/domain"
)

// Velocity model file layouts.
type ModelFormat string

const (
	// Four columns per line: depth vp vs density. Blank lines and lines
	// starting with # are ignored.
	FormatLocal ModelFormat = "local"
	// TauP-style .tvel: header lines followed by depth vp vs density rows.
	// All-zero rows are layer markers and skipped.
	FormatTVEL ModelFormat = "tvel"
)

// FormatFromPath picks the layout from the file extension.
func FormatFromPath(path string) ModelFormat {
	if strings.EqualFold(filepath.Ext(path), ".tvel") {
		return FormatTVEL
	}
	return FormatLocal
}

// LoadVelocityModel reads and validates a velocity model file. Any malformed
// line aborts the load with a *domain.ParseError.
func LoadVelocityModel(path string, format ModelFormat) (*domain.VelocityModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load velocity model: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var m *domain.VelocityModel
	switch format {
	case FormatTVEL:
		m, err = ParseTVELModel(f, path, name)
	case FormatLocal, "":
		m, err = ParseLocalModel(f, path, name)
	default:
		return nil, fmt.Errorf("load velocity model: %w", domain.ConfigErrorf("unknown model format %q", format))
	}
	if err != nil {
		return nil, fmt.Errorf("load velocity model: %w", err)
	}
	return m, nil
}

func ParseLocalModel(r io.Reader, source, name string) (*domain.VelocityModel, error) {
	var layers []domain.VelocityLayer

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		layer, err := parseLayer(line)
		if err != nil {
			return nil, &domain.ParseError{Source: source, Line: lineNo, Msg: err.Error()}
		}
		if layers, err = appendLayer(layers, layer); err != nil {
			return nil, &domain.ParseError{Source: source, Line: lineNo, Msg: err.Error()}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	return buildModel(source, name, layers)
}

// ParseTVELModel reads a .tvel file. The leading non-numeric lines form the
// header; the first one names the model.
func ParseTVELModel(r io.Reader, source, name string) (*domain.VelocityModel, error) {
	var layers []domain.VelocityLayer
	inHeader := true

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if inHeader {
			if !startsNumeric(line) {
				if lineNo == 1 {
					if f := strings.Fields(line); len(f) > 0 {
						name = f[0]
					}
				}
				continue
			}
			inHeader = false
		}

		layer, err := parseLayer(line)
		if err != nil {
			return nil, &domain.ParseError{Source: source, Line: lineNo, Msg: err.Error()}
		}
		if layer.Vp == 0 && layer.Vs == 0 && layer.Density == 0 {
			continue
		}
		if layers, err = appendLayer(layers, layer); err != nil {
			return nil, &domain.ParseError{Source: source, Line: lineNo, Msg: err.Error()}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	return buildModel(source, name, layers)
}

func parseLayer(line string) (domain.VelocityLayer, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return domain.VelocityLayer{}, fmt.Errorf("want 4 columns (depth vp vs density), got %d", len(fields))
	}

	var vals [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return domain.VelocityLayer{}, fmt.Errorf("column %d: %q is not a number", i+1, f)
		}
		vals[i] = v
	}

	return domain.VelocityLayer{TopDepth: vals[0], Vp: vals[1], Vs: vals[2], Density: vals[3]}, nil
}

// appendLayer enforces non-decreasing depths. A repeated depth marks a
// discontinuity; the later row describes the material below it and wins.
func appendLayer(layers []domain.VelocityLayer, l domain.VelocityLayer) ([]domain.VelocityLayer, error) {
	if n := len(layers); n > 0 {
		prev := layers[n-1].TopDepth
		switch {
		case l.TopDepth < prev:
			return layers, fmt.Errorf("depth %g km after %g km, depths must not decrease", l.TopDepth, prev)
		case l.TopDepth == prev:
			layers[n-1] = l
			return layers, nil
		}
	}
	return append(layers, l), nil
}

func buildModel(source, name string, layers []domain.VelocityLayer) (*domain.VelocityModel, error) {
	if len(layers) == 0 {
		return nil, &domain.ParseError{Source: source, Msg: "no velocity layers"}
	}
	m, err := domain.NewVelocityModel(name, layers)
	if err != nil {
		return nil, &domain.ParseError{Source: source, Msg: err.Error()}
	}
	return m, nil
}

func startsNumeric(line string) bool {
	f := strings.Fields(line)
	if len(f) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(f[0], 64)
	return err == nil
}
