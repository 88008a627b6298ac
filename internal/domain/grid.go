package domain

import (
	"fmt"
	"strings"
)

// Operating mode selecting the sampling profile.
type Mode string

const (
	ModeDefault  Mode = "default"
	ModeLocal    Mode = "local"
	ModeRegional Mode = "regional"
	ModeCustom   Mode = "custom"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDefault, ModeLocal, ModeRegional, ModeCustom:
		return m, nil
	case "":
		return ModeDefault, nil
	default:
		return "", ConfigErrorf("unknown mode %q", s)
	}
}

// Depth (km) and distance (degrees) samples of one table.
type Grid struct {
	Depths    []float64
	Distances []float64
}

// Validate checks that both sequences are strictly increasing, start at 0 and
// stay within [0, 180] degrees.
func (g Grid) Validate() error {
	if err := checkSamples("depth", g.Depths, -1); err != nil {
		return err
	}
	return checkSamples("distance", g.Distances, 180)
}

func checkSamples(what string, xs []float64, max float64) error {
	if len(xs) == 0 {
		return fmt.Errorf("grid: no %s samples", what)
	}
	if xs[0] != 0 {
		return fmt.Errorf("grid: first %s sample is %g, want 0", what, xs[0])
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return fmt.Errorf("grid: %s samples not strictly increasing at index %d", what, i)
		}
	}
	if max >= 0 && xs[len(xs)-1] > max {
		return fmt.Errorf("grid: %s sample %g exceeds %g", what, xs[len(xs)-1], max)
	}
	return nil
}
