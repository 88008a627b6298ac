package domain

import (
	"math"

	"github.com/soniakeys/unit"
)

// One arrival branch returned by a travel-time solver.
type Arrival struct {
	Phase string  `msgpack:"p" json:"phase"`
	Time  float64 `msgpack:"t" json:"time"`
}

// Outcome of one solver query. No arrivals is the NoArrival outcome, which is
// a normal result and not an error.
type Result struct {
	Arrivals []Arrival `msgpack:"a" json:"arrivals"`
}

func (r Result) NoArrival() bool { return len(r.Arrivals) == 0 }

// FirstAccepted returns the minimum-time arrival accepted by phase at the
// given distance.
func (r Result) FirstAccepted(phase Phase, distanceDeg float64) (Arrival, bool) {
	var best Arrival
	found := false
	for _, a := range r.Arrivals {
		if math.IsNaN(a.Time) || a.Time < 0 {
			continue
		}
		if !phase.AcceptArrival(a.Phase, distanceDeg) {
			continue
		}
		if !found || a.Time < best.Time {
			best = a
			found = true
		}
	}
	return best, found
}

// Mean Earth radius used for flat-earth distance conversion.
const EarthRadiusKm = 6371.0

// DegreesToKm converts an epicentral distance to kilometres along the surface
// (111.19 km per degree).
func DegreesToKm(deg float64) float64 {
	return unit.AngleFromDeg(deg).Rad() * EarthRadiusKm
}
