package domain

import (
	"slices"
	"strings"
)

// Represents a tabulated seismic phase.
//
// Members lists the arrival branches accepted into the phase's table. A generic
// phase such as P combines Pg, Pb, Pn, P, Pdiff and PKPdf so that the table
// always records the first-arriving P wave.
type Phase struct {
	Name         string
	IsDepthPhase bool
	IsCrustal    bool
	Members      []string

	// Sampling cutoffs. MaxDepth 0 means the grid's own maximum.
	MaxDistance   float64
	MaxDepth      float64
	CrustalDepths bool
	Dense         bool
}

// Wave type of the leg arriving at the station.
func (p Phase) Wave() WaveType {
	name := p.Name
	if p.IsDepthPhase && len(name) > 1 {
		name = name[1:]
	}
	if strings.HasPrefix(name, "S") {
		return WaveS
	}
	return WaveP
}

// DirectPhase returns the phase name a depth phase reduces to at zero focal
// depth: pP -> P, sS -> S, pPKPab -> PKPab. Non-depth phases return themselves.
func (p Phase) DirectPhase() string {
	if !p.IsDepthPhase {
		return p.Name
	}
	return p.Name[1:]
}

// AcceptArrival reports whether an arrival branch counts towards this phase at
// the given distance.
func (p Phase) AcceptArrival(arrivalPhase string, distanceDeg float64) bool {
	if lim, ok := distanceLimits[arrivalPhase]; ok {
		if distanceDeg < lim[0] || distanceDeg > lim[1] {
			return false
		}
	}
	return slices.Contains(p.Members, arrivalPhase)
}

// Some branches are only reliable over part of the distance range.
var distanceLimits = map[string][2]float64{
	"Pdiff": {0, 116},
	"PKPdf": {118, 180},
	"Sdiff": {0, 116},
	"SKSdf": {118, 180},
}

type phaseDef struct {
	members       []string
	depth         bool
	crustal       bool
	maxDistance   float64
	maxDepth      float64
	crustalDepths bool
	dense         bool
}

var catalog = map[string]phaseDef{
	"P":  {members: []string{"Pg", "Pb", "Pn", "P", "Pdiff", "PKPdf"}, maxDistance: 180},
	"Pg": {members: []string{"Pg", "PgPg"}, crustal: true, maxDistance: 10, crustalDepths: true, dense: true},
	"Pb": {members: []string{"Pb"}, crustal: true, maxDistance: 9, crustalDepths: true, dense: true},
	"Pn": {members: []string{"Pn"}, crustal: true, maxDistance: 20, maxDepth: 400, dense: true},
	"S":  {members: []string{"S", "Sn", "Sg", "Sb", "Sdiff"}, maxDistance: 115},
	"Sg": {members: []string{"Sg", "SgSg"}, crustal: true, maxDistance: 10, crustalDepths: true, dense: true},
	"Sb": {members: []string{"Sb"}, crustal: true, maxDistance: 9, crustalDepths: true, dense: true},
	"Sn": {members: []string{"Sn"}, crustal: true, maxDistance: 20, maxDepth: 400, dense: true},

	"pP": {members: []string{"pP", "pPn", "pPdiff"}, depth: true, maxDistance: 104},
	"sP": {members: []string{"sP", "sPn", "sPdiff"}, depth: true, maxDistance: 104},
	"sS": {members: []string{"sS", "sSg", "sSb", "sSn", "sSdiff"}, depth: true, maxDistance: 104},

	"PP": {members: []string{"PP", "PnPn"}, maxDistance: 180},
	"SS": {members: []string{"SS", "SnSn"}, maxDistance: 180},

	"PcP": {members: []string{"PcP"}, maxDistance: 60},
	"ScS": {members: []string{"ScS"}, maxDistance: 60},
	"ScP": {members: []string{"ScP"}, maxDistance: 60},

	"PKP":    {members: []string{"PKPab", "PKPbc", "PKPdf"}, maxDistance: 180},
	"PKPdf":  {members: []string{"PKPdf"}, maxDistance: 180},
	"PKPab":  {members: []string{"PKPab"}, maxDistance: 180},
	"PKPbc":  {members: []string{"PKPbc"}, maxDistance: 160},
	"SKPdf":  {members: []string{"SKPdf"}, maxDistance: 180},
	"pPKPdf": {members: []string{"pPKPdf"}, depth: true, maxDistance: 180},
	"pPKPab": {members: []string{"pPKPab"}, depth: true, maxDistance: 180},
	"pPKPbc": {members: []string{"pPKPbc"}, depth: true, maxDistance: 160},
	"sPKPdf": {members: []string{"sPKPdf"}, depth: true, maxDistance: 180},
	"sPKPab": {members: []string{"sPKPab"}, depth: true, maxDistance: 180},
	"sPKPbc": {members: []string{"sPKPbc"}, depth: true, maxDistance: 160},
}

var crustalNames = []string{"Pg", "Sg", "Pb", "Sb", "Pn", "Sn"}

// LookupPhase returns the catalog definition of name. Unknown names are
// accepted as single-branch phases; the solver decides whether they exist.
// With combine false every phase is restricted to its own branch.
func LookupPhase(name string, combine bool) Phase {
	def, ok := catalog[name]
	if !ok {
		def = phaseDef{
			members:     []string{name},
			depth:       looksLikeDepthPhase(name),
			crustal:     slices.Contains(crustalNames, name),
			maxDistance: 180,
		}
	}

	members := slices.Clone(def.members)
	if !combine {
		members = []string{name}
	}

	return Phase{
		Name:          name,
		IsDepthPhase:  def.depth,
		IsCrustal:     def.crustal,
		Members:       members,
		MaxDistance:   def.maxDistance,
		MaxDepth:      def.maxDepth,
		CrustalDepths: def.crustalDepths,
		Dense:         def.dense,
	}
}

// ValidatePhaseName rejects names that cannot serve as a table file suffix.
func ValidatePhaseName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return ConfigErrorf("empty phase name")
	case strings.ContainsAny(name, "/\\\x00") || strings.Contains(name, "..") || strings.HasPrefix(name, "."):
		return ConfigErrorf("invalid phase name %q", name)
	}
	return nil
}

// Depth phases start with a lowercase upgoing leg followed by a body phase.
func looksLikeDepthPhase(name string) bool {
	if len(name) < 2 {
		return false
	}
	return (name[0] == 'p' || name[0] == 's') && (name[1] == 'P' || name[1] == 'S')
}

// Return catalog phase names in a stable order.
func CatalogPhases() []string {
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// DefaultPhases returns the phase set generated when none is requested.
func DefaultPhases(mode Mode) []string {
	switch mode {
	case ModeLocal:
		return strings.Fields("P Pg Pb Pn S Sg Sb Sn")
	case ModeRegional:
		return strings.Fields("P Pg Pb Pn S Sg Sb Sn pP sP PP SS")
	default:
		return strings.Fields(`
			P Pg Pb Pn S Sg Sb Sn
			PP SS
			pP sP sS
			PKP PKPab PKPbc PKPdf pPKPab pPKPbc pPKPdf sPKPab sPKPbc sPKPdf SKPdf
			PcP ScS ScP`)
	}
}
