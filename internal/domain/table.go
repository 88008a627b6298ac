package domain

// Sentinel marks a cell with no valid travel time.
const Sentinel = -1.0

// Represents the travel times of one phase over a depth x distance grid.
// Values[i][j] is the time in seconds at Depths[i], Distances[j], or Sentinel.
// A table is populated once by the assembler and not mutated after writing.
type TravelTimeTable struct {
	Phase  Phase
	Grid   Grid
	Values [][]float64
}

// NewTravelTimeTable allocates a table with every cell set to Sentinel, so
// partially computed tables always have consistent dimensions.
func NewTravelTimeTable(phase Phase, grid Grid) *TravelTimeTable {
	values := make([][]float64, len(grid.Depths))
	for i := range values {
		row := make([]float64, len(grid.Distances))
		for j := range row {
			row[j] = Sentinel
		}
		values[i] = row
	}
	return &TravelTimeTable{Phase: phase, Grid: grid, Values: values}
}

// Number of cells holding a travel time.
func (t *TravelTimeTable) Defined() int {
	n := 0
	for _, row := range t.Values {
		for _, v := range row {
			if v != Sentinel {
				n++
			}
		}
	}
	return n
}
