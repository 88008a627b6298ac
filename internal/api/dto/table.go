package dto

// Values are seconds, depth-major; -1 marks cells without a travel time.
type TableResponse struct {
	Phase     string      `json:"phase"`
	Depths    []float64   `json:"depths_km"`
	Distances []float64   `json:"distances_deg"`
	Values    [][]float64 `json:"values"`
	Defined   int         `json:"defined"`
}
