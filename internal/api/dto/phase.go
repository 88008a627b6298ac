package dto

type PhaseResponse struct {
	Name         string   `json:"name"`
	IsDepthPhase bool     `json:"is_depth_phase"`
	IsCrustal    bool     `json:"is_crustal"`
	Members      []string `json:"members"`
	MaxDistance  float64  `json:"max_distance_deg"`
}

type ListPhasesResponse struct {
	Phases []PhaseResponse `json:"phases"`
}
