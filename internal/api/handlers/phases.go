package handlers

import (
	"net/http"
	"ttgen/internal/api/dto"
	"ttgen/internal/domain"
)

// PhaseHandler lists the phase catalog.
type PhaseHandler struct {
	Combine bool
}

func (h *PhaseHandler) List(w http.ResponseWriter, r *http.Request) {
	names := domain.CatalogPhases()

	res := dto.ListPhasesResponse{
		Phases: make([]dto.PhaseResponse, 0, len(names)),
	}
	for _, n := range names {
		p := domain.LookupPhase(n, h.Combine)
		res.Phases = append(res.Phases, dto.PhaseResponse{
			Name:         p.Name,
			IsDepthPhase: p.IsDepthPhase,
			IsCrustal:    p.IsCrustal,
			Members:      p.Members,
			MaxDistance:  p.MaxDistance,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
