package handlers

import (
	"net/http"
)

// HealthHandler reports liveness and the model tables are computed for.
type HealthHandler struct {
	Model  string
	Oracle string
}

func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	res := map[string]string{
		"status": "ok",
		"model":  h.Model,
		"oracle": h.Oracle,
	}
	writeJSON(w, r, http.StatusOK, res)
}
