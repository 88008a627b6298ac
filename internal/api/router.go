package api

import (
	"net/http"
	"ttgen/internal/api/handlers"
	"ttgen/internal/ports"
	"ttgen/internal/services"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Model      string
	OracleKind string

	Oracle    ports.TravelTimeOracle
	Corrector *services.CrustalCorrector
	Grid      services.GridConfig
	Combine   bool
	Workers   int
}

// NewRouter wires the table handlers to an oracle. Handlers only see ports,
// never concrete adapters.
func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()

	healthHandler := &handlers.HealthHandler{Model: cfg.Model, Oracle: cfg.OracleKind}
	phaseHandler := &handlers.PhaseHandler{Combine: cfg.Combine}
	tableHandler := &handlers.TableHandler{
		Oracle:    cfg.Oracle,
		Corrector: cfg.Corrector,
		Grid:      cfg.Grid,
		Combine:   cfg.Combine,
		Workers:   cfg.Workers,
	}

	router.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)
	router.HandleFunc("/phases", phaseHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/tables/{phase}", tableHandler.Get).Methods(http.MethodGet)

	return requestMiddleware(router)
}
