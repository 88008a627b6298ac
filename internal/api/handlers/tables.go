package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"ttgen/internal/adapters/tables"
	"ttgen/internal/api/dto"
	"ttgen/internal/config"
	"ttgen/internal/domain"
	"ttgen/internal/platform/log"
	"ttgen/internal/ports"
	"ttgen/internal/services"

	"github.com/gorilla/mux"
)

type TableHandler struct {
	Oracle    ports.TravelTimeOracle
	Corrector *services.CrustalCorrector
	Grid      services.GridConfig
	Combine   bool
	Workers   int
}

// Get assembles one phase table on demand.
//
// Query parameters: mode, combine, depths (custom mode, "0,10,35"),
// distances (custom mode, "start,end,step") and format (text, json, msgpack).
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(mux.Vars(r)["phase"])
	if err := domain.ValidatePhaseName(name); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "json" && format != "msgpack" {
		writeError(w, r, http.StatusBadRequest, "format must be text, json or msgpack")
		return
	}

	combine := h.Combine
	if v := q.Get("combine"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "combine must be a boolean")
			return
		}
		combine = b
	}

	cfg, err := h.gridConfig(q.Get("mode"), q.Get("depths"), q.Get("distances"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	phase := domain.LookupPhase(name, combine)
	grid, err := services.BuildPhaseGrid(cfg, phase)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	assembler := services.NewTableAssembler(h.Oracle, h.Corrector, combine, h.Workers)
	tbl, err := assembler.Assemble(r.Context(), phase, grid)
	if err != nil {
		if errors.Is(err, domain.ErrSolver) {
			log.Warnw("table assembly failed", "phase", name, "err", err)
			writeError(w, r, http.StatusBadGateway, err.Error())
			return
		}
		log.Errorw("table assembly failed", "phase", name, "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	switch format {
	case "json", "msgpack":
		res := dto.TableResponse{
			Phase:     tbl.Phase.Name,
			Depths:    tbl.Grid.Depths,
			Distances: tbl.Grid.Distances,
			Values:    tbl.Values,
			Defined:   tbl.Defined(),
		}
		if format == "json" {
			writeJSON(w, r, http.StatusOK, res)
		} else {
			writeMsgPack(w, r, http.StatusOK, res)
		}
	default:
		writeText(w, r, http.StatusOK, tables.Format(tbl))
	}
}

// gridConfig overrides the server sampling with the request's. Explicit
// samples from the request replace the configured ones.
func (h *TableHandler) gridConfig(mode, depths, distances string) (services.GridConfig, error) {
	cfg := h.Grid

	if mode != "" {
		m, err := domain.ParseMode(mode)
		if err != nil {
			return cfg, err
		}
		if m != domain.ModeCustom {
			cfg.DepthSamples = nil
			cfg.DistanceRange = nil
		}
		cfg.Mode = m
	}
	if depths != "" {
		d, err := config.ParseDepths(depths)
		if err != nil {
			return cfg, err
		}
		cfg.DepthSamples = d
	}
	if distances != "" {
		dr, err := config.ParseDistanceRange(distances)
		if err != nil {
			return cfg, err
		}
		cfg.DistanceRange = dr
	}
	return cfg, cfg.Validate()
}
