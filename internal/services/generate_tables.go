package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"ttgen/internal/domain"
	"ttgen/internal/platform/log"
	"ttgen/internal/platform/obs"
	"ttgen/internal/ports"

	"golang.org/x/sync/errgroup"
)

type GenerateTablesRequest struct {
	Phases  []string
	Grid    GridConfig
	Combine bool

	// Phases computed concurrently, and depth rows per phase.
	PhaseWorkers int
	RowWorkers   int
}

// Outcome of one phase. Err is set when the table was written partially.
type PhaseReport struct {
	Phase   string
	Cells   int
	Defined int
	Err     error
}

type GenerateTablesReport struct {
	Phases []PhaseReport
}

// Failed returns the phases whose tables were written partially.
func (r *GenerateTablesReport) Failed() []string {
	var out []string
	for _, p := range r.Phases {
		if p.Err != nil {
			out = append(out, p.Phase)
		}
	}
	return out
}

type phaseJob struct {
	phase domain.Phase
	grid  domain.Grid
}

// GenerateTables assembles and writes one table per requested phase.
//
// Grids are built for every phase before any computation, so configuration
// errors abort the run up front. A solver failure is fatal to its phase only:
// the partial table is still written and the failure logged and reported.
// A sink failure aborts the run.
func GenerateTables(
	ctx context.Context,
	req GenerateTablesRequest,
	oracle ports.TravelTimeOracle,
	corrector *CrustalCorrector,
	sink ports.TableSink,
) (_ *GenerateTablesReport, err error) {
	defer obs.Time(ctx, "generate_tables")(&err)

	if len(req.Phases) == 0 {
		return nil, fmt.Errorf("generate tables: %w", domain.ConfigErrorf("no phases requested"))
	}

	jobs := make([]phaseJob, 0, len(req.Phases))
	for _, name := range req.Phases {
		name = strings.TrimSpace(name)
		if err := domain.ValidatePhaseName(name); err != nil {
			return nil, fmt.Errorf("generate tables: %w", err)
		}
		phase := domain.LookupPhase(name, req.Combine)
		grid, err := BuildPhaseGrid(req.Grid, phase)
		if err != nil {
			return nil, fmt.Errorf("generate tables: %w", err)
		}
		jobs = append(jobs, phaseJob{phase: phase, grid: grid})
	}

	assembler := NewTableAssembler(oracle, corrector, req.Combine, req.RowWorkers)
	reports := make([]PhaseReport, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	phaseWorkers := req.PhaseWorkers
	if phaseWorkers <= 0 {
		phaseWorkers = 1
	}
	g.SetLimit(phaseWorkers)

	for i, job := range jobs {
		g.Go(func() error {
			log.Infow("processing phase",
				"phase", job.phase.Name,
				"index", i+1,
				"total", len(jobs),
				"depths", len(job.grid.Depths),
				"distances", len(job.grid.Distances),
			)

			tbl, err := assembler.Assemble(gctx, job.phase, job.grid)
			if err != nil && !errors.Is(err, domain.ErrSolver) {
				return err
			}

			reports[i] = PhaseReport{
				Phase:   job.phase.Name,
				Cells:   len(job.grid.Depths) * len(job.grid.Distances),
				Defined: tbl.Defined(),
				Err:     err,
			}
			if err != nil {
				log.Warnw("phase table incomplete, writing partial table",
					"phase", job.phase.Name,
					"defined", reports[i].Defined,
					"cells", reports[i].Cells,
					"err", err,
				)
			}

			if err := sink.WriteTable(gctx, tbl); err != nil {
				return fmt.Errorf("write table %s: %w", job.phase.Name, err)
			}
			log.Infow("table written", "phase", job.phase.Name, "defined", reports[i].Defined, "cells", reports[i].Cells)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &GenerateTablesReport{Phases: reports}, fmt.Errorf("generate tables: %w", err)
	}

	return &GenerateTablesReport{Phases: reports}, nil
}
