package services

import (
	"context"
	"fmt"
	"runtime"
	"ttgen/internal/domain"
	"ttgen/internal/platform/obs"
	"ttgen/internal/ports"

	"golang.org/x/sync/errgroup"
)

type cellState uint8

const (
	cellPending cellState = iota
	cellArrival
	cellNoArrival
)

// TableAssembler sweeps one phase over its grid, consulting the oracle first
// and falling back to the crustal corrector and the depth-phase filler.
type TableAssembler struct {
	Oracle    ports.TravelTimeOracle
	Corrector *CrustalCorrector
	Combine   bool
	// Concurrent depth rows per table. Zero means GOMAXPROCS.
	Workers int
}

func NewTableAssembler(oracle ports.TravelTimeOracle, corrector *CrustalCorrector, combine bool, workers int) *TableAssembler {
	return &TableAssembler{
		Oracle:    oracle,
		Corrector: corrector,
		Combine:   combine,
		Workers:   workers,
	}
}

// Assemble builds the table of one phase. On a solver failure the remaining
// cells are abandoned and the partially filled table is returned together
// with a *domain.SolverError; the table always has the grid's dimensions.
func (a *TableAssembler) Assemble(
	ctx context.Context,
	phase domain.Phase,
	grid domain.Grid,
) (_ *domain.TravelTimeTable, err error) {
	defer obs.Time(ctx, "assemble."+phase.Name)(&err)

	tbl := domain.NewTravelTimeTable(phase, grid)
	states := make([][]cellState, len(grid.Depths))
	for i := range states {
		states[i] = make([]cellState, len(grid.Distances))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers())

	// Each task owns one depth row of values and states.
	for i, depth := range grid.Depths {
		g.Go(func() error {
			return a.fillRow(gctx, phase, depth, grid.Distances, tbl.Values[i], states[i])
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return tbl, fmt.Errorf("assemble %s: %w", phase.Name, ctxErr)
		}
		return tbl, fmt.Errorf("assemble %s: %w", phase.Name, err)
	}

	if a.Corrector != nil && a.Corrector.Applies(phase) {
		a.fillCrustalGaps(phase, tbl, states)
	}

	if phase.IsDepthPhase {
		if err := a.fillZeroDepth(ctx, phase, tbl, states); err != nil {
			return tbl, fmt.Errorf("assemble %s: %w", phase.Name, err)
		}
	}

	return tbl, nil
}

func (a *TableAssembler) workers() int {
	if a.Workers > 0 {
		return a.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// fillRow records oracle values for one depth. A batch-capable oracle
// resolves the whole row in one call.
func (a *TableAssembler) fillRow(
	ctx context.Context,
	phase domain.Phase,
	depth float64,
	distances []float64,
	row []float64,
	states []cellState,
) error {
	if bo, ok := a.Oracle.(ports.BatchTravelTimeOracle); ok {
		results, err := bo.ComputeRow(ctx, phase.Members, depth, distances)
		if err != nil {
			return &domain.SolverError{Phase: phase.Name, DepthKm: depth, DistanceDeg: -1, Err: err}
		}
		if len(results) != len(distances) {
			return &domain.SolverError{
				Phase:       phase.Name,
				DepthKm:     depth,
				DistanceDeg: -1,
				Err:         fmt.Errorf("got %d results for %d distances", len(results), len(distances)),
			}
		}
		for j, d := range distances {
			v, ok := acceptedValue(results[j], phase, depth, d)
			record(row, states, j, v, ok)
		}
		return nil
	}

	for j, d := range distances {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, ok, err := oracleValue(ctx, a.Oracle, phase, depth, d)
		if err != nil {
			return err
		}
		record(row, states, j, v, ok)
	}
	return nil
}

func record(row []float64, states []cellState, j int, v float64, ok bool) {
	if !ok {
		states[j] = cellNoArrival
		return
	}
	row[j] = v
	states[j] = cellArrival
}

// fillCrustalGaps fits the corrector to the oracle-covered cells of this
// table, then fills the NoArrival cells inside the corrector's envelope.
func (a *TableAssembler) fillCrustalGaps(phase domain.Phase, tbl *domain.TravelTimeTable, states [][]cellState) {
	var samples []CrustalSample
	for i, depth := range tbl.Grid.Depths {
		for j, d := range tbl.Grid.Distances {
			if states[i][j] == cellArrival {
				samples = append(samples, CrustalSample{DepthKm: depth, DistanceDeg: d, Time: tbl.Values[i][j]})
			}
		}
	}

	fitted := a.Corrector.Fit(phase, samples)

	for i, depth := range tbl.Grid.Depths {
		for j, d := range tbl.Grid.Distances {
			if states[i][j] != cellNoArrival {
				continue
			}
			t, err := fitted.TravelTime(phase, depth, d)
			if err != nil {
				// Outside the envelope; the cell keeps the sentinel.
				continue
			}
			tbl.Values[i][j] = t
			states[i][j] = cellArrival
		}
	}
}

// fillZeroDepth applies the depth-phase substitution on the depth-0 row only.
func (a *TableAssembler) fillZeroDepth(
	ctx context.Context,
	phase domain.Phase,
	tbl *domain.TravelTimeTable,
	states [][]cellState,
) error {
	filler := DepthPhaseFiller{Oracle: a.Oracle, Combine: a.Combine}

	for i, depth := range tbl.Grid.Depths {
		if depth != 0 {
			continue
		}
		for j, d := range tbl.Grid.Distances {
			if states[i][j] != cellNoArrival {
				continue
			}
			v, ok, err := filler.Fill(ctx, phase, d)
			if err != nil {
				return err
			}
			if ok {
				tbl.Values[i][j] = v
				states[i][j] = cellArrival
			}
		}
	}
	return nil
}
