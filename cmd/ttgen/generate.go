package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"ttgen/internal/adapters/tables"
	"ttgen/internal/platform/log"
	"ttgen/internal/platform/obs"
	"ttgen/internal/services"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func runGenerate(cmd *cobra.Command, args []string) error {
	r, err := resolveRun()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = obs.WithRunID(ctx, uuid.NewString())

	e, err := buildEngine(ctx, r)
	if err != nil {
		return err
	}
	defer e.close()

	sink, err := tables.NewDirSink(r.OutputDir, r.FilePrefix())
	if err != nil {
		return err
	}

	phases := r.PhaseList()
	log.Infow("generating tables",
		"model", r.Model,
		"mode", r.Grid.Mode,
		"oracle", r.Oracle,
		"phases", strings.Join(phases, ","),
		"output_dir", r.OutputDir,
	)

	report, err := services.GenerateTables(ctx, services.GenerateTablesRequest{
		Phases:       phases,
		Grid:         r.GridConfig(),
		Combine:      r.Combine,
		PhaseWorkers: r.PhaseWorkers,
		RowWorkers:   r.RowWorkers,
	}, e.oracle, e.corrector, sink)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range report.Phases {
		status := "ok"
		if p.Err != nil {
			status = "partial"
		}
		fmt.Fprintf(out, "%-8s %6d/%-6d %-7s %s\n", p.Phase, p.Defined, p.Cells, status, sink.Path(p.Phase))
	}
	if failed := report.Failed(); len(failed) > 0 {
		log.Warnw("tables written with solver failures", "phases", strings.Join(failed, ","))
	}

	return nil
}
