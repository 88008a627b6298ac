package main

import (
	"fmt"
	"os"
	"ttgen/internal/config"
	"ttgen/internal/platform/log"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool

	// Run settings shared by generate and serve. Defaults come from the
	// environment and .env.
	runCfg       config.Run
	modeFlag     string
	depthsFlag   string
	distanceFlag string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ttgen",
	Short: "Travel-time table generator",
	Long: `ttgen synthesizes seismic travel-time tables over a depth x distance grid.

Reference times come from a travel-time service or a local velocity model.
Crustal phases are completed by a fitted near-surface correction and depth
phases at zero depth by their direct phase.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := log.Init(verbose); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one table file per phase",
	Long: `Builds the sampling grid of every requested phase, assembles the tables and
writes <output-dir>/<prefix>.<phase>.

A solver failure only affects its own phase: the partially filled table is
written with -1 for the missing cells. Configuration and model file errors
abort before any table is written.

Example:
  ttgen generate --mode local --model-file crust.tvel --oracle merged --phases P,Pg,Pn`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve tables over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "List the phase catalog and the default phase set of a mode",
	Args:  cobra.NoArgs,
	RunE:  listPhases,
}

func init() {
	config.LoadDotEnv()
	runCfg = config.FromEnv()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&runCfg.Model, "model", runCfg.Model, "Reference model (iasp91, ak135)")
	pf.StringVar(&modeFlag, "mode", string(runCfg.Grid.Mode), "Sampling mode (default, local, regional, custom)")
	pf.StringVar(&depthsFlag, "depths", "", "Custom mode depth samples in km, e.g. 0,10,35")
	pf.StringVar(&distanceFlag, "distance-range", "", "Custom mode distance range start,end,step in degrees")
	pf.BoolVar(&runCfg.Combine, "combine-phases", runCfg.Combine, "Combine branches into generic phases (P = Pg|Pb|Pn|P|Pdiff|PKPdf)")
	pf.StringVar(&runCfg.Oracle, "oracle", runCfg.Oracle, "Travel-time oracle (http, local, merged)")
	pf.StringVar(&runCfg.OracleURL, "oracle-url", runCfg.OracleURL, "Travel-time service base URL")
	pf.DurationVar(&runCfg.OracleTimeout, "oracle-timeout", runCfg.OracleTimeout, "Travel-time service request timeout")
	pf.StringVar(&runCfg.ModelFile, "model-file", runCfg.ModelFile, "Local velocity model (.tvel or depth vp vs density columns)")
	pf.StringVar(&runCfg.Cache, "cache", runCfg.Cache, "Oracle result cache (none, sqlite, postgres, redis)")
	pf.StringVar(&runCfg.CacheDSN, "cache-dsn", runCfg.CacheDSN, "Cache location: sqlite file, postgres or redis URL")
	pf.IntVar(&runCfg.RowWorkers, "row-workers", runCfg.RowWorkers, "Depth rows computed concurrently per phase (0 = GOMAXPROCS)")
	pf.Float64Var(&runCfg.ConradDepth, "conrad", runCfg.ConradDepth, "Conrad depth in km")
	pf.Float64Var(&runCfg.MohoDepth, "moho", runCfg.MohoDepth, "Moho depth in km")

	gf := generateCmd.Flags()
	gf.StringVarP(&runCfg.OutputDir, "output-dir", "o", runCfg.OutputDir, "Directory receiving the table files")
	gf.StringVar(&runCfg.Prefix, "prefix", runCfg.Prefix, "Table file prefix (defaults to the model name)")
	gf.StringSliceVar(&runCfg.Phases, "phases", runCfg.Phases, "Phases to tabulate (defaults to the mode's phase set)")
	gf.IntVar(&runCfg.PhaseWorkers, "workers", runCfg.PhaseWorkers, "Phases computed concurrently")

	serveCmd.Flags().StringVar(&servePort, "port", config.Get("PORT", "8080"), "Listen port")

	rootCmd.AddCommand(generateCmd, serveCmd, phasesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
