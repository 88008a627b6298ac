// Package config resolves run settings from the environment, an optional
// .env file and command-line flags.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
	"ttgen/internal/domain"
	"ttgen/internal/services"

	"github.com/joho/godotenv"
)

const DefaultOracleURL = "https://service.iris.edu/irisws/traveltime/1"

// LoadDotEnv loads .env from the working directory when present. Variables
// already set in the environment win.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetInt returns fallback when the variable is unset or not an integer.
func GetInt(key string, fallback int) int {
	v, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func GetBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(Get(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

var (
	referenceModels = []string{"iasp91", "ak135"}
	oracleKinds     = []string{"http", "local", "merged"}
	cacheKinds      = []string{"none", "sqlite", "postgres", "redis"}
)

// Run holds the settings of one generation run. It is resolved once and
// passed by value.
type Run struct {
	Model     string // reference model: iasp91 | ak135
	ModelFile string // local or .tvel velocity model

	Oracle        string // http | local | merged
	OracleURL     string
	OracleTimeout time.Duration

	Cache    string // none | sqlite | postgres | redis
	CacheDSN string

	OutputDir string
	Prefix    string // file prefix, defaults to Model
	Phases    []string
	Combine   bool

	PhaseWorkers int
	RowWorkers   int

	ConradDepth float64 // km
	MohoDepth   float64 // km

	Grid    services.GridConfig
	Crustal services.CrustalConfig
}

// FromEnv returns the defaults overridden by TTGEN_* variables.
func FromEnv() Run {
	grid := services.DefaultGridConfig()
	grid.Mode = domain.Mode(Get("TTGEN_MODE", string(domain.ModeDefault)))

	return Run{
		Model:         strings.ToLower(Get("TTGEN_MODEL", "iasp91")),
		ModelFile:     Get("TTGEN_MODEL_FILE", ""),
		Oracle:        Get("TTGEN_ORACLE", "http"),
		OracleURL:     Get("TTGEN_ORACLE_URL", DefaultOracleURL),
		OracleTimeout: 30 * time.Second,
		Cache:         Get("TTGEN_CACHE", "none"),
		CacheDSN:      Get("TTGEN_CACHE_DSN", ""),
		OutputDir:     Get("TTGEN_OUTPUT_DIR", "tables"),
		Prefix:        Get("TTGEN_PREFIX", ""),
		Combine:       GetBool("TTGEN_COMBINE_PHASES", true),
		PhaseWorkers:  GetInt("TTGEN_WORKERS", 4),
		RowWorkers:    GetInt("TTGEN_ROW_WORKERS", 0),
		ConradDepth:   20,
		MohoDepth:     35,
		Grid:          grid,
		Crustal:       services.DefaultCrustalConfig(),
	}
}

// Validate reports the first inconsistency as a domain.ErrConfig error.
func (r Run) Validate() error {
	if !slices.Contains(referenceModels, r.Model) {
		return domain.ConfigErrorf("unsupported model %q (want one of %s)", r.Model, strings.Join(referenceModels, ", "))
	}
	if !slices.Contains(oracleKinds, r.Oracle) {
		return domain.ConfigErrorf("unknown oracle %q (want one of %s)", r.Oracle, strings.Join(oracleKinds, ", "))
	}
	if r.Oracle != "http" && r.ModelFile == "" {
		return domain.ConfigErrorf("oracle %q needs a velocity model file", r.Oracle)
	}
	if r.Oracle != "local" && r.OracleURL == "" {
		return domain.ConfigErrorf("oracle %q needs a service url", r.Oracle)
	}
	if !slices.Contains(cacheKinds, r.Cache) {
		return domain.ConfigErrorf("unknown cache %q (want one of %s)", r.Cache, strings.Join(cacheKinds, ", "))
	}
	if r.Cache != "none" && r.CacheDSN == "" {
		return domain.ConfigErrorf("cache %q needs a dsn", r.Cache)
	}
	if strings.TrimSpace(r.OutputDir) == "" {
		return domain.ConfigErrorf("output directory is empty")
	}
	if r.PhaseWorkers < 0 || r.RowWorkers < 0 {
		return domain.ConfigErrorf("worker counts must not be negative")
	}
	if r.ConradDepth <= 0 || r.MohoDepth <= 0 {
		return domain.ConfigErrorf("discontinuity depths must be positive")
	}
	if r.ConradDepth >= r.MohoDepth {
		return domain.ConfigErrorf("conrad depth %g must be less than moho depth %g", r.ConradDepth, r.MohoDepth)
	}
	if err := r.GridConfig().Validate(); err != nil {
		return err
	}
	if err := r.CrustalConfig().Validate(); err != nil {
		return err
	}
	return nil
}

// GridConfig samples crustal phases down to the Moho.
func (r Run) GridConfig() services.GridConfig {
	g := r.Grid
	g.CrustalMaxDepth = r.MohoDepth
	return g
}

// CrustalConfig fills crustal gaps down to the Moho.
func (r Run) CrustalConfig() services.CrustalConfig {
	c := r.Crustal
	c.MaxDepth = r.MohoDepth
	return c
}

// PhaseList returns the requested phases or the mode's default set.
func (r Run) PhaseList() []string {
	if len(r.Phases) > 0 {
		return slices.Clone(r.Phases)
	}
	mode, err := domain.ParseMode(string(r.Grid.Mode))
	if err != nil {
		mode = domain.ModeDefault
	}
	return domain.DefaultPhases(mode)
}

func (r Run) FilePrefix() string {
	if r.Prefix != "" {
		return r.Prefix
	}
	return r.Model
}

// CacheNamespace separates cached results of different models and oracles.
// Oracles answering from a local velocity model are keyed by its layers, so
// two model files never share cached times.
func (r Run) CacheNamespace(local *domain.VelocityModel) string {
	if r.Oracle == "http" || local == nil {
		return fmt.Sprintf("%s/%s", r.Oracle, r.Model)
	}
	return fmt.Sprintf("%s/%s/%s@%s", r.Oracle, r.Model, local.Name(), local.Fingerprint())
}

// ParseDepths parses a comma separated depth list such as "0,10,35".
func ParseDepths(s string) ([]float64, error) {
	var out []float64
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, domain.ConfigErrorf("depth sample %q is not a number", f)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseDistanceRange parses "start,end,step".
func ParseDistanceRange(s string) (*services.DistanceRange, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, domain.ConfigErrorf("distance range %q: want start,end,step", s)
	}
	var v [3]float64
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, domain.ConfigErrorf("distance range %q: %q is not a number", s, p)
		}
		v[i] = x
	}
	return &services.DistanceRange{Start: v[0], End: v[1], Step: v[2]}, nil
}
