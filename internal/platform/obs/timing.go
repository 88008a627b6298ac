package obs

import (
	"context"
	"time"

	"ttgen/internal/platform/log"
)

type ctxKey string

const RunIDKey ctxKey = "run_id"

// WithRunID tags ctx so timings of one generation run can be correlated.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

// Time logs the duration of an operation. Use as
// defer obs.Time(ctx, "op")(&err).
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	runID, _ := ctx.Value(RunIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Debugw("op failed", "run_id", runID, "op", name, "dur_ms", dur.Milliseconds(), "err", *errp)
			return
		}
		log.Debugw("op done", "run_id", runID, "op", name, "dur_ms", dur.Milliseconds())
	}
}
