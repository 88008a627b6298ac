package oracle

import (
	"context"
	"sync/atomic"
	"ttgen/internal/domain"
)

// MockFunc returns the time of one arrival branch. ok false means the branch
// has no arrival; a non-nil error is a solver failure.
type MockFunc func(phase string, depthKm, distanceDeg float64) (t float64, ok bool, err error)

// MockOracle is an in-process oracle for tests and dry runs.
type MockOracle struct {
	fn    MockFunc
	calls atomic.Int64
}

func NewMockOracle(fn MockFunc) *MockOracle {
	return &MockOracle{fn: fn}
}

func (m *MockOracle) Compute(ctx context.Context, phases []string, depthKm, distanceDeg float64) (domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}
	m.calls.Add(1)

	var res domain.Result
	for _, p := range phases {
		t, ok, err := m.fn(p, depthKm, distanceDeg)
		if err != nil {
			return domain.Result{}, err
		}
		if ok {
			res.Arrivals = append(res.Arrivals, domain.Arrival{Phase: p, Time: t})
		}
	}
	return res, nil
}

// Number of single-cell queries served.
func (m *MockOracle) Calls() int { return int(m.calls.Load()) }

// MockBatchOracle also resolves whole depth rows.
type MockBatchOracle struct {
	*MockOracle
	rows atomic.Int64
}

func NewMockBatchOracle(fn MockFunc) *MockBatchOracle {
	return &MockBatchOracle{MockOracle: NewMockOracle(fn)}
}

func (m *MockBatchOracle) ComputeRow(ctx context.Context, phases []string, depthKm float64, distancesDeg []float64) ([]domain.Result, error) {
	m.rows.Add(1)

	out := make([]domain.Result, len(distancesDeg))
	for i, d := range distancesDeg {
		r, err := m.MockOracle.Compute(ctx, phases, depthKm, d)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// Number of row queries served.
func (m *MockBatchOracle) RowCalls() int { return int(m.rows.Load()) }
