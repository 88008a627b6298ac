package oracle

import (
	"context"
	"fmt"
	"strings"
	"ttgen/internal/domain"
	"ttgen/internal/platform/log"
	"ttgen/internal/platform/obs"
	"ttgen/internal/ports"
)

// CachedOracle consults a persistent cache before the wrapped oracle.
// Oracle results are deterministic for a fixed model, so NoArrival outcomes
// are cached as well. Cache write failures are logged and ignored.
type CachedOracle struct {
	inner     ports.TravelTimeOracle
	cache     ports.TravelTimeCache
	namespace string
}

// namespace separates results of different reference models.
func NewCachedOracle(inner ports.TravelTimeOracle, cache ports.TravelTimeCache, namespace string) *CachedOracle {
	return &CachedOracle{inner: inner, cache: cache, namespace: namespace}
}

// CacheKey identifies one solver query.
func CacheKey(namespace string, phases []string, depthKm, distanceDeg float64) string {
	return fmt.Sprintf("%s|%s|%.4f|%.4f", namespace, strings.Join(phases, ","), depthKm, distanceDeg)
}

func (c *CachedOracle) Compute(ctx context.Context, phases []string, depthKm, distanceDeg float64) (domain.Result, error) {
	results, err := c.ComputeRow(ctx, phases, depthKm, []float64{distanceDeg})
	if err != nil {
		return domain.Result{}, err
	}
	return results[0], nil
}

func (c *CachedOracle) ComputeRow(
	ctx context.Context,
	phases []string,
	depthKm float64,
	distancesDeg []float64,
) (_ []domain.Result, err error) {
	defer obs.Time(ctx, "traveltime.cached.ComputeRow")(&err)

	if len(distancesDeg) == 0 {
		return []domain.Result{}, nil
	}

	keys := make([]string, len(distancesDeg))
	for i, d := range distancesDeg {
		keys[i] = CacheKey(c.namespace, phases, depthKm, d)
	}

	hits, err := c.cache.GetMany(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get travel time cache: %w", err)
	}

	out := make([]domain.Result, len(distancesDeg))
	var missIdx []int
	var missDist []float64
	for i, k := range keys {
		if r, ok := hits[k]; ok {
			out[i] = r
			continue
		}
		missIdx = append(missIdx, i)
		missDist = append(missDist, distancesDeg[i])
	}

	if len(missIdx) == 0 {
		return out, nil
	}

	fetched, err := computeRow(ctx, c.inner, phases, depthKm, missDist)
	if err != nil {
		return nil, err
	}
	if len(fetched) != len(missDist) {
		return nil, fmt.Errorf("oracle returned %d results for %d distances", len(fetched), len(missDist))
	}

	fresh := make(map[string]domain.Result, len(missIdx))
	for j, i := range missIdx {
		out[i] = fetched[j]
		fresh[keys[i]] = fetched[j]
	}

	if err := c.cache.PutMany(ctx, fresh); err != nil {
		log.Warnw("travel time cache write failed", "entries", len(fresh), "err", err)
	}

	return out, nil
}
