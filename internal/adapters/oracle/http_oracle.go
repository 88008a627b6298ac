package oracle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
	"ttgen/internal/domain"
	"ttgen/internal/platform/obs"
)

// HTTPOracle implements TravelTimeOracle against a traveltime web service
// (IRIS ws-traveltime text output) for a named reference model.
//
// One request resolves a whole depth row: phases and distances are sent as
// comma separated lists. The oracle is safe for concurrent use.
type HTTPOracle struct {
	session   *http.Client
	baseURL   string
	model     string
	userAgent string
}

func NewHTTPOracle(baseURL, model string, timeout time.Duration) (*HTTPOracle, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("traveltime service url is empty")
	}
	if model == "" {
		return nil, errors.New("traveltime reference model is empty")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPOracle{
		session:   &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		model:     model,
		userAgent: "ttgen",
	}, nil
}

func (o *HTTPOracle) Model() string { return o.model }

// Delegate to the row path so single queries and rows share parsing.
func (o *HTTPOracle) Compute(
	ctx context.Context,
	phases []string,
	depthKm float64,
	distanceDeg float64,
) (domain.Result, error) {
	results, err := o.ComputeRow(ctx, phases, depthKm, []float64{distanceDeg})
	if err != nil {
		return domain.Result{}, err
	}
	return results[0], nil
}

// Resolve many distances at one source depth in a single request.
func (o *HTTPOracle) ComputeRow(
	ctx context.Context,
	phases []string,
	depthKm float64,
	distancesDeg []float64,
) (_ []domain.Result, err error) {
	defer obs.Time(ctx, "traveltime.http.ComputeRow")(&err)

	if len(phases) == 0 {
		return nil, errors.New("traveltime query: no phases")
	}
	if depthKm < 0 {
		return nil, &domain.DomainError{Quantity: "depth", Value: depthKm, Min: 0, Max: math.Inf(1)}
	}
	if len(distancesDeg) == 0 {
		return []domain.Result{}, nil
	}
	if err := checkSpacing(distancesDeg); err != nil {
		return nil, fmt.Errorf("traveltime query: %w", err)
	}

	endpoint := o.queryURL(phases, depthKm, distancesDeg)

	req, err := o.newRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("traveltime query: %w", err)
	}

	resp, err := o.do(req)
	if err != nil {
		return nil, fmt.Errorf("traveltime request failed: %w", err)
	}
	defer resp.Body.Close()

	results := make([]domain.Result, len(distancesDeg))
	if resp.StatusCode == http.StatusNoContent {
		return results, nil
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || isHeaderLine(line) {
			continue
		}

		dist, arr, err := parseArrivalLine(line)
		if err != nil {
			return nil, fmt.Errorf("decode traveltime response: %w", err)
		}

		idx := nearestDistance(distancesDeg, dist)
		if idx < 0 {
			return nil, fmt.Errorf("decode traveltime response: unexpected distance %g", dist)
		}
		results[idx].Arrivals = append(results[idx].Arrivals, arr)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read traveltime response: %w", err)
	}

	return results, nil
}

func (o *HTTPOracle) queryURL(phases []string, depthKm float64, distancesDeg []float64) string {
	dists := make([]string, len(distancesDeg))
	for i, d := range distancesDeg {
		dists[i] = strconv.FormatFloat(d, 'f', -1, 64)
	}

	q := url.Values{}
	q.Set("model", o.model)
	q.Set("phases", strings.Join(phases, ","))
	q.Set("evdepth", strconv.FormatFloat(depthKm, 'f', -1, 64))
	q.Set("distdeg", strings.Join(dists, ","))
	q.Set("noheader", "true")
	q.Set("mintimeonly", "true")

	return o.baseURL + "/query?" + q.Encode()
}

func isHeaderLine(line string) bool {
	return strings.HasPrefix(line, "Model") ||
		strings.HasPrefix(line, "Distance") ||
		strings.HasPrefix(line, "(deg)") ||
		strings.HasPrefix(line, "-")
}

// Columns: distance depth phase time [ray param, takeoff, incident, ...].
func parseArrivalLine(line string) (float64, domain.Arrival, error) {
	f := strings.Fields(line)
	if len(f) < 4 {
		return 0, domain.Arrival{}, fmt.Errorf("short arrival line %q", line)
	}

	dist, err := strconv.ParseFloat(f[0], 64)
	if err != nil {
		return 0, domain.Arrival{}, fmt.Errorf("distance in %q: %w", line, err)
	}
	t, err := strconv.ParseFloat(f[3], 64)
	if err != nil {
		return 0, domain.Arrival{}, fmt.Errorf("time in %q: %w", line, err)
	}

	return dist, domain.Arrival{Phase: f[2], Time: t}, nil
}

// The service echoes distances rounded to two decimals, so requested
// distances must be at least 0.01 degrees apart to be told apart.
const minDistanceSpacing = 0.01

func checkSpacing(distances []float64) error {
	sorted := slices.Sorted(slices.Values(distances))
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] < minDistanceSpacing-1e-9 {
			return fmt.Errorf("distances %g and %g are closer than %g degrees", sorted[i-1], sorted[i], minDistanceSpacing)
		}
	}
	return nil
}

func nearestDistance(distances []float64, d float64) int {
	best, bestDiff := -1, 0.0051
	for i, x := range distances {
		if diff := math.Abs(x - d); diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best
}
