package cache

import (
	"fmt"
	"ttgen/internal/domain"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeResult serializes a solver result for storage. A NoArrival result is
// stored as well, so that deterministic gaps are not recomputed.
func EncodeResult(r domain.Result) ([]byte, error) {
	b, err := msgpack.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return b, nil
}

func DecodeResult(b []byte) (domain.Result, error) {
	var r domain.Result
	if err := msgpack.Unmarshal(b, &r); err != nil {
		return domain.Result{}, fmt.Errorf("decode result: %w", err)
	}
	return r, nil
}

// uniqueKeys drops blank and duplicate keys, keeping the first occurrence.
func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
