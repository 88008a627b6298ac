package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"ttgen/internal/domain"
	"ttgen/internal/platform/obs"
)

// SQLite backed cache of solver results. Keys are built by the caller
// (see oracle.CacheKey).
type SqliteTravelTimeCache struct {
	DB *sql.DB
}

func NewSqliteTravelTimeCache(db *sql.DB) *SqliteTravelTimeCache {
	return &SqliteTravelTimeCache{DB: db}
}

// SQLite caps bound parameters per statement; lookups are chunked.
const sqliteMaxParams = 500

func (s *SqliteTravelTimeCache) GetMany(
	ctx context.Context,
	keys []string,
) (_ map[string]domain.Result, err error) {
	defer obs.Time(ctx, "traveltime.sqlite.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("travel time cache: db is nil")
	}

	uniq := uniqueKeys(keys)
	out := make(map[string]domain.Result, len(uniq))

	for start := 0; start < len(uniq); start += sqliteMaxParams {
		end := min(start+sqliteMaxParams, len(uniq))
		if err := s.getChunk(ctx, uniq[start:end], out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (s *SqliteTravelTimeCache) getChunk(ctx context.Context, keys []string, out map[string]domain.Result) error {
	ph := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		ph[i] = "?"
		args[i] = k
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT cache_key, result
	FROM traveltime_cache
	WHERE cache_key IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("get travel time cache: query traveltime_cache table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var blob []byte
		if err := rows.Scan(&key, &blob); err != nil {
			return fmt.Errorf("get travel time cache: scan rows: %w", err)
		}
		r, err := DecodeResult(blob)
		if err != nil {
			return fmt.Errorf("get travel time cache key=%q: %w", key, err)
		}
		out[key] = r
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("get travel time cache: row iteration: %w", err)
	}
	return nil
}

func (s *SqliteTravelTimeCache) PutMany(ctx context.Context, results map[string]domain.Result) (err error) {
	defer obs.Time(ctx, "traveltime.sqlite.PutMany")(&err)

	if s.DB == nil {
		return errors.New("travel time cache: db is nil")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert travel time cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO traveltime_cache (cache_key, result)
	VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("insert travel time cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for key, r := range results {
		if strings.TrimSpace(key) == "" {
			return errors.New("insert travel time cache: empty key")
		}
		blob, err := EncodeResult(r)
		if err != nil {
			return fmt.Errorf("insert travel time cache key=%q: %w", key, err)
		}
		if _, err := stmt.ExecContext(ctx, key, blob); err != nil {
			return fmt.Errorf("insert travel time cache key=%q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert travel time cache commit: %w", err)
	}

	return nil
}
