package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ttgen/internal/domain"
	"ttgen/internal/platform/obs"
)

// SQLTravelTimeCache is a Postgres-backed cache of solver results keyed by
// model, phase list, depth and distance.
type SQLTravelTimeCache struct {
	DB *sql.DB
}

func NewSQLTravelTimeCache(db *sql.DB) *SQLTravelTimeCache {
	return &SQLTravelTimeCache{DB: db}
}

// Fetch cached results for the given keys. Missing keys are absent from the map.
func (s *SQLTravelTimeCache) GetMany(
	ctx context.Context,
	keys []string,
) (_ map[string]domain.Result, err error) {
	defer obs.Time(ctx, "traveltime.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("travel time cache: db is nil")
	}

	uniq := uniqueKeys(keys)
	if len(uniq) == 0 {
		return map[string]domain.Result{}, nil
	}

	q := `
	SELECT cache_key, result
	FROM traveltime_cache
	WHERE cache_key = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get travel time cache: query traveltime_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Result, len(uniq))
	for rows.Next() {
		var key string
		var blob []byte
		if err := rows.Scan(&key, &blob); err != nil {
			return nil, fmt.Errorf("get travel time cache: scan rows: %w", err)
		}
		r, err := DecodeResult(blob)
		if err != nil {
			return nil, fmt.Errorf("get travel time cache key=%q: %w", key, err)
		}
		out[key] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get travel time cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many results in one transaction.
func (s *SQLTravelTimeCache) PutMany(
	ctx context.Context,
	results map[string]domain.Result,
) (err error) {
	defer obs.Time(ctx, "traveltime.cache.PutMany")(&err)

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
	INSERT INTO traveltime_cache (cache_key, result)
	VALUES ($1, $2)
	ON CONFLICT (cache_key) DO UPDATE
	SET result = EXCLUDED.result;
	`)
	if err != nil {
		return fmt.Errorf("insert travel time cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for key, r := range results {
		if key == "" {
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
