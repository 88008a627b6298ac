package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"ttgen/internal/adapters/cache"
	"ttgen/internal/adapters/oracle"
	"ttgen/internal/adapters/repositories"
	"ttgen/internal/config"
	"ttgen/internal/domain"
	"ttgen/internal/platform/db"
	"ttgen/internal/platform/log"
	"ttgen/internal/ports"
	"ttgen/internal/services"

	"github.com/redis/go-redis/v9"
)

// resolveRun merges the sampling flags into the run settings and validates
// the result.
func resolveRun() (config.Run, error) {
	r := runCfg
	r.Model = strings.ToLower(strings.TrimSpace(r.Model))

	mode, err := domain.ParseMode(modeFlag)
	if err != nil {
		return r, err
	}
	r.Grid.Mode = mode

	if depthsFlag != "" {
		if r.Grid.DepthSamples, err = config.ParseDepths(depthsFlag); err != nil {
			return r, err
		}
	}
	if distanceFlag != "" {
		if r.Grid.DistanceRange, err = config.ParseDistanceRange(distanceFlag); err != nil {
			return r, err
		}
	}

	if err := r.Validate(); err != nil {
		return r, err
	}
	return r, nil
}

// engine holds the composed oracle and crustal corrector of one run.
type engine struct {
	oracle    ports.TravelTimeOracle
	corrector *services.CrustalCorrector
	close     func()
}

// buildEngine is the composition root shared by generate and serve. Model
// file errors are returned before any oracle or cache is opened.
func buildEngine(ctx context.Context, r config.Run) (*engine, error) {
	var model *domain.VelocityModel
	if r.ModelFile != "" {
		m, err := repositories.LoadVelocityModel(r.ModelFile, repositories.FormatFromPath(r.ModelFile))
		if err != nil {
			return nil, err
		}
		model = m
		log.Infow("velocity model loaded", "model", m.Name(), "layers", len(m.Layers()), "max_depth_km", m.MaxDepth())
	}

	crustal := r.CrustalConfig().WithModel(model)
	if err := crustal.Validate(); err != nil {
		return nil, err
	}

	o, err := buildOracle(r, model)
	if err != nil {
		return nil, err
	}

	e := &engine{
		oracle:    o,
		corrector: services.NewCrustalCorrector(crustal),
		close:     func() {},
	}

	if r.Cache == "none" || r.Cache == "" {
		return e, nil
	}

	c, closeCache, err := openCache(ctx, r.Cache, r.CacheDSN)
	if err != nil {
		return nil, err
	}
	ns := r.CacheNamespace(model)
	e.oracle = oracle.NewCachedOracle(o, c, ns)
	e.close = closeCache
	log.Infow("oracle cache enabled", "cache", r.Cache, "namespace", ns)

	return e, nil
}

func buildOracle(r config.Run, model *domain.VelocityModel) (ports.TravelTimeOracle, error) {
	switch r.Oracle {
	case "local":
		return oracle.NewStraightRayOracle(model), nil
	case "merged":
		ref, err := oracle.NewHTTPOracle(r.OracleURL, r.Model, r.OracleTimeout)
		if err != nil {
			return nil, err
		}
		return oracle.NewMergedOracle(oracle.NewStraightRayOracle(model), ref), nil
	default:
		ref, err := oracle.NewHTTPOracle(r.OracleURL, r.Model, r.OracleTimeout)
		if err != nil {
			return nil, err
		}
		return ref, nil
	}
}

func openCache(ctx context.Context, kind, dsn string) (ports.TravelTimeCache, func(), error) {
	switch kind {
	case "sqlite":
		conn, err := db.OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return cache.NewSqliteTravelTimeCache(conn), closeDB(conn), nil

	case "postgres":
		conn, err := db.Open(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitPostgresSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return cache.NewSQLTravelTimeCache(conn), closeDB(conn), nil

	case "redis":
		opts, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis cache: %w", domain.ConfigErrorf("bad redis url: %v", err))
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("open redis cache: ping: %w", err)
		}
		closer := func() {
			if err := client.Close(); err != nil {
				log.Warnw("close redis cache", "err", err)
			}
		}
		return cache.NewRedisTravelTimeCache(client, "ttgen:", 0), closer, nil
	}
	return nil, nil, domain.ConfigErrorf("unknown cache %q", kind)
}

func closeDB(conn *sql.DB) func() {
	return func() {
		if err := conn.Close(); err != nil {
			log.Warnw("close cache db", "err", err)
		}
	}
}
