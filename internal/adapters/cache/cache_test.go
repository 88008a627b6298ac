package cache

import (
	"context"
	"os"
	"strconv"
	"testing"
	"ttgen/internal/adapters/repositories"
	"ttgen/internal/domain"
	"ttgen/internal/platform/db"
	"ttgen/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.TravelTimeCache = (*SqliteTravelTimeCache)(nil)
	_ ports.TravelTimeCache = (*SQLTravelTimeCache)(nil)
	_ ports.TravelTimeCache = (*RedisTravelTimeCache)(nil)
)

func sampleResults() map[string]domain.Result {
	return map[string]domain.Result{
		"iasp91|P|10.0000|30.0000": {Arrivals: []domain.Arrival{{Phase: "P", Time: 370.25}}},
		"iasp91|P|10.0000|45.0000": {Arrivals: []domain.Arrival{{Phase: "P", Time: 487.5}, {Phase: "PcP", Time: 560.1}}},
		"iasp91|Pg|300.0000|5.0000": {},
	}
}

func exerciseCache(t *testing.T, c ports.TravelTimeCache) {
	t.Helper()
	ctx := context.Background()

	empty, err := c.GetMany(ctx, []string{"absent"})
	require.NoError(t, err)
	require.Empty(t, empty)

	want := sampleResults()
	require.NoError(t, c.PutMany(ctx, want))

	keys := []string{"iasp91|P|10.0000|30.0000", "iasp91|P|10.0000|45.0000", "iasp91|Pg|300.0000|5.0000", "absent", ""}
	got, err := c.GetMany(ctx, keys)
	require.NoError(t, err)

	// NoArrival results are cached too.
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("cached results mismatch (-want +got):\n%s", diff)
	}
	require.True(t, got["iasp91|Pg|300.0000|5.0000"].NoArrival())

	// Overwrite keeps the latest value.
	updated := map[string]domain.Result{
		"iasp91|P|10.0000|30.0000": {Arrivals: []domain.Arrival{{Phase: "P", Time: 371}}},
	}
	require.NoError(t, c.PutMany(ctx, updated))
	got, err = c.GetMany(ctx, []string{"iasp91|P|10.0000|30.0000"})
	require.NoError(t, err)
	require.Equal(t, 371.0, got["iasp91|P|10.0000|30.0000"].Arrivals[0].Time)
}

func TestSqliteTravelTimeCache(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, repositories.InitSchema(ctx, sqlDB))
	exerciseCache(t, NewSqliteTravelTimeCache(sqlDB))
}

func TestSqliteTravelTimeCacheChunksLargeLookups(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer sqlDB.Close()
	require.NoError(t, repositories.InitSchema(ctx, sqlDB))

	c := NewSqliteTravelTimeCache(sqlDB)
	in := make(map[string]domain.Result)
	keys := make([]string, 0, 1200)
	for i := 0; i < 1200; i++ {
		k := "key-" + strconv.Itoa(i)
		keys = append(keys, k)
		in[k] = domain.Result{Arrivals: []domain.Arrival{{Phase: "P", Time: float64(i)}}}
	}
	require.NoError(t, c.PutMany(ctx, in))

	got, err := c.GetMany(ctx, keys)
	require.NoError(t, err)
	require.Len(t, got, 1200)
}

func TestRedisTravelTimeCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewRedisTravelTimeCache(client, "ttgen:", 0)
	exerciseCache(t, c)

	require.True(t, mr.Exists("ttgen:iasp91|P|10.0000|30.0000"))
}

func TestSQLTravelTimeCache(t *testing.T) {
	url := os.Getenv("TTGEN_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TTGEN_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	sqlDB, err := db.Open(ctx, url)
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, repositories.InitPostgresSchema(ctx, sqlDB))
	_, err = sqlDB.ExecContext(ctx, `DELETE FROM traveltime_cache`)
	require.NoError(t, err)

	exerciseCache(t, NewSQLTravelTimeCache(sqlDB))
}

func TestNilBackends(t *testing.T) {
	ctx := context.Background()

	_, err := NewSqliteTravelTimeCache(nil).GetMany(ctx, []string{"k"})
	require.Error(t, err)
	_, err = NewSQLTravelTimeCache(nil).GetMany(ctx, []string{"k"})
	require.Error(t, err)
	_, err = NewRedisTravelTimeCache(nil, "", 0).GetMany(ctx, []string{"k"})
	require.Error(t, err)
}
