package main

import (
	"context"
	"os"
	"testing"
	"time"
	"ttgen/internal/platform/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunRequiresDatabaseURL(t *testing.T) {
	log.Set(zap.NewNop())

	err := run(context.Background(), " ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestRunUnreachableDatabase(t *testing.T) {
	log.Set(zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := run(ctx, "postgres://ttgen@127.0.0.1:1/ttgen?sslmode=disable&connect_timeout=2")
	assert.Error(t, err)
}

func TestRunCreatesSchema(t *testing.T) {
	url := os.Getenv("TTGEN_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TTGEN_TEST_DATABASE_URL not set")
	}
	log.Set(zap.NewNop())

	require.NoError(t, run(context.Background(), url))
	// Idempotent.
	require.NoError(t, run(context.Background(), url))
}
