package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"
	"ttgen/internal/api/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeTables(t *testing.T) {
	resetFlags(t, writeFile(t, "crust.txt", crustModel))
	servePort = "0"

	r, err := resolveRun()
	require.NoError(t, err)
	e, err := buildEngine(context.Background(), r)
	require.NoError(t, err)
	defer e.close()

	srv := newServer(r, e)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveUntil(ctx, srv, ln) }()

	base := "http://" + ln.Addr().String()
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(base + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","model":"iasp91","oracle":"local"}`, string(body))

	resp, err = client.Get(fmt.Sprintf("%s/tables/Pg?format=json", base))
	require.NoError(t, err)
	var tbl dto.TableResponse
	err = json.NewDecoder(resp.Body).Decode(&tbl)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Pg", tbl.Phase)
	assert.Equal(t, 35.0, tbl.Depths[len(tbl.Depths)-1])
	assert.Equal(t, len(tbl.Depths)*len(tbl.Distances), tbl.Defined)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeRejectsBadConfig(t *testing.T) {
	resetFlags(t, writeFile(t, "crust.txt", crustModel))
	modeFlag = "global"

	err := runServe(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
