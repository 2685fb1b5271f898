package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"yatube/app/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServerServesAndShutsDown(t *testing.T) {
	dirs := setupTestDirs(t)
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = time.Second
	require.Equal(t, dirs.db, cfg.Storage.Path)

	srv, err := NewServer(cfg, zap.NewNop())
	require.NoError(t, err)
	defer srv.Close()
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/", srv.Addr()))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Последние обновления на сайте")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerListenError(t *testing.T) {
	setupTestDirs(t)
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.Addr = "127.0.0.1:-1"

	srv, err := NewServer(cfg, zap.NewNop())
	require.NoError(t, err)
	defer srv.Close()
	assert.Error(t, srv.Serve(context.Background()))
}
