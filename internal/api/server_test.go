package api_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/netpong/internal/api"
	"github.com/mcoot/netpong/internal/testutil"
)

func TestServerListenServeShutdown(t *testing.T) {
	cfg := api.DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	srv := api.NewServer(handler, cfg, testutil.NopLogger())
	require.NoError(t, srv.Listen())

	_, port, err := net.SplitHostPort(srv.Addr())
	require.NoError(t, err)
	assert.NotEqual(t, "0", port)

	served := make(chan error, 1)
	go func() { served <- srv.Serve() }()

	resp, err := http.Get("http://" + srv.Addr() + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-served)
}

func TestServerListenFailsOnBoundPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	cfg := api.DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port, err = net.LookupPort("tcp", port)
	require.NoError(t, err)

	srv := api.NewServer(http.NotFoundHandler(), cfg, testutil.NopLogger())
	assert.Error(t, srv.Listen())
	assert.Error(t, srv.Serve())
}
