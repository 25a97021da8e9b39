package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerServesUntilContextDone(t *testing.T) {
	f := newFixture(t)
	srv := NewServer(f.handler, WithShutdownTimeout(2*time.Second))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerOptions(t *testing.T) {
	srv := NewServer(http.NotFoundHandler(),
		WithAddr("127.0.0.1:9999"),
		WithTimeouts(5*time.Second, 0),
	)
	assert.Equal(t, "127.0.0.1:9999", srv.httpServer.Addr)
	assert.Equal(t, 5*time.Second, srv.httpServer.ReadTimeout)
	assert.Equal(t, 120*time.Second, srv.httpServer.WriteTimeout)
}
