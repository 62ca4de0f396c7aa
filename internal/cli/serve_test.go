package cli_test

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/aretw0/vigil/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- cli.Serve(ctx, cli.ServeOptions{Listener: ln, Out: &out, Err: io.Discard})
	}()

	base := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Contains(t, out.String(), "Starting Vigil Server on "+ln.Addr().String())
	assert.Contains(t, out.String(), "Vigil Server stopped gracefully")
}

func TestServe_BadRedisURL(t *testing.T) {
	err := cli.Serve(context.Background(), cli.ServeOptions{RedisURL: "::", Quiet: true, Err: io.Discard})
	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestServeMCP_Errors(t *testing.T) {
	err := cli.ServeMCP(context.Background(), cli.MCPOptions{RedisURL: "::", In: bytes.NewReader(nil), Out: io.Discard, Err: io.Discard})
	assert.ErrorContains(t, err, "failed to connect to redis")

	err = cli.ServeMCP(context.Background(), cli.MCPOptions{EncryptionKey: []byte("short"), In: bytes.NewReader(nil), Out: io.Discard, Err: io.Discard})
	assert.ErrorContains(t, err, "encryption key must be 32 bytes")
}
