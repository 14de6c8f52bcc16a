package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	h := http.NewServeMux()
	srv := New(":8080", h)

	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, http.Handler(h), srv.Handler)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
}

func TestShutdown(t *testing.T) {
	srv := New("127.0.0.1:0", http.NewServeMux())

	// Shutdown on a server that never started returns promptly.
	require.NoError(t, Shutdown(srv))
}
