package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"tenantgrid/pkg/requestcontext"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubValidator struct{ err error }

func (v stubValidator) ValidateToken(string) error { return v.err }

func protectedHandler(validator TokenValidator) (http.Handler, *bool) {
	called := new(bool)
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { *called = true })
	return RequireAdmin(validator, testLogger)(next), called
}

func TestRequireAdminMissingToken(t *testing.T) {
	h, called := protectedHandler(stubValidator{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}

func TestRequireAdminRejectedToken(t *testing.T) {
	h, called := protectedHandler(stubValidator{err: errors.New("expired")})

	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, *called)
}

func TestRequireAdminValidToken(t *testing.T) {
	h, called := protectedHandler(stubValidator{})

	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *called)
}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = requestcontext.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-supplied")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "caller-supplied", seen)
}
