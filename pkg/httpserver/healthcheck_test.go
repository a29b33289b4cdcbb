package httpserver_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/quotakit/pkg/httpserver"
)

func TestHealthCheckHandler(t *testing.T) {
	t.Parallel()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	call := func(h http.HandlerFunc) (int, string) {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		body, err := io.ReadAll(rec.Result().Body)
		require.NoError(t, err)
		return rec.Code, string(body)
	}

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()
		code, body := call(httpserver.HealthCheckHandler(context.Background(), log))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ALIVE", body)
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		ok := func(context.Context) error { return nil }
		code, body := call(httpserver.HealthCheckHandler(context.Background(), log, ok, ok))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "READY", body)
	})

	t.Run("not ready", func(t *testing.T) {
		t.Parallel()
		ok := func(context.Context) error { return nil }
		bad := func(context.Context) error { return errors.New("connection refused") }
		code, body := call(httpserver.HealthCheckHandler(context.Background(), log, ok, bad))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "NOT_READY", body)
	})
}
