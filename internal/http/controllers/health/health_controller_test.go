package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthz(t *testing.T) {
	c := NewHealthController("1.2.3", nil)
	rec := httptest.NewRecorder()
	c.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestReadyz(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	t.Run("all up", func(t *testing.T) {
		c := NewHealthController("", map[string]Check{"postgres": ok, "redis": ok})
		rec := httptest.NewRecorder()
		c.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ready", body.Status)
		assert.Equal(t, map[string]string{"postgres": "up", "redis": "up"}, body.Components)
	})

	t.Run("one down", func(t *testing.T) {
		c := NewHealthController("", map[string]Check{"postgres": ok, "redis": down})
		rec := httptest.NewRecorder()
		c.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "unavailable", body.Status)
		assert.Equal(t, "down", body.Components["redis"])
		assert.NotContains(t, rec.Body.String(), "refused")
	})
}
