package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteLaxMode, ParseSameSite(" Lax "))
	assert.Equal(t, http.SameSiteNoneMode, ParseSameSite("none"))
	assert.Equal(t, http.SameSiteStrictMode, ParseSameSite("strict"))
	assert.Equal(t, http.SameSiteStrictMode, ParseSameSite(""))
	assert.Equal(t, http.SameSiteStrictMode, ParseSameSite("bogus"))
}

func TestSessionCookies(t *testing.T) {
	cfg := CookieConfig{Domain: "example.com", Secure: true}
	rec := httptest.NewRecorder()
	SetSessionCookies(rec, cfg, "acc", "ref", 7*24*time.Hour)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, "example.com", c.Domain)
		assert.Equal(t, 7*24*3600, c.MaxAge)
	}
	assert.Equal(t, AccessCookie, cookies[0].Name)
	assert.Equal(t, "acc", cookies[0].Value)
	assert.Equal(t, RefreshCookie, cookies[1].Name)
	assert.Equal(t, "ref", cookies[1].Value)

	rec = httptest.NewRecorder()
	ClearSessionCookies(rec, cfg)
	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, -1, c.MaxAge)
		assert.Empty(t, c.Value)
	}
}

type sample struct {
	Email string `json:"email" validate:"required,email"`
}

func TestReadJSON(t *testing.T) {
	cases := []struct {
		name   string
		ct     string
		body   string
		max    int64
		ok     bool
		status int
		code   string
	}{
		{"ok", "application/json", `{"email":"a@x.com"}`, 0, true, 0, ""},
		{"no content type", "", `{"email":"a@x.com"}`, 0, true, 0, ""},
		{"form", "application/x-www-form-urlencoded", `email=a@x.com`, 0, false, http.StatusBadRequest, "BAD_REQUEST"},
		{"broken json", "application/json", `{"email":`, 0, false, http.StatusBadRequest, "INVALID_JSON"},
		{"empty", "application/json", ``, 0, false, http.StatusBadRequest, "BAD_REQUEST"},
		{"invalid field", "application/json", `{"email":"nope"}`, 0, false, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"too large", "application/json", `{"email":"` + strings.Repeat("a", 200) + `@x.com"}`, 64, false, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			if tc.ct != "" {
				req.Header.Set("Content-Type", tc.ct)
			}
			rec := httptest.NewRecorder()

			var v sample
			ok := ReadJSON(rec, req, tc.max, &v)
			require.Equal(t, tc.ok, ok, rec.Body.String())
			if tc.ok {
				assert.Equal(t, "a@x.com", v.Email)
				return
			}
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"`+tc.code+`"`)
		})
	}
}
