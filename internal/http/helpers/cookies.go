// Package helpers reúne utilidades compartidas por los controllers.
package helpers

import (
	"net/http"
	"strings"
	"time"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// CookieConfig define los atributos de las cookies de sesión.
type CookieConfig struct {
	Domain   string
	Secure   bool
	SameSite string // strict | lax | none
}

// ParseSameSite: default strict.
func ParseSameSite(s string) http.SameSite {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

func BuildCookie(name, value string, cfg CookieConfig, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: ParseSameSite(cfg.SameSite),
	}
	if strings.TrimSpace(cfg.Domain) != "" {
		ck.Domain = cfg.Domain
	}
	if ttl > 0 {
		ck.Expires = time.Now().Add(ttl).UTC()
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}

func BuildDeletionCookie(name string, cfg CookieConfig) *http.Cookie {
	ck := BuildCookie(name, "", cfg, 0)
	ck.Expires = time.Unix(0, 0).UTC()
	ck.MaxAge = -1
	return ck
}

// SetSessionCookies escribe access y refresh con la vida del refresh token.
func SetSessionCookies(w http.ResponseWriter, cfg CookieConfig, access, refresh string, ttl time.Duration) {
	http.SetCookie(w, BuildCookie(AccessCookie, access, cfg, ttl))
	http.SetCookie(w, BuildCookie(RefreshCookie, refresh, cfg, ttl))
}

func ClearSessionCookies(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, BuildDeletionCookie(AccessCookie, cfg))
	http.SetCookie(w, BuildDeletionCookie(RefreshCookie, cfg))
}
