// Package google valida ID tokens emitidos por Google y los normaliza.
package google

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

const DefaultDiscoveryURL = "https://accounts.google.com/.well-known/openid-configuration"

// ErrInvalidToken agrupa cualquier falla criptográfica o estructural.
var ErrInvalidToken = errors.New("google: invalid identity token")

var validIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// Claim es la identidad normalizada que sale de un ID token válido.
type Claim struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type discoveryDoc struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

type jwk struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"` // base64url
	E   string `json:"e"` // base64url
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// Verifier valida ID tokens contra las claves publicadas por Google.
type Verifier struct {
	ClientID     string
	DiscoveryURL string

	http  *http.Client
	cache *gocache.Cache
	group singleflight.Group
	now   func() time.Time
}

const (
	keyDiscovery = "discovery"
	keyJWKS      = "jwks"
	keyETag      = "jwks_etag"
	discoveryTTL = 24 * time.Hour
	jwksTTL      = time.Hour
)

// New crea un verificador para clientID. client nil usa un cliente con timeout de 10s.
func New(clientID string, client *http.Client) *Verifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Verifier{
		ClientID:     clientID,
		DiscoveryURL: DefaultDiscoveryURL,
		http:         client,
		cache:        gocache.New(jwksTTL, 10*time.Minute),
		now:          time.Now,
	}
}

// Verify valida firma RS256, emisor, audiencia y expiración y devuelve el claim.
// Un email no verificado NO es error acá: lo decide el llamador.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*Claim, error) {
	log := logger.From(ctx).With(logger.Component("google.verifier"))

	claims := jwtv5.MapClaims{}
	_, err := jwtv5.ParseWithClaims(idToken, claims, func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("kid missing")
		}
		return v.rsaKeyForKid(ctx, kid)
	},
		jwtv5.WithValidMethods([]string{"RS256"}),
		jwtv5.WithAudience(v.ClientID),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithLeeway(30*time.Second),
		jwtv5.WithTimeFunc(v.now),
	)
	if err != nil {
		log.Debug("id token rejected", logger.Err(err))
		return nil, ErrInvalidToken
	}

	iss, _ := claims["iss"].(string)
	if !validIssuers[iss] {
		log.Debug("id token rejected", logger.String("reason", "issuer"))
		return nil, ErrInvalidToken
	}

	out := &Claim{
		Subject:       strClaim(claims, "sub"),
		Email:         strings.ToLower(strings.TrimSpace(strClaim(claims, "email"))),
		EmailVerified: boolClaim(claims, "email_verified"),
		Name:          strClaim(claims, "name"),
		Picture:       strClaim(claims, "picture"),
	}
	if out.Subject == "" || out.Email == "" {
		return nil, ErrInvalidToken
	}
	return out, nil
}

func (v *Verifier) discovery(ctx context.Context) (*discoveryDoc, error) {
	if d, ok := v.cache.Get(keyDiscovery); ok {
		return d.(*discoveryDoc), nil
	}
	res, err, _ := v.group.Do(keyDiscovery, func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.DiscoveryURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := v.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			return nil, fmt.Errorf("discovery http %d", resp.StatusCode)
		}
		var dd discoveryDoc
		if err := json.NewDecoder(resp.Body).Decode(&dd); err != nil {
			return nil, err
		}
		if dd.JWKSURI == "" {
			return nil, errors.New("discovery without jwks_uri")
		}
		v.cache.Set(keyDiscovery, &dd, discoveryTTL)
		return &dd, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*discoveryDoc), nil
}

// getJWKS retorna el set cacheado; force lo refresca (rotación de claves)
// usando If-None-Match con el ETag previo.
func (v *Verifier) getJWKS(ctx context.Context, force bool) (*jwks, error) {
	if !force {
		if j, ok := v.cache.Get(keyJWKS); ok {
			return j.(*jwks), nil
		}
	}
	disc, err := v.discovery(ctx)
	if err != nil {
		return nil, err
	}
	res, err, _ := v.group.Do(keyJWKS, func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, disc.JWKSURI, nil)
		if err != nil {
			return nil, err
		}
		prev, hasPrev := v.cache.Get(keyJWKS)
		if etag, ok := v.cache.Get(keyETag); ok && hasPrev {
			req.Header.Set("If-None-Match", etag.(string))
		}
		resp, err := v.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotModified && hasPrev {
			v.cache.Set(keyJWKS, prev, jwksTTL)
			return prev, nil
		}
		if resp.StatusCode/100 != 2 {
			return nil, fmt.Errorf("jwks http %d", resp.StatusCode)
		}
		var jj jwks
		if err := json.NewDecoder(resp.Body).Decode(&jj); err != nil {
			return nil, err
		}
		v.cache.Set(keyJWKS, &jj, jwksTTL)
		if etag := resp.Header.Get("ETag"); etag != "" {
			v.cache.Set(keyETag, etag, gocache.NoExpiration)
		}
		return &jj, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*jwks), nil
}

func (v *Verifier) rsaKeyForKid(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	set, err := v.getJWKS(ctx, false)
	if err != nil {
		return nil, err
	}
	if k, ok := findKey(set, kid); ok {
		return k.rsa()
	}
	// kid desconocido: puede ser rotación, refrescamos una vez
	set, err = v.getJWKS(ctx, true)
	if err != nil {
		return nil, err
	}
	if k, ok := findKey(set, kid); ok {
		return k.rsa()
	}
	return nil, errors.New("kid not found")
}

func findKey(set *jwks, kid string) (jwk, bool) {
	for _, k := range set.Keys {
		if k.Kid == kid && strings.EqualFold(k.Kty, "RSA") {
			return k, true
		}
	}
	return jwk{}, false
}

func (k jwk) rsa() (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	e := 65537
	if len(eb) > 0 {
		e = 0
		for _, b := range eb {
			e = (e << 8) | int(b)
		}
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}

func strClaim(m jwtv5.MapClaims, k string) string {
	s, _ := m[k].(string)
	return s
}

// boolClaim acepta bool o "true" (algunos emisores serializan como string).
func boolClaim(m jwtv5.MapClaims, k string) bool {
	switch v := m[k].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}
