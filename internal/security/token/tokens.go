package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"math/big"
	"strings"
)

// SHA256Base64URL devuelve sha256(input) en base64url sin padding (fingerprint de refresh tokens).
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// NumericCode genera un código de n dígitos uniforme en [0, 10^n), con ceros
// a la izquierda.
func NumericCode(n int) (string, error) {
	if n <= 0 || n > 18 {
		return "", errors.New("tokens: invalid code width")
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	s := v.String()
	if len(s) < n {
		s = strings.Repeat("0", n-len(s)) + s
	}
	return s, nil
}
