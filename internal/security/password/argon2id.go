package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

var Default = Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, SaltLen: 16, KeyLen: 32}

var ErrEmptyPassword = errors.New("empty password")

// Hash devuelve un PHC string: $argon2id$v=19$m=...,t=...,p=...$<saltB64>$<dkB64>
func Hash(p Params, plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	dk := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

// Verify compara plain contra un hash almacenado. Acepta PHC argon2id y,
// para cuentas importadas, hashes bcrypt ($2a$, $2b$, $2y$).
func Verify(plain, stored string) bool {
	switch {
	case strings.HasPrefix(stored, "$argon2id$"):
		return verifyArgon2id(plain, stored)
	case strings.HasPrefix(stored, "$2a$"), strings.HasPrefix(stored, "$2b$"), strings.HasPrefix(stored, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
	default:
		return false
	}
}

// NeedsRehash reporta si el hash no es argon2id con los parámetros p.
func NeedsRehash(p Params, stored string) bool {
	m, t, par, _, _, ok := parsePHC(stored)
	if !ok {
		return true
	}
	return m != p.Memory || t != p.Time || par != p.Parallelism
}

func verifyArgon2id(plain, phc string) bool {
	m, t, p, salt, dk, ok := parsePHC(phc)
	if !ok {
		return false
	}
	key := argon2.IDKey([]byte(plain), salt, t, m, p, uint32(len(dk)))
	return subtle.ConstantTimeCompare(key, dk) == 1
}

// parsePHC separa "$argon2id$v=19$m=..,t=..,p=..$salt$dk".
func parsePHC(phc string) (m, t uint32, p uint8, salt, dk []byte, ok bool) {
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return
	}
	var v int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &v); err != nil || v != argon2.Version {
		return
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return
	}
	var err error
	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return
	}
	if dk, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(dk) == 0 {
		return
	}
	ok = true
	return
}
