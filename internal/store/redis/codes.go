// Package redis implementa el CodeRepository sobre Redis.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
)

// expiredGrace mantiene la clave viva un rato después del vencimiento lógico
// para poder reportar "expired" en vez de "not found".
const expiredGrace = time.Hour

// consumeCodeLua compara y borra en un solo round-trip.
// KEYS[1] = clave del código
// ARGV[1] = código enviado
// ARGV[2] = now en unix ms
//
// Valor almacenado: "<code>|<expires_unix_ms>"
var consumeCodeLua = goredis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='not_found'}
end
local sep = string.find(data, '|', 1, true)
if not sep then
  redis.call('DEL', KEYS[1])
  return {err='not_found'}
end
local code = string.sub(data, 1, sep - 1)
local exp = tonumber(string.sub(data, sep + 1))
if tonumber(ARGV[2]) >= exp then
  return {err='expired'}
end
if code ~= ARGV[1] then
  return {err='mismatch'}
end
redis.call('DEL', KEYS[1])
return 1
`)

type CodeRepo struct {
	rdb    goredis.UniversalClient
	prefix string
}

func NewCodeRepo(rdb goredis.UniversalClient, prefix string) *CodeRepo {
	return &CodeRepo{rdb: rdb, prefix: prefix}
}

var _ repository.CodeRepository = (*CodeRepo)(nil)

func (r *CodeRepo) key(email string) string {
	return r.prefix + "otp:" + email
}

// Upsert pisa cualquier código anterior con un único SET.
func (r *CodeRepo) Upsert(ctx context.Context, c repository.VerificationCode) error {
	if strings.Contains(c.Code, "|") {
		return repository.ErrInvalidInput
	}
	val := c.Code + "|" + strconv.FormatInt(c.ExpiresAt.UnixMilli(), 10)
	ttl := c.Lifetime() + expiredGrace
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := r.rdb.Set(ctx, r.key(c.Email), val, ttl).Err(); err != nil {
		return fmt.Errorf("redis: upsert code: %w", err)
	}
	return nil
}

func (r *CodeRepo) Consume(ctx context.Context, email, code string, now time.Time) error {
	err := consumeCodeLua.Run(ctx, r.rdb, []string{r.key(email)}, code, now.UnixMilli()).Err()
	if err == nil {
		return nil
	}
	switch err.Error() {
	case "not_found":
		return repository.ErrCodeNotFound
	case "expired":
		return repository.ErrCodeExpired
	case "mismatch":
		return repository.ErrCodeMismatch
	default:
		return fmt.Errorf("redis: consume code: %w", err)
	}
}

// DeleteExpired no hace nada: Redis expira las claves por TTL.
func (r *CodeRepo) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
