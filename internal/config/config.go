package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"env"`
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	} `yaml:"server"`

	Storage struct {
		// postgres | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int32         `yaml:"max_conns"`
			MinConns        int32         `yaml:"min_conns"`
			ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`

	JWT struct {
		Issuer        string        `yaml:"issuer"`
		AccessSecret  string        `yaml:"access_secret"`
		RefreshSecret string        `yaml:"refresh_secret"`
		AccessTTL     time.Duration `yaml:"access_ttl"`
		RefreshTTL    time.Duration `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Cookies struct {
		Domain string `yaml:"domain"`
		Secure bool   `yaml:"secure"`
		// strict | lax | none
		SameSite string `yaml:"samesite"`
	} `yaml:"cookies"`

	OTP struct {
		// postgres | redis | memory
		Store      string        `yaml:"store"`
		TTL        time.Duration `yaml:"ttl"`
		Digits     int           `yaml:"digits"`
		SweepEvery time.Duration `yaml:"sweep_every"`
	} `yaml:"otp"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		From               string `yaml:"from"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		TLSMode            string `yaml:"tls_mode"` // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"smtp"`

	Security struct {
		PasswordPolicy struct {
			MinLength     int    `yaml:"min_length"`
			RequireUpper  bool   `yaml:"require_upper"`
			RequireLower  bool   `yaml:"require_lower"`
			RequireDigit  bool   `yaml:"require_digit"`
			RequireSymbol bool   `yaml:"require_symbol"`
			BlacklistPath string `yaml:"blacklist_path"`
		} `yaml:"password_policy"`
	} `yaml:"security"`

	Providers struct {
		Google struct {
			Enabled  bool   `yaml:"enabled"`
			ClientID string `yaml:"client_id"`
		} `yaml:"google"`
	} `yaml:"providers"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		// redis | memory
		Backend string        `yaml:"backend"`
		Limit   int           `yaml:"limit"`
		Window  time.Duration `yaml:"window"`
		// IPs o CIDRs de los proxies cuyo X-Forwarded-For se respeta.
		TrustedProxies []string `yaml:"trusted_proxies"`
	} `yaml:"rate"`
}

// Default retorna una configuración utilizable sin archivo (dev local).
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	c.OTP.Store = c.Storage.Driver
	return c
}

// Load lee el YAML, aplica defaults, overrides por env y valida.
// Si path está vacío, arranca desde Default().
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyDefaults()
	c.applyEnvOverrides()
	if c.OTP.Store == "" {
		c.OTP.Store = c.Storage.Driver
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "bizdesk"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 64 << 10
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 10
	}
	if c.Storage.Postgres.ConnMaxLifetime == 0 {
		c.Storage.Postgres.ConnMaxLifetime = time.Hour
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "bizdesk:"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "bizdesk"
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 15 * time.Minute
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = 7 * 24 * time.Hour
	}
	if c.Cookies.SameSite == "" {
		c.Cookies.SameSite = "strict"
	}
	if c.OTP.TTL == 0 {
		c.OTP.TTL = 10 * time.Minute
	}
	if c.OTP.Digits == 0 {
		c.OTP.Digits = 6
	}
	if c.OTP.SweepEvery == 0 {
		c.OTP.SweepEvery = 15 * time.Minute
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.TLSMode == "" {
		c.SMTP.TLSMode = "auto"
	}
	pp := &c.Security.PasswordPolicy
	if pp.MinLength == 0 {
		pp.MinLength = 8
		pp.RequireUpper = true
		pp.RequireLower = true
		pp.RequireDigit = true
	}
	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	if c.Rate.Limit == 0 {
		c.Rate.Limit = 10
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}
}

// ─── helpers env ───

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

func (c *Config) applyEnvOverrides() {
	// APP / LOG
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}

	// REDIS
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Redis.DB = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_ACCESS_SECRET"); ok {
		c.JWT.AccessSecret = v
	}
	if v, ok := getEnvStr("JWT_REFRESH_SECRET"); ok {
		c.JWT.RefreshSecret = v
	}
	if v, ok := getEnvDur("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvDur("JWT_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}

	// COOKIES
	if v, ok := getEnvBool("COOKIE_SECURE"); ok {
		c.Cookies.Secure = v
	}
	if v, ok := getEnvStr("COOKIE_DOMAIN"); ok {
		c.Cookies.Domain = v
	}

	// OTP
	if v, ok := getEnvStr("OTP_STORE"); ok {
		c.OTP.Store = strings.ToLower(v)
	}
	if v, ok := getEnvDur("OTP_TTL"); ok {
		c.OTP.TTL = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_USER"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASS"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLSMode = strings.ToLower(v)
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.SMTP.InsecureSkipVerify = v
	}

	// PROVIDERS
	if v, ok := getEnvStr("GOOGLE_CLIENT_ID"); ok {
		c.Providers.Google.ClientID = v
		c.Providers.Google.Enabled = true
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_BACKEND"); ok {
		c.Rate.Backend = strings.ToLower(v)
	}
	if v, ok := getEnvInt("RATE_LIMIT"); ok {
		c.Rate.Limit = v
	}
	if v, ok := getEnvDur("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvStr("RATE_TRUSTED_PROXIES"); ok {
		c.Rate.TrustedProxies = splitList(v)
	}
}

// Validate chequea los valores críticos para arrancar el servicio.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, errors.New("jwt.access_secret must be at least 32 bytes"))
	}
	if len(c.JWT.RefreshSecret) < 32 {
		errs = append(errs, errors.New("jwt.refresh_secret must be at least 32 bytes"))
	}
	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("jwt access and refresh secrets must differ"))
	}
	if c.JWT.AccessTTL >= c.JWT.RefreshTTL {
		errs = append(errs, errors.New("jwt.access_ttl must be shorter than jwt.refresh_ttl"))
	}

	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	switch c.OTP.Store {
	case "memory", "postgres", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown otp.store %q", c.OTP.Store))
	}
	if c.OTP.Store == "postgres" && c.Storage.Driver != "postgres" {
		errs = append(errs, errors.New("otp.store postgres requires storage.driver postgres"))
	}
	if c.OTP.Digits < 4 || c.OTP.Digits > 10 {
		errs = append(errs, errors.New("otp.digits must be between 4 and 10"))
	}

	if (c.OTP.Store == "redis" || (c.Rate.Enabled && c.Rate.Backend == "redis")) && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required by otp.store or rate.backend"))
	}

	for _, p := range c.Rate.TrustedProxies {
		if !validProxy(p) {
			errs = append(errs, fmt.Errorf("rate.trusted_proxies: invalid ip or cidr %q", p))
		}
	}

	switch strings.ToLower(c.Cookies.SameSite) {
	case "strict", "lax", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown cookies.samesite %q", c.Cookies.SameSite))
	}

	if c.Providers.Google.Enabled && c.Providers.Google.ClientID == "" {
		errs = append(errs, errors.New("providers.google.client_id is required when enabled"))
	}

	if c.App.Env == "prod" && !c.Cookies.Secure {
		errs = append(errs, errors.New("cookies.secure must be true in prod"))
	}

	return errors.Join(errs...)
}

// splitList parte "a, b,,c" en [a b c].
func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validProxy(s string) bool {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		_, _, err := net.ParseCIDR(s)
		return err == nil
	}
	return net.ParseIP(s) != nil
}
