// Package server cablea config, stores y services en el handler HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/bizdesk/internal/config"
	"github.com/dropDatabas3/bizdesk/internal/email"
	httpmetrics "github.com/dropDatabas3/bizdesk/internal/http"
	authctrl "github.com/dropDatabas3/bizdesk/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/bizdesk/internal/http/controllers/health"
	"github.com/dropDatabas3/bizdesk/internal/http/helpers"
	mw "github.com/dropDatabas3/bizdesk/internal/http/middlewares"
	"github.com/dropDatabas3/bizdesk/internal/http/router"
	svc "github.com/dropDatabas3/bizdesk/internal/http/services/auth"
	jwtx "github.com/dropDatabas3/bizdesk/internal/jwt"
	"github.com/dropDatabas3/bizdesk/internal/oauth/google"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
	"github.com/dropDatabas3/bizdesk/internal/otp"
	"github.com/dropDatabas3/bizdesk/internal/rate"
	"github.com/dropDatabas3/bizdesk/internal/security/password"
	"github.com/dropDatabas3/bizdesk/internal/store"
)

// Deps agrupa lo que BuildHandler necesita desde afuera.
type Deps struct {
	Config *config.Config
	Stores *store.Stores

	// Mailer nil usa NewMailer(Config).
	Mailer email.Sender
	// Identity nil usa Google si providers.google.enabled.
	Identity svc.IdentityVerifier
	// Metrics nil desactiva /metrics.
	Metrics *httpmetrics.MetricsConfig
}

// App es el resultado del wiring.
type App struct {
	Handler  http.Handler
	Services svc.Services
	Issuer   *jwtx.Issuer
	Janitor  *otp.Janitor
}

// BuildHandler arma services, controllers y router.
func BuildHandler(d Deps) (*App, error) {
	cfg := d.Config
	if cfg == nil || d.Stores == nil {
		return nil, fmt.Errorf("server: config and stores are required")
	}

	issuer, err := NewIssuer(cfg)
	if err != nil {
		return nil, err
	}
	policy, err := PolicyFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	mailer := d.Mailer
	if mailer == nil {
		mailer = NewMailer(cfg)
	}

	identity := d.Identity
	if identity == nil && cfg.Providers.Google.Enabled {
		identity = google.New(cfg.Providers.Google.ClientID, nil)
	}

	codes := otp.NewService(otp.Deps{
		Codes:   d.Stores.Codes,
		Mailer:  mailer,
		TTL:     cfg.OTP.TTL,
		Digits:  cfg.OTP.Digits,
		Product: cfg.App.Name,
	})

	services := svc.NewServices(svc.Deps{
		Users:    d.Stores.Users,
		Codes:    codes,
		Issuer:   issuer,
		Identity: identity,
		Policy:   policy,
	})

	var limiter rate.Limiter
	trusted, err := mw.ParseTrustedProxies(cfg.Rate.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if cfg.Rate.Enabled {
		var client rdb.UniversalClient
		if d.Stores.Redis != nil {
			client = d.Stores.Redis
		}
		factory, err := rate.FactoryFor(cfg.Rate.Backend, client, cfg.Redis.Prefix)
		if err != nil {
			return nil, err
		}
		limiter = rate.NewPool(factory).Get(cfg.Rate.Limit, cfg.Rate.Window)
	}

	var metricsHandler http.Handler
	if d.Metrics != nil {
		mc := *d.Metrics
		if mc.Pool == nil && d.Stores.Pool != nil {
			pool := d.Stores.Pool
			mc.Pool = func() *pgxpool.Pool { return pool }
		}
		metricsHandler, err = httpmetrics.RegisterMetrics(mc)
		if err != nil {
			return nil, fmt.Errorf("server: metrics: %w", err)
		}
	}

	checks := map[string]healthctrl.Check{"users": d.Stores.Users.Ping}
	if d.Stores.Redis != nil {
		rc := d.Stores.Redis
		checks["redis"] = func(ctx context.Context) error { return rc.Ping(ctx).Err() }
	}

	cookies := helpers.CookieConfig{
		Domain:   cfg.Cookies.Domain,
		Secure:   cfg.Cookies.Secure,
		SameSite: cfg.Cookies.SameSite,
	}

	h := router.New(router.Deps{
		Auth:     authctrl.NewControllers(services, cookies),
		Health:   healthctrl.NewHealthController(cfg.App.Version, checks),
		Verifier: issuer,
		Limiter:  limiter,
		Metrics:  metricsHandler,

		TrustedProxies: trusted,
	})

	return &App{
		Handler:  h,
		Services: services,
		Issuer:   issuer,
		Janitor:  &otp.Janitor{Codes: d.Stores.Codes, Every: cfg.OTP.SweepEvery},
	}, nil
}

// NewIssuer crea el firmador de sesión desde la config.
func NewIssuer(cfg *config.Config) (*jwtx.Issuer, error) {
	return jwtx.NewIssuer(jwtx.Config{
		Issuer:        cfg.JWT.Issuer,
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
}

// PolicyFromConfig arma la política de passwords, incluida la blacklist.
func PolicyFromConfig(cfg *config.Config) (password.Policy, error) {
	pp := cfg.Security.PasswordPolicy
	bl, err := password.LoadBlacklist(pp.BlacklistPath)
	if err != nil {
		return password.Policy{}, fmt.Errorf("server: password blacklist: %w", err)
	}
	return password.Policy{
		MinLength:     pp.MinLength,
		RequireUpper:  pp.RequireUpper,
		RequireLower:  pp.RequireLower,
		RequireDigit:  pp.RequireDigit,
		RequireSymbol: pp.RequireSymbol,
		Blacklist:     bl,
	}, nil
}

// NewMailer: SMTP si hay host configurado, si no LogSender (el cuerpo sólo se
// loguea fuera de prod).
func NewMailer(cfg *config.Config) email.Sender {
	if cfg.SMTP.Host == "" {
		logger.L().Warn("smtp.host empty, codes will not be delivered", logger.Component("email"))
		return email.LogSender{RevealBody: cfg.App.Env == "dev"}
	}
	return &email.SMTPSender{
		Host:               cfg.SMTP.Host,
		Port:               cfg.SMTP.Port,
		From:               cfg.SMTP.From,
		User:               cfg.SMTP.Username,
		Pass:               cfg.SMTP.Password,
		TLSMode:            cfg.SMTP.TLSMode,
		InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		Timeout:            10 * time.Second,
	}
}
