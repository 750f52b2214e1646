package auth

import (
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/bizdesk/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/bizdesk/internal/http/errors"
	"github.com/dropDatabas3/bizdesk/internal/http/helpers"
	svc "github.com/dropDatabas3/bizdesk/internal/http/services/auth"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

// LoginController maneja POST /login.
type LoginController struct {
	service svc.LoginService
	cookies helpers.CookieConfig
}

func NewLoginController(service svc.LoginService, cookies helpers.CookieConfig) *LoginController {
	return &LoginController{service: service, cookies: cookies}
}

func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, helpers.DefaultMaxBody, &req) {
		return
	}

	var variant svc.LoginRequest
	switch {
	case strings.TrimSpace(req.IdentityToken) != "" && req.Email == "" && req.Password == "":
		variant = svc.ProviderLogin{IDToken: req.IdentityToken}
	case req.IdentityToken == "" && req.Email != "" && req.Password != "":
		variant = svc.PasswordLogin{Email: req.Email, Password: req.Password}
	default:
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("send either email and password, or identityToken"))
		return
	}

	sess, err := c.service.Login(ctx, variant)
	if err != nil {
		log.Debug("login failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}
	writeSession(w, c.cookies, http.StatusOK, sess)
}
