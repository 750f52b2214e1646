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

// SignupController maneja POST /signup.
type SignupController struct {
	service svc.SignupService
	cookies helpers.CookieConfig
}

func NewSignupController(service svc.SignupService, cookies helpers.CookieConfig) *SignupController {
	return &SignupController{service: service, cookies: cookies}
}

// Signup tiene tres formas: {email,password} envía el código (200),
// {email,password,otp} crea la cuenta (201) e {identityToken} crea desde el proveedor (201).
func (c *SignupController) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SignupController.Signup"))

	var req dto.SignupRequest
	if !helpers.ReadJSON(w, r, helpers.DefaultMaxBody, &req) {
		return
	}

	variant, ok := signupVariant(req)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("send either email and password, or identityToken"))
		return
	}

	res, err := c.service.Signup(ctx, variant)
	if err != nil {
		log.Debug("signup failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}

	if res.CodeSent {
		helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Verification code sent, check your email."})
		return
	}
	writeSession(w, c.cookies, http.StatusCreated, res.Session)
}

func signupVariant(req dto.SignupRequest) (svc.SignupRequest, bool) {
	hasToken := strings.TrimSpace(req.IdentityToken) != ""
	hasPassword := req.Email != "" || req.Password != ""

	switch {
	case hasToken && !hasPassword && req.OTP == "":
		return svc.ProviderSignup{IDToken: req.IdentityToken, Mobile: req.Mobile}, true
	case hasToken:
		return nil, false
	case req.Email == "" || req.Password == "":
		return nil, false
	case req.OTP != "":
		return svc.PasswordSignupComplete{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Mobile:   req.Mobile,
			Code:     req.OTP,
		}, true
	default:
		return svc.PasswordSignupStart{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Mobile:   req.Mobile,
		}, true
	}
}

// writeSession setea cookies de sesión y responde con la cuenta y el access token.
func writeSession(w http.ResponseWriter, cookies helpers.CookieConfig, status int, s *svc.Session) {
	helpers.SetSessionCookies(w, cookies, s.AccessToken, s.RefreshToken, s.RefreshTTL)
	helpers.WriteJSON(w, status, dto.AuthResponse{
		User:        s.User,
		AccessToken: s.AccessToken,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(s.AccessTTL.Seconds()),
	})
}
