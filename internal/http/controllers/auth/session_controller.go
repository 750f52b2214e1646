package auth

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dto "github.com/dropDatabas3/bizdesk/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/bizdesk/internal/http/errors"
	"github.com/dropDatabas3/bizdesk/internal/http/helpers"
	mw "github.com/dropDatabas3/bizdesk/internal/http/middlewares"
	svc "github.com/dropDatabas3/bizdesk/internal/http/services/auth"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

// SessionController maneja /refresh, /logout y /me.
type SessionController struct {
	service svc.SessionService
	cookies helpers.CookieConfig
}

func NewSessionController(service svc.SessionService, cookies helpers.CookieConfig) *SessionController {
	return &SessionController{service: service, cookies: cookies}
}

// Refresh toma el refresh token de la cookie y, si no hay, del body.
func (c *SessionController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SessionController.Refresh"))

	var token string
	if ck, err := r.Cookie(helpers.RefreshCookie); err == nil {
		token = ck.Value
	}
	if token == "" {
		var req dto.RefreshRequest
		r.Body = http.MaxBytesReader(w, r.Body, helpers.DefaultMaxBody)
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			httperrors.WriteError(w, httperrors.ErrInvalidJSON)
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		httperrors.WriteError(w, httperrors.ErrTokenMissing)
		return
	}

	sess, err := c.service.Refresh(ctx, token)
	if err != nil {
		log.Debug("refresh failed", logger.Err(err))
		if errors.Is(err, svc.ErrSessionRevoked) || errors.Is(err, svc.ErrRefreshExpired) {
			helpers.ClearSessionCookies(w, c.cookies)
		}
		writeAuthError(w, err)
		return
	}
	writeSession(w, c.cookies, http.StatusOK, sess)
}

// Logout invalida el refresh persistido y borra las cookies.
func (c *SessionController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	who, ok := mw.GetPrincipal(ctx)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	if err := c.service.Logout(ctx, who); err != nil {
		logger.From(ctx).Error("logout failed", logger.Op("SessionController.Logout"), logger.Err(err))
		writeAuthError(w, err)
		return
	}
	helpers.ClearSessionCookies(w, c.cookies)
	w.WriteHeader(http.StatusNoContent)
}

func (c *SessionController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	who, ok := mw.GetPrincipal(ctx)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	u, err := c.service.Me(ctx, who)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.UserResponse{User: u})
}
