package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/bizdesk/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/bizdesk/internal/http/errors"
	"github.com/dropDatabas3/bizdesk/internal/http/helpers"
	mw "github.com/dropDatabas3/bizdesk/internal/http/middlewares"
	svc "github.com/dropDatabas3/bizdesk/internal/http/services/auth"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

// PasswordController maneja /forgot-password y /change-password.
type PasswordController struct {
	service svc.PasswordService
}

func NewPasswordController(service svc.PasswordService) *PasswordController {
	return &PasswordController{service: service}
}

// ForgotPassword: {email} pide el código, {email,otp,newPassword} resetea.
// El primer paso responde igual exista o no la cuenta.
func (c *PasswordController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("PasswordController.ForgotPassword"))

	var req dto.ForgotPasswordRequest
	if !helpers.ReadJSON(w, r, helpers.DefaultMaxBody, &req) {
		return
	}

	var (
		variant svc.ForgotPasswordRequest
		msg     string
	)
	switch {
	case req.OTP == "" && req.NewPassword == "":
		variant = svc.ForgotStart{Email: req.Email}
		msg = "If an account exists for this email, a reset code has been sent."
	case req.OTP != "" && req.NewPassword != "":
		variant = svc.ForgotComplete{Email: req.Email, Code: req.OTP, NewPassword: req.NewPassword}
		msg = "Password updated, please log in."
	default:
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("otp and newPassword go together"))
		return
	}

	if err := c.service.ForgotPassword(ctx, variant); err != nil {
		log.Debug("forgot password failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: msg})
}

// ChangePassword requiere RequireAuth delante.
func (c *PasswordController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("PasswordController.ChangePassword"))

	who, ok := mw.GetPrincipal(ctx)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req dto.ChangePasswordRequest
	if !helpers.ReadJSON(w, r, helpers.DefaultMaxBody, &req) {
		return
	}

	if err := c.service.ChangePassword(ctx, who, req.CurrentPassword, req.NewPassword); err != nil {
		log.Debug("change password failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Password changed."})
}
