package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/bizdesk/internal/http/dto/auth"
	"github.com/dropDatabas3/bizdesk/internal/http/helpers"
	svc "github.com/dropDatabas3/bizdesk/internal/http/services/auth"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

// CodeController maneja /resend-otp y /verify-otp.
type CodeController struct {
	service svc.CodeService
}

func NewCodeController(service svc.CodeService) *CodeController {
	return &CodeController{service: service}
}

func (c *CodeController) Resend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CodeController.Resend"))

	var req dto.ResendOTPRequest
	if !helpers.ReadJSON(w, r, helpers.DefaultMaxBody, &req) {
		return
	}
	if err := c.service.ResendCode(ctx, req.Email); err != nil {
		log.Debug("resend code failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Verification code sent, check your email."})
}

func (c *CodeController) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CodeController.Verify"))

	var req dto.VerifyOTPRequest
	if !helpers.ReadJSON(w, r, helpers.DefaultMaxBody, &req) {
		return
	}
	if err := c.service.VerifyCode(ctx, req.Email, req.OTP); err != nil {
		log.Debug("verify code failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Email verified."})
}
