package auth

import (
	"net/http"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	dto "github.com/dropDatabas3/bizdesk/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/bizdesk/internal/http/errors"
	"github.com/dropDatabas3/bizdesk/internal/http/helpers"
	mw "github.com/dropDatabas3/bizdesk/internal/http/middlewares"
	svc "github.com/dropDatabas3/bizdesk/internal/http/services/auth"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

// MemberController maneja POST /members (sólo admin).
type MemberController struct {
	service svc.MemberService
}

func NewMemberController(service svc.MemberService) *MemberController {
	return &MemberController{service: service}
}

func (c *MemberController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MemberController.Create"))

	actor, ok := mw.GetPrincipal(ctx)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req dto.CreateMemberRequest
	if !helpers.ReadJSON(w, r, helpers.DefaultMaxBody, &req) {
		return
	}

	u, err := c.service.CreateMember(ctx, actor, svc.MemberInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Mobile:   req.Mobile,
		Role:     repository.Role(req.Role),
	})
	if err != nil {
		log.Debug("create member failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, dto.UserResponse{User: u})
}
