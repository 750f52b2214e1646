package auth

import (
	"context"
	"strings"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

type memberService struct {
	*base
}

// CreateMember da de alta una cuenta con el rol indicado. La autorización
// del actor la hace RequireRole en la ruta; acá solo se registra quién fue.
// La cuenta queda sin email verificado y sin sesión.
func (s *memberService) CreateMember(ctx context.Context, actor repository.Principal, in MemberInput) (pu repository.PublicUser, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.member"),
		logger.Op("CreateMember"),
		logger.String("actor_id", actor.ID),
	)
	defer func() { outcome(ctx, "create_member", in.Email, err) }()

	email := normalizeEmail(in.Email)
	mobile := strings.TrimSpace(in.Mobile)
	if email == "" || in.Password == "" {
		return pu, ErrInvalidInput
	}
	if !in.Role.Valid() {
		return pu, ErrInvalidRole
	}
	if err := s.checkEmail(email); err != nil {
		return pu, err
	}
	if err := s.checkPassword(in.Password); err != nil {
		return pu, err
	}
	if err := s.checkMobile(mobile); err != nil {
		return pu, err
	}
	if err := s.ensureAvailable(ctx, email, "", mobile); err != nil {
		return pu, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return pu, err
	}
	u := &repository.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Mobile:       strPtr(mobile),
		PasswordHash: &hash,
		Role:         in.Role,
		Status:       repository.StatusActive,
	}
	if err := s.create(ctx, u); err != nil {
		return pu, err
	}
	log.Info("member created", logger.UserID(u.ID), logger.Role(string(u.Role)))
	return u.Public(), nil
}
