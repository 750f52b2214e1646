// Package auth define los cuerpos JSON de los endpoints de autenticación.
package auth

import "github.com/dropDatabas3/bizdesk/internal/domain/repository"

// SignupRequest acepta {email,password[,name,mobile]}, {…,otp} o {identityToken[,mobile]}.
type SignupRequest struct {
	Email         string `json:"email" validate:"omitempty,email,max=254"`
	Password      string `json:"password" validate:"omitempty,max=256"`
	Name          string `json:"name" validate:"omitempty,max=120"`
	Mobile        string `json:"mobile" validate:"omitempty,mobile"`
	OTP           string `json:"otp" validate:"omitempty,otp"`
	IdentityToken string `json:"identityToken" validate:"omitempty,excluded_with=Password,max=8192"`
}

// LoginRequest acepta {email,password} o {identityToken}.
type LoginRequest struct {
	Email         string `json:"email" validate:"omitempty,email,max=254"`
	Password      string `json:"password" validate:"omitempty,max=256"`
	IdentityToken string `json:"identityToken" validate:"omitempty,excluded_with=Password,max=8192"`
}

// ForgotPasswordRequest acepta {email} o {email,otp,newPassword}.
type ForgotPasswordRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	OTP         string `json:"otp" validate:"omitempty,otp"`
	NewPassword string `json:"newPassword" validate:"omitempty,max=256"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	OTP   string `json:"otp" validate:"required,otp"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,max=256"`
	NewPassword     string `json:"newPassword" validate:"required,max=256"`
}

// RefreshRequest: el refresh token puede venir en el body si no hay cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// CreateMemberRequest es el alta administrativa.
type CreateMemberRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=256"`
	Name     string `json:"name" validate:"omitempty,max=120"`
	Mobile   string `json:"mobile" validate:"omitempty,mobile"`
	Role     string `json:"role" validate:"required,role"`
}

// AuthResponse es la respuesta de signup/login/refresh.
type AuthResponse struct {
	User        repository.PublicUser `json:"user"`
	AccessToken string                `json:"accessToken"`
	TokenType   string                `json:"tokenType"`
	ExpiresIn   int64                 `json:"expiresIn"`
}

type UserResponse struct {
	User repository.PublicUser `json:"user"`
}

// MessageResponse para pasos sin datos (código enviado, password cambiada).
type MessageResponse struct {
	Message string `json:"message"`
}
