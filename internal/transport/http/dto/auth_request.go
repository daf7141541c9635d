package dto

import (
	"strings"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/pkg/validation"
)

// -------- Core auth --------

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	return validation.Struct(r)
}

func (r RegisterRequest) Input() auth.RegisterInput {
	return auth.RegisterInput{Email: r.Email, Name: r.Name, Password: r.Password}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validation.Struct(r)
}

func (r LoginRequest) Input(client auth.ClientInfo) auth.LoginInput {
	return auth.LoginInput{Email: r.Email, Password: r.Password, Client: client}
}

// -------- Email verification --------

type VerifyEmailRequest struct {
	Email             string `json:"email" validate:"required"`
	VerificationToken string `json:"verificationToken" validate:"required"`
}

func (r *VerifyEmailRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validation.Struct(r)
}

func (r VerifyEmailRequest) Input() auth.VerifyEmailInput {
	return auth.VerifyEmailInput{Email: r.Email, Token: r.VerificationToken}
}

// -------- Password reset --------

// The response is identical whether or not the email exists.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

func (r *ForgotPasswordRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validation.Struct(r)
}

func (r ForgotPasswordRequest) Input() auth.ForgotPasswordInput {
	return auth.ForgotPasswordInput{Email: r.Email}
}

type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required"`
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

func (r *ResetPasswordRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validation.Struct(r)
}

func (r ResetPasswordRequest) Input() auth.ResetPasswordInput {
	return auth.ResetPasswordInput{Email: r.Email, Token: domain.ResetToken(r.Token), Password: r.Password}
}
