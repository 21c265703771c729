package api

import "github.com/authline/authline/internal/domain"

// Request DTOs

type SignUpRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// Response DTOs

type SignUpResponse struct {
	User domain.User `json:"user"`
}

type SignInResponse struct {
	User domain.User `json:"user"`
	// Token is also set as an httpOnly cookie; returned in the body for
	// non-cookie clients (mobile, API clients).
	AccessToken string `json:"access_token"`
}

type UserResponse struct {
	User domain.User `json:"user"`
}

type ForgotPasswordResponse struct {
	// Token is the raw reset token; the caller is responsible for delivering
	// it to the user out of band. It is never persisted.
	Token string `json:"token"`
}

type ResetPasswordResponse struct {
	Message string `json:"message"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}
