package dto

import "github.com/noah-isme/codemission/internal/models"

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRequest is the registration form. ConfirmPassword is checked locally and never sent.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,password_complexity"`
	ConfirmPassword string `json:"-" validate:"required,eqfield=Password"`
	StudentID       string `json:"studentId,omitempty" validate:"omitempty,max=50"`
	University      string `json:"university,omitempty" validate:"omitempty,max=100"`
	Career          string `json:"career,omitempty" validate:"omitempty,max=100"`
}

// ProfileUpdateRequest is the body of PATCH /auth/profile. Nil fields are left untouched.
type ProfileUpdateRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	University *string `json:"university,omitempty" validate:"omitempty,max=100"`
	Career     *string `json:"career,omitempty" validate:"omitempty,max=100"`
	StudentID  *string `json:"studentId,omitempty" validate:"omitempty,max=50"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}
