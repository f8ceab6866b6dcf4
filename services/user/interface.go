package user

import (
	"context"
	"io"

	"cropconnect/models"
)

// UserService covers registration, login and profile management.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Me(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, upd models.UserUpdate) (*models.User, error)
	SetProfileImage(ctx context.Context, userID string, image io.Reader) (*models.User, error)
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Phone    string          `json:"phone"`
	Password string          `json:"password" binding:"required,min=6"`
	Role     models.Role     `json:"role" binding:"required"`
	Gender   models.Gender   `json:"gender"`
	Location models.Location `json:"location"`
}

// AuthResponse contains the user and a bearer token.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}
