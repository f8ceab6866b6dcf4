package userRepo

import (
	"context"

	"cropconnect/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// Create inserts a new user record. A taken email yields repository.ErrDuplicate.
	Create(ctx context.Context, user *models.User) error
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail retrieves a user by its email address.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Update applies the non-nil fields of upd and returns the stored user.
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	// FindCandidates returns users of a role whose district contains district (case-insensitive),
	// optionally restricted to genders.
	FindCandidates(ctx context.Context, role models.Role, district string, genders []models.Gender) ([]models.User, error)
	// UpdateRating stores a recomputed average rating.
	UpdateRating(ctx context.Context, id string, rating float64, count int) error
}
