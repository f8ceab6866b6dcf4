package user

import (
	"context"
	"errors"
	"io"
	"strings"

	"cropconnect/database/repository"
	userRepo "cropconnect/database/repository/user"
	"cropconnect/models"
	"cropconnect/services/notification"
	"cropconnect/services/storage"
	"cropconnect/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo     userRepo.UserRepository
	Tokens   *utils.JWTManager
	Storage  storage.StorageService
	Notifier notification.Emitter
	Logger   *zap.Logger
}

// Register validates the sign-up data, hashes the password, persists the user and returns a token.
func (s *DefaultUserService) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || in.Name == "" {
		return nil, utils.Validation("name and email are required")
	}
	if len(in.Password) < 6 {
		return nil, utils.Validation("password must be at least 6 characters")
	}
	if !in.Role.Valid() {
		return nil, utils.Validation("role must be farmer, buyer, tractor_owner or worker")
	}
	switch in.Gender {
	case "", models.GenderMale, models.GenderFemale, models.GenderOther:
	default:
		return nil, utils.Validation("gender must be male, female or other")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.Internal("failed to hash password", err)
	}

	u := &models.User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hashed),
		Role:         in.Role,
		Gender:       in.Gender,
		Location:     in.Location,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.Conflict("a user with this email already exists")
		}
		return nil, utils.Internal("failed to create user", err)
	}

	token, err := s.Tokens.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		return nil, utils.Internal("failed to generate auth token", err)
	}
	s.Logger.Info("user registered", zap.String("userId", u.ID), zap.String("role", string(u.Role)))

	s.Notifier.Emit(ctx, models.NotificationInput{
		RecipientID: u.ID,
		Type:        models.NotifyWelcome,
		Title:       "Welcome to Crop Connect",
		Message:     "Your account is ready.",
		Refs:        models.NotificationRefs{UserID: u.ID},
	})
	return &AuthResponse{Token: token, User: u}, nil
}

// Login verifies the credentials and issues a new token.
func (s *DefaultUserService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	u, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, utils.Internal("failed to fetch user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, utils.Unauthorized("invalid email or password")
	}

	token, err := s.Tokens.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		return nil, utils.Internal("failed to generate auth token", err)
	}
	return &AuthResponse{Token: token, User: u}, nil
}

func (s *DefaultUserService) Me(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("user not found")
	}
	if err != nil {
		return nil, utils.Internal("failed to get user", err)
	}
	return u, nil
}

// UpdateProfile applies the profile fields a user may change about themselves.
func (s *DefaultUserService) UpdateProfile(ctx context.Context, userID string, upd models.UserUpdate) (*models.User, error) {
	upd.ProfileImage = nil
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, utils.Validation("name cannot be empty")
		}
		upd.Name = &name
	}
	if upd.Gender != nil {
		switch *upd.Gender {
		case models.GenderMale, models.GenderFemale, models.GenderOther:
		default:
			return nil, utils.Validation("gender must be male, female or other")
		}
	}
	return s.update(ctx, userID, upd)
}

func (s *DefaultUserService) update(ctx context.Context, userID string, upd models.UserUpdate) (*models.User, error) {
	u, err := s.Repo.Update(ctx, userID, upd)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("user not found")
	}
	if err != nil {
		return nil, utils.Internal("failed to update user", err)
	}
	return u, nil
}

// SetProfileImage uploads a new profile image and stores its URL.
func (s *DefaultUserService) SetProfileImage(ctx context.Context, userID string, image io.Reader) (*models.User, error) {
	if _, err := s.Me(ctx, userID); err != nil {
		return nil, err
	}
	res, err := s.Storage.UploadImage(ctx, image, "profiles")
	if err != nil {
		return nil, err
	}
	return s.update(ctx, userID, models.UserUpdate{ProfileImage: &res.URL})
}
