package memstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cropconnect/database/repository"
	userRepo "cropconnect/database/repository/user"
	"cropconnect/models"
)

type users struct{ s *Store }

func (s *Store) Users() userRepo.UserRepository { return users{s} }

func (r users) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.s.users {
		if u.Email == user.Email || u.ID == user.ID {
			return fmt.Errorf("user %s: %w", user.Email, repository.ErrDuplicate)
		}
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users = append(r.s.users, *user)
	return nil
}

func (r users) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if match(u) {
			out := u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
}

func (r users) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r users) Update(_ context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.users {
		u := &r.s.users[i]
		if u.ID != id {
			continue
		}
		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.Phone != nil {
			u.Phone = *upd.Phone
		}
		if upd.Gender != nil {
			u.Gender = *upd.Gender
		}
		if upd.Location != nil {
			u.Location = *upd.Location
		}
		if upd.FCMToken != nil {
			u.FCMToken = *upd.FCMToken
		}
		if upd.ProfileImage != nil {
			u.ProfileImage = *upd.ProfileImage
		}
		u.UpdatedAt = time.Now()
		out := *u
		return &out, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
}

func (r users) FindCandidates(_ context.Context, role models.Role, district string, genders []models.Gender) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.User
	for _, u := range r.s.users {
		if u.Role != role {
			continue
		}
		if district != "" && !containsFold(u.Location.District, district) {
			continue
		}
		if len(genders) > 0 && !genderIn(u.Gender, genders) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func genderIn(g models.Gender, list []models.Gender) bool {
	for _, x := range list {
		if x == g {
			return true
		}
	}
	return false
}

func (r users) UpdateRating(_ context.Context, id string, rating float64, count int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.users {
		if r.s.users[i].ID == id {
			r.s.users[i].Rating = rating
			r.s.users[i].RatingCount = count
			return nil
		}
	}
	return fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
}
