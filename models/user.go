package models

import "time"

type Role string

const (
	RoleFarmer       Role = "farmer"
	RoleBuyer        Role = "buyer"
	RoleTractorOwner Role = "tractor_owner"
	RoleWorker       Role = "worker"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleBuyer, RoleTractorOwner, RoleWorker:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// User represents a platform account of any role.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	Phone        string    `bson:"phone" json:"phone,omitempty"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Role         Role      `bson:"role" json:"role"`
	Gender       Gender    `bson:"gender,omitempty" json:"gender,omitempty"`
	Location     Location  `bson:"location" json:"location"`
	ProfileImage string    `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	FCMToken     string    `bson:"fcmToken,omitempty" json:"-"`
	Rating       float64   `bson:"rating" json:"rating"`
	RatingCount  int       `bson:"ratingCount" json:"ratingCount"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UserUpdate carries the optional profile fields a user may change. Nil fields are left untouched.
type UserUpdate struct {
	Name         *string   `json:"name,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Gender       *Gender   `json:"gender,omitempty"`
	Location     *Location `json:"location,omitempty"`
	FCMToken     *string   `json:"fcmToken,omitempty"`
	ProfileImage *string   `json:"-"`
}
