package models

import "time"

// TractorService is a tractor owner's standing listing.
type TractorService struct {
	ID          string    `bson:"id" json:"id"`
	OwnerID     string    `bson:"ownerId" json:"ownerId"`
	Name        string    `bson:"name" json:"name"`
	Model       string    `bson:"model,omitempty" json:"model,omitempty"`
	HorsePower  int       `bson:"horsePower,omitempty" json:"horsePower,omitempty"`
	WorkTypes   []string  `bson:"workTypes" json:"workTypes"`
	RatePerAcre float64   `bson:"ratePerAcre" json:"ratePerAcre"`
	Location    Location  `bson:"location" json:"location"`
	Images      []string  `bson:"images,omitempty" json:"images,omitempty"`
	Available   bool      `bson:"available" json:"available"`
	Rating      float64   `bson:"rating" json:"rating"`
	RatingCount int       `bson:"ratingCount" json:"ratingCount"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// WorkerService is a worker's standing listing; one per worker.
type WorkerService struct {
	ID              string    `bson:"id" json:"id"`
	WorkerID        string    `bson:"workerId" json:"workerId"`
	Skills          []string  `bson:"skills" json:"skills"`
	WagePerDay      float64   `bson:"wagePerDay" json:"wagePerDay"`
	Gender          Gender    `bson:"gender,omitempty" json:"gender,omitempty"`
	ExperienceYears int       `bson:"experienceYears,omitempty" json:"experienceYears,omitempty"`
	Location        Location  `bson:"location" json:"location"`
	Images          []string  `bson:"images,omitempty" json:"images,omitempty"`
	Available       bool      `bson:"available" json:"available"`
	Rating          float64   `bson:"rating" json:"rating"`
	RatingCount     int       `bson:"ratingCount" json:"ratingCount"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

type TractorInput struct {
	Name        string   `json:"name" binding:"required"`
	Model       string   `json:"model"`
	HorsePower  int      `json:"horsePower"`
	WorkTypes   []string `json:"workTypes"`
	RatePerAcre float64  `json:"ratePerAcre" binding:"required,gt=0"`
	Location    Location `json:"location"`
}

type WorkerInput struct {
	Skills          []string `json:"skills"`
	WagePerDay      float64  `json:"wagePerDay" binding:"required,gt=0"`
	ExperienceYears int      `json:"experienceYears"`
	Location        Location `json:"location"`
	Available       *bool    `json:"available"`
}

type ListingFilter struct {
	District  string
	WorkType  string
	Skill     string
	Gender    Gender
	Available *bool
}
