package models

import "time"

type RequirementStatus string

const (
	RequirementOpen       RequirementStatus = "open"
	RequirementInProgress RequirementStatus = "in_progress"
	RequirementAccepted   RequirementStatus = "accepted"
	RequirementCompleted  RequirementStatus = "completed"
	RequirementCancelled  RequirementStatus = "cancelled"
)

type GenderPreference string

const (
	PreferAny    GenderPreference = "any"
	PreferMale   GenderPreference = "male"
	PreferFemale GenderPreference = "female"
)

// Allows reports whether a worker of gender g may see or apply to a requirement.
func (p GenderPreference) Allows(g Gender) bool {
	return p == "" || p == PreferAny || string(p) == string(g)
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Applicant is a worker's application embedded in a worker requirement.
type Applicant struct {
	WorkerID  string            `bson:"workerId" json:"workerId"`
	Status    ApplicationStatus `bson:"status" json:"status"`
	AppliedAt time.Time         `bson:"appliedAt" json:"appliedAt"`
	BookingID string            `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
}

// Requirement is a farmer-posted request for tractor work or labour.
type Requirement struct {
	ID              string            `bson:"id" json:"id"`
	Kind            ServiceType       `bson:"kind" json:"kind"`
	FarmerID        string            `bson:"farmerId" json:"farmerId"`
	WorkType        string            `bson:"workType" json:"workType"`
	LandSize        float64           `bson:"landSize,omitempty" json:"landSize,omitempty"`
	DurationDays    int               `bson:"durationDays,omitempty" json:"durationDays,omitempty"`
	WorkersNeeded   int               `bson:"workersNeeded,omitempty" json:"workersNeeded,omitempty"`
	HiredCount      int               `bson:"hiredCount,omitempty" json:"hiredCount,omitempty"`
	Location        Location          `bson:"location" json:"location"`
	Date            time.Time         `bson:"date" json:"date"`
	MaxBudget       float64           `bson:"maxBudget,omitempty" json:"maxBudget,omitempty"`
	WagePerDay      float64           `bson:"wagePerDay,omitempty" json:"wagePerDay,omitempty"`
	PreferredGender GenderPreference  `bson:"preferredGender" json:"preferredGender"`
	Description     string            `bson:"description,omitempty" json:"description,omitempty"`
	Status          RequirementStatus `bson:"status" json:"status"`
	AcceptedBy      string            `bson:"acceptedBy,omitempty" json:"acceptedBy,omitempty"`
	AcceptedAt      *time.Time        `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	BidCount        int               `bson:"bidCount" json:"bidCount"`
	Applicants      []Applicant       `bson:"applicants,omitempty" json:"applicants,omitempty"`
	CreatedAt       time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// Slots is how many workers the requirement hires before it closes.
func (r *Requirement) Slots() int {
	if r.WorkersNeeded < 1 {
		return 1
	}
	return r.WorkersNeeded
}

// Applicant returns the application of workerID, if any.
func (r *Requirement) Applicant(workerID string) *Applicant {
	for i := range r.Applicants {
		if r.Applicants[i].WorkerID == workerID {
			return &r.Applicants[i]
		}
	}
	return nil
}

// RequirementView is a listing entry annotated for the requesting user.
type RequirementView struct {
	Requirement `bson:",inline"`
	HasApplied  bool `json:"hasApplied"`
}

// RequirementFilter narrows requirement listings. Empty fields are ignored.
type RequirementFilter struct {
	Kind     ServiceType
	WorkType string
	District string
	State    string
	Status   RequirementStatus
	FarmerID string
	Genders  []GenderPreference
}

// RequirementInput is what a farmer submits when posting a requirement.
type RequirementInput struct {
	Kind            ServiceType      `json:"kind"`
	WorkType        string           `json:"workType"`
	LandSize        float64          `json:"landSize"`
	DurationDays    int              `json:"durationDays"`
	WorkersNeeded   int              `json:"workersNeeded"`
	Location        Location         `json:"location"`
	Date            time.Time        `json:"date"`
	MaxBudget       float64          `json:"maxBudget"`
	WagePerDay      float64          `json:"wagePerDay"`
	PreferredGender GenderPreference `json:"preferredGender"`
	Description     string           `json:"description"`
}
