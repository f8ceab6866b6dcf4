package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Booking is the agreed unit of work against which payment is settled.
type Booking struct {
	ID            string        `bson:"id" json:"id"`
	FarmerID      string        `bson:"farmerId" json:"farmerId"`
	ProviderID    string        `bson:"providerId" json:"providerId"`
	ServiceType   ServiceType   `bson:"serviceType" json:"serviceType"`
	Service       *ServiceRef   `bson:"service,omitempty" json:"service,omitempty"` // nil when derived from a requirement
	RequirementID string        `bson:"requirementId,omitempty" json:"requirementId,omitempty"`
	BidID         string        `bson:"bidId,omitempty" json:"bidId,omitempty"`
	WorkType      string        `bson:"workType,omitempty" json:"workType,omitempty"`
	Date          time.Time     `bson:"date" json:"date"`
	Duration      float64       `bson:"duration,omitempty" json:"duration,omitempty"`
	LandSize      float64       `bson:"landSize,omitempty" json:"landSize,omitempty"`
	TotalCost     float64       `bson:"totalCost" json:"totalCost"`
	Location      Location      `bson:"location" json:"location"`
	Notes         string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Status        BookingStatus `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	CompletedAt   *time.Time    `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt   *time.Time    `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelledBy   string        `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// IsParty reports whether userID is the farmer or the provider of the booking.
func (b *Booking) IsParty(userID string) bool {
	return userID != "" && (b.FarmerID == userID || b.ProviderID == userID)
}

// Counterparty returns the other side of the booking relative to userID.
func (b *Booking) Counterparty(userID string) string {
	if b.FarmerID == userID {
		return b.ProviderID
	}
	return b.FarmerID
}

// DirectBookingInput is a farmer's request to book a listed service.
type DirectBookingInput struct {
	ServiceType ServiceType `json:"serviceType" binding:"required"`
	ServiceID   string      `json:"serviceId" binding:"required"`
	Date        time.Time   `json:"date" binding:"required"`
	LandSize    float64     `json:"landSize"`
	Duration    float64     `json:"duration"`
	WorkType    string      `json:"workType"`
	Location    Location    `json:"location"`
	Notes       string      `json:"notes"`
}
