package models

import "time"

type BidStatus string

const (
	BidPending   BidStatus = "pending"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"
	BidCancelled BidStatus = "cancelled"
)

// Bid is a tractor owner's priced proposal against a tractor requirement.
type Bid struct {
	ID               string    `bson:"id" json:"id"`
	RequirementID    string    `bson:"requirementId" json:"requirementId"`
	FarmerID         string    `bson:"farmerId" json:"farmerId"`
	BidderID         string    `bson:"bidderId" json:"bidderId"`
	ProposedAmount   float64   `bson:"proposedAmount" json:"proposedAmount"`
	ProposedDuration float64   `bson:"proposedDuration,omitempty" json:"proposedDuration,omitempty"`
	ProposedDate     time.Time `bson:"proposedDate" json:"proposedDate"`
	Message          string    `bson:"message,omitempty" json:"message,omitempty"`
	Status           BidStatus `bson:"status" json:"status"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt" json:"updatedAt"`
}

// BidTerms is what a bidder proposes when placing a bid.
type BidTerms struct {
	RequirementID    string    `json:"requirementId" binding:"required"`
	ProposedAmount   float64   `json:"proposedAmount" binding:"required,gt=0"`
	ProposedDuration float64   `json:"proposedDuration"`
	ProposedDate     time.Time `json:"proposedDate"`
	Message          string    `json:"message"`
}
