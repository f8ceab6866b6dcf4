package models

import "time"

type NotificationType string

const (
	NotifyRequirementPosted    NotificationType = "requirement_posted"
	NotifyRequirementCancelled NotificationType = "requirement_cancelled"
	NotifyBidReceived          NotificationType = "bid_received"
	NotifyBidAccepted          NotificationType = "bid_accepted"
	NotifyBidRejected          NotificationType = "bid_rejected"
	NotifyBidCancelled         NotificationType = "bid_cancelled"
	NotifyApplicationReceived  NotificationType = "application_received"
	NotifyApplicationAccepted  NotificationType = "application_accepted"
	NotifyApplicationRejected  NotificationType = "application_rejected"
	NotifyBookingCreated       NotificationType = "booking_created"
	NotifyBookingConfirmed     NotificationType = "booking_confirmed"
	NotifyBookingCompleted     NotificationType = "booking_completed"
	NotifyBookingCancelled     NotificationType = "booking_cancelled"
	NotifyBookingReminder      NotificationType = "booking_reminder"
	NotifyServiceBooked        NotificationType = "service_booked"
	NotifyPaymentReceived      NotificationType = "payment_received"
	NotifyPaymentCompleted     NotificationType = "payment_completed"
	NotifyReviewReceived       NotificationType = "review_received"
	NotifyWelcome              NotificationType = "welcome"
	NotifySystem               NotificationType = "system"
)

// NotificationRefs links a notification to the entities that triggered it.
type NotificationRefs struct {
	UserID        string `bson:"userId,omitempty" json:"userId,omitempty"`
	RequirementID string `bson:"requirementId,omitempty" json:"requirementId,omitempty"`
	BidID         string `bson:"bidId,omitempty" json:"bidId,omitempty"`
	BookingID     string `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	ServiceID     string `bson:"serviceId,omitempty" json:"serviceId,omitempty"`
	TransactionID string `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
}

type Notification struct {
	ID          string           `bson:"id" json:"id"`
	RecipientID string           `bson:"recipientId" json:"recipientId"`
	Type        NotificationType `bson:"type" json:"type"`
	Title       string           `bson:"title" json:"title"`
	Message     string           `bson:"message" json:"message"`
	Refs        NotificationRefs `bson:"refs" json:"refs"`
	Data        map[string]any   `bson:"data,omitempty" json:"data,omitempty"`
	Read        bool             `bson:"read" json:"read"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
}

// NotificationInput is what a component hands to the dispatcher.
type NotificationInput struct {
	RecipientID string
	Type        NotificationType
	Title       string
	Message     string
	Refs        NotificationRefs
	Data        map[string]any
}
