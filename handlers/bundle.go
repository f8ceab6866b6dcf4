package handlers

import (
	"cropconnect/realtime"
	"cropconnect/services/bid"
	"cropconnect/services/booking"
	"cropconnect/services/intelligence"
	"cropconnect/services/listing"
	"cropconnect/services/notification"
	"cropconnect/services/payment"
	"cropconnect/services/requirement"
	"cropconnect/services/review"
	"cropconnect/services/user"
	"cropconnect/utils"

	"github.com/gin-gonic/gin"
)

// Services are the domain services the HTTP layer calls into.
type Services struct {
	Users         user.UserService
	Requirements  requirement.RequirementService
	Bids          bid.BidService
	Bookings      booking.BookingService
	Payments      payment.PaymentService
	Notifications notification.NotificationService
	Listings      listing.ListingService
	Reviews       review.ReviewService
	Assistant     intelligence.AssistantService
}

// HandlerBundle groups all endpoint handlers and the auth middleware routes attach to them.
type HandlerBundle struct {
	Auth         gin.HandlerFunc
	OptionalAuth gin.HandlerFunc

	User         *UserHandler
	Requirement  *RequirementHandler
	Bid          *BidHandler
	Booking      *BookingHandler
	Transaction  *TransactionHandler
	Notification *NotificationHandler
	Listing      *ListingHandler
	Review       *ReviewHandler
	AI           *AIHandler
	WS           *WSHandler
	Health       *HealthHandler
}

// NewHandlerBundle builds every handler from the services.
func NewHandlerBundle(
	svc Services,
	auth, optionalAuth gin.HandlerFunc,
	tokens *utils.JWTManager,
	hub *realtime.Hub,
	health *utils.HealthMonitor,
) *HandlerBundle {
	return &HandlerBundle{
		Auth:         auth,
		OptionalAuth: optionalAuth,
		User:         &UserHandler{Service: svc.Users},
		Requirement:  &RequirementHandler{Service: svc.Requirements},
		Bid:          &BidHandler{Service: svc.Bids},
		Booking:      &BookingHandler{Bookings: svc.Bookings, Payments: svc.Payments},
		Transaction:  &TransactionHandler{Payments: svc.Payments},
		Notification: &NotificationHandler{Service: svc.Notifications},
		Listing:      &ListingHandler{Service: svc.Listings},
		Review:       &ReviewHandler{Service: svc.Reviews},
		AI:           &AIHandler{Service: svc.Assistant},
		WS:           NewWSHandler(hub, tokens),
		Health:       &HealthHandler{Monitor: health},
	}
}
