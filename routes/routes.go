package routes

import (
	"strings"
	"time"

	"cropconnect/handlers"
	"cropconnect/middleware"
	"cropconnect/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	farmerOnly  = middleware.RequireRoles(models.RoleFarmer)
	ownerOnly   = middleware.RequireRoles(models.RoleTractorOwner)
	workerOnly  = middleware.RequireRoles(models.RoleWorker)
)

// RegisterUserRoutes registers account endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.POST("/register", hb.User.Register)
		api.POST("/login", hb.User.Login)

		me := api.Group("/me", hb.Auth)
		me.GET("", hb.User.Me)
		me.PUT("", hb.User.UpdateMe)
		me.POST("/image", hb.User.UploadImage)
	}
}

// RegisterRequirementRoutes registers the requirement registry and worker applications.
func RegisterRequirementRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/requirements")
	{
		api.GET("", hb.OptionalAuth, hb.Requirement.List)
		api.GET("/mine", hb.Auth, farmerOnly, hb.Requirement.ListMine)
		api.GET("/:id", hb.Requirement.Get)

		protected := api.Group("", hb.Auth)
		protected.POST("", farmerOnly, hb.Requirement.Post)
		protected.DELETE("/:id", farmerOnly, hb.Requirement.Withdraw)
		protected.POST("/:id/cancel", farmerOnly, hb.Requirement.Cancel)
		protected.POST("/:id/apply", workerOnly, hb.Requirement.Apply)
		protected.POST("/:id/applicants/:workerId/accept", farmerOnly, hb.Requirement.AcceptApplicant)
		protected.POST("/:id/applicants/:workerId/reject", farmerOnly, hb.Requirement.RejectApplicant)
	}
}

// RegisterBidRoutes registers the bid ledger.
func RegisterBidRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bids", hb.Auth)
	{
		api.POST("", ownerOnly, hb.Bid.Place)
		api.GET("/farmer", farmerOnly, hb.Bid.ListForFarmer)
		api.GET("/mine", ownerOnly, hb.Bid.ListMine)
		api.GET("/requirement/:id", farmerOnly, hb.Bid.ListForRequirement)
		api.POST("/:id/accept", farmerOnly, hb.Bid.Accept)
		api.POST("/:id/reject", farmerOnly, hb.Bid.Reject)
		api.POST("/:id/withdraw", ownerOnly, hb.Bid.Withdraw)
	}
}

// RegisterBookingRoutes registers the booking lifecycle and online checkout.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings", hb.Auth)
	{
		api.POST("", farmerOnly, hb.Booking.Create)
		api.GET("", hb.Booking.List)
		api.GET("/:id", hb.Booking.Get)
		api.POST("/:id/complete", hb.Booking.Complete)
		api.POST("/:id/cancel", hb.Booking.Cancel)
		api.POST("/:id/razorpay-order", farmerOnly, hb.Booking.CreateOrder)
		api.POST("/:id/verify-payment", farmerOnly, hb.Booking.VerifyPayment)
	}
}

// RegisterTransactionRoutes registers offline settlement and the payment history.
func RegisterTransactionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/transactions", hb.Auth)
	{
		api.POST("/pay-after-work", hb.Transaction.PayAfterWork)
		api.GET("", hb.Transaction.List)
		api.GET("/:id", hb.Transaction.Get)
	}
}

func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications", hb.Auth)
	{
		api.GET("", hb.Notification.List)
		api.PATCH("/read-all", hb.Notification.MarkAllRead)
		api.PATCH("/:id/read", hb.Notification.MarkRead)
		api.DELETE("/:id", hb.Notification.Delete)
	}
}

// RegisterServiceRoutes registers the tractor and worker listings.
func RegisterServiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.GET("/tractors", hb.Listing.ListTractors)
		api.GET("/tractors/:id", hb.Listing.GetTractor)
		api.POST("/tractors", hb.Auth, ownerOnly, hb.Listing.CreateTractor)
		api.PUT("/tractors/:id", hb.Auth, ownerOnly, hb.Listing.UpdateTractor)
		api.DELETE("/tractors/:id", hb.Auth, ownerOnly, hb.Listing.DeleteTractor)
		api.POST("/tractors/:id/images", hb.Auth, ownerOnly, hb.Listing.AddTractorImage)

		api.GET("/workers", hb.Listing.ListWorkers)
		api.PUT("/workers/me", hb.Auth, workerOnly, hb.Listing.UpsertWorker)
		api.POST("/workers/me/images", hb.Auth, workerOnly, hb.Listing.AddWorkerImage)
		api.GET("/workers/:id", hb.Listing.GetWorker)
	}
}

func RegisterReviewRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reviews")
	{
		api.POST("", hb.Auth, hb.Review.Create)
		api.GET("/user/:id", hb.Review.ListForUser)
	}
}

// RegisterAIRoutes registers the chat assistant.
func RegisterAIRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/ai", hb.Auth)
	{
		api.POST("/chat", hb.AI.Chat)
		api.DELETE("/chat", hb.AI.Reset)
	}
}

// RegisterHealthRoute registers the health-check and socket endpoints.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health.Health)
	r.GET("/api/ws", hb.WS.Handle)
}

// RegisterRoutes centralizes registration of all endpoints and CORS.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, corsOrigins string) {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if corsOrigins == "" || corsOrigins == "*" {
		// Credentials are incompatible with a literal "*".
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		for _, o := range strings.Split(corsOrigins, ",") {
			corsCfg.AllowOrigins = append(corsCfg.AllowOrigins, strings.TrimSpace(o))
		}
	}
	r.Use(cors.New(corsCfg))

	RegisterUserRoutes(r, hb)
	RegisterRequirementRoutes(r, hb)
	RegisterBidRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterTransactionRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterServiceRoutes(r, hb)
	RegisterReviewRoutes(r, hb)
	RegisterAIRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
