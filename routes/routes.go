package routes

import (
	"net/http"
	"time"

	"eventra/handlers"
	"eventra/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the engine's handlers for route registration.
type HandlerBundle struct {
	Availability *handlers.AvailabilityHandler
	Booking      *handlers.BookingHandler
	Payment      *handlers.PaymentWebhookHandler
	Review       *handlers.ReviewHandler
}

// RegisterRoutes wires every endpoint group onto the router.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterReviewRoutes(r, hb)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Eventra"})
	})
}

// RegisterAvailabilityRoutes registers schedule management endpoints.
// Open-interval reads are public; mutations require the owning provider.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/providers/:id/availability")
	{
		api.GET("/open-intervals", hb.Availability.GetOpenIntervalsHandler)

		protected := api.Group("")
		protected.Use(middleware.Auth(middleware.RoleProvider))
		protected.PUT("/weekly", hb.Availability.SetWeeklyAvailabilityHandler)
		protected.POST("/special-dates", hb.Availability.AddSpecialDateHandler)
		protected.DELETE("/special-dates/:date", hb.Availability.RemoveSpecialDateHandler)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking engine.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.Auth())
		api.POST("", hb.Booking.ReserveHandler)
		api.GET("/:id", hb.Booking.GetBookingHandler)
		api.POST("/:id/confirm", hb.Booking.ConfirmHandler)
		api.POST("/:id/deliver", hb.Booking.DeliverHandler)
		api.POST("/:id/cancel", hb.Booking.CancelHandler)
	}

	r.GET("/api/providers/:id/bookings", middleware.Auth(middleware.RoleProvider), hb.Booking.ListProviderBookingsHandler)
	r.GET("/api/users/me/bookings", middleware.Auth(middleware.RoleUser), hb.Booking.ListMyBookingsHandler)
}

// RegisterPaymentRoutes registers the payment collaborator's webhook. The
// endpoint authenticates by webhook signature, not by session token.
func RegisterPaymentRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.POST("/api/payments/webhook", hb.Payment.HandleStripeWebhook)
}

// RegisterReviewRoutes registers review submission and rating reads.
func RegisterReviewRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/reviews")
	{
		api.Use(middleware.Auth(middleware.RoleUser))
		api.POST("", hb.Review.SubmitReviewHandler)
		api.PUT("/:id", hb.Review.EditReviewHandler)
		api.DELETE("/:id", hb.Review.DeleteReviewHandler)
	}

	r.GET("/api/providers/:id/rating", hb.Review.GetProviderRatingHandler)
	r.GET("/api/providers/:id/reviews", hb.Review.ListProviderReviewsHandler)
	r.GET("/api/services/:id/rating", hb.Review.GetServiceRatingHandler)
	r.GET("/api/services/:id/reviews", hb.Review.ListServiceReviewsHandler)
}
