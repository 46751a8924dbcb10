package routes

import (
	"net/http"
	"time"

	"barberflow/handlers"
	"barberflow/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the constructed handlers and the middleware
// dependencies route registration needs.
type HandlerBundle struct {
	Webhook *handlers.WebhookHandler
	Auth    *handlers.AuthHandler
	Shop    *handlers.ShopHandler
	Booking *handlers.BookingHandler

	StaffAuth        gin.HandlerFunc
	WebhookSignature gin.HandlerFunc
	RateLimitPublic  gin.HandlerFunc
}

// RegisterRoutes wires every route group onto the router.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	RegisterHealthRoute(r)
	RegisterWebhookRoutes(r, hb)
	RegisterAuthRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}

// RegisterWebhookRoutes registers the Meta webhook endpoints. The POST
// path validates the payload signature before the handler acknowledges;
// both paths sit behind the public rate limit.
func RegisterWebhookRoutes(r *gin.Engine, hb *HandlerBundle) {
	webhook := r.Group("/webhook")
	webhook.Use(hb.RateLimitPublic)
	{
		webhook.GET("", hb.Webhook.Verify)
		webhook.POST("", hb.WebhookSignature, hb.Webhook.Receive)
	}
}

// RegisterAuthRoutes registers the staff login endpoint.
func RegisterAuthRoutes(r *gin.Engine, hb *HandlerBundle) {
	auth := r.Group("/api/auth")
	auth.Use(hb.RateLimitPublic)
	{
		auth.POST("/login", hb.Auth.Login)
	}
}

// RegisterAdminRoutes registers the staff-facing management API behind
// JWT auth and CORS.
func RegisterAdminRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	api.Use(hb.StaffAuth)
	{
		api.POST("/shops", hb.Shop.CreateShop)
		api.GET("/shops", hb.Shop.ListShops)
		api.GET("/shops/:id", hb.Shop.GetShop)
		api.PUT("/shops/:id/settings", hb.Shop.UpdateShopSettings)

		api.GET("/shops/:id/barbers", hb.Shop.ListBarbers)
		api.POST("/shops/:id/barbers", hb.Shop.CreateBarber)
		api.PUT("/shops/:id/barbers/:barberId", hb.Shop.UpdateBarber)
		api.GET("/shops/:id/barbers/:barberId/availability", hb.Booking.GetAvailability)

		api.GET("/shops/:id/services", hb.Shop.ListServices)
		api.POST("/shops/:id/services", hb.Shop.CreateService)
		api.PUT("/shops/:id/services/:key", hb.Shop.UpdateService)

		api.GET("/shops/:id/bookings", hb.Booking.ListForDay)
		api.PATCH("/shops/:id/bookings/:bookingId/status", hb.Booking.UpdateStatus)

		api.POST("/staff", hb.Auth.CreateStaff)
		api.GET("/staff", hb.Auth.ListStaff)
		api.PATCH("/staff/:id", hb.Auth.UpdateStaff)
	}
}

// RegisterHealthRoute registers the health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Mongo || !status.Redis {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
}
