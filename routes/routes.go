package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"supernova/config"
	"supernova/controllers"
	"supernova/middleware"
	"supernova/models"
)

// NewEngine builds the gin engine shared by every service.
func NewEngine(cfg config.Config) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(nil)

	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Trace(cfg.Service),
		cors.New(corsConfig(cfg.AllowedOrigins)),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.Service})
	})
	return r
}

func RegisterAuthRoutes(r *gin.Engine, auth *middleware.Verifier, ctl *controllers.AuthController) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", ctl.Register)
		api.POST("/login", ctl.Login)

		protected := api.Group("/")
		protected.Use(auth.Require())
		{
			protected.GET("/me", ctl.Me)
			protected.GET("/logout", ctl.Logout)
			protected.POST("/logout", ctl.Logout)

			addresses := protected.Group("/users/me/addresses")
			{
				addresses.GET("", ctl.GetAddresses)
				addresses.POST("", ctl.AddAddress)
				addresses.DELETE("/:addressId", ctl.DeleteAddress)
				addresses.PATCH("/:addressId/default", ctl.SetDefaultAddress)
			}
		}
	}
}

func RegisterProductRoutes(r *gin.Engine, auth *middleware.Verifier, ctl *controllers.ProductController) {
	api := r.Group("/api/products")
	{
		api.GET("", ctl.GetProducts)
		api.GET("/seller", auth.Require(models.RoleSeller), ctl.GetSellerProducts)
		api.GET("/:id", ctl.GetProduct)
		api.POST("", auth.Require(models.RoleAdmin, models.RoleSeller), ctl.CreateProduct)
		api.PATCH("/:id", auth.Require(models.RoleSeller), ctl.UpdateProduct)
		api.DELETE("/:id", auth.Require(models.RoleSeller), ctl.DeleteProduct)
	}
}

func RegisterCartRoutes(r *gin.Engine, auth *middleware.Verifier, ctl *controllers.CartController) {
	api := r.Group("/api/cart")
	api.Use(auth.Require(models.RoleUser))
	{
		api.GET("", ctl.GetCart)
		api.DELETE("", ctl.ClearCart)
		api.POST("/items", ctl.AddToCart)
		api.PATCH("/items/:productId", ctl.UpdateCart)
		api.DELETE("/items/:productId", ctl.RemoveFromCart)
	}
}

func RegisterOrderRoutes(r *gin.Engine, auth *middleware.Verifier, ctl *controllers.OrderController) {
	api := r.Group("/api/orders")
	{
		api.POST("", auth.Require(models.RoleUser), ctl.Checkout)
		api.GET("/me", auth.Require(models.RoleUser), ctl.GetMyOrders)
		api.POST("/:id/cancel", auth.Require(models.RoleUser, models.RoleAdmin), ctl.CancelOrder)
		api.PATCH("/:id/address", auth.Require(models.RoleUser), ctl.UpdateShippingAddress)
		api.GET("/:id", auth.Require(models.RoleUser, models.RoleAdmin), ctl.GetOrder)

		admin := api.Group("/")
		admin.Use(auth.Require(models.RoleAdmin))
		{
			admin.PATCH("/:id/status", ctl.UpdateOrderStatus)
		}
	}
}

func RegisterPaymentRoutes(r *gin.Engine, auth *middleware.Verifier, ctl *controllers.PaymentController) {
	api := r.Group("/api/payments")
	api.Use(auth.Require(models.RoleUser))
	{
		api.POST("/create/:orderId", ctl.CreatePayment)
		api.POST("/verify", ctl.VerifyPayment)
	}
}

func RegisterAssistantRoutes(r *gin.Engine, auth *middleware.Verifier, ctl *controllers.AssistantController) {
	r.GET("/ws", auth.Require(models.RoleUser), ctl.Chat)
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	// credentials require an explicit origin list
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
