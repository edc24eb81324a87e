package handlers

import (
	"log/slog"
	"net/http"

	"sommy-store/internal/database"
	"sommy-store/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	JWTSecret      string
	AllowedOrigins []string

	Health database.Service

	Auth     service.AuthService
	Carts    service.CartService
	Orders   service.OrderService
	Products service.ProductService

	Log *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     deps.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	authHandler := NewAuthHandler(deps.Auth, deps.Log)
	cartHandler := NewCartHandler(deps.Carts, deps.Log)
	orderHandler := NewOrderHandler(deps.Orders, deps.Log)
	productHandler := NewProductHandler(deps.Products, deps.Log)

	requireAuth := RequireAuth(deps.JWTSecret)
	requireAdmin := RequireAdmin(deps.JWTSecret)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.Health.Health())
	})

	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/recover", authHandler.Recover)
		auth.POST("/reset", authHandler.ResetPassword)
		auth.POST("/admin/login", authHandler.AdminLogin)
		auth.POST("/admin/register", authHandler.AdminRegister)
	}

	cart := router.Group("/cart", requireAuth)
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("", cartHandler.AddItem)
		cart.PUT("", cartHandler.UpdateItem)
		cart.DELETE("", cartHandler.Clear)
	}

	orders := router.Group("/orders")
	{
		orders.POST("", orderHandler.Create)
		orders.GET("", requireAdmin, orderHandler.ListAll)
		orders.GET("/user/:userId", orderHandler.ListByUser)
		orders.GET("/:orderId", orderHandler.Get)
		orders.GET("/:orderId/track", orderHandler.Track)
		orders.POST("/:orderId/cancel", orderHandler.Cancel)
		orders.PUT("/:orderId", requireAdmin, orderHandler.Update)
	}

	products := router.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Get)
		products.POST("", requireAdmin, productHandler.Create)
		products.PUT("/:id", requireAdmin, productHandler.Update)
		products.DELETE("/:id", requireAdmin, productHandler.Delete)
	}

	return router
}
