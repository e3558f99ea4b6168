package api

import (
	"net/http"

	"shokolad-be/internal/category"
	"shokolad-be/internal/logger"
	"shokolad-be/internal/middleware"
	"shokolad-be/internal/order"
	"shokolad-be/internal/product"
	"shokolad-be/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Categories category.Service
	Products   product.Service
	Orders     order.Service
	Users      user.Service
}

const (
	roleAdmin   = string(user.RoleAdmin)
	roleManager = string(user.RoleManager)
)

// NewRouter wires every route group behind the shared middleware chain.
// Category reads are public; everything mutating sits behind role checks.
func NewRouter(svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestIDMiddleware())
	r.Use(logger.LoggingMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuthMiddleware())
	r.Use(middleware.RateLimitMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := NewAuthHandler(svc.Users)
	userHandler := NewUserHandler(svc.Users)
	categoryHandler := NewCategoryHandler(svc.Categories)
	productHandler := NewProductHandler(svc.Products)
	orderHandler := NewOrderHandler(svc.Orders)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.GET("/me", middleware.RequireAuth(), authHandler.Me)
		auth.GET("/check", authHandler.Check)
		auth.POST("/logout", middleware.RequireAuth(), authHandler.Logout)
	}

	users := api.Group("/users")
	{
		users.PUT("/me", middleware.RequireAuth(), userHandler.UpdateMe)

		admin := users.Group("", middleware.RequireRoles(roleAdmin))
		admin.GET("", userHandler.List)
		admin.POST("", userHandler.Create)
		admin.GET("/:id", userHandler.Get)
		admin.PUT("/:id", userHandler.Update)
		admin.PATCH("/:id/status", userHandler.UpdateStatus)
		admin.PATCH("/:id/deactivate", userHandler.Deactivate)
		admin.DELETE("/:id", userHandler.Delete)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", categoryHandler.List)
		categories.GET("/tree", categoryHandler.Tree)
		categories.GET("/stats", categoryHandler.Stats)
		categories.GET("/search", categoryHandler.Search)
		categories.GET("/:id", categoryHandler.Get)
		categories.GET("/:id/children", categoryHandler.Children)
		categories.GET("/:id/path", categoryHandler.Path)

		admin := categories.Group("", middleware.RequireRoles(roleAdmin))
		admin.POST("", categoryHandler.Create)
		admin.PUT("/:id", categoryHandler.Update)
		admin.PATCH("/:id/toggle", categoryHandler.Toggle)
		admin.PATCH("/:id/order", categoryHandler.Reorder)
		admin.DELETE("/:id", categoryHandler.Delete)
	}

	products := api.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/export", middleware.RequireRoles(roleAdmin), productHandler.Export)
		products.POST("/import", middleware.RequireRoles(roleAdmin), productHandler.Import)
		products.GET("/:id", productHandler.Get)

		admin := products.Group("", middleware.RequireRoles(roleAdmin))
		admin.POST("", productHandler.Create)
		admin.PUT("/:id", productHandler.Update)
		admin.DELETE("/:id", productHandler.Delete)
	}

	orders := api.Group("/orders", middleware.RequireRoles(roleAdmin, roleManager))
	{
		orders.GET("", orderHandler.List)
		orders.GET("/export", orderHandler.Export)
		orders.GET("/:id", orderHandler.Get)
		orders.POST("", orderHandler.Create)
		orders.PUT("/:id", orderHandler.Update)
		orders.PATCH("/:id/status", orderHandler.UpdateStatus)
		orders.DELETE("/:id", orderHandler.Delete)
	}

	return r
}
