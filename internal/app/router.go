// internal/app/router.go
package app

import (
	customerHandler "sparkhub-service/internal/handlers/customer"
	planHandler "sparkhub-service/internal/handlers/plan"
	reportHandler "sparkhub-service/internal/handlers/report"
	sessionHandler "sparkhub-service/internal/handlers/session"
	subscriptionHandler "sparkhub-service/internal/handlers/subscription"
	"sparkhub-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	CustomerHandler     *customerHandler.CustomerHandler
	PlanHandler         *planHandler.PlanHandler
	SubscriptionHandler *subscriptionHandler.SubscriptionHandler
	SessionHandler      *sessionHandler.SessionHandler
	ReportHandler       *reportHandler.ReportHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Customers ====================
	customers := api.Group("/customers")
	customers.Use(h.AuthMiddleware.Auth())
	{
		customers.POST("", h.CustomerHandler.RegisterCustomer)
		customers.GET("", h.CustomerHandler.ListCustomers)
		customers.GET("/search", h.CustomerHandler.SearchCustomers)
		customers.GET("/:id", h.CustomerHandler.GetCustomer)
		customers.GET("/:id/subscriptions", h.SubscriptionHandler.ListByCustomer)
	}

	// ==================== Subscription Plans ====================
	plans := api.Group("/plans")
	plans.Use(h.AuthMiddleware.Auth())
	{
		plans.GET("", h.PlanHandler.ListPlans)
		plans.GET("/:id", h.PlanHandler.GetPlan)

		adminOnly := plans.Group("")
		adminOnly.Use(h.AuthMiddleware.RequireRole("admin", "manager"))
		{
			adminOnly.POST("", h.PlanHandler.CreatePlan)
			adminOnly.PUT("/:id", h.PlanHandler.UpdatePlan)
			adminOnly.DELETE("/:id", h.PlanHandler.DeletePlan)
		}
	}

	// ==================== Subscriptions ====================
	subscriptions := api.Group("/subscriptions")
	subscriptions.Use(h.AuthMiddleware.Auth())
	{
		subscriptions.POST("", h.SubscriptionHandler.Purchase)
	}

	// ==================== Play Sessions ====================
	sessions := api.Group("/sessions")
	sessions.Use(h.AuthMiddleware.Auth())
	{
		sessions.POST("", h.SessionHandler.StartSession)
		sessions.GET("/active", h.SessionHandler.ListActive)
		sessions.GET("/:id", h.SessionHandler.GetSession)
		sessions.POST("/:id/logout", h.SessionHandler.EndSession)
	}

	// ==================== Reports & Audit ====================
	reports := api.Group("/reports")
	reports.Use(h.AuthMiddleware.Auth())
	{
		reports.GET("/activity", h.ReportHandler.DownloadActivityReport)
	}

	auditGroup := api.Group("/audit")
	auditGroup.Use(h.AuthMiddleware.Auth())
	{
		auditGroup.GET("", h.ReportHandler.ListAuditEvents)
	}
}
