package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codemint.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	projectHandler      *handlers.ProjectHandler
	tokenHandler        *handlers.TokenHandler
	accountHandler      *handlers.AccountHandler
	flowHandler         *handlers.FlowHandler
	notificationHandler *handlers.NotificationHandler
	pinHandler          *handlers.PinHandler
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Project routes (public read, publish via flow)
		projects := v1.Group("/projects")
		{
			projects.GET("", d.projectHandler.ListProjects)
			projects.GET("/curated", d.projectHandler.CuratedProjects)
			projects.GET("/:id", d.projectHandler.GetProject)
			projects.GET("/:id/tokens", d.projectHandler.ProjectTokens)
			projects.POST("", d.projectHandler.CreateProject)
			projects.POST("/:id/mint", d.projectHandler.Mint)
		}

		// Token routes (public)
		tokens := v1.Group("/tokens")
		{
			tokens.GET("", d.tokenHandler.LatestTokens)
			tokens.GET("/:id", d.tokenHandler.GetToken)
		}

		// Account routes (public)
		v1.GET("/accounts/:address/tokens", d.accountHandler.AccountTokens)

		// Transaction flow routes
		flowRoutes := v1.Group("/flows")
		{
			flowRoutes.GET("/:id", d.flowHandler.GetFlow)
			flowRoutes.DELETE("/:id", d.flowHandler.AbandonFlow)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", d.notificationHandler.ListNotifications)
			notifications.DELETE("/:id", d.notificationHandler.DismissNotification)
		}

		// Pinning proxy routes
		ipfs := v1.Group("/ipfs")
		{
			ipfs.POST("/pin-file", d.pinHandler.PinFile)
			ipfs.POST("/pin-dir", d.pinHandler.PinDirectory)
			ipfs.DELETE("/unpin/:cid", d.pinHandler.Unpin)
		}
		v1.GET("/pins", d.pinHandler.ListPins)
	}
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "codemint-backend",
			"version": "0.1.0",
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
