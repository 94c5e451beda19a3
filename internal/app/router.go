// internal/app/router.go
package app

import (
	"net/http"

	authHandler "studiodesk-service/internal/handlers/auth"
	leadHandler "studiodesk-service/internal/handlers/lead"
	pipelineHandler "studiodesk-service/internal/handlers/pipeline"
	wsHandler "studiodesk-service/internal/handlers/websocket"
	"studiodesk-service/internal/middleware"
	"studiodesk-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	AuthHandler     *authHandler.AuthHandler
	LeadHandler     *leadHandler.LeadHandler
	PipelineHandler *pipelineHandler.PipelineHandler
	WSHandler       *wsHandler.WebSocketHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	// ==================== Health & Metrics ====================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})

	// ==================== WebSocket ====================
	// the handler authenticates the token itself
	r.GET("/ws", h.WSHandler.HandleConnection)

	api := r.Group("/api/v1")

	// ==================== Auth ====================
	api.POST("/auth/login", h.AuthHandler.Login)
	api.POST("/auth/refresh", h.AuthHandler.Refresh)

	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.GET("/me", h.AuthHandler.Me)
	}

	// ==================== Staff (owner) ====================
	staff := api.Group("/staff")
	staff.Use(h.AuthMiddleware.OwnerOnly()...)
	{
		staff.POST("", h.AuthHandler.CreateStaff)
		staff.GET("/ws-stats", h.WSHandler.GetStats)
	}

	// ==================== Pipeline ====================
	pipeline := api.Group("/pipeline")
	pipeline.Use(h.AuthMiddleware.Auth())
	{
		pipeline.GET("/board", h.PipelineHandler.GetBoard)
		pipeline.GET("/columns", h.PipelineHandler.Columns)
		pipeline.POST("/reload", h.PipelineHandler.Reload)
		pipeline.POST("/moves", h.PipelineHandler.Move)
	}

	// ==================== Leads ====================
	leads := api.Group("/leads")
	leads.Use(h.AuthMiddleware.Auth())
	{
		leads.POST("", h.LeadHandler.CreateLead)
		leads.GET("/:id", h.LeadHandler.GetLead)
		leads.PUT("/:id", h.LeadHandler.UpdateLead)
		leads.GET("/:id/history", h.LeadHandler.GetLeadHistory)
	}

	sources := api.Group("/lead-sources")
	sources.Use(h.AuthMiddleware.Auth())
	{
		sources.GET("", h.LeadHandler.ListLeadSources)
		sources.POST("", h.LeadHandler.CreateLeadSource)
	}
}
