package api

import (
	routes "salesroute/internal/api/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups the endpoint handlers mounted by SetupRouter
type Handlers struct {
	Info          routes.ServiceInfo
	Conversations *routes.ConversationHandler
	Routes        *routes.RouteHandler
}

// SetupRouter initializes all application routes
func SetupRouter(r *gin.Engine, h Handlers) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(corsConfig))

	// API group
	api := r.Group("/api")

	// Setup main handlers
	routes.SetupMainHandlers(r.Group(""), h.Info)

	routes.SetupConversationHandlers(api, h.Conversations)
	routes.SetupRouteHandlers(api, h.Routes)
}
