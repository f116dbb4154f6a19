package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServiceInfo is the public part of the configuration shown on the index page
type ServiceInfo struct {
	Port              string `json:"port"`
	Env               string `json:"env"`
	RoutingAPIVersion int    `json:"routingApiVersion"`
	AddressExtractor  string `json:"addressExtractor"`
}

// SetupMainHandlers registers the main application endpoints
func SetupMainHandlers(router *gin.RouterGroup, info ServiceInfo) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, info)
	})

	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"test": "test",
		})
	})
}
