package routes

import (
	"context"
	"errors"
	"net/http"

	"salesroute/internal/cortex"
	"salesroute/internal/here"
	"salesroute/internal/model"
	"salesroute/internal/render"
	"salesroute/internal/service/route"
	"salesroute/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoutePlanner renders the driving route between two addresses
type RoutePlanner interface {
	RouteBetween(ctx context.Context, origin, destination string) (render.MapView, error)
}

// DecodeRequest needs the polyline field present; an empty string decodes to no points
type DecodeRequest struct {
	Polyline  *string `json:"polyline" binding:"required"`
	Precision *int    `json:"precision"`
}

type RouteHandler struct {
	planner RoutePlanner
	logger  *zap.Logger
}

func NewRouteHandler(planner RoutePlanner, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{planner: planner, logger: logger}
}

// SetupRouteHandlers registers the route geometry endpoints
func SetupRouteHandlers(router *gin.RouterGroup, h *RouteHandler) {
	routeGroup := router.Group("/route")

	routeGroup.GET("", h.Plan)
	routeGroup.POST("/decode", h.Decode)
	routeGroup.POST("/assemble", h.Assemble)
	routeGroup.POST("/shape", h.Shape)
}

// Decode decodes a single encoded polyline
func (h *RouteHandler) Decode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	precision := util.DefaultPrecision
	if req.Precision != nil {
		precision = *req.Precision
	}
	if precision < 1 || precision > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "precision must be between 1 and 10"})
		return
	}

	coords, err := util.DecodePolylineWithPrecision(*req.Polyline, precision)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, render.RouteView("", coords))
}

// Assemble concatenates the section polylines of a Routing v8 response
func (h *RouteHandler) Assemble(c *gin.Context) {
	var resp model.RouteResponse
	if err := c.ShouldBindJSON(&resp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coords, err := route.Assemble(&resp)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, render.RouteView("", coords))
}

// Shape decodes the leg shape of a Routing v7 response
func (h *RouteHandler) Shape(c *gin.Context) {
	var resp model.ShapeResponse
	if err := c.ShouldBindJSON(&resp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coords, err := route.DecodeShape(&resp)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, render.RouteView("", coords))
}

// Plan geocodes origin and destination and returns the driving route view
func (h *RouteHandler) Plan(c *gin.Context) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	if origin == "" || destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin and destination are required"})
		return
	}

	view, err := h.planner.RouteBetween(c.Request.Context(), origin, destination)
	if err != nil {
		h.logger.Warn("route planning failed",
			zap.String("origin", origin),
			zap.String("destination", destination),
			zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func statusFor(err error) int {
	var hereErr *here.StatusError
	var cortexErr *cortex.StatusError
	var decodeErr *util.DecodeError
	var parseErr *route.ParseError

	switch {
	case errors.Is(err, route.ErrNotGeocoded):
		return http.StatusNotFound
	case errors.As(err, &hereErr), errors.As(err, &cortexErr),
		errors.As(err, &decodeErr), errors.As(err, &parseErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
