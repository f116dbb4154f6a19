package routes

import (
	"context"
	"errors"
	"net/http"

	"salesroute/internal/model"
	"salesroute/internal/service/assistant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Assistant is the chat side of the service
type Assistant interface {
	NewConversation() *model.Conversation
	Conversation(ctx context.Context, id string) (*model.Conversation, error)
	Chat(ctx context.Context, id, query string) (*assistant.ChatResult, error)
}

type ChatRequest struct {
	Query string `json:"query" binding:"required"`
}

type ConversationHandler struct {
	assistant Assistant
	logger    *zap.Logger
}

func NewConversationHandler(a Assistant, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{assistant: a, logger: logger}
}

// SetupConversationHandlers registers the conversation endpoints
func SetupConversationHandlers(router *gin.RouterGroup, h *ConversationHandler) {
	group := router.Group("/conversations")

	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.POST("/:id/chat", h.Chat)
}

// Create starts a new conversation
func (h *ConversationHandler) Create(c *gin.Context) {
	c.JSON(http.StatusCreated, h.assistant.NewConversation())
}

// Get returns a conversation with its messages
func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.assistant.Conversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Chat runs one user turn
func (h *ConversationHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.assistant.Chat(c.Request.Context(), c.Param("id"), req.Query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ConversationHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, assistant.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, assistant.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("conversation request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
