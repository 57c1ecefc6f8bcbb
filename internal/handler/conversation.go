package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadmonitor/internal/models"
	"leadmonitor/internal/repository"
)

type ConversationHandler interface {
	GetAllConversations(c *gin.Context)
	GetConversation(c *gin.Context)
	ToggleTakeover(c *gin.Context)
}

type conversationHandler struct {
	convoRepo repository.ConversationRepository
	seenStore repository.SeenStore
	logger    *zap.Logger
}

func NewConversationHandler(convoRepo repository.ConversationRepository, seenStore repository.SeenStore, logger *zap.Logger) ConversationHandler {
	return &conversationHandler{convoRepo: convoRepo, seenStore: seenStore, logger: logger}
}

// GetAllConversations handles GET /api/conversations
func (h *conversationHandler) GetAllConversations(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	convos, err := h.convoRepo.GetAll(skip, limit)
	if err != nil {
		h.logger.Error("Failed to get conversations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get conversations"})
		return
	}
	if convos == nil {
		convos = []*models.Conversation{}
	}
	c.JSON(http.StatusOK, convos)
}

// GetConversation handles GET /api/conversations/:username
func (h *conversationHandler) GetConversation(c *gin.Context) {
	username := c.Param("username")

	convo, err := h.convoRepo.GetBySender(username)
	if err != nil {
		h.logger.Error("Failed to get conversation", zap.String("username", username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get conversation"})
		return
	}
	if convo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	c.JSON(http.StatusOK, convo)
}

type takeoverRequest struct {
	Enable *bool `json:"enable" binding:"required"`
}

// ToggleTakeover handles POST /api/conversations/:username/takeover. It
// writes both the conversation row and the takeover marker the engine's
// gate reads. The marker never expires; it persists until cleared here.
func (h *conversationHandler) ToggleTakeover(c *gin.Context) {
	username := c.Param("username")

	var req takeoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	enable := *req.Enable

	if err := h.convoRepo.SetTakeover(username, enable); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		h.logger.Error("Failed to set takeover flag", zap.String("username", username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set takeover flag"})
		return
	}

	takeoverKey := repository.TakeoverKey(username)
	var err error
	if enable {
		err = h.seenStore.Mark(takeoverKey, "true", 0)
	} else {
		err = h.seenStore.Clear(takeoverKey)
	}
	if err != nil {
		h.logger.Error("Failed to update takeover marker", zap.String("username", username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update takeover marker"})
		return
	}

	h.logger.Info("Takeover toggled", zap.String("username", username), zap.Bool("enable", enable))
	c.JSON(http.StatusOK, gin.H{"status": "success", "human_takeover": enable})
}
