package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadmonitor/internal/models"
	"leadmonitor/internal/repository"
)

// CollectorHandler ingests records pushed by a remotely-deployed engine.
// These endpoints are unauthenticated: the engine syncs fire-and-forget.
type CollectorHandler interface {
	CollectLead(c *gin.Context)
	CollectConversation(c *gin.Context)
}

type collectorHandler struct {
	leadRepo  repository.LeadRepository
	convoRepo repository.ConversationRepository
	logger    *zap.Logger
}

func NewCollectorHandler(leadRepo repository.LeadRepository, convoRepo repository.ConversationRepository, logger *zap.Logger) CollectorHandler {
	return &collectorHandler{leadRepo: leadRepo, convoRepo: convoRepo, logger: logger}
}

type collectLeadRequest struct {
	ID        string    `json:"id" binding:"required"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Subreddit string    `json:"subreddit"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// CollectLead handles POST /api/collector/lead. An already-known lead is
// skipped, not overwritten, so dashboard status edits survive re-syncs.
func (h *collectorHandler) CollectLead(c *gin.Context) {
	var req collectLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.leadRepo.GetByRedditID(req.ID)
	if err != nil {
		h.logger.Error("Failed to check lead existence", zap.String("reddit_id", req.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check lead"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, gin.H{"status": "skipped", "id": req.ID})
		return
	}

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	lead := &models.Lead{
		RedditID:  req.ID,
		Title:     req.Title,
		Body:      req.Body,
		Subreddit: req.Subreddit,
		Author:    req.Author,
		URL:       req.URL,
		Score:     req.Score,
		Status:    models.LeadStatusNew,
		CreatedAt: createdAt,
	}
	if err := h.leadRepo.Save(lead); err != nil {
		h.logger.Error("Failed to save collected lead", zap.String("reddit_id", req.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save lead"})
		return
	}

	h.logger.Info("Lead collected", zap.String("reddit_id", req.ID), zap.String("subreddit", req.Subreddit))
	c.JSON(http.StatusOK, gin.H{"status": "success", "id": req.ID})
}

type collectConversationRequest struct {
	Username    string `json:"username" binding:"required"`
	LastMessage string `json:"last_message"`
	History     string `json:"history"`
	Timestamp   string `json:"timestamp"`
}

// CollectConversation handles POST /api/collector/conversation. History
// is the JSON-encoded transcript; the stored row is fully overwritten
// with the new sequence.
func (h *collectorHandler) CollectConversation(c *gin.Context) {
	var req collectConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var turns []models.Turn
	if req.History != "" {
		if err := json.Unmarshal([]byte(req.History), &turns); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid history encoding"})
			return
		}
	}

	timestamp := time.Now().UTC()
	if req.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
			timestamp = parsed
		}
	}

	existing, err := h.convoRepo.GetBySender(req.Username)
	if err != nil {
		h.logger.Error("Failed to check conversation existence", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check conversation"})
		return
	}

	convo := &models.Conversation{
		RedditUsername: req.Username,
		Status:         models.ConversationStatusNew,
	}
	if existing != nil {
		convo = existing
	}
	convo.LastMessage = req.LastMessage
	convo.LastMessageAt = timestamp
	convo.Turns = turns

	if err := h.convoRepo.Upsert(convo); err != nil {
		h.logger.Error("Failed to save collected conversation", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
