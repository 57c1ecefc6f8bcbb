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

type LeadHandler interface {
	GetAllLeads(c *gin.Context)
	UpdateLeadStatus(c *gin.Context)
}

type leadHandler struct {
	leadRepo repository.LeadRepository
	logger   *zap.Logger
}

func NewLeadHandler(leadRepo repository.LeadRepository, logger *zap.Logger) LeadHandler {
	return &leadHandler{leadRepo: leadRepo, logger: logger}
}

// GetAllLeads handles GET /api/leads
func (h *leadHandler) GetAllLeads(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	leads, err := h.leadRepo.GetAll(skip, limit)
	if err != nil {
		h.logger.Error("Failed to get leads", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get leads"})
		return
	}
	if leads == nil {
		leads = []*models.Lead{}
	}
	c.JSON(http.StatusOK, leads)
}

type updateLeadStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

var validLeadStatuses = map[string]bool{
	models.LeadStatusNew:        true,
	models.LeadStatusIgnored:    true,
	models.LeadStatusContacted:  true,
	models.LeadStatusBookmarked: true,
}

// UpdateLeadStatus handles PATCH /api/leads/:id/status
func (h *leadHandler) UpdateLeadStatus(c *gin.Context) {
	redditID := c.Param("id")

	var req updateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validLeadStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	if err := h.leadRepo.UpdateStatus(redditID, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
			return
		}
		h.logger.Error("Failed to update lead status", zap.String("reddit_id", redditID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lead status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
