package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadmonitor/internal/repository"
)

type SettingsHandler interface {
	GetMonitoredSubreddits(c *gin.Context)
	UpdateMonitoredSubreddits(c *gin.Context)
}

type settingsHandler struct {
	settingsRepo repository.SettingsRepository
	logger       *zap.Logger
}

func NewSettingsHandler(settingsRepo repository.SettingsRepository, logger *zap.Logger) SettingsHandler {
	return &settingsHandler{settingsRepo: settingsRepo, logger: logger}
}

// GetMonitoredSubreddits handles GET /api/settings/monitored_subreddits.
// The engine polls this each discovery cycle; an unset value returns an
// empty list, which callers treat as "use defaults".
func (h *settingsHandler) GetMonitoredSubreddits(c *gin.Context) {
	list, err := h.settingsRepo.GetStringList(repository.SettingMonitoredSubreddits)
	if err != nil {
		h.logger.Error("Failed to get monitored subreddits", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get setting"})
		return
	}
	if list == nil {
		list = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

type updateSubredditsRequest struct {
	List []string `json:"list" binding:"required"`
}

// UpdateMonitoredSubreddits handles PUT /api/settings/monitored_subreddits
func (h *settingsHandler) UpdateMonitoredSubreddits(c *gin.Context) {
	var req updateSubredditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.settingsRepo.SetStringList(repository.SettingMonitoredSubreddits, req.List); err != nil {
		h.logger.Error("Failed to update monitored subreddits", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update setting"})
		return
	}

	h.logger.Info("Monitored subreddits updated", zap.Strings("list", req.List))
	c.JSON(http.StatusOK, gin.H{"status": "success", "list": req.List})
}
