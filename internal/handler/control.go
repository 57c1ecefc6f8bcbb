package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadmonitor/internal/scheduler"
)

// Engine job names. Stop addresses exactly these two jobs; nothing else
// the scheduler might be running is touched.
const (
	JobMonitorPosts = "monitor_posts"
	JobCheckDMs     = "check_dms"
)

type ControlHandler interface {
	StartMonitor(c *gin.Context)
	StopMonitor(c *gin.Context)
	ScanNow(c *gin.Context)
	Status(c *gin.Context)
}

type controlHandler struct {
	sched   *scheduler.Scheduler
	baseCtx context.Context
	logger  *zap.Logger
}

// NewControlHandler exposes the scheduled jobs to the operator. baseCtx
// is the process context; jobs started here stop on shutdown.
func NewControlHandler(sched *scheduler.Scheduler, baseCtx context.Context, logger *zap.Logger) ControlHandler {
	return &controlHandler{sched: sched, baseCtx: baseCtx, logger: logger}
}

// StartMonitor handles POST /api/monitor/start
func (h *controlHandler) StartMonitor(c *gin.Context) {
	for _, name := range []string{JobMonitorPosts, JobCheckDMs} {
		if err := h.sched.Start(h.baseCtx, name); err != nil {
			h.logger.Error("Failed to start job", zap.String("job", name), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start " + name})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Background jobs started"})
}

// StopMonitor handles POST /api/monitor/stop
func (h *controlHandler) StopMonitor(c *gin.Context) {
	for _, name := range []string{JobMonitorPosts, JobCheckDMs} {
		if err := h.sched.Stop(name); err != nil {
			h.logger.Error("Failed to stop job", zap.String("job", name), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stop " + name})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Background jobs stopped"})
}

// ScanNow handles POST /api/monitor/scan — a one-shot discovery cycle.
func (h *controlHandler) ScanNow(c *gin.Context) {
	if err := h.sched.Trigger(h.baseCtx, JobMonitorPosts); err != nil {
		h.logger.Error("Manual scan failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Manual scan failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Manual scan complete"})
}

// Status handles GET /api/monitor/status
func (h *controlHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"monitor_posts": h.sched.Running(JobMonitorPosts),
		"check_dms":     h.sched.Running(JobCheckDMs),
	})
}
