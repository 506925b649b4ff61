package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"civicpulse/internal/models"
	"civicpulse/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests.
type Handler struct {
	engine *service.Engine
	logger *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(engine *service.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		engine: engine,
		logger: logger,
	}
}

// RegisterRoutes registers all API routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		// Report lifecycle
		api.POST("/reports", h.SubmitReport)
		api.GET("/reports", h.ListReports)
		api.GET("/reports/:id", h.GetReport)
		api.POST("/reports/:id/accept", h.AcceptReport)
		api.POST("/reports/:id/reject", h.RejectReport)
		api.POST("/reports/:id/resolve", h.ResolveReport)
		api.POST("/reports/:id/validate", h.ValidateReport)
		api.POST("/reports/:id/feedback", h.SubmitFeedback)
		api.PUT("/reports/:id/kanban", h.UpdateKanbanStatus)

		// Projections
		api.GET("/board", h.GetBoard)
		api.GET("/users", h.Leaderboard)
		api.GET("/users/:id", h.GetUser)
		api.GET("/users/:id/badges", h.GetUserBadges)
		api.GET("/badges", h.GetBadges)
		api.GET("/predictions", h.GetPredictions)
	}

	// Health check
	r.GET("/health", h.HealthCheck)
}

// SubmitReport handles POST /api/v1/reports. The report is returned
// immediately in the triaging state; the AI triage runs on a detached
// goroutine and reconciles later by report id.
func (h *Handler) SubmitReport(c *gin.Context) {
	var req models.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report := h.engine.SubmitReport(req)

	go h.engine.RunTriage(context.Background(), report.ID)

	c.JSON(http.StatusAccepted, report)
}

// ListReports handles GET /api/v1/reports. Optional user_id filter for the
// citizen's own view.
func (h *Handler) ListReports(c *gin.Context) {
	reports := h.engine.Reports(c.Query("user_id"))
	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"total":   len(reports),
	})
}

// GetReport handles GET /api/v1/reports/:id.
func (h *Handler) GetReport(c *gin.Context) {
	report, ok := h.engine.Report(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// AcceptReport handles POST /api/v1/reports/:id/accept.
func (h *Handler) AcceptReport(c *gin.Context) {
	id := c.Param("id")
	if !h.engine.AcceptReport(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "report accepted"})
}

// RejectReport handles POST /api/v1/reports/:id/reject.
func (h *Handler) RejectReport(c *gin.Context) {
	id := c.Param("id")

	// Body is optional; rejecting without a reason is allowed.
	var req models.RejectReportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.engine.RejectReport(id, req.Reason) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "report rejected"})
}

// ResolveReport handles POST /api/v1/reports/:id/resolve.
func (h *Handler) ResolveReport(c *gin.Context) {
	id := c.Param("id")
	if !h.engine.MarkResolved(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found or not triaged"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "report resolved"})
}

// ValidateReport handles POST /api/v1/reports/:id/validate and returns the
// full validation outcome: updated report, ledger delta, awarded badges.
// Validating an already validated report is a silent no-op (applied=false).
func (h *Handler) ValidateReport(c *gin.Context) {
	outcome, ok := h.engine.ValidateReport(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// SubmitFeedback handles POST /api/v1/reports/:id/feedback.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var fb models.Feedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.engine.SubmitFeedback(c.Param("id"), fb) {
		c.JSON(http.StatusConflict, gin.H{"error": "report not resolved or feedback already submitted"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "feedback recorded"})
}

// UpdateKanbanStatus handles PUT /api/v1/reports/:id/kanban.
func (h *Handler) UpdateKanbanStatus(c *gin.Context) {
	var req models.KanbanUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	valid := map[models.KanbanStatus]bool{
		models.KanbanPending:    true,
		models.KanbanInProgress: true,
		models.KanbanDone:       true,
	}
	if !valid[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status. Valid values: pending, in-progress, done"})
		return
	}

	if !h.engine.SetKanbanStatus(c.Param("id"), req.Status) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "kanban status updated"})
}

// GetBoard handles GET /api/v1/board.
func (h *Handler) GetBoard(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Board())
}

// Leaderboard handles GET /api/v1/users, ordered by credits.
func (h *Handler) Leaderboard(c *gin.Context) {
	users := h.engine.Leaderboard()
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": len(users),
	})
}

// GetUser handles GET /api/v1/users/:id.
func (h *Handler) GetUser(c *gin.Context) {
	user, ok := h.engine.User(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserBadges handles GET /api/v1/users/:id/badges.
func (h *Handler) GetUserBadges(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.engine.User(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	earned := h.engine.UserBadges(id)
	c.JSON(http.StatusOK, gin.H{
		"badges": earned,
		"total":  len(earned),
	})
}

// GetBadges handles GET /api/v1/badges.
func (h *Handler) GetBadges(c *gin.Context) {
	catalog := h.engine.BadgeCatalog()
	c.JSON(http.StatusOK, gin.H{
		"badges": catalog,
		"total":  len(catalog),
	})
}

// GetPredictions handles GET /api/v1/predictions. Optional lat/lng center
// the forecast; without them the model picks a metropolitan default.
func (h *Handler) GetPredictions(c *gin.Context) {
	var location *models.Geolocation
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat/lng"})
			return
		}
		location = &models.Geolocation{Latitude: lat, Longitude: lng}
	}

	predictions, err := h.engine.Predictions(c.Request.Context(), location)
	if err != nil {
		h.logger.Error("Failed to generate predictions", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "prediction failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions": predictions,
		"total":       len(predictions),
	})
}

// HealthCheck returns service health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "civicpulse",
		"version": "1.0.0",
	})
}
