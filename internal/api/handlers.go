package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/JustJay7/courtdle-api/internal/cache"
	"github.com/JustJay7/courtdle-api/internal/database"
	"github.com/JustJay7/courtdle-api/internal/models"
	"github.com/JustJay7/courtdle-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Quiz is the behaviour the handlers need from the quiz aggregator.
type Quiz interface {
	ListCases(ctx context.Context) ([]models.CaseSummary, error)
	CheckAnswer(ctx context.Context, id models.CaseID, userChoice string) (models.AnswerResult, error)
}

// Handlers holds all HTTP handlers
type Handlers struct {
	quiz    Quiz
	answers *database.AnswerLogRepository
	stats   cache.StatsReporter
	logger  *logger.Logger
}

// NewHandlers creates a new handlers instance. answers and stats may be nil.
func NewHandlers(quiz Quiz, answers *database.AnswerLogRepository, stats cache.StatsReporter, logger *logger.Logger) *Handlers {
	return &Handlers{
		quiz:    quiz,
		answers: answers,
		stats:   stats,
		logger:  logger,
	}
}

type checkAnswerRequest struct {
	CaseID     string `json:"case_id" binding:"required"`
	UserChoice string `json:"user_choice" binding:"required"`
}

func errorResponse(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   msg,
	})
}

// ListCases returns today's case summaries. A cold build runs to completion
// even if the client goes away, so the batch still gets cached.
func (h *Handlers) ListCases(c *gin.Context) {
	summaries, err := h.quiz.ListCases(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		h.logger.Error("Failed to build case batch", "error", err)
		errorResponse(c, http.StatusInternalServerError, "Failed to fetch cases: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// CheckAnswer judges the user's pick for one case
func (h *Handlers) CheckAnswer(c *gin.Context) {
	var req checkAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	id, err := models.ParseCaseID(req.CaseID)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	answerLog := &database.AnswerLog{
		CaseID:     id.String(),
		UserChoice: req.UserChoice,
		QueryTime:  time.Now(),
		IPAddress:  c.ClientIP(),
	}

	result, err := h.quiz.CheckAnswer(context.WithoutCancel(c.Request.Context()), id, req.UserChoice)
	if err != nil {
		answerLog.ErrorMessage = err.Error()
		h.saveAnswerLog(c.Request.Context(), answerLog)

		h.logger.Error("Failed to check answer", "case_id", id.String(), "error", err)
		errorResponse(c, http.StatusInternalServerError, "Failed to check answer: "+err.Error())
		return
	}

	answerLog.Success = true
	answerLog.Verdict = string(result.Verdict)
	h.saveAnswerLog(c.Request.Context(), answerLog)

	c.JSON(http.StatusOK, result)
}

func (h *Handlers) saveAnswerLog(ctx context.Context, entry *database.AnswerLog) {
	if h.answers == nil {
		return
	}
	// Logged after judging; a failed write is not reported to the client.
	if err := h.answers.Create(context.WithoutCancel(ctx), entry); err != nil {
		h.logger.Error("Failed to save answer log", "error", err)
	}
}

// ListAnswersAPI returns logged answers, newest first
func (h *Handlers) ListAnswersAPI(c *gin.Context) {
	if h.answers == nil {
		errorResponse(c, http.StatusServiceUnavailable, "Answer log is not configured")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	page, limit = database.PageBounds(page, limit)

	logs, total, err := h.answers.List(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.Error("Failed to list answers", "error", err)
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	dbHealthy := h.answers != nil && h.answers.Ping(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": dbHealthy,
		"cache":    h.cacheStats(),
		"time":     time.Now().Unix(),
	})
}

// CacheStats returns cache statistics
func (h *Handlers) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   h.cacheStats(),
	})
}

func (h *Handlers) cacheStats() any {
	if h.stats == nil {
		return nil
	}
	return h.stats.Stats()
}
