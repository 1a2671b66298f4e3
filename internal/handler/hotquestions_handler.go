package handler

import (
	"net/http"
	"time"

	"github.com/SergeiKhy/coin-fortune/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HotQuestionsHandler struct {
	service service.HotQuestionService
	logger  *zap.Logger
}

func NewHotQuestionsHandler(service service.HotQuestionService, logger *zap.Logger) *HotQuestionsHandler {
	return &HotQuestionsHandler{service: service, logger: logger}
}

type HotQuestionsResponse struct {
	HotQuestions []string `json:"hot_questions"`
}

// GetToday godoc
// @Summary Get today's hot questions
// @Description Get the most recently calculated top-5 question ranking (yesterday's click data)
// @Tags hot-questions
// @Produce json
// @Success 200 {object} HotQuestionsResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/hot-questions/today [get]
func (h *HotQuestionsHandler) GetToday(c *gin.Context) {
	questions, err := h.service.GetToday(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get hot questions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to get hot questions",
		})
		return
	}

	c.JSON(http.StatusOK, HotQuestionsResponse{HotQuestions: questions})
}

// Calculate godoc
// @Summary Run the hot-question batch job
// @Description Aggregate yesterday's tag clicks into the top-5 ranking; triggered daily by an external scheduler
// @Tags hot-questions
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/cron/hot-questions [post]
func (h *HotQuestionsHandler) Calculate(c *gin.Context) {
	if err := h.service.Calculate(c.Request.Context()); err != nil {
		h.logger.Error("Hot questions calculation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "calculation_failed",
			Message: "Hot questions calculation failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Hot questions calculation completed",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
