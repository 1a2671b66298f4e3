package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SergeiKhy/coin-fortune/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CoinHandler struct {
	fortune   service.FortuneService
	questions service.QuestionService
	logger    *zap.Logger
}

func NewCoinHandler(fortune service.FortuneService, questions service.QuestionService, logger *zap.Logger) *CoinHandler {
	return &CoinHandler{
		fortune:   fortune,
		questions: questions,
		logger:    logger,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type AnalyzeRequest struct {
	DeviceFingerprint string `json:"device_fingerprint" binding:"required"`
}

type ExplainQuestionRequest struct {
	DeviceFingerprint string `json:"device_fingerprint" binding:"required"`
	Question          string `json:"question" binding:"required"`
	// Принимается для совместимости с клиентом; сервер всегда бросает заново
	CoinResults []int `json:"coin_results,omitempty"`
}

// GetToday godoc
// @Summary Get today's reading
// @Description Get or create the daily coin toss for a device (idempotent per UTC+8 day)
// @Tags coin
// @Produce json
// @Param fingerprint query string true "Device fingerprint"
// @Success 200 {object} models.TodayReading
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/coin/today [get]
func (h *CoinHandler) GetToday(c *gin.Context) {
	fingerprint := c.Query("fingerprint")
	if fingerprint == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fingerprint",
			Message: "Device fingerprint is required",
		})
		return
	}

	reading, err := h.fortune.GetToday(c.Request.Context(), fingerprint)
	if err != nil {
		h.logger.Error("Failed to get today's reading", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to get today's reading",
		})
		return
	}

	c.JSON(http.StatusOK, reading)
}

// GetField godoc
// @Summary Get a single analysis field
// @Description Get one named analysis field for today's reading, generating it on first request
// @Tags coin
// @Produce json
// @Param fingerprint query string true "Device fingerprint"
// @Param field query string true "Field name (greeting|outfit|color|mood|career|love|luck)"
// @Success 200 {object} models.FieldResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/coin/field [get]
func (h *CoinHandler) GetField(c *gin.Context) {
	fingerprint := c.Query("fingerprint")
	fieldName := c.Query("field")
	if fingerprint == "" || fieldName == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_params",
			Message: "Device fingerprint and field name are required",
		})
		return
	}

	result, err := h.fortune.GetField(c.Request.Context(), fingerprint, fieldName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownField):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "unknown_field",
				Message: "Field must be one of: greeting, outfit, color, mood, career, love, luck",
			})
		case errors.Is(err, service.ErrNoTossToday):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "toss_required",
				Message: "Today's reading does not exist yet, call /coin/today first",
			})
		default:
			h.logger.Error("Failed to get field", zap.String("field", fieldName), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to generate field",
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Analyze godoc
// @Summary Generate the full analysis
// @Description Fill all seven analysis fields of today's reading in one structured generator call
// @Tags coin
// @Accept json
// @Produce json
// @Param request body AnalyzeRequest true "Analyze request"
// @Success 200 {object} models.TodayReading
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/coin/analyze [post]
func (h *CoinHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	reading, err := h.fortune.AnalyzeToday(c.Request.Context(), req.DeviceFingerprint)
	if err != nil {
		if errors.Is(err, service.ErrNoTossToday) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "toss_required",
				Message: "Today's reading does not exist yet, call /coin/today first",
			})
			return
		}
		h.logger.Error("Failed to analyze reading", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to generate analysis",
		})
		return
	}

	c.JSON(http.StatusOK, reading)
}

// ExplainQuestion godoc
// @Summary Answer a user question
// @Description Generate an answer for a user question, limited to 6 per device per day
// @Tags coin
// @Accept json
// @Produce json
// @Param request body ExplainQuestionRequest true "Question request"
// @Success 200 {object} models.Explanation
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/coin/question [post]
func (h *CoinHandler) ExplainQuestion(c *gin.Context) {
	var req ExplainQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	explanation, err := h.questions.Explain(c.Request.Context(), req.DeviceFingerprint, req.Question)
	if err != nil {
		h.logger.Error("Failed to explain question", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to explain question",
		})
		return
	}

	c.JSON(http.StatusOK, explanation)
}

// History godoc
// @Summary Get reading history
// @Description Get a device's past readings in chronological order
// @Tags coin
// @Produce json
// @Param fingerprint query string true "Device fingerprint"
// @Param limit query int false "Number of readings" default(10)
// @Success 200 {array} models.Reading
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/coin/history [get]
func (h *CoinHandler) History(c *gin.Context) {
	fingerprint := c.Query("fingerprint")
	if fingerprint == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fingerprint",
			Message: "Device fingerprint is required",
		})
		return
	}

	limit := 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	readings, err := h.fortune.History(c.Request.Context(), fingerprint, limit)
	if err != nil {
		h.logger.Error("Failed to get history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to get history",
		})
		return
	}

	c.JSON(http.StatusOK, readings)
}
