package handler

import (
	"github.com/SergeiKhy/coin-fortune/internal/middleware"
	"github.com/SergeiKhy/coin-fortune/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(
	fortuneService service.FortuneService,
	questionService service.QuestionService,
	hotService service.HotQuestionService,
	rateLimiter *middleware.RateLimiter,
	cronAuth gin.HandlerFunc,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.Default()

	// Middleware для логгирования
	if logger != nil {
		router.Use(func(c *gin.Context) {
			logger.Info("Request",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.Next()
		})
	}

	// Rate limiting для всех запросов (ключ — отпечаток устройства)
	router.Use(rateLimiter.Middleware())

	coinHandler := NewCoinHandler(fortuneService, questionService, logger)
	hotHandler := NewHotQuestionsHandler(hotService, logger)

	// API v.1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", HealthCheck)

		v1.GET("/coin/today", coinHandler.GetToday)
		v1.GET("/coin/field", coinHandler.GetField)
		v1.GET("/coin/history", coinHandler.History)
		v1.POST("/coin/analyze", coinHandler.Analyze)
		v1.POST("/coin/question", coinHandler.ExplainQuestion)

		v1.GET("/hot-questions/today", hotHandler.GetToday)

		// Триггер batch-задачи закрыт общим секретом, если он настроен
		cron := v1.Group("/cron")
		if cronAuth != nil {
			cron.Use(cronAuth)
		}
		cron.POST("/hot-questions", hotHandler.Calculate)
	}

	return router
}
