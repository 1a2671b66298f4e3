package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireCronSecret middleware для HTTP-триггера batch-задачи.
// Внешний планировщик передаёт общий секрет через Authorization: Bearer.
func RequireCronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_cron_secret",
				"message": "Требуется секрет планировщика в заголовке Authorization: Bearer",
			})
			c.Abort()
			return
		}

		// Сравнение за постоянное время
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_cron_secret",
				"message": "Невалидный секрет планировщика",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
