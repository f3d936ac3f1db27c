package middleware

import (
	"time"

	"github.com/ChalithH/SkillForge/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one structured line per request, including the
// authenticated user id when available.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
		}
		if v, ok := c.Get("currentUser"); ok {
			if user, ok := v.(*models.User); ok && user != nil {
				fields["user_id"] = user.ID
			}
		}

		if c.Writer.Status() >= 500 {
			log.WithFields(fields).Error("request")
		} else {
			log.WithFields(fields).Info("request")
		}
	}
}
