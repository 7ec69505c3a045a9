package middlewares

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const reportLimitPrefix = "reportlimit"

type limitReply struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// ReportRateLimiter caps inbound channel turns per user per day. Keys expire
// 24h after the first message of the window.
func ReportRateLimiter(rdb *redis.Client, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.PostForm("WaId")
		if userID == "" {
			// No channel address to key on; the controller rejects it anyway.
			c.Next()
			return
		}

		ctx := c.Request.Context()
		userKey := reportLimitPrefix + ":" + userID

		count, err := rdb.Incr(ctx, userKey).Result()
		if err != nil {
			// Limiter degradation must not block the channel.
			c.Next()
			return
		}

		if count == 1 {
			_ = rdb.Expire(ctx, userKey, 24*time.Hour).Err()
		}

		if count > int64(limit) {
			// Twilio expects 200 + TwiML even for refusals.
			c.XML(http.StatusOK, limitReply{Message: "You've reached today's message limit. Please try again tomorrow."})
			c.Abort()
			return
		}

		c.Next()
	}
}
