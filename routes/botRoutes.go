package routes

import (
	"civicbot-be/controllers"
	"civicbot-be/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// BotRoutes sets up the conversational endpoints: the channel webhook and the
// resolver's fulfillment hook.
func BotRoutes(r *gin.Engine, webhook *controllers.WebhookController, fulfillment *controllers.FulfillmentController, rdb *redis.Client, dailyLimit int) {
	r.POST("/webhook/whatsapp", middlewares.ReportRateLimiter(rdb, dailyLimit), webhook.HandleInbound)
	r.POST("/fulfillment", fulfillment.HandleTurn)
}
