package controllers

import (
	"context"
	"net/http"

	"civicbot-be/bot"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// dispatcher is the engine surface the HTTP layer needs.
type dispatcher interface {
	Dispatch(ctx context.Context, req *bot.IntentRequest) (*bot.IntentResponse, error)
}

// FulfillmentController exposes the dispatcher to the resolver: one POST per
// resolved conversational turn.
type FulfillmentController struct {
	dispatcher dispatcher
	log        zerolog.Logger
}

func NewFulfillmentController(d dispatcher, log zerolog.Logger) *FulfillmentController {
	return &FulfillmentController{dispatcher: d, log: log}
}

// HandleTurn runs one turn through the state machine.
func (fc *FulfillmentController) HandleTurn(c *gin.Context) {
	var req bot.IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := fc.dispatcher.Dispatch(c.Request.Context(), &req)
	if err != nil {
		// Resolver/engine contract mismatch. Operator-facing, not a user
		// Failed turn.
		fc.log.Error().Err(err).Str("intent", req.IntentName).Str("session", req.SessionID).Msg("dispatch protocol error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "intent not supported"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
