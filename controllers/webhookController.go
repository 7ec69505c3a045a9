package controllers

import (
	"context"
	"encoding/xml"
	"net/http"
	"strconv"
	"strings"

	"civicbot-be/bot"
	"civicbot-be/nlu"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	msgEmptyInbound   = "Please send a message."
	msgMediaReceived  = "Thank you, I've received your media."
	msgMediaMissing   = "I see you tried to send media, but I couldn't find it."
	msgMediaSaveError = "Sorry, I had a problem saving your media file."
	msgResolverStuck  = "Sorry, I had trouble processing that request."
	msgInternalError  = "I'm sorry, an internal server error occurred."
)

type resolver interface {
	RecognizeText(ctx context.Context, sessionID, text string, sessionAttrs map[string]string) (*nlu.Result, error)
}

type mediaSessions interface {
	AttachMedia(ctx context.Context, userID, mediaURL string) error
}

// WebhookController is the inbound channel gateway: it normalizes a Twilio
// WhatsApp post into a conversational turn, runs it through the resolver and
// the dispatcher, and answers TwiML.
type WebhookController struct {
	nlu        resolver
	dispatcher dispatcher
	sessions   mediaSessions
	log        zerolog.Logger
}

func NewWebhookController(n resolver, d dispatcher, sessions mediaSessions, log zerolog.Logger) *WebhookController {
	return &WebhookController{nlu: n, dispatcher: d, sessions: sessions, log: log}
}

// twimlResponse is the minimal TwiML reply Twilio expects.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

func replyTwiML(c *gin.Context, text string) {
	c.XML(http.StatusOK, twimlResponse{Message: text})
}

// HandleInbound processes one inbound WhatsApp message.
func (wc *WebhookController) HandleInbound(c *gin.Context) {
	ctx := c.Request.Context()
	waID := c.PostForm("WaId")
	if waID == "" {
		replyTwiML(c, msgEmptyInbound)
		return
	}

	numMedia, _ := strconv.Atoi(c.DefaultPostForm("NumMedia", "0"))
	if numMedia > 0 {
		wc.handleMedia(c, waID)
		return
	}

	text := strings.TrimSpace(c.PostForm("Body"))
	if text == "" {
		replyTwiML(c, msgEmptyInbound)
		return
	}

	// A shared location pin rides along as a session attribute for the next
	// report turn only; the resolver passes it through untouched.
	sessionAttrs := map[string]string{}
	if lat, long := c.PostForm("Latitude"), c.PostForm("Longitude"); lat != "" && long != "" {
		sessionAttrs[bot.SessionKeyLocationData] = "LAT:" + lat + "|LONG:" + long
	}

	result, err := wc.nlu.RecognizeText(ctx, waID, text, sessionAttrs)
	if err != nil {
		wc.log.Error().Err(err).Str("session", waID).Msg("intent resolution failed")
		replyTwiML(c, msgInternalError)
		return
	}

	if result.Intent == nil {
		// Still slot filling; the resolver owns the next question.
		prompt := result.Prompt
		if prompt == "" {
			prompt = msgResolverStuck
		}
		replyTwiML(c, prompt)
		return
	}

	resp, err := wc.dispatcher.Dispatch(ctx, result.Intent)
	if err != nil {
		wc.log.Error().Err(err).Str("session", waID).Str("intent", result.Intent.IntentName).Msg("dispatch protocol error")
		replyTwiML(c, msgInternalError)
		return
	}

	msg := resp.Message
	if msg == "" {
		// Delegated turn: surface the resolver's own flow prompt.
		msg = result.Prompt
		if msg == "" {
			msg = msgResolverStuck
		}
	}
	replyTwiML(c, msg)
}

func (wc *WebhookController) handleMedia(c *gin.Context, waID string) {
	mediaURL := c.PostForm("MediaUrl0")
	if mediaURL == "" {
		replyTwiML(c, msgMediaMissing)
		return
	}

	if err := wc.sessions.AttachMedia(c.Request.Context(), waID, mediaURL); err != nil {
		wc.log.Error().Err(err).Str("session", waID).Msg("media attach failed")
		replyTwiML(c, msgMediaSaveError)
		return
	}
	replyTwiML(c, msgMediaReceived)
}
