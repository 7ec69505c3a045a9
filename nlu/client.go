package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"civicbot-be/bot"
	"civicbot-be/config"

	"github.com/rs/zerolog"
)

// Client talks to the external intent-resolution service: raw user text in,
// a resolved intent (or an elicitation prompt while slot filling) out. This
// engine only consumes the resolver's output; it never calls back into it.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	return &Client{
		baseURL: cfg.NLUBaseURL,
		http:    &http.Client{Timeout: cfg.NLUTimeout},
		log:     log,
	}
}

// Result is one resolver turn. Intent is nil while the resolver is still
// eliciting slots; Prompt then carries the resolver-owned next question.
type Result struct {
	Intent *bot.IntentRequest
	Prompt string
}

type recognizeRequest struct {
	SessionID         string            `json:"sessionId"`
	Text              string            `json:"text"`
	SessionAttributes map[string]string `json:"sessionAttributes"`
}

type recognizeResponse struct {
	IntentName        string               `json:"intentName"`
	Slots             map[string]*bot.Slot `json:"slots"`
	SessionAttributes map[string]string    `json:"sessionAttributes"`
	Prompt            string               `json:"prompt"`
}

// RecognizeText sends one user utterance to the resolver.
func (c *Client) RecognizeText(ctx context.Context, sessionID, text string, sessionAttrs map[string]string) (*Result, error) {
	if c.baseURL == "" {
		return nil, errors.New("nlu: base URL not configured")
	}

	body, err := json.Marshal(recognizeRequest{
		SessionID:         sessionID,
		Text:              text,
		SessionAttributes: sessionAttrs,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recognize-text", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("nlu recognize-text status=%d", resp.StatusCode)
	}

	var out recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	if out.IntentName == "" {
		return &Result{Prompt: out.Prompt}, nil
	}

	attrs := out.SessionAttributes
	if attrs == nil {
		attrs = sessionAttrs
	}
	return &Result{
		Intent: &bot.IntentRequest{
			IntentName:        out.IntentName,
			Slots:             out.Slots,
			SessionAttributes: attrs,
			SessionID:         sessionID,
		},
		Prompt: out.Prompt,
	}, nil
}
