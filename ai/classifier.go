package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"civicbot-be/config"
	"civicbot-be/models"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rs/zerolog"
)

const classifyInstruction = "Classify the following issue as one word: HIGH, MEDIUM, or LOW. " +
	"HIGH is for health/safety crises (e.g., sewage leak, road collapse). " +
	"MEDIUM is for non-critical safety/service (e.g., flickering light, minor debris). " +
	"LOW is for aesthetic/maintenance only (e.g., faded paint, small weeds). " +
	"Respond with exactly one word."

// Client wraps the external text-generation capability used for priority
// classification, admin summaries and the embeddings probe.
type Client struct {
	key     string
	model   string
	timeout time.Duration
	cli     openai.Client
	log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	model := cfg.OpenAIModel
	if strings.TrimSpace(model) == "" {
		model = "gpt-4.1-mini"
	}
	return &Client{
		key:     cfg.OpenAIKey,
		model:   model,
		timeout: cfg.OpenAITimeout,
		cli:     openai.NewClient(option.WithAPIKey(cfg.OpenAIKey)),
		log:     log,
	}
}

// Classify labels an issue description with HIGH, MEDIUM or LOW. One attempt,
// deterministic prompt, closed vocabulary; anything else (garbage output,
// timeout, transport failure, missing key) resolves to MEDIUM. Classification
// never aborts a report submission.
func (c *Client) Classify(ctx context.Context, issueText string) models.IssuePriority {
	if strings.TrimSpace(c.key) == "" {
		c.log.Warn().Msg("classifier skipped: missing key, defaulting to MEDIUM")
		return models.PriorityMedium
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifyInstruction),
			openai.UserMessage("Issue: " + issueText + " Priority:"),
		},
		Temperature:         openai.Float(0),
		MaxCompletionTokens: openai.Int(5),
	}

	resp, err := c.cli.Chat.Completions.New(ctx, params)
	if err != nil {
		c.log.Warn().Err(err).Msg("priority classification degraded to MEDIUM")
		return models.PriorityMedium
	}
	if len(resp.Choices) == 0 {
		c.log.Warn().Err(errors.New("no choices")).Msg("priority classification degraded to MEDIUM")
		return models.PriorityMedium
	}

	return normalizePriority(resp.Choices[0].Message.Content)
}

// normalizePriority takes the first returned token, uppercases it and accepts
// it only if it is one of the three legal values.
func normalizePriority(raw string) models.IssuePriority {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return models.PriorityMedium
	}
	p := models.IssuePriority(strings.ToUpper(strings.Trim(fields[0], ".,:;!")))
	if !models.ValidPriority(p) {
		return models.PriorityMedium
	}
	return p
}

// Embed probes the embeddings capability for the similarity checker. Only the
// call's success matters today; the vector itself is not consumed.
func (c *Client) Embed(ctx context.Context, text string) error {
	if strings.TrimSpace(c.key) == "" {
		return errors.New("embeddings: missing key")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.cli.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModelTextEmbedding3Small,
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
	})
	return err
}
