package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"civicbot-be/models"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"
)

// msgInsightUnavailable is the fixed degradation string for any failed
// synthesis call. The intent still fulfills.
const msgInsightUnavailable = "AI insight is currently unavailable."

// Summary asks the generative collaborator for a short structured summary of
// the record sample, constrained to issue types actually present in it.
func (c *Client) Summary(ctx context.Context, timeframe, reportType string, sample []models.Issue) string {
	data, err := json.Marshal(sample)
	if err != nil {
		c.log.Warn().Err(err).Msg("admin summary degraded")
		return msgInsightUnavailable
	}

	prompt := fmt.Sprintf(`TASK: As a data analyst, summarize the following JSON data of civic reports for %s (%s). Instructions:
1. Identify the top 2 issueType entries by count.
2. For those top 2, state the count and the highest observed priority (HIGH/MEDIUM/LOW).
3. CRITICAL GUARDRAIL: Only report issue types present in the JSON data. If there are fewer than two, only report the ones that exist.
4. Format the output as a numbered list.
JSON Data: %s`, timeframe, reportType, data)

	return c.synthesize(ctx, prompt, 1000)
}

// StatsInsight produces the two-sentence executive summary on the admin
// dashboard.
func (c *Client) StatsInsight(ctx context.Context, sample []models.Issue) string {
	data, err := json.Marshal(sample)
	if err != nil {
		c.log.Warn().Err(err).Msg("stats insight degraded")
		return msgInsightUnavailable
	}

	prompt := "You are a city operations analyst. Based on this JSON list of open civic issues, " +
		"write a 2-sentence executive summary identifying the most critical trend. DATA: " + string(data)

	return c.synthesize(ctx, prompt, 200)
}

func (c *Client) synthesize(ctx context.Context, prompt string, maxTokens int64) string {
	if strings.TrimSpace(c.key) == "" {
		c.log.Warn().Msg("insight skipped: missing key")
		return msgInsightUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(0.1),
		MaxCompletionTokens: openai.Int(maxTokens),
	}

	resp, err := c.cli.Chat.Completions.New(ctx, params)
	if err != nil || len(resp.Choices) == 0 {
		c.log.Warn().Err(err).Msg("insight synthesis degraded")
		return msgInsightUnavailable
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return msgInsightUnavailable
	}
	return out
}
