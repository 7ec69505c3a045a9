package controllers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"civicbot-be/config"
	"civicbot-be/models"
	authUtils "civicbot-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// statsInsightSize caps how many records feed the executive summary.
const statsInsightSize = 20

type issueAdminStore interface {
	Scan(ctx context.Context, limit int64) ([]models.Issue, error)
	QueryByStatus(ctx context.Context, status string, limit int64) ([]models.Issue, error)
	UpdateStatus(ctx context.Context, issueID string, status models.IssueStatus, expectedCompletionDate string) (*models.Issue, error)
}

type insightSource interface {
	StatsInsight(ctx context.Context, sample []models.Issue) string
}

// AdminController serves the dashboard: list/filter, aggregate stats, and the
// status updates that drive the notifier's change stream.
type AdminController struct {
	issues   issueAdminStore
	insights insightSource
	cfg      config.Config
	log      zerolog.Logger
}

func NewAdminController(issues issueAdminStore, insights insightSource, cfg config.Config, log zerolog.Logger) *AdminController {
	return &AdminController{issues: issues, insights: insights, cfg: cfg, log: log}
}

// Login exchanges the shared operator key for a bearer token.
func (ac *AdminController) Login(c *gin.Context) {
	var input struct {
		APIKey string `json:"apiKey" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if ac.cfg.AdminAPIKey == "" ||
		subtle.ConstantTimeCompare([]byte(input.APIKey), []byte(ac.cfg.AdminAPIKey)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
		return
	}

	token, err := authUtils.GenerateAdminToken(ac.cfg.JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ListIssues returns recent issues, optionally filtered by status, newest
// first.
func (ac *AdminController) ListIssues(c *gin.Context) {
	var (
		issues []models.Issue
		err    error
	)
	if status := c.Query("status"); status != "" {
		issues, err = ac.issues.QueryByStatus(c.Request.Context(), status, ac.cfg.AdminScanLimit)
	} else {
		issues, err = ac.issues.Scan(c.Request.Context(), ac.cfg.AdminScanLimit)
	}
	if err != nil {
		ac.log.Error().Err(err).Msg("issue list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	if issues == nil {
		issues = []models.Issue{}
	}
	c.JSON(http.StatusOK, issues)
}

// GetStats returns the dashboard aggregates plus an AI executive summary.
func (ac *AdminController) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	issues, err := ac.issues.Scan(ctx, ac.cfg.AdminScanLimit)
	if err != nil {
		ac.log.Error().Err(err).Msg("stats scan failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	statusCounts := map[string]int{}
	priorityCounts := map[string]int{}
	totalPending := 0
	for _, issue := range issues {
		statusCounts[string(issue.Status)]++
		priorityCounts[string(issue.Priority)]++
		switch strings.ToLower(string(issue.Status)) {
		case "new", "processing":
			totalPending++
		}
	}

	sample := issues
	if len(sample) > statsInsightSize {
		sample = sample[:statsInsightSize]
	}
	summary := ac.insights.StatsInsight(ctx, sample)

	c.JSON(http.StatusOK, gin.H{
		"keyMetrics": gin.H{
			"totalPending":   totalPending,
			"highPriority":   priorityCounts[string(models.PriorityHigh)],
			"totalCompleted": statusCounts[string(models.StatusCompleted)],
		},
		"byStatus":           nameValuePairs(statusCounts),
		"byPriority":         nameValuePairs(priorityCounts),
		"aiExecutiveSummary": summary,
	})
}

// UpdateIssue applies a status/date change to one issue and returns the new
// record state. This is the mutation the notifier watches for.
func (ac *AdminController) UpdateIssue(c *gin.Context) {
	issueID := c.Param("issueId")

	var input struct {
		Status                 string `json:"status" binding:"required"`
		ExpectedCompletionDate string `json:"expectedCompletionDate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status and ExpectedCompletionDate are required"})
		return
	}

	updated, err := ac.issues.UpdateStatus(c.Request.Context(), issueID, models.IssueStatus(input.Status), input.ExpectedCompletionDate)
	if err != nil {
		ac.log.Error().Err(err).Str("issue_id", issueID).Msg("issue update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func nameValuePairs(counts map[string]int) []gin.H {
	pairs := make([]gin.H, 0, len(counts))
	for name, value := range counts {
		pairs = append(pairs, gin.H{"name": name, "value": value})
	}
	return pairs
}
