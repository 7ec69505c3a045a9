package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"civicbot-be/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// IssueStore is the record store surface the dispatcher needs.
type IssueStore interface {
	Get(ctx context.Context, issueID string) (*models.Issue, error)
	Put(ctx context.Context, issue *models.Issue) error
	Scan(ctx context.Context, limit int64) ([]models.Issue, error)
}

// SessionStore persists the per-user continuity record. Writes are
// best-effort: a failure never fails the turn.
type SessionStore interface {
	Put(ctx context.Context, sess *models.Session) error
}

// Classifier labels an issue description with a priority. It never fails:
// any degradation resolves to the documented default inside the adapter.
type Classifier interface {
	Classify(ctx context.Context, issueText string) models.IssuePriority
}

// Matcher is the duplicate/similarity checker.
type Matcher interface {
	FindSimilar(ctx context.Context, description, location string) (*models.Issue, error)
	FindByKeywords(ctx context.Context, keyword, location string) (*models.Issue, error)
}

// Insights synthesizes a short admin summary over a record sample. Degrades
// to a fixed string internally; never fails the intent.
type Insights interface {
	Summary(ctx context.Context, timeframe, reportType string, sample []models.Issue) string
}

// Dispatcher is the intent state machine. It is stateless across invocations:
// all continuity lives in the record store and in the session attributes
// handed to it per turn.
type Dispatcher struct {
	issues     IssueStore
	sessions   SessionStore
	classifier Classifier
	matcher    Matcher
	insights   Insights
	sampleSize int64
	log        zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewDispatcher(log zerolog.Logger, issues IssueStore, sessions SessionStore, classifier Classifier, matcher Matcher, insights Insights, sampleSize int64) *Dispatcher {
	return &Dispatcher{
		issues:     issues,
		sessions:   sessions,
		classifier: classifier,
		matcher:    matcher,
		insights:   insights,
		sampleSize: sampleSize,
		log:        log,
		now:        time.Now,
		newID:      func() string { return uuid.NewString()[:8] },
	}
}

// Dispatch routes one resolved turn to its intent handler. A non-nil error is
// returned only for a resolver/engine contract mismatch; every user-recoverable
// failure is expressed as a Failed response.
func (d *Dispatcher) Dispatch(ctx context.Context, req *IntentRequest) (*IntentResponse, error) {
	intent, ok := ParseIntent(req.IntentName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, req.IntentName)
	}
	d.log.Info().Str("intent", string(intent)).Str("session", req.SessionID).Msg("dispatching intent")

	switch intent {
	case IntentReportIssue:
		return d.handleReportIssue(ctx, req), nil
	case IntentTrackStatus:
		return d.handleTrackStatus(ctx, req), nil
	case IntentRateService:
		return d.handleRateService(req), nil
	case IntentAdminSummary:
		return d.handleAdminSummary(ctx, req), nil
	case IntentRetrieveID:
		return d.handleRetrieveID(ctx, req), nil
	case IntentWelcome:
		// Menu content is owned by the resolver's initial response.
		return fulfilled(req, msgWelcome), nil
	case IntentStartReport, IntentForgotIDTrigger:
		// Routing-only intents: hand control back to the resolver's flow.
		return delegated(req), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, req.IntentName)
	}
}

func (d *Dispatcher) handleReportIssue(ctx context.Context, req *IntentRequest) *IntentResponse {
	fields, err := ResolveReportFields(req.Slots, req.SessionAttributes)
	if err != nil {
		if verr, ok := err.(*ValidationError); ok {
			return failed(req, verr.Prompt)
		}
		return failed(req, msgMissingLocation)
	}

	priority := d.classifier.Classify(ctx, fields.Description)

	duplicate, err := d.matcher.FindSimilar(ctx, fields.Description, fields.Location)
	if err != nil {
		// Advisory only: a degraded similarity check never blocks the report.
		d.log.Warn().Err(err).Str("session", req.SessionID).Msg("similarity check degraded")
		duplicate = nil
	}

	issue := &models.Issue{
		IssueID:                d.newID(),
		Timestamp:              d.now().Unix(),
		ReporterID:             req.SessionID,
		IssueType:              fields.Description,
		Location:               fields.Location,
		Status:                 models.StatusNew,
		Priority:               priority,
		ExpectedCompletionDate: models.DefaultCompletionDate,
	}

	if err := d.issues.Put(ctx, issue); err != nil {
		d.log.Error().Err(err).Str("session", req.SessionID).Str("issue_id", issue.IssueID).Msg("issue write failed")
		return failed(req, msgReportWriteFailed)
	}

	// Secondary write: session continuity is advisory, so a failure here is
	// logged and the turn still fulfills.
	if req.SessionID != "" {
		sess := &models.Session{
			UserID:      req.SessionID,
			LastIssueID: issue.IssueID,
			Timestamp:   d.now().Unix(),
		}
		if err := d.sessions.Put(ctx, sess); err != nil {
			d.log.Warn().Err(err).Str("session", req.SessionID).Str("issue_id", issue.IssueID).Msg("session record write failed")
		}
	}

	return fulfilled(req, reportConfirmation(issue, duplicate))
}

func (d *Dispatcher) handleTrackStatus(ctx context.Context, req *IntentRequest) *IntentResponse {
	trackingID := slotValue(req.Slots, SlotTrackingID)
	if trackingID == "" {
		return failed(req, msgTrackingIDPrompt)
	}

	issue, err := d.issues.Get(ctx, trackingID)
	if err != nil {
		d.log.Error().Err(err).Str("issue_id", trackingID).Msg("status lookup failed")
		return failed(req, msgTrackingLookupErr)
	}
	if issue == nil {
		return failed(req, trackNotFoundMessage(trackingID))
	}

	return fulfilled(req, trackStatusMessage(issue))
}

func (d *Dispatcher) handleRateService(req *IntentRequest) *IntentResponse {
	raw := slotValue(req.Slots, SlotRatingScore)
	rating, err := strconv.Atoi(raw)
	if err != nil {
		return failed(req, msgRatingNotNumeric)
	}
	if rating < 1 || rating > 5 {
		return failed(req, msgRatingOutOfRange)
	}

	// Ratings are not persisted against an issue or user.
	msg := msgRatingThanks
	if rating <= 2 {
		msg += msgRatingEmpathy
	}
	return fulfilled(req, msg)
}

func (d *Dispatcher) handleAdminSummary(ctx context.Context, req *IntentRequest) *IntentResponse {
	timeframe := slotValue(req.Slots, SlotTimeframe)
	if timeframe == "" {
		timeframe = "Last Week"
	}
	reportType := slotValue(req.Slots, SlotReportType)
	if reportType == "" {
		reportType = "Top Issues"
	}

	sample, err := d.issues.Scan(ctx, d.sampleSize)
	if err != nil {
		d.log.Warn().Err(err).Msg("admin summary sample fetch failed")
		sample = nil
	}

	summary := d.insights.Summary(ctx, timeframe, reportType, sample)
	return fulfilled(req, "*Admin Insight:*\n"+summary)
}

func (d *Dispatcher) handleRetrieveID(ctx context.Context, req *IntentRequest) *IntentResponse {
	keyword := slotValue(req.Slots, SlotIssueKeyword)
	location := slotValue(req.Slots, SlotUserLocation)
	if keyword == "" || location == "" {
		return failed(req, msgRetrievePrompt)
	}

	issue, err := d.matcher.FindByKeywords(ctx, keyword, location)
	if err != nil {
		d.log.Error().Err(err).Str("session", req.SessionID).Msg("forgotten-id search failed")
		return failed(req, msgRetrieveSearchErr)
	}
	if issue == nil {
		return fulfilled(req, msgRetrieveNotFound)
	}

	return fulfilled(req, retrieveFoundMessage(issue))
}

func fulfilled(req *IntentRequest, msg string) *IntentResponse {
	return &IntentResponse{State: StateFulfilled, Message: msg, SessionAttributes: req.SessionAttributes}
}

func failed(req *IntentRequest, msg string) *IntentResponse {
	return &IntentResponse{State: StateFailed, Message: msg, SessionAttributes: req.SessionAttributes}
}

func delegated(req *IntentRequest) *IntentResponse {
	return &IntentResponse{State: StateDelegated, SessionAttributes: req.SessionAttributes}
}
