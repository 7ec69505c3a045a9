package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"civicbot-be/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIssueStore struct {
	byID     map[string]*models.Issue
	putErr   error
	getErr   error
	scanErr  error
	scanned  []models.Issue
	lastPut  *models.Issue
}

func newFakeIssueStore() *fakeIssueStore {
	return &fakeIssueStore{byID: map[string]*models.Issue{}}
}

func (f *fakeIssueStore) Get(_ context.Context, issueID string) (*models.Issue, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byID[issueID], nil
}

func (f *fakeIssueStore) Put(_ context.Context, issue *models.Issue) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.lastPut = issue
	f.byID[issue.IssueID] = issue
	return nil
}

func (f *fakeIssueStore) Scan(_ context.Context, _ int64) ([]models.Issue, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	return f.scanned, nil
}

type fakeSessionStore struct {
	putErr error
	last   *models.Session
}

func (f *fakeSessionStore) Put(_ context.Context, sess *models.Session) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.last = sess
	return nil
}

type fakeClassifier struct {
	priority models.IssuePriority
}

func (f *fakeClassifier) Classify(context.Context, string) models.IssuePriority {
	return f.priority
}

type fakeMatcher struct {
	similar    *models.Issue
	similarErr error
	byKeyword  *models.Issue
	keywordErr error
}

func (f *fakeMatcher) FindSimilar(context.Context, string, string) (*models.Issue, error) {
	return f.similar, f.similarErr
}

func (f *fakeMatcher) FindByKeywords(context.Context, string, string) (*models.Issue, error) {
	return f.byKeyword, f.keywordErr
}

type fakeInsights struct {
	summary string
}

func (f *fakeInsights) Summary(context.Context, string, string, []models.Issue) string {
	return f.summary
}

type dispatcherFixture struct {
	d        *Dispatcher
	issues   *fakeIssueStore
	sessions *fakeSessionStore
	matcher  *fakeMatcher
}

func newFixture() *dispatcherFixture {
	issues := newFakeIssueStore()
	sessions := &fakeSessionStore{}
	matcher := &fakeMatcher{}
	d := NewDispatcher(zerolog.Nop(), issues, sessions,
		&fakeClassifier{priority: models.PriorityMedium}, matcher,
		&fakeInsights{summary: "1. Potholes: 3 reports, highest priority HIGH."}, 10)
	d.now = func() time.Time { return time.Unix(1700000000, 0) }
	d.newID = func() string { return "1234abcd" }
	return &dispatcherFixture{d: d, issues: issues, sessions: sessions, matcher: matcher}
}

func reportRequest() *IntentRequest {
	return &IntentRequest{
		IntentName: string(IntentReportIssue),
		Slots: map[string]*Slot{
			SlotIssueType:    textSlot("large pothole on Main Street"),
			SlotUserLocation: textSlot("123 Main Street"),
		},
		SessionAttributes: map[string]string{"channel": "whatsapp"},
		SessionID:         "919876543210",
	}
}

func TestDispatch_ReportIssue_Fulfilled(t *testing.T) {
	fx := newFixture()

	resp, err := fx.d.Dispatch(context.Background(), reportRequest())
	require.NoError(t, err)
	assert.Equal(t, StateFulfilled, resp.State)
	assert.Contains(t, resp.Message, "1234abcd")
	assert.Contains(t, resp.Message, "Main Street")

	require.NotNil(t, fx.issues.lastPut)
	issue := fx.issues.lastPut
	assert.Len(t, issue.IssueID, 8)
	assert.Equal(t, models.StatusNew, issue.Status)
	assert.True(t, models.ValidPriority(issue.Priority))
	assert.Equal(t, "919876543210", issue.ReporterID)
	assert.Equal(t, models.DefaultCompletionDate, issue.ExpectedCompletionDate)

	require.NotNil(t, fx.sessions.last)
	assert.Equal(t, "1234abcd", fx.sessions.last.LastIssueID)
	assert.Equal(t, "919876543210", fx.sessions.last.UserID)
}

func TestDispatch_ReportIssue_GPSPrecedence(t *testing.T) {
	fx := newFixture()
	req := reportRequest()
	req.SessionAttributes[SessionKeyLocationData] = "LAT:12.97|LONG:77.59"

	resp, err := fx.d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StateFulfilled, resp.State)
	require.NotNil(t, fx.issues.lastPut)
	assert.Equal(t, "GPS Coordinates: LAT:12.97|LONG:77.59", fx.issues.lastPut.Location)
}

func TestDispatch_ReportIssue_MissingLocation_NoWrite(t *testing.T) {
	fx := newFixture()
	req := reportRequest()
	delete(req.Slots, SlotUserLocation)

	resp, err := fx.d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, resp.State)
	assert.Equal(t, msgMissingLocation, resp.Message)
	assert.Nil(t, fx.issues.lastPut)
	assert.Nil(t, fx.sessions.last)
}

func TestDispatch_ReportIssue_PrimaryWriteFails(t *testing.T) {
	fx := newFixture()
	fx.issues.putErr = errors.New("mongo down")

	resp, err := fx.d.Dispatch(context.Background(), reportRequest())
	require.NoError(t, err)
	assert.Equal(t, StateFailed, resp.State)
	assert.Equal(t, msgReportWriteFailed, resp.Message)
	assert.Nil(t, fx.sessions.last)
}

func TestDispatch_ReportIssue_SessionWriteFailureStillFulfills(t *testing.T) {
	fx := newFixture()
	fx.sessions.putErr = errors.New("redis down")

	resp, err := fx.d.Dispatch(context.Background(), reportRequest())
	require.NoError(t, err)
	assert.Equal(t, StateFulfilled, resp.State)
	require.NotNil(t, fx.issues.lastPut)
}

func TestDispatch_ReportIssue_DuplicateAdvisory(t *testing.T) {
	fx := newFixture()
	fx.matcher.similar = &models.Issue{IssueID: "dupe1234"}

	resp, err := fx.d.Dispatch(context.Background(), reportRequest())
	require.NoError(t, err)
	assert.Equal(t, StateFulfilled, resp.State)
	assert.Contains(t, resp.Message, "dupe1234")
	assert.Contains(t, resp.Message, "similar issue")
	// Advisory only: the new record is still created.
	require.NotNil(t, fx.issues.lastPut)
}

func TestDispatch_ReportIssue_SimilarityDegradedStillFulfills(t *testing.T) {
	fx := newFixture()
	fx.matcher.similarErr = errors.New("embeddings unavailable")

	resp, err := fx.d.Dispatch(context.Background(), reportRequest())
	require.NoError(t, err)
	assert.Equal(t, StateFulfilled, resp.State)
	assert.Contains(t, resp.Message, msgNewReport)
}

func TestDispatch_TrackStatus(t *testing.T) {
	fx := newFixture()
	fx.issues.byID["abcd1234"] = &models.Issue{
		IssueID:                "abcd1234",
		IssueType:              "streetlight out",
		Status:                 models.StatusProcessing,
		Priority:               models.PriorityHigh,
		ExpectedCompletionDate: "2025-01-10",
	}

	t.Run("missing id", func(t *testing.T) {
		resp, err := fx.d.Dispatch(context.Background(), &IntentRequest{IntentName: string(IntentTrackStatus)})
		require.NoError(t, err)
		assert.Equal(t, StateFailed, resp.State)
		assert.Equal(t, msgTrackingIDPrompt, resp.Message)
	})

	t.Run("not found", func(t *testing.T) {
		resp, err := fx.d.Dispatch(context.Background(), &IntentRequest{
			IntentName: string(IntentTrackStatus),
			Slots:      map[string]*Slot{SlotTrackingID: textSlot("zzzz9999")},
		})
		require.NoError(t, err)
		assert.Equal(t, StateFailed, resp.State)
		assert.Contains(t, resp.Message, "zzzz9999")
	})

	t.Run("found", func(t *testing.T) {
		resp, err := fx.d.Dispatch(context.Background(), &IntentRequest{
			IntentName: string(IntentTrackStatus),
			Slots:      map[string]*Slot{SlotTrackingID: textSlot("abcd1234")},
		})
		require.NoError(t, err)
		assert.Equal(t, StateFulfilled, resp.State)
		assert.Contains(t, resp.Message, "PROCESSING")
		assert.Contains(t, resp.Message, "2025-01-10")
	})

	t.Run("lookup error", func(t *testing.T) {
		fx.issues.getErr = errors.New("mongo down")
		defer func() { fx.issues.getErr = nil }()
		resp, err := fx.d.Dispatch(context.Background(), &IntentRequest{
			IntentName: string(IntentTrackStatus),
			Slots:      map[string]*Slot{SlotTrackingID: textSlot("abcd1234")},
		})
		require.NoError(t, err)
		assert.Equal(t, StateFailed, resp.State)
		assert.Equal(t, msgTrackingLookupErr, resp.Message)
	})
}

func TestDispatch_RateService(t *testing.T) {
	fx := newFixture()

	rate := func(v string) *IntentResponse {
		slots := map[string]*Slot{}
		if v != "" {
			slots[SlotRatingScore] = textSlot(v)
		}
		resp, err := fx.d.Dispatch(context.Background(), &IntentRequest{
			IntentName: string(IntentRateService),
			Slots:      slots,
		})
		require.NoError(t, err)
		return resp
	}

	for _, v := range []string{"abc", ""} {
		resp := rate(v)
		assert.Equal(t, StateFailed, resp.State, "rating %q", v)
		assert.Equal(t, msgRatingNotNumeric, resp.Message)
	}

	for _, v := range []string{"0", "6"} {
		resp := rate(v)
		assert.Equal(t, StateFailed, resp.State, "rating %q", v)
		assert.Equal(t, msgRatingOutOfRange, resp.Message)
	}

	for _, v := range []string{"1", "2"} {
		resp := rate(v)
		assert.Equal(t, StateFulfilled, resp.State, "rating %q", v)
		assert.Contains(t, resp.Message, "sorry the service was poor")
	}

	for _, v := range []string{"3", "4", "5"} {
		resp := rate(v)
		assert.Equal(t, StateFulfilled, resp.State, "rating %q", v)
		assert.NotContains(t, resp.Message, "sorry the service was poor")
	}
}

func TestDispatch_AdminSummary(t *testing.T) {
	fx := newFixture()

	resp, err := fx.d.Dispatch(context.Background(), &IntentRequest{IntentName: string(IntentAdminSummary)})
	require.NoError(t, err)
	assert.Equal(t, StateFulfilled, resp.State)
	assert.Contains(t, resp.Message, "Admin Insight")
	assert.Contains(t, resp.Message, "Potholes")
}

func TestDispatch_AdminSummary_ScanFailureStillFulfills(t *testing.T) {
	fx := newFixture()
	fx.issues.scanErr = errors.New("mongo down")

	resp, err := fx.d.Dispatch(context.Background(), &IntentRequest{IntentName: string(IntentAdminSummary)})
	require.NoError(t, err)
	assert.Equal(t, StateFulfilled, resp.State)
}

func TestDispatch_RetrieveID(t *testing.T) {
	fx := newFixture()

	t.Run("missing slots", func(t *testing.T) {
		resp, err := fx.d.Dispatch(context.Background(), &IntentRequest{
			IntentName: string(IntentRetrieveID),
			Slots:      map[string]*Slot{SlotIssueKeyword: textSlot("pothole")},
		})
		require.NoError(t, err)
		assert.Equal(t, StateFailed, resp.State)
		assert.Equal(t, msgRetrievePrompt, resp.Message)
	})

	retrieveReq := &IntentRequest{
		IntentName: string(IntentRetrieveID),
		Slots: map[string]*Slot{
			SlotIssueKeyword: textSlot("pothole"),
			SlotUserLocation: textSlot("main street"),
		},
	}

	t.Run("not found is fulfilled", func(t *testing.T) {
		resp, err := fx.d.Dispatch(context.Background(), retrieveReq)
		require.NoError(t, err)
		assert.Equal(t, StateFulfilled, resp.State)
		assert.Equal(t, msgRetrieveNotFound, resp.Message)
	})

	t.Run("found", func(t *testing.T) {
		fx.matcher.byKeyword = &models.Issue{
			IssueID:   "ab12cd34",
			IssueType: "large pothole",
			Location:  "123 Main Street",
			Status:    models.StatusNew,
		}
		resp, err := fx.d.Dispatch(context.Background(), retrieveReq)
		require.NoError(t, err)
		assert.Equal(t, StateFulfilled, resp.State)
		assert.Contains(t, resp.Message, "ab12cd34")
	})

	t.Run("search error", func(t *testing.T) {
		fx.matcher.keywordErr = errors.New("mongo down")
		resp, err := fx.d.Dispatch(context.Background(), retrieveReq)
		require.NoError(t, err)
		assert.Equal(t, StateFailed, resp.State)
		assert.Equal(t, msgRetrieveSearchErr, resp.Message)
	})
}

func TestDispatch_WelcomeAndRoutingIntents(t *testing.T) {
	fx := newFixture()

	resp, err := fx.d.Dispatch(context.Background(), &IntentRequest{IntentName: string(IntentWelcome)})
	require.NoError(t, err)
	assert.Equal(t, StateFulfilled, resp.State)

	for _, name := range []Intent{IntentStartReport, IntentForgotIDTrigger} {
		resp, err := fx.d.Dispatch(context.Background(), &IntentRequest{IntentName: string(name)})
		require.NoError(t, err)
		assert.Equal(t, StateDelegated, resp.State)
		assert.Empty(t, resp.Message)
	}
}

func TestDispatch_UnknownIntentIsProtocolError(t *testing.T) {
	fx := newFixture()

	_, err := fx.d.Dispatch(context.Background(), &IntentRequest{IntentName: "OrderPizza"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownIntent)
}

func TestDispatch_SessionAttributesPassThrough(t *testing.T) {
	fx := newFixture()
	req := reportRequest()
	req.SessionAttributes["extra"] = "kept"

	resp, err := fx.d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	// The response echoes the inbound attributes untouched; the durable
	// session record is a separate channel.
	assert.Equal(t, req.SessionAttributes, resp.SessionAttributes)
	assert.Equal(t, "kept", resp.SessionAttributes["extra"])
}
