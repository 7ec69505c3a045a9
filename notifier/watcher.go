package notifier

import (
	"context"

	"civicbot-be/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// Sender delivers a message to a channel address. Failures are logged by the
// watcher, never retried here.
type Sender interface {
	Send(ctx context.Context, address, text string) error
}

// changeSource opens the record store's change stream.
type changeSource interface {
	Watch(ctx context.Context) (*mongo.ChangeStream, error)
}

// changeEvent is one before/after snapshot pair off the stream. The pre-image
// is absent for inserts (and for deployments without pre-images enabled).
type changeEvent struct {
	OperationType            string        `bson:"operationType"`
	FullDocument             *models.Issue `bson:"fullDocument"`
	FullDocumentBeforeChange *models.Issue `bson:"fullDocumentBeforeChange"`
}

// Watcher consumes the issue change stream and notifies reporters of
// meaningful transitions. Safe to invoke redundantly for the same mutation:
// the decision is pure, and duplicate deliveries are tolerated by the channel.
type Watcher struct {
	issues changeSource
	sender Sender
	log    zerolog.Logger
}

func NewWatcher(issues changeSource, sender Sender, log zerolog.Logger) *Watcher {
	return &Watcher{issues: issues, sender: sender, log: log}
}

// Run blocks consuming the stream until ctx is cancelled or the stream fails.
func (w *Watcher) Run(ctx context.Context) error {
	stream, err := w.issues.Watch(ctx)
	if err != nil {
		return err
	}
	defer stream.Close(context.Background())

	w.log.Info().Msg("notifier watching issue change stream")

	for stream.Next(ctx) {
		var ev changeEvent
		if err := stream.Decode(&ev); err != nil {
			w.log.Error().Err(err).Msg("change event decode failed")
			continue
		}
		w.handle(ctx, &ev)
	}
	return stream.Err()
}

func (w *Watcher) handle(ctx context.Context, ev *changeEvent) {
	if ev.FullDocument == nil {
		w.log.Warn().Str("op", ev.OperationType).Msg("change event skipped: no post-image")
		return
	}

	decision := Decide(ev.FullDocumentBeforeChange, ev.FullDocument)
	if !decision.Notify {
		return
	}

	// The persisted record's reporter id is the single source of truth for
	// the recipient address.
	recipient := ev.FullDocument.ReporterID
	if recipient == "" {
		w.log.Warn().Str("issue_id", ev.FullDocument.IssueID).Msg("notification skipped: missing recipient address")
		return
	}

	if err := w.sender.Send(ctx, recipient, decision.Message); err != nil {
		w.log.Error().Err(err).Str("issue_id", ev.FullDocument.IssueID).Msg("notification send failed")
	}
}
