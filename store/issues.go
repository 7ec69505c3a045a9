package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civicbot-be/bot"
	"civicbot-be/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const issuesCollection = "issues"

// Issues is the MongoDB-backed Issue Record store.
type Issues struct {
	col *mongo.Collection
	log zerolog.Logger
}

func NewIssues(db *mongo.Database, log zerolog.Logger) *Issues {
	return &Issues{col: db.Collection(issuesCollection), log: log}
}

// Get fetches one record by issue id. A missing record is (nil, nil), not an
// error.
func (s *Issues) Get(ctx context.Context, issueID string) (*models.Issue, error) {
	var issue models.Issue
	err := s.col.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get issue %s: %v", bot.ErrPersistence, issueID, err)
	}
	return &issue, nil
}

// Put inserts a new record. Issue ids are unique; a collision surfaces as a
// persistence error for the turn.
func (s *Issues) Put(ctx context.Context, issue *models.Issue) error {
	if _, err := s.col.InsertOne(ctx, issue); err != nil {
		return fmt.Errorf("%w: put issue %s: %v", bot.ErrPersistence, issue.IssueID, err)
	}
	return nil
}

// UpdateStatus applies an administrative status/date change as a single atomic
// update and returns the new record state. statusLastModified is stamped on
// every call.
func (s *Issues) UpdateStatus(ctx context.Context, issueID string, status models.IssueStatus, expectedCompletionDate string) (*models.Issue, error) {
	update := bson.M{"$set": bson.M{
		"status":                 status,
		"expectedCompletionDate": expectedCompletionDate,
		"statusLastModified":     time.Now().Unix(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Issue
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": issueID}, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: update issue %s: %v", bot.ErrPersistence, issueID, err)
	}
	return &updated, nil
}

// QueryByStatus returns up to limit records with the given status, newest
// first.
func (s *Issues) QueryByStatus(ctx context.Context, status string, limit int64) ([]models.Issue, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: query issues by status: %v", bot.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("%w: decode issues: %v", bot.ErrPersistence, err)
	}
	return issues, nil
}

// Scan returns up to limit records, newest first.
func (s *Issues) Scan(ctx context.Context, limit int64) ([]models.Issue, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: scan issues: %v", bot.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("%w: decode issues: %v", bot.ErrPersistence, err)
	}
	return issues, nil
}

// ScanOpen returns up to limit records still in flight (New or Processing),
// newest first. Used by the duplicate checker.
func (s *Issues) ScanOpen(ctx context.Context, limit int64) ([]models.Issue, error) {
	filter := bson.M{"status": bson.M{"$in": []models.IssueStatus{models.StatusNew, models.StatusProcessing}}}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: scan open issues: %v", bot.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("%w: decode issues: %v", bot.ErrPersistence, err)
	}
	return issues, nil
}

// Watch opens the change stream the notifier consumes: inserts and updates
// with post-images, plus pre-images where the deployment provides them.
func (s *Issues) Watch(ctx context.Context) (*mongo.ChangeStream, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"operationType": bson.M{"$in": []string{"insert", "update", "replace"}}}}},
	}
	opts := options.ChangeStream().
		SetFullDocument(options.UpdateLookup).
		SetFullDocumentBeforeChange(options.WhenAvailable)
	return s.col.Watch(ctx, pipeline, opts)
}
