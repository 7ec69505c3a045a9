package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"civicbot-be/bot"
	"civicbot-be/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const sessionKeyPrefix = "session:"

// Sessions is the Redis-backed Session Record store. One record per channel
// address, last writer wins.
type Sessions struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewSessions(rdb *redis.Client, log zerolog.Logger) *Sessions {
	return &Sessions{rdb: rdb, log: log}
}

// Put overwrites the session record for sess.UserID.
func (s *Sessions) Put(ctx context.Context, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: marshal session %s: %v", bot.ErrPersistence, sess.UserID, err)
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+sess.UserID, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: put session %s: %v", bot.ErrPersistence, sess.UserID, err)
	}
	return nil
}

// Get fetches the session record for a channel address; (nil, nil) when none
// exists.
func (s *Sessions) Get(ctx context.Context, userID string) (*models.Session, error) {
	data, err := s.rdb.Get(ctx, sessionKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get session %s: %v", bot.ErrPersistence, userID, err)
	}
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: decode session %s: %v", bot.ErrPersistence, userID, err)
	}
	return &sess, nil
}

// AttachMedia records the latest inbound media reference on the user's
// session. The blob itself lives with the channel provider; only the source
// URL is kept.
func (s *Sessions) AttachMedia(ctx context.Context, userID, mediaURL string) error {
	sess, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if sess == nil {
		sess = &models.Session{UserID: userID}
	}
	sess.MediaAttached = mediaURL
	sess.Timestamp = time.Now().Unix()
	return s.Put(ctx, sess)
}
