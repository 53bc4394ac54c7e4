package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"rfpwriter/api/internal/util"
)

const DefaultTTL = 24 * time.Hour

const (
	fieldCreated      = "created"
	answerFieldPrefix = "answer:"
	statusFieldPrefix = "status:"
	maxTxAttempts     = 5
)

// RedisStore keeps one hash per session so several API replicas can share
// a user's working copy.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a new Redis-backed session store
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		prefix: "rfp:session:",
		ttl:    ttl,
	}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func answerField(questionID string) string { return answerFieldPrefix + questionID }
func statusField(questionID string) string { return statusFieldPrefix + questionID }

func (s *RedisStore) CreateSession(ctx context.Context) (string, error) {
	id := util.NewID("sess")
	key := s.key(id)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldCreated, strconv.FormatInt(time.Now().Unix(), 10))
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (s *RedisStore) GetAnswer(ctx context.Context, sessionID, questionID string) (string, error) {
	vals, err := s.client.HMGet(ctx, s.key(sessionID), fieldCreated, answerField(questionID)).Result()
	if err != nil {
		return "", fmt.Errorf("get answer: %w", err)
	}
	if vals[0] == nil {
		return "", ErrSessionNotFound
	}
	return hashString(vals[1]), nil
}

func (s *RedisStore) GetStatus(ctx context.Context, sessionID, questionID string) (Status, error) {
	vals, err := s.client.HMGet(ctx, s.key(sessionID), fieldCreated, statusField(questionID)).Result()
	if err != nil {
		return StatusEmpty, fmt.Errorf("get status: %w", err)
	}
	if vals[0] == nil {
		return StatusEmpty, ErrSessionNotFound
	}
	return parseStatus(hashString(vals[1])), nil
}

func (s *RedisStore) UpdateAnswer(ctx context.Context, sessionID, questionID, html string) (Status, error) {
	return s.write(ctx, sessionID, questionID, html, func(current Status) Status {
		return statusAfterUpdate(current, html)
	})
}

func (s *RedisStore) SaveAnswer(ctx context.Context, sessionID, questionID, html string) (Status, error) {
	return s.write(ctx, sessionID, questionID, html, func(Status) Status {
		return StatusSaved
	})
}

// write runs the status read-modify-write under WATCH so a concurrent
// writer to the same session forces a retry instead of a torn update.
func (s *RedisStore) write(ctx context.Context, sessionID, questionID, html string, transition func(Status) Status) (Status, error) {
	key := s.key(sessionID)
	var next Status

	txf := func(tx *redis.Tx) error {
		vals, err := tx.HMGet(ctx, key, fieldCreated, statusField(questionID)).Result()
		if err != nil {
			return err
		}
		if vals[0] == nil {
			return ErrSessionNotFound
		}
		next = transition(parseStatus(hashString(vals[1])))

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, answerField(questionID), html, statusField(questionID), string(next))
			pipe.Expire(ctx, key, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return next, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, ErrSessionNotFound):
			return StatusEmpty, err
		default:
			return StatusEmpty, fmt.Errorf("write answer: %w", err)
		}
	}
	return StatusEmpty, fmt.Errorf("write answer: %w", redis.TxFailedErr)
}

func (s *RedisStore) Snapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	fields, err := s.client.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot session: %w", err)
	}
	if _, ok := fields[fieldCreated]; !ok {
		return Snapshot{}, ErrSessionNotFound
	}

	snap := newSnapshot(sessionID)
	for field, value := range fields {
		switch {
		case strings.HasPrefix(field, answerFieldPrefix):
			snap.Answers[strings.TrimPrefix(field, answerFieldPrefix)] = value
		case strings.HasPrefix(field, statusFieldPrefix):
			snap.Statuses[strings.TrimPrefix(field, statusFieldPrefix)] = parseStatus(value)
		}
	}
	return snap, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, sessionID string) error {
	removed, err := s.client.Del(ctx, s.key(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if removed == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func hashString(value interface{}) string {
	if str, ok := value.(string); ok {
		return str
	}
	return ""
}
