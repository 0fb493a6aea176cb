package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lmerrick/dashguard/internal/model"
	"github.com/lmerrick/dashguard/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Accepted session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	key := sessionKey(session.ID)
	indexKey := sessionsByTimeKey()

	// Use pipeline for atomic save + time index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, s.cfg.SessionTTL)
	pipe.ZAdd(ctx, indexKey, redis.Z{
		Score:  float64(session.SubmittedAt.UnixNano()),
		Member: string(session.ID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) SessionsBetween(ctx context.Context, from, to time.Time) ([]*model.Session, error) {
	ids, err := s.client.ZRangeByScore(ctx, sessionsByTimeKey(), &redis.ZRangeBy{
		Min: strconv.FormatInt(from.UnixNano(), 10),
		Max: strconv.FormatInt(to.UnixNano(), 10),
	}).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.Session{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(model.SessionID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.Session, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Session may have expired out from under the index
		}
		var session model.Session
		if err := json.Unmarshal([]byte(val.(string)), &session); err != nil {
			continue // Skip invalid data
		}
		sessions = append(sessions, &session)
	}

	return sessions, nil
}

// Guest identity map operations

func (s *Storage) EnsureGuestNumber(ctx context.Context, token string) (int64, error) {
	key := guestNumberKey(token)

	// Fast path: mapping already exists
	if number, err := s.getNumber(ctx, key); err == nil {
		return number, nil
	} else if !errors.Is(err, model.ErrGuestMappingNotFound) {
		return 0, err
	}

	// Allocate a candidate number from the monotonic counter, then race to
	// claim the token with SETNX. The loser's counter increment is discarded
	// (numbers stay unique and increasing; gaps are fine) and the loser
	// re-reads the winner's value.
	candidate, err := s.client.Incr(ctx, guestCounterKey()).Result()
	if err != nil {
		return 0, err
	}

	claimed, err := s.client.SetNX(ctx, key, candidate, 0).Result()
	if err != nil {
		return 0, err
	}
	if !claimed {
		return s.getNumber(ctx, key)
	}

	// Winner records the reverse mapping
	if err := s.client.Set(ctx, guestTokenKey(candidate), token, 0).Err(); err != nil {
		return 0, err
	}
	return candidate, nil
}

func (s *Storage) GetGuestNumber(ctx context.Context, token string) (int64, error) {
	return s.getNumber(ctx, guestNumberKey(token))
}

func (s *Storage) GetGuestToken(ctx context.Context, number int64) (string, error) {
	token, err := s.client.Get(ctx, guestTokenKey(number)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrGuestMappingNotFound
		}
		return "", err
	}
	return token, nil
}

func (s *Storage) getNumber(ctx context.Context, key string) (int64, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, model.ErrGuestMappingNotFound
		}
		return 0, err
	}
	number, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt guest mapping %q: %w", val, err)
	}
	return number, nil
}

// Pattern history operations

// patternMember is the ZSET member payload for one pattern mark.
// Nonce keeps members distinct when marks share a timestamp.
type patternMember struct {
	AtNanos int64  `json:"at"`
	Flagged bool   `json:"flagged"`
	Nonce   string `json:"nonce"`
}

func (s *Storage) AppendPatternMark(ctx context.Context, identityKey string, mark model.PatternMark, retain time.Duration) error {
	member, err := json.Marshal(patternMember{
		AtNanos: mark.At.UnixNano(),
		Flagged: mark.Flagged,
		Nonce:   uuid.NewString(),
	})
	if err != nil {
		return err
	}

	key := patternKey(identityKey)
	cutoff := mark.At.Add(-retain)

	// Append, lazily evict aged-out marks, and keep the key from outliving
	// an idle identity
	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(mark.At.UnixNano()),
		Member: string(member),
	})
	// Exclusive bound: a mark sitting exactly on the cutoff is still in
	// the retention window
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff.UnixNano(), 10))
	pipe.Expire(ctx, key, 2*retain)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) PatternMarksSince(ctx context.Context, identityKey string, since time.Time) ([]model.PatternMark, error) {
	members, err := s.client.ZRangeByScore(ctx, patternKey(identityKey), &redis.ZRangeBy{
		Min: strconv.FormatInt(since.UnixNano(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}

	marks := make([]model.PatternMark, 0, len(members))
	for _, m := range members {
		var pm patternMember
		if err := json.Unmarshal([]byte(m), &pm); err != nil {
			continue // Skip invalid data
		}
		marks = append(marks, model.PatternMark{
			At:      time.Unix(0, pm.AtNanos),
			Flagged: pm.Flagged,
		})
	}
	return marks, nil
}

// Telemetry operations

func (s *Storage) IncrRejectedAttempts(ctx context.Context, identityKey string, reason model.Verdict) error {
	return s.client.Incr(ctx, rejectedKey(identityKey, reason)).Err()
}
