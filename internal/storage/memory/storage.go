package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lmerrick/dashguard/internal/model"
	"github.com/lmerrick/dashguard/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	sessions      map[model.SessionID]*model.Session
	sessionOrder  []model.SessionID // insertion order, for stable window scans
	guestByToken  map[string]int64
	tokenByNumber map[int64]string
	guestCounter  int64
	patternMarks  map[string][]model.PatternMark
	rejectedCount map[rejectedKey]int64
}

type rejectedKey struct {
	identityKey string
	reason      model.Verdict
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions:      make(map[model.SessionID]*model.Session),
		guestByToken:  make(map[string]int64),
		tokenByNumber: make(map[int64]string),
		patternMarks:  make(map[string][]model.PatternMark),
		rejectedCount: make(map[rejectedKey]int64),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Accepted session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; !exists {
		s.sessionOrder = append(s.sessionOrder, session.ID)
	}
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *Storage) SessionsBetween(ctx context.Context, from, to time.Time) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.Session
	for _, id := range s.sessionOrder {
		session := s.sessions[id]
		if session.SubmittedAt.Before(from) || session.SubmittedAt.After(to) {
			continue
		}
		copied := *session
		result = append(result, &copied)
	}
	return result, nil
}

// Guest identity map operations

func (s *Storage) EnsureGuestNumber(ctx context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if number, ok := s.guestByToken[token]; ok {
		return number, nil
	}
	s.guestCounter++
	number := s.guestCounter
	s.guestByToken[token] = number
	s.tokenByNumber[number] = token
	return number, nil
}

func (s *Storage) GetGuestNumber(ctx context.Context, token string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	number, ok := s.guestByToken[token]
	if !ok {
		return 0, model.ErrGuestMappingNotFound
	}
	return number, nil
}

func (s *Storage) GetGuestToken(ctx context.Context, number int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokenByNumber[number]
	if !ok {
		return "", model.ErrGuestMappingNotFound
	}
	return token, nil
}

// Pattern history operations

func (s *Storage) AppendPatternMark(ctx context.Context, identityKey string, mark model.PatternMark, retain time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	marks := append(s.patternMarks[identityKey], mark)

	// Lazy eviction: drop marks that have aged out of the retention window
	cutoff := mark.At.Add(-retain)
	trimmed := marks[:0]
	for _, m := range marks {
		if !m.At.Before(cutoff) {
			trimmed = append(trimmed, m)
		}
	}

	s.patternMarks[identityKey] = trimmed
	return nil
}

func (s *Storage) PatternMarksSince(ctx context.Context, identityKey string, since time.Time) ([]model.PatternMark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []model.PatternMark
	for _, m := range s.patternMarks[identityKey] {
		if !m.At.Before(since) {
			result = append(result, m)
		}
	}
	return result, nil
}

// Telemetry operations

func (s *Storage) IncrRejectedAttempts(ctx context.Context, identityKey string, reason model.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectedCount[rejectedKey{identityKey: identityKey, reason: reason}]++
	return nil
}

// RejectedAttempts reports the rejection count for an identity and reason.
// Test and diagnostics helper; not part of the Store interface.
func (s *Storage) RejectedAttempts(identityKey string, reason model.Verdict) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rejectedCount[rejectedKey{identityKey: identityKey, reason: reason}]
}
