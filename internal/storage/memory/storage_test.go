package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lmerrick/dashguard/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) session(id string, identityKey string, score int, at time.Time) *model.Session {
	return &model.Session{
		ID:          model.SessionID(id),
		IdentityKey: identityKey,
		DisplayName: identityKey,
		FinalScore:  score,
		Outcome:     model.OutcomeCompleted,
		SubmittedAt: at,
	}
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	session := s.session("session-1", "guest:1", 100, at)

	err := s.storage.SaveSession(s.ctx, session)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Equal(session.ID, retrieved.ID)
	s.Equal(100, retrieved.FinalScore)
	s.True(retrieved.SubmittedAt.Equal(at))
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestSessionsBetween() {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	_ = s.storage.SaveSession(s.ctx, s.session("s1", "guest:1", 10, base))
	_ = s.storage.SaveSession(s.ctx, s.session("s2", "guest:2", 20, base.Add(time.Hour)))
	_ = s.storage.SaveSession(s.ctx, s.session("s3", "guest:3", 30, base.Add(2*time.Hour)))

	sessions, err := s.storage.SessionsBetween(s.ctx, base, base.Add(time.Hour))
	s.Require().NoError(err)
	s.Len(sessions, 2)
}

func (s *StorageSuite) TestSessionsBetweenEmpty() {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions, err := s.storage.SessionsBetween(s.ctx, base, base.Add(time.Hour))
	s.Require().NoError(err)
	s.Empty(sessions)
}

func (s *StorageSuite) TestSavedSessionIsImmutableToCallers() {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	session := s.session("s1", "guest:1", 10, at)
	_ = s.storage.SaveSession(s.ctx, session)

	// Mutating the caller's copy must not affect the stored record
	session.FinalScore = 9999

	retrieved, err := s.storage.GetSession(s.ctx, "s1")
	s.Require().NoError(err)
	s.Equal(10, retrieved.FinalScore)
}

// Guest mapping tests

func (s *StorageSuite) TestEnsureGuestNumberAllocates() {
	n1, err := s.storage.EnsureGuestNumber(s.ctx, "token-a")
	s.Require().NoError(err)
	s.Equal(int64(1), n1)

	n2, err := s.storage.EnsureGuestNumber(s.ctx, "token-b")
	s.Require().NoError(err)
	s.Equal(int64(2), n2)
}

func (s *StorageSuite) TestEnsureGuestNumberIdempotent() {
	n1, err := s.storage.EnsureGuestNumber(s.ctx, "token-a")
	s.Require().NoError(err)

	n2, err := s.storage.EnsureGuestNumber(s.ctx, "token-a")
	s.Require().NoError(err)
	s.Equal(n1, n2)
}

func (s *StorageSuite) TestEnsureGuestNumberConcurrent() {
	const goroutines = 50

	var wg sync.WaitGroup
	results := make([]int64, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			n, err := s.storage.EnsureGuestNumber(s.ctx, "contested-token")
			s.NoError(err)
			results[idx] = n
		}(i)
	}
	wg.Wait()

	for _, n := range results {
		s.Equal(results[0], n)
	}
}

func (s *StorageSuite) TestGuestMappingBidirectional() {
	n, err := s.storage.EnsureGuestNumber(s.ctx, "token-a")
	s.Require().NoError(err)

	number, err := s.storage.GetGuestNumber(s.ctx, "token-a")
	s.Require().NoError(err)
	s.Equal(n, number)

	token, err := s.storage.GetGuestToken(s.ctx, n)
	s.Require().NoError(err)
	s.Equal("token-a", token)
}

func (s *StorageSuite) TestGuestMappingNotFound() {
	_, err := s.storage.GetGuestNumber(s.ctx, "unknown")
	s.ErrorIs(err, model.ErrGuestMappingNotFound)

	_, err = s.storage.GetGuestToken(s.ctx, 42)
	s.ErrorIs(err, model.ErrGuestMappingNotFound)
}

// Pattern history tests

func (s *StorageSuite) TestAppendAndReadPatternMarks() {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	retain := 10 * time.Minute

	_ = s.storage.AppendPatternMark(s.ctx, "guest:1", model.PatternMark{At: base, Flagged: true}, retain)
	_ = s.storage.AppendPatternMark(s.ctx, "guest:1", model.PatternMark{At: base.Add(time.Minute), Flagged: false}, retain)

	marks, err := s.storage.PatternMarksSince(s.ctx, "guest:1", base)
	s.Require().NoError(err)
	s.Len(marks, 2)
	s.True(marks[0].Flagged)
	s.False(marks[1].Flagged)
}

func (s *StorageSuite) TestPatternMarksLazyEviction() {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	retain := 10 * time.Minute

	_ = s.storage.AppendPatternMark(s.ctx, "guest:1", model.PatternMark{At: base, Flagged: true}, retain)
	// An append far beyond the retention window evicts the old mark
	_ = s.storage.AppendPatternMark(s.ctx, "guest:1", model.PatternMark{At: base.Add(time.Hour), Flagged: false}, retain)

	marks, err := s.storage.PatternMarksSince(s.ctx, "guest:1", base)
	s.Require().NoError(err)
	s.Len(marks, 1)
	s.False(marks[0].Flagged)
}

func (s *StorageSuite) TestPatternMarkOnRetentionBoundaryKept() {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	retain := 10 * time.Minute

	// Appending at base+retain puts the first mark exactly on the cutoff;
	// it is still within the window and must survive eviction
	_ = s.storage.AppendPatternMark(s.ctx, "guest:1", model.PatternMark{At: base, Flagged: true}, retain)
	_ = s.storage.AppendPatternMark(s.ctx, "guest:1", model.PatternMark{At: base.Add(retain), Flagged: true}, retain)

	marks, err := s.storage.PatternMarksSince(s.ctx, "guest:1", base)
	s.Require().NoError(err)
	s.Len(marks, 2)
}

func (s *StorageSuite) TestPatternMarksPerIdentity() {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	retain := 10 * time.Minute

	_ = s.storage.AppendPatternMark(s.ctx, "guest:1", model.PatternMark{At: base, Flagged: true}, retain)

	marks, err := s.storage.PatternMarksSince(s.ctx, "guest:2", base)
	s.Require().NoError(err)
	s.Empty(marks)
}

// Telemetry tests

func (s *StorageSuite) TestIncrRejectedAttempts() {
	_ = s.storage.IncrRejectedAttempts(s.ctx, "guest:1", model.VerdictInvalidScore)
	_ = s.storage.IncrRejectedAttempts(s.ctx, "guest:1", model.VerdictInvalidScore)
	_ = s.storage.IncrRejectedAttempts(s.ctx, "guest:1", model.VerdictRateLimitExceeded)

	s.Equal(int64(2), s.storage.RejectedAttempts("guest:1", model.VerdictInvalidScore))
	s.Equal(int64(1), s.storage.RejectedAttempts("guest:1", model.VerdictRateLimitExceeded))
	s.Equal(int64(0), s.storage.RejectedAttempts("guest:2", model.VerdictInvalidScore))
}
