package plausibility

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lmerrick/dashguard/internal/config"
	"github.com/lmerrick/dashguard/internal/model"
)

type ValidatorSuite struct {
	suite.Suite
	validator *Validator
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) SetupTest() {
	// Defaults: 25 score/s, floor 500, 50 dist/s, 10 coins/s,
	// 2 coins/dist, 2 obstacles/s, score in [coins*1, coins*100]
	s.validator = NewValidator(config.Default().Validation)
}

// plausible returns a submission that passes every rule
func (s *ValidatorSuite) plausible() model.Submission {
	return model.Submission{
		ClientSessionToken: "run-1",
		DurationSeconds:    60,
		FinalScore:         400,
		CoinsCollected:     40,
		ObstaclesHit:       3,
		PowerupsCollected:  2,
		DistanceTraveled:   900,
		Outcome:            "died",
	}
}

func (s *ValidatorSuite) TestPlausibleSubmissionAccepted() {
	s.Equal(model.VerdictAccepted, s.validator.Validate(s.plausible()))
}

func (s *ValidatorSuite) TestNegativeScore() {
	sub := s.plausible()
	sub.FinalScore = -1
	s.Equal(model.VerdictInvalidScore, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestZeroDuration() {
	sub := s.plausible()
	sub.DurationSeconds = 0
	s.Equal(model.VerdictInvalidDuration, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestNegativeDuration() {
	sub := s.plausible()
	sub.DurationSeconds = -10
	s.Equal(model.VerdictInvalidDuration, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestScoreRateTooHigh() {
	sub := s.plausible()
	sub.DurationSeconds = 60
	sub.FinalScore = 60*25 + 1
	sub.CoinsCollected = 60 // keep rule 6 satisfied: 1501 <= 60*100
	s.Equal(model.VerdictSpeedViolation, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestScoreFloorToleratesShortRuns() {
	// 2s at 25/s only allows 50, but the floor admits 500
	sub := s.plausible()
	sub.DurationSeconds = 2
	sub.FinalScore = 450
	sub.CoinsCollected = 10
	sub.ObstaclesHit = 1
	sub.DistanceTraveled = 80
	s.Equal(model.VerdictAccepted, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestTravelRateTooHigh() {
	sub := s.plausible()
	sub.DurationSeconds = 1
	sub.FinalScore = 100
	sub.CoinsCollected = 0
	sub.ObstaclesHit = 0
	sub.DistanceTraveled = 2000
	s.Equal(model.VerdictSpeedViolation, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestNegativeDistance() {
	sub := s.plausible()
	sub.DistanceTraveled = -5
	s.Equal(model.VerdictSpeedViolation, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestCoinRatePerSecondTooHigh() {
	sub := s.plausible()
	sub.DurationSeconds = 10
	sub.FinalScore = 450
	sub.CoinsCollected = 101 // over 10 coins/s
	sub.DistanceTraveled = 400
	s.Equal(model.VerdictCoinRateViolation, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestCoinsExceedGroundCovered() {
	sub := s.plausible()
	sub.DurationSeconds = 100
	sub.FinalScore = 1400
	sub.CoinsCollected = 800
	sub.DistanceTraveled = 100 // only 200 coins reachable at 2 per unit
	s.Equal(model.VerdictCoinRateViolation, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestNegativeCoins() {
	sub := s.plausible()
	sub.CoinsCollected = -1
	s.Equal(model.VerdictCoinRateViolation, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestObstacleRateTooHigh() {
	sub := s.plausible()
	sub.DurationSeconds = 10
	sub.FinalScore = 450
	sub.CoinsCollected = 40
	sub.DistanceTraveled = 400
	sub.ObstaclesHit = 21 // over 2 hits/s
	s.Equal(model.VerdictObstacleRateViolation, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestNegativeObstacles() {
	sub := s.plausible()
	sub.ObstaclesHit = -1
	s.Equal(model.VerdictObstacleRateViolation, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestScoreBelowCoinMinimum() {
	sub := s.plausible()
	sub.FinalScore = 50
	sub.CoinsCollected = 100
	sub.DistanceTraveled = 900
	s.Equal(model.VerdictScoreCoinMismatch, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestScoreAboveCoinMaximum() {
	sub := s.plausible()
	sub.DurationSeconds = 120
	sub.FinalScore = 150 // over 1 coin * 100
	sub.CoinsCollected = 1
	sub.DistanceTraveled = 900
	s.Equal(model.VerdictScoreCoinMismatch, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestCoinlessRunSkipsCoinConsistency() {
	sub := s.plausible()
	sub.FinalScore = 300
	sub.CoinsCollected = 0
	s.Equal(model.VerdictAccepted, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestInvalidOutcome() {
	sub := s.plausible()
	sub.Outcome = "invalid"
	s.Equal(model.VerdictInvalidResult, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestAllOutcomesAccepted() {
	for _, outcome := range []string{"completed", "died", "quit", "timeout"} {
		sub := s.plausible()
		sub.Outcome = outcome
		s.Equal(model.VerdictAccepted, s.validator.Validate(sub), "outcome %s", outcome)
	}
}

func (s *ValidatorSuite) TestFirstFailingRuleWins() {
	// Both the score and the outcome are wrong; rule 1 is reported
	sub := s.plausible()
	sub.FinalScore = -1
	sub.Outcome = "invalid"
	s.Equal(model.VerdictInvalidScore, s.validator.Validate(sub))
}

func (s *ValidatorSuite) TestDeterministicVerdicts() {
	sub := s.plausible()
	sub.CoinsCollected = 800
	sub.DistanceTraveled = 100

	first := s.validator.Validate(sub)
	for i := 0; i < 10; i++ {
		s.Equal(first, s.validator.Validate(sub))
	}
}
