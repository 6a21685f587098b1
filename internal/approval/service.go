// Package approval is the human review flow over constituent scores.
// Scores are born pending and move exactly once to approved, rejected or
// on hold; there are no second transitions.
package approval

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"indexscore/internal/apperr"
	"indexscore/internal/models"
	"indexscore/internal/repository"
)

// Store is the slice of persistence the review flow needs.
type Store interface {
	GetConstituentScoreByID(ctx context.Context, id string) (*models.ConstituentScore, error)
	ListConstituentScores(ctx context.Context, params repository.ListConstituentScoresParams) ([]models.ConstituentScore, error)
	CountConstituentScoresByState(ctx context.Context, effectiveDate time.Time) (repository.StateCounts, error)
	TransitionConstituentScore(ctx context.Context, id string, to models.ReviewState, approvedBy string, approvedAt time.Time, comments *string) (int64, error)
}

// Summary is the per-state review progress for one effective date.
type Summary struct {
	EffectiveDate time.Time              `json:"effectiveDate"`
	Total         int64                  `json:"total"`
	Counts        repository.StateCounts `json:"counts"`
}

type Service struct {
	Store  Store
	Logger *zap.Logger
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

// Approve moves a pending score to approved.
func (s *Service) Approve(ctx context.Context, id, reviewer string, comments *string) (*models.ConstituentScore, error) {
	return s.transition(ctx, id, models.StateApproved, reviewer, comments)
}

// Reject moves a pending score to rejected.
func (s *Service) Reject(ctx context.Context, id, reviewer string, comments *string) (*models.ConstituentScore, error) {
	return s.transition(ctx, id, models.StateRejected, reviewer, comments)
}

// Hold moves a pending score to on hold.
func (s *Service) Hold(ctx context.Context, id, reviewer string, comments *string) (*models.ConstituentScore, error) {
	return s.transition(ctx, id, models.StateOnHold, reviewer, comments)
}

func (s *Service) transition(ctx context.Context, id string, to models.ReviewState, reviewer string, comments *string) (*models.ConstituentScore, error) {
	if reviewer == "" {
		return nil, apperr.Validationf("reviewer is required")
	}
	updated, err := s.Store.TransitionConstituentScore(ctx, id, to, reviewer, s.now(), comments)
	if err != nil {
		return nil, fmt.Errorf("transition score %s to %s: %w", id, to, err)
	}
	if updated == 0 {
		current, err := s.Store.GetConstituentScoreByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load score %s: %w", id, err)
		}
		if current == nil {
			return nil, apperr.NotFoundf("constituent score %s not found", id)
		}
		return nil, apperr.Validationf("constituent score %s is %s, only pending scores can be reviewed", id, current.State)
	}
	s.logger().Info("constituent score reviewed",
		zap.String("score_id", id),
		zap.String("state", string(to)),
		zap.String("reviewer", reviewer))
	return s.Store.GetConstituentScoreByID(ctx, id)
}

// PendingScores lists the scores still awaiting review for effectiveDate.
func (s *Service) PendingScores(ctx context.Context, effectiveDate time.Time) ([]models.ConstituentScore, error) {
	state := models.StatePending
	return s.Store.ListConstituentScores(ctx, repository.ListConstituentScoresParams{
		EffectiveDate: effectiveDate,
		State:         &state,
	})
}

// ScoresByDate lists every score for effectiveDate regardless of state.
func (s *Service) ScoresByDate(ctx context.Context, effectiveDate time.Time) ([]models.ConstituentScore, error) {
	return s.Store.ListConstituentScores(ctx, repository.ListConstituentScoresParams{
		EffectiveDate: effectiveDate,
	})
}

// ApprovalSummary reports review progress for effectiveDate.
func (s *Service) ApprovalSummary(ctx context.Context, effectiveDate time.Time) (*Summary, error) {
	counts, err := s.Store.CountConstituentScoresByState(ctx, effectiveDate)
	if err != nil {
		return nil, fmt.Errorf("count scores for %s: %w", effectiveDate.Format("2006-01-02"), err)
	}
	return &Summary{
		EffectiveDate: effectiveDate,
		Total:         counts.Total(),
		Counts:        counts,
	}, nil
}
