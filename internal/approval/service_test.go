package approval

import (
	"context"
	"testing"
	"time"

	"indexscore/internal/apperr"
	"indexscore/internal/models"
	"indexscore/internal/repository"
)

type stubStore struct {
	scores map[string]*models.ConstituentScore
}

func newStubStore(scores ...*models.ConstituentScore) *stubStore {
	s := &stubStore{scores: make(map[string]*models.ConstituentScore)}
	for _, score := range scores {
		s.scores[score.ID] = score
	}
	return s
}

func (s *stubStore) GetConstituentScoreByID(ctx context.Context, id string) (*models.ConstituentScore, error) {
	score, ok := s.scores[id]
	if !ok {
		return nil, nil
	}
	clone := *score
	return &clone, nil
}

func (s *stubStore) ListConstituentScores(ctx context.Context, params repository.ListConstituentScoresParams) ([]models.ConstituentScore, error) {
	var out []models.ConstituentScore
	for _, score := range s.scores {
		if !score.EffectiveDate.Equal(params.EffectiveDate) {
			continue
		}
		if params.State != nil && score.State != *params.State {
			continue
		}
		out = append(out, *score)
	}
	return out, nil
}

func (s *stubStore) CountConstituentScoresByState(ctx context.Context, effectiveDate time.Time) (repository.StateCounts, error) {
	var counts repository.StateCounts
	for _, score := range s.scores {
		if !score.EffectiveDate.Equal(effectiveDate) {
			continue
		}
		switch score.State {
		case models.StatePending:
			counts.Pending++
		case models.StateApproved:
			counts.Approved++
		case models.StateRejected:
			counts.Rejected++
		case models.StateOnHold:
			counts.OnHold++
		}
	}
	return counts, nil
}

func (s *stubStore) TransitionConstituentScore(ctx context.Context, id string, to models.ReviewState, approvedBy string, approvedAt time.Time, comments *string) (int64, error) {
	score, ok := s.scores[id]
	if !ok || score.State != models.StatePending {
		return 0, nil
	}
	score.State = to
	score.ApprovedBy = &approvedBy
	score.ApprovedAt = &approvedAt
	score.Comments = comments
	return 1, nil
}

func day() time.Time {
	return time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)
}

func pendingScore(id string) *models.ConstituentScore {
	return &models.ConstituentScore{
		ID:            id,
		IndexID:       "NIFTY50",
		Ticker:        "TCS",
		EffectiveDate: day(),
		State:         models.StatePending,
	}
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 6, 15, 0, 0, 0, time.UTC)
}

func TestApprove_PendingScore(t *testing.T) {
	store := newStubStore(pendingScore("cs-1"))
	svc := &Service{Store: store, Now: fixedNow}

	comment := "looks sound"
	score, err := svc.Approve(context.Background(), "cs-1", "analyst@desk", &comment)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if score.State != models.StateApproved {
		t.Fatalf("state=%s want approved", score.State)
	}
	if score.ApprovedBy == nil || *score.ApprovedBy != "analyst@desk" {
		t.Fatalf("reviewer not stamped")
	}
	if score.ApprovedAt == nil || !score.ApprovedAt.Equal(fixedNow()) {
		t.Fatalf("review time not stamped")
	}
	if score.Comments == nil || *score.Comments != "looks sound" {
		t.Fatalf("comments not stored")
	}
}

func TestTransition_RejectsNonPending(t *testing.T) {
	approved := pendingScore("cs-1")
	approved.State = models.StateApproved
	store := newStubStore(approved)
	svc := &Service{Store: store, Now: fixedNow}

	_, err := svc.Reject(context.Background(), "cs-1", "analyst@desk", nil)
	if !apperr.IsValidation(err) {
		t.Fatalf("err=%v want validation", err)
	}
}

func TestTransition_UnknownScore(t *testing.T) {
	svc := &Service{Store: newStubStore(), Now: fixedNow}
	_, err := svc.Hold(context.Background(), "missing", "analyst@desk", nil)
	if !apperr.IsNotFound(err) {
		t.Fatalf("err=%v want not found", err)
	}
}

func TestTransition_RequiresReviewer(t *testing.T) {
	svc := &Service{Store: newStubStore(pendingScore("cs-1")), Now: fixedNow}
	if _, err := svc.Approve(context.Background(), "cs-1", "", nil); !apperr.IsValidation(err) {
		t.Fatalf("err=%v want validation", err)
	}
}

func TestApprovalSummary_CountsEveryState(t *testing.T) {
	a := pendingScore("cs-1")
	b := pendingScore("cs-2")
	b.State = models.StateApproved
	c := pendingScore("cs-3")
	c.State = models.StateRejected
	d := pendingScore("cs-4")
	d.State = models.StateOnHold
	e := pendingScore("cs-5")

	svc := &Service{Store: newStubStore(a, b, c, d, e), Now: fixedNow}
	summary, err := svc.ApprovalSummary(context.Background(), day())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Total != 5 {
		t.Fatalf("total=%d want 5", summary.Total)
	}
	if summary.Counts.Pending != 2 || summary.Counts.Approved != 1 ||
		summary.Counts.Rejected != 1 || summary.Counts.OnHold != 1 {
		t.Fatalf("counts=%+v", summary.Counts)
	}
	if summary.Counts.Total() != summary.Total {
		t.Fatalf("state counts do not add up to total")
	}
}

func TestPendingScores_FiltersState(t *testing.T) {
	a := pendingScore("cs-1")
	b := pendingScore("cs-2")
	b.State = models.StateApproved
	svc := &Service{Store: newStubStore(a, b), Now: fixedNow}

	pending, err := svc.PendingScores(context.Background(), day())
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "cs-1" {
		t.Fatalf("pending=%v want only cs-1", pending)
	}
	all, err := svc.ScoresByDate(context.Background(), day())
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all=%d want 2", len(all))
	}
}
