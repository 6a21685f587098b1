package customindex

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"indexscore/internal/apperr"
	"indexscore/internal/models"
	"indexscore/internal/repository"
)

// selectionUniverse is the notional index size a composition percentage
// is applied to when deciding how many tickers a sector contributes.
const selectionUniverse = 10

// SelectedConstituent is one ticker picked into a custom index.
type SelectedConstituent struct {
	Ticker     string           `json:"ticker"`
	Sector     string           `json:"sector"`
	Score      decimal.Decimal  `json:"score"`
	Confidence decimal.Decimal  `json:"confidence"`
	Direction  models.Direction `json:"direction"`
}

// BuilderStore is the slice of persistence index building needs.
type BuilderStore interface {
	GetSignatureByID(ctx context.Context, id string) (*models.Signature, error)
	LatestEffectiveDate(ctx context.Context) (*time.Time, error)
	ListConstituentScores(ctx context.Context, params repository.ListConstituentScoresParams) ([]models.ConstituentScore, error)
	InsertCustomIndex(ctx context.Context, item *models.CustomIndex) error
	GetCustomIndexByID(ctx context.Context, id string) (*models.CustomIndex, error)
	ListCustomIndexes(ctx context.Context) ([]models.CustomIndex, error)
}

// Builder applies a signature to the latest effective date's approved
// scores and persists the resulting index. Only approved scores are ever
// eligible.
type Builder struct {
	Store  BuilderStore
	Logger *zap.Logger
}

func (b *Builder) logger() *zap.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return zap.NewNop()
}

// Build constructs and persists a custom index from signatureID. The
// index name defaults to the signature name when name is empty.
func (b *Builder) Build(ctx context.Context, signatureID, name string) (*models.CustomIndex, error) {
	sig, err := b.Store.GetSignatureByID(ctx, signatureID)
	if err != nil {
		return nil, fmt.Errorf("load signature %s: %w", signatureID, err)
	}
	if sig == nil {
		return nil, apperr.NotFoundf("signature %s not found", signatureID)
	}
	composition, err := DecodeComposition(sig)
	if err != nil {
		return nil, err
	}

	latest, err := b.Store.LatestEffectiveDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("find latest effective date: %w", err)
	}
	if latest == nil {
		return nil, apperr.NotFoundf("no constituent scores exist yet")
	}

	state := models.StateApproved
	approved, err := b.Store.ListConstituentScores(ctx, repository.ListConstituentScoresParams{
		EffectiveDate: *latest,
		State:         &state,
	})
	if err != nil {
		return nil, fmt.Errorf("load approved scores for %s: %w", latest.Format("2006-01-02"), err)
	}

	bySector := make(map[string][]models.ConstituentScore)
	for _, score := range approved {
		if score.Sector == nil {
			continue
		}
		bySector[*score.Sector] = append(bySector[*score.Sector], score)
	}

	var selected []SelectedConstituent
	var sectorsUsed []string
	for _, entry := range composition {
		candidates := bySector[entry.Sector]
		if len(candidates) == 0 {
			continue
		}
		sort.Slice(candidates, func(i, j int) bool {
			if cmp := candidates[i].Score.Cmp(candidates[j].Score); cmp != 0 {
				return cmp > 0
			}
			return candidates[i].Ticker < candidates[j].Ticker
		})
		take := int(math.Ceil(entry.Percentage / 100 * selectionUniverse))
		if take > len(candidates) {
			take = len(candidates)
		}
		for _, score := range candidates[:take] {
			selected = append(selected, SelectedConstituent{
				Ticker:     score.Ticker,
				Sector:     entry.Sector,
				Score:      score.Score,
				Confidence: score.Confidence,
				Direction:  score.Direction,
			})
		}
		sectorsUsed = append(sectorsUsed, entry.Sector)
	}
	if sectorsUsed == nil {
		sectorsUsed = []string{}
	}
	if selected == nil {
		selected = []SelectedConstituent{}
	}

	sectorsRaw, err := json.Marshal(sectorsUsed)
	if err != nil {
		return nil, fmt.Errorf("encode sectors: %w", err)
	}
	selectedRaw, err := json.Marshal(selected)
	if err != nil {
		return nil, fmt.Errorf("encode constituents: %w", err)
	}

	if name == "" {
		name = sig.Name
	}
	item := models.CustomIndex{
		ID:                   uuid.NewString(),
		SignatureID:          sig.ID,
		Name:                 name,
		SectorsUsed:          sectorsRaw,
		ConstituentsSelected: selectedRaw,
	}
	if err := b.Store.InsertCustomIndex(ctx, &item); err != nil {
		return nil, fmt.Errorf("persist custom index: %w", err)
	}
	b.logger().Info("custom index built",
		zap.String("index_id", item.ID),
		zap.String("signature_id", sig.ID),
		zap.String("effective_date", latest.Format("2006-01-02")),
		zap.Int("constituents", len(selected)))
	return &item, nil
}

// GetIndex loads one built index by id.
func (b *Builder) GetIndex(ctx context.Context, id string) (*models.CustomIndex, error) {
	item, err := b.Store.GetCustomIndexByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load custom index %s: %w", id, err)
	}
	if item == nil {
		return nil, apperr.NotFoundf("custom index %s not found", id)
	}
	return item, nil
}

// ListIndexes returns every built index, newest first.
func (b *Builder) ListIndexes(ctx context.Context) ([]models.CustomIndex, error) {
	return b.Store.ListCustomIndexes(ctx)
}
