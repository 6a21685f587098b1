// Package customindex turns sector allocation signatures into concrete
// indexes built from approved constituent scores.
package customindex

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"indexscore/internal/apperr"
	"indexscore/internal/models"
)

// compositionTolerance absorbs float representation error when checking
// that sector percentages sum to 100.
const compositionTolerance = 0.01

// SignatureStore is the slice of persistence signatures need.
type SignatureStore interface {
	InsertSignature(ctx context.Context, item *models.Signature) error
	GetSignatureByID(ctx context.Context, id string) (*models.Signature, error)
	ListSignatures(ctx context.Context) ([]models.Signature, error)
}

type SignatureService struct {
	Store  SignatureStore
	Logger *zap.Logger
}

func (s *SignatureService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

// CreateSignature validates and persists a sector allocation.
func (s *SignatureService) CreateSignature(ctx context.Context, name, createdBy string, description *string, composition []models.CompositionEntry) (*models.Signature, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validationf("signature name is required")
	}
	if strings.TrimSpace(createdBy) == "" {
		return nil, apperr.Validationf("signature creator is required")
	}
	if err := ValidateComposition(composition); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(composition)
	if err != nil {
		return nil, fmt.Errorf("encode composition: %w", err)
	}
	item := models.Signature{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Composition: raw,
		CreatedBy:   createdBy,
	}
	if err := s.Store.InsertSignature(ctx, &item); err != nil {
		return nil, fmt.Errorf("persist signature: %w", err)
	}
	s.logger().Info("signature created",
		zap.String("signature_id", item.ID),
		zap.String("name", name),
		zap.Int("sectors", len(composition)))
	return &item, nil
}

// GetSignature loads one signature by id.
func (s *SignatureService) GetSignature(ctx context.Context, id string) (*models.Signature, error) {
	item, err := s.Store.GetSignatureByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load signature %s: %w", id, err)
	}
	if item == nil {
		return nil, apperr.NotFoundf("signature %s not found", id)
	}
	return item, nil
}

// ListSignatures returns every stored signature, newest first.
func (s *SignatureService) ListSignatures(ctx context.Context) ([]models.Signature, error) {
	return s.Store.ListSignatures(ctx)
}

// ValidateComposition checks a sector allocation: no empty or duplicate
// sectors, every percentage in (0,100], and a total of 100 within
// tolerance.
func ValidateComposition(composition []models.CompositionEntry) error {
	if len(composition) == 0 {
		return apperr.Validationf("composition must name at least one sector")
	}
	seen := make(map[string]bool, len(composition))
	total := 0.0
	for _, entry := range composition {
		sector := strings.TrimSpace(entry.Sector)
		if sector == "" {
			return apperr.Validationf("composition entry has empty sector")
		}
		if seen[sector] {
			return apperr.Validationf("composition names sector %q twice", sector)
		}
		seen[sector] = true
		if entry.Percentage <= 0 || entry.Percentage > 100 {
			return apperr.Validationf("sector %q percentage %.2f outside (0,100]", sector, entry.Percentage)
		}
		total += entry.Percentage
	}
	if math.Abs(total-100) > compositionTolerance {
		return apperr.Validationf("composition percentages sum to %.2f, want 100", total)
	}
	return nil
}

// DecodeComposition reads a stored signature's composition back out.
func DecodeComposition(sig *models.Signature) ([]models.CompositionEntry, error) {
	var composition []models.CompositionEntry
	if err := json.Unmarshal(sig.Composition, &composition); err != nil {
		return nil, fmt.Errorf("decode composition of signature %s: %w", sig.ID, err)
	}
	return composition, nil
}
