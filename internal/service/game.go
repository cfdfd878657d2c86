// Package service holds the use cases the HTTP layer and CLI call.
//
// LAYERING:
//
//	handler (HTTP) -> GameService / ReloadService -> content.Cache + content.Selector
//
// Services return domain values and *apperror.AppError; they never see
// http.ResponseWriter or status codes.
package service

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/truthdare/truthdare-api/internal/apperror"
	"github.com/truthdare/truthdare-api/internal/content"
	"github.com/truthdare/truthdare-api/internal/model"
)

// ContentStore is the read side of content.Cache.
type ContentStore interface {
	Snapshot(kind model.Kind) (*content.Snapshot, error)
}

// tagPattern is the accepted shape of a category or difficulty in a request.
var tagPattern = regexp.MustCompile(`^[a-zA-Z]+$`)

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// GameService answers every read request: random picks, tag listings,
// health and stats.
type GameService struct {
	store    ContentStore
	selector *content.Selector
	logger   *slog.Logger
	now      func() time.Time
}

// NewGameService creates a GameService. A nil selector uses the process-wide
// random source.
func NewGameService(store ContentStore, selector *content.Selector, logger *slog.Logger) *GameService {
	if selector == nil {
		selector = content.NewSelector(nil)
	}
	return &GameService{
		store:    store,
		selector: selector,
		logger:   logger,
		now:      time.Now,
	}
}

// RandomTruth returns a random truth from all categories.
func (s *GameService) RandomTruth() (model.Record, error) {
	return s.random(model.KindTruth)
}

// RandomDare returns a random dare from all difficulties.
func (s *GameService) RandomDare() (model.Record, error) {
	return s.random(model.KindDare)
}

// TruthByCategory returns a random truth of the given category.
func (s *GameService) TruthByCategory(category string) (model.Record, error) {
	return s.byTag(model.KindTruth, category)
}

// DareByDifficulty returns a random dare of the given difficulty.
func (s *GameService) DareByDifficulty(difficulty string) (model.Record, error) {
	return s.byTag(model.KindDare, difficulty)
}

// TruthCategories lists the categories that currently have truths, sorted.
func (s *GameService) TruthCategories() ([]string, error) {
	return s.tags(model.KindTruth)
}

// DareDifficulties lists the difficulties that currently have dares, sorted.
func (s *GameService) DareDifficulties() ([]string, error) {
	return s.tags(model.KindDare)
}

// RandomGame flips a fair coin between truths and dares and returns a random
// record of the winner, along with which kind it is.
func (s *GameService) RandomGame() (model.Kind, model.Record, error) {
	truths, dares, err := s.snapshots()
	if err != nil {
		return "", model.Record{}, err
	}

	kind, rec, err := s.selector.RandomAcrossKinds(truths, dares)
	if err != nil {
		return kind, model.Record{}, err
	}
	s.logger.Debug("random game item selected", slog.String("kind", string(kind)), slog.Int64("id", rec.ID))
	return kind, rec, nil
}

func (s *GameService) random(kind model.Kind) (model.Record, error) {
	snap, err := s.store.Snapshot(kind)
	if err != nil {
		return model.Record{}, err
	}
	rec, err := s.selector.Random(snap)
	if err != nil {
		return model.Record{}, err
	}
	s.logger.Debug("random item selected", slog.String("kind", string(kind)), slog.Int64("id", rec.ID))
	return rec, nil
}

func (s *GameService) byTag(kind model.Kind, raw string) (model.Record, error) {
	tag, err := validateTag(kind, raw)
	if err != nil {
		return model.Record{}, err
	}
	snap, err := s.store.Snapshot(kind)
	if err != nil {
		return model.Record{}, err
	}
	rec, err := s.selector.RandomByTag(snap, tag)
	if err != nil {
		return model.Record{}, err
	}
	s.logger.Debug("tagged item selected",
		slog.String("kind", string(kind)),
		slog.String("tag", tag),
		slog.Int64("id", rec.ID),
	)
	return rec, nil
}

func (s *GameService) tags(kind model.Kind) ([]string, error) {
	snap, err := s.store.Snapshot(kind)
	if err != nil {
		return nil, err
	}
	return content.ListTags(snap), nil
}

// validateTag trims raw and checks it is a single word of letters.
// The returned tag is lower-cased.
func validateTag(kind model.Kind, raw string) (string, error) {
	field := kind.TagField()
	tag := strings.TrimSpace(raw)

	var reason string
	switch {
	case tag == "":
		reason = fmt.Sprintf("%s cannot be empty", field)
	case !tagPattern.MatchString(tag):
		reason = fmt.Sprintf("%s must contain only letters", field)
	default:
		return strings.ToLower(tag), nil
	}

	return "", apperror.ValidationFailed(field,
		fmt.Sprintf("Validation error for field '%s' with value '%s': %s", field, raw, reason),
	).WithDetails(map[string]any{
		"field":  field,
		"value":  raw,
		"reason": reason,
	})
}
