package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"insafe-lab/internal/domain/models"
	"insafe-lab/internal/domain/services/ai"
	"insafe-lab/pkg/logger"
)

var knownCategories = map[models.PatternCategory]bool{
	models.CategoryLoan:       true,
	models.CategoryRummy:      true,
	models.CategoryPhishing:   true,
	models.CategoryUPI:        true,
	models.CategoryLottery:    true,
	models.CategoryAuthority:  true,
	models.CategoryInvestment: true,
	models.CategoryCrypto:     true,
	models.CategoryGeneral:    true,
}

// PatternService manages the runtime additions to the pattern catalog
type PatternService struct {
	catalog *ai.Catalog
	store   PatternStore
	logger  *logger.Logger
}

// NewPatternService creates a pattern service. store may be nil, in which
// case additions live only in memory.
func NewPatternService(catalog *ai.Catalog, store PatternStore, log *logger.Logger) *PatternService {
	return &PatternService{
		catalog: catalog,
		store:   store,
		logger:  log.WithComponent("patterns"),
	}
}

// List returns catalog entries, optionally of one category
func (s *PatternService) List(category string) ([]models.ScamPattern, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return s.catalog.All(), nil
	}
	c := models.PatternCategory(category)
	if !knownCategories[c] {
		return nil, fmt.Errorf("%w: unknown category %q", models.ErrInvalidInput, category)
	}
	return s.catalog.ByCategory(c), nil
}

// Add appends an entry to the catalog and persists it. Regex entries must compile.
func (s *PatternService) Add(ctx context.Context, p models.ScamPattern) (models.ScamPattern, error) {
	p.Pattern = strings.TrimSpace(p.Pattern)
	if p.Pattern == "" {
		return models.ScamPattern{}, fmt.Errorf("%w: pattern is required", models.ErrInvalidInput)
	}
	if !knownCategories[p.Category] {
		return models.ScamPattern{}, fmt.Errorf("%w: unknown category %q", models.ErrInvalidInput, p.Category)
	}
	if p.IsRegex {
		if _, err := regexp.Compile("(?i)" + p.Pattern); err != nil {
			return models.ScamPattern{}, fmt.Errorf("%w: invalid regex: %v", models.ErrInvalidInput, err)
		}
	}

	added := s.catalog.Append(p)

	if s.store != nil {
		if err := s.store.Create(ctx, added); err != nil {
			s.logger.Warn().Err(err).Str("pattern_id", added.ID).Msg("failed to persist pattern, kept in memory")
		}
	}
	return added, nil
}

// Restore re-appends persisted entries to the catalog at startup
func (s *PatternService) Restore(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	entries, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load stored patterns: %w", err)
	}
	n := s.catalog.Restore(entries)
	s.logger.Info().Int("restored", n).Msg("stored patterns restored")
	return n, nil
}
