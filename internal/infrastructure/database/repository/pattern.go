package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"insafe-lab/internal/domain/models"
)

// PatternRepository persists catalog entries appended at runtime
type PatternRepository struct {
	pool *pgxpool.Pool
}

// NewPatternRepository creates a new pattern repository
func NewPatternRepository(pool *pgxpool.Pool) *PatternRepository {
	return &PatternRepository{pool: pool}
}

// Create stores a catalog entry. Existing ids are left untouched.
func (r *PatternRepository) Create(ctx context.Context, p models.ScamPattern) error {
	query := `
		INSERT INTO scam_patterns (id, category, pattern, is_regex, weight, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
		ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		p.ID, string(p.Category), p.Pattern, p.IsRegex, p.Weight,
		textOrNull(p.Description), timeToTimestamptz(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create scam pattern: %w", err)
	}
	return nil
}

// List returns every stored entry in insertion order
func (r *PatternRepository) List(ctx context.Context) ([]models.ScamPattern, error) {
	query := `
		SELECT id, category, pattern, is_regex, weight, description, created_at
		FROM scam_patterns
		ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scam patterns: %w", err)
	}
	defer rows.Close()

	var out []models.ScamPattern
	for rows.Next() {
		var (
			p        models.ScamPattern
			category string
			desc     pgtype.Text
			created  pgtype.Timestamptz
		)
		if err := rows.Scan(&p.ID, &category, &p.Pattern, &p.IsRegex, &p.Weight, &desc, &created); err != nil {
			return nil, fmt.Errorf("failed to scan scam pattern: %w", err)
		}
		p.Category = models.PatternCategory(category)
		p.Description = nullTextToString(desc)
		p.CreatedAt = timestamptzToTime(created)
		out = append(out, p)
	}
	return out, rows.Err()
}
