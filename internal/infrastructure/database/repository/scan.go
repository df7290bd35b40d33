package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"insafe-lab/internal/domain/models"
)

const scanColumns = `id, type, content, verdict, confidence, risk_factors, timestamp, ip_address`

// ScanRepository handles scan persistence
type ScanRepository struct {
	pool *pgxpool.Pool
}

// NewScanRepository creates a new scan repository
func NewScanRepository(pool *pgxpool.Pool) *ScanRepository {
	return &ScanRepository{pool: pool}
}

// Create inserts a scan and fills in its id and timestamp
func (r *ScanRepository) Create(ctx context.Context, s *models.Scan) (*models.Scan, error) {
	factors, err := json.Marshal(nonNilStrings(s.RiskFactors))
	if err != nil {
		return nil, fmt.Errorf("failed to encode risk factors: %w", err)
	}

	query := `
		INSERT INTO scans (type, content, verdict, confidence, risk_factors, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, timestamp`

	var ts pgtype.Timestamptz
	err = r.pool.QueryRow(ctx, query,
		s.Type, s.Content, string(s.Verdict), s.Confidence, factors, stringPtrToText(s.IPAddress),
	).Scan(&s.ID, &ts)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan: %w", err)
	}
	s.Timestamp = timestamptzToTime(ts)

	return s, nil
}

// GetByID retrieves a scan by id
func (r *ScanRepository) GetByID(ctx context.Context, id int64) (*models.Scan, error) {
	query := `SELECT ` + scanColumns + ` FROM scans WHERE id = $1`

	s, err := scanScan(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	return s, err
}

// Recent lists the newest scans first
func (r *ScanRepository) Recent(ctx context.Context, limit int) ([]*models.Scan, error) {
	query := `SELECT ` + scanColumns + ` FROM scans ORDER BY timestamp DESC, id DESC LIMIT $1`
	return r.list(ctx, query, normalizeLimit(limit))
}

// ListByType lists the newest scans of one type
func (r *ScanRepository) ListByType(ctx context.Context, scanType string, limit int) ([]*models.Scan, error) {
	query := `SELECT ` + scanColumns + ` FROM scans WHERE type = $1 ORDER BY timestamp DESC, id DESC LIMIT $2`
	return r.list(ctx, query, scanType, normalizeLimit(limit))
}

func (r *ScanRepository) list(ctx context.Context, query string, args ...any) ([]*models.Scan, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	scans := []*models.Scan{}
	for rows.Next() {
		s, err := scanScan(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

// Stats summarizes all stored scans
func (r *ScanRepository) Stats(ctx context.Context) (*models.ScanStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE verdict IN ('suspicious', 'dangerous')),
			COUNT(*) FILTER (WHERE timestamp >= date_trunc('day', NOW()))
		FROM scans`

	var st models.ScanStats
	if err := r.pool.QueryRow(ctx, query).Scan(&st.TotalScans, &st.ScamsBlocked, &st.TodayScans); err != nil {
		return nil, fmt.Errorf("failed to compute scan stats: %w", err)
	}
	st.Accuracy = blockedPercent(st.ScamsBlocked, st.TotalScans)
	return &st, nil
}

func scanScan(row pgx.Row) (*models.Scan, error) {
	var (
		s       models.Scan
		verdict string
		factors []byte
		ts      pgtype.Timestamptz
		ip      pgtype.Text
	)
	if err := row.Scan(&s.ID, &s.Type, &s.Content, &verdict, &s.Confidence, &factors, &ts, &ip); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan scan row: %w", err)
	}
	s.Verdict = models.Verdict(verdict)
	s.Timestamp = timestamptzToTime(ts)
	s.IPAddress = textToStringPtr(ip)
	s.RiskFactors = []string{}
	if len(factors) > 0 {
		if err := json.Unmarshal(factors, &s.RiskFactors); err != nil {
			return nil, fmt.Errorf("failed to decode risk factors: %w", err)
		}
	}
	return &s, nil
}

func blockedPercent(blocked, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(blocked) / float64(total) * 100))
}
