package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"insafe-lab/internal/domain/models"
)

const reportColumns = `id, type, content, description, reporter_ip, verified, timestamp`

// ReportRepository handles community report persistence
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Create inserts a community report
func (r *ReportRepository) Create(ctx context.Context, rep *models.Report) (*models.Report, error) {
	query := `
		INSERT INTO reports (type, content, description, reporter_ip)
		VALUES ($1, $2, $3, $4)
		RETURNING id, verified, timestamp`

	var ts pgtype.Timestamptz
	err := r.pool.QueryRow(ctx, query,
		string(rep.Type), rep.Content, stringPtrToText(rep.Description), stringPtrToText(rep.ReporterIP),
	).Scan(&rep.ID, &rep.Verified, &ts)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	rep.Timestamp = timestamptzToTime(ts)

	return rep, nil
}

// List returns the newest reports first
func (r *ReportRepository) List(ctx context.Context, limit int) ([]*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports ORDER BY timestamp DESC, id DESC LIMIT $1`
	return r.list(ctx, query, normalizeLimit(limit))
}

// ListByType returns the newest reports of one type
func (r *ReportRepository) ListByType(ctx context.Context, t models.ReportType, limit int) ([]*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE type = $1 ORDER BY timestamp DESC, id DESC LIMIT $2`
	return r.list(ctx, query, string(t), normalizeLimit(limit))
}

// SearchByDigits finds reports whose content contains the given digit sequence,
// ignoring any formatting in the stored content
func (r *ReportRepository) SearchByDigits(ctx context.Context, digits string, limit int) ([]*models.Report, error) {
	digits = digitsOnly(digits)
	if digits == "" {
		return []*models.Report{}, nil
	}
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE regexp_replace(content, '\D', '', 'g') LIKE '%' || $1 || '%'
		ORDER BY timestamp DESC, id DESC
		LIMIT $2`
	return r.list(ctx, query, digits, normalizeLimit(limit))
}

func (r *ReportRepository) list(ctx context.Context, query string, args ...any) ([]*models.Report, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []*models.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func scanReport(row pgx.Row) (*models.Report, error) {
	var (
		rep  models.Report
		typ  string
		desc pgtype.Text
		ip   pgtype.Text
		ts   pgtype.Timestamptz
	)
	if err := row.Scan(&rep.ID, &typ, &rep.Content, &desc, &ip, &rep.Verified, &ts); err != nil {
		return nil, fmt.Errorf("failed to scan report row: %w", err)
	}
	rep.Type = models.ReportType(typ)
	rep.Description = textToStringPtr(desc)
	rep.ReporterIP = textToStringPtr(ip)
	rep.Timestamp = timestamptzToTime(ts)
	return &rep, nil
}
