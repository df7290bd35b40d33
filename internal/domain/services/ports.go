package services

import (
	"context"
	"time"

	"insafe-lab/internal/domain/models"
)

// ScanStore persists scan results
type ScanStore interface {
	Create(ctx context.Context, s *models.Scan) (*models.Scan, error)
	GetByID(ctx context.Context, id int64) (*models.Scan, error)
	Recent(ctx context.Context, limit int) ([]*models.Scan, error)
	ListByType(ctx context.Context, scanType string, limit int) ([]*models.Scan, error)
	Stats(ctx context.Context) (*models.ScanStats, error)
}

// ReportStore persists community reports
type ReportStore interface {
	Create(ctx context.Context, rep *models.Report) (*models.Report, error)
	List(ctx context.Context, limit int) ([]*models.Report, error)
	ListByType(ctx context.Context, t models.ReportType, limit int) ([]*models.Report, error)
	SearchByDigits(ctx context.Context, digits string, limit int) ([]*models.Report, error)
}

// PatternStore persists catalog entries added at runtime
type PatternStore interface {
	Create(ctx context.Context, p models.ScamPattern) error
	List(ctx context.Context) ([]models.ScamPattern, error)
}

// EventPublisher announces scoring activity to streaming consumers
type EventPublisher interface {
	PublishScan(ctx context.Context, res *models.ScanResult) error
	PublishRetrain(ctx context.Context, status models.LearningStatus) error
	PublishReport(ctx context.Context, rep *models.Report) error
}

// JSONCache is the subset of the Redis cache used for classifier results
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// ScanCounter tracks per-type scan totals
type ScanCounter interface {
	IncrScanCounter(ctx context.Context, contentType string) (int64, error)
}

// Locker provides cross-instance mutual exclusion for scheduled jobs
type Locker interface {
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error
}
