package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"insafe-lab/internal/domain/models"
)

// MemoryStore keeps scans, reports and custom patterns in process memory.
// It backs the service when PostgreSQL is disabled or unreachable.
type MemoryStore struct {
	mu       sync.RWMutex
	scans    []*models.Scan
	reports  []*models.Report
	patterns []models.ScamPattern
	nextScan int64
	nextRep  int64
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// MemoryScans adapts the store to the scan repository contract
type MemoryScans struct{ *MemoryStore }

// MemoryReports adapts the store to the report repository contract
type MemoryReports struct{ *MemoryStore }

// MemoryPatterns adapts the store to the pattern repository contract
type MemoryPatterns struct{ *MemoryStore }

func (m *MemoryStore) Scans() MemoryScans       { return MemoryScans{m} }
func (m *MemoryStore) Reports() MemoryReports   { return MemoryReports{m} }
func (m *MemoryStore) Patterns() MemoryPatterns { return MemoryPatterns{m} }

func (m MemoryScans) Create(_ context.Context, s *models.Scan) (*models.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextScan++
	cp := *s
	cp.ID = m.nextScan
	cp.Timestamp = m.now().UTC()
	cp.RiskFactors = append([]string{}, s.RiskFactors...)
	m.scans = append(m.scans, &cp)

	s.ID, s.Timestamp = cp.ID, cp.Timestamp
	return s, nil
}

func (m MemoryScans) GetByID(_ context.Context, id int64) (*models.Scan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.scans {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m MemoryScans) Recent(_ context.Context, limit int) ([]*models.Scan, error) {
	return m.filter(normalizeLimit(limit), func(*models.Scan) bool { return true }), nil
}

func (m MemoryScans) ListByType(_ context.Context, scanType string, limit int) ([]*models.Scan, error) {
	return m.filter(normalizeLimit(limit), func(s *models.Scan) bool { return s.Type == scanType }), nil
}

// filter walks newest first
func (m MemoryScans) filter(limit int, keep func(*models.Scan) bool) []*models.Scan {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*models.Scan{}
	for i := len(m.scans) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(m.scans[i]) {
			cp := *m.scans[i]
			out = append(out, &cp)
		}
	}
	return out
}

func (m MemoryScans) Stats(_ context.Context) (*models.ScanStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	st := &models.ScanStats{TotalScans: len(m.scans)}
	for _, s := range m.scans {
		if s.Verdict.IsThreat() {
			st.ScamsBlocked++
		}
		if !s.Timestamp.Before(midnight) {
			st.TodayScans++
		}
	}
	st.Accuracy = blockedPercent(st.ScamsBlocked, st.TotalScans)
	return st, nil
}

func (m MemoryReports) Create(_ context.Context, rep *models.Report) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextRep++
	rep.ID = m.nextRep
	rep.Timestamp = m.now().UTC()
	rep.Verified = false
	cp := *rep
	m.reports = append(m.reports, &cp)
	return rep, nil
}

func (m MemoryReports) List(_ context.Context, limit int) ([]*models.Report, error) {
	return m.filter(normalizeLimit(limit), func(*models.Report) bool { return true }), nil
}

func (m MemoryReports) ListByType(_ context.Context, t models.ReportType, limit int) ([]*models.Report, error) {
	return m.filter(normalizeLimit(limit), func(r *models.Report) bool { return r.Type == t }), nil
}

func (m MemoryReports) SearchByDigits(_ context.Context, digits string, limit int) ([]*models.Report, error) {
	digits = digitsOnly(digits)
	if digits == "" {
		return []*models.Report{}, nil
	}
	return m.filter(normalizeLimit(limit), func(r *models.Report) bool {
		return strings.Contains(digitsOnly(r.Content), digits)
	}), nil
}

func (m MemoryReports) filter(limit int, keep func(*models.Report) bool) []*models.Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*models.Report{}
	for i := len(m.reports) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(m.reports[i]) {
			cp := *m.reports[i]
			out = append(out, &cp)
		}
	}
	return out
}

func (m MemoryPatterns) Create(_ context.Context, p models.ScamPattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.patterns {
		if existing.ID == p.ID {
			return nil
		}
	}
	m.patterns = append(m.patterns, p)
	return nil
}

func (m MemoryPatterns) List(_ context.Context) ([]models.ScamPattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.ScamPattern(nil), m.patterns...), nil
}
