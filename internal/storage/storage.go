package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/bashkirian/haulstats/pkg/models"
)

// ErrNotFound отчёт с таким id не найден
var ErrNotFound = errors.New("report not found")

type Storage interface {
	SaveReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	ListReports(ctx context.Context) ([]models.ReportHeader, error)
	Close() error
}

type InMemoryStorage struct {
	mu      sync.RWMutex
	reports map[string]*models.Report
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		reports: make(map[string]*models.Report),
	}
}

func (s *InMemoryStorage) SaveReport(_ context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = report
	return nil
}

func (s *InMemoryStorage) GetReport(_ context.Context, id string) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return report, nil
}

// ListReports отдаёт заголовки от новых к старым
func (s *InMemoryStorage) ListReports(_ context.Context) ([]models.ReportHeader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.ReportHeader, 0, len(s.reports))
	for _, r := range s.reports {
		result = append(result, r.Header())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *InMemoryStorage) Close() error {
	return nil
}
