package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bashkirian/haulstats/internal/loader"
	"github.com/bashkirian/haulstats/internal/storage"
	"github.com/bashkirian/haulstats/pkg/models"
)

// ErrDivisionByZero длительность симуляции не положительна, доли не определены
var ErrDivisionByZero = errors.New("simulation duration must be positive")

// Result агрегаты одного прохода. Порядок срезов совпадает с порядком
// первого появления сущностей во входных данных.
type Result struct {
	Trucks            []models.TruckStats
	Stations          []models.StationStats
	TruckEfficiency   []float64
	StationEfficiency []float64
}

// Truck ищет агрегат грузовика
func (r *Result) Truck(id models.EntityID) (models.TruckStats, bool) {
	for _, s := range r.Trucks {
		if s.TruckID == id {
			return s, true
		}
	}
	return models.TruckStats{}, false
}

// Station ищет агрегат станции
func (r *Result) Station(id models.EntityID) (models.StationStats, bool) {
	for _, s := range r.Stations {
		if s.StationID == id {
			return s, true
		}
	}
	return models.StationStats{}, false
}

// Aggregate раскладывает время событий по грузовикам и станциям за один
// проход и считает эффективность относительно длительности симуляции.
// Суммы и счётчики не зависят от порядка событий.
func Aggregate(events []models.Event, simulationDuration float64) (*Result, error) {
	if !(simulationDuration > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrDivisionByZero, simulationDuration)
	}

	trucks := newIndex[models.TruckStats]()
	stations := newIndex[models.StationStats]()

	for _, e := range events {
		category := e.Category()
		if category == models.CategoryNone {
			continue
		}

		duration := e.Duration()
		truck := trucks.fetchOrInsert(e.TruckID, func() models.TruckStats {
			return models.TruckStats{TruckID: e.TruckID}
		})

		switch category {
		case models.CategoryMine:
			truck.Mine += duration
			truck.MinesCompleted++
		case models.CategoryTravel:
			truck.Travel += duration
		case models.CategoryQueue:
			truck.Queue += duration
			truck.QueuesCompleted++
		case models.CategoryUnload:
			truck.Unload += duration
			truck.TripsCompleted++

			if e.HasStation() {
				id := *e.StationID
				station := stations.fetchOrInsert(id, func() models.StationStats {
					return models.StationStats{StationID: id}
				})
				station.Unload += duration
				station.UnloadCount++
			}
		}
	}

	res := &Result{
		Trucks:   trucks.values(),
		Stations: stations.values(),
	}
	res.TruckEfficiency = make([]float64, 0, len(res.Trucks))
	for _, s := range res.Trucks {
		res.TruckEfficiency = append(res.TruckEfficiency, s.ActiveTime()/simulationDuration)
	}
	res.StationEfficiency = make([]float64, 0, len(res.Stations))
	for _, s := range res.Stations {
		res.StationEfficiency = append(res.StationEfficiency, s.Unload/simulationDuration)
	}
	return res, nil
}

// ActiveShare альтернативная метрика: доля продуктивного времени среди всего
// учтённого времени грузовика, включая очередь. С эффективностью не смешивается.
func ActiveShare(s models.TruckStats) float64 {
	total := s.CategorizedTime()
	if total == 0 {
		return 0
	}
	return s.ActiveTime() / total
}

type Aggregator struct {
	storage storage.Storage
	now     func() time.Time
}

func New(storage storage.Storage) *Aggregator {
	return &Aggregator{
		storage: storage,
		now:     time.Now,
	}
}

// Process агрегирует загруженный журнал, собирает отчёт и сохраняет его
func (a *Aggregator) Process(ctx context.Context, source string, in *loader.Result) (*models.Report, error) {
	res, err := Aggregate(in.Events, in.SimulationDuration)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:                 uuid.New().String(),
		Source:             source,
		Shape:              in.Shape,
		SimulationDuration: in.SimulationDuration,
		EventCount:         len(in.Events),
		SkippedCount:       len(in.Skipped),
		Trucks:             res.Trucks,
		Stations:           res.Stations,
		TruckEfficiency:    res.TruckEfficiency,
		StationEfficiency:  res.StationEfficiency,
		CreatedAt:          a.now().UTC(),
	}

	if err := a.storage.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	log.Printf("Processed report %s: source=%s, events=%d, skipped=%d, trucks=%d, stations=%d",
		report.ID, source, report.EventCount, report.SkippedCount, len(report.Trucks), len(report.Stations))
	return report, nil
}

// GetReport возвращает сохранённый отчёт
func (a *Aggregator) GetReport(ctx context.Context, id string) (*models.Report, error) {
	return a.storage.GetReport(ctx, id)
}

// ListReports возвращает заголовки всех отчётов
func (a *Aggregator) ListReports(ctx context.Context) ([]models.ReportHeader, error) {
	return a.storage.ListReports(ctx)
}
