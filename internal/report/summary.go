package report

import (
	"fmt"
	"io"

	"github.com/bashkirian/haulstats/internal/aggregator"
	"github.com/bashkirian/haulstats/pkg/models"
)

// TruckMetrics производные показатели грузовика
type TruckMetrics struct {
	TruckID         models.EntityID `json:"truck_id"`
	Utilization     float64         `json:"utilization"` // проценты
	ActiveShare     float64         `json:"active_share"`
	IdleTime        float64         `json:"idle_time"`
	TripsCompleted  int64           `json:"trips_completed"`
	MinesCompleted  int64           `json:"mines_completed"`
	QueuesCompleted int64           `json:"queues_completed"`
	AvgTripTime     float64         `json:"avg_trip_time"`
	AvgQueueTime    float64         `json:"avg_queue_time"`
}

// StationMetrics производные показатели станции
type StationMetrics struct {
	StationID   models.EntityID `json:"station_id"`
	Utilization float64         `json:"utilization"`
	IdleTime    float64         `json:"idle_time"`
	Throughput  int64           `json:"throughput"`
}

// Summary сводка по всему парку
type Summary struct {
	SimulationDuration    float64          `json:"simulation_duration"`
	TruckCount            int              `json:"truck_count"`
	StationCount          int              `json:"station_count"`
	AvgTruckUtilization   float64          `json:"avg_truck_utilization"`
	AvgStationUtilization float64          `json:"avg_station_utilization"`
	TotalTrips            int64            `json:"total_trips"`
	TotalUnloads          int64            `json:"total_unloads"`
	Trucks                []TruckMetrics   `json:"trucks"`
	Stations              []StationMetrics `json:"stations"`
}

// Summarize считает производные показатели по готовому отчёту.
// Длительность в отчёте уже проверена агрегатором и положительна.
func Summarize(r *models.Report) Summary {
	s := Summary{
		SimulationDuration: r.SimulationDuration,
		TruckCount:         len(r.Trucks),
		StationCount:       len(r.Stations),
		Trucks:             make([]TruckMetrics, 0, len(r.Trucks)),
		Stations:           make([]StationMetrics, 0, len(r.Stations)),
	}

	for i, t := range r.Trucks {
		active := t.ActiveTime()
		m := TruckMetrics{
			TruckID:         t.TruckID,
			Utilization:     r.TruckEfficiency[i] * 100,
			ActiveShare:     aggregator.ActiveShare(t),
			IdleTime:        r.SimulationDuration - active,
			TripsCompleted:  t.TripsCompleted,
			MinesCompleted:  t.MinesCompleted,
			QueuesCompleted: t.QueuesCompleted,
		}
		if t.TripsCompleted > 0 {
			m.AvgTripTime = active / float64(t.TripsCompleted)
		}
		if t.QueuesCompleted > 0 {
			m.AvgQueueTime = t.Queue / float64(t.QueuesCompleted)
		}
		s.Trucks = append(s.Trucks, m)
		s.AvgTruckUtilization += m.Utilization
		s.TotalTrips += t.TripsCompleted
	}

	for i, st := range r.Stations {
		m := StationMetrics{
			StationID:   st.StationID,
			Utilization: r.StationEfficiency[i] * 100,
			IdleTime:    r.SimulationDuration - st.Unload,
			Throughput:  st.UnloadCount,
		}
		s.Stations = append(s.Stations, m)
		s.AvgStationUtilization += m.Utilization
		s.TotalUnloads += st.UnloadCount
	}

	if len(s.Trucks) > 0 {
		s.AvgTruckUtilization /= float64(len(s.Trucks))
	}
	if len(s.Stations) > 0 {
		s.AvgStationUtilization /= float64(len(s.Stations))
	}
	return s
}

// WriteSummary печатает сводку в человекочитаемом виде
func WriteSummary(w io.Writer, s Summary) error {
	_, err := fmt.Fprintf(w, "\n=== Simulation Summary ===\n"+
		"Simulation Time: %.0f minutes\n"+
		"Trucks: %d\n"+
		"Stations: %d\n"+
		"Total Trips: %d\n"+
		"Total Unloads: %d\n"+
		"Average Truck Utilization: %.2f%%\n"+
		"Average Station Utilization: %.2f%%\n",
		s.SimulationDuration, s.TruckCount, s.StationCount, s.TotalTrips, s.TotalUnloads,
		s.AvgTruckUtilization, s.AvgStationUtilization)
	return err
}
