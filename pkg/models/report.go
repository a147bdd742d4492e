package models

import "time"

// TruckStats накопленное время грузовика по категориям
type TruckStats struct {
	TruckID         EntityID `json:"truck_id"`
	Mine            float64  `json:"mine"`
	Travel          float64  `json:"travel"`
	Queue           float64  `json:"queue"`
	Unload          float64  `json:"unload"`
	TripsCompleted  int64    `json:"trips_completed"`
	MinesCompleted  int64    `json:"mines_completed"`
	QueuesCompleted int64    `json:"queues_completed"`
}

// ActiveTime время в продуктивных состояниях (без очереди)
func (s TruckStats) ActiveTime() float64 {
	return s.Mine + s.Travel + s.Unload
}

// CategorizedTime всё время, отнесённое к известным категориям
func (s TruckStats) CategorizedTime() float64 {
	return s.Mine + s.Travel + s.Queue + s.Unload
}

// StationStats накопленное время разгрузки станции
type StationStats struct {
	StationID   EntityID `json:"station_id"`
	Unload      float64  `json:"unload"`
	UnloadCount int64    `json:"unload_count"`
}

// InputShape форма входного файла
type InputShape string

const (
	ShapeLines        InputShape = "lines"
	ShapeDocumentList InputShape = "document_list"
	ShapeDocument     InputShape = "document"
)

// Report результат одного прогона агрегации
type Report struct {
	ID                 string         `json:"id"`
	Source             string         `json:"source"`
	Shape              InputShape     `json:"shape"`
	SimulationDuration float64        `json:"simulation_duration"`
	EventCount         int            `json:"event_count"`
	SkippedCount       int            `json:"skipped_count"`
	Trucks             []TruckStats   `json:"trucks"`
	Stations           []StationStats `json:"stations"`
	TruckEfficiency    []float64      `json:"truck_efficiency"`
	StationEfficiency  []float64      `json:"station_efficiency"`
	CreatedAt          time.Time      `json:"created_at"`
}

// ReportHeader краткое описание отчёта для списков
type ReportHeader struct {
	ID                 string    `json:"id"`
	Source             string    `json:"source"`
	SimulationDuration float64   `json:"simulation_duration"`
	TruckCount         int       `json:"truck_count"`
	StationCount       int       `json:"station_count"`
	CreatedAt          time.Time `json:"created_at"`
}

func (r *Report) Header() ReportHeader {
	return ReportHeader{
		ID:                 r.ID,
		Source:             r.Source,
		SimulationDuration: r.SimulationDuration,
		TruckCount:         len(r.Trucks),
		StationCount:       len(r.Stations),
		CreatedAt:          r.CreatedAt,
	}
}
