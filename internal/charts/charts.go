package charts

import (
	"fmt"

	"github.com/bashkirian/haulstats/pkg/models"
)

const DefaultBins = 20

// Style статическая палитра для рендерера
type Style struct {
	Mining string `json:"mining" mapstructure:"mining"`
	Unload string `json:"unload" mapstructure:"unload"`
}

// DefaultStyle палитра исходных графиков
var DefaultStyle = Style{
	Mining: "#1F5673",
	Unload: "#D79E42",
}

// Bin один столбец гистограммы, полуинтервал [Lower, Upper)
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type Histogram struct {
	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`
	Color  string `json:"color"`
	Bins   []Bin  `json:"bins"`
}

type Bar struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

type BarSeries struct {
	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`
	Color  string `json:"color"`
	Bars   []Bar  `json:"bars"`
}

// Set четыре графика одного отчёта
type Set struct {
	ReportID          string    `json:"report_id"`
	TruckEfficiency   Histogram `json:"truck_efficiency"`
	StationEfficiency Histogram `json:"station_efficiency"`
	TruckTrips        BarSeries `json:"truck_trips"`
	StationUnloads    BarSeries `json:"station_unloads"`
}

// Build готовит данные всех четырёх графиков. Либо строятся все, либо ни одного.
func Build(r *models.Report, bins int, style Style) (*Set, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("histogram bins must be positive, got %d", bins)
	}
	if len(r.TruckEfficiency) != len(r.Trucks) || len(r.StationEfficiency) != len(r.Stations) {
		return nil, fmt.Errorf("report %s: efficiency series do not match aggregates", r.ID)
	}

	set := &Set{
		ReportID: r.ID,
		TruckEfficiency: Histogram{
			Title:  "Truck Efficiency",
			XLabel: "Efficiency (Active Time / Simulation Duration)",
			YLabel: "Number of Trucks",
			Color:  style.Mining,
			Bins:   histogram(r.TruckEfficiency, bins),
		},
		StationEfficiency: Histogram{
			Title:  "Station Efficiency",
			XLabel: "Efficiency (Unloading Time / Simulation Duration)",
			YLabel: "Number of Stations",
			Color:  style.Unload,
			Bins:   histogram(r.StationEfficiency, bins),
		},
		TruckTrips: BarSeries{
			Title:  "Truck Performance: Total Trips Completed",
			XLabel: "Truck ID",
			YLabel: "Total Trips",
			Color:  style.Mining,
			Bars:   make([]Bar, 0, len(r.Trucks)),
		},
		StationUnloads: BarSeries{
			Title:  "Station Performance: Total Unloads",
			XLabel: "Station ID",
			YLabel: "Total Unloads",
			Color:  style.Unload,
			Bars:   make([]Bar, 0, len(r.Stations)),
		},
	}

	for _, t := range r.Trucks {
		set.TruckTrips.Bars = append(set.TruckTrips.Bars, Bar{Label: string(t.TruckID), Value: t.TripsCompleted})
	}
	for _, s := range r.Stations {
		set.StationUnloads.Bars = append(set.StationUnloads.Bars, Bar{Label: string(s.StationID), Value: s.UnloadCount})
	}
	return set, nil
}

// histogram раскладывает доли по равным корзинам на [0, 1].
// Значения вне диапазона попадают в крайние корзины.
func histogram(values []float64, bins int) []Bin {
	out := make([]Bin, bins)
	width := 1.0 / float64(bins)
	for i := range out {
		out[i].Lower = float64(i) * width
		out[i].Upper = float64(i+1) * width
	}

	for _, v := range values {
		i := int(v * float64(bins))
		if i < 0 {
			i = 0
		}
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}
