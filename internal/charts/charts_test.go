package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bashkirian/haulstats/pkg/models"
)

func TestBuild(t *testing.T) {
	r := &models.Report{
		ID: "r-1",
		Trucks: []models.TruckStats{
			{TruckID: "1", TripsCompleted: 3},
			{TruckID: "2", TripsCompleted: 5},
		},
		Stations: []models.StationStats{
			{StationID: "A", UnloadCount: 8},
		},
		TruckEfficiency:   []float64{0.75, 1.0},
		StationEfficiency: []float64{0.25},
	}

	set, err := Build(r, 4, DefaultStyle)
	require.NoError(t, err)

	assert.Equal(t, "r-1", set.ReportID)
	assert.Equal(t, "#1F5673", set.TruckEfficiency.Color)
	assert.Equal(t, "#D79E42", set.StationUnloads.Color)

	counts := func(h Histogram) []int {
		out := make([]int, 0, len(h.Bins))
		for _, b := range h.Bins {
			out = append(out, b.Count)
		}
		return out
	}
	// 1.0 попадает в последнюю корзину
	assert.Equal(t, []int{0, 0, 0, 2}, counts(set.TruckEfficiency))
	assert.Equal(t, []int{0, 1, 0, 0}, counts(set.StationEfficiency))
	assert.Equal(t, 0.25, set.StationEfficiency.Bins[1].Lower)
	assert.Equal(t, 0.5, set.StationEfficiency.Bins[1].Upper)

	assert.Equal(t, []Bar{{Label: "1", Value: 3}, {Label: "2", Value: 5}}, set.TruckTrips.Bars)
	assert.Equal(t, []Bar{{Label: "A", Value: 8}}, set.StationUnloads.Bars)
}

func TestBuild_OutOfRangeClamped(t *testing.T) {
	r := &models.Report{
		Trucks:          []models.TruckStats{{TruckID: "1"}, {TruckID: "2"}},
		TruckEfficiency: []float64{-0.1, 1.7},
	}

	set, err := Build(r, DefaultBins, DefaultStyle)
	require.NoError(t, err)

	require.Len(t, set.TruckEfficiency.Bins, DefaultBins)
	assert.Equal(t, 1, set.TruckEfficiency.Bins[0].Count)
	assert.Equal(t, 1, set.TruckEfficiency.Bins[DefaultBins-1].Count)
	assert.Empty(t, set.StationUnloads.Bars)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(&models.Report{}, 0, DefaultStyle)
	assert.Error(t, err)

	_, err = Build(&models.Report{
		Trucks: []models.TruckStats{{TruckID: "1"}},
	}, DefaultBins, DefaultStyle)
	assert.Error(t, err)
}
