package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bashkirian/haulstats/internal/aggregator"
	"github.com/bashkirian/haulstats/internal/charts"
	"github.com/bashkirian/haulstats/internal/loader"
	"github.com/bashkirian/haulstats/internal/storage"
	"github.com/bashkirian/haulstats/pkg/models"
)

const scenarioLog = `{"simulation_duration":20,"events":[
{"truck_id":1,"type":"Mine","start_time":0,"end_time":10},
{"truck_id":1,"type":"Unload","start_time":10,"end_time":15,"station_id":"A"}]}`

func setupRouter() http.Handler {
	store := storage.NewInMemoryStorage()
	agg := aggregator.New(store)
	h := New(agg, loader.Options{}, charts.DefaultBins, charts.DefaultStyle)

	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func postReport(t *testing.T, h http.Handler, body string) models.Report {
	t.Helper()
	w := do(t, h, http.MethodPost, "/reports?name=scenario.json", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var report models.Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	return report
}

func TestHandler_HandlePostReport(t *testing.T) {
	r := setupRouter()

	report := postReport(t, r, scenarioLog)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "scenario.json", report.Source)
	assert.Equal(t, models.ShapeDocument, report.Shape)
	assert.Equal(t, 20.0, report.SimulationDuration)
	assert.Equal(t, []float64{0.75}, report.TruckEfficiency)
	assert.Equal(t, []float64{0.25}, report.StationEfficiency)
	require.Len(t, report.Trucks, 1)
	assert.Equal(t, int64(1), report.Trucks[0].TripsCompleted)
}

func TestHandler_HandlePostReport_Errors(t *testing.T) {
	r := setupRouter()

	cases := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"empty", "/reports", "", http.StatusUnprocessableEntity},
		{"bad shape", "/reports", `{"foo":1}`, http.StatusBadRequest},
		{"bad format", "/reports?format=xml", scenarioLog, http.StatusBadRequest},
		{"zero duration", "/reports", `{"simulation_duration":0,"events":[{"truck_id":1,"type":"Mine","start_time":0,"end_time":1}]}`, http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, tc.target, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())

			var resp map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestHandler_HandlePostReport_ForcedLines(t *testing.T) {
	r := setupRouter()

	body := "{\"truck_id\":1,\n{\"truck_id\":1,\"type\":\"Mine\",\"start_time\":0,\"end_time\":10}\n"
	w := do(t, r, http.MethodPost, "/reports?format=lines", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var report models.Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	assert.Equal(t, 1, report.EventCount)
	assert.Equal(t, 1, report.SkippedCount)
	assert.Equal(t, []float64{1.0}, report.TruckEfficiency)
}

func TestHandler_HandleGetReport(t *testing.T) {
	r := setupRouter()
	created := postReport(t, r, scenarioLog)

	w := do(t, r, http.MethodGet, "/reports/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Trucks, got.Trucks)

	w = do(t, r, http.MethodGet, "/reports/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_HandleListReports(t *testing.T) {
	r := setupRouter()
	postReport(t, r, scenarioLog)
	postReport(t, r, scenarioLog)

	w := do(t, r, http.MethodGet, "/reports", "")
	require.Equal(t, http.StatusOK, w.Code)

	var headers []models.ReportHeader
	require.NoError(t, json.NewDecoder(w.Body).Decode(&headers))
	assert.Len(t, headers, 2)
}

func TestHandler_HandleGetCharts(t *testing.T) {
	r := setupRouter()
	created := postReport(t, r, scenarioLog)

	w := do(t, r, http.MethodGet, "/reports/"+created.ID+"/charts", "")
	require.Equal(t, http.StatusOK, w.Code)

	var set charts.Set
	require.NoError(t, json.NewDecoder(w.Body).Decode(&set))
	assert.Equal(t, created.ID, set.ReportID)
	assert.Len(t, set.TruckEfficiency.Bins, charts.DefaultBins)
	assert.Equal(t, []charts.Bar{{Label: "1", Value: 1}}, set.TruckTrips.Bars)
	assert.Equal(t, []charts.Bar{{Label: "A", Value: 1}}, set.StationUnloads.Bars)

	w = do(t, r, http.MethodGet, "/reports/missing/charts", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_HandleHealth(t *testing.T) {
	r := setupRouter()

	w := do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "ok", response["status"])
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	r := setupRouter()

	w := do(t, r, http.MethodDelete, "/reports", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
