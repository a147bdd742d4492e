package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bashkirian/haulstats/internal/charts"
	"github.com/bashkirian/haulstats/internal/config"
	"github.com/bashkirian/haulstats/pkg/models"
)

func testConfig(driver, dsn string) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: "0"},
		Storage: config.StorageConfig{Driver: driver, DSN: dsn},
		Loader:  config.LoaderConfig{Format: "auto", DefaultDuration: 4320},
		Charts:  config.ChartsConfig{Bins: charts.DefaultBins, Colors: charts.DefaultStyle},
	}
}

func TestReportFlow(t *testing.T) {
	for _, driver := range []string{"memory", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			srv, err := NewServer(testConfig(driver, ":memory:"))
			require.NoError(t, err)

			ts := httptest.NewServer(srv.Handler())
			defer ts.Close()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				assert.NoError(t, srv.Shutdown(ctx))
			}()

			client := &http.Client{Timeout: 5 * time.Second}

			// 1. Отправляем журнал в виде голого списка
			body := `[{"truck_id":1,"type":"Mine","start_time":0,"end_time":2160},
				{"truck_id":1,"type":"Unload","start_time":2160,"end_time":2592,"station_id":0}]`
			resp, err := client.Post(ts.URL+"/reports?name=list.json", "application/json", strings.NewReader(body))
			require.NoError(t, err)
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			var created models.Report
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
			resp.Body.Close()

			assert.Equal(t, 4320.0, created.SimulationDuration)
			assert.Equal(t, []float64{0.6}, created.TruckEfficiency)
			assert.Equal(t, []float64{0.1}, created.StationEfficiency)

			// 2. Читаем его обратно
			resp, err = client.Get(ts.URL + "/reports/" + created.ID)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var got models.Report
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			resp.Body.Close()
			assert.Equal(t, created.Stations, got.Stations)

			// 3. Health
			resp, err = client.Get(ts.URL + "/health")
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			resp.Body.Close()
		})
	}
}

func TestNewServer_UnknownDriver(t *testing.T) {
	_, err := NewServer(testConfig("redis", ""))
	assert.Error(t, err)
}

func TestNewServer_BadLoaderFormat(t *testing.T) {
	cfg := testConfig("memory", "")
	cfg.Loader.Format = "xml"

	_, err := NewServer(cfg)
	assert.Error(t, err)
}
