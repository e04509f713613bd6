package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokki-app/mokki/models"
)

const forecastPayload = `{
	"current_weather": {"temperature": -7.5, "windspeed": 12.0, "weathercode": 73},
	"daily": {
		"time": ["2026-02-13", "2026-02-14"],
		"temperature_2m_max": [-3.0, -5.0],
		"temperature_2m_min": [-12.0, -15.0],
		"snowfall_sum": [4.2, 0.0],
		"weathercode": [73, 2]
	}
}`

func TestSnowReportFetchesForecast(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/forecast", r.URL.Path)
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, forecastPayload)
	}))
	defer server.Close()

	houseRepo := memberHouseRepo()
	houseRepo.GetByIDFn = func(ctx context.Context, id int) (*models.House, error) {
		return &models.House{ID: id, Latitude: 61.6885, Longitude: 27.2723}, nil
	}

	svc := NewWeatherService(houseRepo, nil, server.Client(), server.URL, discardLogger())

	report, err := svc.SnowReport(context.Background(), 3, 42)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "latitude=61.6885")
	assert.Contains(t, gotQuery, "longitude=27.2723")

	assert.Equal(t, 3, report.HouseID)
	assert.Equal(t, -7.5, report.Current.TemperatureC)
	assert.Equal(t, 73, report.Current.WeatherCode)
	require.Len(t, report.Daily, 2)
	assert.Equal(t, "2026-02-13", report.Daily[0].Date)
	assert.Equal(t, 4.2, report.Daily[0].SnowfallCm)
	assert.Equal(t, -15.0, report.Daily[1].TempMinC)
}

func TestSnowReportRequiresMembership(t *testing.T) {
	houseRepo := memberHouseRepo()
	houseRepo.IsMemberFn = func(ctx context.Context, houseID, userID int) (bool, error) {
		return false, nil
	}
	svc := NewWeatherService(houseRepo, nil, nil, "http://example.invalid", discardLogger())

	_, err := svc.SnowReport(context.Background(), 3, 42)
	assert.ErrorIs(t, err, ErrNotHouseMember)
}

func TestSnowReportUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	houseRepo := memberHouseRepo()
	houseRepo.GetByIDFn = func(ctx context.Context, id int) (*models.House, error) {
		return &models.House{ID: id}, nil
	}
	svc := NewWeatherService(houseRepo, nil, server.Client(), server.URL, discardLogger())

	_, err := svc.SnowReport(context.Background(), 3, 42)
	assert.ErrorContains(t, err, "status 502")
}
