package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mokki-app/mokki/models"
	"github.com/mokki-app/mokki/repositories"
	"github.com/redis/go-redis/v9"
)

const weatherCacheTTL = 15 * time.Minute

type WeatherService interface {
	// SnowReport returns the forecast for the house location, served from
	// the redis cache when fresh.
	SnowReport(ctx context.Context, houseID, currentUserID int) (*models.SnowReport, error)
}

type weatherService struct {
	houseRepo  repositories.HouseRepository
	cache      *redis.Client
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

func NewWeatherService(
	houseRepo repositories.HouseRepository,
	cache *redis.Client,
	httpClient *http.Client,
	baseURL string,
	logger *slog.Logger,
) WeatherService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &weatherService{
		houseRepo:  houseRepo,
		cache:      cache,
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// forecastResponse mirrors the open-meteo forecast payload.
type forecastResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
	Daily struct {
		Time           []string  `json:"time"`
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
		SnowfallSum    []float64 `json:"snowfall_sum"`
		WeatherCode    []int     `json:"weathercode"`
	} `json:"daily"`
}

func (s *weatherService) SnowReport(ctx context.Context, houseID, currentUserID int) (*models.SnowReport, error) {
	ok, err := s.houseRepo.IsMember(ctx, houseID, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("membership check: %w", err)
	}
	if !ok {
		return nil, ErrNotHouseMember
	}

	cacheKey := fmt.Sprintf("weather:house:%d", houseID)
	if s.cache != nil {
		cached, cacheErr := s.cache.Get(ctx, cacheKey).Bytes()
		if cacheErr == nil {
			var report models.SnowReport
			if json.Unmarshal(cached, &report) == nil {
				return &report, nil
			}
		} else if !errors.Is(cacheErr, redis.Nil) {
			s.logger.Warn("weather cache read failed", slog.Any("error", cacheErr))
		}
	}

	house, err := s.houseRepo.GetByID(ctx, houseID)
	if err != nil {
		if errors.Is(err, repositories.ErrHouseNotFound) {
			return nil, ErrHouseNotFound
		}
		return nil, fmt.Errorf("get house %d: %w", houseID, err)
	}

	report, err := s.fetchForecast(ctx, house)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, marshalErr := json.Marshal(report); marshalErr == nil {
			if setErr := s.cache.Set(ctx, cacheKey, payload, weatherCacheTTL).Err(); setErr != nil {
				s.logger.Warn("weather cache write failed", slog.Any("error", setErr))
			}
		}
	}

	return report, nil
}

func (s *weatherService) fetchForecast(ctx context.Context, house *models.House) (*models.SnowReport, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", house.Latitude))
	params.Set("longitude", fmt.Sprintf("%.4f", house.Longitude))
	params.Set("current_weather", "true")
	params.Set("daily", "temperature_2m_max,temperature_2m_min,snowfall_sum,weathercode")
	params.Set("timezone", "UTC")

	endpoint := fmt.Sprintf("%s/v1/forecast?%s", s.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build forecast request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast API returned status %d", resp.StatusCode)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}

	report := &models.SnowReport{
		HouseID:   house.ID,
		Latitude:  house.Latitude,
		Longitude: house.Longitude,
		FetchedAt: time.Now().UTC(),
		Current: models.CurrentWeather{
			TemperatureC: payload.CurrentWeather.Temperature,
			WindSpeedKmh: payload.CurrentWeather.WindSpeed,
			WeatherCode:  payload.CurrentWeather.WeatherCode,
		},
	}

	for i, day := range payload.Daily.Time {
		daily := models.DailyWeather{Date: day}
		if i < len(payload.Daily.TemperatureMax) {
			daily.TempMaxC = payload.Daily.TemperatureMax[i]
		}
		if i < len(payload.Daily.TemperatureMin) {
			daily.TempMinC = payload.Daily.TemperatureMin[i]
		}
		if i < len(payload.Daily.SnowfallSum) {
			daily.SnowfallCm = payload.Daily.SnowfallSum[i]
		}
		if i < len(payload.Daily.WeatherCode) {
			daily.WeatherCode = payload.Daily.WeatherCode[i]
		}
		report.Daily = append(report.Daily, daily)
	}

	return report, nil
}
