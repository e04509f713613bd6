package models

import "time"

// SnowReport is the forecast shown on a house page: current conditions plus
// a few days of temperature and snowfall.
type SnowReport struct {
	HouseID   int            `json:"house_id"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	FetchedAt time.Time      `json:"fetched_at"`
	Current   CurrentWeather `json:"current"`
	Daily     []DailyWeather `json:"daily"`
}

type CurrentWeather struct {
	TemperatureC float64 `json:"temperature_c"`
	WindSpeedKmh float64 `json:"wind_speed_kmh"`
	WeatherCode  int     `json:"weather_code"`
}

type DailyWeather struct {
	Date        string  `json:"date"`
	TempMaxC    float64 `json:"temp_max_c"`
	TempMinC    float64 `json:"temp_min_c"`
	SnowfallCm  float64 `json:"snowfall_cm"`
	WeatherCode int     `json:"weather_code,omitempty"`
}
