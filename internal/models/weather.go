package models

import (
	"encoding/json"
	"time"
)

// Alert is a real-time safety alert raised by a sensor.
type Alert struct {
	ID         string    `json:"_id"`
	SensorType string    `json:"sensorType"`
	Level      string    `json:"level"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// WeatherReport combines current conditions and the forecast for a city.
// Both payloads are passed through from the backend untouched.
type WeatherReport struct {
	City     string          `json:"city"`
	Current  json.RawMessage `json:"current"`
	Forecast json.RawMessage `json:"forecast"`
	Warning  string          `json:"warning,omitempty"`
}

// ReportRow is one opaque record of a generated report.
type ReportRow map[string]any
