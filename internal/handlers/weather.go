package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/crucial707/mineops/internal/models"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

type WeatherBackend interface {
	Weather(ctx context.Context, city string) (json.RawMessage, error)
	Forecast(ctx context.Context, city string) (json.RawMessage, error)
	Alerts(ctx context.Context) ([]models.Alert, error)
}

// WeatherHandler serves site weather and sensor alerts.
type WeatherHandler struct {
	Backend WeatherBackend
}

// Weather fetches current conditions and the forecast in parallel. A
// missing forecast degrades to null with a warning; missing current
// conditions fail the request.
func (h *WeatherHandler) Weather(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(chi.URLParam(r, "city"))
	if city == "" {
		JSONValidationError(w, "validation failed", map[string]string{"city": "required"}, http.StatusBadRequest)
		return
	}

	report := models.WeatherReport{City: city}
	var forecastErr error

	var g errgroup.Group
	g.Go(func() error {
		var err error
		report.Current, err = h.Backend.Weather(r.Context(), city)
		return err
	})
	g.Go(func() error {
		report.Forecast, forecastErr = h.Backend.Forecast(r.Context(), city)
		return nil
	})
	if err := g.Wait(); err != nil {
		backendFailure(w, "weather", err)
		return
	}

	if forecastErr != nil {
		slog.Warn("weather: forecast unavailable", "city", city, "err", forecastErr)
		report.Forecast = nil
		report.Warning = "Forecast unavailable."
	}
	writeJSON(w, http.StatusOK, report)
}

// Alerts returns sensor alerts, newest first.
func (h *WeatherHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.Backend.Alerts(r.Context())
	if err != nil {
		backendFailure(w, "alerts", err)
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	slices.SortStableFunc(alerts, func(a, b models.Alert) int { return b.Timestamp.Compare(a.Timestamp) })
	writeJSON(w, http.StatusOK, alerts)
}
