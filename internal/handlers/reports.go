package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/crucial707/mineops/internal/export"
	"github.com/crucial707/mineops/internal/metrics"
	"github.com/crucial707/mineops/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Report types the backend generates.
const (
	ReportShiftLogs   = "shiftLogs"
	ReportSafetyPlans = "safetyPlans"
)

type ReportBackend interface {
	Report(ctx context.Context, reportType, startDate, endDate string) ([]models.ReportRow, error)
}

// ReportHandler fetches generated reports and renders them to PDF.
type ReportHandler struct {
	Backend ReportBackend
}

// reportQuery checks startDate and endDate (YYYY-MM-DD, start not after end).
func reportQuery(r *http.Request) (start, end string, fields map[string]string) {
	fields = map[string]string{}
	start, end = r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate")

	var s, e time.Time
	var err error
	if start == "" {
		fields["startDate"] = "required"
	} else if s, err = time.Parse(time.DateOnly, start); err != nil {
		fields["startDate"] = "must be YYYY-MM-DD"
	}
	if end == "" {
		fields["endDate"] = "required"
	} else if e, err = time.Parse(time.DateOnly, end); err != nil {
		fields["endDate"] = "must be YYYY-MM-DD"
	}
	if len(fields) == 0 && e.Before(s) {
		fields["endDate"] = "must not be before startDate"
	}
	return start, end, fields
}

func (h *ReportHandler) fetch(w http.ResponseWriter, r *http.Request) (string, []models.ReportRow, bool) {
	reportType := chi.URLParam(r, "type")
	start, end, fields := reportQuery(r)
	var verrs validator.ValidationErrors
	if err := validate.Var(reportType, "required,oneof="+ReportShiftLogs+" "+ReportSafetyPlans); errors.As(err, &verrs) {
		fields["type"] = describe(verrs[0])
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return "", nil, false
	}
	rows, err := h.Backend.Report(r.Context(), reportType, start, end)
	if err != nil {
		backendFailure(w, "report", err)
		return "", nil, false
	}
	if rows == nil {
		rows = []models.ReportRow{}
	}
	return fmt.Sprintf("%s report %s to %s", reportType, start, end), rows, true
}

// GetReport answers GET /v1/reports/{type}?startDate&endDate.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	_, rows, ok := h.fetch(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// ExportReport renders the report as a table and writes it as an A4 PDF.
func (h *ReportHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	title, rows, ok := h.fetch(w, r)
	if !ok {
		return
	}

	headers, cells := reportTable(rows)
	var buf bytes.Buffer
	img, err := export.RenderTable(title, headers, cells)
	if err == nil {
		err = export.WritePDF(&buf, img)
	}
	metrics.RecordExport("pdf", err)
	if err != nil {
		slog.Error("reports: export failed", "title", title, "err", err)
		JSONError(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
	w.Write(buf.Bytes())
}

// reportTable flattens opaque rows into a grid. Columns are the sorted
// union of keys; a missing value is blank.
func reportTable(rows []models.ReportRow) ([]string, [][]string) {
	var headers []string
	for _, row := range rows {
		for k := range row {
			if !slices.Contains(headers, k) {
				headers = append(headers, k)
			}
		}
	}
	slices.Sort(headers)
	if len(headers) == 0 {
		headers = []string{"No data"}
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		line := make([]string, len(headers))
		for j, k := range headers {
			if v, ok := row[k]; ok && v != nil {
				line[j] = fmt.Sprint(v)
			}
		}
		cells[i] = line
	}
	return headers, cells
}
