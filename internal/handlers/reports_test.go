package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crucial707/mineops/internal/backend"
	"github.com/crucial707/mineops/internal/models"
)

type fakeReports struct {
	rows  []models.ReportRow
	err   error
	calls []string
}

func (f *fakeReports) Report(_ context.Context, reportType, start, end string) ([]models.ReportRow, error) {
	f.calls = append(f.calls, reportType+" "+start+" "+end)
	return f.rows, f.err
}

func TestReportQuery(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		fields map[string]string
	}{
		{"valid", "?startDate=2024-01-01&endDate=2024-01-31", map[string]string{}},
		{"same day", "?startDate=2024-01-01&endDate=2024-01-01", map[string]string{}},
		{"missing", "", map[string]string{"startDate": "required", "endDate": "required"}},
		{"bad format", "?startDate=01/02/2024&endDate=2024-01-31", map[string]string{"startDate": "must be YYYY-MM-DD"}},
		{"reversed", "?startDate=2024-02-01&endDate=2024-01-31", map[string]string{"endDate": "must not be before startDate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, fields := reportQuery(httptest.NewRequest("GET", "/v1/reports/production"+tt.query, nil))
			if len(fields) != len(tt.fields) {
				t.Fatalf("fields: got %v, want %v", fields, tt.fields)
			}
			for k, v := range tt.fields {
				if fields[k] != v {
					t.Errorf("fields[%q]: got %q, want %q", k, fields[k], v)
				}
			}
		})
	}
}

func TestGetReport(t *testing.T) {
	fb := &fakeReports{rows: []models.ReportRow{{"date": "2024-01-02", "tonnes": 120.0}}}
	h := &ReportHandler{Backend: fb}

	rr := httptest.NewRecorder()
	h.GetReport(rr, requestWithChiURLParams("GET", "/v1/reports/shiftLogs?startDate=2024-01-01&endDate=2024-01-31",
		nil, map[string]string{"type": "shiftLogs"}))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}
	var rows []models.ReportRow
	decodeBody(t, rr, &rows)
	if len(rows) != 1 || rows[0]["tonnes"] != 120.0 {
		t.Errorf("rows: got %v", rows)
	}
	if len(fb.calls) != 1 || fb.calls[0] != "shiftLogs 2024-01-01 2024-01-31" {
		t.Errorf("backend calls: %v", fb.calls)
	}
}

func TestGetReport_InvalidRangeSkipsBackend(t *testing.T) {
	fb := &fakeReports{}
	h := &ReportHandler{Backend: fb}

	rr := httptest.NewRecorder()
	h.GetReport(rr, requestWithChiURLParams("GET", "/v1/reports/safetyPlans?startDate=2024-03-01&endDate=2024-02-01",
		nil, map[string]string{"type": "safetyPlans"}))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
	if len(fb.calls) != 0 {
		t.Errorf("backend should not be called, got %v", fb.calls)
	}
}

func TestGetReport_BackendStatusPassesThrough(t *testing.T) {
	h := &ReportHandler{Backend: &fakeReports{err: &backend.APIError{Status: http.StatusNotFound, Body: "unknown report"}}}

	rr := httptest.NewRecorder()
	h.GetReport(rr, requestWithChiURLParams("GET", "/v1/reports/shiftLogs?startDate=2024-01-01&endDate=2024-01-02",
		nil, map[string]string{"type": "shiftLogs"}))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestGetReport_UnknownTypeSkipsBackend(t *testing.T) {
	fb := &fakeReports{}
	h := &ReportHandler{Backend: fb}

	rr := httptest.NewRecorder()
	h.GetReport(rr, requestWithChiURLParams("GET", "/v1/reports/production?startDate=2024-01-01&endDate=2024-01-02",
		nil, map[string]string{"type": "production"}))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	var out validationBody
	decodeBody(t, rr, &out)
	if out.Fields["type"] == "" {
		t.Errorf("missing field error for type: %+v", out.Fields)
	}
	if len(fb.calls) != 0 {
		t.Errorf("backend should not be called, got %v", fb.calls)
	}
}

func TestExportReport_PDF(t *testing.T) {
	h := &ReportHandler{Backend: &fakeReports{rows: []models.ReportRow{
		{"shift": "A", "incidents": 0.0},
		{"shift": "B", "notes": "dust"},
	}}}

	rr := httptest.NewRecorder()
	h.ExportReport(rr, requestWithChiURLParams("GET", "/v1/reports/safetyPlans/export.pdf?startDate=2024-01-01&endDate=2024-01-02",
		nil, map[string]string{"type": "safetyPlans"}))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type: got %q", ct)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
}

func TestReportTable(t *testing.T) {
	headers, cells := reportTable([]models.ReportRow{
		{"shift": "A", "incidents": 2.0},
		{"shift": "B", "notes": "dust"},
	})
	want := []string{"incidents", "notes", "shift"}
	if len(headers) != len(want) {
		t.Fatalf("headers: got %v", headers)
	}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("headers[%d]: got %q, want %q", i, headers[i], want[i])
		}
	}
	if cells[0][0] != "2" || cells[0][1] != "" || cells[1][1] != "dust" {
		t.Errorf("cells: got %v", cells)
	}

	headers, cells = reportTable(nil)
	if len(headers) != 1 || headers[0] != "No data" || len(cells) != 0 {
		t.Errorf("empty report: got %v %v", headers, cells)
	}
}
