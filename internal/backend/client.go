// Package backend is the typed client for the operations REST backend that
// owns users, shift logs, safety plans, reports, weather and sensor alerts.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"github.com/crucial707/mineops/internal/metrics"
	"github.com/crucial707/mineops/internal/models"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL (e.g. http://localhost:5000/api) whose
// requests are bounded by timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// ==========================
// Users
// ==========================

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, "list_users", http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, in models.UserInput) error {
	return c.do(ctx, "create_user", http.MethodPost, "/users", in, nil)
}

func (c *Client) UpdateUser(ctx context.Context, id int, in models.UserInput) error {
	return c.do(ctx, "update_user", http.MethodPut, "/users/"+strconv.Itoa(id), in, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.do(ctx, "delete_user", http.MethodDelete, "/users/"+strconv.Itoa(id), nil, nil)
}

// BulkUserAction applies action (activate, deactivate or delete) to ids.
func (c *Client) BulkUserAction(ctx context.Context, action string, ids []int) error {
	body := struct {
		Action  string `json:"action"`
		UserIDs []int  `json:"userIds"`
	}{action, ids}
	return c.do(ctx, "bulk_users", http.MethodPost, "/users/bulk-action", body, nil)
}

// ==========================
// Shift logs & safety plans
// ==========================

// PreviousShiftLogs returns the backend's earlier handovers as opaque records.
func (c *Client) PreviousShiftLogs(ctx context.Context) ([]json.RawMessage, error) {
	var logs []json.RawMessage
	if err := c.do(ctx, "previous_logs", http.MethodGet, "/previous-logs", nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// SubmitShiftLog posts the handover as multipart form data.
func (c *Client) SubmitShiftLog(ctx context.Context, log models.ShiftLog, file *models.Attachment) error {
	fields := [][2]string{
		{"shiftDetails", log.ShiftDetails},
		{"safetyIssues", log.SafetyIssues},
		{"nextShiftTasks", log.NextShiftTasks},
		{"additionalNotes", log.AdditionalNotes},
	}
	return c.multipart(ctx, "submit_shift_log", "/shift-logs", fields, file)
}

// SubmitSafetyPlan posts the rows as the smpData JSON field.
func (c *Client) SubmitSafetyPlan(ctx context.Context, rows []models.SafetyPlanRow, file *models.Attachment) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.multipart(ctx, "submit_safety_plan", "/safety-plan", [][2]string{{"smpData", string(data)}}, file)
}

// ==========================
// Reports, weather, alerts
// ==========================

func (c *Client) Report(ctx context.Context, reportType, startDate, endDate string) ([]models.ReportRow, error) {
	q := url.Values{}
	q.Set("startDate", startDate)
	q.Set("endDate", endDate)

	var rows []models.ReportRow
	path := "/reports/" + url.PathEscape(reportType) + "?" + q.Encode()
	if err := c.do(ctx, "report", http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) Weather(ctx context.Context, city string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "weather", http.MethodGet, "/weather/"+url.PathEscape(city), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) Forecast(ctx context.Context, city string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "forecast", http.MethodGet, "/weather/forecast/"+url.PathEscape(city), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) Alerts(ctx context.Context) ([]models.Alert, error) {
	var alerts []models.Alert
	if err := c.do(ctx, "alerts", http.MethodGet, "/alerts", nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// ==========================
// Transport
// ==========================

func (c *Client) do(ctx context.Context, op, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, op, out)
}

func (c *Client) multipart(ctx context.Context, op, path string, fields [][2]string, file *models.Attachment) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Filename))
		h.Set("Content-Type", file.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := part.Write(file.Data); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(req, op, nil)
}

func (c *Client) send(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IncBackendErrors(op)
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IncBackendErrors(op)
		return fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		metrics.IncBackendErrors(op)
		return &APIError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", req.Method, req.URL.Path, err)
		}
	}
	return nil
}
