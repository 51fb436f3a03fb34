// Package client is the CLI's thin HTTP layer over the dashboard API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucial707/mineops/cmd/cli/config"
	"github.com/crucial707/mineops/internal/listview"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// maxPages stops FetchAll from looping forever on a misbehaving server.
const maxPages = 1000

// APIError is a non-2xx answer from the dashboard API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// ListPage is the common envelope of list endpoints.
type ListPage[T any] struct {
	listview.Page[T]
	Sort    string `json:"sort"`
	Order   string `json:"order"`
	Warning string `json:"warning"`
	Info    string `json:"info"`
}

// Call sends payload as JSON and decodes the answer into out. The saved
// login token is attached when there is one.
func Call(method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	resp, err := send(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Get is Call for GET requests with query parameters.
func Get(path string, query url.Values, out interface{}) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return Call(http.MethodGet, path, nil, out)
}

// Download copies the body of a GET to w.
func Download(path string, query url.Values, w io.Writer) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	resp, err := send(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(w, resp.Body)
	return err
}

// FetchAll walks every page of a list endpoint and returns the records in
// server order. size is the endpoint's largest accepted page so most lists
// arrive in one request; 0 leaves the server default.
func FetchAll[T any](path string, size int, query url.Values) ([]T, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}

	var all []T
	for page := 1; page <= maxPages; page++ {
		q.Set("page", strconv.Itoa(page))
		var p ListPage[T]
		if err := Get(path, q, &p); err != nil {
			return nil, err
		}
		all = append(all, p.Items...)
		if !p.HasNext {
			return all, nil
		}
	}
	return all, fmt.Errorf("%s: more than %d pages", path, maxPages)
}

func send(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, config.APIURL()+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := config.LoadToken()
	switch {
	case err == nil:
		req.Header.Set("Authorization", "Bearer "+token)
	case !errors.Is(err, config.ErrNotLoggedIn):
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		return nil, apiError(resp)
	}
	return resp, nil
}

func apiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	msg := string(bytes.TrimSpace(data))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		msg = body.Error
		for k, v := range body.Fields {
			msg += fmt.Sprintf("; %s: %s", k, v)
		}
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// ListFlags are the query flags every list command accepts.
type ListFlags struct {
	Query string
	Sort  string
	Page  int
	Size  int
	JSON  bool
}

// Bind registers the flags on cmd.
func (f *ListFlags) Bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Query, "q", "", "Search text")
	cmd.Flags().StringVar(&f.Sort, "sort", "", "Sort as field or field:asc|desc")
	cmd.Flags().IntVar(&f.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&f.Size, "size", 0, "Rows per page (0 = server default)")
	cmd.Flags().BoolVar(&f.JSON, "json", false, "Print the raw JSON response")
}

// Values encodes the flags as list query parameters. A sort the CLI cannot
// parse is passed through untouched so the server reports it.
func (f *ListFlags) Values() url.Values {
	q := listview.Query{Search: f.Query, Size: f.Size}
	if f.Page > 1 {
		q.Page = f.Page
	}
	field, dir, err := listview.ParseSort(f.Sort)
	if err == nil {
		q.SortField, q.Dir = field, dir
	}
	v := q.Values()
	if err != nil {
		v.Set("sort", f.Sort)
	}
	return v
}
