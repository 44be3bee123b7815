package rosterclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"adminpanel/internal/model"
)

// maxErrorBody caps how much of a failed response ends up in an error.
const maxErrorBody = 512

// StatusError is returned when the roster service answers outside 2xx.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("roster service %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client calls the external roster service that owns students and teams.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client with the given request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListStudents fetches the full student collection.
func (c *Client) ListStudents(ctx context.Context) ([]model.Student, error) {
	var out []model.Student
	if err := c.getJSON(ctx, "/students", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Student{}
	}
	return out, nil
}

// ListTeams fetches the full team collection.
func (c *Client) ListTeams(ctx context.Context) ([]model.Team, error) {
	var out []model.Team
	if err := c.getJSON(ctx, "/teams", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Team{}
	}
	return out, nil
}

// UpdateStudentStatus sets one student's status. The response body is ignored.
func (c *Client) UpdateStudentStatus(ctx context.Context, id string, status model.Status) error {
	if id == "" {
		return fmt.Errorf("student id required")
	}
	body, err := json.Marshal(map[string]model.Status{"status": status})
	if err != nil {
		return err
	}

	path := "/students/" + url.PathEscape(id) + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("roster service request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, http.MethodPut, path); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("roster service request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, http.MethodGet, path); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func checkStatus(resp *http.Response, method, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Method: method,
		Path:   path,
		Code:   resp.StatusCode,
		Body:   strings.TrimSpace(string(bodyBytes)),
	}
}
