// Package kimai is a thin client for the Kimai timesheet API plus the push
// reconciler that submits consolidated aggregates.
package kimai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// SubmissionError reports a non-2xx response from the Kimai API. Entries of
// the failed aggregate stay unpushed and are retried on the next push run.
type SubmissionError struct {
	Status int
	Body   string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("kimai API error %d: %s", e.Status, e.Body)
}

// Client is an authenticated Kimai API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Kimai client for the given base URL and API token.
// The token is carried as a Bearer credential on every request.
func NewClient(ctx context.Context, baseURL, apiToken string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiToken})
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: oauth2.NewClient(ctx, ts),
	}
}

// Project is a Kimai project.
type Project struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

// Activity is a Kimai activity.
type Activity struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

// Timesheet is the created timesheet returned by the API.
type Timesheet struct {
	ID       int    `json:"id"`
	Project  int    `json:"project"`
	Activity int    `json:"activity"`
	Begin    string `json:"begin"`
	End      string `json:"end"`
}

// TimesheetRequest is the POST /api/timesheets payload.
type TimesheetRequest struct {
	Project     int    `json:"project"`
	Activity    int    `json:"activity"`
	Begin       string `json:"begin"`
	End         string `json:"end"`
	Description string `json:"description,omitempty"`
}

// kimaiTimeLayout is the local-time format Kimai expects, without zone suffix.
const kimaiTimeLayout = "2006-01-02T15:04:05"

// FormatTime renders t the way the timesheet endpoint expects.
func FormatTime(t time.Time) string {
	return t.Format(kimaiTimeLayout)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/"+endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("kimai API request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &SubmissionError{Status: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding kimai response: %w", err)
	}
	return nil
}

// Version fetches the Kimai version, useful as a connectivity check.
func (c *Client) Version(ctx context.Context) (string, error) {
	var v struct {
		Version string `json:"version"`
	}
	if err := c.get(ctx, "version", &v); err != nil {
		return "", err
	}
	return v.Version, nil
}

// Projects lists the visible projects.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.get(ctx, "projects?visible=1", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Activities lists the visible activities.
func (c *Client) Activities(ctx context.Context) ([]Activity, error) {
	var activities []Activity
	if err := c.get(ctx, "activities?visible=1", &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// FindProjectsByName returns projects whose name contains the search term
// or any of its underscore/dash-separated parts. Used to suggest a project
// for a newly seen folder.
func (c *Client) FindProjectsByName(ctx context.Context, search string) ([]Project, error) {
	projects, err := c.Projects(ctx)
	if err != nil {
		return nil, err
	}
	terms := strings.FieldsFunc(strings.ToLower(search), func(r rune) bool {
		return r == '_' || r == '-'
	})

	var matches []Project
	for _, p := range projects {
		name := strings.ToLower(p.Name)
		if strings.Contains(name, strings.ToLower(search)) {
			matches = append(matches, p)
			continue
		}
		for _, t := range terms {
			if len(t) > 2 && strings.Contains(name, t) {
				matches = append(matches, p)
				break
			}
		}
	}
	return matches, nil
}

// CreateTimesheet submits one timesheet entry and returns its external ID.
func (c *Client) CreateTimesheet(ctx context.Context, req TimesheetRequest) (Timesheet, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Timesheet{}, fmt.Errorf("marshalling timesheet: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/timesheets", bytes.NewReader(payload))
	if err != nil {
		return Timesheet{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Timesheet{}, fmt.Errorf("kimai API request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return Timesheet{}, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Timesheet{}, &SubmissionError{Status: resp.StatusCode, Body: string(body)}
	}

	var ts Timesheet
	if err := json.Unmarshal(body, &ts); err != nil {
		return Timesheet{}, fmt.Errorf("decoding timesheet response: %w", err)
	}
	return ts, nil
}

// IsSubmissionError reports whether err is a rejected or failed submission.
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}
