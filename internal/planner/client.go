// Package planner is the programmatic client for the planner API: a typed
// REST client plus a stateful coordinator that mirrors server data locally
// and keeps the mirror consistent through reschedules and bulk shifts.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zapponejosh/ministry-planner/internal/analyze"
	"github.com/zapponejosh/ministry-planner/internal/database"
)

// Client is a typed HTTP client for the planner API.
type Client struct {
	baseURL string
	apiKey  string

	// HTTPClient may be replaced before first use, e.g. in tests.
	HTTPClient *http.Client
}

// NewClient creates a client for the API at baseURL. apiKey may be empty
// when the server runs without auth.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// do performs a request and decodes the envelope's data into out (out may
// be nil for calls whose payload the caller ignores).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode response (status %d): %w", method, path, resp.StatusCode, err)
	}
	if !env.Success {
		msg := "unknown error"
		if env.Error != nil {
			msg = env.Error.Message
		}
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}

// ListSermons fetches the full schedule.
func (c *Client) ListSermons(ctx context.Context) ([]database.Sermon, error) {
	var sermons []database.Sermon
	if err := c.do(ctx, http.MethodGet, "/api/v1/schedule", nil, &sermons); err != nil {
		return nil, err
	}
	return sermons, nil
}

// UpdateSermon replaces a sermon server-side and returns the stored row.
func (c *Client) UpdateSermon(ctx context.Context, s database.Sermon) (*database.Sermon, error) {
	var updated database.Sermon
	path := fmt.Sprintf("/api/v1/schedule/%d", s.ID)
	if err := c.do(ctx, http.MethodPut, path, s, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// BatchUpdateDates applies a batch of sermon date moves atomically.
func (c *Client) BatchUpdateDates(ctx context.Context, updates []database.DateUpdate) error {
	body := map[string]interface{}{"updates": updates}
	return c.do(ctx, http.MethodPost, "/api/v1/schedule/batch-update", body, nil)
}

// ListDevotionLessons fetches all devotion lessons.
func (c *Client) ListDevotionLessons(ctx context.Context) ([]database.DevotionLesson, error) {
	var lessons []database.DevotionLesson
	if err := c.do(ctx, http.MethodGet, "/api/v1/devotions/lessons", nil, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// ListEnglishClasses fetches all English classes.
func (c *Client) ListEnglishClasses(ctx context.Context) ([]database.EnglishClass, error) {
	var classes []database.EnglishClass
	if err := c.do(ctx, http.MethodGet, "/api/v1/english/classes", nil, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// AnalyzeSermon asks the server's analysis endpoint for suggested review
// fields.
func (c *Client) AnalyzeSermon(ctx context.Context, req analyze.Request) (*analyze.Suggestions, error) {
	var suggestions analyze.Suggestions
	if err := c.do(ctx, http.MethodPost, "/api/v1/analyze-sermon", req, &suggestions); err != nil {
		return nil, err
	}
	return &suggestions, nil
}

// cascadeResult is the shared response shape of both cascade endpoints.
type cascadeResult struct {
	Rescheduled int `json:"rescheduled"`
}

// CascadeRescheduleDevotion moves a lesson and ripples its series. Returns
// how many lessons the server moved.
func (c *Client) CascadeRescheduleDevotion(ctx context.Context, lessonID int64, newDate string) (int, error) {
	body := map[string]interface{}{"fromLessonId": lessonID, "newDate": newDate}
	var res cascadeResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/devotions/cascade-reschedule", body, &res); err != nil {
		return 0, err
	}
	return res.Rescheduled, nil
}

// CascadeRescheduleEnglish moves a class and ripples its series.
func (c *Client) CascadeRescheduleEnglish(ctx context.Context, classID int64, newDate string) (int, error) {
	body := map[string]interface{}{"fromClassId": classID, "newDate": newDate}
	var res cascadeResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/english/cascade-reschedule", body, &res); err != nil {
		return 0, err
	}
	return res.Rescheduled, nil
}
