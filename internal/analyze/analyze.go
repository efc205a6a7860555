// Package analyze calls the external sermon-analysis service and merges its
// suggestions into existing review metadata. The service itself is a black
// box; this package only owns the transport and the merge rule.
package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrDisabled is returned when no upstream analyzer is configured.
var ErrDisabled = errors.New("sermon analysis is not configured")

// Options carries the vocabularies the analyzer may pick suggestions from.
type Options struct {
	Series      []string `json:"series"`
	Themes      []string `json:"themes"`
	Audiences   []string `json:"audiences"`
	Seasons     []string `json:"seasons"`
	LessonTypes []string `json:"lessonTypes"`
	Hashtags    []string `json:"hashtags"`
}

// Request is the analysis input: the sermon text plus the option lists.
type Request struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Options Options `json:"options"`
}

// Suggestions is the analyzer's proposed field values. Empty fields mean
// "no suggestion".
type Suggestions struct {
	Theme       string   `json:"theme,omitempty"`
	Audience    string   `json:"audience,omitempty"`
	Season      string   `json:"season,omitempty"`
	LessonType  string   `json:"lessonType,omitempty"`
	PrimaryText string   `json:"primaryText,omitempty"`
	KeyTakeaway string   `json:"keyTakeaway,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty"`
}

// Analyzer posts analysis requests to a configured upstream.
type Analyzer struct {
	url    string
	client *http.Client
}

// New creates an Analyzer for the given upstream URL. An empty URL yields
// a disabled analyzer whose Analyze always returns ErrDisabled.
func New(url string) *Analyzer {
	return &Analyzer{
		url:    url,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Analyze submits the sermon text and returns the upstream's suggestions.
// Failures are retryable and isolated: they never affect other state.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Suggestions, error) {
	if a.url == "" {
		return nil, ErrDisabled
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call analyzer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analyzer returned status %d", resp.StatusCode)
	}

	var suggestions Suggestions
	if err := json.NewDecoder(resp.Body).Decode(&suggestions); err != nil {
		return nil, fmt.Errorf("decode analyzer response: %w", err)
	}
	return &suggestions, nil
}

// Merge overlays suggested values onto existing ones. Existing values
// always win: a suggestion only fills a field that is currently empty.
func Merge(existing, suggested Suggestions) Suggestions {
	out := existing
	if out.Theme == "" {
		out.Theme = suggested.Theme
	}
	if out.Audience == "" {
		out.Audience = suggested.Audience
	}
	if out.Season == "" {
		out.Season = suggested.Season
	}
	if out.LessonType == "" {
		out.LessonType = suggested.LessonType
	}
	if out.PrimaryText == "" {
		out.PrimaryText = suggested.PrimaryText
	}
	if out.KeyTakeaway == "" {
		out.KeyTakeaway = suggested.KeyTakeaway
	}
	if len(out.Hashtags) == 0 {
		out.Hashtags = suggested.Hashtags
	}
	return out
}
