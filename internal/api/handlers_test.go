package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zapponejosh/ministry-planner/internal/analyze"
	"github.com/zapponejosh/ministry-planner/internal/config"
	"github.com/zapponejosh/ministry-planner/internal/database"
	"github.com/zapponejosh/ministry-planner/internal/holiday"
)

// =============================================================================
// TEST SETUP HELPERS
// =============================================================================

// testEnv sets up a complete test environment with database, holidays,
// config, and the full router.
type testEnv struct {
	db       *database.DB
	handlers *Handlers
	router   http.Handler
}

// setupTest creates a fresh test environment. analyzerURL may be empty to
// leave analysis disabled.
func setupTest(t *testing.T, analyzerURL string) *testEnv {
	t.Helper()

	dbCfg := database.Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))

	db, err := database.Open(dbCfg, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	store := holiday.NewStore(filepath.Join(t.TempDir(), "custom.json"))
	holidays := holiday.NewService(store, nil, logger)

	cfg := &config.Config{
		Port:         8080,
		Env:          config.EnvDevelopment,
		DatabasePath: ":memory:",
		LogLevel:     "error",
		LogFormat:    "text",
	}

	handlers := NewHandlers(db, holidays, analyze.New(analyzerURL), cfg, logger)
	router := SetupRoutes(handlers, cfg, logger)

	return &testEnv{db: db, handlers: handlers, router: router}
}

// makeRequest is a helper to make HTTP requests with optional API key
func makeRequest(method, path string, body interface{}, apiKey string) *http.Request {
	var bodyReader io.Reader
	if body != nil {
		jsonData, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonData)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	return req
}

func (env *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// parseResponse parses JSON response
func parseResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v, body: %s", err, rr.Body.String())
	}
}

func dataAs(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	parseResponse(t, rr, &resp)
	if !resp.Success {
		t.Fatalf("response not successful: %s", rr.Body.String())
	}
	if err := json.Unmarshal(resp.Data, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func (env *testEnv) createSermon(t *testing.T, name, date string) database.Sermon {
	t.Helper()
	body := map[string]interface{}{"name": name}
	if date != "" {
		body["sermon_date"] = date
	}
	rr := env.serve(makeRequest("POST", "/api/v1/schedule", body, ""))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create sermon: status %d: %s", rr.Code, rr.Body.String())
	}
	var sermon database.Sermon
	dataAs(t, rr, &sermon)
	return sermon
}

// =============================================================================
// HEALTH AND SCHEDULE
// =============================================================================

func TestHealthCheck(t *testing.T) {
	env := setupTest(t, "")

	rr := env.serve(makeRequest("GET", "/health", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestCreateSermon_Success(t *testing.T) {
	env := setupTest(t, "")

	sermon := env.createSermon(t, "Opening Sermon", "2025-06-01")
	if sermon.ID == 0 {
		t.Error("sermon id not assigned")
	}
	if sermon.Status != database.StatusDraft {
		t.Errorf("status = %s, want draft", sermon.Status)
	}
}

func TestCreateSermon_Validation(t *testing.T) {
	env := setupTest(t, "")

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing name", map[string]interface{}{"preacher": "Josh"}},
		{"bad date", map[string]interface{}{"name": "X", "sermon_date": "June 1st"}},
		{"bad status", map[string]interface{}{"name": "X", "status": "percolating"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.serve(makeRequest("POST", "/api/v1/schedule", tt.body, ""))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestListSchedule_OrdersUnscheduledLast(t *testing.T) {
	env := setupTest(t, "")

	env.createSermon(t, "Dateless", "")
	env.createSermon(t, "Second", "2025-06-08")
	env.createSermon(t, "First", "2025-06-01")

	rr := env.serve(makeRequest("GET", "/api/v1/schedule", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var sermons []database.Sermon
	dataAs(t, rr, &sermons)
	if len(sermons) != 3 {
		t.Fatalf("got %d sermons", len(sermons))
	}
	if sermons[0].Name != "First" || sermons[2].Name != "Dateless" {
		t.Errorf("order: %s, %s, %s", sermons[0].Name, sermons[1].Name, sermons[2].Name)
	}
}

func TestUpdateSermon_NotFound(t *testing.T) {
	env := setupTest(t, "")

	body := map[string]interface{}{"name": "Ghost"}
	rr := env.serve(makeRequest("PUT", "/api/v1/schedule/9999", body, ""))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestBatchUpdate_RollsBackOnBadID(t *testing.T) {
	env := setupTest(t, "")

	sermon := env.createSermon(t, "Anchored", "2025-06-01")

	body := map[string]interface{}{
		"updates": []map[string]interface{}{
			{"id": sermon.ID, "sermon_date": "2025-06-08"},
			{"id": 9999, "sermon_date": "2025-06-15"},
		},
	}
	rr := env.serve(makeRequest("POST", "/api/v1/schedule/batch-update", body, ""))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}

	// Nothing moved.
	stored, err := env.db.GetSermon(context.Background(), sermon.ID)
	if err != nil {
		t.Fatal(err)
	}
	if *stored.Date != "2025-06-01" {
		t.Errorf("partial batch applied: %s", *stored.Date)
	}
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestGetHolidays_ByDate(t *testing.T) {
	env := setupTest(t, "")

	rr := env.serve(makeRequest("GET", "/api/v1/holidays?date=2025-12-25", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var holidays []holiday.Calculated
	dataAs(t, rr, &holidays)
	if len(holidays) != 1 || holidays[0].ID != "christmas" {
		t.Errorf("got %+v", holidays)
	}
}

func TestGetHolidays_ParamValidation(t *testing.T) {
	env := setupTest(t, "")

	tests := []struct {
		name string
		path string
	}{
		{"neither param", "/api/v1/holidays"},
		{"both params", "/api/v1/holidays?date=2025-12-25&week=2025-W52"},
		{"bad date", "/api/v1/holidays?date=christmas"},
		{"bad week", "/api/v1/holidays?week=52"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.serve(makeRequest("GET", tt.path, nil, ""))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestGetUpcomingHolidays_WeeksValidation(t *testing.T) {
	env := setupTest(t, "")

	rr := env.serve(makeRequest("GET", "/api/v1/holidays/upcoming?weeks=0", nil, ""))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("weeks=0: status = %d, want 400", rr.Code)
	}

	rr = env.serve(makeRequest("GET", "/api/v1/holidays/upcoming?weeks=6", nil, ""))
	if rr.Code != http.StatusOK {
		t.Errorf("weeks=6: status = %d, want 200", rr.Code)
	}
}

func TestCustomHoliday_CreateAndDelete(t *testing.T) {
	env := setupTest(t, "")

	rule := holiday.Rule{
		Name:    "Church Picnic",
		Emoji:   "🧺",
		Type:    holiday.TypeRelative,
		Month:   time.July,
		Weekday: time.Sunday,
		Nth:     2,
	}

	rr := env.serve(makeRequest("POST", "/api/v1/holidays/custom", rule, ""))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	var created holiday.Rule
	dataAs(t, rr, &created)
	if !strings.HasPrefix(created.ID, "custom-") {
		t.Errorf("id = %q, want custom- prefix", created.ID)
	}

	// It resolves: 2nd Sunday of July 2025 is the 13th.
	rr = env.serve(makeRequest("GET", "/api/v1/holidays?date=2025-07-13", nil, ""))
	var resolved []holiday.Calculated
	dataAs(t, rr, &resolved)
	if len(resolved) != 1 || resolved[0].ID != created.ID {
		t.Errorf("custom holiday not resolvable: %+v", resolved)
	}

	rr = env.serve(makeRequest("DELETE", "/api/v1/holidays/custom/"+created.ID, nil, ""))
	if rr.Code != http.StatusOK {
		t.Errorf("delete status = %d", rr.Code)
	}

	rr = env.serve(makeRequest("GET", "/api/v1/holidays?date=2025-07-13", nil, ""))
	dataAs(t, rr, &resolved)
	if len(resolved) != 0 {
		t.Errorf("deleted holiday still resolves")
	}
}

// =============================================================================
// CALENDAR
// =============================================================================

func TestGetMonthGrid(t *testing.T) {
	env := setupTest(t, "")

	env.createSermon(t, "Christmas Sermon", "2025-12-25")

	rr := env.serve(makeRequest("GET", "/api/v1/calendar/2025/12", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var view MonthView
	dataAs(t, rr, &view)
	if view.Year != 2025 || view.Month != 12 {
		t.Fatalf("view header: %+v", view)
	}

	var christmas *GridDay
	for _, week := range view.Weeks {
		for _, day := range week.Days {
			if day != nil && day.Date == "2025-12-25" {
				christmas = day
			}
		}
	}
	if christmas == nil {
		t.Fatal("December 25 missing from grid")
	}
	if len(christmas.Events) != 1 || christmas.Events[0].Title != "Christmas Sermon" {
		t.Errorf("events = %+v", christmas.Events)
	}
	if christmas.Holiday == nil || christmas.Holiday.ID != "christmas" {
		t.Errorf("holiday badge missing: %+v", christmas.Holiday)
	}

	// Dec 1 2025 is a Monday: no leading placeholders in the first row.
	if view.Weeks[0].Days[0] == nil || view.Weeks[0].Days[0].Date != "2025-12-01" {
		t.Error("first cell should be December 1")
	}
}

func TestGetMonthGrid_BadParams(t *testing.T) {
	env := setupTest(t, "")

	rr := env.serve(makeRequest("GET", "/api/v1/calendar/2025/13", nil, ""))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("month 13: status = %d, want 400", rr.Code)
	}
}

func TestExportICS(t *testing.T) {
	env := setupTest(t, "")
	env.createSermon(t, "Exported", "2025-06-01")

	rr := env.serve(makeRequest("GET", "/api/v1/calendar/export.ics", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("content type = %s", ct)
	}
	payload := rr.Body.String()
	if !strings.Contains(payload, "BEGIN:VCALENDAR") {
		t.Error("not an ICS payload")
	}
	if !strings.Contains(payload, "Sermon: Exported") {
		t.Error("sermon missing from feed")
	}
}

// =============================================================================
// DEVOTIONS
// =============================================================================

func TestCreateDevotionSeries_NoKindField(t *testing.T) {
	env := setupTest(t, "")

	// The endpoint fixes the kind; the payload carries none.
	body := map[string]interface{}{"title": "Psalms at Home"}
	rr := env.serve(makeRequest("POST", "/api/v1/devotions/series", body, ""))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}

	var series database.Series
	dataAs(t, rr, &series)
	if series.Kind != database.SeriesDevotion {
		t.Errorf("kind = %s, want devotion", series.Kind)
	}
	if series.Title != "Psalms at Home" {
		t.Errorf("title = %s", series.Title)
	}
}

func TestCreateDevotionSeries_Validation(t *testing.T) {
	env := setupTest(t, "")

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing title", map[string]interface{}{"start_date": "2025-06-01"}},
		{"bad dates", map[string]interface{}{"title": "X", "start_date": "2025-06-08", "end_date": "2025-06-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.serve(makeRequest("POST", "/api/v1/devotions/series", tt.body, ""))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestPlanDevotionMonth(t *testing.T) {
	env := setupTest(t, "")

	body := map[string]interface{}{
		"year":     2025,
		"month":    6,
		"weekdays": []int{1, 3}, // Mondays and Wednesdays
		"title":    "Psalms Devotion",
	}
	rr := env.serve(makeRequest("POST", "/api/v1/devotions/plan-month", body, ""))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var created []database.DevotionLesson
	dataAs(t, rr, &created)
	// June 2025: Mondays 2,9,16,23,30 and Wednesdays 4,11,18,25.
	if len(created) != 9 {
		t.Fatalf("created %d lessons, want 9", len(created))
	}
	if created[0].ScheduledDate == nil || *created[0].ScheduledDate != "2025-06-02" {
		t.Errorf("first lesson date = %v", created[0].ScheduledDate)
	}
	if created[0].Title != "Psalms Devotion 1" {
		t.Errorf("title = %s", created[0].Title)
	}
}

func TestCascadeRescheduleDevotions_Endpoint(t *testing.T) {
	env := setupTest(t, "")
	ctx := context.Background()

	series := &database.Series{Kind: database.SeriesDevotion, Title: "Acts"}
	if err := env.db.CreateSeries(ctx, series); err != nil {
		t.Fatal(err)
	}
	dates := []string{"2025-06-02", "2025-06-04"}
	var firstID int64
	for i, d := range dates {
		date := d
		l := &database.DevotionLesson{SeriesID: &series.ID, Title: fmt.Sprintf("Lesson %d", i+1), ScheduledDate: &date}
		if err := env.db.CreateDevotionLesson(ctx, l); err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			firstID = l.ID
		}
	}

	body := map[string]interface{}{"fromLessonId": firstID, "newDate": "2025-06-09"}
	rr := env.serve(makeRequest("POST", "/api/v1/devotions/cascade-reschedule", body, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var result map[string]int
	dataAs(t, rr, &result)
	if result["rescheduled"] != 2 {
		t.Errorf("rescheduled = %d, want 2", result["rescheduled"])
	}
}

// =============================================================================
// ANALYSIS
// =============================================================================

func TestAnalyzeSermon_Disabled(t *testing.T) {
	env := setupTest(t, "")

	body := map[string]interface{}{"title": "T", "content": "C"}
	rr := env.serve(makeRequest("POST", "/api/v1/analyze-sermon", body, ""))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestAnalyzeSermon_ProxiesUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req analyze.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("upstream decode: %v", err)
		}
		if req.Title != "Prodigal Son" {
			t.Errorf("upstream title = %q", req.Title)
		}
		json.NewEncoder(w).Encode(analyze.Suggestions{Theme: "Grace", Hashtags: []string{"parables"}})
	}))
	defer upstream.Close()

	env := setupTest(t, upstream.URL)

	body := map[string]interface{}{"title": "Prodigal Son", "content": "A man had two sons..."}
	rr := env.serve(makeRequest("POST", "/api/v1/analyze-sermon", body, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var got analyze.Suggestions
	dataAs(t, rr, &got)
	if got.Theme != "Grace" || len(got.Hashtags) != 1 {
		t.Errorf("suggestions = %+v", got)
	}
}

// =============================================================================
// AUTH
// =============================================================================

func TestAuth_RequiredInProduction(t *testing.T) {
	env := setupTest(t, "")
	env.handlers.cfg.Env = config.EnvProduction
	env.handlers.cfg.APIKey = "secret-key"

	// Reads stay open.
	rr := env.serve(makeRequest("GET", "/api/v1/schedule", nil, ""))
	if rr.Code != http.StatusOK {
		t.Errorf("read without key: status = %d, want 200", rr.Code)
	}

	// Writes require the key.
	body := map[string]interface{}{"name": "Locked Out"}
	rr = env.serve(makeRequest("POST", "/api/v1/schedule", body, ""))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("write without key: status = %d, want 401", rr.Code)
	}

	rr = env.serve(makeRequest("POST", "/api/v1/schedule", body, "wrong-key"))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("write with wrong key: status = %d, want 401", rr.Code)
	}

	rr = env.serve(makeRequest("POST", "/api/v1/schedule", body, "secret-key"))
	if rr.Code != http.StatusCreated {
		t.Errorf("write with key: status = %d, want 201", rr.Code)
	}
}
