package planner

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/zapponejosh/ministry-planner/internal/analyze"
	"github.com/zapponejosh/ministry-planner/internal/database"
	"github.com/zapponejosh/ministry-planner/internal/schedule"
)

func strptr(s string) *string { return &s }
func i64ptr(n int64) *int64   { return &n }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// fakeServer is a minimal stand-in for the planner API that records every
// request it sees.
type fakeServer struct {
	mu       sync.Mutex
	requests []string // "METHOD path"

	sermons []database.Sermon
	lessons []database.DevotionLesson
	classes []database.EnglishClass

	failPuts    bool
	failBatches bool
	cascaded    int                 // value returned by cascade endpoints
	suggest     analyze.Suggestions // value returned by analyze-sermon
}

func (f *fakeServer) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
}

func (f *fakeServer) count(methodPath string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, req := range f.requests {
		if req == methodPath {
			n++
		}
	}
	return n
}

func (f *fakeServer) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": status < 400,
		"data":    data,
	})
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   map[string]string{"message": msg},
	})
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/schedule", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		defer f.mu.Unlock()
		writeEnvelope(w, http.StatusOK, f.sermons)
	})
	mux.HandleFunc("PUT /api/v1/schedule/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if f.failPuts {
			writeFailure(w, http.StatusInternalServerError, "update failed")
			return
		}
		var s database.Sermon
		json.NewDecoder(r.Body).Decode(&s)
		f.mu.Lock()
		for i := range f.sermons {
			if f.sermons[i].ID == s.ID {
				f.sermons[i] = s
			}
		}
		f.mu.Unlock()
		writeEnvelope(w, http.StatusOK, s)
	})
	mux.HandleFunc("POST /api/v1/schedule/batch-update", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if f.failBatches {
			writeFailure(w, http.StatusNotFound, "unknown id in batch")
			return
		}
		var body struct {
			Updates []database.DateUpdate `json:"updates"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		for _, u := range body.Updates {
			for i := range f.sermons {
				if f.sermons[i].ID == u.ID {
					d := u.NewDate
					f.sermons[i].Date = &d
				}
			}
		}
		f.mu.Unlock()
		writeEnvelope(w, http.StatusOK, map[string]int{"updated": len(body.Updates)})
	})
	mux.HandleFunc("GET /api/v1/devotions/lessons", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		defer f.mu.Unlock()
		writeEnvelope(w, http.StatusOK, f.lessons)
	})
	mux.HandleFunc("GET /api/v1/english/classes", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		defer f.mu.Unlock()
		writeEnvelope(w, http.StatusOK, f.classes)
	})
	mux.HandleFunc("POST /api/v1/devotions/cascade-reschedule", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var body struct {
			FromLessonID int64  `json:"fromLessonId"`
			NewDate      string `json:"newDate"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		// Apply a simple ripple so the reload sees new state.
		for i := range f.lessons {
			if f.lessons[i].ID == body.FromLessonID {
				d := body.NewDate
				f.lessons[i].ScheduledDate = &d
			}
		}
		f.mu.Unlock()
		writeEnvelope(w, http.StatusOK, map[string]int{"rescheduled": f.cascaded})
	})
	mux.HandleFunc("POST /api/v1/english/cascade-reschedule", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeEnvelope(w, http.StatusOK, map[string]int{"rescheduled": f.cascaded})
	})
	mux.HandleFunc("POST /api/v1/analyze-sermon", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeEnvelope(w, http.StatusOK, f.suggest)
	})

	return mux
}

func setupPlanner(t *testing.T, fake *fakeServer) *Planner {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	p := New(NewClient(srv.URL, ""), testLogger())
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return p
}

func defaultFake() *fakeServer {
	return &fakeServer{
		sermons: []database.Sermon{
			{ID: 1, Name: "Alpha", Preacher: "Josh", Date: strptr("2025-06-01"), Theme: "Hope", Content: "In the beginning"},
			{ID: 2, Name: "Beta", Preacher: "Sarah", Date: strptr("2025-06-08")},
			{ID: 3, Name: "Gamma", Preacher: "Josh"},
		},
		lessons: []database.DevotionLesson{
			{ID: 10, Title: "Psalm 1", SeriesID: i64ptr(5), ScheduledDate: strptr("2025-06-02")},
			{ID: 11, Title: "Psalm 2", SeriesID: i64ptr(5), ScheduledDate: strptr("2025-06-04")},
		},
		classes: []database.EnglishClass{
			{ID: 20, Title: "Unit 1", ClassDate: strptr("2025-06-03"), Status: database.ClassScheduled},
		},
		cascaded: 2,
	}
}

func TestReschedule_SameDateNoNetwork(t *testing.T) {
	fake := defaultFake()
	p := setupPlanner(t, fake)
	before := fake.total()

	count, err := p.Reschedule(context.Background(), schedule.KindSermon, 1, "2025-06-01")
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if fake.total() != before {
		t.Errorf("same-date drop made %d network calls", fake.total()-before)
	}
}

func TestReschedule_SermonOptimistic(t *testing.T) {
	fake := defaultFake()
	p := setupPlanner(t, fake)

	count, err := p.Reschedule(context.Background(), schedule.KindSermon, 1, "2025-06-15")
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if fake.count("PUT /api/v1/schedule/1") != 1 {
		t.Error("expected exactly one PUT")
	}

	for _, s := range p.Sermons() {
		if s.ID == 1 && (s.Date == nil || *s.Date != "2025-06-15") {
			t.Errorf("mirror not updated: %v", s.Date)
		}
	}
}

func TestReschedule_SermonRollbackOnFailure(t *testing.T) {
	fake := defaultFake()
	fake.failPuts = true
	p := setupPlanner(t, fake)

	_, err := p.Reschedule(context.Background(), schedule.KindSermon, 1, "2025-06-15")
	if err == nil {
		t.Fatal("expected error from failing server")
	}

	// The optimistic write must be rolled back.
	for _, s := range p.Sermons() {
		if s.ID == 1 && (s.Date == nil || *s.Date != "2025-06-01") {
			t.Errorf("rollback failed, date = %v", s.Date)
		}
	}
}

func TestReschedule_InvalidDate(t *testing.T) {
	fake := defaultFake()
	p := setupPlanner(t, fake)
	before := fake.total()

	if _, err := p.Reschedule(context.Background(), schedule.KindSermon, 1, "June 15"); err == nil {
		t.Error("expected error for malformed date")
	}
	if fake.total() != before {
		t.Error("malformed date hit the network")
	}
}

func TestReschedule_DevotionCascades(t *testing.T) {
	fake := defaultFake()
	p := setupPlanner(t, fake)

	count, err := p.Reschedule(context.Background(), schedule.KindDevotion, 10, "2025-06-09")
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want server's rescheduled count 2", count)
	}
	if fake.count("POST /api/v1/devotions/cascade-reschedule") != 1 {
		t.Error("cascade endpoint not called exactly once")
	}
	// A full reload follows the cascade: initial load plus one more.
	if fake.count("GET /api/v1/devotions/lessons") != 2 {
		t.Errorf("lessons fetched %d times, want 2", fake.count("GET /api/v1/devotions/lessons"))
	}

	// The mirror reflects the reloaded state.
	byDate := p.EventsByDate(schedule.ViewDevotions, schedule.Filters{})
	if len(byDate["2025-06-09"]) != 1 {
		t.Errorf("moved lesson not visible at new date: %v", byDate)
	}
}

func TestShiftFuture(t *testing.T) {
	fake := defaultFake()
	p := setupPlanner(t, fake)

	from, _ := time.Parse("2006-01-02", "2025-06-01")
	count, err := p.ShiftFuture(context.Background(), from, 1, schedule.ScopeAll)
	if err != nil {
		t.Fatalf("shift: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2 (dated sermons only)", count)
	}

	for _, s := range p.Sermons() {
		switch s.ID {
		case 1:
			if *s.Date != "2025-06-08" {
				t.Errorf("sermon 1 at %s", *s.Date)
			}
		case 2:
			if *s.Date != "2025-06-15" {
				t.Errorf("sermon 2 at %s", *s.Date)
			}
		case 3:
			if s.Date != nil {
				t.Error("unscheduled sermon gained a date")
			}
		}
	}
}

func TestShiftFuture_FailureLeavesMirrorIntact(t *testing.T) {
	fake := defaultFake()
	fake.failBatches = true
	p := setupPlanner(t, fake)

	from, _ := time.Parse("2006-01-02", "2025-06-01")
	if _, err := p.ShiftFuture(context.Background(), from, 1, schedule.ScopeAll); err == nil {
		t.Fatal("expected batch failure")
	}

	for _, s := range p.Sermons() {
		if s.ID == 1 && *s.Date != "2025-06-01" {
			t.Errorf("mirror mutated after failed batch: %s", *s.Date)
		}
	}
}

func TestSuggestReview_ExistingFieldsWin(t *testing.T) {
	fake := defaultFake()
	fake.suggest = analyze.Suggestions{
		Theme:    "Grace",
		Season:   "Advent",
		Hashtags: []string{"#advent"},
	}
	p := setupPlanner(t, fake)

	got, err := p.SuggestReview(context.Background(), 1, analyze.Options{})
	if err != nil {
		t.Fatalf("suggest review: %v", err)
	}
	if fake.count("POST /api/v1/analyze-sermon") != 1 {
		t.Error("analyze endpoint not called exactly once")
	}

	// Sermon 1 already carries a theme; the suggestion must not displace it.
	if got.Theme != "Hope" {
		t.Errorf("theme = %q, want existing value Hope", got.Theme)
	}
	if got.Season != "Advent" {
		t.Errorf("season = %q, want suggested Advent", got.Season)
	}
	if len(got.Hashtags) != 1 || got.Hashtags[0] != "#advent" {
		t.Errorf("hashtags = %v, want suggested list", got.Hashtags)
	}

	// Suggestions are advisory: the mirrored sermon is untouched.
	for _, s := range p.Sermons() {
		if s.ID == 1 && s.Season != "" {
			t.Errorf("mirror mutated: season = %q", s.Season)
		}
	}
}

func TestSuggestReview_UnknownSermon(t *testing.T) {
	fake := defaultFake()
	p := setupPlanner(t, fake)
	before := fake.total()

	if _, err := p.SuggestReview(context.Background(), 99, analyze.Options{}); err == nil {
		t.Error("expected error for unloaded sermon")
	}
	if fake.total() != before {
		t.Error("unknown sermon hit the network")
	}
}

func TestShiftFuture_ZeroWeeksNoOp(t *testing.T) {
	fake := defaultFake()
	p := setupPlanner(t, fake)
	before := fake.total()

	count, err := p.ShiftFuture(context.Background(), time.Now(), 0, schedule.ScopeAll)
	if err != nil || count != 0 {
		t.Fatalf("count = %d, err = %v", count, err)
	}
	if fake.total() != before {
		t.Error("zero-week shift hit the network")
	}
}
