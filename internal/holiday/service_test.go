package holiday

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "custom.json"))
	return NewService(store, nil, testLogger())
}

func fixedNow(date string) func() time.Time {
	return func() time.Time {
		d, _ := time.Parse("2006-01-02", date)
		return d
	}
}

func TestService_ForDate(t *testing.T) {
	svc := newTestService(t)

	got := svc.ForDate("2025-12-25")
	if len(got) != 1 || got[0].ID != "christmas" {
		t.Fatalf("ForDate(2025-12-25) = %+v, want christmas", got)
	}

	empty := svc.ForDate("2025-03-03")
	if empty == nil {
		t.Error("no-holiday date must return empty, not nil")
	}
	if len(empty) != 0 {
		t.Errorf("unexpected holidays: %+v", empty)
	}

	malformed := svc.ForDate("christmas")
	if malformed == nil || len(malformed) != 0 {
		t.Errorf("malformed key should return empty slice, got %+v", malformed)
	}
}

func TestService_ForWeek(t *testing.T) {
	svc := newTestService(t)

	// Thanksgiving 2025 (Nov 27) sits in ISO week 48.
	got := svc.ForWeek("2025-W48")
	found := false
	for _, h := range got {
		if h.ID == "thanksgiving" {
			found = true
		}
	}
	if !found {
		t.Errorf("thanksgiving missing from 2025-W48: %+v", got)
	}
}

func TestService_ForWeek_UnpaddedKey(t *testing.T) {
	svc := newTestService(t)

	// Valentine's Day 2025 (Feb 14) sits in ISO week 7. The index keys on
	// the padded form; an unpadded query must still find it.
	got := svc.ForWeek("2025-W7")
	found := false
	for _, h := range got {
		if h.ID == "valentines" {
			found = true
		}
	}
	if !found {
		t.Errorf("valentines missing from unpadded 2025-W7 lookup: %+v", got)
	}

	if len(svc.ForWeek("2025-W54")) != 0 {
		t.Error("out-of-range week should return empty")
	}
}

func TestService_ForWeek_YearBoundary(t *testing.T) {
	svc := newTestService(t)

	// ISO week 2026-W01 runs Dec 29 2025 through Jan 4 2026: it must pick
	// up New Year's Eve from 2025 and New Year's Day from 2026.
	got := svc.ForWeek("2026-W01")

	var haveEve, haveDay bool
	for _, h := range got {
		switch {
		case h.ID == "new-years-eve" && h.CalculatedDate == "2025-12-31":
			haveEve = true
		case h.ID == "new-year" && h.CalculatedDate == "2026-01-01":
			haveDay = true
		}
	}
	if !haveEve {
		t.Error("2025 New Year's Eve missing from straddling week")
	}
	if !haveDay {
		t.Error("2026 New Year's Day missing from straddling week")
	}
}

func TestService_GetUpcoming(t *testing.T) {
	svc := newTestService(t)
	svc.now = fixedNow("2025-11-20")

	got := svc.GetUpcoming(2) // through Dec 4
	if len(got) != 1 {
		t.Fatalf("got %d holidays, want 1 (thanksgiving): %+v", len(got), got)
	}
	h := got[0]
	if h.ID != "thanksgiving" {
		t.Fatalf("got %s, want thanksgiving", h.ID)
	}
	if h.DaysAway != 7 {
		t.Errorf("DaysAway = %d, want 7", h.DaysAway)
	}
	if h.WeeksAway != 1 {
		t.Errorf("WeeksAway = %d, want 1", h.WeeksAway)
	}
}

func TestService_GetUpcoming_SpansYearBoundary(t *testing.T) {
	svc := newTestService(t)
	svc.now = fixedNow("2025-12-20")

	got := svc.GetUpcoming(4) // through Jan 17 2026

	var dates []string
	for _, h := range got {
		dates = append(dates, h.CalculatedDate)
	}

	wantIDs := []string{"christmas-eve", "christmas", "new-years-eve", "new-year"}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d holidays %v, want %d", len(got), dates, len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
	// Sorted ascending across the boundary.
	for i := 1; i < len(got); i++ {
		if got[i].Date.Before(got[i-1].Date) {
			t.Errorf("results out of order at %d", i)
		}
	}
}

func TestService_GetUpcoming_TodayInclusive(t *testing.T) {
	svc := newTestService(t)
	svc.now = fixedNow("2025-12-25")

	got := svc.GetUpcoming(0) // today only
	if len(got) != 1 || got[0].ID != "christmas" {
		t.Fatalf("today's holiday should be included: %+v", got)
	}
	if got[0].DaysAway != 0 {
		t.Errorf("DaysAway = %d, want 0", got[0].DaysAway)
	}
}

func TestService_CustomHolidayLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.json")
	svc := NewService(NewStore(path), nil, testLogger())

	created, err := svc.AddCustom(Rule{
		Name:  "Church Anniversary",
		Emoji: "⛪",
		Color: "blue",
		Type:  TypeFixed,
		Month: time.October,
		Day:   12,
	})
	if err != nil {
		t.Fatalf("AddCustom: %v", err)
	}
	if created.ID == "" || !created.IsCustom {
		t.Fatalf("created rule not marked custom: %+v", created)
	}

	got := svc.ForDate("2025-10-12")
	if len(got) != 1 || got[0].ID != created.ID {
		t.Fatalf("custom holiday not resolvable: %+v", got)
	}

	// A fresh service over the same store must see the persisted rule.
	reloaded := NewService(NewStore(path), nil, testLogger())
	if len(reloaded.CustomHolidays()) != 1 {
		t.Error("custom holiday did not survive reload")
	}

	svc.DeleteCustom(created.ID)
	if len(svc.ForDate("2025-10-12")) != 0 {
		t.Error("deleted custom holiday still resolves")
	}
	svc.DeleteCustom("custom-nonexistent") // no-op, must not panic
}

func TestService_AddCustom_Invalid(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.AddCustom(Rule{Type: TypeFixed}); err == nil {
		t.Error("rule without name should fail validation")
	}
	if _, err := svc.AddCustom(Rule{Name: "Bad Month", Type: TypeFixed, Month: 13, Day: 1}); err == nil {
		t.Error("month 13 should fail validation")
	}

	// A oneTime rule whose date disagrees with its year would never compile
	// to an occurrence; it must be rejected up front.
	mismatched := Rule{Name: "Retreat", Type: TypeOneTime, Year: 2026, Date: "2025-10-03"}
	if _, err := svc.AddCustom(mismatched); err == nil {
		t.Error("oneTime date outside its year should fail validation")
	}
	matched := Rule{Name: "Retreat", Type: TypeOneTime, Year: 2026, Date: "2026-10-03"}
	if _, err := svc.AddCustom(matched); err != nil {
		t.Errorf("consistent oneTime rule rejected: %v", err)
	}
}

func TestNewService_CorruptStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewService(NewStore(path), nil, testLogger())
	if len(svc.CustomHolidays()) != 0 {
		t.Error("corrupt store should produce an empty custom set")
	}
	// The service still answers queries.
	if len(svc.ForDate("2025-12-25")) != 1 {
		t.Error("built-in rules lost after corrupt store load")
	}
}

func TestService_RefreshWindow(t *testing.T) {
	svc := newTestService(t)
	svc.now = fixedNow("2025-06-15")
	svc.center = 2025

	svc.ForDate("2025-12-25") // populate cache
	svc.ForDate("2024-12-25")

	svc.now = fixedNow("2027-01-02")
	svc.RefreshWindow()

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.center != 2027 {
		t.Errorf("center = %d, want 2027", svc.center)
	}
	for year := range svc.cache {
		if year < 2026 || year > 2028 {
			t.Errorf("stale year %d survived refresh", year)
		}
	}
}

func TestService_RulesFileMerged(t *testing.T) {
	extra := []Rule{{
		ID:    "reformation-day",
		Name:  "Reformation Day",
		Type:  TypeFixed,
		Month: time.October,
		Day:   31,
	}}
	svc := NewService(nil, extra, testLogger())

	got := svc.ForDate("2025-10-31")
	if len(got) != 1 || got[0].ID != "reformation-day" {
		t.Fatalf("rules-file holiday not merged: %+v", got)
	}
}
