package holiday

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zapponejosh/ministry-planner/internal/calendar"
)

// Service answers holiday lookups against a small cache of compiled year
// indexes. The cache covers the center year plus one year either side;
// other years are compiled on demand and not retained, which bounds memory.
// Any mutation of the rule table invalidates every cached year, since an
// index is a pure function of (year, rules).
type Service struct {
	mu     sync.Mutex
	base   []Rule          // built-ins plus any rules-file entries
	custom map[string]Rule // id -> custom rule
	cache  map[int]*YearIndex
	center int
	store  *Store // nil disables persistence
	logger *slog.Logger

	// now is swapped in tests.
	now func() time.Time
}

// Upcoming is a Calculated holiday annotated with how far away it is.
type Upcoming struct {
	Calculated
	DaysAway  int `json:"daysAway"`
	WeeksAway int `json:"weeksAway"`
}

// NewService builds a Service over the built-in rules plus extra (from the
// rules file). Custom holidays are loaded from store; a corrupt file is
// logged and treated as an empty set so startup never fails on it.
func NewService(store *Store, extra []Rule, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	custom := map[string]Rule{}
	if store != nil {
		loaded, err := store.Load()
		if err != nil {
			logger.Warn("discarding unreadable custom holidays", slog.Any("error", err))
		} else {
			custom = loaded
		}
	}

	s := &Service{
		base:   append(BuiltinRules(), extra...),
		custom: custom,
		cache:  map[int]*YearIndex{},
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	s.center = s.now().Year()
	return s
}

// rules returns the merged rule table. Callers hold s.mu.
func (s *Service) rules() []Rule {
	merged := make([]Rule, 0, len(s.base)+len(s.custom))
	merged = append(merged, s.base...)

	ids := make([]string, 0, len(s.custom))
	for id := range s.custom {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		merged = append(merged, s.custom[id])
	}
	return merged
}

// index returns the compiled index for a year, using the cache when the
// year is inside the center±1 window. Callers hold s.mu.
func (s *Service) index(year int) *YearIndex {
	if idx, ok := s.cache[year]; ok {
		return idx
	}
	idx := CompileYear(year, s.rules())
	if year >= s.center-1 && year <= s.center+1 {
		s.cache[year] = idx
	}
	return idx
}

// invalidate drops every cached year. Callers hold s.mu.
func (s *Service) invalidate() {
	s.cache = map[int]*YearIndex{}
}

// ForDate returns the holidays falling on a YYYY-MM-DD date key. The result
// is empty, never nil, when nothing matches or the key is malformed.
func (s *Service) ForDate(dateKey string) []Calculated {
	date, err := calendar.ParseDateString(dateKey)
	if err != nil {
		return []Calculated{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := s.index(date.Year()).ByDate[dateKey]
	out := make([]Calculated, len(found))
	copy(out, found)
	return out
}

// ForWeek returns the holidays falling in an ISO week key (YYYY-Wnn). A
// single ISO week can straddle a calendar-year boundary, so the indexes of
// the ISO year and both neighbors are consulted.
func (s *Service) ForWeek(weekKey string) []Calculated {
	isoYear, week, err := calendar.ParseWeekKey(weekKey)
	if err != nil {
		return []Calculated{}
	}
	// Indexes key on the zero-padded form; accept "2025-W5" as "2025-W05".
	key := calendar.FormatWeekKey(isoYear, week)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Calculated{}
	for _, year := range []int{isoYear - 1, isoYear, isoYear + 1} {
		out = append(out, s.index(year).ByWeek[key]...)
	}
	return out
}

// GetUpcoming returns holidays in [today, today+weeksAhead*7 days]
// inclusive, sorted ascending by date, spanning the year boundary.
func (s *Service) GetUpcoming(weeksAhead int) []Upcoming {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := calendar.StripTime(s.now())
	end := today.AddDate(0, 0, weeksAhead*7)

	out := []Upcoming{}
	for _, year := range []int{today.Year(), today.Year() + 1} {
		for _, holidays := range s.index(year).ByDate {
			for _, h := range holidays {
				if h.Date.Before(today) || h.Date.After(end) {
					continue
				}
				days := int(h.Date.Sub(today).Hours() / 24)
				out = append(out, Upcoming{
					Calculated: h,
					DaysAway:   days,
					WeeksAway:  days / 7,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ForYear returns every holiday of a year sorted by date, for the
// management view.
func (s *Service) ForYear(year int) []Calculated {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Calculated{}
	for _, holidays := range s.index(year).ByDate {
		out = append(out, holidays...)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AddCustom validates and registers a user-defined holiday, assigns it a
// collision-free id, invalidates the cache, and persists the custom set.
// Persistence is best effort: a write failure is logged and the in-memory
// rule stays authoritative for the session.
func (s *Service) AddCustom(r Rule) (Rule, error) {
	r.ID = fmt.Sprintf("custom-%s", uuid.NewString())
	r.IsCustom = true

	if err := r.Validate(); err != nil {
		return Rule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.custom[r.ID] = r
	s.invalidate()
	s.persist()
	return r, nil
}

// DeleteCustom removes a custom holiday by id. Deleting an unknown id is a
// no-op.
func (s *Service) DeleteCustom(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.custom[id]; !ok {
		return
	}
	delete(s.custom, id)
	s.invalidate()
	s.persist()
}

// CustomHolidays returns the current custom rules sorted by id.
func (s *Service) CustomHolidays() []Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Rule, 0, len(s.custom))
	for _, r := range s.custom {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// persist writes the custom set through the store. Callers hold s.mu.
func (s *Service) persist() {
	if s.store == nil {
		return
	}
	if err := s.store.Save(s.custom); err != nil {
		s.logger.Warn("custom holiday persistence failed", slog.Any("error", err))
	}
}

// RefreshWindow re-centers the cache window on the current year and drops
// entries that fell out of it. Run daily so the ±1 year window tracks the
// New Year rollover.
func (s *Service) RefreshWindow() {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := s.now().Year()
	if year == s.center {
		return
	}
	s.center = year
	for cached := range s.cache {
		if cached < year-1 || cached > year+1 {
			delete(s.cache, cached)
		}
	}
	s.logger.Info("holiday cache window re-centered", slog.Int("year", year))
}
