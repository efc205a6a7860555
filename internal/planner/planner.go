package planner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/zapponejosh/ministry-planner/internal/analyze"
	"github.com/zapponejosh/ministry-planner/internal/calendar"
	"github.com/zapponejosh/ministry-planner/internal/database"
	"github.com/zapponejosh/ministry-planner/internal/schedule"
)

// Planner mirrors the server's schedule locally and coordinates date moves.
// Sermon moves apply optimistically and roll back on failure; devotion and
// English moves go through the server's cascade and the mirror is only
// updated from a successful reload.
type Planner struct {
	client *Client
	logger *slog.Logger

	mu      sync.Mutex
	sermons map[int64]database.Sermon
	lessons map[int64]database.DevotionLesson
	classes map[int64]database.EnglishClass
}

// New creates a Planner over the given client. Call Load before using it.
func New(client *Client, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		client:  client,
		logger:  logger,
		sermons: make(map[int64]database.Sermon),
		lessons: make(map[int64]database.DevotionLesson),
		classes: make(map[int64]database.EnglishClass),
	}
}

// Load replaces the local mirror with fresh server state.
func (p *Planner) Load(ctx context.Context) error {
	sermons, err := p.client.ListSermons(ctx)
	if err != nil {
		return fmt.Errorf("load sermons: %w", err)
	}
	lessons, err := p.client.ListDevotionLessons(ctx)
	if err != nil {
		return fmt.Errorf("load lessons: %w", err)
	}
	classes, err := p.client.ListEnglishClasses(ctx)
	if err != nil {
		return fmt.Errorf("load classes: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.sermons = make(map[int64]database.Sermon, len(sermons))
	for _, s := range sermons {
		p.sermons[s.ID] = s
	}
	p.lessons = make(map[int64]database.DevotionLesson, len(lessons))
	for _, l := range lessons {
		p.lessons[l.ID] = l
	}
	p.classes = make(map[int64]database.EnglishClass, len(classes))
	for _, c := range classes {
		p.classes[c.ID] = c
	}
	return nil
}

// Reschedule moves one entry to newDate (YYYY-MM-DD). Dropping an entry on
// the date it already occupies is a no-op and makes no network call. The
// returned count is how many entries changed date, which for devotions and
// classes includes the ripple through later entries in the same series.
func (p *Planner) Reschedule(ctx context.Context, kind schedule.Kind, id int64, newDate string) (int, error) {
	if _, err := calendar.ParseDateString(newDate); err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", newDate, err)
	}

	switch kind {
	case schedule.KindSermon:
		return p.rescheduleSermon(ctx, id, newDate)
	case schedule.KindDevotion:
		return p.rescheduleDevotion(ctx, id, newDate)
	case schedule.KindEnglish:
		return p.rescheduleEnglish(ctx, id, newDate)
	default:
		return 0, fmt.Errorf("unknown entry kind %q", kind)
	}
}

func (p *Planner) rescheduleSermon(ctx context.Context, id int64, newDate string) (int, error) {
	p.mu.Lock()
	sermon, ok := p.sermons[id]
	if !ok {
		p.mu.Unlock()
		return 0, fmt.Errorf("sermon %d not loaded", id)
	}
	if sameDate(sermon.Date, newDate) {
		p.mu.Unlock()
		return 0, nil
	}

	// Optimistic: overwrite locally, then confirm with the server.
	prev := sermon
	sermon.Date = &newDate
	p.sermons[id] = sermon
	p.mu.Unlock()

	updated, err := p.client.UpdateSermon(ctx, sermon)
	if err != nil {
		p.mu.Lock()
		p.sermons[id] = prev
		p.mu.Unlock()
		p.logger.Warn("sermon reschedule rolled back",
			slog.Int64("id", id), slog.String("date", newDate), slog.Any("error", err))
		return 0, err
	}

	p.mu.Lock()
	p.sermons[id] = *updated
	p.mu.Unlock()
	return 1, nil
}

func (p *Planner) rescheduleDevotion(ctx context.Context, id int64, newDate string) (int, error) {
	p.mu.Lock()
	lesson, ok := p.lessons[id]
	p.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("lesson %d not loaded", id)
	}
	if sameDate(lesson.ScheduledDate, newDate) {
		return 0, nil
	}

	count, err := p.client.CascadeRescheduleDevotion(ctx, id, newDate)
	if err != nil {
		return 0, err
	}

	// The ripple touched rows this mirror cannot predict; reload rather
	// than patch.
	lessons, err := p.client.ListDevotionLessons(ctx)
	if err != nil {
		return count, fmt.Errorf("reload lessons after cascade: %w", err)
	}
	p.mu.Lock()
	p.lessons = make(map[int64]database.DevotionLesson, len(lessons))
	for _, l := range lessons {
		p.lessons[l.ID] = l
	}
	p.mu.Unlock()
	return count, nil
}

func (p *Planner) rescheduleEnglish(ctx context.Context, id int64, newDate string) (int, error) {
	p.mu.Lock()
	class, ok := p.classes[id]
	p.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("class %d not loaded", id)
	}
	if sameDate(class.ClassDate, newDate) {
		return 0, nil
	}

	count, err := p.client.CascadeRescheduleEnglish(ctx, id, newDate)
	if err != nil {
		return 0, err
	}

	classes, err := p.client.ListEnglishClasses(ctx)
	if err != nil {
		return count, fmt.Errorf("reload classes after cascade: %w", err)
	}
	p.mu.Lock()
	p.classes = make(map[int64]database.EnglishClass, len(classes))
	for _, c := range classes {
		p.classes[c.ID] = c
	}
	p.mu.Unlock()
	return count, nil
}

// ShiftFuture moves every sermon dated on or after from by the given number
// of weeks. scope is schedule.ScopeAll or a preacher name. The batch is
// atomic server-side; the mirror only changes after the server accepts it.
// Returns how many sermons moved.
func (p *Planner) ShiftFuture(ctx context.Context, from time.Time, weeks int, scope string) (int, error) {
	if weeks == 0 {
		return 0, nil
	}

	p.mu.Lock()
	entries := make([]schedule.Shiftable, 0, len(p.sermons))
	for _, s := range p.sermons {
		entries = append(entries, schedule.Shiftable{ID: s.ID, Date: s.Date, Preacher: s.Preacher})
	}
	p.mu.Unlock()

	updates := schedule.ComputeShift(entries, from, weeks, scope)
	if len(updates) == 0 {
		return 0, nil
	}

	batch := make([]database.DateUpdate, len(updates))
	for i, u := range updates {
		batch[i] = database.DateUpdate{ID: u.ID, NewDate: u.NewDate}
	}
	if err := p.client.BatchUpdateDates(ctx, batch); err != nil {
		return 0, err
	}

	p.mu.Lock()
	for _, u := range batch {
		if s, ok := p.sermons[u.ID]; ok {
			d := u.NewDate
			s.Date = &d
			p.sermons[u.ID] = s
		}
	}
	p.mu.Unlock()

	p.logger.Info("future sermons shifted",
		slog.String("from", calendar.DateKey(from)),
		slog.Int("weeks", weeks),
		slog.String("scope", scope),
		slog.Int("count", len(batch)))
	return len(batch), nil
}

// SuggestReview runs a mirrored sermon's text through the analysis endpoint
// and returns the suggestions merged against the review fields the sermon
// already carries. Existing values always win; the analyzer only fills
// blanks. The mirror is not modified: applying the merged values is a
// separate UpdateSermon.
func (p *Planner) SuggestReview(ctx context.Context, id int64, opts analyze.Options) (analyze.Suggestions, error) {
	p.mu.Lock()
	sermon, ok := p.sermons[id]
	p.mu.Unlock()
	if !ok {
		return analyze.Suggestions{}, fmt.Errorf("sermon %d not loaded", id)
	}

	suggested, err := p.client.AnalyzeSermon(ctx, analyze.Request{
		Title:   sermon.Name,
		Content: sermon.Content,
		Options: opts,
	})
	if err != nil {
		return analyze.Suggestions{}, err
	}

	existing := analyze.Suggestions{
		Theme:       sermon.Theme,
		Audience:    sermon.Audience,
		Season:      sermon.Season,
		LessonType:  sermon.LessonType,
		PrimaryText: sermon.PrimaryText,
		KeyTakeaway: sermon.KeyTakeaway,
		Hashtags:    sermon.Hashtags,
	}
	return analyze.Merge(existing, *suggested), nil
}

// Sermons returns the mirrored sermons sorted by id.
func (p *Planner) Sermons() []database.Sermon {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]database.Sermon, 0, len(p.sermons))
	for _, s := range p.sermons {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EventsByDate buckets the mirrored entries for calendar rendering.
func (p *Planner) EventsByDate(view schedule.View, f schedule.Filters) map[string][]schedule.Event {
	p.mu.Lock()
	sermons := make([]database.Sermon, 0, len(p.sermons))
	for _, s := range p.sermons {
		sermons = append(sermons, s)
	}
	lessons := make([]database.DevotionLesson, 0, len(p.lessons))
	for _, l := range p.lessons {
		lessons = append(lessons, l)
	}
	classes := make([]database.EnglishClass, 0, len(p.classes))
	for _, c := range p.classes {
		classes = append(classes, c)
	}
	p.mu.Unlock()

	sort.Slice(sermons, func(i, j int) bool { return sermons[i].ID < sermons[j].ID })
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].ID < lessons[j].ID })
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })

	return schedule.Bind(view, f, sermons, lessons, classes)
}

// sameDate reports whether current (nullable, possibly carrying a time
// suffix) already names the target date.
func sameDate(current *string, target string) bool {
	if current == nil {
		return false
	}
	cur, err := calendar.DatePart(*current)
	if err != nil {
		return false
	}
	want, err := calendar.ParseDateString(target)
	if err != nil {
		return false
	}
	return cur.Equal(want)
}
