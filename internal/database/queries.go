package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zapponejosh/ministry-planner/internal/calendar"
)

// parseTimestamp converts a SQLite TEXT timestamp to time.Time, trying the
// formats SQLite actually emits.
func parseTimestamp(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, ns.String); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", ns.String); err == nil {
		return t
	}
	return time.Time{}
}

// =============================================================================
// Series
// =============================================================================

// CreateSeries inserts a series and returns it with its assigned id.
func (db *DB) CreateSeries(ctx context.Context, s *Series) error {
	res, err := db.ExecContext(ctx, `
		INSERT INTO series (kind, title, start_date, end_date)
		VALUES (?, ?, ?, ?)`,
		s.Kind, s.Title, s.StartDate, s.EndDate,
	)
	if err != nil {
		return fmt.Errorf("insert series: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("series insert id: %w", err)
	}
	s.ID = id
	return nil
}

// GetSeries returns one series by id.
func (db *DB) GetSeries(ctx context.Context, id int64) (*Series, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, kind, title, start_date, end_date, created_at, updated_at
		FROM series WHERE id = ?`, id)

	s, err := scanSeries(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan series: %w", err)
	}
	return s, nil
}

func scanSeries(row interface{ Scan(...any) error }) (*Series, error) {
	var s Series
	var created, updated sql.NullString
	err := row.Scan(&s.ID, &s.Kind, &s.Title, &s.StartDate, &s.EndDate, &created, &updated)
	if err != nil {
		return nil, err
	}
	s.CreatedAt = parseTimestamp(created)
	s.UpdatedAt = parseTimestamp(updated)
	return &s, nil
}

// ListSeries returns all series of one kind ordered by id.
func (db *DB) ListSeries(ctx context.Context, kind SeriesKind) ([]Series, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, kind, title, start_date, end_date, created_at, updated_at
		FROM series WHERE kind = ? ORDER BY id`, kind)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	var out []Series
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// UpdateSeries overwrites title and date window of a series.
func (db *DB) UpdateSeries(ctx context.Context, s *Series) error {
	res, err := db.ExecContext(ctx, `
		UPDATE series
		SET title = ?, start_date = ?, end_date = ?, updated_at = datetime('now')
		WHERE id = ?`,
		s.Title, s.StartDate, s.EndDate, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update series: %w", err)
	}
	return requireRow(res)
}

// =============================================================================
// Sermons
// =============================================================================

const sermonColumns = `id, name, lesson_type, preacher, sermon_date, status,
	series_id, content, notes, rating, primary_text, theme, audience, season,
	key_takeaway, hashtags, info_added, created_at, updated_at`

func scanSermon(row interface{ Scan(...any) error }) (*Sermon, error) {
	var s Sermon
	var hashtags string
	var created, updated sql.NullString
	err := row.Scan(
		&s.ID, &s.Name, &s.LessonType, &s.Preacher, &s.Date, &s.Status,
		&s.SeriesID, &s.Content, &s.Notes, &s.Rating, &s.PrimaryText, &s.Theme,
		&s.Audience, &s.Season, &s.KeyTakeaway, &hashtags, &s.InfoAdded,
		&created, &updated,
	)
	if err != nil {
		return nil, err
	}
	s.CreatedAt = parseTimestamp(created)
	s.UpdatedAt = parseTimestamp(updated)
	if err := json.Unmarshal([]byte(hashtags), &s.Hashtags); err != nil {
		// A bad hashtags blob should not make the row unreadable.
		s.Hashtags = nil
	}
	return &s, nil
}

// CreateSermon inserts a sermon and returns it with its assigned id.
func (db *DB) CreateSermon(ctx context.Context, s *Sermon) error {
	if s.Status == "" {
		s.Status = StatusDraft
	}
	if s.Hashtags == nil {
		s.Hashtags = []string{}
	}
	hashtags, err := json.Marshal(s.Hashtags)
	if err != nil {
		return fmt.Errorf("encode hashtags: %w", err)
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO sermons (name, lesson_type, preacher, sermon_date, status,
			series_id, content, notes, rating, primary_text, theme, audience,
			season, key_takeaway, hashtags, info_added)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Name, s.LessonType, s.Preacher, s.Date, s.Status, s.SeriesID,
		s.Content, s.Notes, s.Rating, s.PrimaryText, s.Theme, s.Audience,
		s.Season, s.KeyTakeaway, string(hashtags), s.InfoAdded,
	)
	if err != nil {
		return fmt.Errorf("insert sermon: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sermon insert id: %w", err)
	}
	s.ID = id
	return nil
}

// GetSermon returns one sermon by id.
func (db *DB) GetSermon(ctx context.Context, id int64) (*Sermon, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+sermonColumns+" FROM sermons WHERE id = ?", id)
	s, err := scanSermon(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan sermon: %w", err)
	}
	return s, nil
}

// ListSermons returns every sermon ordered by date, unscheduled last.
func (db *DB) ListSermons(ctx context.Context) ([]Sermon, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+sermonColumns+" FROM sermons ORDER BY sermon_date IS NULL, sermon_date, id")
	if err != nil {
		return nil, fmt.Errorf("query sermons: %w", err)
	}
	defer rows.Close()

	var out []Sermon
	for rows.Next() {
		s, err := scanSermon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sermon: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// UpdateSermon overwrites all mutable sermon fields.
func (db *DB) UpdateSermon(ctx context.Context, s *Sermon) error {
	if s.Hashtags == nil {
		s.Hashtags = []string{}
	}
	hashtags, err := json.Marshal(s.Hashtags)
	if err != nil {
		return fmt.Errorf("encode hashtags: %w", err)
	}

	res, err := db.ExecContext(ctx, `
		UPDATE sermons
		SET name = ?, lesson_type = ?, preacher = ?, sermon_date = ?,
			status = ?, series_id = ?, content = ?, notes = ?, rating = ?,
			primary_text = ?, theme = ?, audience = ?, season = ?,
			key_takeaway = ?, hashtags = ?, info_added = ?,
			updated_at = datetime('now')
		WHERE id = ?`,
		s.Name, s.LessonType, s.Preacher, s.Date, s.Status, s.SeriesID,
		s.Content, s.Notes, s.Rating, s.PrimaryText, s.Theme, s.Audience,
		s.Season, s.KeyTakeaway, string(hashtags), s.InfoAdded, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update sermon: %w", err)
	}
	return requireRow(res)
}

// UpdateSermonDate overwrites only the date of one sermon.
func (db *DB) UpdateSermonDate(ctx context.Context, id int64, date *string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE sermons SET sermon_date = ?, updated_at = datetime('now')
		WHERE id = ?`, date, id)
	if err != nil {
		return fmt.Errorf("update sermon date: %w", err)
	}
	return requireRow(res)
}

// DeleteSermon removes a sermon by id.
func (db *DB) DeleteSermon(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, "DELETE FROM sermons WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete sermon: %w", err)
	}
	return requireRow(res)
}

// BatchUpdateSermonDates applies every date update in one transaction. If
// any id is unknown the whole batch rolls back; callers never observe a
// partially applied shift.
func (db *DB) BatchUpdateSermonDates(ctx context.Context, updates []DateUpdate) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		for _, u := range updates {
			res, err := tx.ExecContext(ctx, `
				UPDATE sermons SET sermon_date = ?, updated_at = datetime('now')
				WHERE id = ?`, u.NewDate, u.ID)
			if err != nil {
				return fmt.Errorf("batch update sermon %d: %w", u.ID, err)
			}
			if err := requireRow(res); err != nil {
				return fmt.Errorf("batch update sermon %d: %w", u.ID, err)
			}
		}
		return nil
	})
}

// =============================================================================
// Devotion lessons
// =============================================================================

const lessonColumns = `id, series_id, title, week, lesson, day,
	scheduled_date, prepared, created_at, updated_at`

func scanLesson(row interface{ Scan(...any) error }) (*DevotionLesson, error) {
	var l DevotionLesson
	var created, updated sql.NullString
	err := row.Scan(&l.ID, &l.SeriesID, &l.Title, &l.Week, &l.Lesson, &l.Day,
		&l.ScheduledDate, &l.Prepared, &created, &updated)
	if err != nil {
		return nil, err
	}
	l.CreatedAt = parseTimestamp(created)
	l.UpdatedAt = parseTimestamp(updated)
	return &l, nil
}

// CreateDevotionLesson inserts a lesson and returns it with its assigned id.
func (db *DB) CreateDevotionLesson(ctx context.Context, l *DevotionLesson) error {
	res, err := db.ExecContext(ctx, `
		INSERT INTO devotion_lessons (series_id, title, week, lesson, day,
			scheduled_date, prepared)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.SeriesID, l.Title, l.Week, l.Lesson, l.Day, l.ScheduledDate, l.Prepared,
	)
	if err != nil {
		return fmt.Errorf("insert devotion lesson: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("devotion lesson insert id: %w", err)
	}
	l.ID = id
	return nil
}

// GetDevotionLesson returns one lesson by id.
func (db *DB) GetDevotionLesson(ctx context.Context, id int64) (*DevotionLesson, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+lessonColumns+" FROM devotion_lessons WHERE id = ?", id)
	l, err := scanLesson(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan devotion lesson: %w", err)
	}
	return l, nil
}

// ListDevotionLessons returns every lesson ordered by date, unscheduled last.
func (db *DB) ListDevotionLessons(ctx context.Context) ([]DevotionLesson, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+lessonColumns+" FROM devotion_lessons ORDER BY scheduled_date IS NULL, scheduled_date, id")
	if err != nil {
		return nil, fmt.Errorf("query devotion lessons: %w", err)
	}
	defer rows.Close()

	var out []DevotionLesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan devotion lesson: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// UpdateDevotionLesson overwrites all mutable lesson fields.
func (db *DB) UpdateDevotionLesson(ctx context.Context, l *DevotionLesson) error {
	res, err := db.ExecContext(ctx, `
		UPDATE devotion_lessons
		SET series_id = ?, title = ?, week = ?, lesson = ?, day = ?,
			scheduled_date = ?, prepared = ?, updated_at = datetime('now')
		WHERE id = ?`,
		l.SeriesID, l.Title, l.Week, l.Lesson, l.Day, l.ScheduledDate,
		l.Prepared, l.ID,
	)
	if err != nil {
		return fmt.Errorf("update devotion lesson: %w", err)
	}
	return requireRow(res)
}

// CascadeRescheduleDevotions moves the identified lesson to newDate and
// shifts every later-dated lesson in the same series by the same delta,
// all in one transaction. Returns the number of lessons rescheduled.
//
// Only this side of the API can know the full ripple set, which is why
// clients must reload rather than mutate optimistically.
func (db *DB) CascadeRescheduleDevotions(ctx context.Context, fromLessonID int64, newDate string) (int, error) {
	return db.cascade(ctx, cascadeTarget{
		table:      "devotion_lessons",
		dateColumn: "scheduled_date",
		id:         fromLessonID,
	}, newDate)
}

// =============================================================================
// English classes
// =============================================================================

const classColumns = `id, series_id, title, week, lesson, class_date,
	status, created_at, updated_at`

func scanClass(row interface{ Scan(...any) error }) (*EnglishClass, error) {
	var c EnglishClass
	var created, updated sql.NullString
	err := row.Scan(&c.ID, &c.SeriesID, &c.Title, &c.Week, &c.Lesson,
		&c.ClassDate, &c.Status, &created, &updated)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = parseTimestamp(created)
	c.UpdatedAt = parseTimestamp(updated)
	return &c, nil
}

// CreateEnglishClass inserts a class and returns it with its assigned id.
func (db *DB) CreateEnglishClass(ctx context.Context, c *EnglishClass) error {
	if c.Status == "" {
		c.Status = ClassScheduled
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO english_classes (series_id, title, week, lesson, class_date, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.SeriesID, c.Title, c.Week, c.Lesson, c.ClassDate, c.Status,
	)
	if err != nil {
		return fmt.Errorf("insert english class: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("english class insert id: %w", err)
	}
	c.ID = id
	return nil
}

// GetEnglishClass returns one class by id.
func (db *DB) GetEnglishClass(ctx context.Context, id int64) (*EnglishClass, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+classColumns+" FROM english_classes WHERE id = ?", id)
	c, err := scanClass(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan english class: %w", err)
	}
	return c, nil
}

// ListEnglishClasses returns every class ordered by date, unscheduled last.
func (db *DB) ListEnglishClasses(ctx context.Context) ([]EnglishClass, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+classColumns+" FROM english_classes ORDER BY class_date IS NULL, class_date, id")
	if err != nil {
		return nil, fmt.Errorf("query english classes: %w", err)
	}
	defer rows.Close()

	var out []EnglishClass
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan english class: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UpdateEnglishClass overwrites all mutable class fields.
func (db *DB) UpdateEnglishClass(ctx context.Context, c *EnglishClass) error {
	res, err := db.ExecContext(ctx, `
		UPDATE english_classes
		SET series_id = ?, title = ?, week = ?, lesson = ?, class_date = ?,
			status = ?, updated_at = datetime('now')
		WHERE id = ?`,
		c.SeriesID, c.Title, c.Week, c.Lesson, c.ClassDate, c.Status, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update english class: %w", err)
	}
	return requireRow(res)
}

// CascadeRescheduleEnglish mirrors CascadeRescheduleDevotions for classes.
func (db *DB) CascadeRescheduleEnglish(ctx context.Context, fromClassID int64, newDate string) (int, error) {
	return db.cascade(ctx, cascadeTarget{
		table:      "english_classes",
		dateColumn: "class_date",
		id:         fromClassID,
	}, newDate)
}

// =============================================================================
// Cascade internals
// =============================================================================

type cascadeTarget struct {
	table      string
	dateColumn string
	id         int64
}

// cascade shifts the target row and every later-dated row in its series by
// newDate minus the target's current date. Rows without a date are left
// alone; a target without a series moves alone.
func (db *DB) cascade(ctx context.Context, t cascadeTarget, newDate string) (int, error) {
	newDay, err := calendar.ParseDateString(newDate)
	if err != nil {
		return 0, fmt.Errorf("parse cascade date: %w", err)
	}

	count := 0
	err = db.WithTx(ctx, func(tx *Tx) error {
		var oldDate sql.NullString
		var seriesID sql.NullInt64
		row := tx.QueryRowContext(ctx,
			fmt.Sprintf("SELECT %s, series_id FROM %s WHERE id = ?", t.dateColumn, t.table),
			t.id)
		if err := row.Scan(&oldDate, &seriesID); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return fmt.Errorf("load cascade target: %w", err)
		}

		// An unscheduled target just gets the new date; nothing ripples.
		if !oldDate.Valid {
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf("UPDATE %s SET %s = ?, updated_at = datetime('now') WHERE id = ?", t.table, t.dateColumn),
				newDate, t.id); err != nil {
				return fmt.Errorf("schedule cascade target: %w", err)
			}
			count = 1
			return nil
		}

		oldDay, err := calendar.DatePart(oldDate.String)
		if err != nil {
			return fmt.Errorf("parse cascade target date: %w", err)
		}
		deltaDays := int(newDay.Sub(oldDay).Hours() / 24)

		if !seriesID.Valid {
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf("UPDATE %s SET %s = ?, updated_at = datetime('now') WHERE id = ?", t.table, t.dateColumn),
				newDate, t.id); err != nil {
				return fmt.Errorf("move cascade target: %w", err)
			}
			count = 1
			return nil
		}

		// Dates are stored as YYYY-MM-DD text, so >= compares correctly.
		rows, err := tx.QueryContext(ctx,
			fmt.Sprintf(`SELECT id, %s FROM %s
				WHERE series_id = ? AND %s IS NOT NULL AND %s >= ?
				ORDER BY %s, id`,
				t.dateColumn, t.table, t.dateColumn, t.dateColumn, t.dateColumn),
			seriesID.Int64, calendar.DateKey(oldDay))
		if err != nil {
			return fmt.Errorf("query cascade set: %w", err)
		}
		defer rows.Close()

		var pending []DateUpdate
		for rows.Next() {
			var id int64
			var date string
			if err := rows.Scan(&id, &date); err != nil {
				return fmt.Errorf("scan cascade row: %w", err)
			}
			day, err := calendar.DatePart(date)
			if err != nil {
				return fmt.Errorf("parse cascade row date: %w", err)
			}
			pending = append(pending, DateUpdate{
				ID:      id,
				NewDate: calendar.DateKey(day.AddDate(0, 0, deltaDays)),
			})
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate cascade rows: %w", err)
		}

		for _, u := range pending {
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf("UPDATE %s SET %s = ?, updated_at = datetime('now') WHERE id = ?", t.table, t.dateColumn),
				u.NewDate, u.ID); err != nil {
				return fmt.Errorf("apply cascade update %d: %w", u.ID, err)
			}
		}
		count = len(pending)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// requireRow converts a zero-rows-affected result into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
