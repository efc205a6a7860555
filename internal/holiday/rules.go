// Package holiday implements the holiday engine: a declarative rule table,
// a per-year compiler that resolves rules to concrete dates, and a query
// service with a year-window cache and custom-holiday persistence.
package holiday

import (
	"errors"
	"fmt"
	"time"
)

// Type discriminates the closed set of holiday rule variants. Exactly one
// variant's field group is populated per rule.
type Type string

const (
	TypeFixed    Type = "fixed"    // same month/day every year
	TypeRelative Type = "relative" // nth weekday of a month
	TypeEaster   Type = "easter"   // signed day offset from Easter Sunday
	TypeLunar    Type = "lunar"    // lunar-calendar approximation
	TypeOneTime  Type = "oneTime"  // exact date in exactly one year
)

// Palette of holiday badge colors. Rules name a palette key; the year
// compiler resolves it to the hex value clients render.
var Colors = map[string]string{
	"red":    "#dc2626",
	"orange": "#ea580c",
	"amber":  "#d97706",
	"green":  "#16a34a",
	"teal":   "#0d9488",
	"blue":   "#2563eb",
	"purple": "#9333ea",
	"pink":   "#db2777",
}

// Rule is a declarative holiday definition. Which fields beyond the common
// header are meaningful depends on Type; see the Type constants.
type Rule struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Emoji string `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
	Type  Type   `json:"type" yaml:"type"`

	// fixed and relative
	Month time.Month `json:"month,omitempty" yaml:"month,omitempty"` // 1-12
	Day   int        `json:"day,omitempty" yaml:"day,omitempty"`

	// relative
	Weekday time.Weekday `json:"weekday" yaml:"weekday"` // 0=Sunday .. 6=Saturday
	Nth     int          `json:"nth,omitempty" yaml:"nth,omitempty"`

	// easter
	Offset int `json:"offset,omitempty" yaml:"offset,omitempty"`

	// lunar
	LunarType string `json:"lunarType,omitempty" yaml:"lunarType,omitempty"`

	// oneTime
	Year int    `json:"year,omitempty" yaml:"year,omitempty"`
	Date string `json:"date,omitempty" yaml:"date,omitempty"` // YYYY-MM-DD

	IsCustom bool `json:"isCustom,omitempty" yaml:"-"`
}

// Validate checks that the rule's variant fields are coherent.
func (r Rule) Validate() error {
	var errs []error

	if r.ID == "" {
		errs = append(errs, errors.New("rule id is required"))
	}
	if r.Name == "" {
		errs = append(errs, errors.New("rule name is required"))
	}

	switch r.Type {
	case TypeFixed:
		if r.Month < time.January || r.Month > time.December {
			errs = append(errs, fmt.Errorf("fixed rule month must be 1-12, got %d", r.Month))
		}
		if r.Day < 1 || r.Day > 31 {
			errs = append(errs, fmt.Errorf("fixed rule day must be 1-31, got %d", r.Day))
		}
	case TypeRelative:
		if r.Month < time.January || r.Month > time.December {
			errs = append(errs, fmt.Errorf("relative rule month must be 1-12, got %d", r.Month))
		}
		if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
			errs = append(errs, fmt.Errorf("relative rule weekday must be 0-6, got %d", r.Weekday))
		}
		if r.Nth < 1 || r.Nth > 5 {
			errs = append(errs, fmt.Errorf("relative rule nth must be 1-5, got %d", r.Nth))
		}
	case TypeEaster:
		// Any signed offset is valid.
	case TypeLunar:
		if r.LunarType != LunarLoyKrathong {
			errs = append(errs, fmt.Errorf("unknown lunar type %q", r.LunarType))
		}
	case TypeOneTime:
		if r.Year == 0 {
			errs = append(errs, errors.New("oneTime rule year is required"))
		}
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			errs = append(errs, fmt.Errorf("oneTime rule date must be YYYY-MM-DD: %w", err))
		} else if r.Year != 0 && date.Year() != r.Year {
			// A mismatched pair would compile to nothing in every year.
			errs = append(errs, fmt.Errorf("oneTime rule date %s is not in year %d", r.Date, r.Year))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown rule type %q", r.Type))
	}

	return errors.Join(errs...)
}

// BuiltinRules returns the registry of built-in holidays. The slice is newly
// allocated on each call so callers may append custom rules freely.
func BuiltinRules() []Rule {
	return []Rule{
		{ID: "new-year", Name: "New Year's Day", Emoji: "🎉", Color: "blue", Type: TypeFixed, Month: time.January, Day: 1},
		{ID: "valentines", Name: "Valentine's Day", Emoji: "❤️", Color: "pink", Type: TypeFixed, Month: time.February, Day: 14},
		{ID: "palm-sunday", Name: "Palm Sunday", Emoji: "🌿", Color: "green", Type: TypeEaster, Offset: -7},
		{ID: "good-friday", Name: "Good Friday", Emoji: "✝️", Color: "purple", Type: TypeEaster, Offset: -2},
		{ID: "easter", Name: "Easter Sunday", Emoji: "🐣", Color: "amber", Type: TypeEaster, Offset: 0},
		{ID: "pentecost", Name: "Pentecost", Emoji: "🔥", Color: "red", Type: TypeEaster, Offset: 49},
		{ID: "songkran", Name: "Songkran", Emoji: "💦", Color: "teal", Type: TypeFixed, Month: time.April, Day: 13},
		{ID: "mothers-day", Name: "Mother's Day (US)", Emoji: "💐", Color: "pink", Type: TypeRelative, Month: time.May, Weekday: time.Sunday, Nth: 2},
		{ID: "fathers-day", Name: "Father's Day (US)", Emoji: "👔", Color: "blue", Type: TypeRelative, Month: time.June, Weekday: time.Sunday, Nth: 3},
		{ID: "thanksgiving", Name: "Thanksgiving (US)", Emoji: "🦃", Color: "orange", Type: TypeRelative, Month: time.November, Weekday: time.Thursday, Nth: 4},
		{ID: "loy-krathong", Name: "Loy Krathong", Emoji: "🏮", Color: "amber", Type: TypeLunar, LunarType: LunarLoyKrathong},
		{ID: "christmas-eve", Name: "Christmas Eve", Emoji: "🕯️", Color: "green", Type: TypeFixed, Month: time.December, Day: 24},
		{ID: "christmas", Name: "Christmas Day", Emoji: "🎄", Color: "red", Type: TypeFixed, Month: time.December, Day: 25},
		{ID: "new-years-eve", Name: "New Year's Eve", Emoji: "🎆", Color: "purple", Type: TypeFixed, Month: time.December, Day: 31},
	}
}
