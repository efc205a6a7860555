package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/zapponejosh/ministry-planner/internal/holiday"
)

// This script prints every computed holiday for a year, useful for sanity
// checking rule changes before they reach the server.

func main() {
	year := flag.Int("year", time.Now().Year(), "Year to compute holidays for")
	rulesPath := flag.String("rules", "", "Optional YAML rules file to merge with built-ins")
	flag.Parse()

	rules := holiday.BuiltinRules()
	if *rulesPath != "" {
		extra, err := holiday.LoadRulesFile(*rulesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load rules file: %v\n", err)
			os.Exit(1)
		}
		rules = append(rules, extra...)
	}

	index := holiday.CompileYear(*year, rules)

	var all []holiday.Calculated
	for _, group := range index.ByDate {
		all = append(all, group...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CalculatedDate != all[j].CalculatedDate {
			return all[i].CalculatedDate < all[j].CalculatedDate
		}
		return all[i].ID < all[j].ID
	})

	fmt.Printf("=== Holidays for %d (%d of %d rules occur) ===\n\n", *year, len(all), len(rules))
	for _, h := range all {
		emoji := h.Emoji
		if emoji == "" {
			emoji = "  "
		}
		fmt.Printf("  %s  %s %s (%s, week %s)\n",
			h.CalculatedDate, emoji, h.Name, h.Type, weekOf(h.Date))
	}
}

func weekOf(d time.Time) string {
	y, w := d.ISOWeek()
	return fmt.Sprintf("%d-W%02d", y, w)
}
