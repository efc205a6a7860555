package holiday

import (
	"math"
	"time"
)

// LunarLoyKrathong is the only lunar holiday currently supported: the Thai
// festival on the full moon of the twelfth Thai lunar month.
const LunarLoyKrathong = "loy-krathong"

// synodicMonth is the mean length of a lunation in days, used only for the
// rough extrapolation below.
const synodicMonth = 29.53

// loyKrathongKnown holds observed festival dates. Years in this table are
// exact; anything outside it is approximated.
var loyKrathongKnown = map[int]string{
	2022: "2022-11-08",
	2023: "2023-11-27",
	2024: "2024-11-15",
	2025: "2025-11-05",
	2026: "2026-11-24",
	2027: "2027-11-14",
}

// lunarDate resolves a lunar holiday to a date for the given year.
//
// For years beyond the lookup table the date is extrapolated from the
// nearest known year using twelve mean lunations per year, nudged back into
// November. This is a deliberate approximation, not an astronomical
// computation; it drifts for far-future years and that behavior is
// documented and preserved.
func lunarDate(lunarType string, year int) (time.Time, bool) {
	if lunarType != LunarLoyKrathong {
		return time.Time{}, false
	}

	if iso, ok := loyKrathongKnown[year]; ok {
		date, err := time.Parse("2006-01-02", iso)
		if err != nil {
			return time.Time{}, false
		}
		return date, true
	}

	// Find the known year closest to the requested one.
	nearest := 0
	for known := range loyKrathongKnown {
		if nearest == 0 || absInt(year-known) < absInt(year-nearest) {
			nearest = known
		}
	}
	base, err := time.Parse("2006-01-02", loyKrathongKnown[nearest])
	if err != nil {
		return time.Time{}, false
	}

	yearDiff := year - nearest
	days := int(math.Round(float64(yearDiff) * 12 * synodicMonth))
	candidate := base.AddDate(0, 0, days)

	// Twelve lunations fall ~11 days short of a solar year, so the estimate
	// walks backward through the calendar. Re-anchor to late autumn of the
	// requested year one lunation at a time.
	lunation := int(math.Round(synodicMonth))
	for candidate.Year() < year || (candidate.Year() == year && candidate.Month() < time.October) {
		candidate = candidate.AddDate(0, 0, lunation)
	}
	for candidate.Year() > year {
		candidate = candidate.AddDate(0, 0, -lunation)
	}

	return time.Date(candidate.Year(), candidate.Month(), candidate.Day(), 0, 0, 0, 0, time.UTC), true
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
