// Package schedule resolves a forecast snapshot against a point in time.
// Everything here is a pure function over an immutable snapshot: no I/O, no
// locks, safe for any number of concurrent readers.
package schedule

import (
	"time"

	"tariffwatch/internal/model"
)

// CurrentWindow returns the window containing now on today's date, if any.
func CurrentWindow(snap *model.ForecastSnapshot, now time.Time) (model.PriceWindow, bool) {
	if snap == nil {
		return model.PriceWindow{}, false
	}
	minute := model.MinuteOfDay(now)
	for _, w := range snap.Day(model.DateKey(now)) {
		if w.Contains(minute) {
			return w, true
		}
	}
	return model.PriceWindow{}, false
}

// CurrentPrice returns the price level in effect at now. The second result is
// false when no window covers the instant; that is not an error, simply "no
// data for this instant".
func CurrentPrice(snap *model.ForecastSnapshot, now time.Time) (model.Price, bool) {
	w, ok := CurrentWindow(snap, now)
	if !ok {
		return "", false
	}
	return w.Price, true
}

// MergedRemainingMinutes returns how many minutes remain until the price
// level changes, extending the current window through contiguous same-price
// neighbours and, when the run reaches midnight exactly, through tomorrow's
// contiguous head. A gap breaks the merge even when the price matches.
func MergedRemainingMinutes(snap *model.ForecastSnapshot, now time.Time) (int, bool) {
	if snap == nil {
		return 0, false
	}
	minute := model.MinuteOfDay(now)
	today := snap.Day(model.DateKey(now))

	idx := -1
	for i, w := range today {
		if w.Contains(minute) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return 0, false
	}

	price := today[idx].Price
	mergedEnd := today[idx].EndMinute
	for i := idx + 1; i < len(today); i++ {
		if today[i].StartMinute != mergedEnd || today[i].Price != price {
			break
		}
		mergedEnd = today[i].EndMinute
	}

	// Crossing midnight: only tomorrow's schedule is considered, and only
	// when its first window starts at 00:00 with the same price.
	if mergedEnd >= model.MinutesPerDay {
		tomorrow := snap.Day(model.DateKey(now.AddDate(0, 0, 1)))
		if len(tomorrow) > 0 && tomorrow[0].StartMinute == 0 && tomorrow[0].Price == price {
			mergedEnd = model.MinutesPerDay + tomorrow[0].EndMinute
			for j := 1; j < len(tomorrow); j++ {
				if tomorrow[j].StartMinute != mergedEnd-model.MinutesPerDay || tomorrow[j].Price != price {
					break
				}
				mergedEnd = model.MinutesPerDay + tomorrow[j].EndMinute
			}
		}
	}

	remaining := mergedEnd - minute
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Change describes the next scheduled window boundary. It is the next row of
// the schedule, not necessarily a different price: when today has no further
// windows, tomorrow's first window is reported even if its price matches.
type Change struct {
	Time  string      `json:"time"`
	Price model.Price `json:"price"`
	Date  string      `json:"date"`
}

// NextChange returns the first window starting strictly after now's
// minute-of-day, today first, then tomorrow's first window unconditionally.
func NextChange(snap *model.ForecastSnapshot, now time.Time) (Change, bool) {
	if snap == nil {
		return Change{}, false
	}
	minute := model.MinuteOfDay(now)
	todayKey := model.DateKey(now)
	for _, w := range snap.Day(todayKey) {
		if w.StartMinute > minute {
			return Change{Time: w.StartLabel, Price: w.Price, Date: todayKey}, true
		}
	}
	tomorrowKey := model.DateKey(now.AddDate(0, 0, 1))
	if tomorrow := snap.Day(tomorrowKey); len(tomorrow) > 0 {
		w := tomorrow[0]
		return Change{Time: w.StartLabel, Price: w.Price, Date: tomorrowKey}, true
	}
	return Change{}, false
}

// DaySchedule returns the windows for an exact date; empty when absent.
func DaySchedule(snap *model.ForecastSnapshot, date string) []model.PriceWindow {
	if snap == nil {
		return nil
	}
	return snap.Day(date)
}
