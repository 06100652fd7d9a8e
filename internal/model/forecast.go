package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the exclusive upper bound for window minutes.
const MinutesPerDay = 24 * 60

// endOfDayLabel is the wire marker meaning "until midnight".
const endOfDayLabel = "23:59"

// Price is a normalized two-valued price level.
type Price string

const (
	PriceLow  Price = "low"
	PriceHigh Price = "high"
)

// ParsePrice normalizes a wire price label, case-insensitively.
func ParsePrice(s string) (Price, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriceLow, nil
	case "high":
		return PriceHigh, nil
	}
	return "", fmt.Errorf("unrecognized price label %q", s)
}

// PriceWindow is one row of a day's schedule: a half-open minute range
// [StartMinute, EndMinute) carrying one price level. The raw HH:MM
// labels are kept for display.
type PriceWindow struct {
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Price       Price  `json:"price"`
	StartLabel  string `json:"start"`
	EndLabel    string `json:"end"`
}

// Contains reports whether minute m falls inside the window.
func (w PriceWindow) Contains(m int) bool {
	return w.StartMinute <= m && m < w.EndMinute
}

// DayForecast holds one calendar day's windows, sorted by start minute.
// Windows never overlap but gaps between them are legal.
type DayForecast struct {
	Date    string        `json:"date"` // YYYY-MM-DD
	Windows []PriceWindow `json:"windows"`
}

// ForecastSnapshot is one complete forecast fetched at a point in time.
// Snapshots are immutable: a refresh replaces the whole value by reference,
// so concurrent readers never see a partially updated forecast.
type ForecastSnapshot struct {
	FetchedAt    time.Time     `json:"fetched_at"`
	CurrentPrice Price         `json:"current_price"`
	Days         []DayForecast `json:"days"`
}

// Day returns the windows for an exact date, or nil if the date is absent.
func (s *ForecastSnapshot) Day(date string) []PriceWindow {
	for _, d := range s.Days {
		if d.Date == date {
			return d.Windows
		}
	}
	return nil
}

// TimeToMinutes converts an HH:MM token to minutes since local midnight.
// Malformed tokens resolve to 0 rather than failing.
func TimeToMinutes(tok string) int {
	parts := strings.SplitN(strings.TrimSpace(tok), ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0
	}
	return h*60 + m
}

// EndToMinutes converts a window's end token. The end-of-day marker "23:59"
// normalizes to minute 1440 so the window is adjacent to the next day.
func EndToMinutes(tok string) int {
	if strings.TrimSpace(tok) == endOfDayLabel {
		return MinutesPerDay
	}
	return TimeToMinutes(tok)
}

// DateKey formats t as the YYYY-MM-DD key used to look up day forecasts.
func DateKey(t time.Time) string { return t.Format("2006-01-02") }

// MinuteOfDay returns t's minutes since local midnight.
func MinuteOfDay(t time.Time) int { return t.Hour()*60 + t.Minute() }
