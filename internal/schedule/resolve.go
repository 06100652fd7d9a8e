package schedule

import (
	"fmt"
	"time"

	"tariffwatch/internal/model"
)

// Period describes the window currently in effect, with remaining minutes in
// the merged same-price block.
type Period struct {
	Start            string      `json:"start"`
	End              string      `json:"end"`
	Price            model.Price `json:"price"`
	RemainingMinutes int         `json:"remaining_minutes"`
}

// ChartPoint is one plottable row of the full forecast (low=0, high=1).
type ChartPoint struct {
	Date       string      `json:"date"`
	StartTime  string      `json:"start_time"`
	EndTime    string      `json:"end_time"`
	Price      model.Price `json:"price"`
	PriceValue int         `json:"price_value"`
	Timestamp  string      `json:"timestamp"`
}

// State is the full resolved view handed to the presentation layer. It is
// recomputed on every read against the latest snapshot and the supplied now;
// nothing in it is cached between reads.
type State struct {
	CurrentPrice       model.Price         `json:"current_price"`
	LastUpdated        string              `json:"last_updated"`
	CurrentPeriod      *Period             `json:"current_period,omitempty"`
	RemainingFormatted string              `json:"remaining_formatted,omitempty"`
	NextChange         *Change             `json:"next_change,omitempty"`
	TodaySchedule      []model.PriceWindow `json:"today_schedule"`
	TomorrowSchedule   []model.PriceWindow `json:"tomorrow_schedule"`
	Forecasts          []model.DayForecast `json:"forecasts"`
	Summary            string              `json:"summary"`
	ChartData          []ChartPoint        `json:"chart_data"`
}

// Resolve assembles the full state for a snapshot at a given instant.
// Returns nil when there is no snapshot yet.
func Resolve(snap *model.ForecastSnapshot, now time.Time) *State {
	if snap == nil {
		return nil
	}
	st := &State{
		CurrentPrice:     snap.CurrentPrice,
		LastUpdated:      snap.FetchedAt.Format(time.RFC3339),
		TodaySchedule:    DaySchedule(snap, model.DateKey(now)),
		TomorrowSchedule: DaySchedule(snap, model.DateKey(now.AddDate(0, 0, 1))),
		Forecasts:        snap.Days,
		ChartData:        chartData(snap),
	}

	if w, ok := CurrentWindow(snap, now); ok {
		remaining, _ := MergedRemainingMinutes(snap, now)
		st.CurrentPeriod = &Period{
			Start:            w.StartLabel,
			End:              w.EndLabel,
			Price:            w.Price,
			RemainingMinutes: remaining,
		}
		st.RemainingFormatted = FormatMinutes(remaining)
	}
	if ch, ok := NextChange(snap, now); ok {
		st.NextChange = &ch
	}

	st.Summary = fmt.Sprintf("Today: %d periods", len(st.TodaySchedule))
	if len(st.TomorrowSchedule) > 0 {
		st.Summary += fmt.Sprintf(", Tomorrow: %d periods", len(st.TomorrowSchedule))
	}
	return st
}

// FormatMinutes renders a minute count as "2h 5m" or "45m".
func FormatMinutes(m int) string {
	if m >= 60 {
		return fmt.Sprintf("%dh %dm", m/60, m%60)
	}
	return fmt.Sprintf("%dm", m)
}

func chartData(snap *model.ForecastSnapshot) []ChartPoint {
	var points []ChartPoint
	for _, day := range snap.Days {
		for _, w := range day.Windows {
			v := 0
			if w.Price == model.PriceHigh {
				v = 1
			}
			points = append(points, ChartPoint{
				Date:       day.Date,
				StartTime:  w.StartLabel,
				EndTime:    w.EndLabel,
				Price:      w.Price,
				PriceValue: v,
				Timestamp:  fmt.Sprintf("%sT%s:00", day.Date, w.StartLabel),
			})
		}
	}
	return points
}
