package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"tariffwatch/internal/model"
)

// AMBFetcher implements Fetcher against the AMB dynamic energy REST endpoint.
type AMBFetcher struct {
	URL    string
	Client *http.Client
}

// NewAMBFetcher creates a fetcher with a bounded request timeout.
func NewAMBFetcher(apiURL string, timeout time.Duration) *AMBFetcher {
	return &AMBFetcher{
		URL: apiURL,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (f *AMBFetcher) Name() string { return "amb" }

// Wire shapes. Pointer fields distinguish an absent key from an empty value,
// since both top-level keys are required.
type wirePayload struct {
	CurrentPrice *string    `json:"current_price"`
	Forecasts    *[]wireDay `json:"forecasts"`
}

type wireDay struct {
	Date     string       `json:"date"`
	Forecast []wireWindow `json:"forecast"`
}

type wireWindow struct {
	HourRange string `json:"hour_range"`
	Price     string `json:"price"`
}

// Fetch performs one bounded GET and maps the payload into a typed snapshot.
// Transport failures come back as-is, a non-2xx response as *StatusError, and
// structural problems as *ValidationError.
func (f *AMBFetcher) Fetch(ctx context.Context) (*model.ForecastSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("amb fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("amb read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	return parsePayload(body, time.Now())
}

// parsePayload validates the wire JSON and builds the typed snapshot. All
// time-range parsing happens here, once; downstream code only sees minutes.
func parsePayload(body []byte, fetchedAt time.Time) (*model.ForecastSnapshot, error) {
	var raw wirePayload
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ValidationError{Reason: "undecodable body: " + err.Error()}
	}
	if raw.CurrentPrice == nil || raw.Forecasts == nil {
		return nil, &ValidationError{Reason: "missing current_price or forecasts"}
	}
	current, err := model.ParsePrice(*raw.CurrentPrice)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	snap := &model.ForecastSnapshot{
		FetchedAt:    fetchedAt,
		CurrentPrice: current,
		Days:         make([]model.DayForecast, 0, len(*raw.Forecasts)),
	}
	for _, day := range *raw.Forecasts {
		df := model.DayForecast{Date: day.Date}
		for _, row := range day.Forecast {
			start, end, ok := splitRange(row.HourRange)
			if !ok {
				continue // rows without a recognizable range are dropped
			}
			price, err := model.ParsePrice(row.Price)
			if err != nil {
				return nil, &ValidationError{Reason: fmt.Sprintf("day %s: %v", day.Date, err)}
			}
			df.Windows = append(df.Windows, model.PriceWindow{
				StartMinute: model.TimeToMinutes(start),
				EndMinute:   model.EndToMinutes(end),
				Price:       price,
				StartLabel:  start,
				EndLabel:    end,
			})
		}
		sort.SliceStable(df.Windows, func(i, j int) bool {
			return df.Windows[i].StartMinute < df.Windows[j].StartMinute
		})
		snap.Days = append(snap.Days, df)
	}
	return snap, nil
}

// splitRange splits an "HH:MM - HH:MM" label into its two tokens.
func splitRange(hourRange string) (start, end string, ok bool) {
	parts := strings.SplitN(hourRange, " - ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// ValidateEndpoint performs the one-shot connectivity check used at setup
// time. Transport-level problems (including non-2xx statuses) report as
// ErrCannotConnect; well-formed responses failing the structural contract
// report as ErrInvalidData.
func ValidateEndpoint(ctx context.Context, apiURL string, timeout time.Duration) error {
	f := NewAMBFetcher(apiURL, timeout)
	_, err := f.Fetch(ctx)

	var statusErr *StatusError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &statusErr):
		return fmt.Errorf("%w: %v", ErrCannotConnect, err)
	case IsValidation(err):
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	default:
		return fmt.Errorf("%w: %v", ErrCannotConnect, err)
	}
}
