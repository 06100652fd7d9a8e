package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariffwatch/internal/model"
)

const validBody = `{
	"current_price": "low",
	"forecasts": [
		{"date": "2026-03-14", "forecast": [
			{"hour_range": "06:00 - 22:00", "price": "high"},
			{"hour_range": "00:00 - 06:00", "price": "low"},
			{"hour_range": "22:00 - 23:59", "price": "LOW"}
		]},
		{"date": "2026-03-15", "forecast": [
			{"hour_range": "00:00 - 06:00", "price": "low"}
		]}
	]
}`

func serve(t *testing.T, status int, body string) *AMBFetcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewAMBFetcher(srv.URL, 5*time.Second)
}

func TestFetch_ValidPayload(t *testing.T) {
	f := serve(t, http.StatusOK, validBody)

	snap, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, model.PriceLow, snap.CurrentPrice)
	assert.WithinDuration(t, time.Now(), snap.FetchedAt, 5*time.Second)
	require.Len(t, snap.Days, 2)

	today := snap.Day("2026-03-14")
	require.Len(t, today, 3)
	// sorted by start minute even though the wire order was shuffled
	assert.Equal(t, 0, today[0].StartMinute)
	assert.Equal(t, 360, today[1].StartMinute)
	assert.Equal(t, 1320, today[2].StartMinute)
	// end-of-day marker normalizes to 1440, label survives for display
	assert.Equal(t, model.MinutesPerDay, today[2].EndMinute)
	assert.Equal(t, "23:59", today[2].EndLabel)
	// price labels normalize case-insensitively
	assert.Equal(t, model.PriceLow, today[2].Price)
}

func TestFetch_Non2xxStatus(t *testing.T) {
	f := serve(t, http.StatusBadGateway, "upstream broken")

	_, err := f.Fetch(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
}

func TestFetch_MissingRequiredKeys(t *testing.T) {
	for name, body := range map[string]string{
		"no current_price": `{"forecasts": []}`,
		"no forecasts":     `{"current_price": "low"}`,
		"null forecasts":   `{"current_price": "low", "forecasts": null}`,
		"not json":         `<html>maintenance</html>`,
	} {
		t.Run(name, func(t *testing.T) {
			f := serve(t, http.StatusOK, body)
			_, err := f.Fetch(context.Background())
			assert.True(t, IsValidation(err), "want validation error, got %v", err)
		})
	}
}

func TestFetch_BadPriceEnum(t *testing.T) {
	f := serve(t, http.StatusOK, `{"current_price": "medium", "forecasts": []}`)
	_, err := f.Fetch(context.Background())
	assert.True(t, IsValidation(err))

	f = serve(t, http.StatusOK, `{"current_price": "low", "forecasts": [
		{"date": "2026-03-14", "forecast": [{"hour_range": "00:00 - 06:00", "price": "cheap"}]}
	]}`)
	_, err = f.Fetch(context.Background())
	assert.True(t, IsValidation(err), "unrecognized window price label is a validation failure")
}

func TestFetch_RangeRowHandling(t *testing.T) {
	f := serve(t, http.StatusOK, `{"current_price": "low", "forecasts": [
		{"date": "2026-03-14", "forecast": [
			{"hour_range": "broken", "price": "low"},
			{"hour_range": "abc - 06:00", "price": "low"}
		]}
	]}`)

	snap, err := f.Fetch(context.Background())
	require.NoError(t, err)
	day := snap.Day("2026-03-14")
	require.Len(t, day, 1, "rows without the range separator are dropped")
	assert.Equal(t, 0, day[0].StartMinute, "malformed time token resolves to minute 0")
	assert.Equal(t, 360, day[0].EndMinute)
}

func TestValidateEndpoint(t *testing.T) {
	ctx := context.Background()

	ok := serve(t, http.StatusOK, validBody)
	assert.NoError(t, ValidateEndpoint(ctx, ok.URL, time.Second))

	bad := serve(t, http.StatusInternalServerError, "boom")
	assert.ErrorIs(t, ValidateEndpoint(ctx, bad.URL, time.Second), ErrCannotConnect)

	invalid := serve(t, http.StatusOK, `{"forecasts": []}`)
	assert.ErrorIs(t, ValidateEndpoint(ctx, invalid.URL, time.Second), ErrInvalidData)

	// closed server: connection refused
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	assert.ErrorIs(t, ValidateEndpoint(ctx, url, time.Second), ErrCannotConnect)
}

func TestRetryableClassification(t *testing.T) {
	assert.True(t, retryable(&StatusError{Code: 500}))
	assert.True(t, retryable(&ValidationError{Reason: "x"}))
	assert.False(t, retryable(errors.New("programming mistake")))
}
