package request

import (
	"fmt"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// ParseQueryDate parses an optional date query parameter. An empty value
// yields fallback. Accepts YYYY-MM-DD and RFC3339; the result is always
// truncated to its calendar day in UTC.
func ParseQueryDate(param string, fallback time.Time) (time.Time, error) {
	if param == "" {
		return model.Day(fallback), nil
	}
	t, err := parseQueryTime(param)
	if err != nil {
		return time.Time{}, err
	}
	return model.Day(t), nil
}

// ParseDateRange parses the required start_date and end_date parameters of
// a range query.
func ParseDateRange(startParam, endParam string) (start, end time.Time, err error) {
	if startParam == "" || endParam == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date and end_date are required")
	}

	start, err = parseQueryTime(startParam)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date format: %w", err)
	}
	end, err = parseQueryTime(endParam)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date format: %w", err)
	}
	return model.Day(start), model.Day(end), nil
}

// parseQueryTime accepts YYYY-MM-DD, RFC3339, and RFC3339 with milliseconds formats.
func parseQueryTime(str string) (time.Time, error) {
	for _, layout := range []string{model.DateLayout, time.RFC3339, "2006-01-02T15:04:05.000Z07:00"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date or datetime", str)
}
