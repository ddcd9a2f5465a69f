package binance

import (
	"fmt"
	"strconv"
	"strings"
)

// IntervalMillis converts an exchange interval token like "1m", "4h" or
// "1d" to its duration in milliseconds.
func IntervalMillis(interval string) (int64, error) {
	const (
		second = 1000
		minute = 60 * second
		hour   = 60 * minute
		day    = 24 * hour
		week   = 7 * day
	)

	if len(interval) < 2 {
		return 0, fmt.Errorf("bad interval: %q", interval)
	}

	letter := interval[len(interval)-1:]
	period, err := strconv.Atoi(strings.TrimSuffix(interval, letter))
	if err != nil || period <= 0 {
		return 0, fmt.Errorf("bad interval period: %q", interval)
	}

	var scale int64
	switch letter {
	case "s":
		scale = second
	case "m":
		scale = minute
	case "h":
		scale = hour
	case "d":
		scale = day
	case "w":
		scale = week
	default:
		return 0, fmt.Errorf("unexpected interval time letter: %q", letter)
	}
	return int64(period) * scale, nil
}
