package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxClockHours bounds the hours field so a total always fits comfortably in an int.
const MaxClockHours = 999

var ErrInvalidClock = errors.New("time must be HH:MM:SS or HH:MM")

// ParseClock converts "HH:MM:SS" or "HH:MM" into total seconds.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, ErrInvalidClock
	}

	limits := []int{MaxClockHours, 59, 59}
	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || p == "" {
			return 0, ErrInvalidClock
		}
		if n > limits[i] {
			return 0, ErrInvalidClock
		}
		total = total*60 + n
	}

	// HH:MM carries no seconds field
	if len(parts) == 2 {
		total *= 60
	}
	return total, nil
}

// FormatClock renders seconds as HH:MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
