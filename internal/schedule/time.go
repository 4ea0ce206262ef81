// Package schedule resolves which radio show is on air and which is up
// next. Resolution happens in one authoritative timezone; display labels
// are a separate conversion into the viewer's timezone.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is the zone schedule times are authored in
const DefaultTimezone = "America/Chicago"

// ParseHHmm parses "HHmm", "HH:mm" or "H:mm" into hour and minute
func ParseHHmm(s string) (hour, minute int, err error) {
	raw := strings.TrimSpace(s)
	hh, mm := raw, ""
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		hh, mm = raw[:i], raw[i+1:]
		if len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
			return 0, 0, fmt.Errorf("invalid HHmm time string: %q", s)
		}
	} else {
		if len(raw) != 4 {
			return 0, 0, fmt.Errorf("invalid HHmm time string: %q", s)
		}
		hh, mm = raw[:2], raw[2:]
	}
	if !digits(hh) || !digits(mm) {
		return 0, 0, fmt.Errorf("invalid HHmm time string: %q", s)
	}
	hour, err = strconv.Atoi(hh)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid HHmm time string: %q", s)
	}
	minute, err = strconv.Atoi(mm)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid HHmm time string: %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid HHmm time string: %q", s)
	}
	return hour, minute, nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Canonical rewrites a valid time string as "HHmm"
func Canonical(s string) (string, error) {
	h, m, err := ParseHHmm(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d%02d", h, m), nil
}

// At returns the instant of hhmm on the calendar date that day falls on
// in loc. Offsets come from loc at that date, so DST is handled.
func At(hhmm string, day time.Time, loc *time.Location) (time.Time, error) {
	h, m, err := ParseHHmm(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := day.In(loc).Date()
	return time.Date(y, mo, d, h, m, 0, 0, loc), nil
}

// LoadLocation resolves a timezone name, falling back to the default
// authoritative zone and finally UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}
