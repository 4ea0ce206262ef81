package schedule

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// AirsInLabel is the countdown shown before a show starts
func AirsInLabel(start, now time.Time) string {
	diff := start.Sub(now)
	if diff <= 0 {
		return "Airing now"
	}

	mins := int(math.Round(diff.Minutes()))
	if mins < 60 {
		return fmt.Sprintf("Airs in %d min", mins)
	}
	if mins < 1440 {
		hrs := mins / 60
		return fmt.Sprintf("Airs in %d %s", hrs, plural(hrs, "hour"))
	}
	days := mins / 1440
	return fmt.Sprintf("Airs in %d %s", days, plural(days, "day"))
}

func plural(n int, word string) string {
	if n > 1 {
		return word + "s"
	}
	return word
}

// NextAirLabel names the next weekday a show airs on, as seen from the
// viewer's timezone. Returns "" when days is empty.
func NextAirLabel(days []string, now time.Time, viewer *time.Location) string {
	today := now.In(viewer).Weekday()
	if hasDay(days, today.String()) {
		return "Today"
	}
	for offset := 1; offset <= 7; offset++ {
		day := time.Weekday((int(today) + offset) % 7).String()
		if hasDay(days, day) {
			return "Next: " + day
		}
	}
	return ""
}

// FormatLocal renders an instant as a viewer-local clock time ("3:04 PM")
func FormatLocal(t time.Time, viewer *time.Location) string {
	return t.In(viewer).Format("3:04 PM")
}

// FormatAuthoritative renders hhmm on day as an editorial label in loc,
// including the zone abbreviation ("8:30 AM CST").
func FormatAuthoritative(hhmm string, day time.Time, loc *time.Location) (string, error) {
	t, err := At(hhmm, day, loc)
	if err != nil {
		return "", err
	}
	return t.Format("3:04 PM MST"), nil
}

// FormatHosts joins host names for display. Beyond limit names the rest
// are summarised as "+N". Returns "" for no hosts.
func FormatHosts(hosts []string, limit int) string {
	if limit <= 0 {
		limit = 3
	}
	switch n := len(hosts); {
	case n == 0:
		return ""
	case n == 1:
		return hosts[0]
	case n == 2:
		return hosts[0] + " & " + hosts[1]
	case n <= limit:
		return strings.Join(hosts[:n-1], ", ") + " & " + hosts[n-1]
	default:
		return fmt.Sprintf("%s +%d", strings.Join(hosts[:limit], ", "), n-limit)
	}
}

// OnAirView is a resolution decorated with viewer-local labels
type OnAirView struct {
	State         State         `json:"state"`
	Live          *ResolvedSlot `json:"live"`
	UpNext        *ResolvedSlot `json:"up_next"`
	AirsIn        string        `json:"airs_in,omitempty"`
	NextAir       string        `json:"next_air,omitempty"`
	StartsLocal   string        `json:"starts_local,omitempty"`
	EndsLocal     string        `json:"ends_local,omitempty"`
	Hosts         string        `json:"hosts,omitempty"`
	ViewerTZ      string        `json:"viewer_tz"`
	Authoritative string        `json:"authoritative_tz"`
}

// View builds the viewer-facing labels for a resolution. The slot shown is
// the live one, else the up-next one.
func View(res Resolution, now time.Time, loc, viewer *time.Location) OnAirView {
	v := OnAirView{
		State:         res.State(),
		Live:          res.Live,
		UpNext:        res.UpNext,
		ViewerTZ:      viewer.String(),
		Authoritative: loc.String(),
	}

	shown := res.Live
	if shown == nil {
		shown = res.UpNext
	}
	if shown == nil {
		return v
	}

	if res.Live == nil {
		v.AirsIn = AirsInLabel(shown.StartsAt, now)
		v.NextAir = NextAirLabel(localDays(shown, viewer), now, viewer)
	}
	v.StartsLocal = FormatLocal(shown.StartsAt, viewer)
	v.EndsLocal = FormatLocal(shown.EndsAt, viewer)
	if shown.RadioShow != nil {
		v.Hosts = FormatHosts(shown.RadioShow.Hosts, 3)
	}
	return v
}

// localDays is the weekday the resolved instant falls on for the viewer
func localDays(slot *ResolvedSlot, viewer *time.Location) []string {
	return []string{slot.StartsAt.In(viewer).Weekday().String()}
}
