package schedule

import (
	"sort"
	"time"

	"github.com/wavenation/wavenation/internal/models"
)

// State is the display state of the on-air widget
type State string

const (
	StateLoading State = "loading"
	StateLive    State = "live"
	StateUpNext  State = "up-next"
	StateIdle    State = "idle"
)

const scanDays = 7

// Slot is a schedule item with its effective days and times resolved
type Slot struct {
	models.RadioScheduleItem
	Days  []string `json:"days"`
	Start string   `json:"start"`
	End   string   `json:"end"`
}

// ResolvedSlot pins a slot to concrete instants
type ResolvedSlot struct {
	Slot
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// Resolution is what is airing now and what airs next
type Resolution struct {
	Live     *ResolvedSlot `json:"live"`
	UpNext   *ResolvedSlot `json:"up_next"`
	Schedule []Slot        `json:"schedule"`
}

// State reports which widget state the resolution maps to
func (r *Resolution) State() State {
	if r == nil {
		return StateLoading
	}
	if r.Live != nil {
		return StateLive
	}
	if r.UpNext != nil {
		return StateUpNext
	}
	return StateIdle
}

// Normalize applies show defaults to each item, drops items without days
// or valid start and end times, and orders the rest by start time.
func Normalize(items []models.RadioScheduleItem) []Slot {
	slots := make([]Slot, 0, len(items))
	for _, item := range items {
		var show models.ShowSchedule
		if item.RadioShow != nil {
			show = item.RadioShow.Schedule
		}

		days := item.DaysOfWeek
		if len(days) == 0 {
			days = show.Days
		}
		start := item.StartTime
		if start == "" {
			start = show.StartTime
		}
		end := item.EndTime
		if end == "" {
			end = show.EndTime
		}
		if len(days) == 0 || start == "" || end == "" {
			continue
		}

		startHHmm, err := Canonical(start)
		if err != nil {
			continue
		}
		endHHmm, err := Canonical(end)
		if err != nil {
			continue
		}

		normalized := make([]string, 0, len(days))
		for _, d := range days {
			if d = models.NormalizeDay(d); d != "" {
				normalized = append(normalized, d)
			}
		}
		if len(normalized) == 0 {
			continue
		}

		slots = append(slots, Slot{
			RadioScheduleItem: item,
			Days:              normalized,
			Start:             startHHmm,
			End:               endHHmm,
		})
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	return slots
}

// Resolve scans today and the following six days in loc. At offset zero
// the first slot containing now (inclusive) is live and later matches are
// ignored. The first slot starting after now on any scanned day is up
// next, whether or not something is live. Overlaps are settled by scan
// order only; priority is not consulted.
func Resolve(slots []Slot, now time.Time, loc *time.Location) Resolution {
	res := Resolution{Schedule: slots}
	if res.Schedule == nil {
		res.Schedule = []Slot{}
	}
	local := now.In(loc)

	for offset := 0; offset < scanDays; offset++ {
		base := time.Date(local.Year(), local.Month(), local.Day()+offset, 12, 0, 0, 0, loc)
		dayName := base.Weekday().String()

		for _, slot := range slots {
			if !hasDay(slot.Days, dayName) {
				continue
			}
			start, err := At(slot.Start, base, loc)
			if err != nil {
				continue
			}
			end, err := At(slot.End, base, loc)
			if err != nil {
				continue
			}

			if offset == 0 && res.Live == nil && !now.Before(start) && !now.After(end) {
				res.Live = &ResolvedSlot{Slot: slot, StartsAt: start, EndsAt: end}
				continue
			}
			if res.UpNext == nil && start.After(now) {
				res.UpNext = &ResolvedSlot{Slot: slot, StartsAt: start, EndsAt: end}
			}
		}

		if res.UpNext != nil {
			break
		}
	}
	return res
}

func hasDay(days []string, day string) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
