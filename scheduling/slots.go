package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Booking windows run 10:00 to 21:00 in 30 minute steps, so the last
// bookable slot of a day starts at 20:30. Past 20:00 the current day is
// skipped entirely and the 7 day window starts tomorrow.
const (
	OpeningHour = 10
	ClosingHour = 21
	SlotMinutes = 30
	skipHour    = 20
	windowDays  = 7
)

type Slot struct {
	Datetime time.Time `json:"datetime"`
	Time     string    `json:"time"`
	Booked   bool      `json:"booked"`
}

// SlotDateKey renders the date key used in slots_booked maps and in the
// booked_slots table, e.g. "28_8_2026". No zero padding.
func SlotDateKey(t time.Time) string {
	return fmt.Sprintf("%d_%d_%d", t.Day(), int(t.Month()), t.Year())
}

// FormatSlotTime renders the time label stored at booking time,
// e.g. "10:00 AM", "1:30 PM". Slots are matched by exact string
// equality against this label, nothing ever normalizes it.
func FormatSlotTime(t time.Time) string {
	return t.Format("3:04 PM")
}

// ParseSlotStart reverses SlotDateKey + FormatSlotTime.
func ParseSlotStart(slotDate, slotTime string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(slotDate, "_")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid slot date %q", slotDate)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot date %q", slotDate)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot date %q", slotDate)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot date %q", slotDate)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid slot date %q", slotDate)
	}
	clock, err := time.Parse("3:04 PM", slotTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot time %q", slotTime)
	}
	return time.Date(year, time.Month(month), day, clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// IsExpired reports whether now is past the slot start plus a 30 minute
// grace. Unparseable slots are treated as not expired.
func IsExpired(slotDate, slotTime string, now time.Time) bool {
	start, err := ParseSlotStart(slotDate, slotTime, now.Location())
	if err != nil {
		return false
	}
	return now.After(start.Add(SlotMinutes * time.Minute))
}

// GenerateSlots produces 7 day-buckets of half-hour slots for a doctor,
// marking as booked every slot whose label appears in slotsBooked under
// the day's date key. Output is recomputed in full on every call.
func GenerateSlots(slotsBooked map[string][]string, now time.Time) [][]Slot {
	offset := 0
	if now.Hour() >= skipHour {
		offset = 1
	}

	buckets := make([][]Slot, 0, windowDays)
	for i := 0; i < windowDays; i++ {
		day := now.AddDate(0, 0, i+offset)
		dayKey := SlotDateKey(day)
		booked := slotsBooked[dayKey]

		cursor := time.Date(day.Year(), day.Month(), day.Day(), OpeningHour, 0, 0, 0, now.Location())
		if i == 0 && offset == 0 {
			if next := nextHalfHour(now); next.After(cursor) {
				cursor = next
			}
		}
		end := time.Date(day.Year(), day.Month(), day.Day(), ClosingHour, 0, 0, 0, now.Location())

		var slots []Slot
		for cursor.Before(end) {
			label := FormatSlotTime(cursor)
			slots = append(slots, Slot{
				Datetime: cursor,
				Time:     label,
				Booked:   contains(booked, label),
			})
			cursor = cursor.Add(SlotMinutes * time.Minute)
		}
		buckets = append(buckets, slots)
	}
	return buckets
}

// Bookable reports whether the slot is one GenerateSlots would emit right
// now, ignoring reservations. The booking handler calls this so that the
// server accepts exactly the slots the client was offered.
func Bookable(slotDate, slotTime string, now time.Time) bool {
	for _, bucket := range GenerateSlots(nil, now) {
		for _, slot := range bucket {
			if slot.Time == slotTime && SlotDateKey(slot.Datetime) == slotDate {
				return true
			}
		}
	}
	return false
}

// nextHalfHour snaps t forward to the nearest half-hour boundary at or
// after t.
func nextHalfHour(t time.Time) time.Time {
	base := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	switch {
	case t.Equal(base):
		return base
	case t.Sub(base) <= 30*time.Minute:
		return base.Add(30 * time.Minute)
	default:
		return base.Add(time.Hour)
	}
}

func contains(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
