package scheduling

import (
	"testing"
	"time"
)

func TestGenerateSlotsEmptyBookings(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	buckets := GenerateSlots(nil, now)

	if len(buckets) != 7 {
		t.Fatalf("expected 7 day buckets, got %d", len(buckets))
	}

	for i, bucket := range buckets {
		if len(bucket) != 22 {
			t.Errorf("day %d: expected 22 slots between 10:00 and 21:00, got %d", i, len(bucket))
		}
		if bucket[0].Time != "10:00 AM" {
			t.Errorf("day %d: first slot %q, want 10:00 AM", i, bucket[0].Time)
		}
		if last := bucket[len(bucket)-1].Time; last != "8:30 PM" {
			t.Errorf("day %d: last slot %q, want 8:30 PM", i, last)
		}
		for j := 1; j < len(bucket); j++ {
			if diff := bucket[j].Datetime.Sub(bucket[j-1].Datetime); diff != 30*time.Minute {
				t.Fatalf("day %d slot %d: spacing %v, want 30m", i, j, diff)
			}
		}
		for _, slot := range bucket {
			if slot.Booked {
				t.Errorf("slot %s %s marked booked with no bookings", SlotDateKey(slot.Datetime), slot.Time)
			}
		}
	}
}

func TestGenerateSlotsTodaySnapsForward(t *testing.T) {
	now := time.Date(2026, 3, 10, 13, 10, 0, 0, time.UTC)
	buckets := GenerateSlots(nil, now)

	first := buckets[0][0]
	if first.Time != "1:30 PM" {
		t.Fatalf("first slot today %q, want 1:30 PM", first.Time)
	}
	if first.Datetime.Day() != 10 {
		t.Fatalf("first bucket should still be today, got day %d", first.Datetime.Day())
	}
}

func TestGenerateSlotsOnTheBoundary(t *testing.T) {
	now := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	buckets := GenerateSlots(nil, now)
	if buckets[0][0].Time != "11:00 AM" {
		t.Fatalf("first slot %q, want 11:00 AM", buckets[0][0].Time)
	}
}

func TestGenerateSlotsSkipsLateDay(t *testing.T) {
	// Booking at 20:45 on day D: window starts on D+1 at 10:00.
	now := time.Date(2026, 3, 10, 20, 45, 0, 0, time.UTC)
	buckets := GenerateSlots(nil, now)

	if len(buckets) != 7 {
		t.Fatalf("expected 7 day buckets, got %d", len(buckets))
	}
	first := buckets[0][0]
	if first.Datetime.Day() != 11 {
		t.Fatalf("first bucket on day %d, want 11", first.Datetime.Day())
	}
	if first.Time != "10:00 AM" {
		t.Fatalf("first slot %q, want 10:00 AM", first.Time)
	}
}

func TestGenerateSlotsJustBeforeCutoff(t *testing.T) {
	now := time.Date(2026, 3, 10, 19, 50, 0, 0, time.UTC)
	buckets := GenerateSlots(nil, now)

	first := buckets[0]
	if first[0].Datetime.Day() != 10 {
		t.Fatalf("19:50 should not skip today, got day %d", first[0].Datetime.Day())
	}
	if len(first) != 2 || first[0].Time != "8:00 PM" || first[1].Time != "8:30 PM" {
		t.Fatalf("unexpected remaining slots today: %+v", first)
	}
}

func TestGenerateSlotsMarksBooked(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	booked := map[string][]string{
		"10_3_2026": {"10:00 AM", "1:30 PM"},
		"12_3_2026": {"8:30 PM"},
	}
	buckets := GenerateSlots(booked, now)

	for _, bucket := range buckets {
		for _, slot := range bucket {
			want := contains(booked[SlotDateKey(slot.Datetime)], slot.Time)
			if slot.Booked != want {
				t.Errorf("slot %s %s: booked=%v, want %v", SlotDateKey(slot.Datetime), slot.Time, slot.Booked, want)
			}
		}
	}
	if !buckets[0][0].Booked {
		t.Error("10:00 AM today should be booked")
	}
}

func TestSlotDateKey(t *testing.T) {
	got := SlotDateKey(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	if got != "5_3_2026" {
		t.Fatalf("SlotDateKey = %q, want 5_3_2026", got)
	}
}

func TestParseSlotStartRoundTrip(t *testing.T) {
	start := time.Date(2026, 11, 28, 14, 30, 0, 0, time.UTC)
	parsed, err := ParseSlotStart(SlotDateKey(start), FormatSlotTime(start), time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(start) {
		t.Fatalf("round trip %v, want %v", parsed, start)
	}
}

func TestParseSlotStartRejectsGarbage(t *testing.T) {
	cases := [][2]string{
		{"28-11-2026", "10:00 AM"},
		{"28_11", "10:00 AM"},
		{"x_y_z", "10:00 AM"},
		{"28_13_2026", "10:00 AM"},
		{"28_11_2026", "25:00"},
	}
	for _, c := range cases {
		if _, err := ParseSlotStart(c[0], c[1], time.UTC); err == nil {
			t.Errorf("ParseSlotStart(%q, %q) should fail", c[0], c[1])
		}
	}
}

func TestIsExpired(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	date, label := SlotDateKey(start), FormatSlotTime(start)

	if IsExpired(date, label, start.Add(29*time.Minute)) {
		t.Error("expired before the 30 minute grace ran out")
	}
	if IsExpired(date, label, start.Add(30*time.Minute)) {
		t.Error("expired exactly at start+30m; expiry requires now to be past it")
	}
	if !IsExpired(date, label, start.Add(31*time.Minute)) {
		t.Error("not expired after start+30m")
	}
	if IsExpired("garbage", label, start) {
		t.Error("unparseable slot should not read as expired")
	}
}

func TestBookable(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if !Bookable("10_3_2026", "10:00 AM", now) {
		t.Error("first slot of today should be bookable")
	}
	if !Bookable("16_3_2026", "8:30 PM", now) {
		t.Error("last slot of day 7 should be bookable")
	}
	if Bookable("17_3_2026", "10:00 AM", now) {
		t.Error("day 8 is outside the window")
	}
	if Bookable("9_3_2026", "10:00 AM", now) {
		t.Error("yesterday is not bookable")
	}
	if Bookable("10_3_2026", "9:30 AM", now) {
		t.Error("slot before opening is not bookable")
	}
	if Bookable("10_3_2026", "10:15 AM", now) {
		t.Error("off-grid time is not bookable")
	}
}
