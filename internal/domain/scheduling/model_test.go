package scheduling

import (
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2030, 6, 3, 9, 0, 0, 0, time.UTC)
	h := func(n int) time.Time { return base.Add(time.Duration(n) * time.Hour) }

	cases := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", h(0), h(1), h(0), h(1), true},
		{"partial", h(0), h(2), h(1), h(3), true},
		{"contained", h(0), h(3), h(1), h(2), true},
		{"touching", h(0), h(1), h(1), h(2), false},
		{"disjoint", h(0), h(1), h(2), h(3), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.s1, tc.e1, tc.s2, tc.e2); got != tc.want {
				t.Errorf("Overlaps() = %v, want %v", got, tc.want)
			}
			// Symmetric.
			if got := Overlaps(tc.s2, tc.e2, tc.s1, tc.e1); got != tc.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStatusPredicates(t *testing.T) {
	terminal := map[AppointmentStatus]bool{
		StatusScheduled: false,
		StatusConfirmed: false,
		StatusCompleted: true,
		StatusCanceled:  true,
		StatusNoShow:    true,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}

	for status := range terminal {
		want := status != StatusCanceled
		if got := status.Active(); got != want {
			t.Errorf("%s.Active() = %v, want %v", status, got, want)
		}
	}
}

func TestWindowInterval(t *testing.T) {
	w := &AvailabilityWindow{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60}
	monday := time.Date(2030, 6, 3, 15, 30, 0, 0, time.UTC)

	start, end := w.Interval(monday)
	if !start.Equal(time.Date(2030, 6, 3, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("expected start 09:00, got %s", start)
	}
	if !end.Equal(time.Date(2030, 6, 3, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("expected end 12:00, got %s", end)
	}
}

func TestWindowInterval_Midnight(t *testing.T) {
	w := &AvailabilityWindow{Weekday: time.Monday, StartMinute: 22 * 60, EndMinute: 1440}
	monday := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

	_, end := w.Interval(monday)
	if !end.Equal(time.Date(2030, 6, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected end at next midnight, got %s", end)
	}
}
