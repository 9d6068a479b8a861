package policy

import (
	"testing"
	"time"
)

// mustWindow compiles spec or fails the test.
func mustWindow(t *testing.T, spec WindowSpec) Window {
	t.Helper()
	w, err := compileWindow(spec)
	if err != nil {
		t.Fatalf("compileWindow: %v", err)
	}
	return w
}

func TestWindowContains_BusinessHours(t *testing.T) {
	w := mustWindow(t, WindowSpec{
		Days:  []string{"mon", "tue", "wed", "thu", "fri"},
		Start: "08:00",
		End:   "18:00",
	})

	// 2025-09-02 is a Tuesday, 2025-09-06 a Saturday.
	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"tuesday morning inside", time.Date(2025, 9, 2, 9, 0, 0, 0, time.UTC), true},
		{"start is inclusive", time.Date(2025, 9, 2, 8, 0, 0, 0, time.UTC), true},
		{"end is exclusive", time.Date(2025, 9, 2, 18, 0, 0, 0, time.UTC), false},
		{"last minute inside", time.Date(2025, 9, 2, 17, 59, 0, 0, time.UTC), true},
		{"before start", time.Date(2025, 9, 2, 7, 59, 0, 0, time.UTC), false},
		{"saturday outside day set", time.Date(2025, 9, 6, 9, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := w.Contains(tc.at); got != tc.want {
				t.Errorf("Contains(%v) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestWindowContains_TimezoneConversion(t *testing.T) {
	w := mustWindow(t, WindowSpec{
		Days:     []string{"tue"},
		Start:    "08:00",
		End:      "18:00",
		Timezone: "America/New_York",
	})

	// 12:00 UTC on Tuesday is 08:00 in New York (EDT): inside.
	if !w.Contains(time.Date(2025, 9, 2, 12, 0, 0, 0, time.UTC)) {
		t.Error("12:00 UTC should be inside an 08:00 EDT window")
	}
	// 11:00 UTC is 07:00 EDT: outside.
	if w.Contains(time.Date(2025, 9, 2, 11, 0, 0, 0, time.UTC)) {
		t.Error("11:00 UTC should be outside an 08:00 EDT window")
	}
}

func TestWindowContains_Overnight(t *testing.T) {
	// Friday 22:00 through Saturday 02:00.
	w := mustWindow(t, WindowSpec{
		Days:      []string{"fri"},
		Start:     "22:00",
		End:       "02:00",
		Overnight: true,
	})

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"friday 23:00", time.Date(2025, 9, 5, 23, 0, 0, 0, time.UTC), true},
		{"saturday 01:00", time.Date(2025, 9, 6, 1, 0, 0, 0, time.UTC), true},
		{"saturday 02:00 end exclusive", time.Date(2025, 9, 6, 2, 0, 0, 0, time.UTC), false},
		{"friday 21:00 before start", time.Date(2025, 9, 5, 21, 0, 0, 0, time.UTC), false},
		{"thursday 23:00 wrong day", time.Date(2025, 9, 4, 23, 0, 0, 0, time.UTC), false},
		{"sunday 01:00 wrong following day", time.Date(2025, 9, 7, 1, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := w.Contains(tc.at); got != tc.want {
				t.Errorf("Contains(%v) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestCompileWindow_Malformed(t *testing.T) {
	cases := []struct {
		name string
		spec WindowSpec
	}{
		{"end before start without overnight", WindowSpec{Days: []string{"mon"}, Start: "18:00", End: "08:00"}},
		{"end equals start", WindowSpec{Days: []string{"mon"}, Start: "08:00", End: "08:00"}},
		{"unknown weekday", WindowSpec{Days: []string{"funday"}, Start: "08:00", End: "18:00"}},
		{"no days", WindowSpec{Start: "08:00", End: "18:00"}},
		{"bad start", WindowSpec{Days: []string{"mon"}, Start: "8am", End: "18:00"}},
		{"bad timezone", WindowSpec{Days: []string{"mon"}, Start: "08:00", End: "18:00", Timezone: "Mars/Olympus"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := compileWindow(tc.spec); err == nil {
				t.Errorf("expected error for %+v", tc.spec)
			}
		})
	}
}

func TestCompileWindow_FullDayNames(t *testing.T) {
	w := mustWindow(t, WindowSpec{
		Days:  []string{"Monday", "FRIDAY"},
		Start: "00:00",
		End:   "23:59",
	})
	if !w.Contains(time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)) { // Monday
		t.Error("full day names should parse case-insensitively")
	}
}
