package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2025-07-01", New(2025, time.July, 1), false},
		{"2025-7-1", New(2025, time.July, 1), false},
		{"01/07/2025", Date{}, true},
		{"", Date{}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestFromTime(t *testing.T) {
	loc := time.FixedZone("ART", -3*3600)
	// 23:30 in Buenos Aires is already the next day in UTC.
	ts := time.Date(2025, time.March, 10, 23, 30, 0, 0, loc)
	if got, want := FromTime(ts), New(2025, time.March, 10); got != want {
		t.Errorf("FromTime() = %v, want %v", got, want)
	}
}

func TestRange_Contains(t *testing.T) {
	jan1, jan15, jan31 := New(2025, 1, 1), New(2025, 1, 15), New(2025, 1, 31)
	testCases := []struct {
		name string
		r    Range
		d    Date
		want bool
	}{
		{"inside", Range{jan1, jan31}, jan15, true},
		{"lower bound included", Range{jan1, jan31}, jan1, true},
		{"upper bound included", Range{jan1, jan31}, jan31, true},
		{"before", Range{jan15, jan31}, jan1, false},
		{"after", Range{jan1, jan15}, jan31, false},
		{"open start", Range{To: jan15}, jan1, true},
		{"open end", Range{From: jan15}, jan31, true},
		{"fully open", Range{}, jan31, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.r.Contains(tc.d); got != tc.want {
				t.Errorf("Contains(%v) = %v, want %v", tc.d, got, tc.want)
			}
		})
	}
}

func TestRange_Valid(t *testing.T) {
	if err := (Range{New(2025, 2, 1), New(2025, 1, 1)}).Valid(); err == nil {
		t.Error("Valid() expected an error for an inverted range")
	}
	if err := (Range{From: New(2025, 2, 1)}).Valid(); err != nil {
		t.Errorf("Valid() unexpected error for half open range: %v", err)
	}
	if err := (Range{New(2025, 1, 1), New(2025, 1, 1)}).Valid(); err != nil {
		t.Errorf("Valid() unexpected error for a single day: %v", err)
	}
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		On Date `json:"on"`
	}
	var w wrapper
	if err := json.Unmarshal([]byte(`{"on":"2025-3-9"}`), &w); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if w.On != New(2025, time.March, 9) {
		t.Errorf("Unmarshal() = %v", w.On)
	}
	got, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"on":"2025-03-09"}`; string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}
