package timecalc_test

import (
	"testing"
	"time"

	"github.com/nectime/nectime/internal/timecalc"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m"},
		{90, "1m"},
		{3600, "1h 0m"},
		{3661, "1h 1m"},
		{5400, "1h 30m"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDuration(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatDurationHHMMSS(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "00:00:00"},
		{61, "00:01:01"},
		{3661, "01:01:01"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDurationHHMMSS(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatDurationHHMMSS(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestDayKey(t *testing.T) {
	ts := time.Date(2026, 2, 27, 23, 59, 30, 0, time.UTC)
	if got := timecalc.DayKey(ts); got != "2026-02-27" {
		t.Errorf("DayKey = %q, want %q", got, "2026-02-27")
	}
}

func TestParseDay(t *testing.T) {
	d, err := timecalc.ParseDay("2026-02-27")
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	if d.Year() != 2026 || d.Month() != 2 || d.Day() != 27 {
		t.Errorf("ParseDay = %v", d)
	}
	if _, err := timecalc.ParseDay("27/02/2026"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestStartEndOfDay(t *testing.T) {
	ts := time.Date(2026, 2, 27, 13, 45, 12, 0, time.Local)
	start := timecalc.StartOfDay(ts)
	end := timecalc.EndOfDay(ts)
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Errorf("StartOfDay = %v", start)
	}
	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Errorf("EndOfDay = %v", end)
	}
	if start.Day() != ts.Day() || end.Day() != ts.Day() {
		t.Error("StartOfDay/EndOfDay changed the calendar day")
	}
}
