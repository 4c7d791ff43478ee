package toolutil

import (
	"testing"
	"time"
)

func TestOrDefault(t *testing.T) {
	tests := []struct{ v, def, want int }{
		{0, 20, 20},
		{-5, 20, 20},
		{7, 20, 7},
	}
	for _, tt := range tests {
		if got := OrDefault(tt.v, tt.def); got != tt.want {
			t.Errorf("OrDefault(%d, %d) = %d, want %d", tt.v, tt.def, got, tt.want)
		}
	}
}

func TestRequired(t *testing.T) {
	if err := Required("url", "  "); err == nil || err.Error() != "url is required" {
		t.Errorf("Required blank = %v", err)
	}
	if err := Required("url", "x"); err != nil {
		t.Errorf("Required(x) = %v", err)
	}
}

func TestCleanURLs(t *testing.T) {
	got := CleanURLs([]string{" a ", "", "b", "   "})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("CleanURLs = %q", got)
	}
}

func TestTimestamp(t *testing.T) {
	if got := Timestamp(time.Time{}); got != "" {
		t.Errorf("zero time = %q", got)
	}
	at := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := Timestamp(at); got != "2026-03-15T00:00:00Z" {
		t.Errorf("Timestamp = %q", got)
	}
}
