package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateOf(t *testing.T) {
	// Time-of-day and zone must not leak into the calendar date
	loc := time.FixedZone("JST", 9*3600)
	d := DateOf(time.Date(2024, time.March, 5, 23, 45, 0, 0, loc))

	if d.String() != "2024-03-05" {
		t.Errorf("Expected 2024-03-05, got %s", d)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-05")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d.String() != "2024-03-05" {
		t.Errorf("Expected 2024-03-05, got %s", d)
	}

	if _, err := ParseDate("05/03/2024"); err == nil {
		t.Error("Expected error for malformed date")
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.February, 28)

	next := d.AddDays(1)
	if next.String() != "2024-02-29" {
		t.Errorf("Expected leap day, got %s", next)
	}

	if got := next.DaysSince(d); got != 1 {
		t.Errorf("Expected 1 day since, got %d", got)
	}

	if got := d.DaysSince(next); got != -1 {
		t.Errorf("Expected -1 days since, got %d", got)
	}

	if !d.Before(next) || !next.After(d) {
		t.Error("Expected d < next")
	}

	if !d.Equal(NewDate(2024, time.February, 28)) {
		t.Error("Expected equal dates to compare equal")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.December, 31)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) != `"2024-12-31"` {
		t.Errorf("Expected quoted date string, got %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("Expected %s after round trip, got %s", d, back)
	}
}

func TestDateJSONZero(t *testing.T) {
	var d Date

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) != `""` {
		t.Errorf("Expected empty string for zero date, got %s", data)
	}

	var back Date
	if err := json.Unmarshal([]byte(`""`), &back); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !back.IsZero() {
		t.Errorf("Expected zero date, got %s", back)
	}
}
