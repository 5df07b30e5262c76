package availability

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDateRoundTrip(t *testing.T) {
	date, err := ParseDate("2026-09-07")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if date != NewDate(2026, time.September, 7) {
		t.Fatalf("unexpected date: %+v", date)
	}
	if date.String() != "2026-09-07" {
		t.Fatalf("unexpected string form: %s", date)
	}
	if date.Weekday() != time.Monday {
		t.Fatalf("expected Monday, got %s", date.Weekday())
	}

	if _, err := ParseDate("09/07/2026"); err == nil {
		t.Fatal("expected error for non ISO input")
	}
}

func TestDateJSON(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}

	encoded, err := json.Marshal(payload{Date: NewDate(2026, time.September, 7)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(encoded) != `{"date":"2026-09-07"}` {
		t.Fatalf("unexpected JSON: %s", encoded)
	}

	var decoded payload
	if err := json.Unmarshal([]byte(`{"date":"2026-12-31"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Date != NewDate(2026, time.December, 31) {
		t.Fatalf("unexpected decoded date: %+v", decoded.Date)
	}

	if err := json.Unmarshal([]byte(`{"date":"tomorrow"}`), &decoded); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestDateArithmeticCrossesMonthBoundaries(t *testing.T) {
	date := NewDate(2026, time.January, 31)
	next := date.AddDays(1)
	if next != NewDate(2026, time.February, 1) {
		t.Fatalf("expected Feb 1, got %s", next)
	}
	if !date.Before(next) || !next.After(date) {
		t.Fatal("ordering broken across month boundary")
	}
}
