package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateJSONRoundTrip(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2026-01-01"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2026-01-01"` {
		t.Errorf("got %s, expected \"2026-01-01\"", out)
	}
}

func TestDateAcceptsTimestamps(t *testing.T) {
	inputs := []string{
		`"2026-01-01T15:30:00Z"`,
		`"2026-01-01T15:30:00+08:00"`,
		`"2026-01-01T15:30:00"`,
	}
	want := NewDate(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	for _, in := range inputs {
		var d Date
		if err := json.Unmarshal([]byte(in), &d); err != nil {
			t.Errorf("unmarshal %s: %v", in, err)
			continue
		}
		if !d.Equal(want) {
			t.Errorf("unmarshal %s = %s, expected 2026-01-01", in, d)
		}
	}
}

func TestDateEqualIgnoresTimeOfDay(t *testing.T) {
	a := Date(time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC))
	b := Date(time.Date(2026, 1, 1, 23, 59, 59, 0, time.UTC))
	c := Date(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))

	if !a.Equal(b) {
		t.Error("same day, different time of day: expected equal")
	}
	if a.Equal(c) {
		t.Error("different days: expected not equal")
	}
}

func TestDateZeroHandling(t *testing.T) {
	var zero, other Date
	if !zero.Equal(other) {
		t.Error("two zero dates must be equal")
	}
	if zero.Equal(NewDate(time.Now())) {
		t.Error("zero date must not equal a real date")
	}

	out, err := json.Marshal(zero)
	if err != nil {
		t.Fatalf("marshal zero: %v", err)
	}
	if string(out) != "null" {
		t.Errorf("zero date marshals to %s, expected null", out)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2026, 3, 15, 13, 45, 0, 0, time.UTC)); err != nil {
		t.Fatalf("scan time.Time: %v", err)
	}
	if d.String() != "2026-03-15" {
		t.Errorf("got %s, expected 2026-03-15", d)
	}

	if err := d.Scan("2026-03-16"); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if d.String() != "2026-03-16" {
		t.Errorf("got %s, expected 2026-03-16", d)
	}

	if err := d.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if !d.IsZero() {
		t.Error("scanning nil must produce the zero date")
	}
}
