package tender

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDurationDays(t *testing.T) {
	got := DurationDays(date(2021, 1, 1), date(2021, 1, 11))
	if got == nil || *got != 10 {
		t.Fatalf("expected 10 days, got %v", got)
	}

	if DurationDays(time.Time{}, date(2021, 1, 11)) != nil {
		t.Error("unknown start should yield nil duration")
	}
	if DurationDays(date(2021, 1, 1), time.Time{}) != nil {
		t.Error("unknown close should yield nil duration")
	}

	neg := DurationDays(date(2021, 1, 11), date(2021, 1, 1))
	if neg == nil || *neg != -10 {
		t.Errorf("expected -10 days for reversed dates, got %v", neg)
	}

	partial := DurationDays(date(2021, 1, 1), date(2021, 1, 2).Add(-time.Hour))
	if partial == nil || *partial != 0 {
		t.Errorf("expected 0 whole days, got %v", partial)
	}
}

func TestComputeDurations(t *testing.T) {
	records := []Record{
		{TenderID: "a", StartDate: date(2021, 1, 1), CloseDate: date(2021, 1, 11)},
		{TenderID: "b", StartDate: date(2021, 1, 1)},
	}
	ComputeDurations(records)

	if records[0].Duration == nil || *records[0].Duration != 10 {
		t.Errorf("record a: expected 10, got %v", records[0].Duration)
	}
	if records[1].Duration != nil {
		t.Errorf("record b: expected nil, got %v", *records[1].Duration)
	}
}

func TestNewTable(t *testing.T) {
	tbl := NewTable([]Record{
		{TenderID: "a", StartDate: date(2019, 5, 1)},
		{TenderID: "b", StartDate: date(2023, 2, 1)},
		{TenderID: "c"},
		{TenderID: "d", StartDate: date(2017, 8, 9)},
	})

	if tbl.MinYear != 2017 || tbl.MaxYear != 2023 {
		t.Errorf("year range: got %d-%d, want 2017-2023", tbl.MinYear, tbl.MaxYear)
	}
	if tbl.Len() != 4 {
		t.Errorf("expected 4 records, got %d", tbl.Len())
	}
	if r, ok := tbl.Get("b"); !ok || r.TenderID != "b" {
		t.Error("Get should find record b")
	}
	if _, ok := tbl.Get("zzz"); ok {
		t.Error("Get should not find unknown id")
	}
}
