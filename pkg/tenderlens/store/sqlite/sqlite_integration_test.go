package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/tenderlens/pkg/tenderlens/store"
	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
)

func sampleRecords() []tender.Record {
	days := 10
	return []tender.Record{
		{
			TenderID:       "T-1",
			Entity:         "Dalhousie University",
			Vendor:         "Acme Inc.",
			RawEntity:      "Dalhousie Univ",
			RawVendor:      " Acme inc ",
			EntityCluster:  "Universities",
			StartDate:      time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			CloseDate:      time.Date(2021, 1, 11, 0, 0, 0, 0, time.UTC),
			AwardedDate:    time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC),
			AwardedAmount:  15000.5,
			Duration:       &days,
			Goods:          1,
			RawDescription: "supply of lab equipment",
			Description:    "supply lab equipment",
		},
		{
			TenderID:      "T-2",
			Entity:        "Nowhere Authority",
			Vendor:        "Beta Ltd",
			AwardedAmount: 2000,
			Service:       1,
		},
	}
}

// TestSQLiteRoundTrip tests a full write and read of a snapshot
func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "snapshot.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()

	if _, ok, err := st.Snapshot(ctx); err != nil || ok {
		t.Fatalf("Expected no snapshot yet, ok=%v err=%v", ok, err)
	}

	records := sampleRecords()
	meta := store.Snapshot{Source: "s3://tenders/raw.csv", ClusterVersion: 1}
	if err := st.ReplaceTenders(ctx, records, meta); err != nil {
		t.Fatalf("ReplaceTenders: %v", err)
	}

	got, ok, err := st.GetTender(ctx, "T-1")
	if err != nil || !ok {
		t.Fatalf("GetTender: ok=%v err=%v", ok, err)
	}
	want := records[0]
	if got.Entity != want.Entity || got.RawVendor != want.RawVendor || got.EntityCluster != want.EntityCluster {
		t.Errorf("Name fields mismatch: %+v", got)
	}
	if !got.StartDate.Equal(want.StartDate) || !got.AwardedDate.Equal(want.AwardedDate) {
		t.Errorf("Dates mismatch: %v %v", got.StartDate, got.AwardedDate)
	}
	if got.Duration == nil || *got.Duration != 10 {
		t.Errorf("Expected duration 10, got %v", got.Duration)
	}
	if got.AwardedAmount != 15000.5 || got.Goods != 1 || got.Description != want.Description {
		t.Errorf("Value fields mismatch: %+v", got)
	}

	second, ok, _ := st.GetTender(ctx, "T-2")
	if !ok {
		t.Fatal("T-2 should be stored")
	}
	if !second.StartDate.IsZero() || second.Duration != nil || second.HasCluster() {
		t.Errorf("Unknown values should round-trip as unknown: %+v", second)
	}

	all, err := st.ListTenders(ctx)
	if err != nil {
		t.Fatalf("ListTenders: %v", err)
	}
	if len(all) != 2 || all[0].TenderID != "T-1" || all[1].TenderID != "T-2" {
		t.Errorf("Expected insertion order, got %+v", all)
	}

	snap, ok, err := st.Snapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("Snapshot: ok=%v err=%v", ok, err)
	}
	if snap.Records != 2 || snap.ClusterVersion != 1 || snap.Source != meta.Source || snap.CreatedAt.IsZero() {
		t.Errorf("Unexpected snapshot %+v", snap)
	}

	if _, ok, err := st.GetTender(ctx, "missing"); err != nil || ok {
		t.Errorf("Missing tender: ok=%v err=%v", ok, err)
	}
}

// TestSQLiteReplace tests that a second snapshot replaces the first
func TestSQLiteReplace(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "snapshot.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := st.ReplaceTenders(ctx, sampleRecords(), store.Snapshot{}); err != nil {
		t.Fatalf("ReplaceTenders: %v", err)
	}
	if err := st.ReplaceTenders(ctx, sampleRecords()[1:], store.Snapshot{ClusterVersion: 2}); err != nil {
		t.Fatalf("ReplaceTenders: %v", err)
	}
	st.Close()

	// Reopen to check persistence.
	st, err = OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	all, err := st.ListTenders(ctx)
	if err != nil {
		t.Fatalf("ListTenders: %v", err)
	}
	if len(all) != 1 || all[0].TenderID != "T-2" {
		t.Errorf("Expected only T-2 after replace, got %+v", all)
	}
	snap, _, _ := st.Snapshot(ctx)
	if snap.ClusterVersion != 2 || snap.Records != 1 {
		t.Errorf("Unexpected snapshot after replace: %+v", snap)
	}
}
