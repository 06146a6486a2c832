package tenderlens

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/tenderlens/pkg/tenderlens/internalerr"
	"github.com/cognicore/tenderlens/pkg/tenderlens/mapping"
	"github.com/cognicore/tenderlens/pkg/tenderlens/preprocess"
	"github.com/cognicore/tenderlens/pkg/tenderlens/store/memstore"
	"github.com/cognicore/tenderlens/pkg/tenderlens/topics"
)

const dataset = `TENDER_ID,ENTITY,VENDOR,TENDER_START_DATE,TENDER_CLOSE_DATE,AWARDED_DATE,AWARDED_AMOUNT,TENDER_DESCRIPTION,GOODS,SERVICE,CONSTRUCTION
T-1,Dalhousie University,Old Vendor X,2021-01-01,2021-01-11,2021-02-01,15000,Laboratory equipment and microscopes,Y,N,N
T-2,Town of Truro,  Acme inc ,2021-03-01,2021-03-20,2021-04-01,999,Road salt,Y,N,N
T-3,Town of Truro,Nova Scotia Ltd.,2021-03-01,2021-03-20,2021-04-01,5000,Snow clearing,N,Y,N
T-4,Town of Truro,Paving Co,2020-05-01,2020-05-15,2020-06-01,250000,Asphalt paving of main street,N,N,Y
T-5,Nowhere Authority,Paving Co,2019-05-01,,2019-07-01,12000,Asphalt patching and road repair,N,N,Y
T-6,Acadia University,Compu Ltd,2022-01-10,2022-02-01,2022-03-01,40000,Laptop computers and software licenses,Y,N,N
`

func newLens(t *testing.T) *Lens {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tenders.csv")
	if err := os.WriteFile(path, []byte(dataset), 0644); err != nil {
		t.Fatal(err)
	}
	lens, err := New(Options{
		DatasetPath: path,
		Pipeline: preprocess.NewPipeline(preprocess.Options{
			VendorMapping: mapping.Mapping{"Old Vendor X": "New Vendor Y"},
		}),
		Modeler: topics.NewModeler(&topics.LDA{NumTopics: 2, TopWords: 5, Iterations: 20, Seed: 1}, topics.Options{}),
		Store:   memstore.New(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return lens
}

func TestPrepareDataset(t *testing.T) {
	lens := newLens(t)
	table, err := lens.PrepareDataset(context.Background())
	if err != nil {
		t.Fatalf("PrepareDataset: %v", err)
	}

	if table.Len() != 4 {
		t.Fatalf("Expected 4 records after cleaning, got %d", table.Len())
	}
	if _, ok := table.Get("T-2"); ok {
		t.Error("T-2 should be dropped for amount below 1000")
	}
	if _, ok := table.Get("T-3"); ok {
		t.Error("T-3 should be dropped for excluded vendor")
	}

	dal, _ := table.Get("T-1")
	if dal.Vendor != "New Vendor Y" {
		t.Errorf("Expected mapped vendor, got %q", dal.Vendor)
	}
	if dal.EntityCluster != "Universities" {
		t.Errorf("Expected Universities, got %q", dal.EntityCluster)
	}
	if dal.Duration == nil || *dal.Duration != 10 {
		t.Errorf("Expected duration 10, got %v", dal.Duration)
	}

	nowhere, _ := table.Get("T-5")
	if nowhere.HasCluster() || nowhere.Duration != nil {
		t.Errorf("Unmapped entity and missing close date should be null: %+v", nowhere)
	}

	if table.MinYear != 2019 || table.MaxYear != 2022 {
		t.Errorf("Expected years 2019-2022, got %d-%d", table.MinYear, table.MaxYear)
	}
}

func TestPrepareDatasetMissingFile(t *testing.T) {
	lens, err := New(Options{DatasetPath: filepath.Join(t.TempDir(), "absent.csv")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := lens.PrepareDataset(context.Background()); !errors.Is(err, internalerr.ErrResourceMissing) {
		t.Errorf("Expected ErrResourceMissing, got %v", err)
	}
}

func TestPrepareDatasetSchemaError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("TENDER_ID,VENDOR\nT-1,Acme\n"), 0644); err != nil {
		t.Fatal(err)
	}
	lens, _ := New(Options{DatasetPath: path})
	if _, err := lens.PrepareDataset(context.Background()); !errors.Is(err, internalerr.ErrSchema) {
		t.Errorf("Expected ErrSchema, got %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	lens := newLens(t)
	table, err := lens.PrepareDataset(ctx)
	if err != nil {
		t.Fatalf("PrepareDataset: %v", err)
	}
	if err := lens.SaveSnapshot(ctx, table); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	loaded, err := lens.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if loaded.Len() != table.Len() || loaded.MinYear != table.MinYear || loaded.MaxYear != table.MaxYear {
		t.Errorf("Snapshot mismatch: %d/%d records", loaded.Len(), table.Len())
	}
}

func TestTopicCountsByYear(t *testing.T) {
	ctx := context.Background()
	lens := newLens(t)
	table, err := lens.PrepareDataset(ctx)
	if err != nil {
		t.Fatalf("PrepareDataset: %v", err)
	}

	counts, out := lens.TopicCountsByYear(ctx, table.Records)
	if !out.Ready() {
		t.Fatalf("Expected ready outcome, got %s: %s", out.Status, out.Message)
	}
	perYear := make(map[int]int)
	for _, r := range table.Records {
		if y, ok := r.AwardedYear(); ok {
			perYear[y]++
		}
	}
	for i, year := range counts.Years {
		if counts.RowTotal(i) != perYear[year] {
			t.Errorf("Year %d: row total %d, want %d", year, counts.RowTotal(i), perYear[year])
		}
	}

	_, single := lens.TopicCountsByYear(ctx, table.Records[:1])
	if single.Status != topics.StatusInsufficientData || single.Message != topics.MsgNotEnoughForTimeline {
		t.Errorf("Expected insufficient data with timeline message, got %s: %q", single.Status, single.Message)
	}
}

func TestFitTopicsInsufficient(t *testing.T) {
	lens := newLens(t)
	out := lens.FitTopics(context.Background(), []string{"road salt", "road salt"})
	if out.Status != topics.StatusInsufficientData {
		t.Errorf("Expected insufficient data, got %s", out.Status)
	}
}
