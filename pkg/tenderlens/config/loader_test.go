package config

import (
	"context"
	"errors"
	"testing"

	"github.com/cognicore/tenderlens/pkg/tenderlens/cluster"
	"github.com/cognicore/tenderlens/pkg/tenderlens/internalerr"
)

func TestLoaderDefaultsWithoutFiles(t *testing.T) {
	cfg := Default()
	cfg.Dataset.VendorMapping = ""
	cfg.Dataset.EntityMapping = ""

	comp, err := (&Loader{Config: cfg}).Load(context.Background())
	if err != nil {
		t.Fatalf("Loader without mapping files should succeed: %v", err)
	}
	if comp.ClusterTable == nil || comp.ClusterTable.Len() == 0 {
		t.Error("Should fall back to the built-in cluster table")
	}
	if comp.Normalizer == nil || comp.Pipeline == nil {
		t.Error("Should build normalizer and pipeline")
	}
	if comp.Policy != cluster.PolicyNull {
		t.Errorf("Expected null policy, got %q", comp.Policy)
	}
}

func TestLoaderReadsResources(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Dataset.VendorMapping = writeFile(t, dir, "vendors.txt", `"Old Vendor X": "New Vendor Y",`+"\n")
	cfg.Dataset.EntityMapping = writeFile(t, dir, "entities.txt", `"Dal": "Dalhousie University",`+"\n")
	cfg.Dataset.ClusterTable = writeFile(t, dir, "clusters.yaml", "version: 9\nclusters:\n  - name: Universities\n    entities: [Dalhousie University]\n")
	cfg.Text.ExtraStopwords = []string{"tender"}
	cfg.Text.StoplistPath = writeFile(t, dir, "stop.yaml", "terms: [rfp]\n")

	comp, err := (&Loader{Config: cfg}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.VendorMapping.Apply("Old Vendor X") != "New Vendor Y" {
		t.Error("Vendor mapping not loaded")
	}
	if comp.EntityMapping.Apply("Dal") != "Dalhousie University" {
		t.Error("Entity mapping not loaded")
	}
	if comp.ClusterTable.Version != 9 {
		t.Errorf("Expected cluster table version 9, got %d", comp.ClusterTable.Version)
	}
	if !comp.Stoplist.IsStop("tender") || !comp.Stoplist.IsStop("rfp") || !comp.Stoplist.IsStop("the") {
		t.Error("Stoplist should combine English, extra words and the stoplist file")
	}
	if got := comp.Normalizer.Normalize("RFP for tender of road salt"); got != "road salt" {
		t.Errorf("Normalizer should use configured stopwords, got %q", got)
	}
}

func TestLoaderMissingMapping(t *testing.T) {
	cfg := Default()
	cfg.Dataset.VendorMapping = "/nonexistent/vendors.txt"

	_, err := (&Loader{Config: cfg}).Load(context.Background())
	if !errors.Is(err, internalerr.ErrResourceMissing) {
		t.Errorf("Expected ErrResourceMissing, got %v", err)
	}
}

func TestLoaderMarkupStripping(t *testing.T) {
	cfg := Default()
	cfg.Dataset.VendorMapping = ""
	cfg.Dataset.EntityMapping = ""

	comp, err := (&Loader{Config: cfg}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := comp.Normalizer.Normalize("valves<fittings>"); got != "valves fittings" {
		t.Errorf("Markup stripping should be off by default, got %q", got)
	}

	cfg.Text.StripMarkup = true
	comp, err = (&Loader{Config: cfg}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := comp.Normalizer.Normalize("<p><b>Asphalt</b> paving</p>"); got != "asphalt paving" {
		t.Errorf("Configured markup stripping should drop tags, got %q", got)
	}
}
