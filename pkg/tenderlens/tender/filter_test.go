package tender

import "testing"

func sampleRecords() []Record {
	return []Record{
		{TenderID: "1", Entity: "Town of Truro", EntityCluster: "Towns", Goods: 1, StartDate: date(2020, 3, 1)},
		{TenderID: "2", Entity: "Town of Truro", EntityCluster: "Towns", Service: 1, StartDate: date(2021, 3, 1)},
		{TenderID: "3", Entity: "Dalhousie University", EntityCluster: "Universities", Goods: 1, Service: 1},
		{TenderID: "4", Entity: "Acadia University", EntityCluster: "Universities", Construction: 1, StartDate: date(2022, 1, 1)},
	}
}

func TestFilterComposes(t *testing.T) {
	records := sampleRecords()

	tests := []struct {
		name  string
		preds []Predicate
		want  []string
	}{
		{"no predicates", nil, []string{"1", "2", "3", "4"}},
		{"cluster", []Predicate{InCluster("Universities")}, []string{"3", "4"}},
		{"entity", []Predicate{ForEntity("Town of Truro")}, []string{"1", "2"}},
		{"cluster and goods", []Predicate{InCluster("Universities"), HasCategory(Goods)}, []string{"3"}},
		{"goods and service", []Predicate{HasCategory(Goods), HasCategory(Service)}, []string{"3"}},
		{"year range", []Predicate{StartYearBetween(2020, 2021)}, []string{"1", "2"}},
		{"from only", []Predicate{StartYearBetween(2021, 0)}, []string{"2", "4"}},
		{"to only", []Predicate{StartYearBetween(0, 2020)}, []string{"1"}},
		{"nothing", []Predicate{InCluster("Health")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, tt.preds...)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d records, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].TenderID != tt.want[i] {
					t.Errorf("record %d: got %s, want %s", i, got[i].TenderID, tt.want[i])
				}
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, in := range []string{"goods", "GOODS", " Service ", "construction"} {
		if _, err := ParseCategory(in); err != nil {
			t.Errorf("ParseCategory(%q): %v", in, err)
		}
	}
	if _, err := ParseCategory("furniture"); err == nil {
		t.Error("unknown category should error")
	}
}
