package tender

import (
	"time"
)

// Record is one awarded tender after preprocessing.
// Zero dates and an empty EntityCluster mean the value is unknown.
type Record struct {
	TenderID      string
	Entity        string
	Vendor        string
	RawEntity     string
	RawVendor     string
	EntityCluster string

	StartDate   time.Time
	CloseDate   time.Time
	AwardedDate time.Time

	AwardedAmount float64
	Duration      *int // days between start and close; nil if either date is unknown

	Goods        int
	Service      int
	Construction int

	RawDescription string // lower-cased description before normalization
	Description    string
}

// HasCluster reports whether the record's entity was found in the cluster table.
func (r Record) HasCluster() bool {
	return r.EntityCluster != ""
}

// StartYear returns the tender start year and whether it is known.
func (r Record) StartYear() (int, bool) {
	if r.StartDate.IsZero() {
		return 0, false
	}
	return r.StartDate.Year(), true
}

// AwardedYear returns the awarded year and whether it is known.
func (r Record) AwardedYear() (int, bool) {
	if r.AwardedDate.IsZero() {
		return 0, false
	}
	return r.AwardedDate.Year(), true
}

// Table is the prepared analysis dataset. It is not modified after load.
type Table struct {
	Records []Record
	MinYear int
	MaxYear int

	byID map[string]int
}

// NewTable indexes records and derives the start-year range.
func NewTable(records []Record) *Table {
	t := &Table{
		Records: records,
		byID:    make(map[string]int, len(records)),
	}
	first := true
	for i, r := range records {
		if _, dup := t.byID[r.TenderID]; !dup {
			t.byID[r.TenderID] = i
		}
		year, ok := r.StartYear()
		if !ok {
			continue
		}
		if first || year < t.MinYear {
			t.MinYear = year
		}
		if first || year > t.MaxYear {
			t.MaxYear = year
		}
		first = false
	}
	return t
}

// Get returns the record with the given tender id.
func (t *Table) Get(id string) (Record, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Record{}, false
	}
	return t.Records[i], true
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// ComputeDurations sets Duration on every record to close minus start in
// whole days, or nil when either date is unknown.
func ComputeDurations(records []Record) {
	for i := range records {
		records[i].Duration = DurationDays(records[i].StartDate, records[i].CloseDate)
	}
}

// DurationDays returns close-start in whole days, floored like a day count.
func DurationDays(start, close time.Time) *int {
	if start.IsZero() || close.IsZero() {
		return nil
	}
	d := close.Sub(start)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return &days
}
