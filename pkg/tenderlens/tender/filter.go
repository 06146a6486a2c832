package tender

import (
	"fmt"
	"strings"
)

// Category is one of the three binary tender category flags.
type Category string

const (
	Goods        Category = "goods"
	Service      Category = "service"
	Construction Category = "construction"
)

// Categories lists every category in display order.
var Categories = []Category{Goods, Service, Construction}

// ParseCategory accepts "goods", "GOODS", "Service", etc.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case Goods, Service, Construction:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Flag returns the record's 1/0 value for the category.
func (r Record) Flag(c Category) int {
	switch c {
	case Goods:
		return r.Goods
	case Service:
		return r.Service
	case Construction:
		return r.Construction
	}
	return 0
}

// Predicate selects records.
type Predicate func(Record) bool

// InCluster matches records whose entity belongs to the named cluster.
func InCluster(name string) Predicate {
	return func(r Record) bool { return r.EntityCluster == name }
}

// ForEntity matches records awarded by the named entity.
func ForEntity(name string) Predicate {
	return func(r Record) bool { return r.Entity == name }
}

// HasCategory matches records flagged with the category.
func HasCategory(c Category) Predicate {
	return func(r Record) bool { return r.Flag(c) == 1 }
}

// StartYearBetween matches records whose start year is within [from, to].
// A zero bound is open on that side. Records with an unknown start date
// never match.
func StartYearBetween(from, to int) Predicate {
	return func(r Record) bool {
		y, ok := r.StartYear()
		if !ok {
			return false
		}
		return (from == 0 || y >= from) && (to == 0 || y <= to)
	}
}

// Filter returns the records matching every predicate.
func Filter(records []Record, preds ...Predicate) []Record {
	out := make([]Record, 0, len(records))
outer:
	for _, r := range records {
		for _, p := range preds {
			if !p(r) {
				continue outer
			}
		}
		out = append(out, r)
	}
	return out
}

// Descriptions returns the cleaned description of every record, in order.
func Descriptions(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Description
	}
	return out
}
