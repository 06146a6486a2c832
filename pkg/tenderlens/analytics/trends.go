package analytics

import (
	"sort"

	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
)

// YearValue is an aggregated awarded amount for one group in one year.
type YearValue struct {
	Group  string  `json:"group"`
	Year   int     `json:"year"`
	Amount float64 `json:"amount"`
}

type groupYear struct {
	group string
	year  int
}

type accum struct {
	sum float64
	n   int
}

// groupByYear sums amounts per (group, awarded year). Records with an unknown
// awarded year or an empty group are skipped.
func groupByYear(records []tender.Record, groupOf func(tender.Record) string) (map[groupYear]accum, []groupYear) {
	cells := make(map[groupYear]accum)
	for _, r := range records {
		year, ok := r.AwardedYear()
		g := groupOf(r)
		if !ok || g == "" {
			continue
		}
		k := groupYear{group: g, year: year}
		a := cells[k]
		a.sum += r.AwardedAmount
		a.n++
		cells[k] = a
	}
	keys := make([]groupYear, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].group != keys[j].group {
			return keys[i].group < keys[j].group
		}
		return keys[i].year < keys[j].year
	})
	return cells, keys
}

func entityOf(r tender.Record) string  { return r.Entity }
func clusterOf(r tender.Record) string { return r.EntityCluster }

func averages(records []tender.Record, groupOf func(tender.Record) string) []YearValue {
	cells, keys := groupByYear(records, groupOf)
	out := make([]YearValue, len(keys))
	for i, k := range keys {
		a := cells[k]
		out[i] = YearValue{Group: k.group, Year: k.year, Amount: a.sum / float64(a.n)}
	}
	return out
}

// EntityYearAverage is the mean awarded amount per entity and awarded year.
func EntityYearAverage(records []tender.Record) []YearValue {
	return averages(records, entityOf)
}

// ClusterYearAverage is the mean awarded amount per cluster and awarded year.
func ClusterYearAverage(records []tender.Record) []YearValue {
	return averages(records, clusterOf)
}

// ClusterYearCumulative is the running total of awarded amounts per cluster,
// accumulated over awarded years in ascending order.
func ClusterYearCumulative(records []tender.Record) []YearValue {
	cells, keys := groupByYear(records, clusterOf)
	out := make([]YearValue, len(keys))
	running := 0.0
	for i, k := range keys {
		if i == 0 || keys[i-1].group != k.group {
			running = 0
		}
		running += cells[k].sum
		out[i] = YearValue{Group: k.group, Year: k.year, Amount: running}
	}
	return out
}
