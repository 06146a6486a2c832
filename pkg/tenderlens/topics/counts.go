package topics

import (
	"fmt"
	"sort"

	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
)

// YearCounts is a year by topic document count table.
type YearCounts struct {
	Years  []int   `json:"years"`
	Topics []int   `json:"topics"`
	Counts [][]int `json:"counts"` // Counts[year index][topic index]
}

// RowTotal returns the documents counted for the year at index i.
func (y YearCounts) RowTotal(i int) int {
	total := 0
	for _, n := range y.Counts[i] {
		total += n
	}
	return total
}

// Count returns the documents of topic in year.
func (y YearCounts) Count(year, topic int) int {
	yi := sort.SearchInts(y.Years, year)
	ti := sort.SearchInts(y.Topics, topic)
	if yi == len(y.Years) || y.Years[yi] != year || ti == len(y.Topics) || y.Topics[ti] != topic {
		return 0
	}
	return y.Counts[yi][ti]
}

// CountsByYear groups records by awarded year and assigned topic. Records
// with an unknown awarded year are left out. assignments[i] is the topic of
// records[i].
func CountsByYear(records []tender.Record, assignments []int) (YearCounts, error) {
	if len(records) != len(assignments) {
		return YearCounts{}, fmt.Errorf("counts by year: %d records but %d assignments", len(records), len(assignments))
	}

	cells := make(map[int]map[int]int)
	topicSet := make(map[int]struct{})
	for i, r := range records {
		year, ok := r.AwardedYear()
		if !ok {
			continue
		}
		row, ok := cells[year]
		if !ok {
			row = make(map[int]int)
			cells[year] = row
		}
		row[assignments[i]]++
		topicSet[assignments[i]] = struct{}{}
	}

	var yc YearCounts
	for year := range cells {
		yc.Years = append(yc.Years, year)
	}
	for topic := range topicSet {
		yc.Topics = append(yc.Topics, topic)
	}
	sort.Ints(yc.Years)
	sort.Ints(yc.Topics)

	yc.Counts = make([][]int, len(yc.Years))
	for yi, year := range yc.Years {
		yc.Counts[yi] = make([]int, len(yc.Topics))
		for ti, topic := range yc.Topics {
			yc.Counts[yi][ti] = cells[year][topic]
		}
	}
	return yc, nil
}
