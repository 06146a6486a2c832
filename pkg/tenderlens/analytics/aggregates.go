// Package analytics computes the dashboard aggregates over tender records.
package analytics

import (
	"sort"
	"strings"

	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
)

// Summary describes a set of records.
type Summary struct {
	Records          int     `json:"records"`
	TotalEntities    int     `json:"total_entities"`
	TotalVendors     int     `json:"total_vendors"`
	MinAwardedAmount float64 `json:"min_awarded_amount"`
	MaxAwardedAmount float64 `json:"max_awarded_amount"`
	MinYear          int     `json:"min_year"`
	MaxYear          int     `json:"max_year"`
}

// Summarize computes distinct counts and ranges. Years come from tender start dates.
func Summarize(records []tender.Record) Summary {
	s := Summary{Records: len(records)}
	entities := make(map[string]struct{})
	vendors := make(map[string]struct{})
	haveYear := false

	for i, r := range records {
		entities[r.Entity] = struct{}{}
		vendors[r.Vendor] = struct{}{}
		if i == 0 || r.AwardedAmount < s.MinAwardedAmount {
			s.MinAwardedAmount = r.AwardedAmount
		}
		if i == 0 || r.AwardedAmount > s.MaxAwardedAmount {
			s.MaxAwardedAmount = r.AwardedAmount
		}
		if year, ok := r.StartYear(); ok {
			if !haveYear || year < s.MinYear {
				s.MinYear = year
			}
			if !haveYear || year > s.MaxYear {
				s.MaxYear = year
			}
			haveYear = true
		}
	}
	s.TotalEntities = len(entities)
	s.TotalVendors = len(vendors)
	return s
}

// VendorCount is the number of awards won by a vendor.
type VendorCount struct {
	Vendor    string `json:"vendor"`
	Frequency int    `json:"frequency"`
}

// VendorFrequency counts awards per vendor, most frequent first. limit <= 0
// returns every vendor.
func VendorFrequency(records []tender.Record, limit int) []VendorCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Vendor]++
	}
	out := make([]VendorCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, VendorCount{Vendor: v, Frequency: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Vendor < out[j].Vendor
	})
	return head(out, limit)
}

// VendorAmount is the total awarded to a vendor.
type VendorAmount struct {
	Vendor        string  `json:"vendor"`
	AwardedAmount float64 `json:"awarded_amount"`
}

// VendorAmounts sums awarded amounts per vendor, largest first.
func VendorAmounts(records []tender.Record, limit int) []VendorAmount {
	sums := make(map[string]float64)
	for _, r := range records {
		sums[r.Vendor] += r.AwardedAmount
	}
	out := make([]VendorAmount, 0, len(sums))
	for v, amt := range sums {
		out = append(out, VendorAmount{Vendor: v, AwardedAmount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AwardedAmount != out[j].AwardedAmount {
			return out[i].AwardedAmount > out[j].AwardedAmount
		}
		return out[i].Vendor < out[j].Vendor
	})
	return head(out, limit)
}

// YearAward is one tender placed on the year axis.
type YearAward struct {
	TenderID      string  `json:"tender_id"`
	Year          int     `json:"year"`
	Vendor        string  `json:"vendor"`
	EntityCluster string  `json:"entity_cluster"`
	AwardedAmount float64 `json:"awarded_amount"`
}

// YearAwards lists tenders by start year, restricted to [from, to] when
// both are non-zero. Records with no start date or no cluster are skipped.
// Sorted by vendor (case-insensitive), then year.
func YearAwards(records []tender.Record, from, to int) []YearAward {
	type key struct {
		id, vendor, cluster string
		year                int
	}
	sums := make(map[key]float64)
	var order []key

	for _, r := range records {
		year, ok := r.StartYear()
		if !ok || !r.HasCluster() {
			continue
		}
		if from != 0 && to != 0 && (year < from || year > to) {
			continue
		}
		k := key{id: r.TenderID, vendor: r.Vendor, cluster: r.EntityCluster, year: year}
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] += r.AwardedAmount
	}

	out := make([]YearAward, len(order))
	for i, k := range order {
		out[i] = YearAward{
			TenderID:      k.id,
			Year:          k.year,
			Vendor:        k.vendor,
			EntityCluster: k.cluster,
			AwardedAmount: sums[k],
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := strings.ToLower(out[i].Vendor), strings.ToLower(out[j].Vendor)
		if vi != vj {
			return vi < vj
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// ClusterEntities returns the sorted distinct entities of records in cluster.
func ClusterEntities(records []tender.Record, cluster string) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.EntityCluster == cluster {
			seen[r.Entity] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

func head[T any](xs []T, limit int) []T {
	if limit > 0 && len(xs) > limit {
		return xs[:limit]
	}
	return xs
}
