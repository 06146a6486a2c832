package preprocess

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/tenderlens/pkg/tenderlens/mapping"
	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
	"github.com/cognicore/tenderlens/pkg/tenderlens/textclean"
)

// ExcludedLiteralVendor is always dropped, matched exactly.
const ExcludedLiteralVendor = "Nova Scotia Ltd."

// DefaultMinAwardedAmount is the smallest award kept.
const DefaultMinAwardedAmount = 1000

// DefaultExcludedVendors are placeholder values that do not name a vendor.
var DefaultExcludedVendors = []string{
	"Unknown",
	"unknown",
	"UNKNOWN",
	"Unknown Vendor",
	"N/A",
	"n/a",
	"NA",
	"None",
	"TBD",
	"Various",
	"Various Vendors",
	"Multiple Vendors",
	"No Award",
	"Not Awarded",
	"Cancelled",
	"Standing Offer",
	"See Attached",
}

// Options configures a Pipeline.
type Options struct {
	VendorMapping    mapping.Mapping
	EntityMapping    mapping.Mapping
	Normalizer       *textclean.Normalizer
	ExcludedVendors  []string
	MinAwardedAmount float64
}

// Pipeline turns raw rows into clean tender records.
type Pipeline struct {
	vendors    mapping.Mapping
	entities   mapping.Mapping
	normalizer *textclean.Normalizer
	excluded   map[string]struct{}
	minAmount  float64
}

// NewPipeline creates a preprocessing pipeline. Nil mappings map nothing, a nil
// normalizer uses English stopwords, a nil excluded list uses
// DefaultExcludedVendors and a zero minimum uses DefaultMinAwardedAmount.
func NewPipeline(opts Options) *Pipeline {
	excludedList := opts.ExcludedVendors
	if excludedList == nil {
		excludedList = DefaultExcludedVendors
	}
	excluded := make(map[string]struct{}, len(excludedList)+1)
	for _, v := range excludedList {
		excluded[v] = struct{}{}
	}
	excluded[ExcludedLiteralVendor] = struct{}{}

	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = textclean.New(nil)
	}
	minAmount := opts.MinAwardedAmount
	if minAmount == 0 {
		minAmount = DefaultMinAwardedAmount
	}

	return &Pipeline{
		vendors:    opts.VendorMapping,
		entities:   opts.EntityMapping,
		normalizer: normalizer,
		excluded:   excluded,
		minAmount:  minAmount,
	}
}

// Report counts what happened to each input row.
type Report struct {
	Input          int
	Kept           int
	ExcludedVendor int
	InvalidAmount  int
	BelowMinAmount int
	MissingVendor  int
	DuplicateID    int
	VendorsMapped  int
	EntitiesMapped int
	InvalidDates   int
}

// Run applies every cleaning rule to rows, in order:
//  1. map raw vendor/entity names to canonical names
//  2. lower-case the description, keep it raw, and normalize it
//  3. trim vendor and entity
//  4. drop excluded vendors
//  5. coerce dates; invalid dates become unknown
//  6. coerce amounts; drop invalid and below-minimum amounts
//  7. convert category flags and drop rows with no vendor
//
// Rows repeating an earlier tender id are dropped last.
func (p *Pipeline) Run(rows []RawRow) ([]tender.Record, Report) {
	rep := Report{Input: len(rows)}
	out := make([]tender.Record, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		rec := tender.Record{
			TenderID:  strings.TrimSpace(row.TenderID),
			RawVendor: row.Vendor,
			RawEntity: row.Entity,
		}

		// 1. name mapping
		var mapped bool
		rec.Vendor, mapped = applyMapping(p.vendors, row.Vendor)
		if mapped {
			rep.VendorsMapped++
		}
		rec.Entity, mapped = applyMapping(p.entities, row.Entity)
		if mapped {
			rep.EntitiesMapped++
		}

		// 2. descriptions
		rec.RawDescription = strings.ToLower(row.Description)
		rec.Description = p.normalizer.Normalize(rec.RawDescription)

		// 3. trim
		rec.Vendor = strings.TrimSpace(rec.Vendor)
		rec.Entity = strings.TrimSpace(rec.Entity)

		// 4. excluded vendors
		if _, bad := p.excluded[rec.Vendor]; bad {
			rep.ExcludedVendor++
			continue
		}

		// 5. dates
		rec.StartDate = ParseDate(row.StartDate)
		rec.CloseDate = ParseDate(row.CloseDate)
		rec.AwardedDate = ParseDate(row.AwardedDate)
		if invalidDate(row.StartDate, rec.StartDate) || invalidDate(row.CloseDate, rec.CloseDate) ||
			invalidDate(row.AwardedDate, rec.AwardedDate) {
			rep.InvalidDates++
		}

		// 6. amounts
		amount, ok := ParseAmount(row.Amount)
		if !ok {
			rep.InvalidAmount++
			continue
		}
		if amount < p.minAmount {
			rep.BelowMinAmount++
			continue
		}
		rec.AwardedAmount = amount

		// 7. flags and vendor presence
		rec.Goods = ParseFlag(row.Goods)
		rec.Service = ParseFlag(row.Service)
		rec.Construction = ParseFlag(row.Construction)
		if rec.Vendor == "" {
			rep.MissingVendor++
			continue
		}

		// Blank ids are never treated as duplicates of each other.
		if rec.TenderID != "" {
			if _, dup := seen[rec.TenderID]; dup {
				rep.DuplicateID++
				continue
			}
			seen[rec.TenderID] = struct{}{}
		}

		out = append(out, rec)
	}

	rep.Kept = len(out)
	zap.L().Info("preprocess: dataset cleaned",
		zap.Int("input", rep.Input),
		zap.Int("kept", rep.Kept),
		zap.Int("excluded_vendor", rep.ExcludedVendor),
		zap.Int("invalid_amount", rep.InvalidAmount),
		zap.Int("below_min_amount", rep.BelowMinAmount),
		zap.Int("missing_vendor", rep.MissingVendor),
		zap.Int("duplicate_id", rep.DuplicateID),
		zap.Int("invalid_dates", rep.InvalidDates),
	)
	return out, rep
}

// applyMapping looks up the raw value first, then its trimmed form.
func applyMapping(m mapping.Mapping, raw string) (string, bool) {
	if canonical, ok := m.Lookup(raw); ok {
		return canonical, true
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed != raw {
		if canonical, ok := m.Lookup(trimmed); ok {
			return canonical, true
		}
	}
	return raw, false
}

func invalidDate(raw string, parsed time.Time) bool {
	return strings.TrimSpace(raw) != "" && parsed.IsZero()
}
