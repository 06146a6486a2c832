package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cognicore/tenderlens/pkg/tenderlens/internalerr"
	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
)

// query is the common filter accepted by the aggregate endpoints:
// cluster, entity, category (repeatable), from, to, limit.
type query struct {
	cluster    string
	entity     string
	categories []tender.Category
	from, to   int
	limit      int
}

func parseQuery(req *http.Request, defaultLimit int) (query, error) {
	v := req.URL.Query()
	q := query{
		cluster: v.Get("cluster"),
		entity:  v.Get("entity"),
		limit:   defaultLimit,
	}
	for _, raw := range v["category"] {
		c, err := tender.ParseCategory(raw)
		if err != nil {
			return q, invalid("category %q", raw)
		}
		q.categories = append(q.categories, c)
	}

	var err error
	if q.from, err = intParam(v.Get("from"), "from"); err != nil {
		return q, err
	}
	if q.to, err = intParam(v.Get("to"), "to"); err != nil {
		return q, err
	}
	if q.from != 0 && q.to != 0 && q.from > q.to {
		return q, invalid("from %d is after to %d", q.from, q.to)
	}
	if raw := v.Get("limit"); raw != "" {
		if q.limit, err = intParam(raw, "limit"); err != nil {
			return q, err
		}
		if q.limit < 1 {
			return q, invalid("limit must be >= 1")
		}
	}
	return q, nil
}

func (q query) predicates() []tender.Predicate {
	var preds []tender.Predicate
	if q.cluster != "" {
		preds = append(preds, tender.InCluster(q.cluster))
	}
	if q.entity != "" {
		preds = append(preds, tender.ForEntity(q.entity))
	}
	for _, c := range q.categories {
		preds = append(preds, tender.HasCategory(c))
	}
	if q.from != 0 || q.to != 0 {
		preds = append(preds, tender.StartYearBetween(q.from, q.to))
	}
	return preds
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid("%s: %q is not a number", name, raw)
	}
	return n, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", internalerr.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", internalerr.ErrNotFound, fmt.Sprintf(format, args...))
}

type tenderJSON struct {
	TenderID       string  `json:"tender_id"`
	Entity         string  `json:"entity"`
	EntityCluster  string  `json:"entity_cluster,omitempty"`
	Vendor         string  `json:"vendor"`
	StartDate      *string `json:"tender_start_date"`
	CloseDate      *string `json:"tender_close_date"`
	AwardedDate    *string `json:"awarded_date"`
	AwardedAmount  float64 `json:"awarded_amount"`
	Duration       *int    `json:"duration"`
	Goods          int     `json:"goods"`
	Service        int     `json:"service"`
	Construction   int     `json:"construction"`
	RawDescription string  `json:"raw_description"`
	Description    string  `json:"description"`
}

func toTenderJSON(r tender.Record) tenderJSON {
	return tenderJSON{
		TenderID:       r.TenderID,
		Entity:         r.Entity,
		EntityCluster:  r.EntityCluster,
		Vendor:         r.Vendor,
		StartDate:      dateString(r.StartDate),
		CloseDate:      dateString(r.CloseDate),
		AwardedDate:    dateString(r.AwardedDate),
		AwardedAmount:  r.AwardedAmount,
		Duration:       r.Duration,
		Goods:          r.Goods,
		Service:        r.Service,
		Construction:   r.Construction,
		RawDescription: r.RawDescription,
		Description:    r.Description,
	}
}

func dateString(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
