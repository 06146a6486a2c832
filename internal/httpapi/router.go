// Package httpapi serves the dashboard aggregates and topic models as JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/cognicore/tenderlens/pkg/tenderlens/analytics"
	"github.com/cognicore/tenderlens/pkg/tenderlens/cluster"
	"github.com/cognicore/tenderlens/pkg/tenderlens/internalerr"
	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
	"github.com/cognicore/tenderlens/pkg/tenderlens/topics"
)

// TopicService fits topic models on demand.
type TopicService interface {
	FitTopics(ctx context.Context, descriptions []string) topics.Outcome
	TopicCountsByYear(ctx context.Context, records []tender.Record) (topics.YearCounts, topics.Outcome)
}

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	DefaultLimit   int
	Logger         *zap.Logger
}

type Router struct {
	table        *tender.Table
	clusters     *cluster.Table
	topics       TopicService
	defaultLimit int
	log          *zap.Logger
}

// NewRouter builds the HTTP handler over a prepared table.
func NewRouter(table *tender.Table, clusters *cluster.Table, svc TopicService, opts Options) http.Handler {
	r := &Router{
		table:        table,
		clusters:     clusters,
		topics:       svc,
		defaultLimit: opts.DefaultLimit,
		log:          opts.Logger,
	}
	if r.log == nil {
		r.log = zap.L()
	}
	if r.defaultLimit <= 0 {
		r.defaultLimit = 10
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(requestLogger(r.log))
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1", func(rt chi.Router) {
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Get("/clusters", r.wrap(r.handleClusters))
		rt.Get("/clusters/{name}/entities", r.wrap(r.handleClusterEntities))

		rt.Get("/tenders/frequency", r.wrap(r.handleFrequency))
		rt.Get("/tenders/amounts", r.wrap(r.handleAmounts))
		rt.Get("/tenders/by-year", r.wrap(r.handleByYear))
		rt.Get("/tenders/{id}", r.wrap(r.handleTender))

		rt.Get("/trends/entity-year-average", r.wrap(r.handleEntityYearAverage))
		rt.Get("/trends/cluster-year-average", r.wrap(r.handleClusterYearAverage))
		rt.Get("/trends/cluster-year-cumulative", r.wrap(r.handleClusterYearCumulative))

		rt.Get("/words", r.wrap(r.handleWords))
		rt.Get("/topics", r.wrap(r.handleTopics))
		rt.Get("/topics/by-year", r.wrap(r.handleTopicsByYear))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		switch {
		case errors.Is(err, internalerr.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, internalerr.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			r.log.Error("request failed",
				zap.String("request_id", middleware.GetReqID(req.Context())),
				zap.String("path", req.URL.Path),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// filtered applies the request's query filter to the table.
func (r *Router) filtered(req *http.Request) ([]tender.Record, query, error) {
	q, err := parseQuery(req, r.defaultLimit)
	if err != nil {
		return nil, q, err
	}
	return tender.Filter(r.table.Records, q.predicates()...), q, nil
}

// GET /v1/summary
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	recs, _, err := r.filtered(req)
	if err != nil {
		return err
	}
	return writeJSON(w, analytics.Summarize(recs))
}

type clusterInfo struct {
	Name     string `json:"name"`
	Entities int    `json:"entities"`
	Tenders  int    `json:"tenders"`
}

// GET /v1/clusters
func (r *Router) handleClusters(w http.ResponseWriter, req *http.Request) error {
	tenders := make(map[string]int)
	for _, rec := range r.table.Records {
		tenders[rec.EntityCluster]++
	}
	names := r.clusters.Names()
	out := make([]clusterInfo, 0, len(names))
	for _, name := range names {
		out = append(out, clusterInfo{
			Name:     name,
			Entities: len(analytics.ClusterEntities(r.table.Records, name)),
			Tenders:  tenders[name],
		})
	}
	return writeJSON(w, out)
}

// GET /v1/clusters/{name}/entities
func (r *Router) handleClusterEntities(w http.ResponseWriter, req *http.Request) error {
	name := chi.URLParam(req, "name")
	entities := analytics.ClusterEntities(r.table.Records, name)
	if len(entities) == 0 && !r.knownCluster(name) {
		return notFound("cluster %q", name)
	}
	return writeJSON(w, map[string]any{"cluster": name, "entities": entities})
}

func (r *Router) knownCluster(name string) bool {
	for _, n := range r.clusters.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// GET /v1/tenders/{id}
func (r *Router) handleTender(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	rec, ok := r.table.Get(id)
	if !ok {
		return notFound("tender %q", id)
	}
	return writeJSON(w, toTenderJSON(rec))
}

// GET /v1/tenders/frequency
func (r *Router) handleFrequency(w http.ResponseWriter, req *http.Request) error {
	recs, q, err := r.filtered(req)
	if err != nil {
		return err
	}
	return writeJSON(w, analytics.VendorFrequency(recs, q.limit))
}

// GET /v1/tenders/amounts
func (r *Router) handleAmounts(w http.ResponseWriter, req *http.Request) error {
	recs, q, err := r.filtered(req)
	if err != nil {
		return err
	}
	return writeJSON(w, analytics.VendorAmounts(recs, q.limit))
}

// GET /v1/tenders/by-year
func (r *Router) handleByYear(w http.ResponseWriter, req *http.Request) error {
	recs, q, err := r.filtered(req)
	if err != nil {
		return err
	}
	return writeJSON(w, analytics.YearAwards(recs, q.from, q.to))
}

// GET /v1/trends/entity-year-average
func (r *Router) handleEntityYearAverage(w http.ResponseWriter, req *http.Request) error {
	recs, _, err := r.filtered(req)
	if err != nil {
		return err
	}
	return writeJSON(w, analytics.EntityYearAverage(recs))
}

// GET /v1/trends/cluster-year-average
func (r *Router) handleClusterYearAverage(w http.ResponseWriter, req *http.Request) error {
	recs, _, err := r.filtered(req)
	if err != nil {
		return err
	}
	return writeJSON(w, analytics.ClusterYearAverage(recs))
}

// GET /v1/trends/cluster-year-cumulative
func (r *Router) handleClusterYearCumulative(w http.ResponseWriter, req *http.Request) error {
	recs, _, err := r.filtered(req)
	if err != nil {
		return err
	}
	return writeJSON(w, analytics.ClusterYearCumulative(recs))
}

// GET /v1/words
func (r *Router) handleWords(w http.ResponseWriter, req *http.Request) error {
	recs, q, err := r.filtered(req)
	if err != nil {
		return err
	}
	return writeJSON(w, analytics.WordFrequencies(analytics.DescriptionText(recs), q.limit))
}

type topicsResponse struct {
	topics.Outcome
	WordCloudText string         `json:"word_cloud_text"`
	Labels        map[int]string `json:"labels"`
}

// GET /v1/topics
func (r *Router) handleTopics(w http.ResponseWriter, req *http.Request) error {
	recs, _, err := r.filtered(req)
	if err != nil {
		return err
	}
	out := r.topics.FitTopics(req.Context(), tender.Descriptions(recs))
	if out.Status == topics.StatusInsufficientData {
		out.Message = topics.MsgNotEnoughTopics
	}
	return writeJSON(w, topicsResponse{
		Outcome:       out,
		WordCloudText: out.WordCloudText(),
		Labels:        out.Labels(),
	})
}

type topicsByYearResponse struct {
	topics.Outcome
	Labels map[int]string    `json:"labels"`
	Counts topics.YearCounts `json:"counts"`
}

// GET /v1/topics/by-year
func (r *Router) handleTopicsByYear(w http.ResponseWriter, req *http.Request) error {
	recs, _, err := r.filtered(req)
	if err != nil {
		return err
	}
	counts, out := r.topics.TopicCountsByYear(req.Context(), recs)
	return writeJSON(w, topicsByYearResponse{
		Outcome: out,
		Labels:  out.Labels(),
		Counts:  counts,
	})
}
