package tenderlens

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/tenderlens/internal/source"
	"github.com/cognicore/tenderlens/pkg/tenderlens/cluster"
	"github.com/cognicore/tenderlens/pkg/tenderlens/preprocess"
	"github.com/cognicore/tenderlens/pkg/tenderlens/store"
	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
	"github.com/cognicore/tenderlens/pkg/tenderlens/topics"
)

// Lens is the main analytics facade
type Lens struct {
	datasetPath string
	opener      source.Opener
	pipeline    *preprocess.Pipeline
	clusters    *cluster.Table
	policy      cluster.Policy
	modeler     *topics.Modeler
	store       store.Store
}

// Options configures a Lens instance
type Options struct {
	DatasetPath string
	// Opener resolves DatasetPath; nil opens local files.
	Opener   source.Opener
	Pipeline *preprocess.Pipeline
	Clusters *cluster.Table
	Policy   cluster.Policy
	Modeler  *topics.Modeler
	// Store is optional; it backs snapshots.
	Store store.Store
}

// New creates a Lens with the given dependencies. A nil pipeline uses
// default cleaning rules, nil clusters the built-in table and a nil
// modeler a default LDA.
func New(opts Options) (*Lens, error) {
	l := &Lens{
		datasetPath: opts.DatasetPath,
		opener:      opts.Opener,
		pipeline:    opts.Pipeline,
		clusters:    opts.Clusters,
		policy:      opts.Policy,
		modeler:     opts.Modeler,
		store:       opts.Store,
	}
	if l.opener == nil {
		l.opener = source.Local{}
	}
	if l.pipeline == nil {
		l.pipeline = preprocess.NewPipeline(preprocess.Options{})
	}
	if l.clusters == nil {
		t, err := cluster.Default()
		if err != nil {
			return nil, err
		}
		l.clusters = t
	}
	if l.policy == "" {
		l.policy = cluster.PolicyNull
	}
	if l.modeler == nil {
		l.modeler = topics.NewModeler(topics.NewLDA(), topics.Options{})
	}
	return l, nil
}

// Close releases the snapshot store, if any
func (l *Lens) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}

// PrepareDataset loads the raw dataset, cleans it, assigns clusters and
// computes durations. Any failure here is fatal to startup.
func (l *Lens) PrepareDataset(ctx context.Context) (*tender.Table, error) {
	started := time.Now()

	rc, err := l.opener.Open(ctx, l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer rc.Close()

	rows, err := preprocess.ReadCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", l.datasetPath, err)
	}

	records, _ := l.pipeline.Run(rows)

	stats, err := cluster.Assign(records, l.clusters, l.policy)
	if err != nil {
		return nil, err
	}
	tender.ComputeDurations(records)

	table := tender.NewTable(records)
	zap.L().Info("dataset prepared",
		zap.String("source", l.datasetPath),
		zap.Int("rows", len(rows)),
		zap.Int("records", table.Len()),
		zap.Int("unclustered", stats.Unmapped),
		zap.Int("min_year", table.MinYear),
		zap.Int("max_year", table.MaxYear),
		zap.Duration("elapsed", time.Since(started)),
	)
	return table, nil
}

// SaveSnapshot writes a prepared table to the store
func (l *Lens) SaveSnapshot(ctx context.Context, table *tender.Table) error {
	if l.store == nil {
		return fmt.Errorf("save snapshot: no store configured")
	}
	meta := store.Snapshot{
		CreatedAt:      time.Now(),
		Source:         l.datasetPath,
		ClusterVersion: l.clusters.Version,
	}
	if err := l.store.ReplaceTenders(ctx, table.Records, meta); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a prepared table from the store
func (l *Lens) LoadSnapshot(ctx context.Context) (*tender.Table, error) {
	if l.store == nil {
		return nil, fmt.Errorf("load snapshot: no store configured")
	}
	meta, ok, err := l.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("load snapshot: store is empty")
	}
	records, err := l.store.ListTenders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	zap.L().Info("snapshot loaded",
		zap.String("source", meta.Source),
		zap.Time("created_at", meta.CreatedAt),
		zap.Int("records", len(records)),
	)
	return tender.NewTable(records), nil
}

// FitTopics models descriptions. It never fails; inspect Outcome.Status.
func (l *Lens) FitTopics(ctx context.Context, descriptions []string) topics.Outcome {
	return l.modeler.Fit(ctx, descriptions)
}

// TopicCountsByYear fits topics on the records' descriptions and counts
// documents per awarded year and topic. The counts are empty unless the
// outcome is ready.
func (l *Lens) TopicCountsByYear(ctx context.Context, records []tender.Record) (topics.YearCounts, topics.Outcome) {
	out := l.modeler.Fit(ctx, tender.Descriptions(records))
	if !out.Ready() {
		if out.Status == topics.StatusInsufficientData {
			out.Message = topics.MsgNotEnoughForTimeline
		}
		return topics.YearCounts{}, out
	}
	counts, err := topics.CountsByYear(records, out.Assignments)
	if err != nil {
		// Assignment length is checked by the modeler.
		zap.L().Error("topic counts", zap.String("run_id", out.RunID), zap.Error(err))
		return topics.YearCounts{}, topics.Outcome{
			Status:  topics.StatusFitFailed,
			Message: topics.MsgFitFailed,
			RunID:   out.RunID,
		}
	}
	return counts, out
}
