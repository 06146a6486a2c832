package topics

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/tenderlens/pkg/tenderlens/internalerr"
)

// Status is the state a fit ended in.
type Status string

const (
	StatusReady            Status = "ready"
	StatusInsufficientData Status = "insufficient_data"
	StatusFitFailed        Status = "fit_failed"
)

// User-facing messages for the non-ready states.
const (
	MsgInsufficientData     = "Not enough tender descriptions to model topics. Try selecting more filters or another entity."
	MsgNotEnoughTopics      = "Not enough topics to generate a word cloud. Try selecting more filters or another entity."
	MsgNotEnoughForTimeline = "Not enough tender descriptions to visualize topics over time. Please select more data."
	MsgFitFailed            = "Topic modeling could not be completed for this selection."
)

const (
	minDistinctDescriptions  = 2
	defaultMaxConcurrentFits = 2
)

// Topic is one fitted topic with its keywords.
type Topic struct {
	ID       int       `json:"id"`
	Keywords []Keyword `json:"keywords"`
}

// Outcome is the result of Modeler.Fit. It is always well formed; check
// Status before reading Assignments.
type Outcome struct {
	Status      Status  `json:"status"`
	Message     string  `json:"message,omitempty"`
	RunID       string  `json:"run_id"`
	Assignments []int   `json:"-"`
	Topics      []Topic `json:"topics"`
}

// Ready reports whether the fit succeeded.
func (o Outcome) Ready() bool {
	return o.Status == StatusReady
}

// Err maps a non-ready status to internalerr.ErrInsufficientData or
// internalerr.ErrFitFailed, and returns nil when ready.
func (o Outcome) Err() error {
	switch o.Status {
	case StatusReady:
		return nil
	case StatusInsufficientData:
		return internalerr.ErrInsufficientData
	}
	return internalerr.ErrFitFailed
}

// WordCloudText joins the keywords of every topic.
func (o Outcome) WordCloudText() string {
	var words []string
	for _, t := range o.Topics {
		for _, k := range t.Keywords {
			words = append(words, k.Word)
		}
	}
	return strings.Join(words, " ")
}

// Labels maps topic id to its comma-joined keywords.
func (o Outcome) Labels() map[int]string {
	labels := make(map[int]string, len(o.Topics))
	for _, t := range o.Topics {
		words := make([]string, len(t.Keywords))
		for i, k := range t.Keywords {
			words[i] = k.Word
		}
		labels[t.ID] = strings.Join(words, ", ")
	}
	return labels
}

// Options bounds the resources used by a Modeler.
type Options struct {
	// MaxConcurrent caps fits running at once.
	MaxConcurrent int
	// Timeout caps a single fit. Zero means no limit.
	Timeout time.Duration
}

// Modeler runs topic fits and contains their failures. Every call builds a
// fresh model, so concurrent calls never share model state.
type Modeler struct {
	model   Model
	sem     chan struct{}
	timeout time.Duration

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewModeler wraps model.
func NewModeler(model Model, opts Options) *Modeler {
	n := opts.MaxConcurrent
	if n <= 0 {
		n = defaultMaxConcurrentFits
	}
	return &Modeler{
		model:   model,
		sem:     make(chan struct{}, n),
		timeout: opts.Timeout,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (m *Modeler) newRunID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ulid.MustNew(ulid.Now(), m.entropy).String()
}

type fitResult struct {
	res Result
	err error
}

// Fit models descriptions. Fewer than two distinct non-empty descriptions
// yield StatusInsufficientData without fitting. Errors, panics and
// timeouts yield StatusFitFailed; the cause is logged only.
func (m *Modeler) Fit(ctx context.Context, descriptions []string) Outcome {
	out := Outcome{RunID: m.newRunID()}
	log := zap.L().With(zap.String("run_id", out.RunID), zap.Int("documents", len(descriptions)))

	if distinct := countDistinct(descriptions, minDistinctDescriptions); distinct < minDistinctDescriptions {
		log.Info("topics: insufficient data", zap.Int("distinct", distinct))
		out.Status = StatusInsufficientData
		out.Message = MsgInsufficientData
		return out
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		return m.failed(out, log, fmt.Errorf("waiting for fit slot: %w", ctx.Err()))
	}

	started := time.Now()
	done := make(chan fitResult, 1)
	go func() {
		// The slot is held until the model returns, even after a timeout.
		defer func() { <-m.sem }()
		defer func() {
			if r := recover(); r != nil {
				done <- fitResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		res, err := m.model.Fit(ctx, descriptions)
		done <- fitResult{res: res, err: err}
	}()

	var fr fitResult
	select {
	case fr = <-done:
	case <-ctx.Done():
		return m.failed(out, log, fmt.Errorf("fit aborted: %w", ctx.Err()))
	}
	if fr.err != nil {
		return m.failed(out, log, fr.err)
	}
	if len(fr.res.Assignments) != len(descriptions) {
		return m.failed(out, log, fmt.Errorf("model returned %d assignments for %d documents",
			len(fr.res.Assignments), len(descriptions)))
	}

	out.Status = StatusReady
	out.Assignments = fr.res.Assignments
	out.Topics = collectTopics(fr.res)
	if len(out.Topics) == 0 {
		out.Message = MsgNotEnoughTopics
	}
	log.Info("topics: fit complete",
		zap.Int("topics", len(out.Topics)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return out
}

func (m *Modeler) failed(out Outcome, log *zap.Logger, err error) Outcome {
	log.Warn("topics: fit failed", zap.Error(err))
	out.Status = StatusFitFailed
	out.Message = MsgFitFailed
	return out
}

// collectTopics lists assigned topics in first-appearance order, skipping
// NoTopic and topics without keywords.
func collectTopics(res Result) []Topic {
	var topics []Topic
	seen := make(map[int]bool)
	for _, id := range res.Assignments {
		if id == NoTopic || seen[id] {
			continue
		}
		seen[id] = true
		if id < 0 || id >= len(res.Keywords) || len(res.Keywords[id]) == 0 {
			continue
		}
		topics = append(topics, Topic{ID: id, Keywords: res.Keywords[id]})
	}
	return topics
}

// countDistinct counts distinct non-empty strings, stopping at limit.
func countDistinct(docs []string, limit int) int {
	seen := make(map[string]struct{}, limit)
	for _, d := range docs {
		if strings.TrimSpace(d) == "" {
			continue
		}
		seen[d] = struct{}{}
		if len(seen) >= limit {
			break
		}
	}
	return len(seen)
}
