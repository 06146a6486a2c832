package store

import (
	"context"
	"time"

	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
)

// Store persists a prepared tender table so it can be served without
// re-running preprocessing.
type Store interface {
	Close() error

	// ReplaceTenders swaps the stored snapshot for records atomically.
	ReplaceTenders(ctx context.Context, records []tender.Record, meta Snapshot) error
	// ListTenders returns every stored record in insertion order.
	ListTenders(ctx context.Context) ([]tender.Record, error)
	GetTender(ctx context.Context, id string) (tender.Record, bool, error)
	// Snapshot returns metadata for the stored table; false if none was written.
	Snapshot(ctx context.Context) (Snapshot, bool, error)
}

// Snapshot describes how a stored table was prepared.
type Snapshot struct {
	CreatedAt      time.Time
	Source         string // dataset path or object URI
	ClusterVersion int
	Records        int
}
