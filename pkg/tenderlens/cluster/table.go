package cluster

import (
	_ "embed"
	"fmt"
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/tenderlens/pkg/tenderlens/internalerr"
	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
)

//go:embed entity_clusters.yaml
var defaultArtifact []byte

// Unclustered is the bucket used by PolicyUnclustered.
const Unclustered = "Unclustered"

// Table maps canonical entity names to cluster names. Read-only once built.
type Table struct {
	Version  int
	byEntity map[string]string
	names    []string
}

// Lookup returns the cluster for entity.
func (t *Table) Lookup(entity string) (string, bool) {
	name, ok := t.byEntity[entity]
	return name, ok
}

// Names returns cluster names in artifact order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Entities returns the sorted entities assigned to cluster name.
func (t *Table) Entities(name string) []string {
	var out []string
	for entity, c := range t.byEntity {
		if c == name {
			out = append(out, entity)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of mapped entities.
func (t *Table) Len() int {
	return len(t.byEntity)
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the table built from the embedded artifact.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		var a Artifact
		if err := yaml.Unmarshal(defaultArtifact, &a); err != nil {
			defaultErr = fmt.Errorf("embedded cluster table: %w", err)
			return
		}
		defaultTable = a.Table()
	})
	return defaultTable, defaultErr
}

// LoadTable parses a cluster artifact from r.
func LoadTable(r io.Reader) (*Table, error) {
	var a Artifact
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: decode cluster table: %v", internalerr.ErrInvalidConfig, err)
	}
	if len(a.Clusters) == 0 {
		return nil, fmt.Errorf("%w: cluster table has no clusters", internalerr.ErrInvalidConfig)
	}
	return a.Table(), nil
}

// Policy controls what Assign does with entities missing from the table.
type Policy string

const (
	// PolicyNull leaves the cluster empty.
	PolicyNull Policy = "null"
	// PolicyUnclustered assigns the Unclustered bucket.
	PolicyUnclustered Policy = "unclustered"
	// PolicyFail aborts with ErrUnclustered.
	PolicyFail Policy = "fail"
)

// ParsePolicy accepts "", "null", "unclustered" and "fail".
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyNull:
		return PolicyNull, nil
	case PolicyUnclustered, PolicyFail:
		return Policy(s), nil
	}
	return "", fmt.Errorf("%w: unknown unmapped-entity policy %q", internalerr.ErrInvalidConfig, s)
}

// AssignStats reports how many records were placed.
type AssignStats struct {
	Assigned int
	Unmapped int
	// UnmappedEntities holds distinct entities with no cluster, sorted.
	UnmappedEntities []string
}

// Assign sets EntityCluster on every record by direct table lookup.
func Assign(records []tender.Record, table *Table, policy Policy) (AssignStats, error) {
	var stats AssignStats
	missing := make(map[string]struct{})

	for i := range records {
		name, ok := table.Lookup(records[i].Entity)
		if ok {
			records[i].EntityCluster = name
			stats.Assigned++
			continue
		}
		stats.Unmapped++
		missing[records[i].Entity] = struct{}{}
		switch policy {
		case PolicyUnclustered:
			records[i].EntityCluster = Unclustered
		case PolicyFail:
			return stats, fmt.Errorf("%w: entity %q (tender %s)", internalerr.ErrUnclustered,
				records[i].Entity, records[i].TenderID)
		default:
			records[i].EntityCluster = ""
		}
	}

	for entity := range missing {
		stats.UnmappedEntities = append(stats.UnmappedEntities, entity)
	}
	sort.Strings(stats.UnmappedEntities)

	if stats.Unmapped > 0 {
		zap.L().Warn("cluster: entities missing from cluster table",
			zap.Int("records", stats.Unmapped),
			zap.Int("distinct_entities", len(stats.UnmappedEntities)),
			zap.String("policy", string(policy)),
		)
	}
	return stats, nil
}
