package cluster

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DefaultNames is the fixed label enumeration, indexed by group id.
var DefaultNames = []string{
	"Towns",
	"Municipalities",
	"Education",
	"Counties",
	"Agencies",
	"Universities",
	"Departments",
	"Regions",
	"Organizations",
	"Hants",
	"Resources",
	"Districts",
	"Lunenburg",
	"Housing",
	"Health",
}

// Artifact is the versioned on-disk form of a cluster table.
type Artifact struct {
	Version  int            `yaml:"version"`
	Clusters []NamedCluster `yaml:"clusters"`
}

// NamedCluster lists the entities of one cluster.
type NamedCluster struct {
	Name     string   `yaml:"name"`
	Entities []string `yaml:"entities"`
}

// Table flattens the artifact. When an entity appears in more than one
// cluster the later cluster wins.
func (a Artifact) Table() *Table {
	t := &Table{
		Version:  a.Version,
		byEntity: make(map[string]string),
	}
	for _, c := range a.Clusters {
		t.names = append(t.names, c.Name)
		for _, e := range c.Entities {
			t.byEntity[e] = c.Name
		}
	}
	return t
}

// WriteYAML encodes the artifact.
func (a Artifact) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode cluster artifact: %w", err)
	}
	return enc.Close()
}

// BuildTable groups entities by label. labels[i] is the group id of
// entities[i] and names[id] its cluster name; ids beyond names get "Cluster <id>".
func BuildTable(entities []string, labels []int, names []string, version int) (Artifact, error) {
	if len(entities) != len(labels) {
		return Artifact{}, fmt.Errorf("build table: %d entities but %d labels", len(entities), len(labels))
	}

	groups := make(map[int][]string)
	maxID := -1
	for i, id := range labels {
		if id < 0 {
			return Artifact{}, fmt.Errorf("build table: negative label %d for %q", id, entities[i])
		}
		groups[id] = append(groups[id], entities[i])
		if id > maxID {
			maxID = id
		}
	}

	a := Artifact{Version: version}
	for id := 0; id <= maxID; id++ {
		members, ok := groups[id]
		if !ok {
			continue
		}
		name := fmt.Sprintf("Cluster %d", id)
		if id < len(names) {
			name = names[id]
		}
		a.Clusters = append(a.Clusters, NamedCluster{Name: name, Entities: members})
	}
	return a, nil
}
