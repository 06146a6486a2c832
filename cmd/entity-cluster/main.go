// Command entity-cluster groups canonical entity names by embedding
// similarity and writes a versioned cluster table. It runs offline; the
// server only ever reads the resulting YAML.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/cognicore/tenderlens/internal/logging"
	"github.com/cognicore/tenderlens/internal/source"
	"github.com/cognicore/tenderlens/pkg/tenderlens"
	"github.com/cognicore/tenderlens/pkg/tenderlens/cluster"
	"github.com/cognicore/tenderlens/pkg/tenderlens/config"
	"github.com/cognicore/tenderlens/pkg/tenderlens/embed"
	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
)

type options struct {
	configPath string
	dataset    string
	out        string
	provider   string
	method     string
	k          int
	elbow      int
	seed       int64
	version    int
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Config file (default: built-in defaults)")
	flag.StringVar(&o.dataset, "dataset", "", "Override dataset.path")
	flag.StringVar(&o.out, "out", "-", "Output YAML path, - for stdout")
	flag.StringVar(&o.provider, "provider", "", "Embedding provider: lsa or openai (default: embedding.provider)")
	flag.StringVar(&o.method, "method", "ward", "Clustering method: ward or kmeans")
	flag.IntVar(&o.k, "k", len(cluster.DefaultNames), "Number of clusters")
	flag.IntVar(&o.elbow, "elbow", 0, "Print WCSS for k=1..N before clustering (0 disables)")
	flag.Int64Var(&o.seed, "seed", 0, "Seed for k-means")
	flag.IntVar(&o.version, "version", 1, "Artifact version")
	flag.Parse()

	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	if o.dataset != "" {
		cfg.Dataset.Path = o.dataset
	}
	if o.provider != "" {
		cfg.Embedding.Provider = o.provider
	}

	_, restore, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: "console"})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer restore()

	if err := run(context.Background(), cfg, o, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("entity-cluster: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, o options, stdout, stderr io.Writer) error {
	entities, err := loadEntities(ctx, cfg)
	if err != nil {
		return err
	}
	if len(entities) < o.k {
		return fmt.Errorf("need at least %d entities, dataset has %d", o.k, len(entities))
	}

	embedder, err := newEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}
	vectors, err := embedder.Embed(ctx, entities)
	if err != nil {
		return fmt.Errorf("embed entities: %w", err)
	}
	zap.L().Info("entities embedded",
		zap.Int("entities", len(entities)),
		zap.String("provider", cfg.Embedding.Provider),
	)

	if o.elbow > 0 {
		wcss, err := cluster.Elbow(vectors, o.elbow, o.seed)
		if err != nil {
			return fmt.Errorf("elbow: %w", err)
		}
		fmt.Fprintln(stderr, "k\tWCSS")
		for i, v := range wcss {
			fmt.Fprintf(stderr, "%d\t%.4f\n", i+1, v)
		}
	}

	var labels []int
	switch o.method {
	case "ward":
		labels, err = cluster.Ward(vectors, o.k)
	case "kmeans":
		var res cluster.KMeansResult
		res, err = cluster.KMeans(vectors, o.k, o.seed)
		labels = res.Labels
	default:
		return fmt.Errorf("unknown method %q", o.method)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", o.method, err)
	}

	artifact, err := cluster.BuildTable(entities, labels, cluster.DefaultNames, o.version)
	if err != nil {
		return err
	}
	printGroups(stderr, artifact)

	if o.out == "-" {
		return artifact.WriteYAML(stdout)
	}
	f, err := os.Create(o.out)
	if err != nil {
		return err
	}
	if err := artifact.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// loadEntities cleans the dataset and returns its distinct canonical entities.
func loadEntities(ctx context.Context, cfg config.Config) ([]string, error) {
	m := cfg.Storage.Minio
	opener, err := source.NewRouter(source.MinioConfig{
		Endpoint:  m.Endpoint,
		AccessKey: os.Getenv(m.AccessKeyEnv),
		SecretKey: os.Getenv(m.SecretKeyEnv),
		Region:    m.Region,
		UseSSL:    m.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	// Clusters are what this command produces, so skip the configured table.
	cfg.Dataset.ClusterTable = ""
	loader := config.Loader{Config: cfg, Opener: opener}
	comps, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	lens, err := tenderlens.New(tenderlens.Options{
		DatasetPath: cfg.Dataset.Path,
		Opener:      opener,
		Pipeline:    comps.Pipeline,
		Policy:      cluster.PolicyNull,
	})
	if err != nil {
		return nil, err
	}
	defer lens.Close()

	table, err := lens.PrepareDataset(ctx)
	if err != nil {
		return nil, err
	}
	return distinctEntities(table.Records), nil
}

func distinctEntities(records []tender.Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if r.Entity == "" {
			continue
		}
		if _, ok := seen[r.Entity]; ok {
			continue
		}
		seen[r.Entity] = struct{}{}
		out = append(out, r.Entity)
	}
	sort.Strings(out)
	return out
}

func newEmbedder(cfg config.Embedding) (embed.Embedder, error) {
	switch cfg.Provider {
	case "", "lsa":
		return embed.NewLSA(cfg.Dimensions), nil
	case "openai":
		key := os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("openai provider: %s is not set", cfg.APIKeyEnv)
		}
		return embed.NewOpenAI(key, cfg.BaseURL, cfg.Model), nil
	}
	return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
}

func printGroups(w io.Writer, a cluster.Artifact) {
	fmt.Fprintln(w, "Grouped entities by cluster:")
	for _, c := range a.Clusters {
		fmt.Fprintf(w, "%s (%d):\n", c.Name, len(c.Entities))
		for _, e := range c.Entities {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
}
