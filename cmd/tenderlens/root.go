package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/tenderlens/internal/logging"
	"github.com/cognicore/tenderlens/internal/source"
	"github.com/cognicore/tenderlens/pkg/tenderlens"
	"github.com/cognicore/tenderlens/pkg/tenderlens/config"
	"github.com/cognicore/tenderlens/pkg/tenderlens/store"
	"github.com/cognicore/tenderlens/pkg/tenderlens/store/sqlite"
	"github.com/cognicore/tenderlens/pkg/tenderlens/topics"
)

// app carries state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	dataset    string
	snapshot   string

	cfg     config.Config
	restore func()
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "tenderlens",
		Short:         "Procurement tender analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.restore != nil {
				_ = zap.L().Sync()
				a.restore()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: built-in defaults)")
	flags.StringVar(&a.logLevel, "log-level", "", "override log.level")
	flags.StringVar(&a.dataset, "dataset", "", "override dataset.path (local path or s3://bucket/key)")
	flags.StringVar(&a.snapshot, "snapshot", "", "override snapshot.path (sqlite file)")

	root.AddCommand(newServeCmd(a), newPrepareCmd(a), newTopicsCmd(a))
	return root
}

func (a *app) init() error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.dataset != "" {
		cfg.Dataset.Path = a.dataset
	}
	if a.snapshot != "" {
		cfg.Snapshot.Path = a.snapshot
	}
	a.cfg = cfg

	_, restore, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	a.restore = restore
	return nil
}

// opener resolves local and s3:// resources.
func (a *app) opener() (*source.Router, error) {
	m := a.cfg.Storage.Minio
	return source.NewRouter(source.MinioConfig{
		Endpoint:  m.Endpoint,
		AccessKey: os.Getenv(m.AccessKeyEnv),
		SecretKey: os.Getenv(m.SecretKeyEnv),
		Region:    m.Region,
		UseSSL:    m.UseSSL,
	})
}

// newLens loads every configured component and builds the facade. The
// snapshot store is opened only when a snapshot path is configured.
func (a *app) newLens(ctx context.Context) (*tenderlens.Lens, *config.Components, error) {
	opener, err := a.opener()
	if err != nil {
		return nil, nil, err
	}
	loader := config.Loader{Config: a.cfg, Opener: opener}
	comps, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load components: %w", err)
	}

	tc := a.cfg.Topics
	lda := topics.NewLDA()
	lda.NumTopics = tc.NumTopics
	lda.TopWords = tc.TopWords
	lda.Iterations = tc.Iterations
	lda.MaxTrainDocs = tc.MaxDocuments
	lda.Seed = tc.Seed
	modeler := topics.NewModeler(lda, topics.Options{
		MaxConcurrent: tc.MaxConcurrentFits,
		Timeout:       tc.FitTimeout.Std(),
	})

	var st store.Store
	if a.cfg.Snapshot.Path != "" {
		if st, err = sqlite.OpenSQLite(ctx, a.cfg.Snapshot.Path); err != nil {
			return nil, nil, fmt.Errorf("open snapshot: %w", err)
		}
	}

	lens, err := tenderlens.New(tenderlens.Options{
		DatasetPath: a.cfg.Dataset.Path,
		Opener:      opener,
		Pipeline:    comps.Pipeline,
		Clusters:    comps.ClusterTable,
		Policy:      comps.Policy,
		Modeler:     modeler,
		Store:       st,
	})
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, nil, err
	}
	return lens, comps, nil
}
