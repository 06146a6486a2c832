package config

import (
	"context"
	"fmt"
	"io"

	"github.com/cognicore/tenderlens/internal/source"
	"github.com/cognicore/tenderlens/pkg/tenderlens/cluster"
	"github.com/cognicore/tenderlens/pkg/tenderlens/mapping"
	"github.com/cognicore/tenderlens/pkg/tenderlens/preprocess"
	"github.com/cognicore/tenderlens/pkg/tenderlens/stoplist"
	"github.com/cognicore/tenderlens/pkg/tenderlens/textclean"
)

// Loader loads all configured resources and constructs components
type Loader struct {
	Config Config
	// Opener resolves resource paths; nil opens local files only.
	Opener source.Opener
}

// Components holds all loaded configuration components
type Components struct {
	VendorMapping mapping.Mapping
	EntityMapping mapping.Mapping
	ClusterTable  *cluster.Table
	Policy        cluster.Policy
	Stoplist      *stoplist.Manager
	Normalizer    *textclean.Normalizer
	Pipeline      *preprocess.Pipeline
}

// Load reads every configured resource. Missing files fail with
// internalerr.ErrResourceMissing.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg := l.Config
	comp := &Components{}

	policy, err := cluster.ParsePolicy(cfg.Dataset.UnmappedEntities)
	if err != nil {
		return nil, err
	}
	comp.Policy = policy

	// Load name mappings
	if cfg.Dataset.VendorMapping != "" {
		if comp.VendorMapping, err = l.loadMapping(ctx, cfg.Dataset.VendorMapping); err != nil {
			return nil, fmt.Errorf("load vendor mapping: %w", err)
		}
	}
	if cfg.Dataset.EntityMapping != "" {
		if comp.EntityMapping, err = l.loadMapping(ctx, cfg.Dataset.EntityMapping); err != nil {
			return nil, fmt.Errorf("load entity mapping: %w", err)
		}
	}

	// Load cluster table
	if cfg.Dataset.ClusterTable != "" {
		rc, err := l.open(ctx, cfg.Dataset.ClusterTable)
		if err != nil {
			return nil, fmt.Errorf("load cluster table: %w", err)
		}
		comp.ClusterTable, err = cluster.LoadTable(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("load cluster table %s: %w", cfg.Dataset.ClusterTable, err)
		}
	} else if comp.ClusterTable, err = cluster.Default(); err != nil {
		return nil, err
	}

	// Build stoplist
	extra := append([]string(nil), cfg.Text.ExtraStopwords...)
	if cfg.Text.StoplistPath != "" {
		sl, err := LoadStoplist(cfg.Text.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		extra = append(extra, sl.Terms...)
	}
	comp.Stoplist = stoplist.NewEnglish(extra...)
	comp.Normalizer = textclean.New(comp.Stoplist)
	if cfg.Text.StripMarkup {
		comp.Normalizer.WithMarkupStripping()
	}

	comp.Pipeline = preprocess.NewPipeline(preprocess.Options{
		VendorMapping:    comp.VendorMapping,
		EntityMapping:    comp.EntityMapping,
		Normalizer:       comp.Normalizer,
		ExcludedVendors:  cfg.Dataset.ExcludedVendors,
		MinAwardedAmount: cfg.Dataset.MinAwardedAmount,
	})

	return comp, nil
}

func (l *Loader) open(ctx context.Context, name string) (io.ReadCloser, error) {
	if l.Opener == nil {
		return source.OpenFile(name)
	}
	return l.Opener.Open(ctx, name)
}

func (l *Loader) loadMapping(ctx context.Context, name string) (mapping.Mapping, error) {
	rc, err := l.open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	m, err := mapping.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return m, nil
}
