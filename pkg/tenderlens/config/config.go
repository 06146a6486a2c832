package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/tenderlens/pkg/tenderlens/internalerr"
)

// Config is the tenderlens.yaml file.
type Config struct {
	Dataset   Dataset   `yaml:"dataset"`
	Text      Text      `yaml:"text"`
	Topics    Topics    `yaml:"topics"`
	Server    Server    `yaml:"server"`
	Log       Log       `yaml:"log"`
	Storage   Storage   `yaml:"storage"`
	Embedding Embedding `yaml:"embedding"`
	Snapshot  Snapshot  `yaml:"snapshot"`
}

// Dataset locates the raw inputs and sets cleaning rules.
// Paths may be local files or s3://bucket/key objects.
type Dataset struct {
	Path             string   `yaml:"path"`
	EntityMapping    string   `yaml:"entity_mapping"`
	VendorMapping    string   `yaml:"vendor_mapping"`
	ClusterTable     string   `yaml:"cluster_table"` // empty uses the built-in table
	ExcludedVendors  []string `yaml:"excluded_vendors"`
	MinAwardedAmount float64  `yaml:"min_awarded_amount"`
	UnmappedEntities string   `yaml:"unmapped_entities"` // null | unclustered | fail
}

// Text configures description normalization.
type Text struct {
	ExtraStopwords []string `yaml:"extra_stopwords"`
	StoplistPath   string   `yaml:"stoplist_path"`
	// StripMarkup extracts text from HTML descriptions before normalizing.
	StripMarkup bool `yaml:"strip_markup"`
}

// Topics configures on-demand topic modeling.
type Topics struct {
	NumTopics         int      `yaml:"num_topics"`
	TopWords          int      `yaml:"top_words"`
	Iterations        int      `yaml:"iterations"`
	MaxDocuments      int      `yaml:"max_documents"`
	MaxConcurrentFits int      `yaml:"max_concurrent_fits"`
	FitTimeout        Duration `yaml:"fit_timeout"`
	Seed              uint64   `yaml:"seed"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	ReadTimeout    Duration `yaml:"read_timeout"`
	WriteTimeout   Duration `yaml:"write_timeout"`
	DefaultLimit   int      `yaml:"default_limit"`
}

// Log configures zap.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

// Storage configures remote object access.
type Storage struct {
	Minio Minio `yaml:"minio"`
}

// Minio holds MinIO/S3 connection settings. An empty endpoint disables
// remote objects.
type Minio struct {
	Endpoint     string `yaml:"endpoint"`
	AccessKeyEnv string `yaml:"access_key_env"`
	SecretKeyEnv string `yaml:"secret_key_env"`
	Region       string `yaml:"region"`
	UseSSL       bool   `yaml:"use_ssl"`
}

// Embedding configures the offline entity clusterer.
type Embedding struct {
	Provider   string `yaml:"provider"` // lsa | openai
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Dimensions int    `yaml:"dimensions"`
}

// Snapshot configures the prepared-table store.
type Snapshot struct {
	Path string `yaml:"path"` // sqlite file; empty disables snapshots
}

// Duration is a time.Duration written as "30s" in YAML.
type Duration time.Duration

// UnmarshalYAML accepts Go duration strings and plain seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if parsed, err := time.ParseDuration(s); err == nil {
		*d = Duration(parsed)
		return nil
	}
	var secs int
	if err := value.Decode(&secs); err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*d = Duration(time.Duration(secs) * time.Second)
	return nil
}

// MarshalYAML writes the duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Dataset: Dataset{
			Path:             "data/tenders.csv",
			EntityMapping:    "data/entity_mapping.txt",
			VendorMapping:    "data/vendor_mapping.txt",
			MinAwardedAmount: 1000,
			UnmappedEntities: "null",
		},
		Topics: Topics{
			NumTopics:         10,
			TopWords:          10,
			Iterations:        100,
			MaxDocuments:      5000,
			MaxConcurrentFits: 2,
			FitTimeout:        Duration(60 * time.Second),
		},
		Server: Server{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			ReadTimeout:    Duration(15 * time.Second),
			WriteTimeout:   Duration(120 * time.Second),
			DefaultLimit:   10,
		},
		Log: Log{Level: "info", Format: "json"},
		Storage: Storage{Minio: Minio{
			AccessKeyEnv: "MINIO_ACCESS_KEY",
			SecretKeyEnv: "MINIO_SECRET_KEY",
		}},
		Embedding: Embedding{
			Provider:   "lsa",
			APIKeyEnv:  "OPENAI_API_KEY",
			Dimensions: 32,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: config %s", internalerr.ErrResourceMissing, path)
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if c.Dataset.Path == "" {
		errs = append(errs, errors.New("dataset.path is required"))
	}
	if c.Dataset.MinAwardedAmount < 0 {
		errs = append(errs, errors.New("dataset.min_awarded_amount must be >= 0"))
	}
	switch c.Dataset.UnmappedEntities {
	case "", "null", "unclustered", "fail":
	default:
		errs = append(errs, fmt.Errorf("dataset.unmapped_entities: unknown policy %q", c.Dataset.UnmappedEntities))
	}
	if c.Topics.NumTopics < 1 {
		errs = append(errs, errors.New("topics.num_topics must be >= 1"))
	}
	if c.Topics.TopWords < 1 {
		errs = append(errs, errors.New("topics.top_words must be >= 1"))
	}
	if c.Topics.MaxDocuments < 0 || c.Topics.MaxConcurrentFits < 0 || c.Topics.FitTimeout < 0 {
		errs = append(errs, errors.New("topics limits must be >= 0"))
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	switch c.Embedding.Provider {
	case "", "lsa", "openai":
	default:
		errs = append(errs, fmt.Errorf("embedding.provider: unknown provider %q", c.Embedding.Provider))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
