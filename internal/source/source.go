// Package source opens input resources (dataset CSV, mapping files, cluster
// tables) from the local filesystem or from an S3-compatible object store.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/cognicore/tenderlens/pkg/tenderlens/internalerr"
)

// Opener opens a named resource for reading.
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// MinioConfig configures access to an S3-compatible object store.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// Router dispatches s3://bucket/key names to the object store and anything
// else to the local filesystem.
type Router struct {
	client *minio.Client
}

// NewRouter creates a Router. An empty endpoint disables s3:// names.
func NewRouter(cfg MinioConfig) (*Router, error) {
	if cfg.Endpoint == "" {
		return &Router{}, nil
	}
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Router{client: cli}, nil
}

// Open implements Opener.
func (r *Router) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	bucket, key, remote := ParseObjectURI(name)
	if !remote {
		return OpenFile(name)
	}
	if r.client == nil {
		return nil, fmt.Errorf("%w: %s requires storage.minio.endpoint", internalerr.ErrInvalidConfig, name)
	}

	if _, err := r.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" || minio.ToErrorResponse(err).Code == "NoSuchBucket" {
			return nil, fmt.Errorf("%w: %s", internalerr.ErrResourceMissing, name)
		}
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	obj, err := r.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	return obj, nil
}

// OpenFile opens a local file, reporting a missing file as ErrResourceMissing.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", internalerr.ErrResourceMissing, path)
		}
		return nil, err
	}
	return f, nil
}

// ParseObjectURI splits s3://bucket/key. ok is false for non-object names.
func ParseObjectURI(name string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(name, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// Local is an Opener that only reads the local filesystem.
type Local struct{}

// Open implements Opener.
func (Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return OpenFile(name)
}
