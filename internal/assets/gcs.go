package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const gcsUploadTimeout = 2 * time.Minute

// GCSConfig selects the bucket and how public URLs are built.
type GCSConfig struct {
	Bucket          string
	Prefix          string
	PublicBaseURL   string
	CredentialsFile string
	// EmulatorHost points the client at a fake-gcs-server style emulator.
	EmulatorHost string
}

// GCSStore stores assets in a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	cfg    GCSConfig
}

// NewGCSStore creates a storage client for cfg.
func NewGCSStore(ctx context.Context, cfg GCSConfig) (*GCSStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("gcs store: bucket required")
	}
	var opts []option.ClientOption
	switch {
	case cfg.EmulatorHost != "":
		opts = append(opts,
			option.WithEndpoint(strings.TrimRight(cfg.EmulatorHost, "/")+"/storage/v1/"),
			option.WithoutAuthentication(),
		)
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs store: create client: %w", err)
	}
	return &GCSStore{client: client, cfg: cfg}, nil
}

// Put uploads data, replacing any existing object.
func (s *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key, err := CleanPath(key)
	if err != nil {
		return "", err
	}
	object := s.objectName(key)
	if contentType == "" {
		contentType = ContentTypeForKey(key)
	}

	ctx, cancel := context.WithTimeout(ctx, gcsUploadTimeout)
	defer cancel()
	w := s.client.Bucket(s.cfg.Bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write gcs object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close gcs writer %s: %w", object, err)
	}
	return s.PublicURL(key), nil
}

// PublicURL returns the URL an object is served from.
func (s *GCSStore) PublicURL(key string) string {
	object := s.objectName(strings.TrimLeft(key, "/"))
	if s.cfg.PublicBaseURL != "" {
		return joinURL(s.cfg.PublicBaseURL, object)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.cfg.Bucket, object)
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) objectName(key string) string {
	prefix := strings.Trim(s.cfg.Prefix, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}
