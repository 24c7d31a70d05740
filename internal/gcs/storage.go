// Package gcs stores uploaded statements in Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// DefaultUploadTimeout bounds a single upload.
const DefaultUploadTimeout = 2 * time.Minute

// Storage reads and writes objects through one shared client. It assumes
// Application Default Credentials are configured.
type Storage struct {
	client        *storage.Client
	bucket        string
	uploadTimeout time.Duration
}

// NewStorage creates a client for bucket. Close releases it.
func NewStorage(ctx context.Context, bucket string) (*Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("NewStorage: bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewStorage: create storage client: %w", err)
	}
	return &Storage{client: client, bucket: bucket, uploadTimeout: DefaultUploadTimeout}, nil
}

// Close closes the underlying client.
func (s *Storage) Close() error {
	return s.client.Close()
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	return s.bucket
}

// Upload writes r to objectName in the configured bucket and returns the
// gs:// URI of the new object.
func (s *Storage) Upload(ctx context.Context, objectName string, r io.Reader, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Upload: copy to GCS writer: %w", err)
	}
	// Close finalizes the upload
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Upload: finalize %s: %w", objectName, err)
	}
	return "gs://" + s.bucket + "/" + objectName, nil
}

// UploadFile uploads a local file.
func (s *Storage) UploadFile(ctx context.Context, objectName, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("UploadFile: open file %q: %w", filePath, err)
	}
	defer f.Close()

	return s.Upload(ctx, objectName, f, "")
}

// Fetch downloads the object behind a gs:// URI. The URI may name any
// bucket the credentials can read.
func (s *Storage) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	rc, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	return data, nil
}

// ExtractFilename implements the pipeline's storage port.
func (s *Storage) ExtractFilename(uri string) string {
	return ExtractFilename(uri)
}

// ParseURI splits "gs://bucket/path/to/object" into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// ExtractFilename extracts the filename from a GCS URI.
// e.g., "gs://bucket/folder/file.pdf" → "file.pdf"
func ExtractFilename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectName builds a unique object path for a user's statement upload:
// statements/<user>/<yyyy>/<mm>/<uuid>-<filename>.
func ObjectName(userID, filename string, now time.Time) string {
	name := unsafeChars.ReplaceAllString(path.Base(filename), "_")
	if name == "" || name == "." || name == "_" {
		name = "statement"
	}
	return fmt.Sprintf("statements/%s/%s/%s-%s",
		unsafeChars.ReplaceAllString(userID, "_"),
		now.UTC().Format("2006/01"),
		uuid.NewString(),
		name,
	)
}
