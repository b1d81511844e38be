package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// StorageBucket writes artifacts to a single Cloud Storage bucket. Writes
// carry no preconditions, so an existing object at the same path is replaced.
type StorageBucket struct {
	bucket        *storage.BucketHandle
	name          string
	publicBaseURL string
}

// NewStorageBucket returns a StorageBucket for bucket. Public URLs are built
// under publicBaseURL.
func NewStorageBucket(client *storage.Client, bucket, publicBaseURL string) *StorageBucket {
	return &StorageBucket{
		bucket:        client.Bucket(bucket),
		name:          bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Write streams r into objectName. A failed copy aborts the upload, leaving
// any existing object untouched.
func (b *StorageBucket) Write(ctx context.Context, objectName, contentType string, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := b.bucket.Object(objectName).NewWriter(ctx)
	writer.ContentType = contentType
	return upload(objectName, writer, cancel, r)
}

// upload copies r into w and finalizes it with Close. On a copy error cancel
// runs before Close so the writer discards the partial content.
func upload(objectName string, w io.WriteCloser, cancel context.CancelFunc, r io.Reader) error {
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		_ = w.Close()
		slog.Error("Failed to copy content to GCS object", "object", objectName, "error", err)
		return fmt.Errorf("failed to write to GCS: %w", describe(err))
	}

	if err := w.Close(); err != nil {
		slog.Error("Failed to close GCS writer", "object", objectName, "error", err)
		return fmt.Errorf("failed to finalize GCS write: %w", describe(err))
	}
	return nil
}

// MakePublic grants allUsers read access and returns the object's public URL.
func (b *StorageBucket) MakePublic(ctx context.Context, objectName string) (string, error) {
	acl := b.bucket.Object(objectName).ACL()
	if err := acl.Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", fmt.Errorf("failed to make %s public: %w", objectName, describe(err))
	}
	return b.PublicURL(objectName), nil
}

// PublicURL is the anonymous download URL of objectName.
func (b *StorageBucket) PublicURL(objectName string) string {
	return publicURL(b.publicBaseURL, b.name, objectName)
}

func publicURL(base, bucket, objectName string) string {
	segments := strings.Split(objectName, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return base + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

// describe adds the HTTP status of a googleapi error to its message.
func describe(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fmt.Errorf("gcs status %d: %w", gerr.Code, err)
	}
	return err
}
