package gcp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lllllllleong/projectdocumentflow/internal/update"
)

func TestPublicURL(t *testing.T) {
	require.Equal(t,
		"https://storage.googleapis.com/my-bucket/documents/abc123.docx",
		publicURL("https://storage.googleapis.com", "my-bucket", "documents/abc123.docx"))
	require.Equal(t,
		"https://storage.googleapis.com/my-bucket/documents/a%20b.docx",
		publicURL("https://storage.googleapis.com", "my-bucket", "documents/a b.docx"))
}

func TestClassifyUpdateError(t *testing.T) {
	ref := update.RecordReference{Collection: "projects", ID: "abc123"}

	require.NoError(t, classifyUpdateError(ref, nil))

	err := classifyUpdateError(ref, status.Error(codes.NotFound, "no document to update"))
	require.ErrorIs(t, err, update.ErrNotFound)
	require.ErrorContains(t, err, "projects/abc123")

	err = classifyUpdateError(ref, status.Error(codes.Unavailable, "try later"))
	require.Error(t, err)
	require.NotErrorIs(t, err, update.ErrNotFound)
}

func TestDescribeGoogleAPIError(t *testing.T) {
	err := describe(&googleapi.Error{Code: 403, Message: "forbidden"})
	require.ErrorContains(t, err, "gcs status 403")

	var gerr *googleapi.Error
	require.True(t, errors.As(err, &gerr))

	plain := errors.New("plain")
	require.Equal(t, plain, describe(plain))
}

// recordingWriter tracks whether the upload context was cancelled by the
// time Close finalizes the object.
type recordingWriter struct {
	ctx              context.Context
	buf              bytes.Buffer
	closed           bool
	cancelledAtClose bool
}

func (w *recordingWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *recordingWriter) Close() error {
	w.closed = true
	w.cancelledAtClose = w.ctx.Err() != nil
	return nil
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestUploadFinalizesOnSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := &recordingWriter{ctx: ctx}

	require.NoError(t, upload("documents/abc123.docx", w, cancel, strings.NewReader("payload")))
	require.True(t, w.closed)
	require.False(t, w.cancelledAtClose)
	require.Equal(t, "payload", w.buf.String())
}

func TestUploadCancelsBeforeCloseOnCopyError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := &recordingWriter{ctx: ctx}
	readErr := errors.New("stream broke")

	err := upload("documents/abc123.docx", w, cancel, io.MultiReader(strings.NewReader("part"), failingReader{readErr}))
	require.ErrorIs(t, err, readErr)
	require.ErrorContains(t, err, "failed to write to GCS")
	require.True(t, w.closed)
	require.True(t, w.cancelledAtClose)
}
