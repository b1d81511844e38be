package update_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/projectdocumentflow/internal/memstore"
	"github.com/Lllllllleong/projectdocumentflow/internal/update"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAttachMergesField(t *testing.T) {
	records := memstore.NewRecords()
	records.Put("projects", "abc123", map[string]any{"title": "X", "year": int64(2024)})

	u := update.New(records, "", discard())
	require.Equal(t, update.DefaultField, u.Field())

	ref := update.RecordReference{Collection: "projects", ID: "abc123"}
	require.NoError(t, u.Attach(context.Background(), ref, "https://example.test/documents/abc123.docx"))

	data, ok := records.Get("projects", "abc123")
	require.True(t, ok)
	require.Equal(t, "https://example.test/documents/abc123.docx", data["documents"])
	require.Equal(t, "X", data["title"])
	require.Equal(t, int64(2024), data["year"])
}

func TestAttachLastWriterWins(t *testing.T) {
	records := memstore.NewRecords()
	records.Put("projects", "p1", map[string]any{})
	u := update.New(records, "docUrl", discard())
	ref := update.RecordReference{Collection: "projects", ID: "p1"}

	require.NoError(t, u.Attach(context.Background(), ref, "first"))
	require.NoError(t, u.Attach(context.Background(), ref, "second"))

	data, _ := records.Get("projects", "p1")
	require.Equal(t, "second", data["docUrl"])
}

func TestAttachMissingRecord(t *testing.T) {
	u := update.New(memstore.NewRecords(), "", discard())

	err := u.Attach(context.Background(), update.RecordReference{Collection: "projects", ID: "gone"}, "url")
	require.Error(t, err)
	require.True(t, errors.Is(err, update.ErrUpdate))
	require.True(t, errors.Is(err, update.ErrNotFound))
}

func TestAttachStoreFailure(t *testing.T) {
	records := memstore.NewRecords()
	records.Put("projects", "p1", map[string]any{})
	records.FailWrites(errors.New("unavailable"))

	err := update.New(records, "", discard()).Attach(context.Background(), update.RecordReference{Collection: "projects", ID: "p1"}, "url")
	require.ErrorIs(t, err, update.ErrUpdate)
	require.NotErrorIs(t, err, update.ErrNotFound)
	require.ErrorContains(t, err, "unavailable")
}
