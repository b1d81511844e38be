// Package update writes artifact references back onto project records.
package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrUpdate marks a failed write-back to the record store.
	ErrUpdate = errors.New("record update failed")
	// ErrNotFound is returned by stores when the target record does not exist.
	ErrNotFound = errors.New("record not found")
)

// DefaultField is the record field holding the artifact URL.
const DefaultField = "documents"

// RecordReference identifies a record within a collection.
type RecordReference struct {
	Collection string
	ID         string
}

func (r RecordReference) String() string {
	return r.Collection + "/" + r.ID
}

// RecordStore sets a single field on an existing record, leaving the others
// untouched. Implementations wrap ErrNotFound when the record is missing.
type RecordStore interface {
	SetField(ctx context.Context, ref RecordReference, field string, value any) error
}

// Updater attaches artifact URLs to records.
type Updater struct {
	store  RecordStore
	field  string
	logger *slog.Logger
}

// New returns an Updater writing to field, or DefaultField when field is
// empty. A nil logger uses slog.Default.
func New(store RecordStore, field string, logger *slog.Logger) *Updater {
	if field == "" {
		field = DefaultField
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Updater{store: store, field: field, logger: logger}
}

// Field returns the record field the updater writes.
func (u *Updater) Field() string { return u.field }

// Attach sets the artifact URL on ref. It is an unconditional set: the last
// writer wins.
func (u *Updater) Attach(ctx context.Context, ref RecordReference, url string) error {
	logCtx := u.logger.With("record", ref.String(), "field", u.field)
	if err := u.store.SetField(ctx, ref, u.field, url); err != nil {
		logCtx.Error("Failed to attach artifact to record", "error", err)
		return fmt.Errorf("%w: setting %s on %s: %w", ErrUpdate, u.field, ref, err)
	}
	logCtx.Info("Record updated with artifact reference.")
	return nil
}
