package gcp

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lllllllleong/projectdocumentflow/internal/pipeline"
	"github.com/Lllllllleong/projectdocumentflow/internal/record"
	"github.com/Lllllllleong/projectdocumentflow/internal/update"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// FirestoreRecords adapts a Firestore client to the record store
// capabilities used by the pipeline.
type FirestoreRecords struct {
	client *firestore.Client
}

// NewFirestoreRecords wraps client. The caller owns the client and closes it.
func NewFirestoreRecords(client *firestore.Client) *FirestoreRecords {
	return &FirestoreRecords{client: client}
}

// SetField performs a partial update of one field. Firestore rejects updates
// to missing documents with NotFound, which is reported as update.ErrNotFound.
func (s *FirestoreRecords) SetField(ctx context.Context, ref update.RecordReference, field string, value any) error {
	docRef := s.client.Collection(ref.Collection).Doc(ref.ID)
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: field, Value: value},
	})
	return classifyUpdateError(ref, err)
}

// ListRecords reads every document of collection ordered by document id.
func (s *FirestoreRecords) ListRecords(ctx context.Context, collection string) ([]pipeline.StoredRecord, error) {
	it := s.client.Collection(collection).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer it.Stop()

	var out []pipeline.StoredRecord
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s documents: %w", collection, err)
		}
		out = append(out, pipeline.StoredRecord{
			ID:     snap.Ref.ID,
			Fields: record.FromNative(snap.Data()),
		})
	}
	return out, nil
}

func classifyUpdateError(ref update.RecordReference, err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s: %w: %v", ref, update.ErrNotFound, err)
	}
	return fmt.Errorf("failed to update %s: %w", ref, err)
}
