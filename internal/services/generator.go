package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/projectdocumentflow/internal/config"
	"github.com/Lllllllleong/projectdocumentflow/internal/gcp"
	"github.com/Lllllllleong/projectdocumentflow/internal/pipeline"
	"github.com/Lllllllleong/projectdocumentflow/internal/publish"
	"github.com/Lllllllleong/projectdocumentflow/internal/update"
)

// RecordBackend is a record store that can both enumerate and update records.
type RecordBackend interface {
	pipeline.RecordSource
	update.RecordStore
}

// Generator owns the cloud clients behind a pipeline. Clients are created
// once per process and shared by every run.
type Generator struct {
	Pipeline *pipeline.Pipeline

	firestoreClient *firestore.Client
	storageClient   *storage.Client
}

// NewGenerator creates the Firestore and Storage clients and wires the pipeline.
func NewGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Generator, error) {
	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		_ = firestoreClient.Close()
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	p := Wire(cfg,
		gcp.NewFirestoreRecords(firestoreClient),
		gcp.NewStorageBucket(storageClient, cfg.Bucket, cfg.PublicBaseURL),
		logger,
	)
	return &Generator{
		Pipeline:        p,
		firestoreClient: firestoreClient,
		storageClient:   storageClient,
	}, nil
}

// Close releases the cloud clients.
func (g *Generator) Close() error {
	return errors.Join(g.firestoreClient.Close(), g.storageClient.Close())
}

// Wire assembles a pipeline over arbitrary stores.
func Wire(cfg *config.Config, records RecordBackend, objects publish.ObjectStore, logger *slog.Logger) *pipeline.Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return pipeline.New(
		pipeline.Config{
			Collection:  cfg.Collection,
			ReportOrder: pipeline.Order(cfg.ReportOrder),
		},
		records,
		publish.New(objects, cfg.StagingDir, logger),
		update.New(records, cfg.DocumentField, logger),
		logger,
	)
}
