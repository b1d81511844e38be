// Package publish serialises rendered documents and writes them to object storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Lllllllleong/projectdocumentflow/internal/docx"
	"github.com/Lllllllleong/projectdocumentflow/internal/render"
)

// ErrPublication marks a failure to serialise, stage or store an artifact.
var ErrPublication = errors.New("publication failed")

const (
	DocumentPrefix = "documents/"
	ReportPrefix   = "reports/"
	ReportName     = "all_projects"
)

// ObjectStore is the storage capability the publisher writes to. Write
// replaces any object already stored at path.
type ObjectStore interface {
	Write(ctx context.Context, path, contentType string, r io.Reader) error
	MakePublic(ctx context.Context, path string) (string, error)
}

// Target names where an artifact goes and how it is exposed.
type Target struct {
	Prefix   string
	Name     string
	Public   bool
	Download bool
}

// DocumentTarget is the public per-record artifact.
func DocumentTarget(recordID string) Target {
	return Target{Prefix: DocumentPrefix, Name: recordID, Public: true}
}

// ReportTarget is the combined report, also returned as a download.
func ReportTarget() Target {
	return Target{Prefix: ReportPrefix, Name: ReportName, Download: true}
}

// Path is a function of the logical name only; publications are not versioned.
func (t Target) Path() string {
	return t.Prefix + t.Name + docx.Extension
}

// Filename is the download name of the artifact.
func (t Target) Filename() string {
	return t.Name + docx.Extension
}

// Artifact is a published document.
type Artifact struct {
	Path  string
	URL   string
	Size  int64
	Bytes []byte
}

// Publisher stages documents in local temp files and uploads them.
type Publisher struct {
	store      ObjectStore
	stagingDir string
	logger     *slog.Logger
}

// New returns a Publisher. An empty stagingDir uses the OS temp directory.
func New(store ObjectStore, stagingDir string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, stagingDir: stagingDir, logger: logger}
}

// Publish serialises doc and writes it to target.Path(). The staging file is
// removed on every return path. Failures are not retried.
func (p *Publisher) Publish(ctx context.Context, doc *render.Document, target Target) (*Artifact, error) {
	path := target.Path()
	logCtx := p.logger.With("objectPath", path)

	var artifact *Artifact
	err := p.withStagingFile(func(f *os.File) error {
		if err := docx.Write(f, doc); err != nil {
			return fmt.Errorf("serialising document: %w", err)
		}
		size, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("sizing staged artifact: %w", err)
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewinding staged artifact: %w", err)
		}

		if err := p.store.Write(ctx, path, docx.ContentType, f); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		artifact = &Artifact{Path: path, Size: size}

		if target.Public {
			url, err := p.store.MakePublic(ctx, path)
			if err != nil {
				return fmt.Errorf("making %s public: %w", path, err)
			}
			artifact.URL = url
		}

		if target.Download {
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return fmt.Errorf("rewinding staged artifact: %w", err)
			}
			data, err := io.ReadAll(f)
			if err != nil {
				return fmt.Errorf("reading staged artifact: %w", err)
			}
			artifact.Bytes = data
		}
		return nil
	})
	if err != nil {
		logCtx.Error("Failed to publish artifact", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPublication, err)
	}

	logCtx.Info("Artifact published.", "size", artifact.Size, "public", target.Public)
	return artifact, nil
}

// withStagingFile hands fn a fresh temp file and always closes and removes it.
func (p *Publisher) withStagingFile(fn func(f *os.File) error) (err error) {
	f, err := os.CreateTemp(p.stagingDir, "artifact-*"+docx.Extension)
	if err != nil {
		return fmt.Errorf("creating staging file: %w", err)
	}
	defer func() {
		_ = f.Close()
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			p.logger.Warn("Failed to remove staging file", "path", f.Name(), "error", rmErr)
		}
	}()
	return fn(f)
}
