// Package pipeline sequences decoding, rendering, publication and record
// updates for single-record documents and bulk project reports.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Lllllllleong/projectdocumentflow/internal/publish"
	"github.com/Lllllllleong/projectdocumentflow/internal/record"
	"github.com/Lllllllleong/projectdocumentflow/internal/render"
	"github.com/Lllllllleong/projectdocumentflow/internal/update"
)

const tracerName = "github.com/Lllllllleong/projectdocumentflow/internal/pipeline"

// Order selects the page order of bulk reports.
type Order string

const (
	// OrderID keeps the record source's enumeration order (document id).
	OrderID Order = "id"
	// OrderTitle sorts pages by project title, then id.
	OrderTitle Order = "title"
)

// Config holds the pipeline's fixed settings.
type Config struct {
	Collection  string
	ReportOrder Order
}

// StoredRecord is one record read from the record store.
type StoredRecord struct {
	ID     string
	Fields []record.Field
}

// RecordSource enumerates every record of a collection.
type RecordSource interface {
	ListRecords(ctx context.Context, collection string) ([]StoredRecord, error)
}

// Trigger is a decoded change notification for one record.
type Trigger struct {
	RecordID string
	Fields   []record.Field
}

// Result describes a finished run. On failure State is StateFailed and
// Artifact is set if publication had already happened.
type Result struct {
	RunID    string
	Mode     Mode
	RecordID string
	State    State
	Pages    int
	Artifact *publish.Artifact
}

// Pipeline runs one sequential execution per trigger. Runs share no state and
// are not coordinated with each other.
type Pipeline struct {
	cfg       Config
	source    RecordSource
	publisher *publish.Publisher
	updater   *update.Updater
	logger    *slog.Logger
	tracer    trace.Tracer
}

// New wires a Pipeline. An empty ReportOrder falls back to OrderID and a nil
// logger to slog.Default.
func New(cfg Config, source RecordSource, publisher *publish.Publisher, updater *update.Updater, logger *slog.Logger) *Pipeline {
	if cfg.ReportOrder == "" {
		cfg.ReportOrder = OrderID
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:       cfg,
		source:    source,
		publisher: publisher,
		updater:   updater,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// GenerateDocument renders the triggering record, publishes it publicly at
// documents/{id}.docx and stores the URL on the record. A failed record
// update does not remove the published artifact.
func (p *Pipeline) GenerateDocument(ctx context.Context, trig Trigger) (res *Result, err error) {
	ctx, r := p.begin(ctx, ModeDocument, trig.RecordID)
	defer r.finish(&res, &err)

	if trig.RecordID == "" {
		return r.result, r.fail(fmt.Errorf("%w: empty record id", ErrInvalidTrigger))
	}

	decoded := record.Decode(trig.Fields)
	r.advance(StateDecoded, "fieldCount", decoded.Len())

	doc := render.Single(decoded)
	r.result.Pages = len(doc.Pages)
	r.advance(StateRendered)

	artifact, err := p.publisher.Publish(ctx, doc, publish.DocumentTarget(trig.RecordID))
	if err != nil {
		return r.result, r.fail(err)
	}
	r.result.Artifact = artifact
	r.advance(StatePublished, "objectPath", artifact.Path, "url", artifact.URL)

	ref := update.RecordReference{Collection: p.cfg.Collection, ID: trig.RecordID}
	if err := p.updater.Attach(ctx, ref, artifact.URL); err != nil {
		return r.result, r.fail(err)
	}
	r.advance(StateRecordUpdated)

	return r.result, nil
}

// GenerateReport renders every record of the collection into one document,
// published at reports/all_projects.docx and returned as bytes. No record is
// modified.
func (p *Pipeline) GenerateReport(ctx context.Context) (res *Result, err error) {
	ctx, r := p.begin(ctx, ModeReport, "")
	defer r.finish(&res, &err)

	r.advance(StateEnumerating)
	stored, err := p.source.ListRecords(ctx, p.cfg.Collection)
	if err != nil {
		return r.result, r.fail(fmt.Errorf("%w: %w", ErrEnumeration, err))
	}

	type entry struct {
		id  string
		rec record.Decoded
	}
	entries := make([]entry, 0, len(stored))
	for _, s := range stored {
		entries = append(entries, entry{id: s.ID, rec: record.Decode(s.Fields)})
		r.advance(StateDecoded, "recordId", s.ID)
	}
	if p.cfg.ReportOrder == OrderTitle {
		sort.SliceStable(entries, func(i, j int) bool {
			ti, _ := entries[i].rec.Get(render.FieldTitle)
			tj, _ := entries[j].rec.Get(render.FieldTitle)
			if ti != tj {
				return ti < tj
			}
			return entries[i].id < entries[j].id
		})
	}

	doc := render.NewReport()
	for _, e := range entries {
		render.AppendPage(doc, e.rec)
		r.advance(StateRendered, "recordId", e.id)
	}
	r.result.Pages = len(doc.Pages)
	r.advance(StateCombined, "pages", len(doc.Pages), "pageBreaks", doc.PageBreaks())

	artifact, err := p.publisher.Publish(ctx, doc, publish.ReportTarget())
	if err != nil {
		return r.result, r.fail(err)
	}
	r.result.Artifact = artifact
	r.advance(StatePublished, "objectPath", artifact.Path, "size", artifact.Size)

	return r.result, nil
}
