// Command projectdocs-render renders project events to DOCX files on disk
// using the same pipeline as the cloud functions, with in-memory stores in
// place of Firestore and Cloud Storage.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/pflag"
	"github.com/tidwall/gjson"

	"github.com/Lllllllleong/projectdocumentflow/internal/config"
	"github.com/Lllllllleong/projectdocumentflow/internal/logging"
	"github.com/Lllllllleong/projectdocumentflow/internal/memstore"
	"github.com/Lllllllleong/projectdocumentflow/internal/models"
	"github.com/Lllllllleong/projectdocumentflow/internal/pipeline"
	"github.com/Lllllllleong/projectdocumentflow/internal/services"
	"github.com/Lllllllleong/projectdocumentflow/internal/update"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	outDir   string
	report   bool
	order    string
	logLevel string
	events   []string
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	flagSet := pflag.NewFlagSet("projectdocs-render", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.outDir, "out", "o", ".", "directory to write the .docx files to")
	flagSet.BoolVar(&opts.report, "report", false, "combine every event into one all-projects report")
	flagSet.StringVar(&opts.order, "order", "id", `report page order: "id" or "title"`)
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: projectdocs-render [flags] EVENT.json...\n\n")
		fmt.Fprintf(os.Stderr, "Each EVENT is a Firestore event JSON or a Pub/Sub push envelope.\n\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	opts.events = flagSet.Args()
	if len(opts.events) == 0 {
		flagSet.Usage()
		return nil, fmt.Errorf("at least one event file is required")
	}
	if opts.order != string(pipeline.OrderID) && opts.order != string(pipeline.OrderTitle) {
		return nil, fmt.Errorf("--order must be %q or %q", pipeline.OrderID, pipeline.OrderTitle)
	}
	return opts, nil
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	log := logging.NewWithWriter(os.Stderr, "projectdocs-render", opts.logLevel)
	ctx := context.Background()

	records := &localRecords{}
	for _, path := range opts.events {
		trig, err := loadTrigger(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		records.add(trig)
	}

	cfg := &config.Config{
		Collection:    "projects",
		DocumentField: update.DefaultField,
		ReportOrder:   opts.order,
		StagingDir:    os.TempDir(),
	}
	objects := memstore.NewObjects("file://" + filepath.ToSlash(opts.outDir))
	p := services.Wire(cfg, records, objects, log)

	if opts.report {
		res, err := p.GenerateReport(ctx)
		if err != nil {
			return err
		}
		return save(opts.outDir, res.Artifact.Path, res.Artifact.Bytes)
	}

	for _, rec := range records.records {
		res, err := p.GenerateDocument(ctx, pipeline.Trigger{RecordID: rec.ID, Fields: rec.Fields})
		if err != nil {
			return err
		}
		obj, _ := objects.Get(res.Artifact.Path)
		if err := save(opts.outDir, res.Artifact.Path, obj.Data); err != nil {
			return err
		}
	}
	return nil
}

func loadTrigger(path string) (pipeline.Trigger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Trigger{}, err
	}
	var event *models.ProjectEvent
	if gjson.GetBytes(data, "message").Exists() {
		event, err = services.DecodeEnvelope(data)
	} else {
		event, err = services.ParseEvent(data)
	}
	if err != nil {
		return pipeline.Trigger{}, err
	}
	return services.TriggerFromEvent(event)
}

// save writes an artifact under dir using the file name of its object path.
func save(dir, objectPath string, data []byte) error {
	dest := filepath.Join(dir, filepath.Base(objectPath))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	fmt.Println(dest)
	return nil
}

// localRecords serves the loaded events as the record store, ordered by id.
// Later events for the same record replace earlier ones.
type localRecords struct {
	records []pipeline.StoredRecord
}

func (l *localRecords) add(trig pipeline.Trigger) {
	for i, rec := range l.records {
		if rec.ID == trig.RecordID {
			l.records[i].Fields = trig.Fields
			return
		}
	}
	l.records = append(l.records, pipeline.StoredRecord{ID: trig.RecordID, Fields: trig.Fields})
}

func (l *localRecords) ListRecords(context.Context, string) ([]pipeline.StoredRecord, error) {
	out := append([]pipeline.StoredRecord(nil), l.records...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (l *localRecords) SetField(_ context.Context, ref update.RecordReference, field string, value any) error {
	slog.Debug("Skipping record update for local render", "record", ref.String(), "field", field, "value", value)
	return nil
}
