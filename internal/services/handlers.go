package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/tidwall/gjson"

	"github.com/Lllllllleong/projectdocumentflow/internal/docx"
	"github.com/Lllllllleong/projectdocumentflow/internal/pipeline"
	"github.com/Lllllllleong/projectdocumentflow/internal/publish"
)

// maxBodyBytes bounds push request bodies. Pub/Sub caps messages at 10MB.
const maxBodyBytes = 10 << 20

// DocumentHandler serves the single-record trigger delivered as a Pub/Sub
// push request.
func DocumentHandler(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			slog.Error("Could not read request body", "error", err)
			http.Error(w, "Bad Request: could not read body", http.StatusBadRequest)
			return
		}

		event, err := DecodeEnvelope(body)
		if err != nil {
			slog.Warn("Rejected push request", "error", err)
			http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
			return
		}
		trig, err := TriggerFromEvent(event)
		if err != nil {
			slog.Warn("Rejected event fields", "error", err)
			http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
			return
		}

		res, err := p.GenerateDocument(r.Context(), trig)
		if err != nil {
			// The run has already logged its failure.
			http.Error(w, "Internal Server Error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Docx created and uploaded: %s", res.Artifact.URL)
	}
}

// ReportHandler generates the all-projects report and returns it as a download.
func ReportHandler(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		res, err := p.GenerateReport(r.Context())
		if err != nil {
			http.Error(w, "Internal Server Error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		filename := publish.ReportTarget().Filename()
		w.Header().Set("Content-Type", docx.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(res.Artifact.Bytes)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(res.Artifact.Bytes); err != nil {
			slog.Error("Failed to write report response", "runId", res.RunID, "error", err)
		}
	}
}

// HandleCloudEvent runs the single-record trigger for an Eventarc delivery.
// The event data is either a Pub/Sub message wrapper or the Firestore event
// JSON itself.
func HandleCloudEvent(ctx context.Context, p *pipeline.Pipeline, e event.Event) error {
	logCtx := slog.With("eventId", e.ID(), "eventType", e.Type(), "source", e.Source())

	data := e.Data()
	if len(data) == 0 {
		logCtx.Warn("CloudEvent carried no data")
		return ErrNoPayload
	}

	decode := ParseEvent
	if gjson.GetBytes(data, "message").Exists() {
		decode = DecodeEnvelope
	}
	projectEvent, err := decode(data)
	if err != nil {
		logCtx.Warn("Rejected CloudEvent", "error", err)
		return err
	}
	trig, err := TriggerFromEvent(projectEvent)
	if err != nil {
		logCtx.Warn("Rejected event fields", "error", err)
		return err
	}

	res, err := p.GenerateDocument(ctx, trig)
	if err != nil {
		return err
	}
	logCtx.Info("Document generated from CloudEvent", "runId", res.RunID, "url", res.Artifact.URL)
	return nil
}
