package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// State is a step of a pipeline run.
type State string

const (
	StateReceived      State = "RECEIVED"
	StateEnumerating   State = "ENUMERATING"
	StateDecoded       State = "DECODED"
	StateRendered      State = "RENDERED"
	StateCombined      State = "COMBINED"
	StatePublished     State = "PUBLISHED"
	StateRecordUpdated State = "RECORD_UPDATED"
	StateCompleted     State = "COMPLETED"
	StateFailed        State = "FAILED"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Mode distinguishes single-record runs from bulk report runs.
type Mode string

const (
	ModeDocument Mode = "document"
	ModeReport   Mode = "report"
)

var (
	// ErrInvalidTrigger is returned when a trigger carries no record id.
	ErrInvalidTrigger = errors.New("invalid trigger")
	// ErrEnumeration marks a failure to list records for a report.
	ErrEnumeration = errors.New("record enumeration failed")
	// ErrUnexpected wraps a panic recovered inside a run.
	ErrUnexpected = errors.New("unexpected pipeline failure")
)

// Error reports the state a run was in when it failed.
type Error struct {
	State State
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipeline failed in state %s: %v", e.State, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// run tracks one execution through its states.
type run struct {
	result  *Result
	logger  *slog.Logger
	span    trace.Span
	started time.Time
}

func (p *Pipeline) begin(ctx context.Context, mode Mode, recordID string) (context.Context, *run) {
	id := uuid.NewString()
	ctx, span := p.tracer.Start(ctx, "pipeline."+string(mode),
		trace.WithAttributes(
			attribute.String("pipeline.run_id", id),
			attribute.String("pipeline.mode", string(mode)),
			attribute.String("pipeline.record_id", recordID),
		),
	)

	logCtx := p.logger.With("runId", id, "mode", string(mode))
	if recordID != "" {
		logCtx = logCtx.With("recordId", recordID)
	}

	r := &run{
		result:  &Result{RunID: id, Mode: mode, RecordID: recordID},
		logger:  logCtx,
		span:    span,
		started: time.Now(),
	}
	r.advance(StateReceived)
	return ctx, r
}

func (r *run) advance(s State, attrs ...any) {
	r.result.State = s
	r.span.AddEvent(string(s))
	r.logger.Debug("Pipeline state changed.", append([]any{"state", s}, attrs...)...)
}

// fail moves the run to FAILED and returns the error to surface.
func (r *run) fail(err error) error {
	failed := &Error{State: r.result.State, Err: err}
	r.result.State = StateFailed
	r.span.RecordError(err)
	r.span.SetStatus(otelcodes.Error, err.Error())
	r.logger.Error("Pipeline run failed.", "failedIn", failed.State, "error", err, "elapsed", time.Since(r.started))
	return failed
}

// finish converts a panic into a failure, completes successful runs and ends
// the span. It must be deferred.
func (r *run) finish(res **Result, err *error) {
	if v := recover(); v != nil {
		*err = r.fail(fmt.Errorf("%w: %v", ErrUnexpected, v))
	}
	if *err == nil {
		r.advance(StateCompleted)
		r.logger.Info("Pipeline run completed.", "elapsed", time.Since(r.started))
	}
	*res = r.result
	r.span.End()
}
