package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Lllllllleong/projectdocumentflow/internal/models"
	"github.com/Lllllllleong/projectdocumentflow/internal/pipeline"
	"github.com/Lllllllleong/projectdocumentflow/internal/record"
)

// UnknownRecordID names the record of an event whose resource name is empty.
const UnknownRecordID = "unknown_doc"

var (
	ErrNoPayload = errors.New("no JSON payload")
	ErrNoMessage = errors.New("no message field")
	ErrNoData    = errors.New("no data in message")
	// ErrBadEvent marks a message whose data is not a Firestore event.
	ErrBadEvent = errors.New("malformed event")
)

// IsBadRequest reports whether err came from decoding the caller's input.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrNoPayload) ||
		errors.Is(err, ErrNoMessage) ||
		errors.Is(err, ErrNoData) ||
		errors.Is(err, ErrBadEvent)
}

// DecodeEnvelope unwraps a Pub/Sub push body into the Firestore event it
// carries. An empty object counts as no payload.
func DecodeEnvelope(body []byte) (*models.ProjectEvent, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return nil, ErrNoPayload
	}
	if root := gjson.ParseBytes(body); !root.IsObject() || len(root.Map()) == 0 {
		return nil, ErrNoPayload
	}

	var envelope models.PubSubEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoPayload, err)
	}
	if envelope.Message == nil {
		return nil, ErrNoMessage
	}
	if len(envelope.Message.Data) == 0 {
		return nil, ErrNoData
	}
	return ParseEvent(envelope.Message.Data)
}

// ParseEvent decodes a Firestore event as JSON.
func ParseEvent(data []byte) (*models.ProjectEvent, error) {
	var event models.ProjectEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadEvent, err)
	}
	if event.Value == nil {
		return nil, fmt.Errorf("%w: no value in event", ErrBadEvent)
	}
	return &event, nil
}

// RecordIDFromName returns the last segment of a Firestore resource name.
func RecordIDFromName(name string) string {
	if name == "" {
		return UnknownRecordID
	}
	return name[strings.LastIndex(name, "/")+1:]
}

// TriggerFromEvent builds the pipeline input for a decoded event. An event
// with no fields yields a record with no fields.
func TriggerFromEvent(event *models.ProjectEvent) (pipeline.Trigger, error) {
	trig := pipeline.Trigger{RecordID: RecordIDFromName(event.Value.Name)}
	raw := bytes.TrimSpace(event.Value.Fields)
	if len(raw) == 0 || string(raw) == "null" {
		return trig, nil
	}
	fields, err := record.ParseFields(raw)
	if err != nil {
		return trig, fmt.Errorf("%w: %w", ErrBadEvent, err)
	}
	trig.Fields = fields
	return trig, nil
}
