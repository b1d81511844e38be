package models

import "encoding/json"

// These structs define the JSON payloads delivered to the document generator
// by Pub/Sub push subscriptions and Eventarc.

// PubSubEnvelope is the body of a Pub/Sub push request.
type PubSubEnvelope struct {
	Message      *PubSubMessage `json:"message"`
	Subscription string         `json:"subscription,omitempty"`
}

// PubSubMessage carries the base64 encoded event in Data. encoding/json
// decodes the base64 into the byte slice.
type PubSubMessage struct {
	Data       []byte            `json:"data"`
	MessageID  string            `json:"messageId,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// ProjectEvent is a Firestore document change notification.
type ProjectEvent struct {
	Value *EventDocument `json:"value"`
}

// EventDocument is the document state carried by a ProjectEvent. Fields keeps
// the raw typed-value map so field order survives decoding.
type EventDocument struct {
	Name   string          `json:"name"`
	Fields json.RawMessage `json:"fields"`
}
