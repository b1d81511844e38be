// Package memstore provides in-memory record and object stores for tests and
// local rendering.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/Lllllllleong/projectdocumentflow/internal/pipeline"
	"github.com/Lllllllleong/projectdocumentflow/internal/record"
	"github.com/Lllllllleong/projectdocumentflow/internal/update"
)

// Object is a stored blob.
type Object struct {
	ContentType string
	Data        []byte
	Public      bool
}

// Objects is an in-memory publish.ObjectStore. Writes overwrite.
type Objects struct {
	mu         sync.Mutex
	baseURL    string
	objects    map[string]Object
	writeErr   error
	publicErr  error
	writeCount int
}

// NewObjects returns an empty bucket whose public URLs start with baseURL.
func NewObjects(baseURL string) *Objects {
	return &Objects{baseURL: baseURL, objects: make(map[string]Object)}
}

// FailWrites makes every subsequent Write return err. A nil err clears it.
func (s *Objects) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// FailPublic makes every subsequent MakePublic return err.
func (s *Objects) FailPublic(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publicErr = err
}

func (s *Objects) Write(_ context.Context, path, contentType string, r io.Reader) error {
	s.mu.Lock()
	failure := s.writeErr
	s.mu.Unlock()
	if failure != nil {
		return failure
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = Object{ContentType: contentType, Data: buf.Bytes()}
	s.writeCount++
	return nil
}

func (s *Objects) MakePublic(_ context.Context, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publicErr != nil {
		return "", s.publicErr
	}
	obj, ok := s.objects[path]
	if !ok {
		return "", fmt.Errorf("object %s does not exist", path)
	}
	obj.Public = true
	s.objects[path] = obj
	return s.baseURL + "/" + path, nil
}

// Get returns the object stored at path.
func (s *Objects) Get(path string) (Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[path]
	return obj, ok
}

// Writes counts successful writes.
func (s *Objects) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeCount
}

// Records is an in-memory record store keyed by collection and id. It
// implements update.RecordStore and pipeline.RecordSource.
type Records struct {
	mu       sync.Mutex
	data     map[string]map[string]map[string]any
	writeErr error
	listErr  error
}

// NewRecords returns an empty record store.
func NewRecords() *Records {
	return &Records{data: make(map[string]map[string]map[string]any)}
}

// Put stores a copy of fields as record id, replacing any previous record.
func (s *Records) Put(collection, id string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]map[string]any)
	}
	s.data[collection][id] = clone(fields)
}

// Delete removes a record.
func (s *Records) Delete(collection, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[collection], id)
}

// Get returns a copy of a record.
func (s *Records) Get(collection, id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[collection][id]
	if !ok {
		return nil, false
	}
	return clone(rec), true
}

func (s *Records) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

func (s *Records) FailList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

func (s *Records) SetField(_ context.Context, ref update.RecordReference, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	rec, ok := s.data[ref.Collection][ref.ID]
	if !ok {
		return fmt.Errorf("%s: %w", ref, update.ErrNotFound)
	}
	rec[field] = value
	return nil
}

// ListRecords returns the collection ordered by id.
func (s *Records) ListRecords(_ context.Context, collection string) ([]pipeline.StoredRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	ids := make([]string, 0, len(s.data[collection]))
	for id := range s.data[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]pipeline.StoredRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, pipeline.StoredRecord{ID: id, Fields: record.FromNative(s.data[collection][id])})
	}
	return out, nil
}

func clone(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
