// Package database abstracts the realtime backing store: a hierarchical
// key/value tree with subscription semantics. The production implementation
// talks to Firebase Realtime Database; tests substitute in-memory fakes.
package database

import (
	"context"
	"encoding/json"
)

// Snapshot is the full value of a watched path at one point in time.
// Callbacks for a given path are delivered in write order for that path;
// nothing is guaranteed across distinct paths.
type Snapshot struct {
	Path string
	Data json.RawMessage
}

// Exists reports whether the path held a value.
func (s Snapshot) Exists() bool {
	return len(s.Data) > 0 && string(s.Data) != "null"
}

// Decode unmarshals the snapshot value into v.
func (s Snapshot) Decode(v any) error {
	return json.Unmarshal(s.Data, v)
}

// UnsubscribeFunc tears down one subscription. Safe to call more than once.
type UnsubscribeFunc func()

// Client is the realtime store boundary consumed by all services.
type Client interface {
	// Get reads the value at path into v.
	Get(ctx context.Context, path string, v any) error
	// Set fully replaces the value at path.
	Set(ctx context.Context, path string, v any) error
	// Update merges fields into the existing value at path.
	Update(ctx context.Context, path string, fields map[string]any) error
	// Delete removes the value at path.
	Delete(ctx context.Context, path string) error
	// Push appends v under path with a generated child key and returns the key.
	Push(ctx context.Context, path string, v any) (string, error)
	// Watch subscribes to path and invokes fn with the full current value on
	// every change, starting with the initial value. The returned func stops
	// the subscription.
	Watch(ctx context.Context, path string, fn func(Snapshot)) (UnsubscribeFunc, error)
}
