// Package runtime provides the storage and key-value backends the presenter
// runs on, with one implementation per host (native, browser, Cloudflare).
package runtime

import (
	"context"
	"errors"
	"io"

	"github.com/joeblew999/deckshow/pkg/pipeline"
)

// ErrNotFound is returned by Storage.Get and KVStore.Get for missing keys.
var ErrNotFound = errors.New("not found")

// Storage abstracts file storage (local filesystem, remote HTTP, R2)
type Storage interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	List(ctx context.Context, prefix string, delimiter string) (*ListResult, error)
	Delete(ctx context.Context, key string) error
}

// FilesystemStorage is implemented by backends that map to a local directory.
// The native pipeline needs a real working directory for decksh imports.
type FilesystemStorage interface {
	Storage
	FullPath(key string) (string, error)
}

// ListResult holds storage listing results
type ListResult struct {
	Keys              []string
	DelimitedPrefixes []string
}

// KVStore abstracts the per-presenter key-value store that holds opaque
// JSON blobs (current slide, bookmarks, notes).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Publisher abstracts event publishing (websocket hub, logs)
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Runtime holds the platform-specific dependencies of one host process.
type Runtime struct {
	InputStorage  Storage
	OutputStorage Storage
	KV            KVStore
	Publisher     Publisher
	Pipeline      pipeline.Pipeline
}

// Current is set by entry points that cannot pass dependencies explicitly
// (the Cloudflare worker and the browser build).
var Current *Runtime

// SetRuntime sets the global runtime
func SetRuntime(r *Runtime) {
	Current = r
}

// Input returns the input storage
func Input() Storage { return Current.Input() }

// Output returns the output storage
func Output() Storage { return Current.Output() }

// KV returns the KV store
func KV() KVStore { return Current.Store() }

// Events returns the publisher
func Events() Publisher { return Current.Events() }

// Input returns the input storage, or a storage that holds nothing. r may be nil.
func (r *Runtime) Input() Storage {
	if r == nil || r.InputStorage == nil {
		return &noopStorage{}
	}
	return r.InputStorage
}

// Output returns the output storage, or one that discards writes
func (r *Runtime) Output() Storage {
	if r == nil || r.OutputStorage == nil {
		return &noopStorage{}
	}
	return r.OutputStorage
}

// Store returns the KV store, or one that holds nothing
func (r *Runtime) Store() KVStore {
	if r == nil || r.KV == nil {
		return &noopKV{}
	}
	return r.KV
}

// Events returns the publisher, or one that drops events
func (r *Runtime) Events() Publisher {
	if r == nil || r.Publisher == nil {
		return NoopPublisher{}
	}
	return r.Publisher
}

// noopStorage is used when storage isn't configured
type noopStorage struct{}

func (s *noopStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, ErrNotFound
}

func (s *noopStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}

func (s *noopStorage) List(ctx context.Context, prefix string, delimiter string) (*ListResult, error) {
	return &ListResult{}, nil
}

func (s *noopStorage) Delete(ctx context.Context, key string) error {
	return nil
}

// noopKV is used when KV isn't configured
type noopKV struct{}

func (k *noopKV) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrNotFound
}

func (k *noopKV) Put(ctx context.Context, key string, value []byte) error {
	return nil
}

func (k *noopKV) Delete(ctx context.Context, key string) error {
	return nil
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	return nil
}

// ReadAll fetches a key from storage and reads it fully.
func ReadAll(ctx context.Context, s Storage, key string) ([]byte, error) {
	reader, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
