package runtime

import (
	"context"
	"errors"
	"io"
	"strings"
)

// StorageKV stores each key as one JSON file on a Storage backend,
// e.g. ".deckshow/bookmarks.json" under the deck directory.
type StorageKV struct {
	storage Storage
	prefix  string
}

// NewStorageKV creates a KV store writing under prefix on storage
func NewStorageKV(storage Storage, prefix string) *StorageKV {
	return &StorageKV{storage: storage, prefix: strings.TrimSuffix(prefix, "/")}
}

func (k *StorageKV) path(key string) string {
	if k.prefix == "" {
		return key + ".json"
	}
	return k.prefix + "/" + key + ".json"
}

func (k *StorageKV) Get(ctx context.Context, key string) ([]byte, error) {
	reader, err := k.storage.Get(ctx, k.path(key))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func (k *StorageKV) Put(ctx context.Context, key string, value []byte) error {
	return k.storage.Put(ctx, k.path(key), value, "application/json")
}

func (k *StorageKV) Delete(ctx context.Context, key string) error {
	return k.storage.Delete(ctx, k.path(key))
}
