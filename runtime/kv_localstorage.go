//go:build js && wasm && !cloudflare

package runtime

import (
	"context"
	"syscall/js"
)

// LocalStorageKV implements KVStore on the browser's window.localStorage
type LocalStorageKV struct {
	storage js.Value
}

// NewLocalStorageKV binds to window.localStorage
func NewLocalStorageKV() *LocalStorageKV {
	return &LocalStorageKV{storage: js.Global().Get("localStorage")}
}

func (k *LocalStorageKV) Get(ctx context.Context, key string) ([]byte, error) {
	v := k.storage.Call("getItem", key)
	if v.IsNull() || v.IsUndefined() {
		return nil, ErrNotFound
	}
	return []byte(v.String()), nil
}

func (k *LocalStorageKV) Put(ctx context.Context, key string, value []byte) error {
	k.storage.Call("setItem", key, string(value))
	return nil
}

func (k *LocalStorageKV) Delete(ctx context.Context, key string) error {
	k.storage.Call("removeItem", key)
	return nil
}
