//go:build cloudflare

package runtime

import (
	"context"
	"fmt"

	"github.com/syumai/workers/cloudflare/kv"
)

// CloudflareKV keeps bookmarks, notes, the current slide and deck status
// in a Workers KV namespace. Values are stored as strings; an empty value
// reads back as missing, which is how the namespace reports absent keys.
type CloudflareKV struct {
	binding   string
	namespace *kv.Namespace
}

func NewCloudflareKV(binding string) (*CloudflareKV, error) {
	ns, err := kv.NewNamespace(binding)
	if err != nil {
		return nil, fmt.Errorf("binding kv namespace %s: %w", binding, err)
	}
	return &CloudflareKV{binding: binding, namespace: ns}, nil
}

func (k *CloudflareKV) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := k.namespace.GetString(key, nil)
	if err != nil {
		return nil, fmt.Errorf("kv %s get %s: %w", k.binding, key, err)
	}
	if val == "" {
		return nil, ErrNotFound
	}
	return []byte(val), nil
}

func (k *CloudflareKV) Put(ctx context.Context, key string, value []byte) error {
	if err := k.namespace.PutString(key, string(value), nil); err != nil {
		return fmt.Errorf("kv %s put %s: %w", k.binding, key, err)
	}
	return nil
}

func (k *CloudflareKV) Delete(ctx context.Context, key string) error {
	if err := k.namespace.Delete(key); err != nil {
		return fmt.Errorf("kv %s delete %s: %w", k.binding, key, err)
	}
	return nil
}
