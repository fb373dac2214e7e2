//go:build cloudflare

package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/syumai/workers/cloudflare/r2"
)

// R2Storage keeps deck sources or rendered slides in an R2 bucket bound
// to the worker. The binding lists the whole bucket, so prefix and
// delimiter folding happen here, the same way MemoryStorage does it.
type R2Storage struct {
	binding string
	bucket  *r2.Bucket
}

func NewR2Storage(binding string) (*R2Storage, error) {
	bucket, err := r2.NewBucket(binding)
	if err != nil {
		return nil, fmt.Errorf("binding r2 bucket %s: %w", binding, err)
	}
	return &R2Storage{binding: binding, bucket: bucket}, nil
}

func (s *R2Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.bucket.Get(key)
	switch {
	case err != nil:
		return nil, fmt.Errorf("r2 %s get %s: %w", s.binding, key, err)
	case obj == nil:
		return nil, ErrNotFound
	}
	return io.NopCloser(obj.Body), nil
}

func (s *R2Storage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	var opts r2.PutOptions
	if contentType != "" {
		opts.HTTPMetadata = r2.HTTPMetadata{ContentType: contentType}
	}
	if _, err := s.bucket.Put(key, io.NopCloser(bytes.NewReader(data)), &opts); err != nil {
		return fmt.Errorf("r2 %s put %s: %w", s.binding, key, err)
	}
	return nil
}

func (s *R2Storage) List(ctx context.Context, prefix string, delimiter string) (*ListResult, error) {
	listing, err := s.bucket.List()
	if err != nil {
		return nil, fmt.Errorf("r2 %s list: %w", s.binding, err)
	}
	keys := make([]string, 0, len(listing.Objects))
	for _, obj := range listing.Objects {
		keys = append(keys, obj.Key)
	}
	return foldKeys(keys, prefix, delimiter), nil
}

func (s *R2Storage) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Delete(key); err != nil {
		return fmt.Errorf("r2 %s delete %s: %w", s.binding, key, err)
	}
	return nil
}
