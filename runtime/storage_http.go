//go:build !cloudflare

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// errReadOnly is returned by write operations on HTTPStorage
var errReadOnly = errors.New("http storage is read-only")

// HTTPStorage reads deck sources from a public bucket or static file host
// (for example a public R2 bucket at https://pub-xxx.r2.dev).
type HTTPStorage struct {
	baseURL string
	client  *http.Client
}

// NewHTTPStorage creates a read-only storage rooted at baseURL
func NewHTTPStorage(baseURL string, client *http.Client) *HTTPStorage {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStorage{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func (s *HTTPStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	url := fmt.Sprintf("%s/%s", s.baseURL, strings.TrimPrefix(key, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrNotFound
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s failed: %s", key, resp.Status)
	}

	return resp.Body, nil
}

func (s *HTTPStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return errReadOnly
}

func (s *HTTPStorage) List(ctx context.Context, prefix string, delimiter string) (*ListResult, error) {
	return nil, fmt.Errorf("http storage does not support listing")
}

func (s *HTTPStorage) Delete(ctx context.Context, key string) error {
	return errReadOnly
}
