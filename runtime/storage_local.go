//go:build !cloudflare

package runtime

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// LocalFileStorage implements Storage on a directory of the local file system.
// It holds deck sources and receives exported slides.
type LocalFileStorage struct {
	baseDir string
}

// NewLocalFileStorage creates the base directory if needed
func NewLocalFileStorage(baseDir string) (*LocalFileStorage, error) {
	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{baseDir: absPath}, nil
}

// BaseDir returns the absolute root of the storage
func (s *LocalFileStorage) BaseDir() string {
	return s.baseDir
}

// fullPath maps a key to a path, rejecting anything outside baseDir
func (s *LocalFileStorage) fullPath(key string) (string, error) {
	cleanKey := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(cleanKey, "..") {
		return "", fs.ErrInvalid
	}

	absPath, err := filepath.Abs(filepath.Join(s.baseDir, cleanKey))
	if err != nil {
		return "", err
	}

	if absPath != s.baseDir && !strings.HasPrefix(absPath, s.baseDir+string(filepath.Separator)) {
		return "", fs.ErrInvalid
	}

	return absPath, nil
}

// FullPath returns the file system path for a storage key
func (s *LocalFileStorage) FullPath(key string) (string, error) {
	return s.fullPath(key)
}

func (s *LocalFileStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.fullPath(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return file, nil
}

func (s *LocalFileStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	path, err := s.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	// write then rename so readers never see a torn blob
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// List returns keys under prefix. With a delimiter only immediate children
// are listed and subdirectories come back as DelimitedPrefixes.
func (s *LocalFileStorage) List(ctx context.Context, prefix string, delimiter string) (*ListResult, error) {
	result := &ListResult{
		Keys:              make([]string, 0),
		DelimitedPrefixes: make([]string, 0),
	}

	searchDir := s.baseDir
	if prefix != "" {
		prefixPath, err := s.fullPath(prefix)
		if err != nil {
			return result, nil
		}
		if info, err := os.Stat(prefixPath); err == nil && info.IsDir() {
			searchDir = prefixPath
		} else {
			searchDir = filepath.Dir(prefixPath)
		}
	}

	if delimiter != "" {
		entries, err := os.ReadDir(searchDir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return result, nil
			}
			return nil, err
		}

		for _, entry := range entries {
			relPath, err := filepath.Rel(s.baseDir, filepath.Join(searchDir, entry.Name()))
			if err != nil {
				continue
			}
			relPath = filepath.ToSlash(relPath)
			if prefix != "" && !strings.HasPrefix(relPath, prefix) {
				continue
			}
			if entry.IsDir() {
				result.DelimitedPrefixes = append(result.DelimitedPrefixes, relPath+"/")
			} else {
				result.Keys = append(result.Keys, relPath)
			}
		}
		return result, nil
	}

	err := filepath.WalkDir(searchDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)
		if prefix != "" && !strings.HasPrefix(relPath, prefix) {
			return nil
		}
		result.Keys = append(result.Keys, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Glob returns the keys matching a doublestar pattern such as "**/*.dsh".
func (s *LocalFileStorage) Glob(ctx context.Context, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}
	matches, err := doublestar.Glob(os.DirFS(s.baseDir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func (s *LocalFileStorage) Delete(ctx context.Context, key string) error {
	path, err := s.fullPath(key)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
