// Package store keeps the presenter's per-user data in a runtime.KVStore:
// the current slide, bookmarks and speaker notes. Every value is a JSON blob;
// a missing or malformed blob reads as empty.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/yuin/goldmark"

	"github.com/joeblew999/deckshow/runtime"
)

// DefaultPrefix namespaces the keys of one presentation
const DefaultPrefix = "steam-presentation-"

const (
	keyCurrent   = "current-slide"
	keyBookmarks = "bookmarks"
	keyNotes     = "presenter-notes"
)

// opTimeout bounds the KV calls made on behalf of the presenter, which has no
// context of its own
const opTimeout = 5 * time.Second

// Store is the persisted presenter data of one presentation
type Store struct {
	kv     runtime.KVStore
	prefix string
	log    *slog.Logger
	md     goldmark.Markdown

	mu    sync.Mutex
	notes map[int]string
}

// New creates a store and loads the notes once
func New(ctx context.Context, kv runtime.KVStore, prefix string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{kv: kv, prefix: prefix, log: log, md: goldmark.New()}
	var notes map[int]string
	if !s.load(ctx, keyNotes, &notes) || notes == nil {
		notes = make(map[int]string)
	}
	s.notes = notes
	return s
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// load decodes the blob under name into v and reports whether it was present
// and well formed
func (s *Store) load(ctx context.Context, name string, v any) bool {
	data, err := s.kv.Get(ctx, s.key(name))
	if err != nil {
		if !errors.Is(err, runtime.ErrNotFound) {
			s.log.Warn("kv read failed", "key", s.key(name), "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn("ignoring malformed kv value", "key", s.key(name), "error", err)
		return false
	}
	return true
}

func (s *Store) save(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.kv.Put(ctx, s.key(name), data); err != nil {
		return fmt.Errorf("write %s: %w", s.key(name), err)
	}
	return nil
}

// SaveCurrent records the visible slide number. Failures are logged.
func (s *Store) SaveCurrent(n int) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.save(ctx, keyCurrent, n); err != nil {
		s.log.Warn("saving current slide", "slide", n, "error", err)
	}
}

// LoadCurrent returns the saved slide number
func (s *Store) LoadCurrent() (int, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	var n int
	if !s.load(ctx, keyCurrent, &n) {
		return 0, false
	}
	return n, true
}

// Bookmarks returns every bookmark, slide number to label
func (s *Store) Bookmarks(ctx context.Context) map[int]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookmarks(ctx)
}

func (s *Store) bookmarks(ctx context.Context) map[int]string {
	m := make(map[int]string)
	if !s.load(ctx, keyBookmarks, &m) || m == nil {
		return make(map[int]string)
	}
	return m
}

// AddBookmark labels slide n, replacing an earlier label
func (s *Store) AddBookmark(ctx context.Context, n int, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.bookmarks(ctx)
	m[n] = label
	return s.save(ctx, keyBookmarks, m)
}

// RemoveBookmark deletes the bookmark of slide n
func (s *Store) RemoveBookmark(ctx context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.bookmarks(ctx)
	if _, ok := m[n]; !ok {
		return nil
	}
	delete(m, n)
	return s.save(ctx, keyBookmarks, m)
}

// AddNote sets the speaker note of slide n
func (s *Store) AddNote(ctx context.Context, n int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[n] = text
	return s.save(ctx, keyNotes, s.notes)
}

// Note returns the note of slide n, "" when there is none
func (s *Store) Note(n int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes[n]
}

// NoteSlides lists the slides that have notes
func (s *Store) NoteSlides() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.notes))
	for n := range s.notes {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// NoteHTML renders the note of slide n from Markdown
func (s *Store) NoteHTML(n int) (string, error) {
	text := s.Note(n)
	if text == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render note %d: %w", n, err)
	}
	return buf.String(), nil
}
