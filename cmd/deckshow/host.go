package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joeblew999/deckshow/internal/config"
	"github.com/joeblew999/deckshow/internal/render"
	"github.com/joeblew999/deckshow/internal/session"
	"github.com/joeblew999/deckshow/internal/slides"
	"github.com/joeblew999/deckshow/pkg/pipeline"
	"github.com/joeblew999/deckshow/runtime"
)

// host holds the native dependencies shared by every command
type host struct {
	cfg     *config.Config
	log     *slog.Logger
	input   runtime.Storage
	kv      runtime.KVStore
	pipe    pipeline.Pipeline
	closers []func() error
}

// openHost builds storage, the KV store and the pipeline from cfg
func openHost(ctx context.Context, cfg *config.Config, log *slog.Logger) (*host, error) {
	h := &host{cfg: cfg, log: log}

	input, err := openInput(cfg)
	if err != nil {
		return nil, err
	}
	h.input = input

	if err := h.openKV(); err != nil {
		h.Close()
		return nil, err
	}
	if err := h.openPipeline(ctx); err != nil {
		h.Close()
		return nil, err
	}
	log.Debug("host ready", "pipeline", cfg.Pipeline, "store", cfg.Store.Backend, "decks", cfg.DecksDir)
	return h, nil
}

func openInput(cfg *config.Config) (runtime.Storage, error) {
	if cfg.RemoteURL != "" {
		return runtime.NewHTTPStorage(cfg.RemoteURL, nil), nil
	}
	s, err := runtime.NewLocalFileStorage(cfg.DecksDir)
	if err != nil {
		return nil, fmt.Errorf("opening decks dir %s: %w", cfg.DecksDir, err)
	}
	return s, nil
}

func (h *host) openKV() error {
	switch h.cfg.Store.Backend {
	case config.StoreMemory:
		h.kv = runtime.NewMemoryKV()
	case config.StoreFile:
		s, err := runtime.NewLocalFileStorage(h.cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("opening store dir %s: %w", h.cfg.Store.Path, err)
		}
		h.kv = runtime.NewStorageKV(s, "")
	default:
		if err := os.MkdirAll(filepath.Dir(h.cfg.Store.Path), 0o755); err != nil {
			return fmt.Errorf("creating store dir: %w", err)
		}
		kv, err := runtime.OpenSQLiteKV(h.cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("opening store %s: %w", h.cfg.Store.Path, err)
		}
		h.kv = kv
		h.closers = append(h.closers, kv.Close)
	}
	return nil
}

func (h *host) openPipeline(ctx context.Context) error {
	switch h.cfg.Pipeline {
	case config.PipelineNative:
		p, err := pipeline.NewNativePipeline(h.cfg.BinDir)
		if err != nil {
			return fmt.Errorf("initializing native pipeline: %w", err)
		}
		h.pipe = p
	case config.PipelineWazero:
		p, err := pipeline.NewWazeroPipeline(ctx, h.cfg.WasmPath, h.cfg.Width, h.cfg.Height)
		if err != nil {
			return fmt.Errorf("initializing wazero pipeline: %w", err)
		}
		h.pipe = p
		h.closers = append(h.closers, func() error { return p.Close(context.Background()) })
	default:
		opts := render.DefaultOptions()
		opts.Width, opts.Height = h.cfg.Width, h.cfg.Height
		h.pipe = pipeline.NewInProcessPipeline(opts)
	}
	return nil
}

// Close releases the store and the pipeline
func (h *host) Close() {
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil {
			h.log.Warn("closing host", "error", err)
		}
	}
	h.closers = nil
}

// deckKey is the deck named on the command line, or the configured one
func (h *host) deckKey(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return h.cfg.Deck
}

func (h *host) loadDeck(ctx context.Context, key string) (*slides.Registry, error) {
	reg, err := slides.Load(ctx, h.input, key, h.pipe)
	if err != nil {
		return nil, err
	}
	h.log.Info("deck loaded", "deck", key, "title", reg.Title(), "slides", reg.Len())
	return reg, nil
}

// sessionOptions fills the session settings from the config
func (h *host) sessionOptions() session.Options {
	return session.Options{
		KV:           h.kv,
		Prefix:       h.cfg.Store.Prefix,
		Pipeline:     h.pipe,
		TimerMinutes: h.cfg.TimerMinutes,
		IdleHide:     h.cfg.IdleHideDuration(),
		Sections:     h.cfg.Sections,
		Theme:        h.cfg.Theme,
		Log:          h.log,
	}
}

// setup loads the config, opens the host and loads the deck
func setup(ctx context.Context, args []string) (*host, *slides.Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	h, err := openHost(ctx, cfg, newLogger(cfg))
	if err != nil {
		return nil, nil, err
	}
	deck, err := h.loadDeck(ctx, h.deckKey(args))
	if err != nil {
		h.Close()
		return nil, nil, err
	}
	return h, deck, nil
}
