//go:build !js && !wasip1 && !cloudflare

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joeblew999/deckshow/internal/render"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// WazeroPipeline runs the WASI build of deckshow (cmd/wasi) inside a wazero
// sandbox. Untrusted decks get the same output as the in-process pipeline
// without sharing memory with the host.
type WazeroPipeline struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	width    int
	height   int
}

// wasiOutput is the JSON document cmd/wasi writes to stdout
type wasiOutput struct {
	Success    bool     `json:"success"`
	Error      string   `json:"error,omitempty"`
	Title      string   `json:"title"`
	SlideCount int      `json:"slideCount"`
	Slides     []string `json:"slides"`
	XML        string   `json:"xml"`
}

// NewWazeroPipeline compiles the WASI module at wasmPath once; each Process
// call instantiates a fresh module from it.
func NewWazeroPipeline(ctx context.Context, wasmPath string, width, height int) (*WazeroPipeline, error) {
	wasm, err := os.ReadFile(wasmPath)
	if err != nil {
		return nil, fmt.Errorf("reading wasm module: %w", err)
	}

	r := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("compiling wasm module: %w", err)
	}

	return &WazeroPipeline{runtime: r, compiled: compiled, width: width, height: height}, nil
}

// Process implements Pipeline.Process
func (p *WazeroPipeline) Process(ctx context.Context, source []byte, format OutputFormat) (*Result, error) {
	if format != FormatSVG {
		return nil, fmt.Errorf("%w %s: wazero pipeline only renders svg", ErrUnsupportedFormat, format)
	}

	var stdout, stderr bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithArgs("deckshow", "process").
		WithStdin(bytes.NewReader(source)).
		WithStdout(&stdout).
		WithStderr(&stderr)
	if p.width > 0 {
		cfg = cfg.WithEnv("DECKSHOW_WIDTH", strconv.Itoa(p.width))
	}
	if p.height > 0 {
		cfg = cfg.WithEnv("DECKSHOW_HEIGHT", strconv.Itoa(p.height))
	}

	mod, err := p.runtime.InstantiateModule(ctx, p.compiled, cfg)
	if mod != nil {
		defer mod.Close(ctx)
	}
	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 0 {
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("running wasm module: %w (stderr: %s)", err, stderr.String())
	}

	var out wasiOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("decoding wasm output: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("wasm module: %s", out.Error)
	}

	d, err := render.New(render.Options{Width: p.width, Height: p.height}).Parse([]byte(out.XML))
	if err != nil {
		return nil, err
	}

	slides := make([][]byte, len(out.Slides))
	for i, s := range out.Slides {
		slides[i] = []byte(s)
	}
	return &Result{
		Slides:     slides,
		Format:     FormatSVG,
		Title:      out.Title,
		SlideCount: out.SlideCount,
		XML:        []byte(out.XML),
		Deck:       d,
	}, nil
}

// SupportedFormats implements Pipeline.SupportedFormats
func (p *WazeroPipeline) SupportedFormats() []OutputFormat {
	return []OutputFormat{FormatSVG}
}

// Close releases the wazero runtime
func (p *WazeroPipeline) Close(ctx context.Context) error {
	return p.runtime.Close(ctx)
}
