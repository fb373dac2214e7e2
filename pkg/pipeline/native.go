//go:build !js && !wasip1 && !cloudflare

package pipeline

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ajstarks/deck"
)

// NativePipeline implements Pipeline by piping to ajstarks' binaries
// (decksh, svgdeck, pngdeck, pdfdeck). It is the only pipeline that can
// produce PNG and PDF, so export depends on it.
type NativePipeline struct {
	binDir  string
	fontDir string
	bins    map[OutputFormat]string
}

// NewNativePipeline creates a new native pipeline.
// If binDir is empty, it looks for binaries in .bin/deck/ relative to the working directory.
func NewNativePipeline(binDir string) (*NativePipeline, error) {
	if binDir == "" {
		binDir = ".bin/deck"
	}
	absBinDir, err := filepath.Abs(binDir)
	if err != nil {
		return nil, fmt.Errorf("resolving bin dir: %w", err)
	}

	// DECKFONTS is the variable pngdeck and pdfdeck themselves honour
	fontDir := os.Getenv("DECKFONTS")
	if fontDir == "" {
		fontDir = ".src/deckfonts"
	}
	absFontDir, err := filepath.Abs(fontDir)
	if err != nil {
		return nil, fmt.Errorf("resolving font dir: %w", err)
	}

	p := &NativePipeline{
		binDir:  absBinDir,
		fontDir: absFontDir,
		bins: map[OutputFormat]string{
			FormatSVG: filepath.Join(absBinDir, "svgdeck"),
			FormatPNG: filepath.Join(absBinDir, "pngdeck"),
			FormatPDF: filepath.Join(absBinDir, "pdfdeck"),
		},
	}

	// decksh is required for all formats
	if _, err := os.Stat(p.decksh()); err != nil {
		return nil, fmt.Errorf("decksh binary not found at %s: %w", p.decksh(), err)
	}
	return p, nil
}

func (p *NativePipeline) decksh() string {
	return filepath.Join(p.binDir, "decksh")
}

// Process implements Pipeline.Process.
// For sources with imports, use ProcessFile or ProcessWithWorkDir instead.
func (p *NativePipeline) Process(ctx context.Context, source []byte, format OutputFormat) (*Result, error) {
	return p.ProcessWithWorkDir(ctx, source, format, "")
}

// ProcessWithWorkDir processes decksh source with a working directory for
// resolving imports and image assets. An empty workDir pipes through stdin.
func (p *NativePipeline) ProcessWithWorkDir(ctx context.Context, source []byte, format OutputFormat, workDir string) (*Result, error) {
	if workDir != "" {
		abs, err := filepath.Abs(workDir)
		if err != nil {
			return nil, fmt.Errorf("resolving work dir: %w", err)
		}
		workDir = abs
	}

	xmlData, err := p.runDecksh(ctx, source, workDir)
	if err != nil {
		return nil, err
	}

	var d deck.Deck
	if err := xml.Unmarshal(xmlData, &d); err != nil {
		return nil, fmt.Errorf("failed to parse deck XML: %w", err)
	}

	slides, err := p.render(ctx, xmlData, format, 1, len(d.Slide), workDir)
	if err != nil {
		return nil, err
	}

	return &Result{
		Slides:     slides,
		Format:     format,
		Title:      d.Title,
		SlideCount: len(d.Slide),
		XML:        xmlData,
		Deck:       &d,
	}, nil
}

// ProcessFile processes a decksh file by path (supports imports)
func (p *NativePipeline) ProcessFile(ctx context.Context, filePath string, format OutputFormat) (*Result, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.ProcessWithWorkDir(ctx, source, format, filepath.Dir(filePath))
}

// RenderPages implements PageRenderer
func (p *NativePipeline) RenderPages(ctx context.Context, xmlData []byte, format OutputFormat, first, last int) ([][]byte, error) {
	if first < 1 || last < first {
		return nil, fmt.Errorf("invalid page range %d-%d", first, last)
	}
	return p.render(ctx, xmlData, format, first, last, "")
}

// SupportedFormats implements Pipeline.SupportedFormats
func (p *NativePipeline) SupportedFormats() []OutputFormat {
	var formats []OutputFormat
	for _, f := range []OutputFormat{FormatSVG, FormatPNG, FormatPDF} {
		if _, err := os.Stat(p.bins[f]); err == nil {
			formats = append(formats, f)
		}
	}
	return formats
}

// runDecksh converts source to deck XML. With a workDir the source is
// written next to its imports so decksh can resolve them.
func (p *NativePipeline) runDecksh(ctx context.Context, source []byte, workDir string) ([]byte, error) {
	var cmd *exec.Cmd
	if workDir == "" {
		cmd = exec.CommandContext(ctx, p.decksh())
		cmd.Stdin = bytes.NewReader(source)
	} else {
		tmp, err := os.CreateTemp(workDir, ".deckshow-*.dsh")
		if err != nil {
			return nil, fmt.Errorf("failed to write source file: %w", err)
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(source); err != nil {
			tmp.Close()
			return nil, fmt.Errorf("failed to write source file: %w", err)
		}
		tmp.Close()
		cmd = exec.CommandContext(ctx, p.decksh(), tmp.Name())
		cmd.Dir = workDir
	}

	// dchart and friends live next to decksh
	cmd.Env = append(os.Environ(), "PATH="+p.binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	out, err := p.run(cmd)
	if err != nil {
		return nil, fmt.Errorf("decksh failed: %w", err)
	}
	return out, nil
}

// render runs the format's renderer over pages first..last
func (p *NativePipeline) render(ctx context.Context, xmlData []byte, format OutputFormat, first, last int, assetDir string) ([][]byte, error) {
	bin, ok := p.bins[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if _, err := os.Stat(bin); err != nil {
		return nil, fmt.Errorf("%s renderer not found at %s: %w", format, bin, err)
	}
	if last < first {
		return [][]byte{}, nil
	}

	tmpDir, err := os.MkdirTemp("", "deckshow-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	xmlFile := filepath.Join(tmpDir, "deck.xml")
	if err := os.WriteFile(xmlFile, xmlData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write XML file: %w", err)
	}

	args := func(from, to int) []string {
		a := []string{"-pages", fmt.Sprintf("%d-%d", from, to), "-outdir", tmpDir}
		if format != FormatSVG {
			a = append(a, "-fontdir", p.fontDir)
		}
		return append(a, xmlFile)
	}
	command := func(from, to int) *exec.Cmd {
		cmd := exec.CommandContext(ctx, bin, args(from, to)...)
		if assetDir != "" {
			cmd.Dir = assetDir
		}
		return cmd
	}

	// pdfdeck writes every page into one document
	if format == FormatPDF {
		if _, err := p.run(command(first, last)); err != nil {
			return nil, fmt.Errorf("pdf failed: %w", err)
		}
		pdf, err := os.ReadFile(filepath.Join(tmpDir, "deck.pdf"))
		if err != nil {
			return nil, fmt.Errorf("failed to read generated pdf: %w", err)
		}
		return [][]byte{pdf}, nil
	}

	pages := make([][]byte, 0, last-first+1)
	for page := first; page <= last; page++ {
		if _, err := p.run(command(page, page)); err != nil {
			return nil, fmt.Errorf("%s failed on slide %d: %w", format, page, err)
		}
		// output files are named deck-00001.svg, deck-00001.png, ...
		data, err := os.ReadFile(filepath.Join(tmpDir, fmt.Sprintf("deck-%05d.%s", page, format)))
		if err != nil {
			return nil, fmt.Errorf("failed to read generated %s for slide %d: %w", format, page, err)
		}
		pages = append(pages, data)
	}
	return pages, nil
}

// run executes cmd and returns stdout, folding stderr into the error
func (p *NativePipeline) run(cmd *exec.Cmd) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w\nstderr: %s", err, stderr.String())
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
