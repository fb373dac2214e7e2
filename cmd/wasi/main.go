//go:build wasip1

// WASI entry point, run by the wazero pipeline or any other WASI runtime.
// Reads decksh from stdin and writes the rendered deck as JSON to stdout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joeblew999/deckshow/internal/render"
	"github.com/joeblew999/deckshow/pkg/pipeline"
)

// output mirrors the document the wazero pipeline decodes
type output struct {
	Success    bool     `json:"success"`
	Error      string   `json:"error,omitempty"`
	Title      string   `json:"title,omitempty"`
	SlideCount int      `json:"slideCount"`
	Slides     []string `json:"slides,omitempty"`
	XML        string   `json:"xml,omitempty"`
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		doProcess()
	case "version":
		fmt.Println("deckshow-wasi v0.2.0")
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: deckshow <command>")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  process  Read decksh from stdin, write JSON result to stdout")
	fmt.Fprintln(os.Stderr, "  version  Print version")
	fmt.Fprintln(os.Stderr, "  help     Print this help")
}

func envInt(name string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(name)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func doProcess() {
	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		write(output{Error: fmt.Sprintf("failed to read stdin: %v", err)})
		return
	}

	opts := render.DefaultOptions()
	opts.Width = envInt("DECKSHOW_WIDTH", opts.Width)
	opts.Height = envInt("DECKSHOW_HEIGHT", opts.Height)

	result, err := pipeline.NewInProcessPipeline(opts).Process(context.Background(), source, pipeline.FormatSVG)
	if err != nil {
		write(output{Error: err.Error()})
		return
	}

	slides := make([]string, len(result.Slides))
	for i, s := range result.Slides {
		slides[i] = string(s)
	}
	write(output{
		Success:    true,
		Title:      result.Title,
		SlideCount: result.SlideCount,
		Slides:     slides,
		XML:        string(result.XML),
	})
}

func write(out output) {
	json.NewEncoder(os.Stdout).Encode(out)
}
