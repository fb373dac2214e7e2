package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joeblew999/deckshow/internal/slides"
	"github.com/joeblew999/deckshow/pkg/pipeline"
)

// renderOutput is the JSON written by render
type renderOutput struct {
	Success    bool     `json:"success"`
	Error      string   `json:"error,omitempty"`
	Title      string   `json:"title,omitempty"`
	SlideCount int      `json:"slideCount"`
	Titles     []string `json:"titles,omitempty"`
	Slides     []string `json:"slides,omitempty"`
}

var renderCmd = &cobra.Command{
	Use:   "render [deck.dsh]",
	Short: "Render a deck to SVG and print it as JSON",
	Long: `Renders a deck from the decks directory, or from stdin when no file is given,
and prints the title and every slide SVG as JSON. Imports resolve relative to the
file; stdin input cannot import.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		h, err := openHost(ctx, cfg, newLogger(cfg))
		if err != nil {
			return err
		}
		defer h.Close()

		var reg *slides.Registry
		if len(args) > 0 {
			reg, err = h.loadDeck(ctx, args[0])
		} else {
			reg, err = renderStdin(cmd, h)
		}
		enc := json.NewEncoder(os.Stdout)
		if err != nil {
			enc.Encode(renderOutput{Error: err.Error()})
			return err
		}

		out := renderOutput{Success: true, Title: reg.Title(), SlideCount: reg.Len(), Titles: reg.Titles()}
		for n := 1; n <= reg.Len(); n++ {
			svg, _ := reg.SVG(n)
			out.Slides = append(out.Slides, string(svg))
		}
		return enc.Encode(out)
	},
}

func renderStdin(cmd *cobra.Command, h *host) (*slides.Registry, error) {
	source, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	res, err := h.pipe.Process(cmd.Context(), source, pipeline.FormatSVG)
	if err != nil {
		return nil, err
	}
	return slides.New(res)
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
