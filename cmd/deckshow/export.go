package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joeblew999/deckshow/internal/export"
	"github.com/joeblew999/deckshow/runtime"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export [deck.dsh]",
	Short: "Export a deck as SVG files, a printable document or PNG images",
	Long: `Writes the deck to the output directory:
  svg    one slide-NNN.svg per slide
  print  a PDF when the pipeline can render one, otherwise a printable HTML page
  png    one slide-N.png per slide (native pipeline only)`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		h, deck, err := setup(ctx, args)
		if err != nil {
			return err
		}
		defer h.Close()

		out, err := runtime.NewLocalFileStorage(exportOut)
		if err != nil {
			return fmt.Errorf("opening output dir %s: %w", exportOut, err)
		}
		ex := export.New(deck, h.pipe, h.log)

		switch exportFormat {
		case "svg":
			keys, err := ex.ExportSVG(ctx, out, "", os.Stderr)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %d slides to %s\n", len(keys), exportOut)
		case "print":
			doc, err := ex.Print(ctx)
			if err != nil {
				return err
			}
			if err := out.Put(ctx, doc.Name, doc.Data, doc.ContentType); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", filepath.Join(exportOut, doc.Name))
		case "png":
			for n := 1; n <= deck.Len(); n++ {
				doc, err := ex.SlideImage(ctx, n)
				if err != nil {
					return err
				}
				if err := out.Put(ctx, doc.Name, doc.Data, doc.ContentType); err != nil {
					return err
				}
			}
			fmt.Printf("Wrote %d images to %s\n", deck.Len(), exportOut)
		default:
			return fmt.Errorf("unknown format %q: must be svg, print or png", exportFormat)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "svg", "svg, print or png")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "export", "output directory")
	rootCmd.AddCommand(exportCmd)
}
