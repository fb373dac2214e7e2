package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joeblew999/deckshow/runtime"
)

var decksCmd = &cobra.Command{
	Use:   "decks",
	Short: "List the decks in the decks directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		input, err := openInput(cfg)
		if err != nil {
			return err
		}

		var keys []string
		if local, ok := input.(*runtime.LocalFileStorage); ok {
			keys, err = local.Glob(cmd.Context(), "**/*.dsh")
		} else {
			var list *runtime.ListResult
			list, err = input.List(cmd.Context(), "", "")
			if list != nil {
				for _, k := range list.Keys {
					if strings.HasSuffix(k, ".dsh") {
						keys = append(keys, k)
					}
				}
			}
		}
		if err != nil {
			return fmt.Errorf("listing decks: %w", err)
		}

		if len(keys) == 0 {
			fmt.Println("No decks found.")
			return nil
		}
		for _, k := range keys {
			marker := " "
			if k == cfg.Deck {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, k)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decksCmd)
}
