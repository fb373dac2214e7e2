package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joeblew999/deckshow/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a deckshow config with an interactive wizard",
	Long:  `Runs an interactive wizard to configure deckshow for the decks in the current directory and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s (deck %s, %d minute timer)\n", cfgFile, cfg.Deck, cfg.TimerMinutes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
