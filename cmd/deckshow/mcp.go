package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/joeblew999/deckshow/internal/mcp"
	"github.com/joeblew999/deckshow/internal/session"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [deck.dsh]",
	Short: "Serve presenter tools to AI agents over MCP stdio",
	Long:  `Starts a Model Context Protocol server on stdio that exposes navigation, timer, theme, bookmark, note and statistics tools for the deck.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		h, deck, err := setup(ctx, args)
		if err != nil {
			return err
		}
		defer h.Close()

		sess := session.New(ctx, deck, h.sessionOptions())
		sess.Start("")
		defer sess.Close()

		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "deckshow MCP server started on stdio (deck=%q, slides=%d)\n", deck.Title(), deck.Len())
		return mcpserver.NewServer(sess).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
