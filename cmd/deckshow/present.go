package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/joeblew999/deckshow/internal/session"
	"github.com/joeblew999/deckshow/internal/tui"
)

var presentCmd = &cobra.Command{
	Use:   "present [deck.dsh]",
	Short: "Present a deck in the terminal",
	Long: `Shows slide titles and speaker notes full screen in the terminal with the
same keys as the browser: arrows, space, Home/End, digits, f, p, t, r and ?.
Press q or Escape to quit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		h, deck, err := setup(ctx, args)
		if err != nil {
			return err
		}
		defer h.Close()

		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("opening terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("initializing terminal: %w", err)
		}
		screen.EnableMouse()
		defer screen.Fini()

		var sess *session.Session
		notes := func(n int) string {
			if sess == nil {
				return ""
			}
			return sess.Store.Note(n)
		}
		view := tui.NewView(screen, deck, notes)

		opts := h.sessionOptions()
		opts.View = view
		sess = session.New(ctx, deck, opts)
		sess.Start("")
		defer sess.Close()

		err = tui.Loop(ctx, screen, view, sess.Presenter)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(presentCmd)
}
