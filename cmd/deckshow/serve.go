package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joeblew999/deckshow/handler"
	"github.com/joeblew999/deckshow/internal/effects"
	mcpserver "github.com/joeblew999/deckshow/internal/mcp"
	"github.com/joeblew999/deckshow/internal/server"
	"github.com/joeblew999/deckshow/internal/session"
	"github.com/joeblew999/deckshow/runtime"
)

var (
	serveAddr    string
	serveDevMode bool
	libraryOut   string
)

var serveCmd = &cobra.Command{
	Use:   "serve [deck.dsh]",
	Short: "Present a deck in the browser",
	Long: `Starts the presentation server: the browser view on /, the REST API on /api,
the live websocket on /ws, MCP tools on /mcp and the deck library on /library.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		h, deck, err := setup(ctx, args)
		if err != nil {
			return err
		}
		defer h.Close()

		hub := server.NewHub(effects.DefaultTable().Selectors(), h.log.With("component", "hub"))
		opts := h.sessionOptions()
		opts.View, opts.Animator, opts.Mounts = hub, hub, hub
		sess := session.New(ctx, deck, opts)
		hub.Attach(sess.Presenter, h.cfg.SwipeThreshold, func() any { return sess.Overview() })
		sess.Start("")
		defer sess.Close()

		out, err := runtime.NewLocalFileStorage(libraryOut)
		if err != nil {
			return fmt.Errorf("opening library output %s: %w", libraryOut, err)
		}
		lib := handler.New(&runtime.Runtime{
			InputStorage:  h.input,
			OutputStorage: out,
			KV:            h.kv,
			Publisher:     hub,
			Pipeline:      h.pipe,
		}, handler.Options{Host: "native", Base: "/library", Log: h.log.With("component", "library")})

		mcpserver.Version = Version
		handler.Version = Version

		addr := h.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := server.New(server.Config{Addr: addr, AllowAll: h.cfg.Server.AllowAllOrigins || serveDevMode}, sess, hub, h.log,
			server.WithHandler("/mcp", mcpserver.NewServer(sess).Handler()),
			server.WithHandler("/library", lib),
		)

		go func() {
			<-ctx.Done()
			h.log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "deckshow %s presenting %q (%d slides) on http://%s\n", Version, deck.Title(), deck.Len(), addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveDevMode, "dev", false, "accept any CORS and websocket origin")
	serveCmd.Flags().StringVar(&libraryOut, "library-out", ".deckshow/library", "directory for slides rendered by the deck library")
	rootCmd.AddCommand(serveCmd)
}
