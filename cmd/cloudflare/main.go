//go:build cloudflare

// Cloudflare Workers entry point using syumai/workers. Serves the deck
// library over R2 and Workers KV, and renders decks dropped into the input
// bucket through R2 event notifications.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/syumai/workers"
	"github.com/syumai/workers/cloudflare/queues"

	"github.com/joeblew999/deckshow/handler"
	"github.com/joeblew999/deckshow/internal/render"
	"github.com/joeblew999/deckshow/pkg/pipeline"
	"github.com/joeblew999/deckshow/runtime"
)

var log = slog.New(slog.NewJSONHandler(os.Stdout, nil))

func main() {
	lib := handler.New(initRuntime(), handler.Options{Host: "cloudflare", Log: log})

	queues.ConsumeNonBlock(func(batch *queues.MessageBatch) error {
		return consumeQueue(lib, batch)
	})

	workers.Serve(lib)
}

func initRuntime() *runtime.Runtime {
	rt := &runtime.Runtime{
		Pipeline: pipeline.NewInProcessPipeline(render.DefaultOptions()),
	}
	if s, err := runtime.NewR2Storage("DECKSHOW_INPUT"); err == nil {
		rt.InputStorage = s
	} else {
		log.Error("binding input bucket", "error", err)
	}
	if s, err := runtime.NewR2Storage("DECKSHOW_OUTPUT"); err == nil {
		rt.OutputStorage = s
	} else {
		log.Error("binding output bucket", "error", err)
	}
	if kv, err := runtime.NewCloudflareKV("DECKSHOW_KV"); err == nil {
		rt.KV = kv
	} else {
		log.Warn("no KV namespace, deck status is not recorded", "error", err)
	}
	runtime.SetRuntime(rt)
	return rt
}

// r2Event is the body of an R2 event notification
type r2Event struct {
	Action string `json:"action"`
	Object struct {
		Key string `json:"key"`
	} `json:"object"`
}

func consumeQueue(lib *handler.Library, batch *queues.MessageBatch) error {
	ctx := context.Background()
	for _, msg := range batch.Messages {
		body, err := msg.BytesBody()
		if err != nil {
			msg.Retry()
			continue
		}

		var event r2Event
		if err := json.Unmarshal(body, &event); err != nil {
			log.Warn("dropping malformed event", "error", err)
			msg.Ack()
			continue
		}
		if !strings.HasSuffix(event.Object.Key, ".dsh") {
			msg.Ack()
			continue
		}

		// acked even on failure; a retry would render the same source
		if _, err := lib.ProcessKey(ctx, event.Object.Key); err != nil && !errors.Is(err, runtime.ErrNotFound) {
			log.Warn("deck processing failed", "key", event.Object.Key, "error", err)
		}
		msg.Ack()
	}
	return nil
}
