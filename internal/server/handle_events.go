package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/artsfest/festboard/internal/festival"
)

// handleEvents streams the program collection over SSE. The first event is
// the current snapshot; every subsequent event is the full collection as of
// that change, so clients replace rather than merge.
func handleEvents(store Gateway, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		// Subscribe before the snapshot so no change falls in between.
		ch := broker.Subscribe()
		defer broker.Unsubscribe(ch)

		if programs, err := store.ListPrograms(r.Context()); err == nil {
			if programs == nil {
				programs = []festival.Program{}
			}
			data, _ := json.Marshal(programs)
			fmt.Fprintf(w, "event: programs\ndata: %s\n\n", data)
			flusher.Flush()
		}

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: programs\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
