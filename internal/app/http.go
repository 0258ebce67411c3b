package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ykvlv/ice-bot/internal/ice"
	"github.com/ykvlv/ice-bot/internal/metrics"
	"github.com/ykvlv/ice-bot/internal/relay"
)

// CommandHandler executes ICE commands (ice.Registry).
type CommandHandler interface {
	Handle(ctx context.Context, cmd ice.Command) (*relay.Payload, error)
}

// newMux builds the HTTP API: health, metrics and the command endpoint.
func newMux(h CommandHandler, sink relay.Sink, log *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/v1/commands", commandsHandler(h, sink, log))
	return mux
}

// commandsHandler accepts a JSON ice.Command, runs it and relays the feedback.
// The feedback payload is echoed in the response.
func commandsHandler(h CommandHandler, sink relay.Sink, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var cmd ice.Command
		dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, 1<<20))
		if err := dec.Decode(&cmd); err != nil {
			http.Error(w, "invalid command: "+err.Error(), http.StatusBadRequest)
			return
		}

		p, err := h.Handle(req.Context(), cmd)
		switch {
		case errors.Is(err, ice.ErrUnknownCommand):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "command failed", http.StatusInternalServerError)
			return
		}

		if p == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := sink.Send(req.Context(), *p); err != nil {
			log.Warn("feedback send failed", zap.String("tag", cmd.Tag), zap.Error(err))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p)
	}
}
