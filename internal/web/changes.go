package web

import (
	"fmt"
	"net/http"

	"github.com/aretw0/loamcal/pkg/adapters/lifecycle"
)

// handleChanges streams store changes as server-sent events so the widget
// can refetch its events. The pattern query parameter filters titles and
// system records such as the create-event draft are never sent.
func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "**"
	}

	ctx := r.Context()
	events, err := s.store.Watch(ctx, pattern)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	src := lifecycle.NewSource(events, lifecycle.WithFilter(lifecycle.SkipSystemRecords))
	if err := src.Start(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for e := range src.Events() {
		if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", e.String()); err != nil {
			return
		}
		flusher.Flush()
	}
}
