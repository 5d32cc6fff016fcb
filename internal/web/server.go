// Package web exposes the calendar handlers as an HTTP JSON API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/introspection"
	"github.com/ncruces/go-strftime"

	"github.com/aretw0/loamcal/internal/config"
	"github.com/aretw0/loamcal/pkg/calendar"
	"github.com/aretw0/loamcal/pkg/core"
	"github.com/aretw0/loamcal/pkg/dates"
	"github.com/aretw0/loamcal/pkg/ics"
	"github.com/aretw0/loamcal/pkg/tasks"
)

const maxBodyBytes = 1 << 20

// toucher is implemented by schedulers that track activity (tasks.Runner).
type toucher interface {
	Touch()
}

// Server serves the calendar widget API.
type Server struct {
	cfg    *config.Config
	store  *core.Service
	sched  tasks.Scheduler
	logger *slog.Logger
	mux    *http.ServeMux

	host      *calendar.HeadlessHost
	modal     *calendar.HeadlessModal
	handlers  *calendar.Handlers
	formatter *calendar.Formatter
	source    *calendar.Source
	now       func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock used for default event windows.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer wires the calendar components over store. Deferred work is
// scheduled on sched; a tasks.Runner is touched on every request.
func NewServer(cfg *config.Config, store *core.Service, sched tasks.Scheduler, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		sched:  sched,
		logger: slog.Default(),
		mux:    http.NewServeMux(),
		modal:  &calendar.HeadlessModal{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	cal := cfg.Calendar.Normalized()
	s.host = calendar.NewHeadlessHost(store, cal, calendar.WithHostLogger(s.logger))
	s.handlers = calendar.NewHandlers(cal, store, s.host, sched,
		calendar.WithModal(s.modal),
		calendar.WithLogger(s.logger),
	)
	s.formatter = calendar.NewFormatter(cal, store)
	s.source = calendar.NewSource(cal, store, s.logger)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler of the API.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t, ok := s.sched.(toucher); ok {
			t.Touch()
		}
		s.mux.ServeHTTP(w, r)
	})
}

// Handlers returns the interaction handlers behind the API.
func (s *Server) Handlers() *calendar.Handlers {
	return s.handlers
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "listen", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/changes", s.handleChanges)
	s.mux.HandleFunc("POST /api/content", s.handleContent)
	s.mux.HandleFunc("POST /api/click", s.handleClick)
	s.mux.HandleFunc("GET /api/popup", s.handlePopup)
	s.mux.HandleFunc("POST /api/popup/close", s.handlePopupClose)
	s.mux.HandleFunc("POST /api/select", s.handleSelect)
	s.mux.HandleFunc("POST /api/drop", s.handleDrop)
	s.mux.HandleFunc("POST /api/resize", s.handleResize)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /calendar.ics", s.handleICS)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type eventsResponse struct {
	Events     []calendar.Event `json:"events"`
	RangeStart time.Time        `json:"rangeStart"`
	RangeEnd   time.Time        `json:"rangeEnd"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	from, to, err := s.window(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	events, err := s.source.Events(r.Context(), from, to)
	if err != nil {
		s.logger.Error("api events: listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []calendar.Event{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events, RangeStart: from, RangeEnd: to})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	var arg calendar.ContentArg
	if !decodeBody(w, r, &arg) {
		return
	}
	if arg.View == "" {
		arg.View = calendar.ViewWeek
	}
	if !arg.View.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown view %q", arg.View))
		return
	}
	if arg.TimeText == "" {
		arg.TimeText = s.TimeText(arg.Event)
	}
	writeJSON(w, http.StatusOK, s.formatter.EventContent(arg))
}

type popupResponse struct {
	Open    bool                  `json:"open"`
	Preview *calendar.PreviewView `json:"preview,omitempty"`
}

func (s *Server) popupState() popupResponse {
	wdg, ok := s.host.Current()
	if !ok {
		return popupResponse{}
	}
	v := wdg.View()
	return popupResponse{Open: true, Preview: &v}
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var info calendar.ClickInfo
	if !decodeBody(w, r, &info) {
		return
	}
	s.handlers.EventClick(r.Context(), info)
	writeJSON(w, http.StatusOK, s.popupState())
}

func (s *Server) handlePopup(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.popupState())
}

func (s *Server) handlePopupClose(w http.ResponseWriter, _ *http.Request) {
	closed := s.handlers.ClosePreview()
	writeJSON(w, http.StatusOK, map[string]bool{"closed": closed})
}

type selectResponse struct {
	Created bool   `json:"created"`
	Draft   string `json:"draft,omitempty"`
	Label   string `json:"label,omitempty"`
	Modal   string `json:"modal,omitempty"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var info calendar.SelectInfo
	if !decodeBody(w, r, &info) {
		return
	}
	if info.View != "" && !info.View.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown view %q", info.View))
		return
	}
	resp := selectResponse{Created: s.handlers.Select(r.Context(), info)}
	if resp.Created {
		resp.Draft = calendar.DraftTitle
		if doc, ok := s.store.GetRecord(calendar.DraftTitle); ok {
			resp.Label = doc.String(calendar.FieldDraftTitle)
		}
		if shown := s.modal.Displayed(); len(shown) > 0 {
			resp.Modal = shown[len(shown)-1]
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var info calendar.ChangeInfo
	if !decodeBody(w, r, &info) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": s.handlers.EventDrop(r.Context(), info)})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var info calendar.ChangeInfo
	if !decodeBody(w, r, &info) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": s.handlers.EventResize(r.Context(), info)})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	components := []introspection.Component{s.store, s.handlers}
	state := make(map[string]any, len(components))
	for _, c := range components {
		if in, ok := c.(introspection.Introspectable); ok {
			state[c.ComponentType()] = in.State()
		}
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	from, to, err := s.window(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	events, err := s.source.Events(r.Context(), from, to)
	if err != nil {
		s.logger.Error("calendar.ics: listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := ics.Encode(w, ics.DefaultProductID, events); err != nil {
		s.logger.Error("calendar.ics: encode failed", "error", err)
	}
}

// TimeText formats the start and end of ev with the configured strftime layout.
func (s *Server) TimeText(ev calendar.Event) string {
	return TimeText(s.cfg.TimeTextFormat, ev)
}

// TimeText renders "start - end" (or only start) with a strftime layout.
func TimeText(layout string, ev calendar.Event) string {
	if ev.Start.IsZero() || ev.AllDay {
		return ""
	}
	out := strftime.Format(layout, ev.Start)
	if !ev.End.IsZero() {
		out += " - " + strftime.Format(layout, ev.End)
	}
	return out
}

// window reads the from/to query parameters. Both accept RFC 3339, plain
// dates and canonical record dates. The default is yesterday through the
// configured horizon.
func (s *Server) window(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	now := s.now()
	from := now.AddDate(0, 0, -1)
	to := now.AddDate(0, 0, s.cfg.HorizonDays)

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, ok := dates.Parse(v)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from %q", v)
		}
		from = t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, ok := dates.Parse(v)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to %q", v)
		}
		to = t
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.New("to must be after from")
	}
	return from, to, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
