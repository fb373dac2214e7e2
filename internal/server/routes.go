package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/joeblew999/deckshow/internal/export"
	"github.com/joeblew999/deckshow/web"
)

func (s *Server) registerAPI(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/overview", s.handleOverview)

		r.Post("/next", s.action(s.session.Presenter.Next))
		r.Post("/previous", s.action(s.session.Presenter.Previous))
		r.Post("/first", s.action(s.session.Presenter.First))
		r.Post("/last", s.action(s.session.Presenter.Last))
		r.Post("/goto/{n}", s.handleGoTo)
		r.Post("/fullscreen", s.action(s.session.Presenter.ToggleFullscreen))
		r.Post("/presentation", s.action(s.session.Presenter.TogglePresentationMode))
		r.Post("/sections/{name}", s.handleSection)

		r.Route("/timer", func(r chi.Router) {
			r.Get("/", s.handleTimer)
			r.Post("/start", s.action(s.session.Presenter.StartTimer))
			r.Post("/stop", s.action(s.session.Presenter.StopTimer))
			r.Post("/reset", s.action(s.session.Presenter.ResetTimer))
			r.Post("/toggle", s.action(s.session.Presenter.ToggleTimer))
			r.Put("/duration", s.handleTimerDuration)
		})

		r.Get("/themes", s.handleThemes)
		r.Put("/theme", s.handleSetTheme)

		r.Get("/bookmarks", s.handleBookmarks)
		r.Put("/bookmarks/{n}", s.handleAddBookmark)
		r.Delete("/bookmarks/{n}", s.handleRemoveBookmark)

		r.Get("/notes/{n}", s.handleGetNote)
		r.Put("/notes/{n}", s.handleAddNote)

		r.Get("/stats", s.handleStats)
		r.Get("/rehearsal", s.handleRehearsal)
		r.Post("/rehearsal", s.handleToggleRehearsal)

		r.Get("/export/print", s.handlePrint)
		r.Get("/export/slides/{file}", s.handleSlideImage)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}

// slideParam parses the 1-based slide number in URL parameter name,
// ignoring an extension such as ".svg"
func slideParam(r *http.Request, name string) (int, bool) {
	v := chi.URLParam(r, name)
	if i := strings.IndexByte(v, '.'); i >= 0 {
		v = v[:i]
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func (s *Server) publish(ctx context.Context, subject string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.hub.Publish(ctx, subject, data); err != nil {
		s.log.Warn("publishing event", "subject", subject, "error", err)
	}
}

// action wraps a presenter action and answers with the new state
func (s *Server) action(fn func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn()
		writeJSON(w, http.StatusOK, s.session.Presenter.State())
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(web.IndexHTML)
}

func (s *Server) handleSlideSVG(w http.ResponseWriter, r *http.Request) {
	n, ok := slideParam(r, "file")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid slide number")
		return
	}
	svg, ok := s.session.Deck.SVG(n)
	if !ok {
		writeError(w, http.StatusNotFound, "slide not found")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(svg)
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(chi.URLParam(r, "file"), ".svg")
	svg, ok := s.session.Charts.SVG(id)
	if !ok {
		writeError(w, http.StatusNotFound, "chart not found")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Presenter.State())
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Overview())
}

func (s *Server) handleGoTo(w http.ResponseWriter, r *http.Request) {
	n, ok := slideParam(r, "n")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid slide number")
		return
	}
	s.session.Presenter.GoTo(n)
	writeJSON(w, http.StatusOK, s.session.Presenter.State())
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.session.Presenter.JumpToSection(name) {
		writeError(w, http.StatusNotFound, "unknown section "+name)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Presenter.State())
}

func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Presenter.Timer())
}

func (s *Server) handleTimerDuration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Minutes < 1 {
		writeError(w, http.StatusBadRequest, "minutes must be at least 1")
		return
	}
	s.session.Presenter.SetTimerDuration(req.Minutes)
	writeJSON(w, http.StatusOK, s.session.Presenter.Timer())
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"current": s.session.Presenter.State().Theme,
		"themes":  s.session.Presenter.Themes(),
	})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if !s.session.Presenter.SetTheme(req.Name) {
		writeError(w, http.StatusNotFound, "unknown theme "+req.Name)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Presenter.State())
}

func (s *Server) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Store.Bookmarks(r.Context()))
}

func (s *Server) handleAddBookmark(w http.ResponseWriter, r *http.Request) {
	n, ok := slideParam(r, "n")
	if !ok || n < 1 || n > s.session.Deck.Len() {
		writeError(w, http.StatusBadRequest, "invalid slide number")
		return
	}
	var req struct {
		Label string `json:"label"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := s.session.Store.AddBookmark(r.Context(), n, req.Label); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	bookmarks := s.session.Store.Bookmarks(r.Context())
	s.publish(r.Context(), "bookmarks.changed", bookmarks)
	writeJSON(w, http.StatusOK, bookmarks)
}

func (s *Server) handleRemoveBookmark(w http.ResponseWriter, r *http.Request) {
	n, ok := slideParam(r, "n")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid slide number")
		return
	}
	if err := s.session.Store.RemoveBookmark(r.Context(), n); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	bookmarks := s.session.Store.Bookmarks(r.Context())
	s.publish(r.Context(), "bookmarks.changed", bookmarks)
	writeJSON(w, http.StatusOK, bookmarks)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	n, ok := slideParam(r, "n")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid slide number")
		return
	}
	note, err := s.session.Note(n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	n, ok := slideParam(r, "n")
	if !ok || n < 1 || n > s.session.Deck.Len() {
		writeError(w, http.StatusBadRequest, "invalid slide number")
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := s.session.Store.AddNote(r.Context(), n, req.Text); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	note, err := s.session.Note(n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Stats.Stats())
}

func (s *Server) handleRehearsal(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Rehearsal.Stats())
}

func (s *Server) handleToggleRehearsal(w http.ResponseWriter, r *http.Request) {
	active := s.session.Rehearsal.Toggle()
	st := s.session.Rehearsal.Stats()
	if !active {
		s.publish(r.Context(), "rehearsal.finished", st)
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	doc, err := s.session.Export.Print(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeDocument(w, doc, doc.ContentType == "application/pdf")
}

func (s *Server) handleSlideImage(w http.ResponseWriter, r *http.Request) {
	n, ok := slideParam(r, "file")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid slide number")
		return
	}
	doc, err := s.session.Export.SlideImage(r.Context(), n)
	switch {
	case errors.Is(err, export.ErrUnknownSlide):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, export.ErrNoRenderer):
		writeError(w, http.StatusNotImplemented, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeDocument(w, doc, true)
}

func writeDocument(w http.ResponseWriter, doc export.Document, attachment bool) {
	w.Header().Set("Content-Type", doc.ContentType)
	if attachment {
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
	}
	w.Write(doc.Data)
}
