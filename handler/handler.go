// Package handler serves the deck library: decksh sources in input storage,
// their rendered slides and manifests in output storage, and processing
// status in the KV store. It runs unchanged on every host (native server,
// Cloudflare worker, browser).
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joeblew999/deckshow/internal/export"
	"github.com/joeblew999/deckshow/internal/slides"
	"github.com/joeblew999/deckshow/pkg/pipeline"
	"github.com/joeblew999/deckshow/runtime"
)

// Version is set via ldflags at build time.
var Version = "dev"

var errNoPipeline = errors.New("no pipeline configured")

// Options configures a Library
type Options struct {
	// Host names the runtime in /health and / responses
	Host string
	// Base is the path the library is mounted under, used to rewrite
	// links inside slides
	Base string
	Log  *slog.Logger
}

// Library is the deck library HTTP handler
type Library struct {
	rt     *runtime.Runtime
	opts   Options
	log    *slog.Logger
	router chi.Router
}

// New creates a library over rt
func New(rt *runtime.Runtime, opts Options) *Library {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	opts.Base = strings.TrimSuffix(opts.Base, "/")
	l := &Library{rt: rt, opts: opts, log: log}
	l.router = l.routes()
	return l
}

func (l *Library) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", l.handleRoot)
	r.Get("/health", l.handleHealth)
	r.Post("/process", l.handleProcess)
	r.Put("/upload/*", l.handleUpload)
	r.Post("/upload/*", l.handleUpload)
	r.Get("/slides/*", l.handleGetSlide)
	r.Get("/manifest/*", l.handleGetManifest)
	r.Get("/status/*", l.handleStatus)
	r.Get("/decks", l.handleListDecks)
	r.Get("/examples", l.handleListExamples)
	r.Get("/examples/*", l.handleGetExample)
	r.Get("/deck/*", l.handleDeckRoute)
	return r
}

func (l *Library) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.router.ServeHTTP(w, r)
}

func (l *Library) formats() []string {
	if l.rt == nil || l.rt.Pipeline == nil {
		return nil
	}
	var out []string
	for _, f := range l.rt.Pipeline.SupportedFormats() {
		out = append(out, string(f))
	}
	return out
}

func (l *Library) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Service: "deckshow",
		Version: Version,
		Runtime: l.opts.Host,
		Endpoints: []string{
			"/health", "/process", "/upload/:key", "/slides/:key", "/manifest/:name",
			"/status/:key", "/decks", "/examples", "/examples/:path", "/deck/:path/slide/:n.svg",
		},
		Formats: l.formats(),
	})
}

func (l *Library) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: Version, Runtime: l.opts.Host})
}

// render turns decksh source into slides, expanding imports relative to key
// through input storage
func (l *Library) render(ctx context.Context, source []byte, key string, format pipeline.OutputFormat) (*pipeline.Result, error) {
	if l.rt == nil || l.rt.Pipeline == nil {
		return nil, errNoPipeline
	}
	if key != "" && pipeline.HasImports(source) {
		expanded, err := pipeline.NewImportResolver(pipeline.StorageLoader(l.rt.Input())).Expand(ctx, source, key)
		if err != nil {
			return nil, fmt.Errorf("import resolution failed: %w", err)
		}
		source = expanded
	}
	return l.rt.Pipeline.Process(ctx, source, format)
}

func (l *Library) handleProcess(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	sourcePath := r.URL.Query().Get("source")

	v := NewValidator()
	v.Format(format, l.formats())
	v.SourceRef("source", sourcePath)
	if err := v.Err(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if format == "" {
		format = string(pipeline.FormatSVG)
	}

	source, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	result, err := l.render(r.Context(), source, sourcePath, pipeline.OutputFormat(format))
	if errors.Is(err, errNoPipeline) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := make([]string, len(result.Slides))
	for i, s := range result.Slides {
		if result.Format == pipeline.FormatSVG {
			out[i] = string(s)
		} else {
			out[i] = base64.StdEncoding.EncodeToString(s)
		}
	}
	writeJSON(w, http.StatusOK, ProcessResponse{
		Success:    true,
		Title:      result.Title,
		SlideCount: result.SlideCount,
		Slides:     out,
		Format:     string(result.Format),
	})
}

func (l *Library) setStatus(ctx context.Context, key, status string, cause error) {
	st := StatusResponse{Key: key, Status: status, UpdatedAt: time.Now().UTC().Format(time.RFC3339)}
	if cause != nil {
		st.Error = cause.Error()
	}
	data, _ := json.Marshal(st)
	if err := l.rt.Store().Put(ctx, "status:"+key, data); err != nil {
		l.log.Warn("saving deck status", "key", key, "error", err)
	}
	if err := l.rt.Events().Publish(ctx, "deck."+status, data); err != nil {
		l.log.Warn("publishing deck status", "key", key, "error", err)
	}
}

func (l *Library) handleUpload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	v := NewValidator()
	v.DeckKey("key", key)
	if err := v.Err(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	source, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	ctx := r.Context()
	if err := l.rt.Input().Put(ctx, key, source, "text/plain"); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store source: %v", err))
		return
	}

	manifest, err := l.process(ctx, key, source)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errNoPipeline) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success:    true,
		Key:        key,
		SlideCount: manifest.SlideCount,
		Manifest:   manifestKey(key),
	})
}

func baseName(key string) string {
	return strings.TrimSuffix(key, ".dsh")
}

func manifestKey(key string) string {
	return baseName(key) + "/manifest.json"
}

// ProcessKey renders the source already stored at key, as an upload would.
// Storage event consumers call it for objects written outside the library.
func (l *Library) ProcessKey(ctx context.Context, key string) (*Manifest, error) {
	v := NewValidator()
	v.DeckKey("key", key)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("invalid deck key %q: %w", key, err)
	}
	source, err := runtime.ReadAll(ctx, l.rt.Input(), key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return l.process(ctx, key, source)
}

// process publishes source and records the status transitions of key
func (l *Library) process(ctx context.Context, key string, source []byte) (*Manifest, error) {
	l.setStatus(ctx, key, "processing", nil)
	manifest, err := l.publish(ctx, key, source)
	if err != nil {
		l.setStatus(ctx, key, "failed", err)
		return nil, err
	}
	l.setStatus(ctx, key, "processed", nil)
	l.log.Info("deck processed", "key", key, "slides", manifest.SlideCount)
	return manifest, nil
}

// publish renders source and writes its slides and manifest to output storage
func (l *Library) publish(ctx context.Context, key string, source []byte) (*Manifest, error) {
	result, err := l.render(ctx, source, key, pipeline.FormatSVG)
	if err != nil {
		return nil, err
	}
	reg, err := slides.New(result)
	if err != nil {
		return nil, err
	}

	base := baseName(key)
	keys, err := export.New(reg, nil, l.log).ExportSVG(ctx, l.rt.Output(), base, nil)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		SourceKey:   key,
		ProcessedAt: time.Now().UTC().Format(time.RFC3339),
		Title:       reg.Title(),
		SlideCount:  reg.Len(),
	}
	for i, title := range reg.Titles() {
		m.Slides = append(m.Slides, ManifestSlide{Number: i + 1, Title: title, Key: keys[i]})
	}
	data, _ := json.MarshalIndent(m, "", "  ")
	if err := l.rt.Output().Put(ctx, manifestKey(key), data, "application/json"); err != nil {
		return nil, fmt.Errorf("failed to store manifest: %w", err)
	}
	return m, nil
}

func (l *Library) handleGetSlide(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	v := NewValidator()
	v.StorageKey("key", key)
	if err := v.Err(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := runtime.ReadAll(r.Context(), l.rt.Output(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "slide not found")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

func (l *Library) handleGetManifest(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if name == "" || strings.Contains(name, "..") {
		writeError(w, http.StatusBadRequest, "invalid name")
		return
	}
	data, err := runtime.ReadAll(r.Context(), l.rt.Output(), manifestKey(name))
	if err != nil {
		writeError(w, http.StatusNotFound, "manifest not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (l *Library) handleStatus(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing key")
		return
	}

	data, err := l.rt.Store().Get(r.Context(), "status:"+key)
	if err != nil {
		writeJSON(w, http.StatusOK, StatusResponse{Key: key, Status: "unknown"})
		return
	}
	var st StatusResponse
	if err := json.Unmarshal(data, &st); err != nil {
		writeError(w, http.StatusInternalServerError, "invalid status data")
		return
	}
	st.Key = key
	writeJSON(w, http.StatusOK, st)
}

func (l *Library) handleListDecks(w http.ResponseWriter, r *http.Request) {
	result, err := l.rt.Output().List(r.Context(), "", "/")
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("list failed: %v", err))
		return
	}
	decks := make([]string, 0, len(result.DelimitedPrefixes))
	for _, prefix := range result.DelimitedPrefixes {
		decks = append(decks, strings.TrimSuffix(prefix, "/"))
	}
	writeJSON(w, http.StatusOK, DecksResponse{Decks: decks, Count: len(decks)})
}

var deckLine = regexp.MustCompile(`(?m)^\s*deck(\s|$)`)

// isDeckSource reports whether source holds a deck, as opposed to a
// library of definitions meant for import
func isDeckSource(source []byte) bool {
	return deckLine.Match(source)
}

func (l *Library) handleListExamples(w http.ResponseWriter, r *http.Request) {
	onlyRenderable := r.URL.Query().Get("renderable") == "true"

	list, err := l.rt.Input().List(r.Context(), "", "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list examples: %v", err))
		return
	}

	examples := make([]Example, 0)
	for _, key := range list.Keys {
		if !strings.HasSuffix(key, ".dsh") {
			continue
		}
		source, err := runtime.ReadAll(r.Context(), l.rt.Input(), key)
		renderable := err == nil && isDeckSource(source)
		if onlyRenderable && !renderable {
			continue
		}
		examples = append(examples, Example{Name: baseName(key), Path: key, Renderable: renderable})
	}
	writeJSON(w, http.StatusOK, ExamplesResponse{Examples: examples, Count: len(examples)})
}

func (l *Library) handleGetExample(w http.ResponseWriter, r *http.Request) {
	p := chi.URLParam(r, "*")
	if strings.Contains(p, "..") {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}
	content, err := runtime.ReadAll(r.Context(), l.rt.Input(), p)
	if err != nil {
		writeError(w, http.StatusNotFound, "example not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(content)
}

// handleDeckRoute serves /deck/:path/slide/:n.svg and /deck/:path/asset/:file,
// rendering the source on demand. A bare /deck/:path redirects to slide 1.
func (l *Library) handleDeckRoute(w http.ResponseWriter, r *http.Request) {
	p := chi.URLParam(r, "*")
	if p == "" {
		writeError(w, http.StatusBadRequest, "missing deck path")
		return
	}

	var deckPath, kind, param string
	switch {
	case strings.Contains(p, "/slide/"):
		parts := strings.SplitN(p, "/slide/", 2)
		deckPath, kind, param = parts[0], "slide", parts[1]
	case strings.Contains(p, "/asset/"):
		parts := strings.SplitN(p, "/asset/", 2)
		deckPath, kind, param = parts[0], "asset", parts[1]
	default:
		http.Redirect(w, r, fmt.Sprintf("%s/deck/%s/slide/1.svg", l.opts.Base, p), http.StatusFound)
		return
	}

	if strings.Contains(deckPath, "..") || strings.Contains(param, "..") {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}

	switch kind {
	case "slide":
		l.handleDeckSlide(w, r, deckPath, param)
	case "asset":
		l.handleDeckAsset(w, r, deckPath, param)
	}
}

func (l *Library) handleDeckSlide(w http.ResponseWriter, r *http.Request, deckPath, param string) {
	n, err := strconv.Atoi(strings.TrimSuffix(param, ".svg"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "invalid slide number")
		return
	}
	if l.rt == nil || l.rt.Pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, errNoPipeline.Error())
		return
	}

	reg, err := slides.Load(r.Context(), l.rt.Input(), deckPath, l.rt.Pipeline)
	if errors.Is(err, runtime.ErrNotFound) {
		writeError(w, http.StatusNotFound, "deck not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render deck: %v", err))
		return
	}

	svg, ok := reg.SVG(n)
	if !ok {
		writeError(w, http.StatusNotFound, "slide not found")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(l.rewriteSVGLinks(svg, deckPath))
}

var assetTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

func (l *Library) handleDeckAsset(w http.ResponseWriter, r *http.Request, deckPath, filename string) {
	if strings.Contains(filename, "/") {
		writeError(w, http.StatusBadRequest, "invalid asset path")
		return
	}

	content, err := runtime.ReadAll(r.Context(), l.rt.Input(), path.Join(path.Dir(deckPath), filename))
	if err != nil {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	contentType, ok := assetTypes[strings.ToLower(path.Ext(filename))]
	if !ok {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(content)
}

var (
	slideLink = regexp.MustCompile(`xlink:href="[^"]*/deck-(\d{5})\.svg"`)
	assetLink = regexp.MustCompile(`xlink:href="([^":/][^":]*\.(?:png|jpg|jpeg|gif|svg))"`)
)

// rewriteSVGLinks points slide-to-slide links and relative image references
// at the deck routes
func (l *Library) rewriteSVGLinks(svg []byte, deckPath string) []byte {
	out := slideLink.ReplaceAllFunc(svg, func(match []byte) []byte {
		num, _ := strconv.Atoi(string(slideLink.FindSubmatch(match)[1]))
		return []byte(fmt.Sprintf(`xlink:href="%s/deck/%s/slide/%d.svg"`, l.opts.Base, deckPath, num))
	})
	return assetLink.ReplaceAllFunc(out, func(match []byte) []byte {
		file := assetLink.FindSubmatch(match)[1]
		return []byte(fmt.Sprintf(`xlink:href="%s/deck/%s/asset/%s"`, l.opts.Base, deckPath, file))
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
