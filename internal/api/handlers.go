package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	qerrors "github.com/FocuswithJustin/QuranLO/core/errors"
	"github.com/FocuswithJustin/QuranLO/core/format"
	"github.com/FocuswithJustin/QuranLO/core/ref"
	"github.com/FocuswithJustin/QuranLO/core/source"
	"github.com/FocuswithJustin/QuranLO/core/sqlite"
	"github.com/FocuswithJustin/QuranLO/internal/cache"
	"github.com/FocuswithJustin/QuranLO/internal/logging"
)

// maxBodySize bounds POST bodies.
const maxBodySize = 64 << 10

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthInfo is returned by /health.
type HealthInfo struct {
	Status  string       `json:"status"`
	Version string       `json:"version"`
	Uptime  string       `json:"uptime"`
	Surahs  int          `json:"surahs"`
	Sources int          `json:"sources"`
	Clients int          `json:"websocket_clients"`
	SQLite  sqlite.Info  `json:"sqlite"`
	Cache   *cache.Stats `json:"cache,omitempty"`
}

// SourceInfo describes a catalog source without its file location.
type SourceInfo struct {
	Type      source.Type      `json:"type"`
	Language  source.Language  `json:"language"`
	Direction source.Direction `json:"direction"`
	Locale    string           `json:"locale"`
	Version   string           `json:"version"`
	Label     string           `json:"label"`
}

func sourceInfo(s source.Source) SourceInfo {
	return SourceInfo{
		Type:      s.Type,
		Language:  s.Language,
		Direction: s.Language.Direction,
		Locale:    s.Language.Locale.String(),
		Version:   s.Version,
		Label:     s.Label(),
	}
}

// VerseInfo is one verse of a lookup.
type VerseInfo struct {
	Ayah int    `json:"ayah"`
	Text string `json:"text"`
}

// VersesResult is returned by /verses/{ref}.
type VersesResult struct {
	Reference string      `json:"reference"`
	Surah     int         `json:"surah"`
	Name      string      `json:"name"`
	From      int         `json:"from"`
	To        int         `json:"to"`
	Source    SourceInfo  `json:"source"`
	Verses    []VerseInfo `json:"verses"`
}

// SourceSelector picks a catalog source. Empty language or version match
// the first source of the type in catalog order.
type SourceSelector struct {
	Type     string `json:"type"`
	Language string `json:"language,omitempty"`
	Version  string `json:"version,omitempty"`
}

// ComposeRequest is the body of POST /compose and of WebSocket messages.
type ComposeRequest struct {
	// ID is echoed back on WebSocket replies.
	ID         string           `json:"id,omitempty"`
	Ref        string           `json:"ref"`
	Mode       format.Mode      `json:"mode"`
	Sources    []SourceSelector `json:"sources"`
	ArabicFont string           `json:"arabic_font,omitempty"`
	LatinFont  string           `json:"latin_font,omitempty"`
	Bismillah  *bool            `json:"bismillah,omitempty"`
	Footer     *bool            `json:"footer,omitempty"`
}

// ComposeResult is returned by POST /compose.
type ComposeResult struct {
	Reference string            `json:"reference"`
	Fragments []format.Fragment `json:"fragments"`
	Text      string            `json:"text"`
}

// respond writes a successful JSON response.
func respond(w http.ResponseWriter, status int, data interface{}) {
	respondMeta(w, status, data, nil)
}

func respondMeta(w http.ResponseWriter, status int, data interface{}, meta *APIMeta) {
	if meta == nil {
		meta = &APIMeta{}
	}
	meta.Timestamp = time.Now().Format(time.RFC3339)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// respondError writes an error JSON response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().Format(time.RFC3339),
		},
	})
}

// classify maps a library error onto an HTTP status and error code. Data
// access failures get a generic message; the detail is only logged.
func classify(err error) (int, *APIError) {
	switch {
	case errors.Is(err, qerrors.ErrDataAccess):
		return http.StatusInternalServerError, &APIError{"DATA_ACCESS", "verse data is unavailable"}
	case errors.Is(err, qerrors.ErrVerseNotFound):
		return http.StatusNotFound, &APIError{"VERSE_NOT_FOUND", err.Error()}
	case errors.Is(err, qerrors.ErrInvalidRange):
		return http.StatusBadRequest, &APIError{"INVALID_RANGE", err.Error()}
	case errors.Is(err, qerrors.ErrNotFound):
		return http.StatusNotFound, &APIError{"NOT_FOUND", err.Error()}
	case errors.Is(err, qerrors.ErrInvalidInput):
		return http.StatusBadRequest, &APIError{"INVALID_INPUT", err.Error()}
	case errors.Is(err, qerrors.ErrUnsupported):
		return http.StatusBadRequest, &APIError{"UNSUPPORTED", err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, &APIError{"CANCELLED", "request cancelled"}
	default:
		return http.StatusInternalServerError, &APIError{"INTERNAL_ERROR", "internal error"}
	}
}

func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := classify(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorContext(r.Context(), "request_failed", "path", r.URL.Path, "error", err.Error())
	}
	respondError(w, status, apiErr.Code, apiErr.Message)
}

// pathParam returns a URL parameter with percent-escapes decoded.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]interface{}{
		"name":    "QuranLO API",
		"version": s.cfg.Version,
		"endpoints": []string{
			"GET /health",
			"GET /surahs",
			"GET /surahs/{surah}",
			"GET /sources?type=",
			"GET /verses/{ref}?type=&language=&version=",
			"POST /compose",
			"GET /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := HealthInfo{
		Status:  "healthy",
		Version: s.cfg.Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Surahs:  s.deps.Surahs.Len(),
		Sources: len(s.deps.Sources.All()),
		Clients: s.hub.ClientCount(),
		SQLite:  sqlite.GetInfo(),
	}
	if s.deps.Stores != nil {
		st := s.deps.Stores.Stats()
		info.Cache = &st
	}
	respond(w, http.StatusOK, info)
}

func (s *Server) handleSurahs(w http.ResponseWriter, r *http.Request) {
	all := s.deps.Surahs.All()
	respondMeta(w, http.StatusOK, all, &APIMeta{Total: len(all)})
}

func (s *Server) handleSurah(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "surah")
	n, err := strconv.Atoi(key)
	if err != nil {
		n, err = s.deps.Surahs.OrdinalOf(key)
		if err != nil {
			respondErr(w, r, err)
			return
		}
	}
	su, err := s.deps.Surahs.Get(n)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, su)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	var list []source.Source
	if t := r.URL.Query().Get("type"); t != "" {
		typ, err := source.ParseType(t)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT", fmt.Sprintf("unknown source type %q", t))
			return
		}
		list = s.deps.Sources.SourcesOfType(typ)
	} else {
		list = s.deps.Sources.All()
	}

	out := make([]SourceInfo, len(list))
	for i, src := range list {
		out[i] = sourceInfo(src)
	}
	respondMeta(w, http.StatusOK, out, &APIMeta{Total: len(out)})
}

// selectSource finds the source a selector names. The type defaults to
// Original.
func (s *Server) selectSource(sel SourceSelector) (source.Source, error) {
	typ := source.Original
	if sel.Type != "" {
		t, err := source.ParseType(sel.Type)
		if err != nil {
			return source.Source{}, qerrors.NewValidation("type", fmt.Sprintf("unknown source type %q", sel.Type))
		}
		typ = t
	}

	var lang *source.Language
	if sel.Language != "" {
		l, err := source.ParseLanguage(sel.Language)
		if err != nil {
			return source.Source{}, qerrors.NewValidation("language", fmt.Sprintf("unknown language %q", sel.Language))
		}
		lang = &l
	}

	version := strings.TrimSpace(sel.Version)
	for _, src := range s.deps.Sources.SourcesOfType(typ) {
		if lang != nil && src.Language.ID != lang.ID {
			continue
		}
		if version != "" && !strings.EqualFold(src.Version, version) {
			continue
		}
		return src, nil
	}
	return source.Source{}, qerrors.NewNotFound("source", strings.TrimSpace(fmt.Sprintf("%s %s %s", typ, sel.Language, sel.Version)))
}

func (s *Server) handleVerses(w http.ResponseWriter, r *http.Request) {
	parsed, err := ref.Parse(pathParam(r, "ref"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	rf, err := parsed.Resolve(s.deps.Surahs)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	q := r.URL.Query()
	src, err := s.selectSource(SourceSelector{
		Type:     q.Get("type"),
		Language: q.Get("language"),
		Version:  q.Get("version"),
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}

	store, err := s.deps.Open(src)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	defer store.Close()

	texts, err := store.VerseRange(rf.Surah, rf.From, rf.To)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	name, _ := s.deps.Surahs.NameOf(rf.Surah)
	result := VersesResult{
		Reference: rf.String(),
		Surah:     rf.Surah,
		Name:      name,
		From:      rf.From,
		To:        rf.To,
		Source:    sourceInfo(src),
		Verses:    make([]VerseInfo, len(texts)),
	}
	for i, t := range texts {
		result.Verses[i] = VerseInfo{Ayah: rf.From + i, Text: t}
	}
	respondMeta(w, http.StatusOK, result, &APIMeta{Total: len(texts)})
}

// request turns a ComposeRequest into a composer request, filling unset
// options from the server config.
func (s *Server) request(cr ComposeRequest) (ref.Ref, format.Request, error) {
	parsed, err := ref.Parse(cr.Ref)
	if err != nil {
		return ref.Ref{}, format.Request{}, err
	}
	rf, err := parsed.Resolve(s.deps.Surahs)
	if err != nil {
		return ref.Ref{}, format.Request{}, err
	}

	req := format.Request{
		Surah:      rf.Surah,
		From:       rf.From,
		To:         rf.To,
		Mode:       cr.Mode,
		ArabicFont: s.cfg.ArabicFont,
		LatinFont:  s.cfg.LatinFont,
		Bismillah:  s.cfg.Bismillah,
		Footer:     s.cfg.Footer,
	}
	if cr.ArabicFont != "" {
		req.ArabicFont = cr.ArabicFont
	}
	if cr.LatinFont != "" {
		req.LatinFont = cr.LatinFont
	}
	if cr.Bismillah != nil {
		req.Bismillah = *cr.Bismillah
	}
	if cr.Footer != nil {
		req.Footer = *cr.Footer
	}
	for _, sel := range cr.Sources {
		src, err := s.selectSource(sel)
		if err != nil {
			return ref.Ref{}, format.Request{}, err
		}
		req.Sources = append(req.Sources, src)
	}
	return rf, req, nil
}

// compose runs one ComposeRequest.
func (s *Server) compose(ctx context.Context, cr ComposeRequest) (ref.Ref, []format.Fragment, error) {
	rf, req, err := s.request(cr)
	if err != nil {
		return ref.Ref{}, nil, err
	}
	frags, err := s.composer.Compose(ctx, req)
	return rf, frags, err
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var cr ComposeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cr); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body: "+err.Error())
		return
	}

	rf, frags, err := s.compose(r.Context(), cr)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondMeta(w, http.StatusOK, ComposeResult{
		Reference: rf.String(),
		Fragments: frags,
		Text:      format.Join(frags, "\n"),
	}, &APIMeta{Total: len(frags)})
}
