package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/compilations/internal/formatter"
	"github.com/desertthunder/compilations/internal/models"
	"github.com/desertthunder/compilations/internal/services"
	"github.com/desertthunder/compilations/internal/shared"
	"github.com/go-chi/chi/v5"
)

// VideosHandler serves the saved-video listing, resolution and unsave endpoints.
type VideosHandler struct {
	library  services.Library
	resolver services.MediaResolver
	logger   *log.Logger
}

// NewVideosHandler creates a [VideosHandler].
func NewVideosHandler(library services.Library, resolver services.MediaResolver, logger *log.Logger) *VideosHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &VideosHandler{library: library, resolver: resolver, logger: shared.WithLogger(logger, "handler", "videos")}
}

// Routes returns the HTTP routes this handler serves.
//
// Retrieval takes an encoded reference and deletion takes a fullname, in the same path segment.
func (h *VideosHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/videos/", Handler: h.List},
		{Method: http.MethodGet, Pattern: "/videos/{video}/", Handler: h.Retrieve},
		{Method: http.MethodDelete, Pattern: "/videos/{video}/", Handler: h.Delete},
	}
}

// List returns one filtered page of saved videos, as JSON unless ?format= names a [formatter.Format].
func (h *VideosHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor, err := parseCursor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var export *formatter.Format
	if name := r.URL.Query().Get("format"); name != "" && name != "json" {
		f, err := formatter.Lookup(name)
		if err != nil {
			writeError(w, err)
			return
		}
		export = &f
	}

	token, _ := currentSession(r).Token()
	page, err := h.library.ListSaved(r.Context(), token, cursor)
	if err != nil {
		var upstream *services.UpstreamError
		if errors.As(err, &upstream) {
			writeMessage(w, http.StatusInternalServerError, "Error %d while retrieving saved videos", upstream.Response.StatusCode)
			return
		}
		writeError(w, err)
		return
	}

	if export != nil {
		body, err := export.Export(page)
		if err != nil {
			h.logger.Error("export failed", "err", err)
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", export.ContentType)
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Retrieve resolves an encoded reference to its media URL. Failed page fetches are forwarded unchanged.
func (h *VideosHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	media, err := h.resolver.Resolve(r.Context(), chi.URLParam(r, "video"))
	if err != nil {
		var upstream *services.UpstreamError
		if errors.As(err, &upstream) {
			writePassthrough(w, upstream.Response)
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, media)
}

// Delete unsaves an item by fullname and forwards Reddit's response.
func (h *VideosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	token, _ := currentSession(r).Token()
	resp, err := h.library.Unsave(r.Context(), token, chi.URLParam(r, "video"))
	if err != nil {
		writeError(w, err)
		return
	}

	writePassthrough(w, resp)
}

// parseCursor reads count and after. The cursor is only honored when both are present.
func parseCursor(r *http.Request) (models.Cursor, error) {
	q := r.URL.Query()
	rawCount, after := q.Get("count"), q.Get("after")
	if rawCount == "" || after == "" {
		return models.Cursor{}, nil
	}

	count, err := strconv.Atoi(rawCount)
	if err != nil || count < 0 {
		return models.Cursor{}, fmt.Errorf("%w: count must be a non-negative integer, got %q", shared.ErrInvalidArgument, rawCount)
	}
	return models.Cursor{Count: count, After: after}, nil
}
