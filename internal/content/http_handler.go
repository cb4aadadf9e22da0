package content

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/abhajavat-web/efvb/internal/catalog"
	"github.com/abhajavat-web/efvb/internal/httpx"
)

// HTTPHandler streams entitled media files with byte-range support.
type HTTPHandler struct {
	gate    *Gate
	locator *Locator
	logger  *zap.Logger
}

func NewHTTPHandler(gate *Gate, locator *Locator, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{gate: gate, locator: locator, logger: logger}
}

// ServeEbook handles GET /content/ebook/{productId}.
func (h *HTTPHandler) ServeEbook(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, catalog.TypeEbook, true)
}

// ServeAudio handles GET /content/audio/{productId}.
func (h *HTTPHandler) ServeAudio(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, catalog.TypeAudiobook, false)
}

// serve authorizes, resolves and streams one file. No response headers
// are written until every check has passed, so a failure at any point
// can still produce a clean JSON error.
func (h *HTTPHandler) serve(w http.ResponseWriter, r *http.Request, productType string, inline bool) {
	userID := httpx.UserIDFrom(r)
	productID := r.PathValue("productId")

	product, err := h.gate.Authorize(r.Context(), userID, productID, productType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	file, err := h.locator.Resolve(product.FilePath)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var rng *ByteRange
	if header := r.Header.Get("Range"); header != "" {
		parsed, err := ParseRange(header, file.Size)
		if err != nil {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", file.Size))
			httpx.JSONError(w, http.StatusRequestedRangeNotSatisfiable, "RANGE_NOT_SATISFIABLE", "requested range not satisfiable", nil)
			return
		}
		rng = &parsed
	}

	f, err := os.Open(file.Path)
	if err != nil {
		// The file vanished between the stat and the open.
		h.logger.Warn("content file unreadable after authorization",
			zap.String("productId", product.ID), zap.Error(err))
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "content not found", nil)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Cache-Control", "no-store")
	if inline {
		w.Header().Set("Content-Disposition", "inline")
	}

	if rng == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, f); err != nil {
			h.logger.Debug("stream aborted", zap.String("productId", product.ID), zap.Error(err))
		}
		return
	}

	if _, err := f.Seek(rng.Start, io.SeekStart); err != nil {
		h.logger.Error("seek failed", zap.String("productId", product.ID), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to stream content", nil)
		return
	}
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, file.Size))
	w.Header().Set("Content-Length", strconv.FormatInt(rng.Length(), 10))
	w.WriteHeader(http.StatusPartialContent)
	if _, err := io.CopyN(w, f, rng.Length()); err != nil {
		h.logger.Debug("stream aborted", zap.String("productId", product.ID), zap.Error(err))
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotEntitled):
		httpx.JSONError(w, http.StatusUnauthorized, "NOT_ENTITLED", "you do not own this content", nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "content not found", nil)
	case errors.Is(err, ErrPathEscapesRoot):
		h.logger.Error("file reference escapes content root",
			zap.String("productId", r.PathValue("productId")), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to resolve content", nil)
	default:
		h.logger.Error("content authorization failed",
			zap.String("productId", r.PathValue("productId")), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to resolve content", nil)
	}
}
