package library

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abhajavat-web/efvb/internal/catalog"
	"github.com/abhajavat-web/efvb/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// MyLibrary handles GET /library/my-library
func (h *HTTPHandler) MyLibrary(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	email := httpx.UserEmailFrom(r)

	entries, err := h.service.MyLibrary(r.Context(), userID, email)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Error fetching library", nil)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	httpx.JSONSuccess(w, entries, nil)
}

type saveProgressReq struct {
	ProductID string  `json:"productId" validate:"required"`
	Progress  float64 `json:"progress" validate:"gte=0"`
	Total     float64 `json:"total" validate:"gte=0"`
}

// SaveProgress handles POST /library/progress
func (h *HTTPHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	var req saveProgressReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	record, err := h.service.SaveProgress(r.Context(), httpx.UserIDFrom(r), req.ProductID, req.Progress, req.Total)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Error saving progress", nil)
		return
	}
	httpx.JSONSuccess(w, record, nil)
}

// GetProgress handles GET /library/progress/{productId}
func (h *HTTPHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if productID == "" {
		http.NotFound(w, r)
		return
	}

	record, err := h.service.GetProgress(r.Context(), httpx.UserIDFrom(r), productID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Error fetching progress", nil)
		return
	}
	httpx.JSONSuccess(w, record, nil)
}

type addProductReq struct {
	ProductID string `json:"productId" validate:"required"`
}

// Add handles POST /library/add
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	entries, err := h.service.AddProduct(r.Context(), httpx.UserIDFrom(r), req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
		case errors.Is(err, ErrAlreadyOwned):
			httpx.JSONError(w, http.StatusBadRequest, "ALREADY_OWNED", "Product already in your library", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Error adding to library", nil)
		}
		return
	}
	httpx.JSONSuccessCreated(w, entries)
}
