package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/abhajavat-web/efvb/internal/httpx"
	"go.uber.org/zap"
)

// LibraryGranter is the slice of the library service the catalog needs:
// creating a digital product drops it straight into the creating
// admin's library, mirroring instant fulfillment.
type LibraryGranter interface {
	GrantProduct(ctx context.Context, userID string, p Product) error
}

type HTTPHandler struct {
	service *Service
	granter LibraryGranter
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, granter LibraryGranter, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, granter: granter, logger: logger}
}

// List handles GET /products
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Error fetching products", nil)
		return
	}
	httpx.JSONSuccess(w, products, nil)
}

// GetByID handles GET /products/{id}
func (h *HTTPHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Error fetching product", nil)
		return
	}
	httpx.JSONSuccess(w, product, nil)
}

type createProductReq struct {
	Title       string  `json:"title" validate:"required"`
	Price       float64 `json:"price" validate:"required,gte=0"`
	Type        string  `json:"type" validate:"required,oneof=EBOOK AUDIOBOOK HARDCOVER PAPERBACK"`
	Description string  `json:"description"`
	FilePath    string  `json:"filePath"`
	Thumbnail   string  `json:"thumbnail"`
	Stock       int     `json:"stock"`
	Discount    float64 `json:"discount"`
	Category    string  `json:"category"`
	Language    string  `json:"language"`
	Volume      string  `json:"volume"`
}

// Create handles POST /products (admin only).
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	req.Title = strings.TrimSpace(req.Title)

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	product := Product{
		Title:       req.Title,
		Type:        req.Type,
		Description: req.Description,
		Price:       req.Price,
		Discount:    req.Discount,
		Stock:       req.Stock,
		FilePath:    req.FilePath,
		Thumbnail:   req.Thumbnail,
		Category:    req.Category,
		Language:    req.Language,
		Volume:      req.Volume,
	}

	if err := h.service.Create(r.Context(), &product); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Error creating product", nil)
		return
	}

	if IsDigital(product.Type) && h.granter != nil {
		if err := h.granter.GrantProduct(r.Context(), httpx.UserIDFrom(r), product); err != nil {
			// The product itself was created; a failed self-grant is not fatal.
			h.logger.Warn("admin library grant failed",
				zap.String("product_id", product.ID), zap.Error(err))
		}
	}

	httpx.JSONSuccessCreated(w, product)
}
