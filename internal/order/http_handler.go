package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/abhajavat-web/efvb/internal/catalog"
	"github.com/abhajavat-web/efvb/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

type placeOrderReq struct {
	Customer Customer    `json:"customer" validate:"required"`
	Items    []PlaceItem `json:"items" validate:"required,min=1,dive"`
}

// Place handles POST /orders.
func (h *HTTPHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", details)
		return
	}

	o, err := h.service.Place(r.Context(), httpx.UserIDFrom(r), req.Customer, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyOrder):
			httpx.JSONError(w, http.StatusBadRequest, "EMPTY_ORDER", "order has no items", nil)
		case errors.Is(err, catalog.ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
		case errors.Is(err, catalog.ErrInsufficientStock):
			httpx.JSONError(w, http.StatusConflict, "OUT_OF_STOCK", "insufficient stock", nil)
		default:
			h.logger.Error("place order failed", zap.Error(err))
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to place order", nil)
		}
		return
	}
	httpx.JSONSuccessCreated(w, o)
}

type verifyPaymentReq struct {
	OrderID        string `json:"orderId" validate:"required"`
	PaymentOrderID string `json:"paymentOrderId" validate:"required"`
	PaymentID      string `json:"paymentId" validate:"required"`
	Signature      string `json:"signature" validate:"required"`
}

// VerifyPayment handles POST /orders/verify.
func (h *HTTPHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", details)
		return
	}

	o, err := h.service.VerifyAndFulfill(r.Context(), req.OrderID, req.PaymentOrderID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSignature):
			httpx.JSONError(w, http.StatusBadRequest, "INVALID_SIGNATURE", "payment signature mismatch", nil)
		case errors.Is(err, ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
		default:
			h.logger.Error("verify payment failed", zap.String("orderId", req.OrderID), zap.Error(err))
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to verify payment", nil)
		}
		return
	}
	httpx.JSONSuccess(w, o, nil)
}

// Track handles GET /orders/track/{orderId}. Public: the order id is
// the credential.
func (h *HTTPHandler) Track(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Track(r.Context(), r.PathValue("orderId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		h.logger.Error("track order failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to track order", nil)
		return
	}
	httpx.JSONSuccess(w, o, nil)
}

// List handles GET /orders (admin).
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list orders failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list orders", nil)
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	httpx.JSONSuccess(w, orders, map[string]any{"total": len(orders)})
}

type updateStatusReq struct {
	Status string `json:"status" validate:"required,oneof=PENDING PAID SHIPPED DELIVERED CANCELLED"`
	Note   string `json:"note"`
	AWB    string `json:"awb"`
}

// UpdateStatus handles PATCH /orders/{orderId}/status (admin).
func (h *HTTPHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", details)
		return
	}

	o, err := h.service.UpdateStatus(r.Context(), r.PathValue("orderId"), req.Status, req.Note, req.AWB)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		h.logger.Error("update order status failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to update order", nil)
		return
	}
	httpx.JSONSuccess(w, o, nil)
}
