package shipping

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/abhajavat-web/efvb/internal/httpx"
)

//go:generate mockgen -source=http_handler.go -destination=mock_tracker.go -package=shipping

// Tracker is the courier-side dependency of the shipment endpoints.
type Tracker interface {
	Track(ctx context.Context, awb string) (Tracking, error)
}

type HTTPHandler struct {
	tracker Tracker
	logger  *zap.Logger
}

func NewHTTPHandler(tracker Tracker, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{tracker: tracker, logger: logger}
}

// Track handles GET /shipments/track/{awb} (admin).
func (h *HTTPHandler) Track(w http.ResponseWriter, r *http.Request) {
	awb := r.PathValue("awb")
	tr, err := h.tracker.Track(r.Context(), awb)
	if err != nil {
		if errors.Is(err, ErrTrackingNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "shipment not found", nil)
			return
		}
		h.logger.Error("courier tracking failed", zap.String("awb", awb), zap.Error(err))
		httpx.JSONError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "courier tracking unavailable", nil)
		return
	}
	httpx.JSONSuccess(w, tr, nil)
}
