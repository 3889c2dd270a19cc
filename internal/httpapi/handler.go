package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-core/internal/checkout"
	"github.com/nikolayk812/checkout-core/internal/domain"
)

type CheckoutService interface {
	Quote(ctx context.Context, req checkout.Request) (checkout.Quote, error)
	PlaceOrder(ctx context.Context, req checkout.Request) (domain.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	DeliveryEstimates(destination domain.Location) ([]domain.DeliveryEstimate, error)
	BackorderEstimate(restockDate time.Time, shippingOptionID string, destination domain.Location) (domain.DeliveryEstimate, error)
}

type CheckoutHandler struct {
	service      CheckoutService
	logger       *slog.Logger
	maxBodyBytes int64
}

func NewCheckoutHandler(service CheckoutService, logger *slog.Logger, maxBodyBytes int64) *CheckoutHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutHandler{
		service:      service,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// POST /api/v1/checkout/quote
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCheckoutRequest(w, r)
	if !ok {
		return
	}

	quote, err := h.service.Quote(r.Context(), req.toDomain())
	if err != nil {
		h.handleError(w, r, err, msgCheckoutNotFound)
		return
	}

	respondJSON(w, http.StatusOK, QuoteResponseDTO{
		Totals:    mapTotals(quote.Totals),
		Estimates: mapEstimates(quote.Estimates),
	})
}

// POST /api/v1/orders
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCheckoutRequest(w, r)
	if !ok {
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), req.toDomain())
	if err != nil {
		h.handleError(w, r, err, msgCheckoutNotFound)
		return
	}

	respondJSON(w, http.StatusCreated, mapOrder(order))
}

// GET /api/v1/orders/{order_id}
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID", nil)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		h.handleError(w, r, err, "order not found")
		return
	}

	respondJSON(w, http.StatusOK, mapOrder(order))
}

// GET /api/v1/delivery-estimates?country=GB
func (h *CheckoutHandler) DeliveryEstimates(w http.ResponseWriter, r *http.Request) {
	estimates, err := h.service.DeliveryEstimates(locationFromQuery(r))
	if err != nil {
		h.handleError(w, r, err, msgShippingNotFound)
		return
	}

	respondJSON(w, http.StatusOK, mapEstimates(estimates))
}

// GET /api/v1/delivery-estimates/backorder?restock_date=2025-01-13&shipping_option_id=standard
func (h *CheckoutHandler) BackorderEstimate(w http.ResponseWriter, r *http.Request) {
	restockDate, err := time.Parse(time.DateOnly, r.URL.Query().Get("restock_date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_restock_date", "restock_date must be YYYY-MM-DD", nil)
		return
	}

	optionID := r.URL.Query().Get("shipping_option_id")
	if optionID == "" {
		optionID = domain.StandardShipping
	}

	estimate, err := h.service.BackorderEstimate(restockDate, optionID, locationFromQuery(r))
	if err != nil {
		h.handleError(w, r, err, msgShippingNotFound)
		return
	}

	respondJSON(w, http.StatusOK, mapEstimate(estimate))
}

func (h *CheckoutHandler) decodeCheckoutRequest(w http.ResponseWriter, r *http.Request) (CheckoutRequestDTO, bool) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return CheckoutRequestDTO{}, false
	}

	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "items are required", nil)
		return CheckoutRequestDTO{}, false
	}

	return req, true
}

const (
	msgCheckoutNotFound = "a product, promo code or shipping option in the request was not found"
	msgShippingNotFound = "shipping option not found"
)

// handleError maps domain errors to responses. Internal detail is only logged.
// domain.ErrInvalidArgument is a programming error and takes the default branch.
func (h *CheckoutHandler) handleError(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	var stockErr *domain.InsufficientStockError

	switch {
	case errors.As(err, &stockErr):
		respondError(w, http.StatusConflict, "insufficient_stock", stockErr.Error(), InsufficientStockDetails{
			ProductID: stockErr.ProductID,
			VariantID: stockErr.VariantID,
			Name:      stockErr.Name,
			Requested: stockErr.Requested,
			Available: stockErr.Available,
		})
	case errors.Is(err, domain.ErrStockConflict):
		respondError(w, http.StatusConflict, "stock_conflict", "an item in your cart has just sold out, please review your cart", nil)
	case errors.Is(err, domain.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", notFoundMessage, nil)
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

func locationFromQuery(r *http.Request) domain.Location {
	q := r.URL.Query()
	return domain.Location{Country: q.Get("country"), PostalCode: q.Get("postal_code")}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string, details any) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
