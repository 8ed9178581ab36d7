package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/2140526141/sneaker/internal/domain"
)

// OrderGetter is the minimal interface needed to read an order.
type OrderGetter interface {
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
}

// OrderCanceller is the minimal interface needed to cancel an order.
type OrderCanceller interface {
	CancelOrder(ctx context.Context, buyerID, orderID string) (domain.Order, error)
}

// HandleOrder serves single-order routes: GET /orders/{id} and
// POST /orders/{id}/cancel. The cancelling buyer identifies itself with the
// X-Buyer-ID header; only the order's own buyer may cancel.
func HandleOrder(getter OrderGetter, canceller OrderCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, action, ok := parseOrderPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			getOrder(w, r, getter, orderID)
		case action == "cancel" && r.Method == http.MethodPost:
			cancelOrder(w, r, canceller, orderID)
		case action == "" || action == "cancel":
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func getOrder(w http.ResponseWriter, r *http.Request, svc OrderGetter, orderID string) {
	order, err := svc.GetOrder(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderToResponse(order))
}

func cancelOrder(w http.ResponseWriter, r *http.Request, svc OrderCanceller, orderID string) {
	buyerID := r.Header.Get(buyerHeader)
	if buyerID == "" {
		writeError(w, http.StatusBadRequest, codeBuyerRequired, "X-Buyer-ID header is required")
		return
	}

	order, err := svc.CancelOrder(r.Context(), buyerID, orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderToResponse(order))
}

// parseOrderPath splits /orders/{id} and /orders/{id}/cancel.
func parseOrderPath(path string) (orderID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "orders" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) == 3 {
		return parts[1], parts[2], true
	}
	return parts[1], "", true
}
