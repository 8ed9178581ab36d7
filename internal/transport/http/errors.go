package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2140526141/sneaker/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidID          = "invalid_id"
	codeInvalidQuantity    = "invalid_quantity"
	codeBuyerRequired      = "buyer_id_required"
	codeEmptyOrder         = "empty_order"
	codeInsufficientStock  = "insufficient_stock"
	codeProductNotFound    = "product_not_found"
	codeOrderNotFound      = "order_not_found"
	codeNotOwner           = "not_owner"
	codeOrderCompleted     = "order_completed"
	codePartialRelease     = "partial_release"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error    string   `json:"error"`
	Code     string   `json:"code"`
	Products []string `json:"products,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeErrorResponse(w, status, errorResponse{Error: msg, Code: code})
}

// writeDomainError maps the domain error taxonomy to HTTP. Each kind gets
// its own status and code; in particular a missing order is 404 while a
// foreign order is 403.
func writeDomainError(w http.ResponseWriter, err error) {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		writeErrorResponse(w, http.StatusConflict, errorResponse{
			Error:    stockErr.Error(),
			Code:     codeInsufficientStock,
			Products: []string{stockErr.ProductID},
		})
		return
	}
	var releaseErr *domain.PartialReleaseError
	if errors.As(err, &releaseErr) {
		writeErrorResponse(w, http.StatusConflict, errorResponse{
			Error:    releaseErr.Error(),
			Code:     codePartialRelease,
			Products: releaseErr.ProductIDs,
		})
		return
	}

	switch {
	case errors.Is(err, errBuyerRequired):
		writeError(w, http.StatusBadRequest, codeBuyerRequired, err.Error())
	case errors.Is(err, domain.ErrEmptyOrder):
		writeError(w, http.StatusBadRequest, codeEmptyOrder, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrNotOwner):
		writeError(w, http.StatusForbidden, codeNotOwner, err.Error())
	case errors.Is(err, domain.ErrOrderCompleted):
		writeError(w, http.StatusConflict, codeOrderCompleted, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(resp)
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}
