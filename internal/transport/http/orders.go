package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2140526141/sneaker/internal/app"
	"github.com/2140526141/sneaker/internal/domain"
)

const buyerHeader = "X-Buyer-ID"

// OrderCreator is the minimal interface needed to place an order.
type OrderCreator interface {
	CreateOrder(ctx context.Context, in app.CreateOrderInput) (domain.Order, error)
}

// OrderLister is the minimal interface needed to page a buyer's orders.
type OrderLister interface {
	ListOrders(ctx context.Context, buyerID string, pageIndex, pageSize int) ([]domain.Order, error)
}

// HandleOrders serves the /orders collection: POST places an order, GET
// lists a buyer's orders.
func HandleOrders(creator OrderCreator, lister OrderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			createOrder(w, r, creator)
		case http.MethodGet:
			listOrders(w, r, lister)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func createOrder(w http.ResponseWriter, r *http.Request, svc OrderCreator) {
	var req createOrderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	lines := make([]app.OrderLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, app.OrderLineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	order, err := svc.CreateOrder(r.Context(), app.CreateOrderInput{
		BuyerID: req.BuyerID,
		Lines:   lines,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, orderToResponse(order))
}

func listOrders(w http.ResponseWriter, r *http.Request, svc OrderLister) {
	buyerID := r.URL.Query().Get("buyer_id")
	if buyerID == "" {
		writeError(w, http.StatusBadRequest, codeBuyerRequired, "buyer_id is required")
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)

	orders, err := svc.ListOrders(r.Context(), buyerID, page, pageSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := listOrdersResponse{Orders: make([]orderResponse, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, orderToResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

type createOrderRequest struct {
	BuyerID string             `json:"buyer_id"`
	Lines   []orderLineRequest `json:"lines"`
}

type orderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (r createOrderRequest) validate() error {
	if r.BuyerID == "" {
		return errBuyerRequired
	}
	if len(r.Lines) == 0 {
		return domain.ErrEmptyOrder
	}
	for _, l := range r.Lines {
		if l.ProductID == "" {
			return domain.ErrInvalidID
		}
		if l.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
	}
	return nil
}

var errBuyerRequired = errors.New("buyer_id is required")

type orderResponse struct {
	ID        string              `json:"id"`
	BuyerID   string              `json:"buyer_id"`
	Lines     []orderLineResponse `json:"lines,omitempty"`
	Total     string              `json:"total"`
	Status    string              `json:"status"`
	PayStatus string              `json:"pay_status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type orderLineResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

type listOrdersResponse struct {
	Orders []orderResponse `json:"orders"`
}

func orderToResponse(o domain.Order) orderResponse {
	resp := orderResponse{
		ID:        o.ID,
		BuyerID:   o.BuyerID,
		Total:     o.Total.String(),
		Status:    string(o.Status),
		PayStatus: string(o.PayStatus),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice.String(),
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
