package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tdhoang/stock-ledger/internal/core/domain"
	"github.com/tdhoang/stock-ledger/internal/core/service"
)

type HTTPHandler struct {
	ledger  *service.LedgerService
	catalog *service.CatalogService
}

func NewHTTPHandler(ledger *service.LedgerService, catalog *service.CatalogService) *HTTPHandler {
	return &HTTPHandler{ledger: ledger, catalog: catalog}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/api/organizations", h.CreateOrganization)
	mux.HandleFunc("/api/products", h.CreateProduct)
	mux.HandleFunc("/api/transactions", h.Transactions)
	mux.HandleFunc("/api/stock", h.Stock)
	mux.HandleFunc("/api/reconcile", h.Reconcile)
}

type createOrganizationRequest struct {
	Name string `json:"name"`
}

type createProductRequest struct {
	OrganizationID string `json:"organization_id"`
	CategoryID     string `json:"category_id"`
	Name           string `json:"name"`
	BasePrice      int64  `json:"base_price"`
	MinPrice       int64  `json:"min_price"`
	MaxPrice       int64  `json:"max_price"`
}

type applyTransactionRequest struct {
	OrganizationID string `json:"organization_id"`
	ProductID      string `json:"product_id"`
	Type           string `json:"type"`
	Delta          int    `json:"delta"`
	Actor          string `json:"actor"`
}

type transactionResponse struct {
	ID               string    `json:"id"`
	OrganizationID   string    `json:"organization_id"`
	ProductID        string    `json:"product_id"`
	Type             string    `json:"type"`
	Delta            int       `json:"delta"`
	ResultingBalance int       `json:"resulting_balance"`
	Actor            string    `json:"actor"`
	CreatedAt        time.Time `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toTransactionResponse(t domain.InventoryTransaction) transactionResponse {
	return transactionResponse{
		ID:               t.ID,
		OrganizationID:   t.OrganizationID,
		ProductID:        t.ProductID,
		Type:             string(t.Type),
		Delta:            t.Delta,
		ResultingBalance: t.ResultingBalance,
		Actor:            t.Actor,
		CreatedAt:        t.CreatedAt,
	}
}

func (h *HTTPHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	org, err := h.catalog.CreateOrganization(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, org)
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), req.OrganizationID, req.CategoryID,
		req.Name, req.BasePrice, req.MinPrice, req.MaxPrice)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

func (h *HTTPHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.applyTransaction(w, r)
	case http.MethodGet:
		h.listTransactions(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *HTTPHandler) applyTransaction(w http.ResponseWriter, r *http.Request) {
	var req applyTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if req.OrganizationID == "" || req.ProductID == "" || req.Actor == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing required fields"})
		return
	}

	applied, err := h.ledger.Apply(r.Context(), req.OrganizationID, req.ProductID,
		domain.TransactionType(req.Type), req.Delta, req.Actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(*applied))
}

func (h *HTTPHandler) listTransactions(w http.ResponseWriter, r *http.Request) {
	orgID := r.URL.Query().Get("organization_id")
	productID := r.URL.Query().Get("product_id")
	if orgID == "" || productID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing required fields"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	history, err := h.ledger.History(r.Context(), orgID, productID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	list := make([]transactionResponse, 0, len(history))
	for _, t := range history {
		list = append(list, toTransactionResponse(t))
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *HTTPHandler) Stock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orgID := r.URL.Query().Get("organization_id")
	productID := r.URL.Query().Get("product_id")
	if orgID == "" || productID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing required fields"})
		return
	}

	quantity, err := h.ledger.CurrentQuantity(r.Context(), orgID, productID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"organization_id": orgID,
		"product_id":      productID,
		"quantity":        quantity,
	})
}

func (h *HTTPHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orgID := r.URL.Query().Get("organization_id")
	productID := r.URL.Query().Get("product_id")
	if orgID == "" || productID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing required fields"})
		return
	}

	report, err := h.ledger.Reconcile(r.Context(), orgID, productID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		message = "not found"
	case errors.Is(err, domain.ErrInvalidOperation):
		status = http.StatusBadRequest
		message = "invalid operation"
	case errors.Is(err, domain.ErrInsufficientStock):
		status = http.StatusConflict
		message = "insufficient stock"
	case errors.Is(err, domain.ErrStorage):
		// All-or-nothing commit: nothing partial exists, safe to retry.
		status = http.StatusServiceUnavailable
		message = "storage unavailable, retry"
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
