package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/tdhoang/stock-ledger/internal/core/domain"
	"github.com/tdhoang/stock-ledger/internal/core/service"
)

type stubRepo struct {
	mu           sync.Mutex
	inventories  map[string]int
	transactions []domain.InventoryTransaction
	products     map[string]domain.Product
	seq          int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		inventories: make(map[string]int),
		products:    make(map[string]domain.Product),
	}
}

func (s *stubRepo) ApplyTransaction(ctx context.Context, t domain.InventoryTransaction) (*domain.InventoryTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.inventories[t.OrganizationID+":"+t.ProductID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	balance := current + t.Delta
	if balance < 0 {
		return nil, domain.ErrInsufficientStock
	}
	s.seq++
	t.Seq = s.seq
	t.ResultingBalance = balance
	s.inventories[t.OrganizationID+":"+t.ProductID] = balance
	s.transactions = append(s.transactions, t)
	return &t, nil
}

func (s *stubRepo) GetInventory(ctx context.Context, orgID, productID string) (*domain.Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.inventories[orgID+":"+productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Inventory{OrganizationID: orgID, ProductID: productID, Quantity: q}, nil
}

func (s *stubRepo) ListTransactions(ctx context.Context, orgID, productID string, limit, offset int) ([]domain.InventoryTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.InventoryTransaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		t := s.transactions[i]
		if t.OrganizationID == orgID && t.ProductID == productID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubRepo) SumDeltas(ctx context.Context, orgID, productID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := 0
	for _, t := range s.transactions {
		if t.OrganizationID == orgID && t.ProductID == productID {
			sum += t.Delta
		}
	}
	return sum, nil
}

func (s *stubRepo) ListProductIDs(ctx context.Context, orgID string) ([]string, error) {
	return nil, nil
}

func (s *stubRepo) CreateOrganization(ctx context.Context, org domain.Organization) error {
	return nil
}

func (s *stubRepo) CreateProduct(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	s.inventories[p.OrganizationID+":"+p.ID] = 0
	return nil
}

func (s *stubRepo) GetProduct(ctx context.Context, orgID, productID string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok || p.OrganizationID != orgID {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

type nopCache struct{}

func (nopCache) GetStock(ctx context.Context, orgID, productID string) (int, bool, error) {
	return 0, false, nil
}
func (nopCache) SetStock(ctx context.Context, orgID, productID string, quantity int) error {
	return nil
}
func (nopCache) RefreshStock(ctx context.Context, orgID, productID string, quantity int) error {
	return nil
}
func (nopCache) DeleteStock(ctx context.Context, orgID, productID string) error {
	return nil
}

func newTestServer(repo *stubRepo) *httptest.Server {
	logger := zap.NewNop()
	ledger := service.NewLedgerService(repo, nopCache{}, logger)
	catalog := service.NewCatalogService(repo, logger)

	mux := http.NewServeMux()
	NewHTTPHandler(ledger, catalog).Register(mux)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestApplyTransactionEndpoint_Success(t *testing.T) {
	repo := newStubRepo()
	repo.inventories["org-1:prod-1"] = 10
	srv := newTestServer(repo)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/transactions", applyTransactionRequest{
		OrganizationID: "org-1",
		ProductID:      "prod-1",
		Type:           "SALE",
		Delta:          -5,
		Actor:          "user-1",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var tx transactionResponse
	json.NewDecoder(resp.Body).Decode(&tx)
	if tx.ResultingBalance != 5 {
		t.Errorf("expected balance 5, got %d", tx.ResultingBalance)
	}
	if tx.ID == "" {
		t.Error("expected transaction id")
	}
}

func TestApplyTransactionEndpoint_StatusMapping(t *testing.T) {
	repo := newStubRepo()
	repo.inventories["org-1:prod-1"] = 2
	srv := newTestServer(repo)
	defer srv.Close()

	cases := []struct {
		name       string
		req        applyTransactionRequest
		wantStatus int
	}{
		{
			"sign mismatch",
			applyTransactionRequest{"org-1", "prod-1", "SALE", 5, "user-1"},
			http.StatusBadRequest,
		},
		{
			"insufficient stock",
			applyTransactionRequest{"org-1", "prod-1", "SALE", -3, "user-1"},
			http.StatusConflict,
		},
		{
			"unknown product",
			applyTransactionRequest{"org-1", "missing", "PURCHASE", 1, "user-1"},
			http.StatusNotFound,
		},
		{
			"cross tenant",
			applyTransactionRequest{"org-2", "prod-1", "PURCHASE", 1, "user-1"},
			http.StatusNotFound,
		},
		{
			"zero delta",
			applyTransactionRequest{"org-1", "prod-1", "ADJUSTMENT", 0, "user-1"},
			http.StatusBadRequest,
		},
		{
			"missing actor",
			applyTransactionRequest{"org-1", "prod-1", "SALE", -1, ""},
			http.StatusBadRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/transactions", tc.req)
			resp.Body.Close()
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestStockEndpoint(t *testing.T) {
	repo := newStubRepo()
	repo.inventories["org-1:prod-1"] = 7
	srv := newTestServer(repo)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/stock?organization_id=org-1&product_id=prod-1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if body["quantity"].(float64) != 7 {
		t.Errorf("expected quantity 7, got %v", body["quantity"])
	}
}

func TestHistoryEndpoint_NewestFirst(t *testing.T) {
	repo := newStubRepo()
	repo.inventories["org-1:prod-1"] = 0
	srv := newTestServer(repo)
	defer srv.Close()

	for _, step := range []applyTransactionRequest{
		{"org-1", "prod-1", "INITIAL", 10, "user-1"},
		{"org-1", "prod-1", "PURCHASE", 5, "user-1"},
		{"org-1", "prod-1", "SALE", -3, "user-1"},
	} {
		resp := postJSON(t, srv.URL+"/api/transactions", step)
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/api/transactions?organization_id=org-1&product_id=prod-1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var list []transactionResponse
	json.NewDecoder(resp.Body).Decode(&list)

	if len(list) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(list))
	}
	if list[0].Type != "SALE" || list[2].Type != "INITIAL" {
		t.Errorf("expected newest first, got %s .. %s", list[0].Type, list[2].Type)
	}
}

func TestReconcileEndpoint(t *testing.T) {
	repo := newStubRepo()
	repo.inventories["org-1:prod-1"] = 0
	srv := newTestServer(repo)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/transactions", applyTransactionRequest{
		"org-1", "prod-1", "INITIAL", 10, "user-1",
	})
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/reconcile?organization_id=org-1&product_id=prod-1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var report service.ReconcileReport
	json.NewDecoder(resp.Body).Decode(&report)
	if !report.Consistent {
		t.Error("expected consistent report")
	}
	if report.Quantity != 10 || report.DeltaSum != 10 {
		t.Errorf("expected 10/10, got %d/%d", report.Quantity, report.DeltaSum)
	}
}

func TestCreateProductEndpoint(t *testing.T) {
	repo := newStubRepo()
	srv := newTestServer(repo)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/products", createProductRequest{
		OrganizationID: "org-1",
		Name:           "Widget",
		BasePrice:      1000,
		MinPrice:       800,
		MaxPrice:       1200,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var p domain.Product
	json.NewDecoder(resp.Body).Decode(&p)

	// The seeded inventory row must be immediately usable by the ledger.
	if repo.inventories["org-1:"+p.ID] != 0 {
		t.Error("expected zero-quantity inventory row for new product")
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(newStubRepo())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
