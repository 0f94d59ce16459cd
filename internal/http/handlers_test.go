package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"securevision/internal/bot"
	"securevision/internal/domain"
	"securevision/internal/repository"
	"securevision/internal/service"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	store := repository.NewMemoryStore()
	catalogRepo := repository.NewMemoryCatalog(store)
	ordersRepo := repository.NewMemoryOrders(store)
	tasksRepo := repository.NewMemoryTasks(store)
	tx := repository.NewMemoryTx(store)
	if err := repository.SeedCatalog(context.Background(), catalogRepo); err != nil {
		t.Fatal(err)
	}

	accountsSvc := service.NewAccountService(store)
	ledgerSvc := service.NewLedgerService(store, tx)
	catalogSvc := service.NewCatalogService(catalogRepo)
	checkoutSvc := service.NewCheckoutService(store, catalogRepo, ordersRepo, tx)
	paymentsSvc := service.NewPaymentService(store, ledgerSvc)
	tasksSvc := service.NewTaskService(tasksRepo)
	b := bot.New(accountsSvc, catalogSvc, checkoutSvc, paymentsSvc)
	return NewServer(b, accountsSvc, catalogSvc, checkoutSvc, paymentsSvc, tasksSvc)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func TestEventFlow(t *testing.T) {
	s := setupServer(t)
	// регистрация
	w := doJSON(t, s, http.MethodPost, "/api/v1/events", map[string]any{
		"external_id": 1001, "name": "Оксана", "kind": "command", "text": "/start",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("start code %v", w.Code)
	}
	var reply bot.Reply
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatal(err)
	}
	if len(reply.Options) == 0 {
		t.Fatalf("expected menu options")
	}

	// пополнение через имитацию
	w = doJSON(t, s, http.MethodPost, "/api/v1/events", map[string]any{
		"external_id": 1001, "kind": "callback", "data": "simulate_1001_100",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("simulate code %v", w.Code)
	}

	// аккаунт виден по REST
	w = doJSON(t, s, http.MethodGet, "/api/v1/accounts/1001", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("account code %v", w.Code)
	}
	var a domain.Account
	if err := json.Unmarshal(w.Body.Bytes(), &a); err != nil {
		t.Fatal(err)
	}
	if a.Balance != 100 {
		t.Fatalf("balance expected 100, got %v", a.Balance)
	}
}

func TestCatalogSearchQuery(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/v1/catalog?min_cameras=4&min_area=150&max_price=400", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("catalog code %v", w.Code)
	}
	var items []domain.CatalogItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Price != 350 {
		t.Fatalf("expected single 350 item, got %+v", items)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/catalog/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("item code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/catalog/999", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", w.Code)
	}
}

func TestSimulatePaymentEndpoint(t *testing.T) {
	s := setupServer(t)
	// неизвестный аккаунт
	w := doJSON(t, s, http.MethodPost, "/api/v1/payments/simulate", map[string]any{
		"external_id": 42, "amount": 20,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", w.Code)
	}

	_ = doJSON(t, s, http.MethodPost, "/api/v1/events", map[string]any{
		"external_id": 42, "kind": "command", "text": "/register",
	})
	w = doJSON(t, s, http.MethodPost, "/api/v1/payments/simulate", map[string]any{
		"external_id": 42, "amount": 20,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("simulate code %v", w.Code)
	}

	// нулевая сумма
	w = doJSON(t, s, http.MethodPost, "/api/v1/payments/simulate", map[string]any{
		"external_id": 42, "amount": 0,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
}

func TestOrdersEndpoint(t *testing.T) {
	s := setupServer(t)
	post := func(body map[string]any) {
		t.Helper()
		w := doJSON(t, s, http.MethodPost, "/api/v1/events", body)
		if w.Code != http.StatusOK {
			t.Fatalf("event code %v", w.Code)
		}
	}
	post(map[string]any{"external_id": 7, "kind": "command", "text": "/start"})
	post(map[string]any{"external_id": 7, "kind": "callback", "data": "simulate_7_500"})
	post(map[string]any{"external_id": 7, "kind": "callback", "data": "select_5"})
	post(map[string]any{"external_id": 7, "kind": "text", "text": "+380501234567"})
	post(map[string]any{"external_id": 7, "kind": "callback", "data": "confirm"})

	w := doJSON(t, s, http.MethodGet, "/api/v1/accounts/7/orders", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("orders code %v", w.Code)
	}
	var orders []domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &orders); err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || orders[0].TotalPrice != 80 {
		t.Fatalf("orders: %+v", orders)
	}
}

func TestTaskFlow(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/v1/tasks", map[string]any{
		"title": "Перевірити камери", "description": "офіс",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/tasks/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodPut, "/api/v1/tasks/1", map[string]any{
		"title": "Перевірити камери", "description": "склад",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/tasks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodDelete, "/api/v1/tasks/1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete code %v", w.Code)
	}
}

func TestHTTP_BadRequests(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/v1/tasks", map[string]any{"title": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/tasks/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/accounts/999", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", w.Code)
	}
}
