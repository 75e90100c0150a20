package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/venkilabels/quality-hub/internal/domain"
	"github.com/venkilabels/quality-hub/internal/metrics"
	"github.com/venkilabels/quality-hub/internal/store"
)

func newTestServer(t *testing.T) (*server, *http.Cookie) {
	t.Helper()

	db := newAuthTestDB(t)
	auth := newAuthService(db, "test-secret")
	if err := auth.ensureAdminUser("admin@venki.com", "secreto"); err != nil {
		t.Fatalf("ensureAdminUser returned error: %v", err)
	}

	st, err := store.New(store.Options{
		Initial: store.Snapshot{
			Materials: []domain.Material{
				{
					ID: "MAT-PAPER-001", Name: "Papel Couche 80g", Type: domain.MaterialPaper,
					UomBase: domain.UomKilogram,
					Pricing: domain.Pricing{Mode: domain.PerKilogram, Price: 2.5},
					BasisWeightGM2: domain.Float64(80), WidthMM: domain.Float64(330),
					Status: "Active",
				},
			},
			ProductionOrders: []domain.ProductionOrder{
				{
					ID: "OP-100", Client: "Nissan", Product: "Etiqueta",
					Quantity: 10, QuantityUnit: "millares",
					OperatorID: "OP-001", MachineID: "MA-P5",
					Status: domain.StatusPendiente,
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("store.New returned error: %v", err)
	}

	srv := &server{auth: auth, store: st}
	cookie := &http.Cookie{Name: sessionCookieName, Value: auth.createSessionValue("admin@venki.com")}
	return srv, cookie
}

func doJSON(t *testing.T, srv *server, cookie *http.Cookie, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	return rec
}

func TestAPIRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, nil, http.MethodGet, "/api/orders", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
}

func TestLoginIssuesSessionCookie(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, nil, http.MethodPost, "/login", `{"email":"admin@venki.com","password":"secreto"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on login, got %d: %s", rec.Code, rec.Body.String())
	}

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("expected a session cookie on successful login")
	}

	rec = doJSON(t, srv, session, http.MethodGet, "/api/orders", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with session, got %d", rec.Code)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, nil, http.MethodPost, "/login", `{"email":"admin@venki.com","password":"incorrecto"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on bad password, got %d", rec.Code)
	}
}

func TestScrapCreateDerivesCost(t *testing.T) {
	srv, cookie := newTestServer(t)

	// 500 g of paper at $2.50/kg is $1.25; the submitted cost is ignored.
	rec := doJSON(t, srv, cookie, http.MethodPost, "/api/scrap",
		`{"orderId":"OP-100","materialId":"MAT-PAPER-001","cause":"Registro Mal","unitCaptured":"g","qty":500,"operatorId":"OP-001","machineId":"MA-P5","cost":999}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating scrap, got %d: %s", rec.Code, rec.Body.String())
	}

	var entry domain.ScrapEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode scrap entry: %v", err)
	}
	if entry.Cost != 1.25 {
		t.Fatalf("expected derived cost 1.25, got %v", entry.Cost)
	}
	if entry.Category != domain.MaterialPaper {
		t.Fatalf("expected category taken from catalog, got %q", entry.Category)
	}

	// Fully attributed scrap also lands in the order's event log.
	order, ok := srv.store.ProductionOrder("OP-100")
	if !ok {
		t.Fatal("order vanished")
	}
	found := false
	for _, e := range order.Events {
		if e.Type == domain.EventScrap && e.ScrapEntryID == entry.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a linked scrap event on the order")
	}
}

func TestScrapCreateUnknownMaterialIs404(t *testing.T) {
	srv, cookie := newTestServer(t)

	rec := doJSON(t, srv, cookie, http.MethodPost, "/api/scrap",
		`{"materialId":"MAT-NOPE","unitCaptured":"m","qty":5}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown material, got %d", rec.Code)
	}
}

func TestOrderStatusTransition(t *testing.T) {
	srv, cookie := newTestServer(t)

	rec := doJSON(t, srv, cookie, http.MethodPost, "/api/orders/OP-100/status",
		`{"status":"En Progreso","actor":"OP-001"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on status change, got %d: %s", rec.Code, rec.Body.String())
	}

	var order domain.ProductionOrder
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.Status != domain.StatusEnProgreso {
		t.Fatalf("expected En Progreso, got %q", order.Status)
	}
	if len(order.Events) == 0 || order.Events[len(order.Events)-1].Type != domain.EventRun {
		t.Fatalf("expected a run event, got %+v", order.Events)
	}
}

func TestOrderEventUpdatesProgress(t *testing.T) {
	srv, cookie := newTestServer(t)

	rec := doJSON(t, srv, cookie, http.MethodPost, "/api/orders/OP-100/events",
		`{"type":"Producción Buena","operatorId":"OP-001","machineId":"MA-P5","quantity":5000,"unit":"labels"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 logging event, got %d: %s", rec.Code, rec.Body.String())
	}

	var order domain.ProductionOrder
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	// Target is 10 millares = 10000 labels, so 5000 good labels is 50%.
	if order.ProgressPercentage != 50 {
		t.Fatalf("expected 50%% progress, got %v", order.ProgressPercentage)
	}
}

func TestTrashLifecycle(t *testing.T) {
	srv, cookie := newTestServer(t)

	rec := doJSON(t, srv, cookie, http.MethodPost, "/api/trash/order/OP-100", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 soft-deleting, got %d", rec.Code)
	}

	rec = doJSON(t, srv, cookie, http.MethodGet, "/api/trash", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing trash, got %d", rec.Code)
	}
	var items []trashItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode trash: %v", err)
	}
	if len(items) != 1 || items[0].ID != "OP-100" || items[0].Type != store.EntityOrder {
		t.Fatalf("unexpected trash contents: %+v", items)
	}
	if items[0].DaysUntilPurge != store.RetentionDays {
		t.Fatalf("expected full retention window, got %d", items[0].DaysUntilPurge)
	}

	rec = doJSON(t, srv, cookie, http.MethodPost, "/api/trash/order/OP-100/restore", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 restoring, got %d", rec.Code)
	}
	order, _ := srv.store.ProductionOrder("OP-100")
	if order.DeletedAt != "" {
		t.Fatalf("expected deletedAt cleared, got %q", order.DeletedAt)
	}

	rec = doJSON(t, srv, cookie, http.MethodPost, "/api/trash/order/OP-100/purge", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 purging, got %d", rec.Code)
	}
	if _, ok := srv.store.ProductionOrder("OP-100"); ok {
		t.Fatal("expected purged order to be gone")
	}

	rec = doJSON(t, srv, cookie, http.MethodPost, "/api/trash/widget/X-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown entity type, got %d", rec.Code)
	}
}

func TestComplianceReportEndpoint(t *testing.T) {
	srv, cookie := newTestServer(t)

	rec := doJSON(t, srv, cookie, http.MethodGet, "/api/reports/compliance?scope=operator&operatorId=OP-001", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for compliance report, got %d", rec.Code)
	}

	var report metrics.ComplianceReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Scope != metrics.ScopeOperator {
		t.Fatalf("expected operator scope, got %q", report.Scope)
	}
	// No good production and no scrap: payout defaults to full.
	if report.Payout.Overall != 1 {
		t.Fatalf("expected overall payout 1, got %v", report.Payout.Overall)
	}
}
