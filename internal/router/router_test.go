package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/stockify/stockify-server/internal/handler"
	"github.com/stockify/stockify-server/internal/middleware"
	"github.com/stockify/stockify-server/internal/repository"
	"github.com/stockify/stockify-server/internal/service"
)

func newTestServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := repository.NewUserRepo(db)
	products := repository.NewProductRepo(db)
	expenses := repository.NewExpenseRepo(db)
	sync := service.NewSyncClient("", "")

	passthrough := func(next echo.HandlerFunc) echo.HandlerFunc { return next }

	e := echo.New()
	RegisterRoutes(e)
	RegisterAPI(e, Deps{
		SyncSecret: "shhh",
		Users:      handler.NewUserHandler(users, sync, ""),
		Webhook:    handler.NewWebhookHandler("", users, sync, ""),
		Products:   handler.NewProductHandler(products),
		Expenses:   handler.NewExpenseHandler(expenses),
		Dashboard:  handler.NewDashboardHandler(products, expenses, users),
		Auth:       middleware.RequireAuth("sk_test", nil, nil),
		Cache:      passthrough,
	})
	return e, mock
}

func TestHealthzIsOpen(t *testing.T) {
	e, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRegisteredRoutesRejectUnauthenticated(t *testing.T) {
	e, mock := newTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/products"},
		{http.MethodGet, "/expenses"},
		{http.MethodGet, "/dashboard"},
		{http.MethodGet, "/users"},
		{http.MethodGet, "/users/me"},
		{http.MethodDelete, "/users/user_1"},
		{http.MethodPatch, "/users/user_1/role"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			req := httptest.NewRequest(r.method, r.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
	// No route may have reached the store.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSyncRouteRejectsWrongSecret(t *testing.T) {
	e, mock := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	req.Header.Set("x-sync-secret", "wrong")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
