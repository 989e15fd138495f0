package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stocktrackhq/stocktrack-backend/internal/api/middleware"
	"github.com/stocktrackhq/stocktrack-backend/internal/service"
	"github.com/stocktrackhq/stocktrack-backend/internal/testutil"
)

func registerInput() service.RegisterInput {
	return service.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Sup3rSecret",
	}
}

// TestRequireAuth tests the bearer-token gate.
//
// WHY: Every authenticated route sits behind this middleware; a missing or
// bad token must stop the request before the handler runs, and a good one
// must surface the user in the context.
func TestRequireAuth(t *testing.T) {
	t.Run("valid token reaches the handler with the user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		auth := testutil.NewTestAuthService(t, db)
		if _, err := auth.Register(context.Background(), registerInput()); err != nil {
			t.Fatalf("Register() returned unexpected error: %v", err)
		}
		user, token, err := auth.Login(context.Background(), "alice@example.com", "Sup3rSecret")
		if err != nil {
			t.Fatalf("Login() returned unexpected error: %v", err)
		}

		var reached bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			got, ok := middleware.UserFrom(r.Context())
			if !ok || got.ID != user.ID {
				t.Errorf("Expected user %s in context, got %+v", user.ID, got)
			}
		})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		middleware.RequireAuth(auth)(next).ServeHTTP(rec, req)

		if !reached {
			t.Fatalf("Expected the handler to run, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("missing header is rejected with 401", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		auth := testutil.NewTestAuthService(t, db)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		rec := httptest.NewRecorder()
		middleware.RequireAuth(auth)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("Handler must not run without a token")
		})).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token is rejected with 401", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		auth := testutil.NewTestAuthService(t, db)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		middleware.RequireAuth(auth)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("Handler must not run with a bad token")
		})).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("lowercase bearer scheme is accepted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		auth := testutil.NewTestAuthService(t, db)
		if _, err := auth.Register(context.Background(), registerInput()); err != nil {
			t.Fatalf("Register() returned unexpected error: %v", err)
		}
		_, token, err := auth.Login(context.Background(), "alice@example.com", "Sup3rSecret")
		if err != nil {
			t.Fatalf("Login() returned unexpected error: %v", err)
		}

		var reached bool
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "bearer "+token)
		rec := httptest.NewRecorder()
		middleware.RequireAuth(auth)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			reached = true
		})).ServeHTTP(rec, req)

		if !reached {
			t.Errorf("Expected the handler to run, got %d", rec.Code)
		}
	})
}
