package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stocktrackhq/stocktrack-backend/internal/api/handlers"
	"github.com/stocktrackhq/stocktrack-backend/internal/testutil"
)

// TestTradingHandler_Buy tests the buy endpoint's status mapping.
//
// WHY: Clients key off status codes; a validation miss must be 400 and a
// successful trade 201 with the holding in the body.
func TestTradingHandler_Buy(t *testing.T) {
	t.Run("valid buy returns 201", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db, testutil.NewStaticProvider())
		handler := handlers.NewTradingHandler(svc)
		user := testutil.NewUser().Build(t, db)
		portfolio := testutil.NewPortfolio(user.ID).Default().Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/trading/buy", map[string]interface{}{
			"portfolioId": portfolio.ID,
			"symbol":      "600000",
			"quantity":    100,
			"price":       "10.50",
		})
		rec := httptest.NewRecorder()
		handler.Buy(rec, testutil.AsUser(req, user))

		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var body struct {
			Holding *struct {
				Quantity int64 `json:"quantity"`
			} `json:"holding"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if body.Holding == nil || body.Holding.Quantity != 100 {
			t.Errorf("Unexpected holding in response: %s", rec.Body.String())
		}
	})

	t.Run("non-positive quantity returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db, testutil.NewStaticProvider())
		handler := handlers.NewTradingHandler(svc)
		user := testutil.NewUser().Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/trading/buy", map[string]interface{}{
			"symbol":   "600000",
			"quantity": 0,
			"price":    "10.50",
		})
		rec := httptest.NewRecorder()
		handler.Buy(rec, testutil.AsUser(req, user))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown body fields return 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db, testutil.NewStaticProvider())
		handler := handlers.NewTradingHandler(svc)
		user := testutil.NewUser().Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/trading/buy", map[string]interface{}{
			"symbol":   "600000",
			"quantity": 10,
			"price":    "10.50",
			"side":     "buy",
		})
		rec := httptest.NewRecorder()
		handler.Buy(rec, testutil.AsUser(req, user))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

// TestTradingHandler_Sell tests the sell endpoint's status mapping.
//
// WHY: Over-selling is a conflict with current position state, not a bad
// request; the distinction matters to retrying clients.
func TestTradingHandler_Sell(t *testing.T) {
	t.Run("over-sell returns 409", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db, testutil.NewStaticProvider())
		handler := handlers.NewTradingHandler(svc)
		user := testutil.NewUser().Build(t, db)
		portfolio := testutil.NewPortfolio(user.ID).Default().Build(t, db)
		testutil.NewHolding(portfolio.ID).WithSymbol("600000").WithPosition(10, "10.00").Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/trading/sell", map[string]interface{}{
			"portfolioId": portfolio.ID,
			"symbol":      "600000",
			"quantity":    50,
			"price":       "12.00",
		})
		rec := httptest.NewRecorder()
		handler.Sell(rec, testutil.AsUser(req, user))

		if rec.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("selling a symbol never held returns 404", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db, testutil.NewStaticProvider())
		handler := handlers.NewTradingHandler(svc)
		user := testutil.NewUser().Build(t, db)
		portfolio := testutil.NewPortfolio(user.ID).Default().Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/trading/sell", map[string]interface{}{
			"portfolioId": portfolio.ID,
			"symbol":      "600000",
			"quantity":    10,
			"price":       "12.00",
		})
		rec := httptest.NewRecorder()
		handler.Sell(rec, testutil.AsUser(req, user))

		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

// TestTradingHandler_Transactions tests ledger listing over HTTP.
func TestTradingHandler_Transactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTradingService(t, db, testutil.NewStaticProvider())
	handler := handlers.NewTradingHandler(svc)
	user := testutil.NewUser().Build(t, db)
	portfolio := testutil.NewPortfolio(user.ID).Default().Build(t, db)

	buyReq := testutil.NewJSONRequest(t, http.MethodPost, "/api/trading/buy", map[string]interface{}{
		"portfolioId": portfolio.ID,
		"symbol":      "600000",
		"quantity":    10,
		"price":       "10.00",
	})
	rec := httptest.NewRecorder()
	handler.Buy(rec, testutil.AsUser(buyReq, user))
	if rec.Code != http.StatusCreated {
		t.Fatalf("Buy setup failed with %d: %s", rec.Code, rec.Body.String())
	}

	listReq := testutil.NewJSONRequest(t, http.MethodGet, "/api/trading/transactions?symbol=600000", nil)
	rec = httptest.NewRecorder()
	handler.Transactions(rec, testutil.AsUser(listReq, user))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var transactions []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &transactions); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(transactions) != 1 {
		t.Errorf("Expected 1 transaction, got %d", len(transactions))
	}
}

// TestTradingHandler_Stats tests the stats endpoint's period validation.
func TestTradingHandler_Stats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTradingService(t, db, testutil.NewStaticProvider())
	handler := handlers.NewTradingHandler(svc)
	user := testutil.NewUser().Build(t, db)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/api/trading/stats?period=decade", nil)
	rec := httptest.NewRecorder()
	handler.Stats(rec, testutil.AsUser(req, user))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
