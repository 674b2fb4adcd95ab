package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/storefront-cart/api/controllers"
	"github.com/angelmondragon/storefront-cart/api/middleware"
	"github.com/angelmondragon/storefront-cart/internal/cart"
	"github.com/angelmondragon/storefront-cart/internal/sessions"
	"github.com/angelmondragon/storefront-cart/internal/storage"
	"github.com/angelmondragon/storefront-cart/pkg/config"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
	"github.com/angelmondragon/storefront-cart/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *sessions.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	registry, err := sessions.NewRegistry(sessions.Params{
		KV:        storage.NewMemory(),
		KeyPrefix: "cart-storage",
		Store:     cart.Options{Metrics: metrics.NewCartMetrics(reg)},
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	t.Cleanup(func() { _ = registry.Close(context.Background()) })

	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	router := NewRouter(cfg, logger.Nop(), registry, reg, map[string]controllers.Pinger{"storage": stubPinger{}})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, registry
}

func do(t *testing.T, method, url, session, body string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, url, nil)
	} else {
		req, err = http.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if session != "" {
		req.Header.Set(middleware.SessionHeader, session)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		if resp := do(t, http.MethodGet, srv.URL+path, "", ""); resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.StatusCode)
		}
	}
}

func TestAnonymousReadsDoNotOpenCarts(t *testing.T) {
	srv, registry := newTestServer(t)

	for i := 0; i < 200; i++ {
		resp := do(t, http.MethodGet, srv.URL+"/api/v1/cart", "", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.StatusCode)
		}
	}
	if n := registry.Len(); n != 0 {
		t.Fatalf("anonymous reads opened %d carts", n)
	}

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/cart/items", "",
		`{"product":{"id":"tee","name":"Tee","price":1100},"quantity":1}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.StatusCode)
	}
	if n := registry.Len(); n != 1 {
		t.Fatalf("expected the first add to open one cart, got %d", n)
	}
}

func TestCartRoutesKeepStatePerSession(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/cart", "", "")
	session := resp.Header.Get(middleware.SessionHeader)
	if session == "" {
		t.Fatalf("expected minted session header")
	}

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/cart/items", session,
		`{"product":{"id":"tee","name":"Tee","price":1100},"quantity":1}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/cart/coupon", session, `{"code":"save10"}`)
	var coupon struct {
		Data struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			Cart    struct {
				Items []struct {
					ID string `json:"id"`
				} `json:"items"`
				Summary cart.Summary `json:"summary"`
			} `json:"cart"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&coupon); err != nil {
		t.Fatalf("decode coupon: %v", err)
	}
	if !coupon.Data.Success || coupon.Data.Message != "Coupon SAVE10 applied!" {
		t.Fatalf("unexpected coupon result %+v", coupon.Data)
	}
	if coupon.Data.Cart.Summary.Total != 1100-110+120 {
		t.Fatalf("unexpected total %d", coupon.Data.Cart.Summary.Total)
	}

	itemID := coupon.Data.Cart.Items[0].ID
	resp = do(t, http.MethodPost, srv.URL+"/api/v1/cart/items/"+itemID+"/save", session, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save for later: expected 200 got %d", resp.StatusCode)
	}

	other := do(t, http.MethodGet, srv.URL+"/api/v1/cart", "another-shopper", "")
	var envelope struct {
		Data struct {
			Items      []json.RawMessage `json:"items"`
			SavedItems []json.RawMessage `json:"savedItems"`
		} `json:"data"`
	}
	if err := json.NewDecoder(other.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(envelope.Data.Items) != 0 || len(envelope.Data.SavedItems) != 0 {
		t.Fatalf("sessions must not share carts")
	}
}
