package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-cart/pkg/logger"
)

func TestSessionMintsAndEchoesID(t *testing.T) {
	var seen string
	var minted bool
	handler := Session(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
		minted = SessionMinted(r.Context())
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" {
		t.Fatal("expected a minted session id")
	}
	if got := resp.Header().Get(SessionHeader); got != seen {
		t.Fatalf("expected echoed session %q, got %q", seen, got)
	}
	if !minted {
		t.Fatal("expected generated session to be flagged as minted")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "shopper_42")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if seen != "shopper_42" || minted {
		t.Fatalf("expected client session id, got %q minted=%v", seen, minted)
	}
}

func TestSessionRejectsMalformedID(t *testing.T) {
	handler := Session(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, id := range []string{"../etc", "a:b", strings.Repeat("x", maxSessionIDLen+1)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(SessionHeader, id)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%q: expected 400 got %d", id, resp.Code)
		}
	}
}

func TestRecovererReturns500(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	handler := Recoverer(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	if !bytes.Contains(buf.Bytes(), []byte("panic.recovered")) {
		t.Fatalf("expected panic log, got %s", buf.String())
	}
}

func TestRequestIDAndLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	handler := RequestID(logg)(Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/brew", nil)
	req.Header.Set(requestIDHeader, "req-7")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Header().Get(requestIDHeader) != "req-7" {
		t.Fatalf("request id not echoed")
	}
	for _, want := range []string{`"request_id":"req-7"`, `"status":418`, `"path":"/brew"`} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Fatalf("expected %s in log, got %s", want, buf.String())
		}
	}
}
