package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"codemint.backend/internal/interfaces/http/handlers"
)

func TestRegisterAPIV1Routes_RegistersKeyRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	registerAPIV1Routes(r, routeDeps{
		projectHandler:      &handlers.ProjectHandler{},
		tokenHandler:        &handlers.TokenHandler{},
		accountHandler:      &handlers.AccountHandler{},
		flowHandler:         &handlers.FlowHandler{},
		notificationHandler: &handlers.NotificationHandler{},
		pinHandler:          &handlers.PinHandler{},
	})

	expects := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/projects"},
		{"GET", "/api/v1/projects/curated"},
		{"GET", "/api/v1/projects/:id"},
		{"GET", "/api/v1/projects/:id/tokens"},
		{"POST", "/api/v1/projects"},
		{"POST", "/api/v1/projects/:id/mint"},
		{"GET", "/api/v1/tokens"},
		{"GET", "/api/v1/tokens/:id"},
		{"GET", "/api/v1/accounts/:address/tokens"},
		{"GET", "/api/v1/flows/:id"},
		{"DELETE", "/api/v1/flows/:id"},
		{"GET", "/api/v1/notifications"},
		{"DELETE", "/api/v1/notifications/:id"},
		{"POST", "/api/v1/ipfs/pin-file"},
		{"POST", "/api/v1/ipfs/pin-dir"},
		{"DELETE", "/api/v1/ipfs/unpin/:cid"},
		{"GET", "/api/v1/pins"},
	}

	routes := r.Routes()
	for _, e := range expects {
		found := false
		for _, route := range routes {
			if route.Method == e.method && route.Path == e.path {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("route %s %s not registered", e.method, e.path)
		}
	}
}

func TestApplyCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	applyCORSMiddleware(r)
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	// with origin
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow-origin: %s", got)
	}

	// options preflight
	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRegisterHealthRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerHealthRoute(r)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "codemint-backend" {
		t.Fatalf("unexpected health payload: %+v", body)
	}
}

func TestRegisterMetricsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerMetricsRoute(r)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
