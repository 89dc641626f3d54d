package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"hypermart-dashboard/internal/config"
	"hypermart-dashboard/internal/models"
	"hypermart-dashboard/internal/server"
	"hypermart-dashboard/internal/services"
)

func newTestDashboardService() *services.Dashboard {
	d := services.NewDashboard(config.DatasetConfig{Currency: "AED"}, slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	d.SetData([]models.Transaction{
		{
			Date:        time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
			Amount:      250.00,
			Department:  "Grocery",
			Category:    "Fresh Food",
			Nationality: "Indian",
			Age:         34,
			City:        "Dubai",
			Zone:        "Deira",
			Channel:     "Online",
			Product:     "Basmati Rice",
		},
		{
			Date:        time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC),
			Amount:      89.50,
			Department:  "Fashion",
			Category:    "Apparel",
			Nationality: "Filipino",
			Age:         27,
			City:        "Abu Dhabi",
			Zone:        "Khalidiya",
			Channel:     "Offline",
			Product:     "T-Shirt",
		},
		{
			Date:        time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC),
			Amount:      120.75,
			Department:  "Electronics",
			Category:    "Audio",
			Nationality: "Emirati",
			Age:         45,
			City:        "Sharjah",
			Zone:        "Al Majaz",
			Channel:     "Online",
			Product:     "Headphones",
		},
	})
	return d
}

func newTestServer() *server.Server {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	templateHandlers := &server.TemplateHandlers{Dashboard: handleDashboard}
	return server.NewServer(newTestDashboardService(), logger, templateHandlers)
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/overview", http.StatusOK, "application/json"},
		{"/api/monthly-trend", http.StatusOK, "application/json"},
		{"/api/channel-split", http.StatusOK, "application/json"},
		{"/api/weekday", http.StatusOK, "application/json"},
		{"/api/geography", http.StatusOK, "application/json"},
		{"/api/aov", http.StatusOK, "application/json"},
		{"/api/segments", http.StatusOK, "application/json"},
		{"/api/top-products", http.StatusOK, "application/json"},
		{"/api/daily", http.StatusOK, "application/json"},
		{"/api/dimensions", http.StatusOK, "application/json"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

// Test filtered JSON API responses end to end
func TestServer_FilteredResponse(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/overview?department=Grocery", nil)
	srv.ServeHTTP(w, r)

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected overview object in response")
	}
	if data["total_revenue"] != 250.0 {
		t.Errorf("total_revenue = %v, want 250 for the Grocery filter", data["total_revenue"])
	}
	if data["orders"] != 1.0 {
		t.Errorf("orders = %v, want 1", data["orders"])
	}
}

// Test Server-Sent Events routes
func TestServer_SSERoutes(t *testing.T) {
	srv := newTestServer()

	sseRoutes := []string{
		"/sse/monthly-trend",
		"/sse/channel-split",
		"/sse/weekday",
		"/sse/geography",
		"/sse/refresh",
	}

	for _, route := range sseRoutes {
		t.Run(route, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", route, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}

			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
			}

			if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Errorf("cache-control = %q, want 'no-cache'", cc)
			}
		})
	}
}

// Test error handling for invalid methods
func TestServer_ErrorHandling(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/overview", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"PATCH", "/api/top-products", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

// Test dashboard shell rendering
func TestDashboardTemplate(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	handleDashboard(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Hypermart Analytics Dashboard") {
		t.Error("dashboard should contain title")
	}

	// Filter widgets and panel targets the SSE handlers patch into
	expectedComponents := []string{
		"data-bind-department",
		"data-bind-nationality",
		"monthly-content",
		"channel-content",
		"weekday-content",
		"geo-content",
	}

	for _, component := range expectedComponents {
		if !strings.Contains(body, component) {
			t.Errorf("dashboard should contain '%s'", component)
		}
	}
}
