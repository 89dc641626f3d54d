package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hypermart-dashboard/internal/config"
	"hypermart-dashboard/internal/errors"
	"hypermart-dashboard/internal/models"
	"hypermart-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDashboard(t *testing.T) *services.Dashboard {
	t.Helper()
	d := services.NewDashboard(config.DatasetConfig{Currency: "AED"}, testLogger())
	d.SetData([]models.Transaction{
		{Date: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), Amount: 100, Department: "Grocery", Nationality: "Indian", Age: 34, City: "Dubai", Zone: "Deira", Channel: "Online", Product: "Rice"},
		{Date: time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), Amount: 50, Department: "Fashion", Nationality: "Filipino", Age: 27, City: "Abu Dhabi", Zone: "Khalidiya", Channel: "Offline", Product: "Shirt"},
		{Date: time.Date(2023, 2, 6, 0, 0, 0, 0, time.UTC), Amount: 75, Department: "Grocery", Nationality: "Emirati", Age: 52, City: "Dubai", Zone: "Marina", Channel: "Offline", Product: "Juice"},
	})
	return d
}

func newTestAPI(t *testing.T) *APIHandlers {
	t.Helper()
	return NewAPIHandlers(testDashboard(t), testLogger())
}

func decodeSuccess(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data    map[string]any `json:"data"`
		Success bool           `json:"success"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success {
		t.Fatal("success = false, want true")
	}
	return envelope.Data
}

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantEmpty bool
		wantDims  int
		wantAge   bool
	}{
		{"no parameters", "", true, 0, false},
		{"single dimension", "department=Grocery", false, 1, false},
		{"repeatable dimension", "department=Grocery&department=Fashion", false, 1, false},
		{"multiple dimensions", "department=Grocery&city=Dubai", false, 2, false},
		{"age range", "age_min=18&age_max=65", false, 0, true},
		{"age min only", "age_min=30", false, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/overview?"+tt.query, nil)
			f, err := ParseFilters(r)
			if err != nil {
				t.Fatalf("ParseFilters() error = %v", err)
			}
			if f.IsEmpty() != tt.wantEmpty {
				t.Errorf("IsEmpty() = %v, want %v", f.IsEmpty(), tt.wantEmpty)
			}
			if len(f.Dimensions) != tt.wantDims {
				t.Errorf("got %d dimensions, want %d", len(f.Dimensions), tt.wantDims)
			}
			if f.FilterAge != tt.wantAge {
				t.Errorf("FilterAge = %v, want %v", f.FilterAge, tt.wantAge)
			}
		})
	}
}

func TestParseFilters_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric age_min", "age_min=abc"},
		{"negative age_max", "age_max=-3"},
		{"min above max", "age_min=40&age_max=20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/overview?"+tt.query, nil)
			_, err := ParseFilters(r)
			if !errors.IsCode(err, errors.CodeBadRequest) {
				t.Errorf("error = %v, want BAD_REQUEST", err)
			}
		})
	}
}

func TestParseFilters_AgeDefaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/overview?age_min=30", nil)
	f, err := ParseFilters(r)
	if err != nil {
		t.Fatalf("ParseFilters() error = %v", err)
	}
	if f.AgeMin != 30 || f.AgeMax != maxFilterAge {
		t.Errorf("age range = %d..%d, want 30..%d", f.AgeMin, f.AgeMax, maxFilterAge)
	}
}

func TestHandleOverview(t *testing.T) {
	h := newTestAPI(t)
	w := httptest.NewRecorder()
	h.HandleOverview(w, httptest.NewRequest(http.MethodGet, "/api/overview", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("Cache-Control = %q", cc)
	}

	data := decodeSuccess(t, w)
	if data["total_revenue"] != 225.0 {
		t.Errorf("total_revenue = %v, want 225", data["total_revenue"])
	}
	if data["orders"] != 3.0 {
		t.Errorf("orders = %v, want 3", data["orders"])
	}
}

func TestHandleOverview_Filtered(t *testing.T) {
	h := newTestAPI(t)
	w := httptest.NewRecorder()
	h.HandleOverview(w, httptest.NewRequest(http.MethodGet, "/api/overview?department=Grocery", nil))

	data := decodeSuccess(t, w)
	if data["total_revenue"] != 175.0 {
		t.Errorf("total_revenue = %v, want 175", data["total_revenue"])
	}
}

func TestHandleOverview_BadAgeParam(t *testing.T) {
	h := newTestAPI(t)
	w := httptest.NewRecorder()
	h.HandleOverview(w, httptest.NewRequest(http.MethodGet, "/api/overview?age_min=abc", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var envelope errors.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Success {
		t.Error("success = true, want false")
	}
	if envelope.Error.Code != errors.CodeBadRequest {
		t.Errorf("error code = %q, want BAD_REQUEST", envelope.Error.Code)
	}
}

func TestHandleWeekday_SevenBuckets(t *testing.T) {
	h := newTestAPI(t)
	w := httptest.NewRecorder()
	h.HandleWeekday(w, httptest.NewRequest(http.MethodGet, "/api/weekday?city=Atlantis", nil))

	data := decodeSuccess(t, w)
	table, ok := data["table"].([]any)
	if !ok || len(table) != 7 {
		t.Errorf("weekday table = %v, want 7 buckets even with no matches", data["table"])
	}
	if data["warning"] != string(errors.CodeEmptyResult) {
		t.Errorf("warning = %v, want EMPTY_RESULT", data["warning"])
	}
}

func TestHandleMonthlyTrend(t *testing.T) {
	h := newTestAPI(t)
	w := httptest.NewRecorder()
	h.HandleMonthlyTrend(w, httptest.NewRequest(http.MethodGet, "/api/monthly-trend", nil))

	data := decodeSuccess(t, w)
	chart, ok := data["chart"].(map[string]any)
	if !ok {
		t.Fatalf("chart = %v, want a chart descriptor", data["chart"])
	}
	if chart["kind"] != "line" {
		t.Errorf("chart kind = %v, want line", chart["kind"])
	}
	if data["insight"] == "" {
		t.Error("insight should not be empty")
	}
}

func TestHandleAOV(t *testing.T) {
	h := newTestAPI(t)
	w := httptest.NewRecorder()
	h.HandleAOV(w, httptest.NewRequest(http.MethodGet, "/api/aov", nil))

	data := decodeSuccess(t, w)
	if _, ok := data["by_nationality"]; !ok {
		t.Error("payload should hold the nationality segmentation")
	}
	if _, ok := data["by_age_band"]; !ok {
		t.Error("payload should hold the age-band segmentation")
	}
}

func TestHandleDimensions(t *testing.T) {
	h := newTestAPI(t)
	w := httptest.NewRecorder()
	h.HandleDimensions(w, httptest.NewRequest(http.MethodGet, "/api/dimensions", nil))

	data := decodeSuccess(t, w)
	depts, ok := data["departments"].([]any)
	if !ok || len(depts) != 3 {
		t.Errorf("departments = %v, want 3 values", data["departments"])
	}
	if data["age_min"] != 27.0 || data["age_max"] != 52.0 {
		t.Errorf("age range = %v..%v, want 27..52", data["age_min"], data["age_max"])
	}
}

func TestHandleOverview_NotLoaded(t *testing.T) {
	d := services.NewDashboard(config.DatasetConfig{}, testLogger())
	h := NewAPIHandlers(d, testLogger())

	w := httptest.NewRecorder()
	h.HandleOverview(w, httptest.NewRequest(http.MethodGet, "/api/overview", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestAPI(t)
	w := httptest.NewRecorder()
	h.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	data := decodeSuccess(t, w)
	if data["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", data["status"])
	}
}

func TestHandleStats(t *testing.T) {
	h := newTestAPI(t)
	w := httptest.NewRecorder()
	h.HandleStats(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	data := decodeSuccess(t, w)
	if data["loaded"] != true {
		t.Errorf("loaded = %v, want true", data["loaded"])
	}
	if data["record_count"] != 3.0 {
		t.Errorf("record_count = %v, want 3", data["record_count"])
	}
}
