package services

import (
	"sync"
	"testing"
	"time"

	"hypermart-dashboard/internal/config"
	"hypermart-dashboard/internal/dataset"
	"hypermart-dashboard/internal/errors"
	"hypermart-dashboard/internal/models"
)

func newTestDashboard(t *testing.T) *Dashboard {
	t.Helper()
	d := NewDashboard(config.DatasetConfig{Currency: "AED"}, nil)
	d.SetData([]models.Transaction{
		{Date: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), Amount: 100, Department: "Grocery", Nationality: "Indian", Age: 34, City: "Dubai", Zone: "Deira", Channel: "Online", Product: "Rice"},
		{Date: time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), Amount: 50, Department: "Fashion", Nationality: "Filipino", Age: 27, City: "Abu Dhabi", Zone: "Khalidiya", Channel: "Offline", Product: "Shirt"},
		{Date: time.Date(2023, 2, 6, 0, 0, 0, 0, time.UTC), Amount: 75, Department: "Grocery", Nationality: "Emirati", Age: 52, City: "Dubai", Zone: "Marina", Channel: "Offline", Product: "Juice"},
	})
	return d
}

func TestDashboard_NotLoaded(t *testing.T) {
	d := NewDashboard(config.DatasetConfig{}, nil)

	_, err := d.Render(dataset.FilterSet{})
	if !errors.IsCode(err, errors.CodeServiceUnavail) {
		t.Errorf("Render() error = %v, want SERVICE_UNAVAILABLE", err)
	}

	if _, err := d.Overview(dataset.FilterSet{}); !errors.IsCode(err, errors.CodeServiceUnavail) {
		t.Errorf("Overview() error = %v, want SERVICE_UNAVAILABLE", err)
	}

	stats := d.Stats()
	if stats["loaded"] != false {
		t.Errorf("Stats() = %v, want loaded=false", stats)
	}
}

func TestDashboard_Render(t *testing.T) {
	d := newTestDashboard(t)

	payload, err := d.Render(dataset.FilterSet{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if payload.Overview.TotalRevenue != 225 {
		t.Errorf("TotalRevenue = %v, want 225", payload.Overview.TotalRevenue)
	}
	if payload.MatchedRows != 3 || payload.TotalRows != 3 {
		t.Errorf("rows = %d/%d, want 3/3", payload.MatchedRows, payload.TotalRows)
	}
	if got := len(payload.Weekday.Table.([]models.WeekdaySales)); got != 7 {
		t.Errorf("weekday buckets = %d, want 7", got)
	}
	if payload.MonthlyTrend.Chart == nil {
		t.Error("monthly trend should carry a chart")
	}
	if len(payload.Dimensions.Departments) != 3 {
		t.Errorf("departments = %v, want 3", payload.Dimensions.Departments)
	}
}

func TestDashboard_RenderFiltered(t *testing.T) {
	d := newTestDashboard(t)

	f := dataset.FilterSet{}.WithDimension(dataset.FieldDepartment, "Grocery")
	payload, err := d.Render(f)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if payload.MatchedRows != 2 || payload.TotalRows != 3 {
		t.Errorf("rows = %d/%d, want 2/3", payload.MatchedRows, payload.TotalRows)
	}
	// Dimension values always come from the whole dataset so the filter
	// widgets keep all their options.
	if len(payload.Dimensions.Departments) != 3 {
		t.Errorf("departments = %v, want all 3 despite the filter", payload.Dimensions.Departments)
	}
}

func TestDashboard_RenderEmptyResult(t *testing.T) {
	d := newTestDashboard(t)

	f := dataset.FilterSet{}.WithDimension(dataset.FieldCity, "Atlantis")
	payload, err := d.Render(f)
	if err != nil {
		t.Fatalf("an empty filter result is not an error, got %v", err)
	}

	if payload.MatchedRows != 0 {
		t.Errorf("MatchedRows = %d, want 0", payload.MatchedRows)
	}
	if payload.MonthlyTrend.Warning != string(errors.CodeEmptyResult) {
		t.Errorf("warning = %q, want EMPTY_RESULT", payload.MonthlyTrend.Warning)
	}
}

func TestDashboard_AOV(t *testing.T) {
	d := newTestDashboard(t)

	panels, err := d.AOV(dataset.FilterSet{})
	if err != nil {
		t.Fatalf("AOV() error = %v", err)
	}
	if panels.ByNationality.Chart == nil || panels.ByAgeBand.Chart == nil {
		t.Error("both AOV segmentations should carry charts")
	}
}

func TestDashboard_Stats(t *testing.T) {
	d := newTestDashboard(t)

	stats := d.Stats()
	if stats["loaded"] != true {
		t.Fatalf("Stats() = %v, want loaded=true", stats)
	}
	if stats["record_count"] != 3 {
		t.Errorf("record_count = %v, want 3", stats["record_count"])
	}
}

func TestDashboard_ConcurrentReaders(t *testing.T) {
	d := newTestDashboard(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.Render(dataset.FilterSet{}); err != nil {
				t.Errorf("Render() error = %v", err)
			}
		}()
	}
	wg.Wait()
}
