package dataset

import (
	"testing"
	"time"

	"hypermart-dashboard/internal/models"
)

func testRows() []models.Transaction {
	return []models.Transaction{
		{Date: date(2023, 1, 2), Amount: 100, Department: "Grocery", Category: "Fresh Food", Nationality: "Indian", Age: 34, City: "Dubai", Zone: "Deira", Channel: "Online"},
		{Date: date(2023, 1, 3), Amount: 50, Department: "Fashion", Category: "Apparel", Nationality: "Filipino", Age: 27, City: "Abu Dhabi", Zone: "Khalidiya", Channel: "Offline"},
		{Date: date(2023, 2, 5), Amount: 75, Department: "Grocery", Category: "Beverages", Nationality: "Emirati", Age: 52, City: "Dubai", Zone: "Marina", Channel: "Offline"},
		{Date: date(2023, 2, 6), Amount: 20, Department: "Electronics", Category: "Audio", Nationality: "Indian", Age: models.AgeUnknown, City: "Sharjah", Zone: "", Channel: "Online"},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFilter_EmptySetReturnsAll(t *testing.T) {
	ds := FromRows(testRows())

	v := ds.Filter(FilterSet{})
	if v.Len() != ds.Len() {
		t.Errorf("empty filter matched %d rows, want %d", v.Len(), ds.Len())
	}
}

func TestFilter_SingleDimension(t *testing.T) {
	ds := FromRows(testRows())

	v := ds.Filter(FilterSet{}.WithDimension(FieldDepartment, "Grocery"))
	if v.Len() != 2 {
		t.Fatalf("matched %d rows, want 2", v.Len())
	}
	for i := 0; i < v.Len(); i++ {
		if v.At(i).Department != "Grocery" {
			t.Errorf("row %d department = %q", i, v.At(i).Department)
		}
	}
}

func TestFilter_CaseInsensitiveValues(t *testing.T) {
	ds := FromRows(testRows())

	v := ds.Filter(FilterSet{}.WithDimension(FieldCity, "dubai"))
	if v.Len() != 2 {
		t.Errorf("matched %d rows, want 2", v.Len())
	}
}

func TestFilter_ORWithinDimension(t *testing.T) {
	ds := FromRows(testRows())

	v := ds.Filter(FilterSet{}.WithDimension(FieldDepartment, "Grocery", "Fashion"))
	if v.Len() != 3 {
		t.Errorf("matched %d rows, want 3", v.Len())
	}
}

func TestFilter_ANDAcrossDimensions(t *testing.T) {
	ds := FromRows(testRows())

	f := FilterSet{}.
		WithDimension(FieldDepartment, "Grocery").
		WithDimension(FieldChannel, "Offline")
	v := ds.Filter(f)
	if v.Len() != 1 {
		t.Fatalf("matched %d rows, want 1", v.Len())
	}
	if v.At(0).Category != "Beverages" {
		t.Errorf("matched category %q, want Beverages", v.At(0).Category)
	}
}

func TestFilter_AgeRangeInclusive(t *testing.T) {
	ds := FromRows(testRows())

	v := ds.Filter(FilterSet{}.WithAgeRange(27, 34))
	if v.Len() != 2 {
		t.Fatalf("matched %d rows, want 2 (bounds are inclusive)", v.Len())
	}
}

func TestFilter_AgeRangeExcludesUnknown(t *testing.T) {
	ds := FromRows(testRows())

	v := ds.Filter(FilterSet{}.WithAgeRange(0, 150))
	if v.Len() != 3 {
		t.Errorf("matched %d rows, want 3 (unknown age fails the range)", v.Len())
	}
}

func TestFilter_EmptyResultIsValid(t *testing.T) {
	ds := FromRows(testRows())

	v := ds.Filter(FilterSet{}.WithDimension(FieldNationality, "Martian"))
	if v.Len() != 0 {
		t.Errorf("matched %d rows, want 0", v.Len())
	}
}

func TestFilter_DoesNotMutateDataset(t *testing.T) {
	ds := FromRows(testRows())
	before := ds.Len()

	ds.Filter(FilterSet{}.WithDimension(FieldCity, "Dubai"))
	if ds.Len() != before {
		t.Error("filtering must not mutate the dataset")
	}
}

func TestFilterSet_IsEmpty(t *testing.T) {
	if !(FilterSet{}).IsEmpty() {
		t.Error("zero FilterSet should be empty")
	}
	if (FilterSet{}.WithAgeRange(0, 10)).IsEmpty() {
		t.Error("age-ranged FilterSet should not be empty")
	}
	if (FilterSet{}.WithDimension(FieldCity, "Dubai")).IsEmpty() {
		t.Error("dimension FilterSet should not be empty")
	}
}
