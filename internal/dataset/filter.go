package dataset

import (
	"strings"

	"hypermart-dashboard/internal/models"
)

// Filterable dimension names accepted in a FilterSet.
var FilterDimensions = []string{
	FieldDepartment, FieldCategory, FieldNationality, FieldChannel, FieldCity,
}

// FilterSet captures one pass worth of widget state: accepted values per
// dimension plus an optional inclusive age range. Immutable once built;
// rebuilt on every interaction.
type FilterSet struct {
	Dimensions map[string][]string `json:"dimensions,omitempty"`
	AgeMin     int                 `json:"age_min,omitempty"`
	AgeMax     int                 `json:"age_max,omitempty"`
	FilterAge  bool                `json:"filter_age,omitempty"`
}

// WithDimension returns a copy of the set with values added for a dimension.
func (f FilterSet) WithDimension(dim string, values ...string) FilterSet {
	if f.Dimensions == nil {
		f.Dimensions = make(map[string][]string)
	}
	f.Dimensions[dim] = append(f.Dimensions[dim], values...)
	return f
}

// WithAgeRange returns a copy of the set restricted to ages in [min, max].
func (f FilterSet) WithAgeRange(min, max int) FilterSet {
	f.AgeMin, f.AgeMax, f.FilterAge = min, max, true
	return f
}

func (f FilterSet) IsEmpty() bool {
	if f.FilterAge {
		return false
	}
	for _, vals := range f.Dimensions {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// View is a read-only window over a Dataset. A nil index slice means the
// full dataset; filtered views carry the matching row indices.
type View struct {
	ds  *Dataset
	idx []int
	all bool
}

func (v View) Len() int {
	if v.all {
		return len(v.ds.rows)
	}
	return len(v.idx)
}

func (v View) At(i int) models.Transaction {
	if v.all {
		return v.ds.rows[i]
	}
	return v.ds.rows[v.idx[i]]
}

// All returns a view over every row.
func (d *Dataset) All() View {
	return View{ds: d, all: true}
}

// Filter returns a view of the rows matching every predicate in the set.
// Dimensions are AND-combined; values within one dimension are OR-combined,
// compared case-insensitively. The age check is an inclusive range; rows
// with an unknown age fail it. An empty result is valid.
func (d *Dataset) Filter(f FilterSet) View {
	if f.IsEmpty() {
		return d.All()
	}

	sets := make(map[string]map[string]bool)
	for dim, allowed := range f.Dimensions {
		if len(allowed) > 0 {
			sets[dim] = toLowerSet(allowed)
		}
	}

	indices := make([]int, 0, len(d.rows))
	for i, tx := range d.rows {
		if matches(tx, sets, f) {
			indices = append(indices, i)
		}
	}
	return View{ds: d, idx: indices}
}

func matches(tx models.Transaction, sets map[string]map[string]bool, f FilterSet) bool {
	for dim, set := range sets {
		if !set[strings.ToLower(dimensionValue(tx, dim))] {
			return false
		}
	}
	if f.FilterAge {
		if tx.Age == models.AgeUnknown || tx.Age < f.AgeMin || tx.Age > f.AgeMax {
			return false
		}
	}
	return true
}

func dimensionValue(tx models.Transaction, dim string) string {
	switch dim {
	case FieldDepartment:
		return tx.Department
	case FieldCategory:
		return tx.Category
	case FieldNationality:
		return tx.Nationality
	case FieldChannel:
		return tx.Channel
	case FieldCity:
		return tx.City
	case FieldZone:
		return tx.Zone
	case FieldProduct:
		return tx.Product
	default:
		return ""
	}
}

func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
