package dataset

import (
	"fmt"
	"strings"

	"hypermart-dashboard/internal/errors"
)

// Logical fields of a transaction record. Date and sales are required;
// everything else degrades to empty/unknown values when absent.
const (
	FieldDate        = "date"
	FieldSales       = "sales"
	FieldDepartment  = "department"
	FieldCategory    = "category"
	FieldNationality = "nationality"
	FieldAge         = "age"
	FieldCity        = "city"
	FieldZone        = "zone"
	FieldChannel     = "channel"
	FieldProduct     = "product"
)

var allFields = []string{
	FieldDate, FieldSales, FieldDepartment, FieldCategory, FieldNationality,
	FieldAge, FieldCity, FieldZone, FieldChannel, FieldProduct,
}

var requiredFields = []string{FieldDate, FieldSales}

// Schema maps each logical field to the header fragments accepted for it.
// Matching is case-insensitive substring over normalized headers, resolved
// once per load; an ambiguous mapping fails closed.
type Schema struct {
	Columns map[string][]string
}

// DefaultSchema returns the built-in synonym table.
func DefaultSchema() Schema {
	return Schema{Columns: map[string][]string{
		FieldDate:        {"date"},
		FieldSales:       {"sales", "amount", "revenue"},
		FieldDepartment:  {"department", "dept"},
		FieldCategory:    {"category"},
		FieldNationality: {"nationality"},
		FieldAge:         {"age"},
		FieldCity:        {"city"},
		FieldZone:        {"zone"},
		FieldChannel:     {"channel", "sale_type"},
		FieldProduct:     {"product", "item"},
	}}
}

// NewSchema builds a schema from a synonym table, falling back to the
// defaults for any field left unset.
func NewSchema(columns map[string][]string) Schema {
	sch := DefaultSchema()
	for field, synonyms := range columns {
		if len(synonyms) > 0 {
			sch.Columns[field] = synonyms
		}
	}
	return sch
}

// columnMap holds the resolved header index per logical field.
// Missing optional fields are absent from the map.
type columnMap map[string]int

// resolveColumns matches file headers against the schema. Each logical field
// must match at most one distinct header; two candidates is a configuration
// error surfaced to the caller. Missing required fields are a data format
// error.
func resolveColumns(headers []string, sch Schema) (columnMap, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	cols := make(columnMap, len(allFields))
	for _, field := range allFields {
		idx, err := matchColumn(headers, normalized, field, sch.Columns[field])
		if err != nil {
			return nil, err
		}
		if idx >= 0 {
			cols[field] = idx
		}
	}

	for _, field := range requiredFields {
		if _, ok := cols[field]; !ok {
			return nil, errors.DataFormat(fmt.Sprintf(
				"required column for field %q not found (accepted names: %s)",
				field, strings.Join(sch.Columns[field], ", ")))
		}
	}

	return cols, nil
}

// matchColumn finds the header for one logical field. Exact header matches
// take precedence over substring matches, so "city" and "city_zone" resolve
// cleanly; two distinct headers at the same precedence is ambiguous.
func matchColumn(headers, normalized []string, field string, synonyms []string) (int, error) {
	exact, substr := -1, -1
	for i, header := range normalized {
		if isExactMatch(header, synonyms) {
			if exact >= 0 && normalized[exact] != header {
				return -1, errors.Configuration(fmt.Sprintf(
					"ambiguous columns for field %q: %q and %q both match",
					field, headers[exact], headers[i]))
			}
			if exact < 0 {
				exact = i
			}
			continue
		}
		if matchesField(header, synonyms) {
			if substr >= 0 && normalized[substr] != header {
				substr = -2 // ambiguous unless an exact match rescues it
				continue
			}
			if substr == -1 {
				substr = i
			}
		}
	}

	if exact >= 0 {
		return exact, nil
	}
	if substr == -2 {
		return -1, errors.Configuration(fmt.Sprintf(
			"ambiguous columns for field %q: multiple headers match", field))
	}
	return substr, nil
}

func isExactMatch(header string, synonyms []string) bool {
	for _, syn := range synonyms {
		if header == normalizeHeader(syn) {
			return true
		}
	}
	return false
}

func matchesField(header string, synonyms []string) bool {
	for _, syn := range synonyms {
		if strings.Contains(header, normalizeHeader(syn)) {
			return true
		}
	}
	return false
}

// normalizeHeader converts "Transaction Date" → "transaction_date".
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
