// Package analytics holds the summary computations behind the dashboard
// panels. Every function is a pure pass over a filtered view: no state, no
// mutation of the underlying dataset, and an empty view always yields an
// empty or zero-filled summary instead of an error.
package analytics

import (
	"slices"
	"sort"
	"strings"
	"time"

	"hypermart-dashboard/internal/dataset"
	"hypermart-dashboard/internal/models"
)

const monthLayout = "2006-01"

// Canonical channel buckets. Unknown values keep their own bucket.
const (
	ChannelOnline  = "Online"
	ChannelOffline = "Offline"
)

// Overview computes the KPI header: totals, overall AOV, distinct
// nationalities and months covered.
func Overview(v dataset.View) models.Overview {
	ov := models.Overview{Orders: v.Len()}

	nationalities := make(map[string]bool)
	months := make(map[string]bool)
	for i := 0; i < v.Len(); i++ {
		tx := v.At(i)
		ov.TotalRevenue += tx.Amount
		if tx.Nationality != "" {
			nationalities[tx.Nationality] = true
		}
		months[tx.Date.Format(monthLayout)] = true
	}
	ov.Nationalities = len(nationalities)
	ov.Months = len(months)

	if ov.Orders > 0 {
		ov.AOV = ov.TotalRevenue / float64(ov.Orders)
		ov.AOVDefined = true
	}
	return ov
}

// MonthlyTrend groups sales by calendar year-month, ordered chronologically.
func MonthlyTrend(v dataset.View) []models.MonthlySales {
	groups := make(map[string]*models.MonthlySales)
	for i := 0; i < v.Len(); i++ {
		tx := v.At(i)
		month := tx.Date.Format(monthLayout)
		g := groups[month]
		if g == nil {
			g = &models.MonthlySales{Month: month}
			groups[month] = g
		}
		g.Revenue += tx.Amount
		g.Orders++
	}

	result := make([]models.MonthlySales, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.MonthlySales) int {
		return strings.Compare(a.Month, b.Month)
	})
	return result
}

// ChannelSplit groups sales by channel. Values containing "online" or
// "offline" collapse into the canonical buckets regardless of case; anything
// else is kept as its own bucket so odd data stays visible.
func ChannelSplit(v dataset.View) []models.ChannelSales {
	groups := make(map[string]*models.ChannelSales)
	order := make([]string, 0, 2)
	for i := 0; i < v.Len(); i++ {
		tx := v.At(i)
		channel := canonicalChannel(tx.Channel)
		g := groups[channel]
		if g == nil {
			g = &models.ChannelSales{Channel: channel}
			groups[channel] = g
			order = append(order, channel)
		}
		g.Revenue += tx.Amount
		g.Orders++
	}

	sort.Strings(order)
	result := make([]models.ChannelSales, 0, len(order))
	for _, channel := range order {
		result = append(result, *groups[channel])
	}
	return result
}

func canonicalChannel(raw string) string {
	switch lower := strings.ToLower(strings.TrimSpace(raw)); {
	case strings.Contains(lower, "online"):
		return ChannelOnline
	case strings.Contains(lower, "offline"), strings.Contains(lower, "in-store"), strings.Contains(lower, "store"):
		return ChannelOffline
	case lower == "":
		return "Unspecified"
	default:
		return strings.TrimSpace(raw)
	}
}

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeekdayBreakdown groups sales by day of week. The result always holds
// exactly seven buckets ordered Monday through Sunday; days with no rows
// report zero.
func WeekdayBreakdown(v dataset.View) []models.WeekdaySales {
	totals := make(map[time.Weekday]*models.WeekdaySales, 7)
	result := make([]models.WeekdaySales, 7)
	for i, day := range weekdayOrder {
		result[i] = models.WeekdaySales{Day: day.String()}
		totals[day] = &result[i]
	}

	for i := 0; i < v.Len(); i++ {
		tx := v.At(i)
		g := totals[tx.Date.Weekday()]
		g.Revenue += tx.Amount
		g.Orders++
	}
	return result
}

// GeoBreakdown groups sales by city, then by zone within each city. Cities
// are ordered by revenue descending with alphabetical tie-break; zones are
// alphabetical.
func GeoBreakdown(v dataset.View) []models.CitySales {
	type cityAgg struct {
		sales models.CitySales
		zones map[string]*models.ZoneSales
	}

	cities := make(map[string]*cityAgg)
	for i := 0; i < v.Len(); i++ {
		tx := v.At(i)
		city := tx.City
		if city == "" {
			city = "Unknown"
		}
		c := cities[city]
		if c == nil {
			c = &cityAgg{
				sales: models.CitySales{City: city},
				zones: make(map[string]*models.ZoneSales),
			}
			cities[city] = c
		}
		c.sales.Revenue += tx.Amount
		c.sales.Orders++

		if tx.Zone != "" {
			z := c.zones[tx.Zone]
			if z == nil {
				z = &models.ZoneSales{Zone: tx.Zone}
				c.zones[tx.Zone] = z
			}
			z.Revenue += tx.Amount
			z.Orders++
		}
	}

	result := make([]models.CitySales, 0, len(cities))
	for _, c := range cities {
		zones := make([]models.ZoneSales, 0, len(c.zones))
		for _, z := range c.zones {
			zones = append(zones, *z)
		}
		slices.SortFunc(zones, func(a, b models.ZoneSales) int {
			return strings.Compare(a.Zone, b.Zone)
		})
		c.sales.Zones = zones
		result = append(result, c.sales)
	}

	slices.SortFunc(result, func(a, b models.CitySales) int {
		if a.Revenue != b.Revenue {
			if a.Revenue > b.Revenue {
				return -1
			}
			return 1
		}
		return strings.Compare(a.City, b.City)
	})
	return result
}

// AOVByNationality computes average order value per nationality, highest
// first.
func AOVByNationality(v dataset.View) []models.AOVSegment {
	groups := make(map[string]*models.AOVSegment)
	for i := 0; i < v.Len(); i++ {
		tx := v.At(i)
		nat := tx.Nationality
		if nat == "" {
			nat = "Unknown"
		}
		g := groups[nat]
		if g == nil {
			g = &models.AOVSegment{Segment: nat}
			groups[nat] = g
		}
		g.Revenue += tx.Amount
		g.Orders++
	}

	result := make([]models.AOVSegment, 0, len(groups))
	for _, g := range groups {
		finalizeAOV(g)
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.AOVSegment) int {
		if a.AOV != b.AOV {
			if a.AOV > b.AOV {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Segment, b.Segment)
	})
	return result
}

type ageBand struct {
	label    string
	min, max int
}

// Fixed age bands, inclusive on both bounds.
var ageBands = []ageBand{
	{"Under 18", 0, 17},
	{"18-24", 18, 24},
	{"25-34", 25, 34},
	{"35-44", 35, 44},
	{"45-54", 45, 54},
	{"55-64", 55, 64},
	{"65+", 65, 1<<31 - 1},
}

// AgeBandLabel buckets an age into its fixed band; unknown ages get their
// own bucket.
func AgeBandLabel(age int) string {
	if age == models.AgeUnknown {
		return "Unknown"
	}
	for _, band := range ageBands {
		if age >= band.min && age <= band.max {
			return band.label
		}
	}
	return "Unknown"
}

// AOVByAgeBand computes average order value per fixed age band. All bands
// appear in their natural order; empty bands report zero revenue and an
// undefined mean.
func AOVByAgeBand(v dataset.View) []models.AOVSegment {
	result := make([]models.AOVSegment, len(ageBands))
	index := make(map[string]*models.AOVSegment, len(ageBands))
	for i, band := range ageBands {
		result[i] = models.AOVSegment{Segment: band.label}
		index[band.label] = &result[i]
	}

	var unknown models.AOVSegment
	unknown.Segment = "Unknown"

	for i := 0; i < v.Len(); i++ {
		tx := v.At(i)
		g := index[AgeBandLabel(tx.Age)]
		if g == nil {
			g = &unknown
		}
		g.Revenue += tx.Amount
		g.Orders++
	}

	for i := range result {
		finalizeAOV(&result[i])
	}
	if unknown.Orders > 0 {
		finalizeAOV(&unknown)
		result = append(result, unknown)
	}
	return result
}

func finalizeAOV(g *models.AOVSegment) {
	if g.Orders > 0 {
		g.AOV = g.Revenue / float64(g.Orders)
		g.Defined = true
	}
}

// Value segmentation thresholds: orders below the 33rd percentile of the
// filtered sales distribution are Low, above the 67th High, Medium between.
const (
	SegmentLow    = "Low Value"
	SegmentMedium = "Medium Value"
	SegmentHigh   = "High Value"
)

// ValueSegments buckets orders into Low/Medium/High value tiers by the
// percentile boundaries of the current filtered distribution.
func ValueSegments(v dataset.View) []models.ValueSegment {
	result := []models.ValueSegment{
		{Segment: SegmentHigh},
		{Segment: SegmentMedium},
		{Segment: SegmentLow},
	}
	if v.Len() == 0 {
		return result
	}

	amounts := make([]float64, v.Len())
	for i := 0; i < v.Len(); i++ {
		amounts[i] = v.At(i).Amount
	}
	sort.Float64s(amounts)

	low := quantile(amounts, 0.33)
	high := quantile(amounts, 0.67)

	for _, amount := range amounts {
		switch {
		case amount < low:
			result[2].Orders++
			result[2].Revenue += amount
		case amount < high:
			result[1].Orders++
			result[1].Revenue += amount
		default:
			result[0].Orders++
			result[0].Revenue += amount
		}
	}

	total := float64(len(amounts))
	for i := range result {
		result[i].Share = float64(result[i].Orders) / total * 100
	}
	return result
}

// quantile interpolates linearly between closest ranks over sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// TopProducts ranks products by total revenue, capped at limit.
func TopProducts(v dataset.View, limit int) []models.ProductSales {
	groups := make(map[string]*models.ProductSales)
	for i := 0; i < v.Len(); i++ {
		tx := v.At(i)
		product := tx.Product
		if product == "" {
			product = "Unknown"
		}
		g := groups[product]
		if g == nil {
			g = &models.ProductSales{Product: product}
			groups[product] = g
		}
		g.Revenue += tx.Amount
		g.Orders++
	}

	result := make([]models.ProductSales, 0, len(groups))
	for _, g := range groups {
		g.AOV = g.Revenue / float64(g.Orders)
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.ProductSales) int {
		if a.Revenue != b.Revenue {
			if a.Revenue > b.Revenue {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Product, b.Product)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// DailyPerformance lists per-date totals, most recent first, capped at limit.
func DailyPerformance(v dataset.View, limit int) []models.DailySales {
	groups := make(map[string]*models.DailySales)
	for i := 0; i < v.Len(); i++ {
		tx := v.At(i)
		day := tx.Date.Format("2006-01-02")
		g := groups[day]
		if g == nil {
			g = &models.DailySales{Date: day}
			groups[day] = g
		}
		g.Revenue += tx.Amount
		g.Orders++
	}

	result := make([]models.DailySales, 0, len(groups))
	for _, g := range groups {
		g.AOV = g.Revenue / float64(g.Orders)
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.DailySales) int {
		return strings.Compare(b.Date, a.Date)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Dimensions collects the distinct values per filterable dimension, used to
// populate the filter widgets.
func Dimensions(v dataset.View) models.DimensionValues {
	depts := make(map[string]bool)
	cats := make(map[string]bool)
	nats := make(map[string]bool)
	channels := make(map[string]bool)
	cities := make(map[string]bool)

	dv := models.DimensionValues{AgeMin: -1, AgeMax: -1}
	for i := 0; i < v.Len(); i++ {
		tx := v.At(i)
		markValue(depts, tx.Department)
		markValue(cats, tx.Category)
		markValue(nats, tx.Nationality)
		markValue(channels, canonicalChannel(tx.Channel))
		markValue(cities, tx.City)
		if tx.Age != models.AgeUnknown {
			if dv.AgeMin == -1 || tx.Age < dv.AgeMin {
				dv.AgeMin = tx.Age
			}
			if tx.Age > dv.AgeMax {
				dv.AgeMax = tx.Age
			}
		}
	}

	dv.Departments = sortedKeys(depts)
	dv.Categories = sortedKeys(cats)
	dv.Nationalities = sortedKeys(nats)
	dv.Channels = sortedKeys(channels)
	dv.Cities = sortedKeys(cities)
	return dv
}

func markValue(set map[string]bool, value string) {
	if value != "" {
		set[value] = true
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
