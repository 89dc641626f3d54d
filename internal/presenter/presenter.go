// Package presenter maps summary tables onto chart descriptors and short
// insight strings. Formatting only: every number shown here was computed by
// the analytics package, never recomputed.
package presenter

import (
	"fmt"
	"math"
	"strings"

	"hypermart-dashboard/internal/errors"
	"hypermart-dashboard/internal/models"
)

// Chart kinds understood by the front-end renderer.
const (
	ChartLine       = "line"
	ChartBar        = "bar"
	ChartPie        = "pie"
	ChartStackedBar = "stacked_bar"
)

var palette = []string{
	"#1e88e5", "#ff6f00", "#10B981", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F59E0B", "#6366F1",
}

type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type ChartSeries struct {
	Name   string       `json:"name"`
	Points []ChartPoint `json:"points"`
	Color  string       `json:"color,omitempty"`
}

// ChartSpec describes one chart for the external renderer: kind, axis field
// names, title and the data series. No rendering happens server-side.
type ChartSpec struct {
	Kind   string        `json:"kind"`
	Title  string        `json:"title"`
	XField string        `json:"x_field,omitempty"`
	YField string        `json:"y_field,omitempty"`
	Series []ChartSeries `json:"series"`
	Colors []string      `json:"colors,omitempty"`
}

// Panel pairs a summary table with its chart descriptor and insight text.
// Warning carries the non-fatal EMPTY_RESULT code when the filtered view had
// no rows.
type Panel struct {
	Table   any        `json:"table"`
	Chart   *ChartSpec `json:"chart,omitempty"`
	Insight string     `json:"insight"`
	Warning string     `json:"warning,omitempty"`
}

const emptyInsight = "No transactions match the current filters."

func emptyWarning(rows int) string {
	if rows == 0 {
		return string(errors.CodeEmptyResult)
	}
	return ""
}

// Currency used in formatted insight strings.
type Formatter struct {
	Currency string
}

func NewFormatter(currency string) Formatter {
	if currency == "" {
		currency = "AED"
	}
	return Formatter{Currency: currency}
}

// Money formats an amount with the currency prefix and comma separators.
func (f Formatter) Money(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	amount = math.Round(amount*100) / 100

	intPart := int64(amount)
	decPart := int64(math.Round((amount - float64(intPart)) * 100))

	formatted := groupDigits(intPart)
	result := fmt.Sprintf("%s %s.%02d", f.Currency, formatted, decPart)
	if negative {
		result = "-" + result
	}
	return result
}

func groupDigits(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	return s + "," + strings.Join(parts, ",")
}

// MonthlyTrendPanel builds the line chart and trend insight.
func (f Formatter) MonthlyTrendPanel(rows []models.MonthlySales) Panel {
	panel := Panel{Table: rows, Warning: emptyWarning(len(rows))}
	if len(rows) == 0 {
		panel.Insight = emptyInsight
		return panel
	}

	points := make([]ChartPoint, len(rows))
	peak := rows[0]
	for i, r := range rows {
		points[i] = ChartPoint{Label: r.Month, Value: round2(r.Revenue)}
		if r.Revenue > peak.Revenue {
			peak = r
		}
	}

	panel.Chart = &ChartSpec{
		Kind:   ChartLine,
		Title:  "Monthly Sales Trend",
		XField: "month",
		YField: "revenue",
		Series: []ChartSeries{{Name: "Revenue", Points: points, Color: palette[0]}},
		Colors: palette[:1],
	}

	insight := fmt.Sprintf("Peak month is %s with %s.", peak.Month, f.Money(peak.Revenue))
	if len(rows) >= 2 {
		first, last := rows[0], rows[len(rows)-1]
		if first.Revenue != 0 {
			change := (last.Revenue - first.Revenue) / first.Revenue * 100
			direction := "grew"
			if change < 0 {
				direction = "declined"
			}
			insight += fmt.Sprintf(" Revenue %s %.1f%% between %s and %s.",
				direction, math.Abs(change), first.Month, last.Month)
		}
	}
	panel.Insight = insight
	return panel
}

// ChannelSplitPanel builds the channel pie chart and online-share insight.
func (f Formatter) ChannelSplitPanel(rows []models.ChannelSales) Panel {
	panel := Panel{Table: rows, Warning: emptyWarning(len(rows))}
	if len(rows) == 0 {
		panel.Insight = emptyInsight
		return panel
	}

	var total, online float64
	points := make([]ChartPoint, len(rows))
	for i, r := range rows {
		points[i] = ChartPoint{Label: r.Channel, Value: round2(r.Revenue)}
		total += r.Revenue
		if r.Channel == "Online" {
			online = r.Revenue
		}
	}

	panel.Chart = &ChartSpec{
		Kind:   ChartPie,
		Title:  "Sales by Channel",
		XField: "channel",
		YField: "revenue",
		Series: []ChartSeries{{Name: "Revenue", Points: points}},
		Colors: assignColors(len(points)),
	}

	if total > 0 {
		share := online / total * 100
		balance := "a significant channel preference"
		if math.Abs(share-50) < 10 {
			balance = "a well-balanced omnichannel mix"
		}
		panel.Insight = fmt.Sprintf("Online accounts for %.1f%% of revenue (%s of %s), showing %s.",
			share, f.Money(online), f.Money(total), balance)
	} else {
		panel.Insight = "All channels report zero revenue."
	}
	return panel
}

// WeekdayPanel builds the day-of-week bar chart and busy/slow-day insight.
func (f Formatter) WeekdayPanel(rows []models.WeekdaySales) Panel {
	panel := Panel{Table: rows}

	points := make([]ChartPoint, len(rows))
	var total float64
	busiest, slowest := 0, 0
	for i, r := range rows {
		points[i] = ChartPoint{Label: r.Day, Value: round2(r.Revenue)}
		total += r.Revenue
		if r.Revenue > rows[busiest].Revenue {
			busiest = i
		}
		if r.Revenue < rows[slowest].Revenue {
			slowest = i
		}
	}

	panel.Chart = &ChartSpec{
		Kind:   ChartBar,
		Title:  "Sales by Day of Week",
		XField: "day",
		YField: "revenue",
		Series: []ChartSeries{{Name: "Revenue", Points: points, Color: palette[0]}},
		Colors: palette[:1],
	}

	if total == 0 {
		panel.Insight = emptyInsight
		panel.Warning = string(errors.CodeEmptyResult)
		return panel
	}
	panel.Insight = fmt.Sprintf("Busiest day is %s with %s; %s is the slowest.",
		rows[busiest].Day, f.Money(rows[busiest].Revenue), rows[slowest].Day)
	return panel
}

// GeoPanel builds the city bar chart with zone sub-series and top-city
// insight.
func (f Formatter) GeoPanel(rows []models.CitySales) Panel {
	panel := Panel{Table: rows, Warning: emptyWarning(len(rows))}
	if len(rows) == 0 {
		panel.Insight = emptyInsight
		return panel
	}

	var total float64
	points := make([]ChartPoint, len(rows))
	for i, r := range rows {
		points[i] = ChartPoint{Label: r.City, Value: round2(r.Revenue)}
		total += r.Revenue
	}

	series := []ChartSeries{{Name: "Revenue", Points: points}}
	panel.Chart = &ChartSpec{
		Kind:   ChartStackedBar,
		Title:  "Sales by City and Zone",
		XField: "city",
		YField: "revenue",
		Series: series,
		Colors: assignColors(len(points)),
	}

	top := rows[0]
	if total > 0 {
		panel.Insight = fmt.Sprintf("%s leads with %s (%.1f%% of revenue) across %d zones.",
			top.City, f.Money(top.Revenue), top.Revenue/total*100, len(top.Zones))
	} else {
		panel.Insight = "All cities report zero revenue."
	}
	return panel
}

// AOVPanel builds the AOV bar chart over the chosen segmentation and a
// highest-segment insight. Undefined (zero-order) segments are charted as
// zero and excluded from the insight.
func (f Formatter) AOVPanel(title string, rows []models.AOVSegment) Panel {
	panel := Panel{Table: rows, Warning: emptyWarning(len(rows))}
	if len(rows) == 0 {
		panel.Insight = emptyInsight
		return panel
	}

	points := make([]ChartPoint, len(rows))
	best := -1
	anyOrders := false
	for i, r := range rows {
		points[i] = ChartPoint{Label: r.Segment, Value: round2(r.AOV)}
		if r.Defined {
			anyOrders = true
			if best < 0 || r.AOV > rows[best].AOV {
				best = i
			}
		}
	}

	panel.Chart = &ChartSpec{
		Kind:   ChartBar,
		Title:  title,
		XField: "segment",
		YField: "aov",
		Series: []ChartSeries{{Name: "AOV", Points: points, Color: palette[2]}},
		Colors: palette[2:3],
	}

	if !anyOrders {
		panel.Insight = emptyInsight
		panel.Warning = string(errors.CodeEmptyResult)
		return panel
	}
	panel.Insight = fmt.Sprintf("Highest average order value: %s at %s over %d orders.",
		rows[best].Segment, f.Money(rows[best].AOV), rows[best].Orders)
	return panel
}

// SegmentsPanel builds the Low/Medium/High value distribution pie.
func (f Formatter) SegmentsPanel(rows []models.ValueSegment) Panel {
	panel := Panel{Table: rows}

	points := make([]ChartPoint, len(rows))
	orders := 0
	for i, r := range rows {
		points[i] = ChartPoint{Label: r.Segment, Value: float64(r.Orders)}
		orders += r.Orders
	}

	panel.Chart = &ChartSpec{
		Kind:   ChartPie,
		Title:  "Customer Value Segments",
		XField: "segment",
		YField: "orders",
		Series: []ChartSeries{{Name: "Orders", Points: points}},
		Colors: assignColors(len(points)),
	}

	if orders == 0 {
		panel.Insight = emptyInsight
		panel.Warning = string(errors.CodeEmptyResult)
		return panel
	}

	parts := make([]string, 0, len(rows))
	for _, r := range rows {
		parts = append(parts, fmt.Sprintf("%.0f%% %s", r.Share, strings.ToLower(r.Segment)))
	}
	panel.Insight = "Order distribution: " + strings.Join(parts, ", ") + "."
	return panel
}

// TopProductsPanel builds the top-products bar chart.
func (f Formatter) TopProductsPanel(rows []models.ProductSales) Panel {
	panel := Panel{Table: rows, Warning: emptyWarning(len(rows))}
	if len(rows) == 0 {
		panel.Insight = emptyInsight
		return panel
	}

	points := make([]ChartPoint, len(rows))
	for i, r := range rows {
		points[i] = ChartPoint{Label: r.Product, Value: round2(r.Revenue)}
	}

	panel.Chart = &ChartSpec{
		Kind:   ChartBar,
		Title:  "Top Products by Revenue",
		XField: "product",
		YField: "revenue",
		Series: []ChartSeries{{Name: "Revenue", Points: points, Color: palette[1]}},
		Colors: palette[1:2],
	}
	panel.Insight = fmt.Sprintf("Best seller is %s with %s over %d orders.",
		rows[0].Product, f.Money(rows[0].Revenue), rows[0].Orders)
	return panel
}

// DailyPanel is table-only: the raw per-date drill-down.
func (f Formatter) DailyPanel(rows []models.DailySales) Panel {
	panel := Panel{Table: rows, Warning: emptyWarning(len(rows))}
	if len(rows) == 0 {
		panel.Insight = emptyInsight
		return panel
	}
	latest := rows[0]
	panel.Insight = fmt.Sprintf("Latest trading day %s brought %s over %d orders.",
		latest.Date, f.Money(latest.Revenue), latest.Orders)
	return panel
}

// Dashboard is the full render payload for one pass: KPI header plus every
// panel, keyed the way the front-end addresses them.
type Dashboard struct {
	Overview     models.Overview        `json:"overview"`
	MonthlyTrend Panel                  `json:"monthly_trend"`
	ChannelSplit Panel                  `json:"channel_split"`
	Weekday      Panel                  `json:"weekday"`
	Geography    Panel                  `json:"geography"`
	AOVByNation  Panel                  `json:"aov_by_nationality"`
	AOVByAge     Panel                  `json:"aov_by_age"`
	Segments     Panel                  `json:"segments"`
	TopProducts  Panel                  `json:"top_products"`
	Daily        Panel                  `json:"daily"`
	Dimensions   models.DimensionValues `json:"dimensions"`
	MatchedRows  int                    `json:"matched_rows"`
	TotalRows    int                    `json:"total_rows"`
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := range colors {
		colors[i] = palette[i%len(palette)]
	}
	return colors
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
