package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"hypermart-dashboard/internal/dataset"
	"hypermart-dashboard/internal/models"
	"hypermart-dashboard/internal/presenter"
	"hypermart-dashboard/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

const maxTableRows = 50

var geoTableTemplate = template.Must(template.New("geoTable").Parse(`
<div id="geo-content">
<table class="modern-table">
<thead><tr><th>City</th><th>Revenue</th><th>Orders</th><th>Zones</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.City}}</td>
<td><strong>{{printf "%.2f" .Revenue}}</strong></td>
<td>{{.Orders}}</td>
<td>{{len .Zones}}</td>
</tr>{{end}}
</tbody>
</table>
<p class="insight">{{.Insight}}</p>
</div>`))

// SSEHandlers push re-rendered dashboard fragments over datastar SSE. Each
// filter change from the browser hits one of these with the current widget
// state in the query string and gets patched elements plus chart signals
// back.
type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

func (h *SSEHandlers) filters(r *http.Request) dataset.FilterSet {
	f, err := ParseFilters(r)
	if err != nil {
		h.logger.Warn("invalid filters on SSE request", "error", err)
		return dataset.FilterSet{}
	}
	return f
}

func (h *SSEHandlers) patchPanelSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) bool {
	payload, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal panel signals", "error", err)
		return false
	}
	sse.PatchSignals(payload)
	return true
}

func (h *SSEHandlers) HandleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	panel, err := h.dashboard.MonthlyTrend(h.filters(r))
	if err != nil {
		h.logger.Error("monthly trend panel", "error", err)
		return
	}

	if !h.patchPanelSignals(sse, map[string]any{"monthlyPanel": panel}) {
		return
	}
	sse.PatchElements(`<div id="monthly-content">` + template.HTMLEscapeString(panel.Insight) + `</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleChannelSplit(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	panel, err := h.dashboard.ChannelSplit(h.filters(r))
	if err != nil {
		h.logger.Error("channel split panel", "error", err)
		return
	}

	if !h.patchPanelSignals(sse, map[string]any{"channelPanel": panel}) {
		return
	}
	sse.PatchElements(`<div id="channel-content">` + template.HTMLEscapeString(panel.Insight) + `</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleWeekday(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	panel, err := h.dashboard.Weekday(h.filters(r))
	if err != nil {
		h.logger.Error("weekday panel", "error", err)
		return
	}

	if !h.patchPanelSignals(sse, map[string]any{"weekdayPanel": panel}) {
		return
	}
	sse.PatchElements(`<div id="weekday-content">` + template.HTMLEscapeString(panel.Insight) + `</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

type geoTableData struct {
	Rows    []models.CitySales
	Insight string
}

func (h *SSEHandlers) renderGeoTable(panel presenter.Panel) (string, error) {
	rows, _ := panel.Table.([]models.CitySales)
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}

	var buf strings.Builder
	err := geoTableTemplate.Execute(&buf, geoTableData{Rows: rows, Insight: panel.Insight})
	return buf.String(), err
}

func (h *SSEHandlers) HandleGeography(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	panel, err := h.dashboard.Geography(h.filters(r))
	if err != nil {
		h.logger.Error("geography panel", "error", err)
		return
	}

	html, err := h.renderGeoTable(panel)
	if err != nil {
		h.logger.Error("render geo table", "error", err)
		return
	}
	sse.PatchElements(html)

	if !h.patchPanelSignals(sse, map[string]any{"geoPanel": panel}) {
		return
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleRefresh re-renders everything for the current filter state in one
// SSE response: the reactive path for filter-widget changes.
func (h *SSEHandlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	payload, err := h.dashboard.Render(h.filters(r))
	if err != nil {
		h.logger.Error("render dashboard", "error", err)
		return
	}

	html, err := h.renderGeoTable(payload.Geography)
	if err != nil {
		h.logger.Error("render geo table", "error", err)
		return
	}
	sse.PatchElements(html)

	if !h.patchPanelSignals(sse, map[string]any{"dashboard": payload}) {
		return
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
