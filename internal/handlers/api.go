package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"hypermart-dashboard/internal/dataset"
	"hypermart-dashboard/internal/errors"
	"hypermart-dashboard/internal/observability"
	"hypermart-dashboard/internal/services"
)

const maxFilterAge = 150

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// ParseFilters builds a FilterSet from query parameters. Dimension params
// are repeatable (?department=Grocery&department=Fashion); age_min/age_max
// form the inclusive age range, each defaulting the other bound.
func ParseFilters(r *http.Request) (dataset.FilterSet, error) {
	q := r.URL.Query()

	var f dataset.FilterSet
	for _, dim := range dataset.FilterDimensions {
		if values := q[dim]; len(values) > 0 {
			f = f.WithDimension(dim, values...)
		}
	}

	minRaw, maxRaw := q.Get("age_min"), q.Get("age_max")
	if minRaw == "" && maxRaw == "" {
		return f, nil
	}

	ageMin, ageMax := 0, maxFilterAge
	var err error
	if minRaw != "" {
		if ageMin, err = strconv.Atoi(minRaw); err != nil || ageMin < 0 {
			return f, errors.BadRequest("age_min must be a non-negative integer")
		}
	}
	if maxRaw != "" {
		if ageMax, err = strconv.Atoi(maxRaw); err != nil || ageMax < 0 {
			return f, errors.BadRequest("age_max must be a non-negative integer")
		}
	}
	if ageMin > ageMax {
		return f, errors.BadRequest("age_min cannot exceed age_max")
	}
	return f.WithAgeRange(ageMin, ageMax), nil
}

// respond runs one panel computation behind shared filter parsing and error
// handling.
func (h *APIHandlers) respond(w http.ResponseWriter, r *http.Request, compute func(dataset.FilterSet) (any, error)) {
	requestID := observability.GetRequestID(r.Context())

	filters, err := ParseFilters(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	data, err := compute(filters)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(f dataset.FilterSet) (any, error) {
		return h.dashboard.Overview(f)
	})
}

func (h *APIHandlers) HandleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(f dataset.FilterSet) (any, error) {
		return h.dashboard.MonthlyTrend(f)
	})
}

func (h *APIHandlers) HandleChannelSplit(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(f dataset.FilterSet) (any, error) {
		return h.dashboard.ChannelSplit(f)
	})
}

func (h *APIHandlers) HandleWeekday(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(f dataset.FilterSet) (any, error) {
		return h.dashboard.Weekday(f)
	})
}

func (h *APIHandlers) HandleGeography(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(f dataset.FilterSet) (any, error) {
		return h.dashboard.Geography(f)
	})
}

func (h *APIHandlers) HandleAOV(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(f dataset.FilterSet) (any, error) {
		return h.dashboard.AOV(f)
	})
}

func (h *APIHandlers) HandleSegments(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(f dataset.FilterSet) (any, error) {
		return h.dashboard.Segments(f)
	})
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(f dataset.FilterSet) (any, error) {
		return h.dashboard.TopProducts(f)
	})
}

func (h *APIHandlers) HandleDaily(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(f dataset.FilterSet) (any, error) {
		return h.dashboard.Daily(f)
	})
}

func (h *APIHandlers) HandleDimensions(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	dims, err := h.dashboard.Dimensions()
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}
	errors.WriteSuccessWithHeaders(w, dims, cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.Stats())
}
