package server

import (
	"log/slog"
	"net/http"

	"hypermart-dashboard/internal/handlers"
	"hypermart-dashboard/internal/services"
)

type Server struct {
	dashboard   *services.Dashboard
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(dashboard *services.Dashboard, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		dashboard:   dashboard,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(dashboard, logger),
		sseHandlers: handlers.NewSSEHandlers(dashboard, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard shell
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API: every endpoint accepts the same filter query parameters
	s.mux.HandleFunc("GET /api/overview", s.apiHandlers.HandleOverview)
	s.mux.HandleFunc("GET /api/monthly-trend", s.apiHandlers.HandleMonthlyTrend)
	s.mux.HandleFunc("GET /api/channel-split", s.apiHandlers.HandleChannelSplit)
	s.mux.HandleFunc("GET /api/weekday", s.apiHandlers.HandleWeekday)
	s.mux.HandleFunc("GET /api/geography", s.apiHandlers.HandleGeography)
	s.mux.HandleFunc("GET /api/aov", s.apiHandlers.HandleAOV)
	s.mux.HandleFunc("GET /api/segments", s.apiHandlers.HandleSegments)
	s.mux.HandleFunc("GET /api/top-products", s.apiHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /api/daily", s.apiHandlers.HandleDaily)
	s.mux.HandleFunc("GET /api/dimensions", s.apiHandlers.HandleDimensions)

	// Datastar SSE: filter-change push
	s.mux.HandleFunc("GET /sse/monthly-trend", s.sseHandlers.HandleMonthlyTrend)
	s.mux.HandleFunc("GET /sse/channel-split", s.sseHandlers.HandleChannelSplit)
	s.mux.HandleFunc("GET /sse/weekday", s.sseHandlers.HandleWeekday)
	s.mux.HandleFunc("GET /sse/geography", s.sseHandlers.HandleGeography)
	s.mux.HandleFunc("GET /sse/refresh", s.sseHandlers.HandleRefresh)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
