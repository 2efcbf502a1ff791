package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/precon-analyzer/internal/api/handlers"
	"github.com/ramonehamilton/precon-analyzer/internal/api/response"
	"github.com/ramonehamilton/precon-analyzer/internal/pricing"
	"github.com/ramonehamilton/precon-analyzer/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health and metrics (no versioning)
	s.router.Get("/health", s.healthCheck)
	s.router.Handle("/metrics", s.metrics.Handler())

	// WebSocket endpoint for job progress
	s.router.Get("/ws", s.wsHub.ServeWs)

	var history handlers.HistoryStore
	var hints pricing.HintStore
	if s.storage != nil {
		history = s.storage
		hints = s.storage
	}

	analysisHandler := handlers.NewAnalysisHandler(s.aggregator, history, s.logger)
	deckHandler := handlers.NewDeckHandler(handlers.DeckHandlerConfig{
		Catalog:  s.catalog,
		Pricer:   s.valuator,
		Analyzer: s.aggregator,
		Hints:    hints,
		Spacing:  s.spacing,
		Logger:   s.logger,
	})
	systemHandler := handlers.NewSystemHandler(s.metrics, s.wsHub)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/analysis", func(r chi.Router) {
			r.Post("/start", analysisHandler.StartAnalysis)
			r.Get("/stats", analysisHandler.GetStats)
			r.Get("/history", analysisHandler.GetHistory)
			r.Get("/export.xlsx", analysisHandler.ExportWorkbook)
			r.Get("/chart", analysisHandler.GetChart)
			r.Delete("/reset", analysisHandler.Reset)
			r.Get("/{jobId}/progress", analysisHandler.GetProgress)
			r.Get("/{jobId}/results", analysisHandler.GetResults)
		})

		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.GetDecks)
			r.Get("/formats", deckHandler.GetFormats)
			r.Get("/rankings", analysisHandler.GetRankings)
			r.Post("/parse", deckHandler.ParseDecks)
			r.Get("/{deckId}/details", deckHandler.GetDeckDetails)
			r.Post("/{deckId}/update-prices", deckHandler.UpdatePrices)
		})

		r.Get("/catalog/metadata", deckHandler.GetMetadata)
		r.Get("/system/metrics", systemHandler.GetMetrics)
	})
}

// healthCheck returns server health status. A configured database that does
// not answer marks the service degraded.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "healthy",
		"service": "precon-analyzer",
		"version": version.Get(),
	}
	if s.storage != nil {
		if err := s.storage.Ping(r.Context()); err != nil {
			body["status"] = "degraded"
			body["database"] = err.Error()
			response.JSON(w, http.StatusServiceUnavailable, body)
			return
		}
	}
	response.OK(w, body)
}
