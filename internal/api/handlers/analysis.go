package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/precon-analyzer/internal/analysis"
	"github.com/ramonehamilton/precon-analyzer/internal/api/response"
	"github.com/ramonehamilton/precon-analyzer/internal/catalog"
	"github.com/ramonehamilton/precon-analyzer/internal/charts"
	"github.com/ramonehamilton/precon-analyzer/internal/export"
)

const (
	defaultRankingLimit = 50
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// AnalysisHandler handles valuation job requests.
type AnalysisHandler struct {
	analyzer Analyzer
	history  HistoryStore
	logger   *slog.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler. history may be nil.
func NewAnalysisHandler(analyzer Analyzer, history HistoryStore, logger *slog.Logger) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{analyzer: analyzer, history: history, logger: logger}
}

// StartAnalysisRequest selects decks to value. CSVData, when present, replaces
// the static catalog for this job; without SelectedDecks every deck in it is
// valued.
type StartAnalysisRequest struct {
	SelectedDecks []string      `json:"selectedDecks"`
	CSVData       []catalog.Row `json:"csvData"`
}

// StartAnalysisResponse is returned when a job has been accepted.
type StartAnalysisResponse struct {
	JobID      string          `json:"jobId"`
	Status     analysis.Status `json:"status"`
	TotalDecks int             `json:"totalDecks"`
}

// ResultsResponse is the outcome of a completed job.
type ResultsResponse struct {
	Rankings []analysis.RankingEntry `json:"rankings"`
	Stats    analysis.Stats          `json:"stats"`
}

// StartAnalysis creates a valuation job and returns immediately.
func (h *AnalysisHandler) StartAnalysis(w http.ResponseWriter, r *http.Request) {
	var req StartAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	start := analysis.StartRequest{DeckIDs: req.SelectedDecks}
	if req.CSVData != nil {
		cat := catalog.Build(req.CSVData, "upload")
		if len(start.DeckIDs) == 0 {
			for _, d := range cat.Decks() {
				start.DeckIDs = append(start.DeckIDs, d.ID)
			}
		}
		start.Catalog = catalog.Static(cat)
	}

	job, err := h.analyzer.Start(start)
	if errors.Is(err, analysis.ErrEmptySelection) {
		response.BadRequest(w, "no decks selected")
		return
	}
	if err != nil {
		h.logger.Error("Failed to start analysis", "error", err)
		response.InternalError(w, "Failed to start analysis")
		return
	}

	response.OK(w, StartAnalysisResponse{
		JobID:      job.ID(),
		Status:     job.Status(),
		TotalDecks: len(job.DeckIDs()),
	})
}

// GetProgress returns a job's progress.
func (h *AnalysisHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	job, ok := h.lookupJob(w, r)
	if !ok {
		return
	}
	response.OK(w, job.Progress())
}

// GetResults returns the rankings and stats of a completed job.
func (h *AnalysisHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	job, ok := h.lookupJob(w, r)
	if !ok {
		return
	}

	rep := job.Report()
	if job.Status() != analysis.StatusCompleted || rep == nil {
		response.Conflict(w, "analysis is "+string(job.Status()))
		return
	}

	response.OK(w, ResultsResponse{Rankings: rep.Rankings(0), Stats: rep.Stats()})
}

func (h *AnalysisHandler) lookupJob(w http.ResponseWriter, r *http.Request) (*analysis.Job, bool) {
	job, err := h.analyzer.Job(chi.URLParam(r, "jobId"))
	if errors.Is(err, analysis.ErrJobNotFound) {
		response.NotFound(w, "Job not found")
		return nil, false
	}
	if err != nil {
		response.InternalError(w, "Failed to get job")
		return nil, false
	}
	return job, true
}

// GetRankings ranks the current results.
func (h *AnalysisHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultRankingLimit, 0)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	rankings := []analysis.RankingEntry{}
	if rep := h.analyzer.Latest(); rep != nil {
		rankings = rep.Rankings(limit)
	}
	response.OK(w, rankings)
}

// GetStats summarizes the current results.
func (h *AnalysisHandler) GetStats(w http.ResponseWriter, _ *http.Request) {
	var stats analysis.Stats
	if rep := h.analyzer.Latest(); rep != nil {
		stats = rep.Stats()
	}
	response.OK(w, stats)
}

// Reset clears jobs and current results.
func (h *AnalysisHandler) Reset(w http.ResponseWriter, _ *http.Request) {
	h.analyzer.Reset()
	response.OK(w, map[string]bool{"success": true})
}

// GetHistory lists recorded jobs, newest first.
func (h *AnalysisHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		response.ServiceUnavailable(w, "job history is not available")
		return
	}

	limit, err := parseLimit(r, defaultHistoryLimit, maxHistoryLimit)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	jobs, err := h.history.RecentJobs(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list job history", "error", err)
		response.InternalError(w, "Failed to get history")
		return
	}
	response.OK(w, jobs)
}

// ExportWorkbook downloads the current results as an xlsx workbook.
func (h *AnalysisHandler) ExportWorkbook(w http.ResponseWriter, _ *http.Request) {
	rep := h.analyzer.Latest()
	if rep == nil {
		response.NotFound(w, "no analysis results to export")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, rep); err != nil {
		h.logger.Error("Failed to build workbook", "error", err)
		response.InternalError(w, "Failed to export results")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="precon-rankings.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// GetChart renders the current ranking as an HTML bar chart.
func (h *AnalysisHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultRankingLimit, 0)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	var rankings []analysis.RankingEntry
	if rep := h.analyzer.Latest(); rep != nil {
		rankings = rep.Rankings(limit)
	}

	var buf bytes.Buffer
	if err := charts.RenderRankingChart(&buf, rankings, charts.DefaultChartConfig()); err != nil {
		h.logger.Error("Failed to render chart", "error", err)
		response.InternalError(w, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
