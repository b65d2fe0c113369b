package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"chapter-quiz-service/internal/app"
	"chapter-quiz-service/internal/domain"
	"chapter-quiz-service/internal/report"
	"github.com/rs/zerolog"
)

// ReportHandler serves archived results as a workbook download or chart data.
type ReportHandler struct {
	service *app.QuizService
	log     zerolog.Logger
}

func NewReportHandler(service *app.QuizService, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{service: service, log: log}
}

// Register mounts the report routes on mux.
func (h *ReportHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /reports/{id}", h.ServeWorkbook)
	mux.HandleFunc("GET /reports/{id}/charts", h.ServeCharts)
}

func (h *ReportHandler) ServeWorkbook(w http.ResponseWriter, r *http.Request) {
	result, ok := h.lookup(w, r)
	if !ok {
		return
	}
	data, err := report.Workbook(result)
	if err != nil {
		h.log.Error().Err(err).Str("result_id", result.ID).Msg("render workbook failed")
		http.Error(w, "could not render report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	_, _ = w.Write(data)
}

func (h *ReportHandler) ServeCharts(w http.ResponseWriter, r *http.Request) {
	result, ok := h.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report.Charts(result.Report))
}

func (h *ReportHandler) lookup(w http.ResponseWriter, r *http.Request) (domain.StoredResult, bool) {
	result, err := h.service.Result(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrResultNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return domain.StoredResult{}, false
	}
	if err != nil {
		h.log.Error().Err(err).Msg("result lookup failed")
		http.Error(w, "result lookup failed", http.StatusInternalServerError)
		return domain.StoredResult{}, false
	}
	return result, true
}
