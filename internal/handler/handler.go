package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bashkirian/haulstats/internal/aggregator"
	"github.com/bashkirian/haulstats/internal/charts"
	"github.com/bashkirian/haulstats/internal/loader"
	"github.com/bashkirian/haulstats/internal/storage"
)

// максимальный размер загружаемого журнала
const maxUploadSize = 64 << 20

type Handler struct {
	aggregator *aggregator.Aggregator
	loaderOpts loader.Options
	bins       int
	style      charts.Style
}

func New(agg *aggregator.Aggregator, loaderOpts loader.Options, bins int, style charts.Style) *Handler {
	return &Handler{
		aggregator: agg,
		loaderOpts: loaderOpts,
		bins:       bins,
		style:      style,
	}
}

// Routes регистрирует маршруты API
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Route("/reports", func(cr chi.Router) {
		cr.Post("/", h.HandlePostReport)
		cr.Get("/", h.HandleListReports)
		cr.Get("/{id}", h.HandleGetReport)
		cr.Get("/{id}/charts", h.HandleGetCharts)
	})
}

// POST /reports - загрузить журнал событий и посчитать отчёт
func (h *Handler) HandlePostReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	opts := h.loaderOpts
	if f := query.Get("format"); f != "" {
		format, err := loader.ParseFormat(f)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts.Format = format
	}

	name := query.Get("name")
	if name == "" {
		name = "upload"
	}

	body := http.MaxBytesReader(w, r.Body, maxUploadSize)
	in, err := loader.New(opts).Decode(body, name)
	if err != nil {
		writeLoadError(w, err)
		return
	}

	report, err := h.aggregator.Process(r.Context(), name, in)
	if err != nil {
		if errors.Is(err, aggregator.ErrDivisionByZero) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.Printf("[ERROR] process %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, "Failed to process events")
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

// GET /reports - список отчётов
func (h *Handler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	headers, err := h.aggregator.ListReports(r.Context())
	if err != nil {
		log.Printf("[ERROR] list reports: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, headers)
}

// GET /reports/{id} - получить отчёт
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.aggregator.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GET /reports/{id}/charts - данные для четырёх графиков
func (h *Handler) HandleGetCharts(w http.ResponseWriter, r *http.Request) {
	report, err := h.aggregator.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStorageError(w, err)
		return
	}

	set, err := charts.Build(report, h.bins, h.style)
	if err != nil {
		log.Printf("[ERROR] build charts for %s: %v", report.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to build charts")
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// GET /health - healthcheck
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeLoadError(w http.ResponseWriter, err error) {
	var (
		shapeErr *loader.InvalidDocumentShapeError
		maxErr   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &shapeErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, loader.ErrEmptyInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func writeStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	log.Printf("[ERROR] storage: %v", err)
	writeError(w, http.StatusInternalServerError, "Failed to read report")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
