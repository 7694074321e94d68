package http

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"roastlog/internal/analytics"
	"roastlog/internal/observability/metrics"
	"roastlog/internal/roasts/application"
	roasts "roastlog/internal/roasts/domain"
	roastexport "roastlog/internal/roasts/interfaces"
	session "roastlog/internal/session/domain"
)

// Handler serves the roast archive API under /api/v1/roasts.
type Handler struct {
	service *application.ArchiveService
}

// NewHandler constructs a handler.
func NewHandler(service *application.ArchiveService) (*Handler, error) {
	if service == nil {
		return nil, errors.New("roasts handler: nil service")
	}
	return &Handler{service: service}, nil
}

type roastSummary struct {
	ID              string    `json:"id"`
	Label           string    `json:"label,omitempty"`
	RoastedAt       time.Time `json:"roasted_at"`
	DurationMinutes int       `json:"duration_minutes"`
	IntervalSeconds int       `json:"interval_seconds"`
	StartingReading float64   `json:"starting_reading"`
	ReadingCount    int       `json:"reading_count"`
}

type seriesPoint struct {
	BoundaryIndex int      `json:"boundary_index"`
	Seconds       int      `json:"seconds"`
	Value         *float64 `json:"value,omitempty"`
}

type roastDetail struct {
	roastSummary
	Series  []seriesPoint     `json:"series"`
	Summary analytics.Summary `json:"summary"`
}

func summarize(roast *roasts.Roast) roastSummary {
	return roastSummary{
		ID:              roast.ID,
		Label:           roast.Label,
		RoastedAt:       roast.RoastedAt,
		DurationMinutes: roast.DurationMinutes,
		IntervalSeconds: roast.IntervalSeconds,
		StartingReading: roast.StartingReading,
		ReadingCount:    len(roast.Readings),
	}
}

func toSeriesPoints(series []session.SeriesPoint) []seriesPoint {
	points := make([]seriesPoint, 0, len(series))
	for _, point := range series {
		points = append(points, seriesPoint{
			BoundaryIndex: point.BoundaryIndex,
			Seconds:       point.Seconds,
			Value:         point.Value,
		})
	}
	return points
}

// ServeHTTP routes roast archive requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	path := r.URL.Path
	if path == "/api/v1/roasts" {
		h.handleList(w, r)
		return
	}
	rest := strings.TrimPrefix(path, "/api/v1/roasts/")
	if rest == path {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch {
	case strings.HasSuffix(rest, "/report.pdf"):
		h.handleExport(w, r, strings.TrimSuffix(rest, "/report.pdf"), "pdf")
	case strings.HasSuffix(rest, "/report.xlsx"):
		h.handleExport(w, r, strings.TrimSuffix(rest, "/report.xlsx"), "xlsx")
	default:
		h.handleGet(w, r, rest)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	list, err := h.service.List(r.Context(), limit)
	if err != nil {
		http.Error(w, "list roasts failed", http.StatusInternalServerError)
		return
	}
	summaries := make([]roastSummary, 0, len(list))
	for _, roast := range list {
		summaries = append(summaries, summarize(roast))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"roasts": summaries})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	roast, err := h.service.Get(r.Context(), id)
	if errors.Is(err, roasts.ErrRoastNotFound) {
		http.Error(w, "roast not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "load roast failed", http.StatusInternalServerError)
		return
	}
	series := roast.DenseSeries()
	detail := roastDetail{
		roastSummary: summarize(roast),
		Series:       toSeriesPoints(series),
		Summary:      analytics.Summarize(series),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(detail)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, id, format string) {
	roast, err := h.service.Get(r.Context(), id)
	if errors.Is(err, roasts.ErrRoastNotFound) {
		http.Error(w, "roast not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "load roast failed", http.StatusInternalServerError)
		return
	}

	start := time.Now()
	var data []byte
	var contentType string
	switch format {
	case "pdf":
		data, err = roastexport.BuildRoastPDF(roast)
		contentType = "application/pdf"
	case "xlsx":
		data, err = roastexport.BuildRoastXLSX(roast)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		http.Error(w, "unsupported format", http.StatusBadRequest)
		return
	}
	if err != nil {
		metrics.ObserveReportExport(format, metrics.ResultError, time.Since(start).Seconds())
		http.Error(w, "report export failed", http.StatusInternalServerError)
		return
	}
	metrics.ObserveReportExport(format, metrics.ResultSuccess, time.Since(start).Seconds())

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+roast.ID+`-report.`+format+`"`)
	_, _ = w.Write(data)
}

// ExportRoastsCSVHandler streams every archived reading as CSV rows.
type ExportRoastsCSVHandler struct {
	service *application.ArchiveService
}

// NewExportRoastsCSVHandler constructs the CSV export handler.
func NewExportRoastsCSVHandler(service *application.ArchiveService) *ExportRoastsCSVHandler {
	return &ExportRoastsCSVHandler{service: service}
}

// ServeHTTP handles GET /api/v1/exports/roasts.csv.
func (h *ExportRoastsCSVHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "export not ready", http.StatusServiceUnavailable)
		return
	}
	list, err := h.service.List(r.Context(), 0)
	if err != nil {
		http.Error(w, "list roasts failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="roasts.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"roast_id", "label", "roasted_at", "boundary_index", "seconds", "temperature"})
	for _, roast := range list {
		for _, point := range roast.DenseSeries() {
			value := ""
			if point.Value != nil {
				value = strconv.FormatFloat(*point.Value, 'f', -1, 64)
			}
			_ = writer.Write([]string{
				roast.ID,
				roast.Label,
				roast.RoastedAt.Format(time.RFC3339),
				strconv.Itoa(point.BoundaryIndex),
				strconv.Itoa(point.Seconds),
				value,
			})
		}
	}
	writer.Flush()
}
