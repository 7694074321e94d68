package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"roastlog/internal/analytics"
	"roastlog/internal/profiles"
	roasts "roastlog/internal/roasts/domain"
	"roastlog/internal/session/application"
	session "roastlog/internal/session/domain"
)

// Archiver stores a finished session snapshot.
type Archiver interface {
	Finish(ctx context.Context, label string, cfg session.Config, readings map[int]float64) (*roasts.Roast, error)
}

// Handler serves the live session API under /api/v1/session.
type Handler struct {
	service  *application.Service
	presets  profiles.Config
	archiver Archiver
}

// NewHandler constructs a session handler. The archiver is optional; without
// it the finish route reports the archive as unavailable.
func NewHandler(service *application.Service, presets profiles.Config, archiver Archiver) (*Handler, error) {
	if service == nil {
		return nil, errors.New("session handler: nil service")
	}
	return &Handler{service: service, presets: presets, archiver: archiver}, nil
}

type seriesPoint struct {
	BoundaryIndex int      `json:"boundary_index"`
	Seconds       int      `json:"seconds"`
	Value         *float64 `json:"value,omitempty"`
}

// ServeHTTP routes session requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/session" && r.Method == http.MethodGet:
		h.handleStatus(w, r)
	case path == "/api/v1/session/can-start" && r.Method == http.MethodGet:
		h.handleCanStart(w, r)
	case path == "/api/v1/session/start" && r.Method == http.MethodPost:
		h.handleStart(w, r)
	case path == "/api/v1/session/stop" && r.Method == http.MethodPost:
		h.service.Stop()
		w.WriteHeader(http.StatusNoContent)
	case path == "/api/v1/session/reset" && r.Method == http.MethodPost:
		h.service.Reset()
		w.WriteHeader(http.StatusNoContent)
	case path == "/api/v1/session/readings" && r.Method == http.MethodPost:
		h.handleRecord(w, r)
	case path == "/api/v1/session/readings" && r.Method == http.MethodGet:
		h.handleBoundaries(w, r)
	case strings.HasPrefix(path, "/api/v1/session/readings/") && r.Method == http.MethodDelete:
		h.handleRemove(w, r, strings.TrimPrefix(path, "/api/v1/session/readings/"))
	case path == "/api/v1/session/series" && r.Method == http.MethodGet:
		h.handleSeries(w, r)
	case path == "/api/v1/session/finish" && r.Method == http.MethodPost:
		h.handleFinish(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status := h.service.Status()
	resp := map[string]any{
		"running":         status.Running,
		"elapsed_seconds": status.ElapsedSeconds,
		"last_boundary":   status.LastBoundary,
		"max_boundary":    status.MaxBoundary,
	}
	if status.Config.Valid() {
		resp["config"] = map[string]any{
			"duration_minutes": status.Config.DurationMinutes,
			"interval_seconds": status.Config.IntervalSeconds,
			"starting_reading": status.Config.StartingReading,
		}
	}
	writeJSON(w, resp)
}

func (h *Handler) handleCanStart(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	duration, err1 := strconv.Atoi(query.Get("duration_minutes"))
	interval, err2 := strconv.Atoi(query.Get("interval_seconds"))
	reading, err3 := strconv.ParseFloat(query.Get("starting_reading"), 64)
	if err1 != nil || err2 != nil || err3 != nil {
		writeJSON(w, map[string]any{"can_start": false})
		return
	}
	cfg := session.Config{DurationMinutes: duration, IntervalSeconds: interval, StartingReading: reading}
	writeJSON(w, map[string]any{"can_start": h.service.CanStart(cfg)})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Profile         string   `json:"profile"`
		DurationMinutes *int     `json:"duration_minutes"`
		IntervalSeconds *int     `json:"interval_seconds"`
		StartingReading *float64 `json:"starting_reading"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	profile, err := h.presets.Resolve(req.Profile)
	if err != nil {
		http.Error(w, "unknown profile", http.StatusBadRequest)
		return
	}
	cfg := profile.SessionConfig()
	if req.DurationMinutes != nil {
		cfg.DurationMinutes = *req.DurationMinutes
	}
	if req.IntervalSeconds != nil {
		cfg.IntervalSeconds = *req.IntervalSeconds
	}
	if req.StartingReading != nil {
		cfg.StartingReading = *req.StartingReading
	}

	if !cfg.Valid() {
		http.Error(w, "invalid session configuration", http.StatusBadRequest)
		return
	}
	if !h.service.Start(cfg) {
		http.Error(w, "session already running", http.StatusConflict)
		return
	}
	writeJSON(w, map[string]any{
		"started":      true,
		"max_boundary": cfg.MaxBoundary(),
	})
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BoundaryIndex *int     `json:"boundary_index"`
		Value         *float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BoundaryIndex == nil || req.Value == nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	status := h.service.Status()
	if !status.Config.Valid() {
		http.Error(w, "no session configured", http.StatusConflict)
		return
	}
	// The store accepts any index; constraining to the active session's
	// boundary range is this layer's responsibility.
	if *req.BoundaryIndex < 0 || *req.BoundaryIndex > status.MaxBoundary {
		http.Error(w, "boundary index out of range", http.StatusBadRequest)
		return
	}

	h.service.Record(*req.BoundaryIndex, *req.Value)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemove(w http.ResponseWriter, _ *http.Request, raw string) {
	boundary, err := strconv.Atoi(raw)
	if err != nil || boundary < 0 {
		http.Error(w, "invalid boundary index", http.StatusBadRequest)
		return
	}
	h.service.Remove(boundary)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBoundaries(w http.ResponseWriter, _ *http.Request) {
	boundaries := h.service.Boundaries()
	if boundaries == nil {
		boundaries = []int{}
	}
	writeJSON(w, map[string]any{"boundaries": boundaries})
}

func (h *Handler) handleSeries(w http.ResponseWriter, _ *http.Request) {
	series := h.service.DenseSeries()
	if series == nil {
		http.Error(w, "no session configured", http.StatusConflict)
		return
	}
	points := make([]seriesPoint, 0, len(series))
	for _, point := range series {
		points = append(points, seriesPoint{
			BoundaryIndex: point.BoundaryIndex,
			Seconds:       point.Seconds,
			Value:         point.Value,
		})
	}
	writeJSON(w, map[string]any{
		"series":       points,
		"summary":      analytics.Summarize(series),
		"rate_of_rise": analytics.RateOfRise(series),
	})
}

func (h *Handler) handleFinish(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		http.Error(w, "archive unavailable", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Label string `json:"label"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	h.service.Stop()
	cfg, readings := h.service.Snapshot()
	roast, err := h.archiver.Finish(r.Context(), req.Label, cfg, readings)
	if errors.Is(err, roasts.ErrEmptyReadings) || errors.Is(err, roasts.ErrInvalidConfig) {
		http.Error(w, "nothing to archive", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "archive failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"roast_id": roast.ID})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
