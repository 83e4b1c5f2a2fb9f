package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/relvacode/iso8601"

	"github.com/stress-monitor/esms/internal/fhir"
	"github.com/stress-monitor/esms/internal/metrics"
	"github.com/stress-monitor/esms/internal/model"
	"github.com/stress-monitor/esms/internal/validation"
)

const fhirContentType = "application/fhir+json"

// handleHealth reports service health including uptime and data freshness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := model.HealthStatus{
		Status:        "healthy",
		Version:       Version,
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: s.store.UptimeSeconds(),
		TotalReadings: s.store.TotalReadings(),
		Clients:       s.store.ClientCount(),
	}
	if ts, ok := s.store.LastReadingTime(); ok {
		health.LastReading = &ts
	}

	WriteSuccess(w, health)
}

type ingestResponse struct {
	ReadingID     string `json:"reading_id"`
	CorrelationID string `json:"correlation_id"`
}

// handleIngest accepts an externally submitted reading. Validation happens
// here; the store itself accepts any well-formed reading.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	correlationID := r.Header.Get("X-Correlation-ID")
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	log := s.log.With(slog.String("correlation_id", correlationID))

	var input model.SensorInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteErrorFrom(w, fmt.Errorf("%w: invalid JSON body: %v", ErrBadRequest, err))
		return
	}

	if err := validation.SensorInput(input); err != nil {
		log.Warn("sensor input validation failed", slog.Any("error", err))
		WriteErrorFrom(w, err)
		return
	}

	reading := input.Reading(correlationID)
	s.recorder.Record(reading)
	metrics.ReadingsIngested.Inc()
	s.audit.ReadingIngested(reading.ID.String(), correlationID)

	log.Info("sensor data ingested", slog.String("reading_id", reading.ID.String()))
	WriteSuccessStatus(w, http.StatusCreated, ingestResponse{
		ReadingID:     reading.ID.String(),
		CorrelationID: correlationID,
	})
}

// handleLatest returns the most recent reading.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	reading, ok := s.store.Latest()
	if !ok {
		WriteErrorFrom(w, fmt.Errorf("%w: no sensor readings available", ErrNotFound))
		return
	}
	WriteSuccess(w, reading)
}

type historyResponse struct {
	Data       []model.Reading `json:"data"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// handleHistory returns paginated readings from the last N minutes.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page, limit, err := validation.Pagination(intQuery(r, "page"), intQuery(r, "limit"))
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	minutes := intQuery(r, "minutes")
	if minutes == 0 {
		minutes = 60
	}
	if minutes < 0 {
		WriteErrorFrom(w, fmt.Errorf("%w: minutes must be non-negative", ErrBadRequest))
		return
	}

	readings := s.store.WithinLastMinutes(minutes)
	total := len(readings)

	start := (page - 1) * limit
	end := start + limit
	if end > total {
		end = total
	}

	pageData := []model.Reading{}
	if start < total {
		pageData = readings[start:end]
	}

	WriteSuccess(w, historyResponse{
		Data:       pageData,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	})
}

// handleRange returns readings between two ISO-8601 timestamps.
func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" || endStr == "" {
		WriteErrorFrom(w, fmt.Errorf("%w: start and end query parameters are required", ErrBadRequest))
		return
	}

	start, err := iso8601.ParseString(startStr)
	if err != nil {
		WriteErrorFrom(w, fmt.Errorf("%w: invalid start timestamp: %v", ErrBadRequest, err))
		return
	}
	end, err := iso8601.ParseString(endStr)
	if err != nil {
		WriteErrorFrom(w, fmt.Errorf("%w: invalid end timestamp: %v", ErrBadRequest, err))
		return
	}
	if end.Before(start) {
		WriteErrorFrom(w, fmt.Errorf("%w: end must not precede start", ErrBadRequest))
		return
	}

	WriteSuccess(w, s.store.Range(start, end))
}

// handleStatistics returns the aggregate snapshot over the current history.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, s.store.Statistics())
}

// handleFHIRLatest returns the latest reading as a FHIR Bundle.
func (s *Server) handleFHIRLatest(w http.ResponseWriter, r *http.Request) {
	reading, ok := s.store.Latest()
	if !ok {
		WriteErrorFrom(w, fmt.Errorf("%w: no sensor readings available", ErrNotFound))
		return
	}

	bundle := fhir.ToBundle(reading, s.cfg.FHIR.PatientReference)
	writeRaw(w, fhirContentType, http.StatusOK, bundle)
}

// handleFHIRBundle returns recent readings as one combined FHIR Bundle.
func (s *Server) handleFHIRBundle(w http.ResponseWriter, r *http.Request) {
	count := intQuery(r, "count")
	if count <= 0 {
		count = 10
	}
	if count > 100 {
		count = 100
	}

	readings := s.store.Recent(count)
	if len(readings) == 0 {
		WriteErrorFrom(w, fmt.Errorf("%w: no sensor readings available", ErrNotFound))
		return
	}

	bundle := fhir.CombineBundles(readings, s.cfg.FHIR.PatientReference)
	writeRaw(w, fhirContentType, http.StatusOK, bundle)
}

// handleFHIRByType returns a single-channel Observation for the latest
// reading.
func (s *Server) handleFHIRByType(w http.ResponseWriter, r *http.Request) {
	obsType, err := fhir.ParseObservationType(mux.Vars(r)["type"])
	if err != nil {
		WriteErrorFrom(w, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	reading, ok := s.store.Latest()
	if !ok {
		WriteErrorFrom(w, fmt.Errorf("%w: no sensor readings available", ErrNotFound))
		return
	}

	obs := fhir.ToObservation(reading, obsType, s.cfg.FHIR.PatientReference)
	writeRaw(w, fhirContentType, http.StatusOK, obs)
}

// intQuery parses an integer query parameter, returning 0 when absent or
// malformed. Handlers apply their own defaults and range checks.
func intQuery(r *http.Request, name string) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return 0
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return n
}
