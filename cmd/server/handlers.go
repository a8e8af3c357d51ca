package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/NLeSC/Spec2Vec/pkg/logger"
	"github.com/NLeSC/Spec2Vec/pkg/spec2vec"
	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/similarity"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service spec2vec.Service
	config  *ServerConfig
	log     spec2vec.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	Tolerance      float64
	Measure        string
	Workers        int
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(service spec2vec.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "Spec2Vec API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":         "GET /health",
			"metrics":        "GET /api/health/metrics",
			"spectra":        "GET /api/spectra",
			"addSpectrum":    "POST /api/spectra",
			"getSpectrum":    "GET /api/spectra/{id}",
			"deleteSpectrum": "DELETE /api/spectra/{id}",
			"search":         "POST /api/search",
			"score":          "POST /api/score",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.ListSpectra()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:        "healthy",
		DatabasePath:  s.config.DBPath,
		SpectrumCount: len(entries),
	})
}

// handleSpectra handles GET and POST /api/spectra
func (s *Server) handleSpectra(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListSpectra(w, r)
	case http.MethodPost:
		s.handleAddSpectrum(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleListSpectra(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.ListSpectra()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := ListSpectraResponse{Spectra: make([]EntryDTO, len(entries)), Count: len(entries)}
	for i, e := range entries {
		resp.Spectra[i] = EntryDTO{
			ID:          e.ID,
			Name:        e.Name,
			PrecursorMz: e.PrecursorMz,
			Charge:      e.Charge,
			NumPeaks:    e.NumPeaks,
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddSpectrum(w http.ResponseWriter, r *http.Request) {
	var req AddSpectrumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	spec, err := req.Spectrum.Spectrum()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.service.AddSpectrum(r.Context(), req.Name, spec)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, AddSpectrumResponse{
		Message:  "spectrum registered",
		ID:       id,
		Name:     req.Name,
		NumPeaks: spec.Len(),
	})
}

// handleSpectrum handles GET and DELETE /api/spectra/{id}
func (s *Server) handleSpectrum(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/spectra/")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "missing spectrum id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		_, entry, err := s.service.GetSpectrum(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.respondError(w, http.StatusNotFound, "spectrum not found")
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, EntryDTO{
			ID:          entry.ID,
			Name:        entry.Name,
			PrecursorMz: entry.PrecursorMz,
			Charge:      entry.Charge,
			NumPeaks:    entry.NumPeaks,
		})
	case http.MethodDelete:
		if err := s.service.DeleteSpectrum(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.respondError(w, http.StatusNotFound, "spectrum not found")
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, DeleteSpectrumResponse{Message: "spectrum deleted", ID: id})
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSearch handles POST /api/search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	query, err := req.Spectrum.Spectrum()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Per-request search options need a dedicated service over the same
	// storage; rebuilding one is cheap compared to the matrix work.
	svc := s.service
	if req.Top > 0 || req.Prefilter > 0 {
		svc, err = spec2vec.NewService(
			spec2vec.WithDBPath(s.config.DBPath),
			spec2vec.WithMeasure(s.config.Measure),
			spec2vec.WithTolerance(s.config.Tolerance),
			spec2vec.WithWorkers(s.config.Workers),
			spec2vec.WithMaxResults(req.Top),
			spec2vec.WithPrefilter(req.Prefilter),
		)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer svc.Close()
	}

	matches, err := svc.Search(r.Context(), query)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := SearchResponse{Matches: make([]MatchDTO, len(matches)), Count: len(matches)}
	for i, m := range matches {
		resp.Matches[i] = MatchDTO{
			ID:           m.ID,
			Name:         m.Name,
			PrecursorMz:  m.PrecursorMz,
			Score:        m.Score,
			MatchedPeaks: m.MatchedPeaks,
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleScore handles POST /api/score
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	a, err := req.A.Spectrum()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "spectrum a: "+err.Error())
		return
	}
	b, err := req.B.Spectrum()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "spectrum b: "+err.Error())
		return
	}

	tolerance := s.config.Tolerance
	if req.Tolerance != nil {
		tolerance = *req.Tolerance
	}
	intensityPower := similarity.DefaultIntensityPower
	if req.IntensityPower != nil {
		intensityPower = *req.IntensityPower
	}
	measureName := req.Measure
	if measureName == "" {
		measureName = spec2vec.MeasureCosine
	}

	var measure similarity.Measure
	switch measureName {
	case spec2vec.MeasureCosine:
		measure, err = similarity.NewCosineGreedy(tolerance, req.MzPower, intensityPower)
	case spec2vec.MeasureModifiedCosine:
		measure, err = similarity.NewModifiedCosine(tolerance, req.MzPower, intensityPower)
	case spec2vec.MeasureIntersect:
		measure, err = similarity.NewIntersectMz(tolerance)
	default:
		s.respondError(w, http.StatusBadRequest, "unknown measure: "+measureName)
		return
	}
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := measure.Pair(a, b)
	if err != nil {
		if errors.Is(err, similarity.ErrMissingPrecursorMz) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, ScoreResponse{
		Measure:      measure.Name(),
		Score:        res.Score,
		MatchedPeaks: res.MatchedPeaks,
	})
}
