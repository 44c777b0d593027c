package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"snaplist/internal/listing"
	"snaplist/internal/storage"
)

const defaultRecentLimit = 20

// Server exposes the listing pipeline over HTTP.
type Server struct {
	pipeline *listing.Pipeline
	store    storage.Store
	validate *validator.Validate
}

// NewServer creates a server. store may be nil, which disables the listing
// history endpoint.
func NewServer(pipeline *listing.Pipeline, store storage.Store) *Server {
	return &Server{
		pipeline: pipeline,
		store:    store,
		validate: validator.New(),
	}
}

type listingRequest struct {
	ImageData       string `json:"imageData" validate:"required"`
	ItemDescription string `json:"itemDescription"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns the routed handler with CORS and request logging applied
// to every response, including preflight and errors.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/listings", s.createListingHandler).Methods(http.MethodPost)
	if s.store != nil {
		r.HandleFunc("/api/listings/recent", s.recentListingsHandler).Methods(http.MethodGet)
	}
	return corsMiddleware(requestLogMiddleware(r))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createListingHandler(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No image data provided"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No image data provided"})
		return
	}

	result, err := s.pipeline.Run(r.Context(), req.ImageData, req.ItemDescription)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	// History is best-effort audit; a write failure never fails the request.
	if s.store != nil {
		rec := &storage.ListingRecord{
			Title:       result.Title,
			Description: result.Description,
			Category:    result.Category,
			Price:       result.Price,
			Method:      result.AnalysisMethod,
			Confidence:  result.Confidence,
		}
		if err := s.store.SaveListing(rec); err != nil {
			log.Warn().Err(err).Msg("failed to save listing to history")
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) recentListingsHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.store.RecentListings(limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to load recent listings")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load listings"})
		return
	}
	if records == nil {
		records = []storage.ListingRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	if errors.Is(err, listing.ErrMissingImageData) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No image data provided"})
		return
	}
	// Missing vision credential and vision service failures are both server
	// faults; the message is surfaced verbatim to aid operator diagnosis.
	log.Error().Err(err).Msg("listing generation failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("requestId", uuid.NewString()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
