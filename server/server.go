package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ne3naika-ctrl/codex/internal/models"
	"github.com/ne3naika-ctrl/codex/pkg/extractor"
	"github.com/ne3naika-ctrl/codex/pkg/rag"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxUploadBytes = 32 << 20

type Config struct {
	Addr            string
	IngestRateLimit float64 // ingestion requests per second, 0 disables
	DefaultLimit    int
}

type Server struct {
	config   Config
	pipeline *rag.Pipeline
	limiter  *rate.Limiter
	log      zerolog.Logger
}

type TextIngestRequest struct {
	SourceName string `json:"source_name"`
	Text       string `json:"text"`
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type IngestResponse struct {
	Status string `json:"status"`
	Chunks int    `json:"chunks"`
}

type SearchResponse struct {
	Results []models.SearchResult `json:"results"`
}

func New(config Config, pipeline *rag.Pipeline, log zerolog.Logger) *Server {
	if config.DefaultLimit == 0 {
		config.DefaultLimit = 5
	}

	var limiter *rate.Limiter
	if config.IngestRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.IngestRateLimit), 1)
	}

	return &Server{
		config:   config,
		pipeline: pipeline,
		limiter:  limiter,
		log:      log,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /ingest/text", s.limitIngest(s.handleIngestText))
	mux.HandleFunc("POST /ingest/file", s.limitIngest(s.handleIngestFile))
	mux.HandleFunc("POST /search", s.handleSearch)
	return mux
}

func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.config.Addr).Msg("starting server")
	return http.ListenAndServe(s.config.Addr, s.Routes())
}

func (s *Server) limitIngest(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.writeError(w, http.StatusTooManyRequests, "too many ingestion requests")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIngestText(w http.ResponseWriter, r *http.Request) {
	var req TextIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SourceName == "" {
		req.SourceName = "manual_input"
	}

	count, err := s.pipeline.Ingest(r.Context(), req.SourceName, models.SourceTypeText, req.Text)
	if err != nil {
		s.writeIngestError(w, req.SourceName, err)
		return
	}

	s.writeJSON(w, http.StatusOK, IngestResponse{Status: "stored", Chunks: count})
}

func (s *Server) handleIngestFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	filename := header.Filename
	if filename == "" {
		filename = "unknown"
	}

	text, sourceType, err := extractor.FromFile(filename, raw)
	if err != nil {
		if errors.Is(err, extractor.ErrUnsupportedType) {
			s.writeError(w, http.StatusBadRequest, "only .txt, .md, .pdf and .html files are supported")
			return
		}
		s.writeError(w, http.StatusBadRequest, "failed to extract text: "+err.Error())
		return
	}

	count, err := s.pipeline.Ingest(r.Context(), filename, sourceType, text)
	if err != nil {
		s.writeIngestError(w, filename, err)
		return
	}

	s.writeJSON(w, http.StatusOK, IngestResponse{Status: "stored", Chunks: count})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = s.config.DefaultLimit
	}

	results, err := s.pipeline.Retrieve(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.log.Error().Err(err).Str("query", req.Query).Msg("search failed")
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	s.writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

func (s *Server) writeIngestError(w http.ResponseWriter, sourceName string, err error) {
	if errors.Is(err, rag.ErrEmptyContent) {
		s.writeError(w, http.StatusBadRequest, "no extractable content")
		return
	}
	s.log.Error().Err(err).Str("source_name", sourceName).Msg("ingestion failed")
	s.writeError(w, http.StatusInternalServerError, "ingestion failed")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}
