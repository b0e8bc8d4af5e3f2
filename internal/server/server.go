package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"volSurface/internal/grid"
	"volSurface/internal/mapper"
	"volSurface/internal/model"
)

// Server exposes a dataset's surface to a rendering client over HTTP.
// Rebuilds are serialized; reads see either the old or the new surface.
type Server struct {
	mu      sync.RWMutex
	dataset *grid.Dataset
	mapper  *mapper.Mapper
	logger  *zap.Logger
	router  *mux.Router
}

func New(dataset *grid.Dataset, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		dataset: dataset,
		mapper:  mapper.New(dataset.Surface()),
		logger:  logger,
		router:  mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/surface", s.handleSurface).Methods(http.MethodGet)
	s.router.HandleFunc("/pick", s.handlePick).Methods(http.MethodGet)
	s.router.HandleFunc("/reprocess", s.handleReprocess).Methods(http.MethodPost)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

type surfaceResponse struct {
	Ticker      string           `json:"ticker"`
	OptionType  model.OptionType `json:"option_type"`
	Filter      grid.Filter      `json:"filter"`
	Expirations []float64        `json:"expirations"`
	Moneyness   []float64        `json:"moneyness"`
	Vol         grid.Grid        `json:"vol"`
	Normalized  grid.Grid        `json:"normalized"`
	Range       grid.Range       `json:"range"`
	Info        grid.InfoGrid    `json:"info"`
	Points      []mapper.Point   `json:"points"`
	Degenerate  bool             `json:"degenerate"`
	Summary     grid.Summary     `json:"summary"`
}

type pickResponse struct {
	Hit    bool        `json:"hit"`
	Result *mapper.Hit `json:"result,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSurface(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	resp := s.surfaceLocked()
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) surfaceLocked() surfaceResponse {
	surface := s.dataset.Surface()
	return surfaceResponse{
		Ticker:      s.dataset.Ticker(),
		OptionType:  s.dataset.OptionType(),
		Filter:      surface.Filter,
		Expirations: surface.Expirations,
		Moneyness:   surface.Moneyness,
		Vol:         surface.Vol,
		Normalized:  s.mapper.Normalized(),
		Range:       s.mapper.Range(),
		Info:        surface.Info,
		Points:      s.mapper.Points(),
		Degenerate:  s.mapper.Degenerate(),
		Summary:     grid.Summarize(surface),
	}
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var coords [3]float64
	for idx, key := range []string{"x", "y", "z"} {
		raw := q.Get(key)
		if raw == "" && key == "y" {
			continue
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid " + key})
			return
		}
		coords[idx] = val
	}

	s.mu.RLock()
	hit, ok := s.mapper.Pick(mapper.Vec3{X: coords[0], Y: coords[1], Z: coords[2]})
	s.mu.RUnlock()

	if !ok {
		writeJSON(w, http.StatusOK, pickResponse{Hit: false})
		return
	}
	writeJSON(w, http.StatusOK, pickResponse{Hit: true, Result: &hit})
}

func (s *Server) handleReprocess(w http.ResponseWriter, r *http.Request) {
	minVolume, err := parseThreshold(r, "min-volume")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	minOpenInterest, err := parseThreshold(r, "min-open-interest")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	surface, err := s.dataset.Reprocess(minVolume, minOpenInterest)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("reprocess failed", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.mapper = mapper.New(surface)
	resp := s.surfaceLocked()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func parseThreshold(r *http.Request, key string) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || val < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return val, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
