// Package api exposes the daily record, cards, and goals over HTTP.
package api

// #region imports
import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/cards"
	"github.com/danielpatrickdp/operator-state/internal/logging"
	"github.com/danielpatrickdp/operator-state/internal/orchestrator"
	"github.com/danielpatrickdp/operator-state/internal/store"
	"github.com/danielpatrickdp/operator-state/internal/telemetry"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

// #endregion

// #region server

const maxBodyBytes = 64 << 10

// Server wires the HTTP routes over the pipeline runner.
type Server struct {
	runner *orchestrator.Runner
	now    func() time.Time
}

// NewServer builds the API server. now may be nil.
func NewServer(r *orchestrator.Runner, now func() time.Time) *Server {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Server{runner: r, now: now}
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/record/{date}", s.handleGetRecord)
	mux.HandleFunc("GET /v1/cards", s.handleGetCards)
	mux.HandleFunc("POST /v1/cards/{id}/complete", s.handleCompleteCard)
	mux.HandleFunc("POST /v1/cards/{id}/dismiss", s.handleDismissCard)
	mux.HandleFunc("GET /v1/goals", s.handleGetGoals)
	mux.HandleFunc("PUT /v1/goals", s.handlePutGoals)
	mux.HandleFunc("POST /v1/refresh", s.handleRefresh)
	mux.Handle("GET /healthz", telemetry.Handler())
}

// #endregion server

// #region record

// handleGetRecord serves one daily record; "today" resolves to the current
// civil date.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if date == "today" {
		date = wearable.DateOf(s.now())
	}
	if _, err := time.Parse(wearable.DateLayout, date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_date", "date must be YYYY-MM-DD or \"today\"")
		return
	}

	rec, err := s.runner.Store.GetDailyRecord(date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "not_found", "no record for "+date)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// #endregion record

// #region cards

func (s *Server) handleGetCards(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = wearable.DateOf(s.now())
	}
	active, err := s.runner.ActiveCards(date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if len(active) > cards.MaxActive {
		active = active[:cards.MaxActive]
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "cards": active})
}

func (s *Server) handleCompleteCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "unreadable body")
		return
	}
	var raw json.RawMessage
	if len(payload) > 0 {
		if !json.Valid(payload) {
			writeError(w, http.StatusBadRequest, "bad_request", "body must be JSON")
			return
		}
		raw = payload
	}

	c, err := s.runner.CompleteCard(r.Context(), id, raw)
	if err != nil {
		writeCardOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDismissCard(w http.ResponseWriter, r *http.Request) {
	c, err := s.runner.DismissCard(r.PathValue("id"))
	if err != nil {
		writeCardOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func writeCardOpError(w http.ResponseWriter, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		writeError(w, http.StatusNotFound, "not_found", msg)
	case strings.Contains(msg, "only active cards"):
		writeError(w, http.StatusConflict, "invalid_state", msg)
	default:
		writeError(w, http.StatusInternalServerError, "card_error", msg)
	}
}

// #endregion cards

// #region goals

func (s *Server) handleGetGoals(w http.ResponseWriter, r *http.Request) {
	g, err := s.runner.Store.GetGoals()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if g == nil {
		writeError(w, http.StatusNotFound, "not_found", "no goals set")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handlePutGoals(w http.ResponseWriter, r *http.Request) {
	var g store.Goals
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&g); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "body must be a goals object")
		return
	}
	if strings.TrimSpace(g.PrimaryGoal) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "primary_goal must not be empty")
		return
	}
	g.UpdatedAt = time.Time{} // stamped by the store
	if err := s.runner.SetGoals(g); err != nil {
		writeError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	saved, err := s.runner.Store.GetGoals()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// #endregion goals

// #region refresh

type refreshRequest struct {
	Date        string `json:"date"`
	Force       bool   `json:"force"`
	GoalsManual bool   `json:"goals_manual"` // explicit goals re-intake request
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if r.Body != nil {
		// Empty body means "today, not forced".
		_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	}
	if req.Date == "" {
		req.Date = wearable.DateOf(s.now())
	}
	if _, err := time.Parse(wearable.DateLayout, req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_date", "date must be YYYY-MM-DD")
		return
	}

	rec, err := s.runner.Run(r.Context(), req.Date, orchestrator.Opts{
		Trigger:     logging.TriggerRefresh,
		Force:       req.Force,
		GoalsManual: req.GoalsManual,
	})
	if err != nil {
		log.Printf("[API] refresh %s failed: %v", req.Date, err)
		writeError(w, http.StatusBadGateway, "run_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// #endregion refresh

// #region json

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// #endregion json
