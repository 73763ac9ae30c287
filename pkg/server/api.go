package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kylerisse/dadboard/pkg/actionlog"
	"github.com/kylerisse/dadboard/pkg/board"
	"github.com/kylerisse/dadboard/pkg/config"
	"github.com/kylerisse/dadboard/pkg/status"
	"github.com/kylerisse/dadboard/pkg/trigger"
)

const (
	defaultActionLimit = 50
	maxActionLimit     = 500
)

// SummaryResponse is the body of /api/summary.
type SummaryResponse struct {
	Headline string `json:"headline"`
	board.Summary
}

// MachineResponse is the body of /api/machines/{pc}.
type MachineResponse struct {
	Record  status.Record `json:"record"`
	Row     board.Row     `json:"row"`
	Address string        `json:"address,omitempty"`
}

// LaunchRequest is the body of POST /api/launch. AppID may also hold a
// game name.
type LaunchRequest struct {
	AppID string `json:"appid"`
}

func (s *Server) handleAPI(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.board.Snapshot())
}

func (s *Server) handleSummaryAPI(w http.ResponseWriter, _ *http.Request) {
	snap := s.board.Snapshot()
	s.writeJSON(w, http.StatusOK, SummaryResponse{
		Headline: snap.Headline,
		Summary:  board.Summarize(snap.Records),
	})
}

func (s *Server) handleGamesAPI(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.games)
}

func (s *Server) handleActionsAPI(w http.ResponseWriter, r *http.Request) {
	limit := defaultActionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxActionLimit)
	}

	actions := []actionlog.Action{}
	if s.actions != nil {
		recent, err := s.actions.Recent(r.Context(), limit)
		if err != nil {
			s.logger.Errorf("API Handler: failed to list actions (%v)", err)
			http.Error(w, "Failed to list actions", http.StatusInternalServerError)
			return
		}
		actions = append(actions, recent...)
	}
	s.writeJSON(w, http.StatusOK, actions)
}

func (s *Server) handleMachineAPI(w http.ResponseWriter, r *http.Request) {
	pc := chi.URLParam(r, "pc")
	if _, ok := s.board.Machine(pc); !ok {
		http.Error(w, "Unknown PC", http.StatusNotFound)
		return
	}

	snap := s.board.Snapshot()
	row, _ := snap.Row(pc)
	rec, ok := snap.Record(pc)
	if !ok {
		// not polled yet
		rec = status.Record{PC: pc}
	}
	s.writeJSON(w, http.StatusOK, MachineResponse{
		Record:  rec,
		Row:     row,
		Address: snap.Addresses[pc],
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.RequestRefresh() {
		s.logger.Warnf("Refresh from %s rejected, one is already queued", r.RemoteAddr)
		http.Error(w, "Refresh already queued", http.StatusTooManyRequests)
		return
	}
	s.logger.Infof("Manual refresh queued by %s", r.RemoteAddr)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	var req LaunchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.AppID == "" {
		s.board.SetMessage(trigger.NoGameMessage)
		s.writeJSON(w, http.StatusBadRequest, trigger.Report{Message: trigger.NoGameMessage})
		return
	}
	game, ok := config.FindGame(s.games, req.AppID)
	if !ok {
		http.Error(w, "Unknown game", http.StatusBadRequest)
		return
	}

	report, err := s.dispatcher.LaunchOnAll(r.Context(), game.AppID)
	if err != nil {
		s.board.SetMessage(trigger.NoGameMessage)
		s.writeJSON(w, http.StatusBadRequest, trigger.Report{Message: trigger.NoGameMessage})
		return
	}
	s.board.SetMessage(report.Message)
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	pc := chi.URLParam(r, "pc")
	if _, ok := s.board.Machine(pc); !ok {
		http.Error(w, "Unknown PC", http.StatusNotFound)
		return
	}
	report := s.dispatcher.AcceptInvite(r.Context(), pc)
	s.board.SetMessage(report.Message)
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorf("API Handler: failed to encode response (%v)", err)
	}
}
