package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/netpong/internal/api/apierr"
	"github.com/mcoot/netpong/internal/api/response"
	"github.com/mcoot/netpong/internal/model"
	"github.com/mcoot/netpong/internal/services/lobby"
	"github.com/mcoot/netpong/internal/storage"
)

// StatsSource reports live table sizes
type StatsSource interface {
	Stats() lobby.Stats
}

// DirectoryHandler serves the lobby and match listings
type DirectoryHandler struct {
	storage storage.Storage
	stats   StatsSource
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(storage storage.Storage, stats StatsSource) *DirectoryHandler {
	return &DirectoryHandler{
		storage: storage,
		stats:   stats,
	}
}

// ListLobbies handles GET /api/v1/lobbies
func (h *DirectoryHandler) ListLobbies(w http.ResponseWriter, r *http.Request) {
	lobbies, err := h.storage.ListLobbies(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	resp := response.LobbyList{Lobbies: make([]response.Lobby, len(lobbies))}
	for i, l := range lobbies {
		resp.Lobbies[i] = response.LobbyFromModel(l)
	}
	response.JSON(w, http.StatusOK, resp)
}

// GetLobby handles GET /api/v1/lobbies/{id}
func (h *DirectoryHandler) GetLobby(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	lobby, err := h.storage.GetLobby(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LobbyFromModel(lobby))
}

// ListMatches handles GET /api/v1/matches
func (h *DirectoryHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.storage.ListMatches(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	resp := response.MatchList{Matches: make([]response.Match, len(matches))}
	for i, m := range matches {
		resp.Matches[i] = response.MatchFromModel(m)
	}
	response.JSON(w, http.StatusOK, resp)
}

// GetMatch handles GET /api/v1/matches/{id}
func (h *DirectoryHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	match, err := h.storage.GetMatch(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.MatchFromModel(match))
}

// Stats handles GET /api/v1/stats
func (h *DirectoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s := h.stats.Stats()
	response.JSON(w, http.StatusOK, response.Stats{
		Connections: s.Connections,
		Lobbies:     s.Lobbies,
		Matches:     s.Matches,
	})
}

// Health handles GET /api/v1/health
func Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
