package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/netpong/internal/api/handler"
	"github.com/mcoot/netpong/internal/api/middleware"
	"github.com/mcoot/netpong/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger  *slog.Logger
	Storage storage.Storage
	Stats   handler.StatsSource
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	directoryHandler := handler.NewDirectoryHandler(cfg.Storage, cfg.Stats)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	api.HandleFunc("/stats", directoryHandler.Stats).Methods(http.MethodGet)

	api.HandleFunc("/lobbies", directoryHandler.ListLobbies).Methods(http.MethodGet)
	api.HandleFunc("/lobbies/{id}", directoryHandler.GetLobby).Methods(http.MethodGet)

	api.HandleFunc("/matches", directoryHandler.ListMatches).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", directoryHandler.GetMatch).Methods(http.MethodGet)

	return r
}
