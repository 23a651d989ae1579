// Package server - внешняя поверхность процесса: WebSocket-транспорт
// чата и статусные HTTP-эндпоинты.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"livium-server/internal/engine"
	"livium-server/internal/network"
	"livium-server/internal/version"
	"livium-server/pkg/logger"
)

type Server struct {
	engine *engine.GameService
	hub    *network.Broadcaster
	port   string
}

func New(game *engine.GameService, hub *network.Broadcaster, port string) *Server {
	return &Server{engine: game, hub: hub, port: port}
}

// Run запускает HTTP-сервер. Блокирует до ошибки листенера.
func (s *Server) Run() error {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/ws", s.handleWS)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)

	logger.Log.Infof("Livium server listening on :%s", s.port)
	return http.ListenAndServe(":"+s.port, r)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Error("Upgrade error")
		return
	}
	client := NewClient(s.engine, s.hub, conn)
	go client.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Log.WithError(err).Debug("health write failed")
	}
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(version.Info()); err != nil {
		logger.Log.WithError(err).Debug("version write failed")
	}
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats, err := s.engine.Stats()
	if err != nil {
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	stats.Connected = s.hub.SubscriberCount() > 0
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		logger.Log.WithError(err).Debug("stats write failed")
	}
}
