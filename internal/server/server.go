package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/phildougherty/quick-assistant/internal/logging"
	"github.com/phildougherty/quick-assistant/internal/timers"
)

// Controller is the slice of the session the API exposes
type Controller interface {
	Status() map[string]interface{}
	Mute()
	Unmute()
	Say(text string)
}

// Server is the localhost control API
type Server struct {
	controller Controller
	store      *timers.Store
	hub        *Hub
	logger     *logging.Logger
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// NewServer creates a server bound to addr, typically 127.0.0.1:port
func NewServer(addr string, controller Controller, store *timers.Store, hub *Hub, logger *logging.Logger) *Server {
	s := &Server{
		controller: controller,
		store:      store,
		hub:        hub,
		logger:     logger,
		upgrader: websocket.Upgrader{
			// Local control surface, same-machine clients only
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.routes(),
		ReadTimeout: 30 * time.Second,
	}
	return s
}

// Start serves until Stop is called. Blocks.
func (s *Server) Start() error {
	s.logger.Info("Control server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("control server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down and disconnects event clients
func (s *Server) Stop() error {
	s.hub.closeAll()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/status", s.statusHandler).Methods("GET")
	router.HandleFunc("/api/timers", s.timersHandler).Methods("GET")
	router.HandleFunc("/api/mute", s.muteHandler).Methods("POST")
	router.HandleFunc("/api/unmute", s.unmuteHandler).Methods("POST")
	router.HandleFunc("/api/say", s.sayHandler).Methods("POST")
	router.HandleFunc("/ws", s.websocketHandler).Methods("GET")
	return router
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := s.controller.Status()
	status["timestamp"] = time.Now().Format(time.RFC3339)
	status["event_clients"] = s.hub.ClientCount()
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) timersHandler(w http.ResponseWriter, r *http.Request) {
	type timerJSON struct {
		Name string    `json:"name"`
		At   time.Time `json:"at"`
	}
	pending := s.store.List()
	out := make([]timerJSON, len(pending))
	for i, timer := range pending {
		out[i] = timerJSON{Name: timer.Name, At: timer.At}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"timers": out})
}

func (s *Server) muteHandler(w http.ResponseWriter, r *http.Request) {
	s.controller.Mute()
	writeJSON(w, http.StatusOK, map[string]string{"status": "muted"})
}

func (s *Server) unmuteHandler(w http.ResponseWriter, r *http.Request) {
	s.controller.Unmute()
	writeJSON(w, http.StatusOK, map[string]string{"status": "unmuted"})
}

func (s *Server) sayHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be JSON with a non-empty text field"})
		return
	}
	s.controller.Say(body.Text)
	writeJSON(w, http.StatusOK, map[string]string{"status": "speaking"})
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warning("Websocket upgrade failed: %v", err)
		return
	}
	s.logger.Debug("Websocket client connected from %s", conn.RemoteAddr())
	s.hub.add(conn)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
