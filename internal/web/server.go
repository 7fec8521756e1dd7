package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/agentgpt/agentgpt/internal/bus"
	"github.com/agentgpt/agentgpt/internal/config"
	"github.com/agentgpt/agentgpt/internal/simulator"
	"github.com/agentgpt/agentgpt/internal/state"
	"github.com/nats-io/nats.go"
)

type Server struct {
	state     *state.Container
	runner    *simulator.Runner
	bus       *bus.Bus
	nats      *bus.Client
	hub       *Hub
	cfg       config.WebConfig
	version   string
	startedAt time.Time

	// runCtx outlives individual requests; simulated runs are bound to it
	// so finishing the execute request does not cancel the run.
	runCtx context.Context
}

func NewServer(st *state.Container, runner *simulator.Runner, b *bus.Bus, cfg config.WebConfig, version string) *Server {
	return &Server{
		state:     st,
		runner:    runner,
		bus:       b,
		hub:       NewHub(),
		cfg:       cfg,
		version:   version,
		startedAt: time.Now(),
		runCtx:    context.Background(),
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.runCtx = ctx
	go s.hub.Run(ctx)

	// Subscribe to bus events and broadcast to WebSocket
	s.subscribeEvents()

	mux := http.NewServeMux()
	s.registerAPI(mux)
	mux.HandleFunc("/api/ws", s.handleWebSocket)

	handler := s.withMiddleware(mux)
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	server := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	slog.Info("web server listening", "addr", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) subscribeEvents() {
	if s.bus == nil {
		return
	}
	client, err := bus.NewClient(s.bus)
	if err != nil {
		slog.Error("web server nats client failed", "error", err)
		return
	}
	s.nats = client

	// Forward every state event to WebSocket clients
	_, _ = client.Subscribe(bus.TopicEventsAll, func(msg *nats.Msg) {
		var event bus.Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("invalid bus event payload", "error", err)
			return
		}
		s.hub.Broadcast(event)
	})
}

func jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
