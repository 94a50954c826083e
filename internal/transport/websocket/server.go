package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/fivecrowns-backend/internal/game"
	"github.com/rocketscienceinc/fivecrowns-backend/internal/repository"
	"github.com/rocketscienceinc/fivecrowns-backend/internal/usecase"
)

type gameManager interface {
	GetOrCreateSession(ctx context.Context, id string) (*repository.Session, error)
	Join(ctx context.Context, playerID, name string) error
	SubmitAction(ctx context.Context, playerID string, cmd game.Command) error
	ViewFor(playerID string) *usecase.View
}

// Server accepts WebSocket connections, dispatches inbound actions into the
// game manager and fans state views out to every connected player after
// each mutation completes.
type Server struct {
	logger  *slog.Logger
	manager gameManager

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*websocket.Conn

	// gorilla allows one concurrent writer per connection; all outbound
	// writes go through this lock
	writeMu sync.Mutex
}

func New(logger *slog.Logger, manager gameManager) *Server {
	return &Server{
		logger:  logger,
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[string]*websocket.Conn),
	}
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.handleConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 0, // connections are long-lived
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) handleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	playerID, err := that.handshake(ctx, conn)
	if err != nil {
		log.Error("handshake failed", "error", err)
		return
	}

	that.register(playerID, conn)
	defer that.unregister(playerID, conn)

	log.Info("WebSocket connection established", "playerID", playerID)

	that.broadcastState()

	if err = that.readLoop(ctx, conn, playerID); err != nil {
		log.Info("connection closed", "playerID", playerID, "error", err)
	}
}

// handshake waits for the connect message and resolves the session.
func (that *Server) handshake(ctx context.Context, conn *websocket.Conn) (string, error) {
	var message Message
	if err := conn.ReadJSON(&message); err != nil {
		return "", fmt.Errorf("failed to read connect message: %w", err)
	}

	if message.Action != actionConnect {
		return "", fmt.Errorf("%w: got %q", errExpectedConnect, message.Action)
	}

	return that.handleConnect(ctx, conn, &message)
}

func (that *Server) readLoop(ctx context.Context, conn *websocket.Conn, playerID string) error {
	for {
		var message Message
		if err := conn.ReadJSON(&message); err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		handler, ok := that.handlers()[message.Action]
		if !ok {
			that.sendError(conn, fmt.Sprintf("unknown message action %q", message.Action))
			continue
		}

		if err := handler(ctx, conn, playerID, &message); err != nil {
			that.logger.Error("error processing message", "action", message.Action, "error", err)
			that.sendError(conn, err.Error())
		}
	}
}

func (that *Server) register(playerID string, conn *websocket.Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.conns[playerID] = conn
}

func (that *Server) unregister(playerID string, conn *websocket.Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.conns[playerID] == conn {
		delete(that.conns, playerID)
	}
}

// broadcastState sends every connected player their own view of the table.
// Called only after a mutation has fully completed.
func (that *Server) broadcastState() {
	that.mu.Lock()
	targets := make(map[string]*websocket.Conn, len(that.conns))
	for id, conn := range that.conns {
		targets[id] = conn
	}
	that.mu.Unlock()

	for playerID, conn := range targets {
		view := that.manager.ViewFor(playerID)
		if err := that.send(conn, actionState, ResponsePayload{State: view}); err != nil {
			that.logger.Error("failed to send state", "playerID", playerID, "error", err)
		}
	}
}

func (that *Server) send(conn *websocket.Conn, action string, payload ResponsePayload) error {
	raw, err := marshalPayload(payload)
	if err != nil {
		return err
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = conn.WriteJSON(Message{Action: action, Payload: raw}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendError(conn *websocket.Conn, text string) {
	if err := that.send(conn, actionError, ResponsePayload{Error: text}); err != nil {
		that.logger.Error("failed to send error", "error", err)
	}
}
