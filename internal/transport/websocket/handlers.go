package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/fivecrowns-backend/internal/entity"
	"github.com/rocketscienceinc/fivecrowns-backend/internal/game"
)

const (
	actionConnect = "connect"
	actionJoin    = "game:join"
	actionGame    = "game:action"
	actionState   = "game:state"
	actionError   = "error"
)

var errExpectedConnect = errors.New("first message must be connect")

type handlerFunc func(ctx context.Context, conn *websocket.Conn, playerID string, message *Message) error

func (that *Server) handlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		actionJoin: that.handleJoin,
		actionGame: that.handleGameAction,
	}
}

// handleConnect resolves the session for a fresh connection and echoes the
// assigned identity back.
func (that *Server) handleConnect(ctx context.Context, conn *websocket.Conn, message *Message) (string, error) {
	var payload ConnectPayload
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return "", fmt.Errorf("failed to unmarshal connect payload: %w", err)
		}
	}

	session, err := that.manager.GetOrCreateSession(ctx, payload.PlayerID)
	if err != nil {
		return "", fmt.Errorf("failed to get or create session: %w", err)
	}

	if err = that.send(conn, actionConnect, ResponsePayload{Session: session}); err != nil {
		return "", fmt.Errorf("failed to send connect response: %w", err)
	}

	return session.ID, nil
}

func (that *Server) handleJoin(ctx context.Context, _ *websocket.Conn, playerID string, message *Message) error {
	var payload ConnectPayload
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal join payload: %w", err)
	}

	if err := that.manager.Join(ctx, playerID, payload.Name); err != nil {
		return fmt.Errorf("failed to join game: %w", err)
	}

	that.broadcastState()

	return nil
}

// handleGameAction parses the closed action set and submits the command.
// The broadcast happens only after the mutation fully applied.
func (that *Server) handleGameAction(ctx context.Context, _ *websocket.Conn, playerID string, message *Message) error {
	var payload ActionPayload
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal action payload: %w", err)
	}

	kind, err := entity.ParseActionKind(payload.Name)
	if err != nil {
		return fmt.Errorf("failed to parse action: %w", err)
	}

	cmd := game.Command{
		Kind: kind,
		Card: payload.Card,
		From: payload.From,
		To:   payload.To,
	}

	if err = that.manager.SubmitAction(ctx, playerID, cmd); err != nil {
		return fmt.Errorf("failed to submit action: %w", err)
	}

	that.broadcastState()

	return nil
}

func marshalPayload(payload ResponsePayload) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return raw, nil
}
