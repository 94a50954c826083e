package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/fivecrowns-backend/internal/entity"
	"github.com/rocketscienceinc/fivecrowns-backend/internal/repository"
	"github.com/rocketscienceinc/fivecrowns-backend/internal/usecase"
)

// Message is one WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ConnectPayload identifies the connecting client. An empty PlayerID asks
// the server to assign a fresh session.
type ConnectPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name,omitempty"`
}

// ActionPayload carries one game action: the action name, the nominated
// discard card when completing an exchange, and the from/to indexes for
// manual hand sorting.
type ActionPayload struct {
	Name string       `json:"name"`
	Card *entity.Card `json:"card,omitempty"`
	From int          `json:"from,omitempty"`
	To   int          `json:"to,omitempty"`
}

type ResponsePayload struct {
	Session *repository.Session `json:"session,omitempty"`
	State   *usecase.View       `json:"state,omitempty"`
	Error   string              `json:"error,omitempty"`
}
