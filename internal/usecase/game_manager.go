package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/fivecrowns-backend/internal/entity"
	"github.com/rocketscienceinc/fivecrowns-backend/internal/game"
	"github.com/rocketscienceinc/fivecrowns-backend/internal/repository"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *repository.Session) error
	GetByID(ctx context.Context, id string) (*repository.Session, error)
}

// View is the per-player projection of the game: it carries only that
// player's hand, never anyone else's.
type View struct {
	Status        string          `json:"status"`
	RoundNumber   int             `json:"round_number"`
	WildRank      int             `json:"wild_rank"`
	Turn          string          `json:"turn"`
	Actions       []entity.Action `json:"actions"`
	PlayerNames   []string        `json:"player_names"`
	Hand          []entity.Card   `json:"hand"`
	TopDiscard    *entity.Card    `json:"top_discard,omitempty"`
	OutCards      []entity.Card   `json:"out_cards,omitempty"`
	OutPlayerName string          `json:"out_player_name,omitempty"`
	GameAlert     string          `json:"game_alert,omitempty"`
	PlayerAlert   string          `json:"player_alert,omitempty"`
}

// ScoreCard is the per-round score matrix plus running totals, ordered by
// seat.
type ScoreCard struct {
	PlayerNames []string `json:"player_names"`
	Rounds      [][]int  `json:"rounds"`
	Totals      []int    `json:"totals"`
}

// GameManager owns the single game aggregate. Every action is processed to
// completion under one mutex before the next is accepted; notification
// fan-out happens in the transport after the lock is released.
type GameManager struct {
	logger   *slog.Logger
	sessions sessionRepo

	mu   sync.Mutex
	game *game.Game
}

func NewGameManager(logger *slog.Logger, sessions sessionRepo, rounds int) *GameManager {
	aggregate := game.New(rounds)
	aggregate.Wait()

	return &GameManager{
		logger:   logger,
		sessions: sessions,
		game:     aggregate,
	}
}

// GetOrCreateSession assigns a per-connection identity, creating one when
// the client presents none.
func (that *GameManager) GetOrCreateSession(ctx context.Context, id string) (*repository.Session, error) {
	if id == "" {
		session := &repository.Session{ID: uuid.New().String()}
		if err := that.sessions.CreateOrUpdate(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}

		return session, nil
	}

	session, err := that.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return session, nil
}

// Join seats the session's player at the table.
func (that *GameManager) Join(ctx context.Context, playerID, name string) error {
	that.mu.Lock()
	err := that.game.AddPlayer(playerID, name)
	that.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to add player: %w", err)
	}

	if err = that.sessions.CreateOrUpdate(ctx, &repository.Session{ID: playerID, Name: name}); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	that.logger.Info("player joined", "playerID", playerID, "name", name)

	return nil
}

// SubmitAction applies one inbound command to the game. An action either
// fully applies or is a no-op.
func (that *GameManager) SubmitAction(_ context.Context, playerID string, cmd game.Command) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.game.Apply(playerID, cmd); err != nil {
		return fmt.Errorf("failed to apply action: %w", err)
	}

	return nil
}

// ViewFor builds the projection for one player. Unknown ids still get the
// public parts of the table.
func (that *GameManager) ViewFor(playerID string) *View {
	that.mu.Lock()
	defer that.mu.Unlock()

	g := that.game

	view := &View{
		Status:      g.Status,
		RoundNumber: g.RoundNumber,
		WildRank:    g.WildRank(),
		Turn:        g.WhoseTurnName(),
		Actions:     append([]entity.Action(nil), g.Actions...),
		GameAlert:   g.Alert,
	}

	for _, player := range g.Players {
		view.PlayerNames = append(view.PlayerNames, player.Name)
	}

	if top, ok := g.TopDiscard(); ok {
		view.TopDiscard = &top
	}

	if g.OutPlayerID != "" {
		view.OutCards = append([]entity.Card(nil), g.OutCards...)
		if out, err := g.Player(g.OutPlayerID); err == nil {
			view.OutPlayerName = out.Name
		}
	}

	if player, err := g.Player(playerID); err == nil {
		view.Hand = player.HandSnapshot()
		view.PlayerAlert = player.Alert
	}

	return view
}

// ScoreCard snapshots the ledger for the score-card view.
func (that *GameManager) ScoreCard() *ScoreCard {
	that.mu.Lock()
	defer that.mu.Unlock()

	g := that.game

	card := &ScoreCard{}
	for _, player := range g.Players {
		card.PlayerNames = append(card.PlayerNames, player.Name)
		card.Totals = append(card.Totals, player.TotalScore)
	}

	for round := 1; round <= g.RoundNumber; round++ {
		row, ok := g.ScoreLedger[round]
		if !ok {
			continue
		}
		card.Rounds = append(card.Rounds, append([]int(nil), row...))
	}

	return card
}

// PlayerIDs lists seated players in seating order, for broadcast fan-out.
func (that *GameManager) PlayerIDs() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	ids := make([]string, 0, len(that.game.Players))
	for _, player := range that.game.Players {
		ids = append(ids, player.ID)
	}

	return ids
}

// Reset discards all game state and reopens the table for seating.
func (that *GameManager) Reset(_ context.Context) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.game.Reset()
	that.logger.Info("game reset")
}
