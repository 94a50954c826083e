package entity

import (
	"fmt"

	"github.com/rocketscienceinc/fivecrowns-backend/internal/apperror"
)

// Player is the per-seat mutable state. Score holds the most recent scorer
// output for the current round; TotalScore accumulates across completed
// rounds.
type Player struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Hand           []Card `json:"hand"`
	Alert          string `json:"alert,omitempty"`
	LastTurnPlayed bool   `json:"last_turn_played"`
	Score          int    `json:"score"`
	TotalScore     int    `json:"total_score"`
}

func NewPlayer(id, name string) *Player {
	return &Player{
		ID:   id,
		Name: name,
	}
}

// ResetForRound clears the round-scoped state and keeps the running total.
func (that *Player) ResetForRound() {
	that.Hand = nil
	that.Alert = ""
	that.LastTurnPlayed = false
	that.Score = 0
}

func (that *Player) Draw(deck *Deck) error {
	card, err := deck.Draw()
	if err != nil {
		return fmt.Errorf("failed to draw a card: %w", err)
	}

	that.Hand = append(that.Hand, card)

	return nil
}

// Take puts an already drawn card into the hand.
func (that *Player) Take(card Card) {
	that.Hand = append(that.Hand, card)
}

// CardIndex finds the first card in the hand structurally equal to card.
func (that *Player) CardIndex(card Card) (int, error) {
	for i, held := range that.Hand {
		if held == card {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", apperror.ErrCardNotFound, card)
}

// Discard removes the nominated card from the hand and returns it.
func (that *Player) Discard(card Card) (Card, error) {
	index, err := that.CardIndex(card)
	if err != nil {
		return Card{}, err
	}

	removed := that.Hand[index]
	that.Hand = append(that.Hand[:index], that.Hand[index+1:]...)

	return removed, nil
}

// MoveCard reorders the hand for presentation, moving the card at from to
// position to. Out-of-range indexes are ignored.
func (that *Player) MoveCard(from, to int) {
	if from < 0 || from >= len(that.Hand) || to < 0 || to >= len(that.Hand) || from == to {
		return
	}

	card := that.Hand[from]
	rest := append(that.Hand[:from], that.Hand[from+1:]...)
	that.Hand = append(rest[:to], append([]Card{card}, rest[to:]...)...)
}

// HandSnapshot returns a copy of the hand so captured snapshots do not
// change underneath later mutation.
func (that *Player) HandSnapshot() []Card {
	out := make([]Card, len(that.Hand))
	copy(out, that.Hand)
	return out
}

func (that *Player) SetAlert(message string) {
	that.Alert = message
}

func (that *Player) ClearAlert() {
	that.Alert = ""
}
