// Package game holds the turn-based state machine for a multi-round
// rummy-style card game: turn order, the draw/discard exchange, going out,
// round and dealer rotation and the score ledger.
package game

import (
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/fivecrowns-backend/internal/apperror"
	"github.com/rocketscienceinc/fivecrowns-backend/internal/entity"
	"github.com/rocketscienceinc/fivecrowns-backend/internal/meld"
)

const (
	StatusNotStarted = "not_started"
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusGameOver   = "game_over"
)

const (
	MinPlayers = 2
	MaxPlayers = 7

	// DefaultRounds is the number of rounds in a full game.
	DefaultRounds = 11

	// Hand size and wild rank both derive from the round number plus this
	// offset: round 1 deals 3 cards and makes 3s wild.
	roundOffset = 2
)

// turnPhase is the per-turn exchange sub-state. A discard can only be
// accepted after a preceding draw.
type turnPhase int

const (
	phaseIdle turnPhase = iota
	phaseAwaitingDiscard
)

// Command is one inbound player action with its auxiliary payload: the
// nominated discard card, or a reorder instruction for manual sorting.
type Command struct {
	Kind entity.ActionKind
	Card *entity.Card
	From int
	To   int
}

// Game is the aggregate owning all players, the deck, the discard pile and
// the score ledger. It is not safe for concurrent use; callers serialize
// access (see usecase.GameManager).
type Game struct {
	RoundNumber        int
	Players            []*entity.Player
	Status             string
	Actions            []entity.Action
	CurrentPlayerIndex int
	DealerIndex        int
	Alert              string
	DiscardPile        []entity.Card
	LastTurnCounter    int
	OutCards           []entity.Card
	OutPlayerID        string
	ScoreLedger        map[int][]int

	phase  turnPhase
	deck   *entity.Deck
	rounds int
}

// New creates a game that plays the given number of rounds; zero or
// negative means the default of 11.
func New(rounds int) *Game {
	if rounds <= 0 {
		rounds = DefaultRounds
	}

	return &Game{
		RoundNumber: 1,
		Status:      StatusNotStarted,
		ScoreLedger: make(map[int][]int),
		rounds:      rounds,
	}
}

// Wait opens the table for seating.
func (that *Game) Wait() {
	that.Status = StatusWaiting
	that.refreshActions()
}

// AddPlayer seats a player. Seating order is join order.
func (that *Game) AddPlayer(id, name string) error {
	if that.Status != StatusNotStarted && that.Status != StatusWaiting {
		return apperror.ErrGameAlreadyStarted
	}

	if len(that.Players) >= MaxPlayers {
		return apperror.ErrGameFull
	}

	for _, player := range that.Players {
		if player.Name == name {
			return fmt.Errorf("%w: %s", apperror.ErrNameTaken, name)
		}
	}

	that.Players = append(that.Players, entity.NewPlayer(id, name))
	that.refreshActions()

	return nil
}

// Player finds a seated player by id.
func (that *Game) Player(id string) (*entity.Player, error) {
	for _, player := range that.Players {
		if player.ID == id {
			return player, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, id)
}

// WildRank is the round's designated wild rank.
func (that *Game) WildRank() int {
	return that.RoundNumber + roundOffset
}

// HandSize is the number of cards dealt to each player this round.
func (that *Game) HandSize() int {
	return that.RoundNumber + roundOffset
}

func (that *Game) WhoseTurn() int {
	return that.CurrentPlayerIndex
}

func (that *Game) WhoseTurnName() string {
	if that.Status != StatusInProgress {
		return ""
	}

	return that.Players[that.CurrentPlayerIndex].Name
}

// TopDiscard returns the face-up card on the discard pile, if any.
func (that *Game) TopDiscard() (entity.Card, bool) {
	if len(that.DiscardPile) == 0 {
		return entity.Card{}, false
	}

	return that.DiscardPile[len(that.DiscardPile)-1], true
}

// ExchangeInProgress reports whether the acting player has drawn a card
// they have not yet discarded.
func (that *Game) ExchangeInProgress() bool {
	return that.phase == phaseAwaitingDiscard
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Game) IsOver() bool {
	return that.Status == StatusGameOver
}

// RoundDone reports whether every player has had their final turn.
func (that *Game) RoundDone() bool {
	return len(that.Players) > 0 && that.LastTurnCounter == len(that.Players)
}

// Start begins round 1 with a random dealer.
func (that *Game) Start() error {
	if len(that.Players) < MinPlayers {
		return fmt.Errorf("%w: have %d", apperror.ErrNotEnoughPlayers, len(that.Players))
	}

	that.Status = StatusInProgress
	that.RoundNumber = 1
	that.ScoreLedger = make(map[int][]int)
	that.DealerIndex = rand.Intn(len(that.Players)) //nolint: gosec // it's ok
	for _, player := range that.Players {
		player.TotalScore = 0
	}
	that.beginRound()

	return nil
}

// beginRound reshuffles, deals, flips the starter discard and hands the
// turn to the player left of the dealer.
func (that *Game) beginRound() {
	that.deck = entity.NewDeck()
	that.deck.Shuffle()

	that.DiscardPile = nil
	that.LastTurnCounter = 0
	that.OutCards = nil
	that.OutPlayerID = ""
	that.phase = phaseIdle

	for _, player := range that.Players {
		player.ResetForRound()
	}

	for range that.HandSize() {
		for _, player := range that.Players {
			// a fresh deck always covers the deal
			_ = player.Draw(that.deck)
		}
	}

	starter, _ := that.deck.Draw()
	that.DiscardPile = append(that.DiscardPile, starter)

	that.CurrentPlayerIndex = (that.DealerIndex + 1) % len(that.Players)
	that.Alert = fmt.Sprintf("Round %d", that.RoundNumber)
	that.refreshActions()
}

// Apply processes one player action. Disabled actions and out-of-turn
// attempts set an alert and change nothing; only programmer-error-class
// conditions (unknown action, absent discard card, unknown player) return
// typed errors.
func (that *Game) Apply(playerID string, cmd Command) error {
	player, err := that.Player(playerID)
	if err != nil {
		return err
	}

	switch cmd.Kind {
	case entity.ActionStart:
		return that.applyStart()
	case entity.ActionRestart:
		that.applyRestart()
		return nil
	case entity.ActionPickFromDeck, entity.ActionPickFromDiscard:
		return that.applyPick(player, cmd)
	case entity.ActionGoOut:
		that.applyGoOut(player)
		return nil
	case entity.ActionNextRound:
		that.applyNextRound()
		return nil
	case entity.ActionSortCards:
		player.MoveCard(cmd.From, cmd.To)
		return nil
	case entity.ActionNoAction:
		return nil
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownAction, cmd.Kind)
	}
}

func (that *Game) applyStart() error {
	if that.Status != StatusWaiting {
		return nil
	}

	if err := that.Start(); err != nil {
		that.Alert = "Waiting for more players"
		return nil
	}

	return nil
}

func (that *Game) applyRestart() {
	if that.Status != StatusGameOver {
		return
	}

	that.Status = StatusWaiting
	_ = that.Start()
}

func (that *Game) applyPick(player *entity.Player, cmd Command) error {
	if !that.IsInProgress() || that.RoundDone() {
		return nil
	}

	if player.Name != that.WhoseTurnName() {
		player.SetAlert("It's not your turn")
		return nil
	}

	switch that.phase {
	case phaseIdle:
		return that.beginExchange(player, cmd.Kind)
	case phaseAwaitingDiscard:
		if cmd.Card == nil {
			player.SetAlert("Choose a card to discard")
			return nil
		}
		return that.completeExchange(player, *cmd.Card)
	}

	return nil
}

// beginExchange is the draw phase: one card into the hand, then the turn
// waits for the discard.
func (that *Game) beginExchange(player *entity.Player, kind entity.ActionKind) error {
	switch kind {
	case entity.ActionPickFromDiscard:
		top, ok := that.TopDiscard()
		if !ok {
			player.SetAlert("The discard pile is empty")
			return nil
		}
		that.DiscardPile = that.DiscardPile[:len(that.DiscardPile)-1]
		player.Take(top)
	default:
		card, err := that.drawFromDeck()
		if err != nil {
			return fmt.Errorf("failed to draw from deck: %w", err)
		}
		player.Take(card)
	}

	that.phase = phaseAwaitingDiscard
	that.refreshActions()

	return nil
}

// completeExchange is the discard phase: the nominated card leaves the hand
// for the discard pile, then the turn resolves.
func (that *Game) completeExchange(player *entity.Player, card entity.Card) error {
	discarded, err := player.Discard(card)
	if err != nil {
		return fmt.Errorf("failed to discard: %w", err)
	}

	that.DiscardPile = append(that.DiscardPile, discarded)
	that.phase = phaseIdle

	if that.LastTurnCounter > 0 {
		that.recordFinalTurn(player)
		return nil
	}

	result := meld.Score(player.Hand, that.WildRank())
	player.Score = result.Score

	if result.Score == 0 {
		that.recordFinalTurn(player)
		return nil
	}

	that.nextTurn()

	return nil
}

// drawFromDeck draws one card, recycling the discard pile minus its top
// card when the deck is exhausted. Exhaustion is never surfaced upward
// unless there is genuinely nothing left to recycle.
func (that *Game) drawFromDeck() (entity.Card, error) {
	card, err := that.deck.Draw()
	if err == nil {
		return card, nil
	}

	if len(that.DiscardPile) <= 1 {
		return entity.Card{}, err
	}

	top := that.DiscardPile[len(that.DiscardPile)-1]
	that.deck.Recycle(that.DiscardPile[:len(that.DiscardPile)-1])
	that.DiscardPile = []entity.Card{top}

	return that.deck.Draw()
}

// applyGoOut handles the explicit action. A hand that still scores points
// cannot go out before the round is in its last-turn phase.
func (that *Game) applyGoOut(player *entity.Player) {
	if !that.IsInProgress() || that.RoundDone() || that.phase != phaseIdle {
		return
	}

	if player.Name != that.WhoseTurnName() {
		player.SetAlert("It's not your turn")
		return
	}

	result := meld.Score(player.Hand, that.WildRank())
	if result.Score != 0 && that.LastTurnCounter == 0 {
		that.Alert = fmt.Sprintf("%s cannot go out with a score of %d", player.Name, result.Score)
		return
	}

	that.recordFinalTurn(player)
}

// recordFinalTurn is the go-out bookkeeping shared by the explicit action,
// the auto-trigger and every subsequent final turn: the player's score is
// written into the ledger exactly once per round, the out snapshot is
// captured for the first player out, and play advances until everyone has
// had a final turn.
func (that *Game) recordFinalTurn(player *entity.Player) {
	result := meld.Score(player.Hand, that.WildRank())
	player.Score = result.Score
	player.LastTurnPlayed = true

	that.recordScore(player, result.Score)

	if that.OutPlayerID == "" {
		that.OutPlayerID = player.ID
		that.OutCards = player.HandSnapshot()
	}

	that.LastTurnCounter++
	if that.LastTurnCounter < len(that.Players) {
		that.nextTurn()
		if out, err := that.Player(that.OutPlayerID); err == nil {
			that.Alert = fmt.Sprintf("%s went out! Everyone gets one last turn", out.Name)
		}
		return
	}

	that.finishRound()
}

func (that *Game) recordScore(player *entity.Player, score int) {
	row := that.ScoreLedger[that.RoundNumber]
	if row == nil {
		row = make([]int, len(that.Players))
		that.ScoreLedger[that.RoundNumber] = row
	}

	seat := that.seatOf(player.ID)
	row[seat] = score

	// running total is a fold over all completed rounds
	total := 0
	for _, scores := range that.ScoreLedger {
		if seat < len(scores) {
			total += scores[seat]
		}
	}
	player.TotalScore = total
}

func (that *Game) seatOf(playerID string) int {
	for i, player := range that.Players {
		if player.ID == playerID {
			return i
		}
	}

	return 0
}

func (that *Game) finishRound() {
	if that.RoundNumber >= that.rounds {
		that.Status = StatusGameOver
		that.Alert = "Game over"
		that.refreshActions()
		return
	}

	that.Alert = fmt.Sprintf("Round %d complete", that.RoundNumber)
	that.refreshActions()
}

func (that *Game) applyNextRound() {
	if !that.IsInProgress() || !that.RoundDone() {
		return
	}

	that.RoundNumber++
	that.DealerIndex = (that.DealerIndex + 1) % len(that.Players)
	that.beginRound()
}

func (that *Game) nextTurn() {
	that.CurrentPlayerIndex = (that.CurrentPlayerIndex + 1) % len(that.Players)
	for _, player := range that.Players {
		player.ClearAlert()
	}
	that.Alert = ""
	that.refreshActions()
}

// refreshActions rebuilds the derived action list for the current phase.
func (that *Game) refreshActions() {
	switch that.Status {
	case StatusNotStarted, StatusWaiting:
		that.Actions = []entity.Action{
			entity.NewAction(entity.ActionStart, len(that.Players) >= MinPlayers),
			entity.NewAction(entity.ActionRestart, false),
			entity.NewAction(entity.ActionPickFromDeck, false),
			entity.NewAction(entity.ActionPickFromDiscard, false),
			entity.NewAction(entity.ActionGoOut, false),
			entity.NewAction(entity.ActionNextRound, false),
			entity.NewAction(entity.ActionSortCards, false),
		}
	case StatusInProgress:
		roundDone := that.RoundDone()
		midTurn := !roundDone && that.phase == phaseIdle
		that.Actions = []entity.Action{
			entity.NewAction(entity.ActionStart, false),
			entity.NewAction(entity.ActionRestart, false),
			entity.NewAction(entity.ActionPickFromDeck, midTurn),
			entity.NewAction(entity.ActionPickFromDiscard, midTurn),
			entity.NewAction(entity.ActionGoOut, midTurn),
			entity.NewAction(entity.ActionNextRound, roundDone),
			entity.NewAction(entity.ActionSortCards, true),
		}
	case StatusGameOver:
		that.Actions = []entity.Action{
			entity.NewAction(entity.ActionStart, false),
			entity.NewAction(entity.ActionRestart, true),
			entity.NewAction(entity.ActionPickFromDeck, false),
			entity.NewAction(entity.ActionPickFromDiscard, false),
			entity.NewAction(entity.ActionGoOut, false),
			entity.NewAction(entity.ActionNextRound, false),
			entity.NewAction(entity.ActionSortCards, false),
		}
	}
}

// ActionEnabled reports whether the named action is currently offered.
func (that *Game) ActionEnabled(kind entity.ActionKind) bool {
	for _, action := range that.Actions {
		if action.Kind == kind {
			return action.Enabled()
		}
	}

	return false
}

// DeckSize is exposed for the conservation checks in tests and views.
func (that *Game) DeckSize() int {
	if that.deck == nil {
		return 0
	}

	return that.deck.Size()
}

// Reset discards all state and reopens the table.
func (that *Game) Reset() {
	that.Players = nil
	that.RoundNumber = 1
	that.ScoreLedger = make(map[int][]int)
	that.DiscardPile = nil
	that.OutCards = nil
	that.OutPlayerID = ""
	that.LastTurnCounter = 0
	that.CurrentPlayerIndex = 0
	that.DealerIndex = 0
	that.Alert = ""
	that.phase = phaseIdle
	that.deck = nil
	that.Status = StatusWaiting
	that.refreshActions()
}
