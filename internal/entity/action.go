package entity

import (
	"fmt"

	"github.com/rocketscienceinc/fivecrowns-backend/internal/apperror"
)

// ActionKind is the closed set of actions a player may submit.
type ActionKind string

const (
	ActionStart           ActionKind = "start"
	ActionRestart         ActionKind = "restart"
	ActionPickFromDeck    ActionKind = "pick_from_deck"
	ActionPickFromDiscard ActionKind = "pick_from_discard"
	ActionGoOut           ActionKind = "go_out"
	ActionNextRound       ActionKind = "next_round"
	ActionSortCards       ActionKind = "sort_cards"
	ActionNoAction        ActionKind = "no_action"
)

type ActionStatus string

const (
	ActionEnabled  ActionStatus = "enabled"
	ActionDisabled ActionStatus = "disabled"
)

// Action is a derived view of one action and its current availability. The
// list is recomputed whenever the game phase changes, never stored as
// independent state.
type Action struct {
	Kind   ActionKind   `json:"kind"`
	Status ActionStatus `json:"status"`
	Text   string       `json:"text"`
}

func (that Action) Enabled() bool {
	return that.Status == ActionEnabled
}

var actionTexts = map[ActionKind]string{
	ActionStart:           "Start game",
	ActionRestart:         "Restart game",
	ActionPickFromDeck:    "Pick from deck",
	ActionPickFromDiscard: "Pick from discard",
	ActionGoOut:           "Go out",
	ActionNextRound:       "Next round",
	ActionSortCards:       "Sort cards",
}

func NewAction(kind ActionKind, enabled bool) Action {
	status := ActionDisabled
	if enabled {
		status = ActionEnabled
	}

	return Action{
		Kind:   kind,
		Status: status,
		Text:   actionTexts[kind],
	}
}

// ParseActionKind maps an inbound action name onto the closed enum. Names
// outside the set are a typed error, not a default inert action.
func ParseActionKind(name string) (ActionKind, error) {
	switch kind := ActionKind(name); kind {
	case ActionStart, ActionRestart, ActionPickFromDeck, ActionPickFromDiscard,
		ActionGoOut, ActionNextRound, ActionSortCards, ActionNoAction:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownAction, name)
	}
}
