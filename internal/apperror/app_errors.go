package apperror

import "errors"

var (
	ErrGameFull           = errors.New("game is at maximum capacity")
	ErrNameTaken          = errors.New("player name is already taken")
	ErrGameAlreadyStarted = errors.New("game is already started")
	ErrNotEnoughPlayers   = errors.New("not enough players to start the game")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrCardNotFound       = errors.New("card not found in hand")
	ErrUnknownAction      = errors.New("unknown action")
	ErrDeckEmpty          = errors.New("deck is empty")
	ErrSessionNotFound    = errors.New("session not found")
)
