package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no quiz session exists for a player.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrOptionNotFound indicates the submitted option is not a choice of the current question.
	ErrOptionNotFound = errors.New("option not found")
	// ErrGameOver is returned when an answer arrives after the session ended.
	ErrGameOver = errors.New("game is over")
	// ErrUnknownDifficulty indicates a difficulty name outside Easy, Normal and Hard.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	// ErrUnknownEvent is returned for events the state machine does not handle.
	ErrUnknownEvent = errors.New("unknown event")
)
