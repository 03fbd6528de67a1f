package domain

import "errors"

var (
	// ErrContentLoad is returned when the exercise catalog or a segment list could not be fetched.
	ErrContentLoad = errors.New("content load failed")
	// ErrExerciseNotFound indicates the catalog has no exercise with the given id.
	ErrExerciseNotFound = errors.New("exercise not found")
	// ErrInvalidContent indicates loaded segments violate the content contract.
	ErrInvalidContent = errors.New("invalid exercise content")
	// ErrSessionNotFound is returned when no exercise session has been opened.
	ErrSessionNotFound = errors.New("exercise session not found")
	// ErrBlankNotFound indicates a blank id that no visited segment produced.
	ErrBlankNotFound = errors.New("blank not found")
)
