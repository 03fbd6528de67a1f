package domain

import (
	"strings"

	"dictation-trainer/internal/transcript"
)

// BlankPhase is the derived state of a blank.
type BlankPhase string

const (
	PhaseEmpty     BlankPhase = "empty"
	PhaseTyping    BlankPhase = "typing"
	PhaseCorrect   BlankPhase = "correct"
	PhaseIncorrect BlankPhase = "incorrect"
)

// BlankState tracks the learner's answer for one blank. The blank id is the
// key of the map holding it.
type BlankState struct {
	CanonicalAnswer string `json:"canonicalAnswer"`
	UserInput       string `json:"userInput"`
	IsCorrect       bool   `json:"isCorrect"`
	Checked         bool   `json:"checked"`
}

// NewBlankState seeds an unanswered blank.
func NewBlankState(canonical string) BlankState {
	return BlankState{CanonicalAnswer: canonical}
}

// Phase derives the state machine position from the fields.
func (b BlankState) Phase() BlankPhase {
	switch {
	case b.Checked && b.IsCorrect:
		return PhaseCorrect
	case b.Checked:
		return PhaseIncorrect
	case b.UserInput == "":
		return PhaseEmpty
	default:
		return PhaseTyping
	}
}

// Solved reports a checked, correct blank.
func (b BlankState) Solved() bool {
	return b.Checked && b.IsCorrect
}

// Input replaces the answer text. Any edit invalidates a previous check.
func (b *BlankState) Input(text string) {
	b.UserInput = text
	b.Checked = false
	b.IsCorrect = false
}

// Check grades the current input. A blank or whitespace-only answer is left
// untouched and Check returns false.
func (b *BlankState) Check() bool {
	if strings.TrimSpace(b.UserInput) == "" {
		return false
	}
	b.IsCorrect = transcript.IsMatch(b.UserInput, b.CanonicalAnswer)
	b.Checked = true
	return true
}
