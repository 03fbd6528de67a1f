package progress

import (
	"encoding/json"
	"fmt"

	"dictation-trainer/internal/domain"
	"dictation-trainer/internal/transcript"
)

// Encode serializes a snapshot in the persisted layout.
func Encode(p domain.Progress) ([]byte, error) {
	if p.BlankStates == nil {
		p.BlankStates = map[string]domain.BlankState{}
	}
	return json.Marshal(p)
}

// Decode parses a stored record and checks it belongs to exerciseID. Blank
// entries whose key is not a "{segment}_blank_{n}" id are dropped.
func Decode(raw []byte, exerciseID string) (domain.Progress, error) {
	var p domain.Progress
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Progress{}, fmt.Errorf("decode progress: %w", err)
	}
	if p.ExerciseID != exerciseID {
		return domain.Progress{}, fmt.Errorf("progress belongs to exercise %q, not %q", p.ExerciseID, exerciseID)
	}
	if p.ActiveSegmentIndex < 0 {
		p.ActiveSegmentIndex = 0
	}
	blanks := make(map[string]domain.BlankState, len(p.BlankStates))
	for id, state := range p.BlankStates {
		if _, _, ok := transcript.SplitBlankID(id); ok {
			blanks[id] = state
		}
	}
	p.BlankStates = blanks
	return p, nil
}
