package domain

import "time"

// EventType names an outbound signal from an exercise session.
type EventType string

const (
	EventStatsChanged     EventType = "statsChanged"
	EventIncorrectCheck   EventType = "incorrectCheck"
	EventSegmentComplete  EventType = "segmentComplete"
	EventSegmentChanged   EventType = "segmentChanged"
	EventExerciseComplete EventType = "exerciseComplete"
)

// Event is published to session subscribers (presentation, audio player).
type Event struct {
	Type          EventType     `json:"type"`
	ExerciseID    string        `json:"exerciseId"`
	SegmentID     string        `json:"segmentId,omitempty"`
	BlankID       string        `json:"blankId,omitempty"`
	ActiveSegment int           `json:"activeSegment"`
	Stats         Stats         `json:"stats"`
	Replay        *ReplayWindow `json:"replay,omitempty"`
	At            time.Time     `json:"at"`
}
