package domain

import (
	"fmt"
	"math"
	"time"

	"dictation-trainer/internal/transcript"
)

// ReplaySeconds is the length of audio suggested for replay after a wrong answer.
const ReplaySeconds = 3.0

// CatalogEntry is one exercise in the content index.
type CatalogEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Segment is one audio-aligned chunk of an exercise. Times are in seconds.
type Segment struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	StartTime  float64 `json:"startTime"`
	EndTime    float64 `json:"endTime"`
	Transcript string  `json:"transcript"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// TimeRange formats the segment bounds as "m:ss - m:ss".
func (s Segment) TimeRange() string {
	return clock(s.StartTime) + " - " + clock(s.EndTime)
}

// ReplayWindow returns the stretch of audio to replay for a playback position:
// the ReplaySeconds leading up to it, kept inside the segment.
func (s Segment) ReplayWindow(position float64) ReplayWindow {
	end := math.Min(math.Max(position, s.StartTime), s.EndTime)
	start := math.Max(end-ReplaySeconds, s.StartTime)
	if end-start < ReplaySeconds {
		end = math.Min(start+ReplaySeconds, s.EndTime)
	}
	return ReplayWindow{Start: start, End: end}
}

func clock(seconds float64) string {
	total := int(math.Round(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// ValidateSegments checks the list is non-empty, ids are present and unique,
// and every segment has a positive length.
func ValidateSegments(segments []Segment) error {
	if len(segments) == 0 {
		return fmt.Errorf("%w: exercise has no segments", ErrInvalidContent)
	}
	seen := make(map[string]struct{}, len(segments))
	for i, seg := range segments {
		if seg.ID == "" {
			return fmt.Errorf("%w: segment %d has no id", ErrInvalidContent, i)
		}
		if _, dup := seen[seg.ID]; dup {
			return fmt.Errorf("%w: duplicate segment id %q", ErrInvalidContent, seg.ID)
		}
		seen[seg.ID] = struct{}{}
		if !(seg.StartTime < seg.EndTime) {
			return fmt.Errorf("%w: segment %q ends before it starts", ErrInvalidContent, seg.ID)
		}
	}
	return nil
}

// ReplayWindow is a [Start, End) span in seconds.
type ReplayWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Stats are accuracy counters derived from blank states.
type Stats struct {
	Total     int `json:"total"`
	Attempted int `json:"attempted"`
	Correct   int `json:"correct"`
}

// Accuracy returns correct/attempted, or zero before any check.
func (s Stats) Accuracy() float64 {
	if s.Attempted == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempted)
}

// Percent returns the accuracy rounded to a whole percentage.
func (s Stats) Percent() int {
	return int(math.Round(s.Accuracy() * 100))
}

// ComputeStats counts blank states. It is the only source of Stats.
func ComputeStats(blanks map[string]BlankState) Stats {
	stats := Stats{Total: len(blanks)}
	for _, b := range blanks {
		if b.Checked {
			stats.Attempted++
		}
		if b.IsCorrect {
			stats.Correct++
		}
	}
	return stats
}

// Progress is the durable snapshot of one exercise attempt.
type Progress struct {
	ExerciseID         string                `json:"exerciseId"`
	ActiveSegmentIndex int                   `json:"activeSegmentIndex"`
	BlankStates        map[string]BlankState `json:"blankStates"`
	Timestamp          int64                 `json:"timestamp"` // unix millis
}

// SavedAt converts the snapshot timestamp.
func (p Progress) SavedAt() time.Time {
	return time.UnixMilli(p.Timestamp)
}

// ProgressSummary is the catalog-level view of saved progress.
type ProgressSummary struct {
	ExerciseID string    `json:"exerciseId"`
	Completed  int       `json:"completed"`
	Total      int       `json:"total"`
	Accuracy   int       `json:"accuracy"`
	SavedAt    time.Time `json:"savedAt"`
}

// Summarize derives the summary from a snapshot.
func Summarize(p Progress) ProgressSummary {
	stats := ComputeStats(p.BlankStates)
	return ProgressSummary{
		ExerciseID: p.ExerciseID,
		Completed:  stats.Attempted,
		Total:      stats.Total,
		Accuracy:   stats.Percent(),
		SavedAt:    p.SavedAt(),
	}
}

// SessionView is what the presentation layer renders for the active segment.
type SessionView struct {
	ExerciseID       string                `json:"exerciseId"`
	ActiveSegment    int                   `json:"activeSegment"`
	SegmentCount     int                   `json:"segmentCount"`
	Segment          Segment               `json:"segment"`
	Tokens           []transcript.Token    `json:"tokens"`
	Blanks           map[string]BlankState `json:"blanks"`
	Stats            Stats                 `json:"stats"`
	ExerciseComplete bool                  `json:"exerciseComplete"`
}

// CheckOutcome reports what a check request did.
type CheckOutcome struct {
	BlankID          string        `json:"blankId"`
	Blank            BlankState    `json:"blank"`
	Checked          bool          `json:"checked"`
	NextBlankID      string        `json:"nextBlankId,omitempty"`
	SegmentComplete  bool          `json:"segmentComplete"`
	Advanced         bool          `json:"advanced"`
	ActiveSegment    int           `json:"activeSegment"`
	ExerciseComplete bool          `json:"exerciseComplete"`
	Replay           *ReplayWindow `json:"replay,omitempty"`
	Stats            Stats         `json:"stats"`
}
