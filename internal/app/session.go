package app

import (
	"strings"
	"sync"
	"time"

	"dictation-trainer/internal/domain"
	"dictation-trainer/internal/transcript"
)

// Session is the in-memory aggregate for one exercise attempt: the segment
// list, the active segment pointer and the blank states of every segment
// visited so far.
type Session struct {
	exerciseID string
	segments   []domain.Segment
	now        func() time.Time

	mu          sync.RWMutex
	active      int
	tokens      map[string][]transcript.Token
	blanks      map[string]domain.BlankState
	subscribers map[chan domain.Event]struct{}
}

// NewSession builds a session positioned on the first segment. segments must
// be non-empty; see domain.ValidateSegments.
func NewSession(exerciseID string, segments []domain.Segment) *Session {
	return NewSessionWithClock(exerciseID, segments, time.Now)
}

// NewSessionWithClock is test-only for deterministic event timestamps.
func NewSessionWithClock(exerciseID string, segments []domain.Segment, now func() time.Time) *Session {
	s := &Session{
		exerciseID:  exerciseID,
		segments:    segments,
		now:         now,
		tokens:      make(map[string][]transcript.Token),
		blanks:      make(map[string]domain.BlankState),
		subscribers: make(map[chan domain.Event]struct{}),
	}
	s.setActiveLocked(0)
	return s
}

// ExerciseID returns the exercise the session belongs to.
func (s *Session) ExerciseID() string {
	return s.exerciseID
}

// SegmentCount returns the number of segments in the exercise.
func (s *Session) SegmentCount() int {
	return len(s.segments)
}

// ActiveSegment returns the index of the active segment.
func (s *Session) ActiveSegment() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActiveSegment clamps index into range and makes it active. The segment's
// blanks are seeded on first visit; existing blank states are never touched.
func (s *Session) SetActiveSegment(index int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setActiveLocked(index) {
		s.publishLocked(domain.Event{Type: domain.EventSegmentChanged, SegmentID: s.segments[s.active].ID})
	}
	return s.active
}

// Restore merges a persisted snapshot into the session. Blank ids whose
// segment prefix is not part of this exercise are ignored.
func (s *Session) Restore(p domain.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, state := range p.BlankStates {
		segmentID, _, ok := transcript.SplitBlankID(id)
		if !ok || s.indexOf(segmentID) < 0 {
			continue
		}
		s.blanks[id] = state
	}
	// Segments parsed before the merge are parsed again so that restored
	// answers are checked against the current transcript.
	s.tokens = make(map[string][]transcript.Token)
	s.setActiveLocked(p.ActiveSegmentIndex)
}

// Reset drops every blank state and returns to the first segment.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string][]transcript.Token)
	s.blanks = make(map[string]domain.BlankState)
	s.active = -1
	s.setActiveLocked(0)
	s.publishLocked(domain.Event{Type: domain.EventSegmentChanged, SegmentID: s.segments[s.active].ID})
	s.publishLocked(domain.Event{Type: domain.EventStatsChanged})
}

// RecordCheck merges one blank's post-check state into the mapping. Entries
// of other segments are left as they are.
func (s *Session) RecordCheck(blankID string, state domain.BlankState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	segmentID, _, ok := transcript.SplitBlankID(blankID)
	if !ok || s.indexOf(segmentID) < 0 {
		return domain.ErrBlankNotFound
	}
	s.blanks[blankID] = state
	s.publishLocked(domain.Event{Type: domain.EventStatsChanged, SegmentID: segmentID, BlankID: blankID})
	return nil
}

// Blank returns the state of one blank.
func (s *Session) Blank(blankID string) (domain.BlankState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blanks[blankID]
	return b, ok
}

// Input records new answer text for a blank, clearing any previous check.
func (s *Session) Input(blankID, text string) (domain.BlankState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.blanks[blankID]
	if !ok {
		return domain.BlankState{}, domain.ErrBlankNotFound
	}
	wasChecked := state.Checked
	state.Input(text)
	s.blanks[blankID] = state
	if wasChecked {
		segmentID, _, _ := transcript.SplitBlankID(blankID)
		s.publishLocked(domain.Event{Type: domain.EventStatsChanged, SegmentID: segmentID, BlankID: blankID})
	}
	return state, nil
}

// Check grades a blank and applies the navigation policy: a correct answer
// moves focus to the next untyped blank of the segment, and a correct answer
// on the segment's last blank completes the segment and advances; a wrong
// answer keeps focus and raises a replay suggestion around position.
func (s *Session) Check(blankID string, position float64) (domain.CheckOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.blanks[blankID]
	if !ok {
		return domain.CheckOutcome{}, domain.ErrBlankNotFound
	}
	segmentID, _, _ := transcript.SplitBlankID(blankID)
	index := s.indexOf(segmentID)

	outcome := domain.CheckOutcome{BlankID: blankID}
	if !state.Check() {
		outcome.Blank = state
		outcome.NextBlankID = blankID
		return s.finishOutcomeLocked(outcome), nil
	}
	s.blanks[blankID] = state
	outcome.Checked = true
	outcome.Blank = state
	s.publishLocked(domain.Event{Type: domain.EventStatsChanged, SegmentID: segmentID, BlankID: blankID})

	if !state.IsCorrect {
		outcome.NextBlankID = blankID
		if index >= 0 {
			window := s.segments[index].ReplayWindow(position)
			outcome.Replay = &window
		}
		s.publishLocked(domain.Event{
			Type:      domain.EventIncorrectCheck,
			SegmentID: segmentID,
			BlankID:   blankID,
			Replay:    outcome.Replay,
		})
		return s.finishOutcomeLocked(outcome), nil
	}

	outcome.NextBlankID = s.nextUntypedLocked(index, blankID)
	if index >= 0 && s.isLastBlankLocked(index, blankID) && s.segmentCompleteLocked(index) {
		outcome.SegmentComplete = true
		s.publishLocked(domain.Event{Type: domain.EventSegmentComplete, SegmentID: segmentID})
		if s.advanceLocked(index) {
			outcome.Advanced = true
			outcome.NextBlankID = s.nextUntypedLocked(s.active, "")
		} else if index == len(s.segments)-1 && s.exerciseCompleteLocked() {
			s.publishLocked(domain.Event{Type: domain.EventExerciseComplete, SegmentID: segmentID})
		}
	}
	return s.finishOutcomeLocked(outcome), nil
}

// IsSegmentComplete reports whether every blank of the segment is checked
// and correct.
func (s *Session) IsSegmentComplete(segmentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	index := s.indexOf(segmentID)
	if index < 0 {
		return false
	}
	return s.segmentCompleteLocked(index)
}

// AdvanceOnComplete moves to the next segment when segmentID is the active,
// completed, non-final segment. It reports whether the move happened.
func (s *Session) AdvanceOnComplete(segmentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.indexOf(segmentID)
	if index < 0 || !s.segmentCompleteLocked(index) {
		return false
	}
	return s.advanceLocked(index)
}

// ExerciseComplete reports whether the last segment is active and solved.
func (s *Session) ExerciseComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exerciseCompleteLocked()
}

// Stats are recomputed from the blank mapping on every call.
func (s *Session) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ComputeStats(s.blanks)
}

// Snapshot copies the state to persist. The store stamps the timestamp.
func (s *Session) Snapshot() domain.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blanks := make(map[string]domain.BlankState, len(s.blanks))
	for id, b := range s.blanks {
		blanks[id] = b
	}
	return domain.Progress{
		ExerciseID:         s.exerciseID,
		ActiveSegmentIndex: s.active,
		BlankStates:        blanks,
	}
}

// View renders the active segment for the presentation layer.
func (s *Session) View() domain.SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seg := s.segments[s.active]
	tokens := s.tokens[seg.ID]
	blanks := make(map[string]domain.BlankState)
	for _, tok := range transcript.Blanks(tokens) {
		blanks[tok.BlankID] = s.blanks[tok.BlankID]
	}
	return domain.SessionView{
		ExerciseID:       s.exerciseID,
		ActiveSegment:    s.active,
		SegmentCount:     len(s.segments),
		Segment:          seg,
		Tokens:           tokens,
		Blanks:           blanks,
		Stats:            domain.ComputeStats(s.blanks),
		ExerciseComplete: s.exerciseCompleteLocked(),
	}
}

// Idle reports whether nobody is subscribed to the session.
func (s *Session) Idle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers) == 0
}

func (s *Session) subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.eventLocked(domain.Event{Type: domain.EventStatsChanged})
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) publishLocked(ev domain.Event) {
	ev = s.eventLocked(ev)
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// slow subscriber: drop its oldest event
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func (s *Session) eventLocked(ev domain.Event) domain.Event {
	ev.ExerciseID = s.exerciseID
	ev.ActiveSegment = s.active
	ev.Stats = domain.ComputeStats(s.blanks)
	ev.At = s.now()
	return ev
}

func (s *Session) finishOutcomeLocked(o domain.CheckOutcome) domain.CheckOutcome {
	o.ActiveSegment = s.active
	o.ExerciseComplete = s.exerciseCompleteLocked()
	o.Stats = domain.ComputeStats(s.blanks)
	return o
}

// setActiveLocked reports whether the active index changed.
func (s *Session) setActiveLocked(index int) bool {
	if len(s.segments) == 0 {
		s.active = 0
		return false
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.segments)-1 {
		index = len(s.segments) - 1
	}
	prev := s.active
	s.active = index
	s.seedLocked(index)
	return prev != index
}

// seedLocked parses a segment on first visit and creates states for blanks
// that are missing or whose answer changed since they were saved.
func (s *Session) seedLocked(index int) {
	seg := s.segments[index]
	if _, ok := s.tokens[seg.ID]; ok {
		return
	}
	tokens := transcript.Parse(seg.Transcript, seg.ID)
	s.tokens[seg.ID] = tokens
	for _, tok := range transcript.Blanks(tokens) {
		if existing, ok := s.blanks[tok.BlankID]; ok && existing.CanonicalAnswer == tok.Content {
			continue
		}
		s.blanks[tok.BlankID] = domain.NewBlankState(tok.Content)
	}
}

func (s *Session) advanceLocked(index int) bool {
	if index != s.active || index >= len(s.segments)-1 {
		return false
	}
	s.setActiveLocked(index + 1)
	s.publishLocked(domain.Event{Type: domain.EventSegmentChanged, SegmentID: s.segments[s.active].ID})
	return true
}

// segmentBlanksLocked returns a segment's blank tokens without seeding.
func (s *Session) segmentBlanksLocked(index int) []transcript.Token {
	seg := s.segments[index]
	tokens, ok := s.tokens[seg.ID]
	if !ok {
		tokens = transcript.Parse(seg.Transcript, seg.ID)
	}
	return transcript.Blanks(tokens)
}

func (s *Session) segmentCompleteLocked(index int) bool {
	for _, tok := range s.segmentBlanksLocked(index) {
		if !s.blanks[tok.BlankID].Solved() {
			return false
		}
	}
	return true
}

func (s *Session) exerciseCompleteLocked() bool {
	last := len(s.segments) - 1
	return last >= 0 && s.active == last && s.segmentCompleteLocked(last)
}

func (s *Session) isLastBlankLocked(index int, blankID string) bool {
	blanks := s.segmentBlanksLocked(index)
	return len(blanks) > 0 && blanks[len(blanks)-1].BlankID == blankID
}

// nextUntypedLocked finds the first blank after `after` (or from the start
// when after is empty) whose input is still empty.
func (s *Session) nextUntypedLocked(index int, after string) string {
	if index < 0 {
		return ""
	}
	seen := after == ""
	for _, tok := range s.segmentBlanksLocked(index) {
		if !seen {
			seen = tok.BlankID == after
			continue
		}
		if strings.TrimSpace(s.blanks[tok.BlankID].UserInput) == "" {
			return tok.BlankID
		}
	}
	return ""
}

func (s *Session) indexOf(segmentID string) int {
	for i, seg := range s.segments {
		if seg.ID == segmentID {
			return i
		}
	}
	return -1
}
