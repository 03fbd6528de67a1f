package app_test

import (
	"reflect"
	"testing"
	"time"

	"dictation-trainer/internal/app"
	"dictation-trainer/internal/domain"
)

func TestCheckingSegmentAdvancesToNext(t *testing.T) {
	session := newTwoSegmentSession()

	mustInput(t, session, "s1_blank_0", "Boston")
	mustInput(t, session, "s1_blank_1", "nine")

	first := mustCheck(t, session, "s1_blank_0")
	if !first.Checked || !first.Blank.IsCorrect {
		t.Fatalf("expected first blank correct, got %+v", first)
	}
	if first.Advanced || first.SegmentComplete {
		t.Fatalf("first blank must not complete the segment: %+v", first)
	}

	second := mustCheck(t, session, "s1_blank_1")
	if !second.SegmentComplete || !second.Advanced {
		t.Fatalf("expected segment complete and advance, got %+v", second)
	}
	if second.ActiveSegment != 1 || session.ActiveSegment() != 1 {
		t.Fatalf("expected active segment 1, got %d", session.ActiveSegment())
	}
	if second.NextBlankID != "s2_blank_0" {
		t.Fatalf("expected focus on the new segment's first blank, got %q", second.NextBlankID)
	}

	mustInput(t, session, "s2_blank_0", "invoice")
	last := mustCheck(t, session, "s2_blank_0")
	if last.Advanced {
		t.Fatalf("last segment must not advance")
	}
	if !last.SegmentComplete || !last.ExerciseComplete || !session.ExerciseComplete() {
		t.Fatalf("expected exercise complete, got %+v", last)
	}
	if session.ActiveSegment() != 1 {
		t.Fatalf("expected to stay on last segment")
	}
}

func TestOutOfOrderCheckDoesNotAdvance(t *testing.T) {
	session := newTwoSegmentSession()
	mustInput(t, session, "s1_blank_0", "Boston")
	mustInput(t, session, "s1_blank_1", "nine")

	mustCheck(t, session, "s1_blank_1")
	outcome := mustCheck(t, session, "s1_blank_0")
	if outcome.Advanced {
		t.Fatalf("only the segment's last blank triggers the advance")
	}
	if !session.IsSegmentComplete("s1") {
		t.Fatalf("segment should still be complete")
	}
	if !session.AdvanceOnComplete("s1") {
		t.Fatalf("explicit advance on a complete segment should move on")
	}
	if session.ActiveSegment() != 1 {
		t.Fatalf("expected active segment 1")
	}
}

func TestIncorrectCheckKeepsFocusAndSuggestsReplay(t *testing.T) {
	session := newTwoSegmentSession()
	mustInput(t, session, "s1_blank_0", "Bostn")

	outcome, err := session.Check("s1_blank_0", 12)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !outcome.Checked || outcome.Blank.IsCorrect {
		t.Fatalf("expected checked incorrect, got %+v", outcome)
	}
	if outcome.NextBlankID != "s1_blank_0" {
		t.Fatalf("focus should stay, got %q", outcome.NextBlankID)
	}
	if outcome.Replay == nil || *outcome.Replay != (domain.ReplayWindow{Start: 9, End: 12}) {
		t.Fatalf("unexpected replay window %+v", outcome.Replay)
	}
}

func TestCorrectCheckFocusesNextUntypedBlank(t *testing.T) {
	session := app.NewSession("ex", []domain.Segment{
		{ID: "s1", StartTime: 0, EndTime: 10, Transcript: "[a] [b] [c]"},
	})
	mustInput(t, session, "s1_blank_0", "a")
	mustInput(t, session, "s1_blank_1", "typed already")

	outcome := mustCheck(t, session, "s1_blank_0")
	if outcome.NextBlankID != "s1_blank_2" {
		t.Fatalf("expected next untyped blank, got %q", outcome.NextBlankID)
	}
}

func TestEmptyCheckIsNoop(t *testing.T) {
	session := newTwoSegmentSession()
	outcome := mustCheck(t, session, "s1_blank_0")
	if outcome.Checked {
		t.Fatalf("empty input must not be checked")
	}
	if session.Stats().Attempted != 0 {
		t.Fatalf("expected no attempts")
	}
}

func TestUnknownBlank(t *testing.T) {
	session := newTwoSegmentSession()
	if _, err := session.Input("s9_blank_0", "x"); err != domain.ErrBlankNotFound {
		t.Fatalf("expected ErrBlankNotFound, got %v", err)
	}
	if _, err := session.Check("s2_blank_0", 0); err != domain.ErrBlankNotFound {
		t.Fatalf("blanks of unvisited segments are unknown, got %v", err)
	}
}

func TestSetActiveSegmentClampsAndKeepsBlanks(t *testing.T) {
	session := newTwoSegmentSession()
	mustInput(t, session, "s1_blank_0", "Boston")
	mustCheck(t, session, "s1_blank_0")

	if got := session.SetActiveSegment(7); got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}
	if got := session.SetActiveSegment(-3); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	blank, ok := session.Blank("s1_blank_0")
	if !ok || !blank.Solved() {
		t.Fatalf("navigation must not alter blank states, got %+v", blank)
	}
	if stats := session.Stats(); stats.Total != 3 {
		t.Fatalf("expected blanks of both visited segments, got %+v", stats)
	}
}

func TestStatsScenario(t *testing.T) {
	session := app.NewSession("ex", []domain.Segment{
		{ID: "s1", StartTime: 0, EndTime: 10, Transcript: "[one] [two] [three]"},
	})
	mustInput(t, session, "s1_blank_0", "one")
	mustCheck(t, session, "s1_blank_0")
	mustInput(t, session, "s1_blank_1", "too")
	mustCheck(t, session, "s1_blank_1")

	stats := session.Stats()
	if stats != (domain.Stats{Total: 3, Attempted: 2, Correct: 1}) {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Percent() != 50 {
		t.Fatalf("expected 50%%, got %d", stats.Percent())
	}
}

func TestRecordCheckMergesWithoutDroppingOthers(t *testing.T) {
	session := newTwoSegmentSession()
	session.SetActiveSegment(1)

	state := domain.BlankState{CanonicalAnswer: "Boston", UserInput: "boston", Checked: true, IsCorrect: true}
	if err := session.RecordCheck("s1_blank_0", state); err != nil {
		t.Fatalf("record check: %v", err)
	}
	snap := session.Snapshot()
	if len(snap.BlankStates) != 3 {
		t.Fatalf("expected all blanks kept, got %d", len(snap.BlankStates))
	}
	if snap.BlankStates["s1_blank_0"] != state {
		t.Fatalf("expected merged state, got %+v", snap.BlankStates["s1_blank_0"])
	}
	if err := session.RecordCheck("other_blank_0", state); err != domain.ErrBlankNotFound {
		t.Fatalf("expected unknown segment rejected, got %v", err)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	session := newTwoSegmentSession()
	mustInput(t, session, "s1_blank_0", "Boston")
	mustCheck(t, session, "s1_blank_0")
	mustInput(t, session, "s1_blank_1", "ten")
	mustCheck(t, session, "s1_blank_1")
	session.SetActiveSegment(1)
	mustInput(t, session, "s2_blank_0", "inv")

	snap := session.Snapshot()
	snap.BlankStates["ghost_blank_0"] = domain.BlankState{CanonicalAnswer: "x"}

	restored := newTwoSegmentSession()
	restored.Restore(snap)
	delete(snap.BlankStates, "ghost_blank_0")

	got := restored.Snapshot()
	if got.ActiveSegmentIndex != 1 {
		t.Fatalf("expected active 1, got %d", got.ActiveSegmentIndex)
	}
	if !reflect.DeepEqual(got.BlankStates, snap.BlankStates) {
		t.Fatalf("blank states differ:\n got %+v\nwant %+v", got.BlankStates, snap.BlankStates)
	}
}

func TestRestoreReseedsChangedAnswers(t *testing.T) {
	saved := domain.Progress{
		ExerciseID: "ex",
		BlankStates: map[string]domain.BlankState{
			"s1_blank_0": {CanonicalAnswer: "Bostn", UserInput: "bostn", Checked: true, IsCorrect: true},
		},
	}
	session := newTwoSegmentSession()
	session.Restore(saved)

	blank, _ := session.Blank("s1_blank_0")
	if blank != domain.NewBlankState("Boston") {
		t.Fatalf("expected reseeded blank, got %+v", blank)
	}
}

func TestResetClearsBlanks(t *testing.T) {
	session := newTwoSegmentSession()
	mustInput(t, session, "s1_blank_0", "Boston")
	mustCheck(t, session, "s1_blank_0")
	session.SetActiveSegment(1)

	session.Reset()
	if session.ActiveSegment() != 0 {
		t.Fatalf("expected first segment after reset")
	}
	if stats := session.Stats(); stats != (domain.Stats{Total: 2}) {
		t.Fatalf("expected fresh blanks, got %+v", stats)
	}
}

func TestViewShowsActiveSegment(t *testing.T) {
	session := newTwoSegmentSession()
	view := session.View()
	if view.ExerciseID != "ex" || view.SegmentCount != 2 || view.Segment.ID != "s1" {
		t.Fatalf("unexpected view %+v", view)
	}
	if len(view.Tokens) != 4 || len(view.Blanks) != 2 {
		t.Fatalf("expected s1 tokens and blanks, got %+v", view)
	}
}

func newTwoSegmentSession() *app.Session {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return app.NewSessionWithClock("ex", []domain.Segment{
		{ID: "s1", Label: "Q1", StartTime: 5, EndTime: 20, Transcript: "Meet me in [Boston] at [nine]"},
		{ID: "s2", Label: "Q2", StartTime: 20, EndTime: 40, Transcript: "Please send the [invoice]."},
	}, func() time.Time { return now })
}

func mustInput(t *testing.T, s *app.Session, blankID, text string) {
	t.Helper()
	if _, err := s.Input(blankID, text); err != nil {
		t.Fatalf("input %s: %v", blankID, err)
	}
}

func mustCheck(t *testing.T, s *app.Session, blankID string) domain.CheckOutcome {
	t.Helper()
	outcome, err := s.Check(blankID, 0)
	if err != nil {
		t.Fatalf("check %s: %v", blankID, err)
	}
	return outcome
}
