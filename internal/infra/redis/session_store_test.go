package redis

import (
	"testing"
	"time"

	"dictation-trainer/internal/app"
	"dictation-trainer/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)

	first := store.PutIfAbsent(app.NewSession("1", sampleSegments()))
	if !mr.Exists("trainer:session:1") {
		t.Fatalf("expected redis key to be set")
	}
	if got := store.PutIfAbsent(app.NewSession("1", sampleSegments())); got != first {
		t.Fatalf("expected the live session to be kept")
	}

	store.DeleteIfIdle("1")
	if mr.Exists("trainer:session:1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("1"); ok {
		t.Fatalf("expected session to be dropped")
	}
}

func sampleSegments() []domain.Segment {
	return []domain.Segment{
		{ID: "q32", Label: "Questions 32-34", StartTime: 0, EndTime: 30, Transcript: "Meet me in [Boston]."},
	}
}
