package memory

import (
	"testing"

	"dictation-trainer/internal/app"
	"dictation-trainer/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	segments := []domain.Segment{{ID: "s1", StartTime: 0, EndTime: 5, Transcript: "[hi]"}}

	first := store.PutIfAbsent(app.NewSession("ex-1", segments))
	second := store.PutIfAbsent(app.NewSession("ex-1", segments))
	if first != second {
		t.Fatalf("expected the live session to be kept")
	}
	if _, ok := store.Get("ex-1"); !ok {
		t.Fatalf("expected session present")
	}

	store.DeleteIfIdle("ex-1")
	if _, ok := store.Get("ex-1"); ok {
		t.Fatalf("expected idle session removed")
	}
}
