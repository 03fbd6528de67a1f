package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"dictation-trainer/internal/domain"
	"dictation-trainer/internal/progress"
)

func TestProgressBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := openTestBackend(t)

	if _, ok, err := backend.Get(ctx, "1"); ok || err != nil {
		t.Fatalf("expected absent record, got ok=%v err=%v", ok, err)
	}
	if err := backend.Put(ctx, "1", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := backend.Put(ctx, "1", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := backend.Put(ctx, "2", []byte(`{}`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	data, ok, err := backend.Get(ctx, "1")
	if err != nil || !ok || string(data) != `{"v":2}` {
		t.Fatalf("expected overwritten record, got %q ok=%v err=%v", data, ok, err)
	}

	ids, err := backend.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Fatalf("unexpected keys %v", ids)
	}

	if err := backend.Delete(ctx, "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := backend.Get(ctx, "1"); ok {
		t.Fatalf("expected record removed")
	}
}

func TestProgressSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	progress.NewStore(first).Save(ctx, domain.Progress{
		ExerciseID:         "3",
		ActiveSegmentIndex: 2,
		BlankStates: map[string]domain.BlankState{
			"q71_blank_0": {CanonicalAnswer: "museum", UserInput: "musem", Checked: true},
		},
	})
	first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	got, ok := progress.NewStore(second).Load(ctx, "3")
	if !ok {
		t.Fatalf("expected progress after reopen")
	}
	if got.ActiveSegmentIndex != 2 || got.BlankStates["q71_blank_0"].UserInput != "musem" {
		t.Fatalf("unexpected progress %+v", got)
	}
}

func openTestBackend(t *testing.T) *ProgressBackend {
	t.Helper()
	backend, err := Open(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { backend.Close() })
	return backend
}
