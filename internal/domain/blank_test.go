package domain

import "testing"

func TestBlankStateTransitions(t *testing.T) {
	b := NewBlankState("Boston")
	if b.Phase() != PhaseEmpty {
		t.Fatalf("expected empty, got %s", b.Phase())
	}

	if b.Check() {
		t.Fatalf("check on empty input should be a no-op")
	}
	if b.Checked {
		t.Fatalf("empty check must not mark the blank checked")
	}

	b.Input("  ")
	if b.Check() {
		t.Fatalf("check on whitespace input should be a no-op")
	}

	b.Input("bostn")
	if b.Phase() != PhaseTyping {
		t.Fatalf("expected typing, got %s", b.Phase())
	}
	if !b.Check() {
		t.Fatalf("expected check to run")
	}
	if b.Phase() != PhaseIncorrect {
		t.Fatalf("expected incorrect, got %s", b.Phase())
	}

	b.Input(" boston ")
	if b.Checked || b.IsCorrect {
		t.Fatalf("input must clear the previous check, got %+v", b)
	}
	b.Check()
	if b.Phase() != PhaseCorrect || !b.Solved() {
		t.Fatalf("expected correct, got %+v", b)
	}
}

func TestInputAlwaysClearsCheck(t *testing.T) {
	b := NewBlankState("Boston")
	b.Input("Boston")
	b.Check()
	b.Input("Bost")
	b.Input("Boston")
	if b.Checked {
		t.Fatalf("expected checked=false after consecutive inputs")
	}
	if b.IsCorrect {
		t.Fatalf("expected isCorrect=false until the next check")
	}
}
