package game

import "testing"

func TestStatusTransitionsOnlyMoveForward(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusNotStarted, StatusInProgress},
		{StatusInProgress, StatusPaused},
		{StatusInProgress, StatusCompleted},
		{StatusPaused, StatusCompleted},
	}
	for _, tc := range allowed {
		if !IsStatusTransitionAllowed(tc.from, tc.to) {
			t.Fatalf("expected %v -> %v allowed", tc.from, tc.to)
		}
	}

	rejected := []struct{ from, to Status }{
		{StatusInProgress, StatusNotStarted},
		{StatusPaused, StatusInProgress},
		{StatusCompleted, StatusInProgress},
		{StatusCompleted, StatusCompleted},
	}
	for _, tc := range rejected {
		if IsStatusTransitionAllowed(tc.from, tc.to) {
			t.Fatalf("expected %v -> %v rejected", tc.from, tc.to)
		}
	}
}

func TestScoreAward(t *testing.T) {
	if got := ScoreAward(0, 0, 0); got != 100 {
		t.Fatalf("expected base 100, got %d", got)
	}
	if got := ScoreAward(5, 2, 1); got != 100+50+50+50 {
		t.Fatalf("expected 250, got %d", got)
	}
}

func TestExperienceAward(t *testing.T) {
	if got := ExperienceAward(1, 0, 0, 0); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
	if got := ExperienceAward(3, 4, 2, 1); got != 150+40+50+100 {
		t.Fatalf("expected 340, got %d", got)
	}
}

func TestStatusLabelsRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusNotStarted, StatusInProgress, StatusPaused, StatusCompleted} {
		if got := StatusFromLabel(s.String()); got != s {
			t.Fatalf("label round trip for %v: got %v", s, got)
		}
	}
}
