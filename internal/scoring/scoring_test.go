package scoring

import (
	"math"
	"testing"
)

func TestRateCleanRun(t *testing.T) {
	// Full clear applies no penalty: rating = sum*100/t exactly.
	got := Rate([]int{2, 5, 8}, 10, 0)
	if got != 150.0 {
		t.Fatalf("expected 150.0, got %v", got)
	}
}

func TestRateWithWrongQuestion(t *testing.T) {
	// Correct on difficulties 2 and 5, wrong on an 8, 10s total.
	got := Rate([]int{2, 5}, 10, 8)
	want := 7.0 * 100 / 10 * (0.2 + 0.8*7/9)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if math.Abs(got-57.555555) > 1e-3 {
		t.Fatalf("expected ~57.56, got %v", got)
	}
}

func TestPenaltyBounds(t *testing.T) {
	if p := Penalty(1); p != 0.2 {
		t.Fatalf("penalty(1) = %v, want 0.2", p)
	}
	if p := Penalty(10); p != 1.0 {
		t.Fatalf("penalty(10) = %v, want 1.0", p)
	}
}

func TestPenaltyStrictlyIncreasing(t *testing.T) {
	prev := Penalty(1)
	for d := 2; d <= 10; d++ {
		p := Penalty(d)
		if p <= prev {
			t.Fatalf("penalty not increasing at difficulty %d: %v <= %v", d, p, prev)
		}
		prev = p
	}
}

func TestRateFloorsElapsedTime(t *testing.T) {
	// Defensive floor; callers already clamp to 1.
	if got := Rate([]int{3}, 0, 0); got != 300.0 {
		t.Fatalf("expected 300.0, got %v", got)
	}
}

func TestRateEmptyCorrectSet(t *testing.T) {
	// Missing the first question yields a zero base, hence zero rating.
	if got := Rate(nil, 5, 1); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
