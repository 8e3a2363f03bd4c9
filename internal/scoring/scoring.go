// Package scoring holds the deterministic rating formula shared by the
// session engine and the submission authority. Both sides must produce
// bit-identical ratings for identical inputs, so everything here is pure.
package scoring

// Penalty returns the multiplier applied when a session ended on a wrong or
// timed-out question of the given difficulty. Missing a hard question costs
// less than missing an easy one: 0.2 at difficulty 1, 1.0 at difficulty 10.
func Penalty(wrongDifficulty int) float64 {
	return 0.2 + 0.8*float64(wrongDifficulty-1)/9
}

// Rate computes the rating for a finished session.
//
// difficulties are the difficulties of the correctly answered questions,
// elapsedSeconds the total answer time (floored at 1 by the caller),
// wrongDifficulty the difficulty of the question that ended the attempt, or
// zero when the session cleared every question.
func Rate(difficulties []int, elapsedSeconds int, wrongDifficulty int) float64 {
	if elapsedSeconds < 1 {
		elapsedSeconds = 1
	}
	sum := 0
	for _, d := range difficulties {
		sum += d
	}
	base := float64(sum) * 100 / float64(elapsedSeconds)
	if wrongDifficulty == 0 {
		return base
	}
	return base * Penalty(wrongDifficulty)
}
