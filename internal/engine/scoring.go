package engine

import (
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/verte-zerg/typeduelz/internal/model"
)

var goalWPM = map[model.Difficulty]int{
	model.Easy:   20,
	model.Medium: 40,
	model.Hard:   60,
}

// GoalWPM returns the words-per-minute target for a tier.
func GoalWPM(d model.Difficulty) int {
	return goalWPM[d]
}

// Accuracy returns the percentage of typed runes matching the target. Trailing
// whitespace does not count toward the denominator; empty input scores 100.
func Accuracy(typed, target []rune) int {
	n := len(typed)
	if len(target) < n {
		n = len(target)
	}
	matches := 0
	for i := 0; i < n; i++ {
		if typed[i] == target[i] {
			matches++
		}
	}
	effective := len(typed)
	for effective > 0 && unicode.IsSpace(typed[effective-1]) {
		effective--
	}
	if effective == 0 {
		return 100
	}
	pct := roundHalfUp(float64(matches) / float64(effective) * 100)
	// Matching trailing spaces count as matches but not toward the length.
	if pct > 100 {
		return 100
	}
	return pct
}

// WPM returns the sentence-normalized speed: whitespace-delimited words of the
// target per elapsed minute. A non-positive duration yields 0.
func WPM(target string, elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	words := len(strings.Fields(target))
	if words == 0 {
		return 0
	}
	return roundHalfUp(float64(words) / elapsed.Minutes())
}

// GoalProgress returns wpm as a fraction of the tier goal, capped at 1.
func GoalProgress(wpm int, d model.Difficulty) float64 {
	goal := GoalWPM(d)
	if goal <= 0 || wpm <= 0 {
		return 0
	}
	return math.Min(float64(wpm)/float64(goal), 1)
}

// AverageAccuracy averages the accuracy of recorded attempts. ok is false when
// there is no history.
func AverageAccuracy(history []model.AttemptRecord) (avg int, ok bool) {
	if len(history) == 0 {
		return 0, false
	}
	sum := 0
	for _, r := range history {
		sum += r.Accuracy
	}
	return roundHalfUp(float64(sum) / float64(len(history))), true
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
