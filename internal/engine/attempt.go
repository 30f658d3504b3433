package engine

import (
	"time"

	"github.com/verte-zerg/typeduelz/internal/model"
)

// Attempt is a snapshot of the attempt in progress.
type Attempt struct {
	ID             string
	Target         string
	Typed          string
	BaseDifficulty model.Difficulty
	Difficulty     model.Difficulty
	Mode           model.Mode
	Character      model.Character
	StartedAt      time.Time
	EndedAt        time.Time
	Finished       bool
}

// SkipAbility tracks skip-ahead usage for the current attempt.
type SkipAbility struct {
	MaxUses int
	Used    int
}

// Remaining returns the number of skips left.
func (s SkipAbility) Remaining() int {
	if s.Used >= s.MaxUses {
		return 0
	}
	return s.MaxUses - s.Used
}

// ScoreSnapshot holds the live score. WPM is only meaningful once HasWPM is set.
type ScoreSnapshot struct {
	Accuracy int
	WPM      int
	HasWPM   bool
}

// Completion describes a finished attempt.
type Completion struct {
	AttemptID    string
	WPM          int
	Accuracy     int
	Elapsed      time.Duration
	GoalWPM      int
	GoalMet      bool
	GoalProgress float64
	SkillLevel   int
	DuelPoints   int
	DuelPointWon bool
	Saved        bool
	ReturnAfter  time.Duration
}

// Result is the outcome of a proposed mutation. Reason is nil when accepted.
type Result struct {
	Accepted   bool
	Reason     error
	Completion *Completion
}

func rejected(reason error) Result {
	return Result{Reason: reason}
}
