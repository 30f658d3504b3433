package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/typeduelz/internal/model"
)

// Deps wires a Controller to its collaborators. Only Sentences is required;
// a nil Store keeps progression in memory.
type Deps struct {
	Sentences SentenceProvider
	Store     ProgressionStore
	Audio     AudioCues
	Clock     func() time.Time
	Rand      Random
	Logger    *zerolog.Logger
}

// Controller owns the lifecycle of typing attempts and the player's progression.
type Controller struct {
	sentences SentenceProvider
	store     ProgressionStore
	audio     AudioCues
	clock     func() time.Time
	rnd       Random
	log       zerolog.Logger

	attempt    *Attempt
	target     []rune
	typed      []rune
	skip       SkipAbility
	score      ScoreSnapshot
	completion *Completion

	progress   model.ProgressionCounters
	persistent bool
}

// NewController builds a controller and loads progression from the store. A store
// that fails to load leaves the controller in memory-only mode.
func NewController(ctx context.Context, deps Deps) (*Controller, error) {
	if deps.Sentences == nil {
		return nil, errors.New("sentence provider is required")
	}
	c := &Controller{
		sentences: deps.Sentences,
		store:     deps.Store,
		audio:     deps.Audio,
		clock:     deps.Clock,
		rnd:       deps.Rand,
		log:       zerolog.Nop(),
	}
	if deps.Logger != nil {
		c.log = deps.Logger.With().Str("component", "engine").Logger()
	}
	if c.audio == nil {
		c.audio = silentAudio{}
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.rnd == nil {
		c.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c.loadProgress(ctx)
	return c, nil
}

func (c *Controller) loadProgress(ctx context.Context) {
	if c.store == nil {
		c.log.Info().Msg("no progression store; progress is kept in memory")
		return
	}
	counters, err := c.store.Load(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to load progression; continuing in memory")
		return
	}
	c.progress = counters.Clone()
	c.persistent = true
}

// StartAttempt discards any attempt in progress and starts a new one.
func (c *Controller) StartAttempt(difficulty model.Difficulty, mode model.Mode, character model.Character) error {
	if !difficulty.Valid() {
		return fmt.Errorf("invalid difficulty %q", difficulty)
	}
	if mode != model.Solo && mode != model.Duel {
		return fmt.Errorf("invalid mode %q", mode)
	}
	effective := c.effectiveDifficulty(difficulty, mode, character)
	sentence, err := c.sentences.Sentence(effective)
	if err != nil {
		return fmt.Errorf("failed to pick sentence: %w", err)
	}
	target := []rune(sentence)
	if len(target) == 0 {
		return fmt.Errorf("empty sentence for difficulty %q", effective)
	}

	c.target = target
	c.typed = nil
	c.attempt = &Attempt{
		ID:             uuid.New().String(),
		Target:         sentence,
		BaseDifficulty: difficulty,
		Difficulty:     effective,
		Mode:           mode,
		Character:      character,
		StartedAt:      c.clock(),
	}
	c.skip = SkipAbility{MaxUses: character.SkipUses()}
	c.score = ScoreSnapshot{Accuracy: 100}
	c.completion = nil

	c.log.Debug().
		Str("attempt", c.attempt.ID).
		Str("difficulty", string(difficulty)).
		Str("effective", string(effective)).
		Str("mode", string(mode)).
		Msg("attempt started")
	return nil
}

// effectiveDifficulty applies the duel easing roll, resolved once per attempt.
func (c *Controller) effectiveDifficulty(base model.Difficulty, mode model.Mode, character model.Character) model.Difficulty {
	if mode != model.Duel || !character.EasesDuelSentences() {
		return base
	}
	if c.rnd.Float64() < 0.5 {
		return base.Easier()
	}
	return base
}

func (c *Controller) finishAttempt() *Completion {
	if c.attempt == nil {
		return nil
	}
	if c.attempt.Finished {
		return c.completion
	}
	now := c.clock()
	elapsed := now.Sub(c.attempt.StartedAt)
	if elapsed <= 0 {
		c.log.Warn().Dur("elapsed", elapsed).Msg("non-positive attempt duration; reporting 0 WPM")
	}
	wpm := WPM(c.attempt.Target, elapsed)

	c.attempt.Finished = true
	c.attempt.EndedAt = now
	c.score.WPM = wpm
	c.score.HasWPM = true

	goal := GoalWPM(c.attempt.BaseDifficulty)
	update := model.ProgressUpdate{
		Attempt: model.AttemptRecord{
			ID:             c.attempt.ID,
			StartedAt:      c.attempt.StartedAt,
			EndedAt:        now,
			BaseDifficulty: c.attempt.BaseDifficulty,
			Difficulty:     c.attempt.Difficulty,
			Mode:           c.attempt.Mode,
			Character:      c.attempt.Character,
			Sentence:       c.attempt.Target,
			WPM:            wpm,
			Accuracy:       c.score.Accuracy,
			DurationMs:     elapsed.Milliseconds(),
		},
		SkillGained: 1,
	}
	// A duel point is earned by finishing a duel at or above the goal pace.
	if c.attempt.Mode == model.Duel && wpm >= goal {
		update.DuelPointsGained = 1
	}
	c.progress = c.progress.Apply(update)
	saved := c.persist(update)

	c.completion = &Completion{
		AttemptID:    c.attempt.ID,
		WPM:          wpm,
		Accuracy:     c.score.Accuracy,
		Elapsed:      elapsed,
		GoalWPM:      goal,
		GoalMet:      wpm >= goal,
		GoalProgress: GoalProgress(wpm, c.attempt.BaseDifficulty),
		SkillLevel:   c.progress.SkillLevel,
		DuelPoints:   c.progress.DuelPoints,
		DuelPointWon: update.DuelPointsGained > 0,
		Saved:        saved,
		ReturnAfter:  ReturnHomeDelay,
	}
	c.log.Info().
		Str("attempt", c.attempt.ID).
		Int("wpm", wpm).
		Int("accuracy", c.score.Accuracy).
		Bool("goal_met", c.completion.GoalMet).
		Msg("attempt finished")
	return c.completion
}

func (c *Controller) persist(update model.ProgressUpdate) bool {
	if !c.persistent {
		return false
	}
	if err := c.store.Save(context.Background(), update); err != nil {
		c.log.Warn().Err(err).Msg("failed to save progression; continuing in memory")
		c.persistent = false
		return false
	}
	return true
}

// Click plays the click cue for menu-style actions.
func (c *Controller) Click() {
	c.cue(c.audio.PlayClick)
}

// cue runs an audio callback; a failing cue never affects the transition it accompanies.
func (c *Controller) cue(play func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn().Interface("panic", r).Msg("audio cue failed")
		}
	}()
	play()
}

// Attempt returns a snapshot of the current attempt. ok is false before the first start.
func (c *Controller) Attempt() (Attempt, bool) {
	if c.attempt == nil {
		return Attempt{}, false
	}
	snap := *c.attempt
	snap.Typed = string(c.typed)
	return snap, true
}

// Runes returns copies of the target and typed runes.
func (c *Controller) Runes() (target, typed []rune) {
	return append([]rune(nil), c.target...), append([]rune(nil), c.typed...)
}

// Score returns the live score.
func (c *Controller) Score() ScoreSnapshot {
	return c.score
}

// Skip returns the skip-ahead state of the current attempt.
func (c *Controller) Skip() SkipAbility {
	return c.skip
}

// Completion returns the outcome of the current attempt once finished.
func (c *Controller) Completion() (Completion, bool) {
	if c.completion == nil {
		return Completion{}, false
	}
	return *c.completion, true
}

// Progress returns a copy of the progression counters.
func (c *Controller) Progress() model.ProgressionCounters {
	return c.progress.Clone()
}

// AverageAccuracy averages accuracy across the speed history.
func (c *Controller) AverageAccuracy() (int, bool) {
	return AverageAccuracy(c.progress.SpeedHistory)
}

// Persistent reports whether progression is still being written to the store.
func (c *Controller) Persistent() bool {
	return c.persistent
}
