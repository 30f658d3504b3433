package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typeduelz/internal/model"
)

func TestNewControllerRequiresSentences(t *testing.T) {
	_, err := NewController(context.Background(), Deps{})
	assert.Error(t, err)
}

func TestStartAttemptResetsState(t *testing.T) {
	h := newHarness("Hi there.", nil)
	require.NoError(t, h.ctrl.StartAttempt(model.Easy, model.Duel, model.NoCharacter))
	typeAll(h.ctrl, "Hx")
	first, _ := h.ctrl.Attempt()

	h.clock.Advance(time.Second)
	require.NoError(t, h.ctrl.StartAttempt(model.Easy, model.Solo, model.DefaultTyper))
	att, ok := h.ctrl.Attempt()
	require.True(t, ok)
	assert.NotEqual(t, first.ID, att.ID)
	assert.Empty(t, att.Typed)
	assert.False(t, att.Finished)
	assert.Equal(t, model.Solo, att.Mode)
	assert.Equal(t, h.clock.now, att.StartedAt)
	assert.Equal(t, ScoreSnapshot{Accuracy: 100}, h.ctrl.Score())
	_, done := h.ctrl.Completion()
	assert.False(t, done)
}

func TestStartAttemptValidation(t *testing.T) {
	h := newHarness("Hi there.", nil)
	assert.Error(t, h.ctrl.StartAttempt(model.Difficulty("extreme"), model.Solo, model.NoCharacter))
	assert.Error(t, h.ctrl.StartAttempt(model.Easy, model.Mode("team"), model.NoCharacter))

	empty := newHarness("", nil)
	assert.Error(t, empty.ctrl.StartAttempt(model.Easy, model.Solo, model.NoCharacter))
}

func TestDuelEasing(t *testing.T) {
	tests := []struct {
		name      string
		roll      float64
		mode      model.Mode
		character model.Character
		base      model.Difficulty
		want      model.Difficulty
	}{
		{name: "hard eased", roll: 0.1, mode: model.Duel, character: model.ProTyper, base: model.Hard, want: model.Medium},
		{name: "medium eased", roll: 0.49, mode: model.Duel, character: model.ProTyper, base: model.Medium, want: model.Easy},
		{name: "easy stays", roll: 0.1, mode: model.Duel, character: model.ProTyper, base: model.Easy, want: model.Easy},
		{name: "roll lost", roll: 0.5, mode: model.Duel, character: model.ProTyper, base: model.Hard, want: model.Hard},
		{name: "solo ignores", roll: 0.1, mode: model.Solo, character: model.ProTyper, base: model.Hard, want: model.Hard},
		{name: "no ability", roll: 0.1, mode: model.Duel, character: model.DefaultTyper, base: model.Hard, want: model.Hard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness("Go.", fixedRand(tt.roll))
			require.NoError(t, h.ctrl.StartAttempt(tt.base, tt.mode, tt.character))
			att, _ := h.ctrl.Attempt()
			assert.Equal(t, tt.base, att.BaseDifficulty)
			assert.Equal(t, tt.want, att.Difficulty)
			assert.Equal(t, []model.Difficulty{tt.want}, h.sentences.requested)
		})
	}
}

func TestGoalUsesBaseDifficulty(t *testing.T) {
	h := newHarness("Go now.", fixedRand(0))
	require.NoError(t, h.ctrl.StartAttempt(model.Hard, model.Duel, model.ProTyper))
	typeAll(h.ctrl, "Go now")
	h.clock.Advance(2 * time.Second)
	res := h.ctrl.TypeRune('.')
	require.NotNil(t, res.Completion)
	assert.Equal(t, 60, res.Completion.WPM)
	assert.Equal(t, 60, res.Completion.GoalWPM)
	assert.True(t, res.Completion.GoalMet)
	assert.InDelta(t, 1.0, res.Completion.GoalProgress, 1e-9)
}

func TestFinishUpdatesProgressionOnce(t *testing.T) {
	h := newHarness("Fast fox.", nil)
	h.store.counters = model.ProgressionCounters{
		SkillLevel:   4,
		SpeedHistory: []model.AttemptRecord{{ID: "old", WPM: 12, Accuracy: 80}},
	}
	ctrl, err := NewController(context.Background(), Deps{Sentences: h.sentences, Store: h.store, Clock: h.clock.Now})
	require.NoError(t, err)
	assert.Equal(t, 4, ctrl.Progress().SkillLevel)

	require.NoError(t, ctrl.StartAttempt(model.Easy, model.Solo, model.NoCharacter))
	h.clock.Advance(6 * time.Second)
	res := typeAll(ctrl, "Fast fox.")
	completion := res[len(res)-1].Completion
	require.NotNil(t, completion)
	assert.True(t, completion.Saved)
	assert.Equal(t, 5, completion.SkillLevel)

	again := ctrl.finishAttempt()
	assert.Same(t, completion, again)

	progress := ctrl.Progress()
	assert.Equal(t, 5, progress.SkillLevel)
	assert.Equal(t, []int{12, 20}, progress.WPMHistory())
	assert.Equal(t, 1, h.store.saves)
	assert.Equal(t, 5, h.store.counters.SkillLevel)
	assert.Len(t, h.store.counters.SpeedHistory, 2)

	avg, ok := ctrl.AverageAccuracy()
	require.True(t, ok)
	assert.Equal(t, 90, avg)
}

func TestDuelPointsAwardedForDuelsAtGoalPace(t *testing.T) {
	tests := []struct {
		name    string
		mode    model.Mode
		elapsed time.Duration
		want    int
	}{
		{name: "duel at goal", mode: model.Duel, elapsed: 6 * time.Second, want: 1},
		{name: "duel below goal", mode: model.Duel, elapsed: 12 * time.Second, want: 0},
		{name: "solo at goal", mode: model.Solo, elapsed: 6 * time.Second, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness("Fast fox.", nil)
			h.store.counters = model.ProgressionCounters{DuelPoints: 3}
			ctrl, err := NewController(context.Background(), Deps{Sentences: h.sentences, Store: h.store, Clock: h.clock.Now})
			require.NoError(t, err)

			require.NoError(t, ctrl.StartAttempt(model.Easy, tt.mode, model.NoCharacter))
			h.clock.Advance(tt.elapsed)
			res := typeAll(ctrl, "Fast fox.")
			completion := res[len(res)-1].Completion
			require.NotNil(t, completion)
			assert.Equal(t, tt.want > 0, completion.DuelPointWon)
			assert.Equal(t, 3+tt.want, completion.DuelPoints)
			assert.Equal(t, 3+tt.want, ctrl.Progress().DuelPoints)
			assert.Equal(t, 3+tt.want, h.store.counters.DuelPoints)
		})
	}
}

func TestDegenerateTimingReportsZero(t *testing.T) {
	h := newHarness("Hi.", nil)
	require.NoError(t, h.ctrl.StartAttempt(model.Easy, model.Solo, model.NoCharacter))
	h.clock.Advance(-time.Second)
	res := typeAll(h.ctrl, "Hi.")
	completion := res[len(res)-1].Completion
	require.NotNil(t, completion)
	assert.Equal(t, 0, completion.WPM)
	assert.False(t, completion.GoalMet)
	assert.Equal(t, []int{0}, h.ctrl.Progress().WPMHistory())
}

func TestLoadFailureKeepsProgressInMemory(t *testing.T) {
	h := newHarness("Hi.", nil)
	h.store.loadErr = errors.New("storage disabled")
	ctrl, err := NewController(context.Background(), Deps{Sentences: h.sentences, Store: h.store, Clock: h.clock.Now})
	require.NoError(t, err)
	assert.False(t, ctrl.Persistent())

	require.NoError(t, ctrl.StartAttempt(model.Easy, model.Solo, model.NoCharacter))
	res := typeAll(ctrl, "Hi.")
	completion := res[len(res)-1].Completion
	require.NotNil(t, completion)
	assert.False(t, completion.Saved)
	assert.Equal(t, 1, ctrl.Progress().SkillLevel)
	assert.Zero(t, h.store.saves)
}

func TestSaveFailureDegradesToMemory(t *testing.T) {
	h := newHarness("Hi.", nil)
	h.store.saveErr = errors.New("disk full")
	require.True(t, h.ctrl.Persistent())

	for i := 0; i < 2; i++ {
		require.NoError(t, h.ctrl.StartAttempt(model.Easy, model.Solo, model.NoCharacter))
		typeAll(h.ctrl, "Hi.")
	}
	assert.False(t, h.ctrl.Persistent())
	assert.Equal(t, 1, h.store.saves)
	assert.Equal(t, 2, h.ctrl.Progress().SkillLevel)
}

func TestNilStoreRunsInMemory(t *testing.T) {
	ctrl, err := NewController(context.Background(), Deps{Sentences: oneSentence("Ok.")})
	require.NoError(t, err)
	assert.False(t, ctrl.Persistent())
	require.NoError(t, ctrl.StartAttempt(model.Easy, model.Duel, model.NoCharacter))
	res := typeAll(ctrl, "Ok.")
	require.NotNil(t, res[len(res)-1].Completion)
	assert.Equal(t, 1, ctrl.Progress().SkillLevel)
}

func TestClickPlaysCue(t *testing.T) {
	h := newHarness("Ok.", nil)
	h.ctrl.Click()
	assert.Equal(t, 1, h.audio.clicks)
}
