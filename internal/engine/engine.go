// Package engine implements typing attempts: the session controller that times an
// attempt, the validator that gates every keystroke, and the scoring rules.
//
// All transitions are synchronous method calls on a Controller. A Controller is
// owned by a single event loop and is not safe for concurrent use.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/verte-zerg/typeduelz/internal/model"
)

// ReturnHomeDelay is how long a finished attempt stays on screen before the
// caller should navigate away.
const ReturnHomeDelay = 3000 * time.Millisecond

// Rejection reasons reported in Result.Reason.
var (
	ErrNoAttempt       = errors.New("no attempt in progress")
	ErrAttemptFinished = errors.New("attempt already finished")
	ErrDeletion        = errors.New("deleting input is not allowed")
	ErrMultipleRunes   = errors.New("only one character may be added at a time")
	ErrRewrite         = errors.New("typed characters cannot be changed")
	ErrMismatch        = errors.New("character does not match the sentence")
	ErrSkipRefused     = errors.New("skip is only possible at a word boundary")
	ErrSkipExhausted   = errors.New("no skips left for this attempt")
)

// SentenceProvider returns a target sentence for a difficulty tier.
type SentenceProvider interface {
	Sentence(d model.Difficulty) (string, error)
}

// ProgressionStore persists progression counters. Load is called once when the
// controller is created and Save once per finished attempt with only that
// attempt's delta. Save must be idempotent per attempt ID.
type ProgressionStore interface {
	Load(ctx context.Context) (model.ProgressionCounters, error)
	Save(ctx context.Context, update model.ProgressUpdate) error
}

// AudioCues plays feedback sounds. Calls must not block.
type AudioCues interface {
	PlayTyping()
	PlayError()
	PlayClick()
}

// Random is the source used for the duel easing roll. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
}

type silentAudio struct{}

func (silentAudio) PlayTyping() {}
func (silentAudio) PlayError()  {}
func (silentAudio) PlayClick()  {}
