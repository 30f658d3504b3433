package engine

import (
	"fmt"

	"github.com/verte-zerg/typeduelz/internal/model"
)

// ProposeInput offers the full new input value. It is accepted only if it keeps
// the typed input as a prefix, extends it by at most one rune and, in solo mode,
// matches the sentence. Re-proposing the current value is accepted as a no-op.
func (c *Controller) ProposeInput(value string) Result {
	if c.attempt == nil {
		return rejected(ErrNoAttempt)
	}
	if c.attempt.Finished {
		return rejected(ErrAttemptFinished)
	}
	proposed := []rune(value)
	switch {
	case len(proposed) < len(c.typed):
		return rejected(ErrDeletion)
	case len(proposed) > len(c.typed)+1:
		return rejected(ErrMultipleRunes)
	}
	if c.attempt.Mode == model.Solo && !isPrefixOf(proposed, c.target) {
		c.cue(c.audio.PlayError)
		return rejected(ErrMismatch)
	}
	if !isPrefixOf(c.typed, proposed) {
		return rejected(ErrRewrite)
	}
	if len(proposed) == len(c.typed) {
		return Result{Accepted: true}
	}
	return c.accept(proposed, true)
}

// TypeRune proposes the current input followed by r.
func (c *Controller) TypeRune(r rune) Result {
	next := make([]rune, len(c.typed), len(c.typed)+1)
	copy(next, c.typed)
	return c.ProposeInput(string(append(next, r)))
}

// RequestSkip advances the cursor across the next whitespace gap. Only space runes
// are inserted; it is limited by the character's skip ability and solo mode.
func (c *Controller) RequestSkip() Result {
	if c.attempt == nil {
		return rejected(ErrNoAttempt)
	}
	if c.attempt.Finished {
		return rejected(ErrAttemptFinished)
	}
	if c.attempt.Mode != model.Solo {
		return rejected(ErrSkipRefused)
	}
	if c.skip.Used >= c.skip.MaxUses {
		return rejected(ErrSkipExhausted)
	}
	idx := len(c.typed)
	if !c.atWordBoundary(idx) {
		return rejected(ErrSkipRefused)
	}

	end := len(c.target)
	for p := idx; p < len(c.target); p++ {
		if c.target[p] == ' ' {
			end = p + 1
			break
		}
	}
	next := make([]rune, len(c.typed), end)
	copy(next, c.typed)
	for _, r := range c.target[idx:end] {
		if r == ' ' {
			next = append(next, r)
		}
	}
	c.skip.Used++
	return c.accept(next, false)
}

// atWordBoundary reports whether the cursor sits on a space or on a rune that was
// already typed correctly.
func (c *Controller) atWordBoundary(idx int) bool {
	if idx >= len(c.target) {
		return false
	}
	if c.target[idx] == ' ' {
		return true
	}
	return idx < len(c.typed) && c.typed[idx] == c.target[idx]
}

func (c *Controller) accept(next []rune, typingCue bool) Result {
	if len(next) > len(c.target) {
		panic(fmt.Sprintf("engine: typed length %d exceeds sentence length %d", len(next), len(c.target)))
	}
	c.typed = next
	if typingCue {
		c.cue(c.audio.PlayTyping)
	}
	c.score.Accuracy = Accuracy(c.typed, c.target)
	res := Result{Accepted: true}
	if len(c.typed) == len(c.target) {
		res.Completion = c.finishAttempt()
	}
	return res
}

func isPrefixOf(value, target []rune) bool {
	if len(value) > len(target) {
		return false
	}
	for i, r := range value {
		if r != target[i] {
			return false
		}
	}
	return true
}
