package engine

import (
	"context"
	"errors"
	"time"

	"github.com/verte-zerg/typeduelz/internal/model"
)

type fixedSentences struct {
	byTier    map[model.Difficulty]string
	requested []model.Difficulty
}

func oneSentence(s string) *fixedSentences {
	return &fixedSentences{byTier: map[model.Difficulty]string{
		model.Easy:   s,
		model.Medium: s,
		model.Hard:   s,
	}}
}

func (f *fixedSentences) Sentence(d model.Difficulty) (string, error) {
	f.requested = append(f.requested, d)
	s, ok := f.byTier[d]
	if !ok {
		return "", errors.New("no sentence")
	}
	return s, nil
}

type memStore struct {
	counters model.ProgressionCounters
	loadErr  error
	saveErr  error
	saves    int
}

func (m *memStore) Load(context.Context) (model.ProgressionCounters, error) {
	if m.loadErr != nil {
		return model.ProgressionCounters{}, m.loadErr
	}
	return m.counters.Clone(), nil
}

func (m *memStore) Save(_ context.Context, update model.ProgressUpdate) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.counters = m.counters.Apply(update)
	return nil
}

type countingAudio struct {
	typing int
	errors int
	clicks int
	panics bool
}

func (a *countingAudio) PlayTyping() {
	a.typing++
	if a.panics {
		panic("speaker unplugged")
	}
}

func (a *countingAudio) PlayError() {
	a.errors++
	if a.panics {
		panic("speaker unplugged")
	}
}

func (a *countingAudio) PlayClick() {
	a.clicks++
}

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time {
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fixedRand float64

func (r fixedRand) Float64() float64 {
	return float64(r)
}

type harness struct {
	ctrl      *Controller
	sentences *fixedSentences
	store     *memStore
	audio     *countingAudio
	clock     *manualClock
}

func newHarness(sentence string, rnd Random) *harness {
	h := &harness{
		sentences: oneSentence(sentence),
		store:     &memStore{},
		audio:     &countingAudio{},
		clock:     &manualClock{now: time.Unix(1_700_000_000, 0)},
	}
	ctrl, err := NewController(context.Background(), Deps{
		Sentences: h.sentences,
		Store:     h.store,
		Audio:     h.audio,
		Clock:     h.clock.Now,
		Rand:      rnd,
	})
	if err != nil {
		panic(err)
	}
	h.ctrl = ctrl
	return h
}

func typeAll(c *Controller, s string) []Result {
	results := make([]Result, 0, len(s))
	for _, r := range s {
		results = append(results, c.TypeRune(r))
	}
	return results
}
