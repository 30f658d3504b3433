// Package sentences provides the fixed sentence corpus keyed by difficulty.
package sentences

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/typeduelz/internal/model"
)

var builtin = map[model.Difficulty][]string{
	model.Easy: {
		"Hi there.",
		"I like cats.",
		"Fast fox.",
		"Hello world.",
		"Nice job!",
	},
	model.Medium: {
		"The quick brown fox jumps over the lazy dog.",
		"Typing fast is a useful skill.",
		"Tailwind CSS is awesome.",
		"I love coding fun projects.",
		"Next.js makes building web apps easier.",
	},
	model.Hard: {
		"JavaScript developers often face asynchronous challenges.",
		"Efficiency in algorithms can greatly affect performance.",
		"Next.js integrates both frontend and backend logic seamlessly.",
		"Performance optimization is vital for user experience.",
		"Complexity in state management can hinder scalability.",
	},
}

// Bank picks sentences uniformly from a corpus.
type Bank struct {
	rnd    *rand.Rand
	corpus map[model.Difficulty][]string
}

// New returns a Bank over the built-in corpus seeded with the current time.
func New() *Bank {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()), nil)
}

// NewWithSource returns a Bank drawing from src. Tiers missing from corpus use the
// built-in sentences.
func NewWithSource(src rand.Source, corpus map[model.Difficulty][]string) *Bank {
	merged := make(map[model.Difficulty][]string, len(builtin))
	for _, d := range model.Difficulties {
		if list := corpus[d]; len(list) > 0 {
			merged[d] = append([]string(nil), list...)
			continue
		}
		merged[d] = builtin[d]
	}
	return &Bank{rnd: rand.New(src), corpus: merged}
}

// Sentence returns a random sentence for the tier.
func (b *Bank) Sentence(d model.Difficulty) (string, error) {
	list := b.corpus[d]
	if len(list) == 0 {
		return "", fmt.Errorf("no sentences for difficulty %q", d)
	}
	return list[b.rnd.Intn(len(list))], nil
}

// List returns a copy of the sentences for the tier.
func (b *Bank) List(d model.Difficulty) []string {
	return append([]string(nil), b.corpus[d]...)
}
