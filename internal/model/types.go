// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is a sentence tier.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists all tiers from easiest to hardest.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// ParseDifficulty parses a tier name case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", s)
	}
	return d, nil
}

// Valid reports whether d is a known tier.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// Easier returns the next easier tier. Easy stays Easy.
func (d Difficulty) Easier() Difficulty {
	switch d {
	case Hard:
		return Medium
	case Medium:
		return Easy
	}
	return d
}

// Next cycles to the following tier, wrapping after Hard.
func (d Difficulty) Next() Difficulty {
	switch d {
	case Easy:
		return Medium
	case Medium:
		return Hard
	}
	return Easy
}

// Mode selects how keystrokes are validated.
type Mode string

const (
	// Solo accepts only correct forward keystrokes.
	Solo Mode = "solo"
	// Duel accepts any forward keystroke; mistakes only cost accuracy.
	Duel Mode = "duel"
)

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case Solo, Duel:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want solo or duel)", s)
}

// Character is the equipped player character. Characters grant abilities.
type Character string

const (
	NoCharacter  Character = ""
	DefaultTyper Character = "default-typer"
	ProTyper     Character = "pro"
)

// ParseCharacter parses a character name. An empty name means none.
func ParseCharacter(s string) (Character, error) {
	c := Character(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case NoCharacter, DefaultTyper, ProTyper:
		return c, nil
	}
	return "", fmt.Errorf("unknown character %q (want default-typer or pro)", s)
}

// SkipUses returns how many skip-ahead actions the character may use per attempt.
func (c Character) SkipUses() int {
	if c == DefaultTyper {
		return 1
	}
	return 0
}

// EasesDuelSentences reports whether the character may downgrade duel sentences.
func (c Character) EasesDuelSentences() bool {
	return c == ProTyper
}

// Config defines practice settings.
type Config struct {
	Difficulty Difficulty
	Mode       Mode
	Character  Character
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Difficulty  Difficulty
	Mode        Mode
	Since       *time.Time
	Last        int
	CurveWindow int
}

// AttemptRecord captures a finished attempt in the speed history.
type AttemptRecord struct {
	ID             string
	StartedAt      time.Time
	EndedAt        time.Time
	BaseDifficulty Difficulty
	Difficulty     Difficulty
	Mode           Mode
	Character      Character
	Sentence       string
	WPM            int
	Accuracy       int
	DurationMs     int64
}

// ProgressionCounters holds durable player progression.
type ProgressionCounters struct {
	SkillLevel   int
	DuelPoints   int
	SpeedHistory []AttemptRecord
}

// ProgressUpdate is the delta produced by one finished attempt. Stores apply it
// on top of whatever they already hold, so concurrent writers never overwrite
// each other's history.
type ProgressUpdate struct {
	Attempt          AttemptRecord
	SkillGained      int
	DuelPointsGained int
}

// Apply returns p with the update added.
func (p ProgressionCounters) Apply(u ProgressUpdate) ProgressionCounters {
	out := p.Clone()
	out.SkillLevel += u.SkillGained
	out.DuelPoints += u.DuelPointsGained
	out.SpeedHistory = append(out.SpeedHistory, u.Attempt)
	return out
}

// WPMHistory returns the speed history as plain WPM values, oldest first.
func (p ProgressionCounters) WPMHistory() []int {
	out := make([]int, len(p.SpeedHistory))
	for i, r := range p.SpeedHistory {
		out[i] = r.WPM
	}
	return out
}

// Clone returns a copy that shares no slice memory with p.
func (p ProgressionCounters) Clone() ProgressionCounters {
	history := make([]AttemptRecord, len(p.SpeedHistory))
	copy(history, p.SpeedHistory)
	return ProgressionCounters{SkillLevel: p.SkillLevel, DuelPoints: p.DuelPoints, SpeedHistory: history}
}

// Characters lists the selectable characters, starting with none.
var Characters = []Character{NoCharacter, DefaultTyper, ProTyper}

// Next cycles to the following character, wrapping back to none.
func (c Character) Next() Character {
	for i, candidate := range Characters {
		if candidate == c {
			return Characters[(i+1)%len(Characters)]
		}
	}
	return NoCharacter
}

// Label returns a display name for the character.
func (c Character) Label() string {
	if c == NoCharacter {
		return "no character"
	}
	return string(c)
}
