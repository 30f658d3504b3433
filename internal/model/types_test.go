package model

import "testing"

func TestDifficultyEasier(t *testing.T) {
	cases := map[Difficulty]Difficulty{Easy: Easy, Medium: Easy, Hard: Medium}
	for in, want := range cases {
		if got := in.Easier(); got != want {
			t.Fatalf("%s.Easier(): expected %s, got %s", in, want, got)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty(" HARD ")
	if err != nil || d != Hard {
		t.Fatalf("expected hard, got %q (%v)", d, err)
	}
	if _, err := ParseDifficulty("nightmare"); err == nil {
		t.Fatalf("expected error for unknown difficulty")
	}
}

func TestCharacterAbilities(t *testing.T) {
	if DefaultTyper.SkipUses() != 1 || ProTyper.SkipUses() != 0 || NoCharacter.SkipUses() != 0 {
		t.Fatalf("only default-typer gets a skip")
	}
	if !ProTyper.EasesDuelSentences() || DefaultTyper.EasesDuelSentences() {
		t.Fatalf("only pro eases duel sentences")
	}
}

func TestCharacterNextCycles(t *testing.T) {
	c := NoCharacter
	for i := 0; i < len(Characters); i++ {
		c = c.Next()
	}
	if c != NoCharacter {
		t.Fatalf("expected cycle back to none, got %q", c)
	}
	if NoCharacter.Label() != "no character" || ProTyper.Label() != "pro" {
		t.Fatalf("unexpected labels")
	}
}

func TestCloneDoesNotShareHistory(t *testing.T) {
	p := ProgressionCounters{SkillLevel: 1, SpeedHistory: []AttemptRecord{{WPM: 10}}}
	c := p.Clone()
	c.SpeedHistory[0].WPM = 99
	if p.SpeedHistory[0].WPM != 10 {
		t.Fatalf("clone must not share slice memory")
	}
}

func TestApplyAddsDeltaWithoutTouchingBase(t *testing.T) {
	base := ProgressionCounters{SkillLevel: 2, DuelPoints: 1, SpeedHistory: []AttemptRecord{{ID: "a"}}}
	got := base.Apply(ProgressUpdate{Attempt: AttemptRecord{ID: "b"}, SkillGained: 1, DuelPointsGained: 1})
	if got.SkillLevel != 3 || got.DuelPoints != 2 {
		t.Fatalf("expected skill 3 and duel points 2, got %d and %d", got.SkillLevel, got.DuelPoints)
	}
	if len(got.SpeedHistory) != 2 || got.SpeedHistory[1].ID != "b" {
		t.Fatalf("expected b appended, got %+v", got.SpeedHistory)
	}
	if len(base.SpeedHistory) != 1 || base.SkillLevel != 2 {
		t.Fatalf("base must be unchanged, got %+v", base)
	}
}
