package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/typeduelz/internal/engine"
	"github.com/verte-zerg/typeduelz/internal/model"
)

type stubSentences struct {
	requested []model.Difficulty
}

func (s *stubSentences) Sentence(d model.Difficulty) (string, error) {
	s.requested = append(s.requested, d)
	return "go on", nil
}

type clickCounter struct {
	clicks int
}

func (c *clickCounter) PlayTyping() {}
func (c *clickCounter) PlayError()  {}
func (c *clickCounter) PlayClick()  { c.clicks++ }

func newTestModel(t *testing.T, cfg model.Config) (*Model, *stubSentences, *clickCounter) {
	t.Helper()
	sentences := &stubSentences{}
	audio := &clickCounter{}
	now := time.Unix(0, 0)
	ctrl, err := engine.NewController(context.Background(), engine.Deps{
		Sentences: sentences,
		Audio:     audio,
		Clock: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	m, err := NewModel(ctrl, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m, sentences, audio
}

func typeString(m *Model, s string) tea.Cmd {
	var cmd tea.Cmd
	for _, r := range s {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		if r == ' ' {
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestRenderFooterFormats(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{Difficulty: model.Easy, Mode: model.Solo, Character: model.DefaultTyper})
	typeString(m, "go")
	out := m.renderFooter()
	if !containsAll(out, []string{"Progress 40%", "Accuracy 100%", "Skips 1/1"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestBackspaceIsRejected(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{Difficulty: model.Easy, Mode: model.Solo})
	typeString(m, "g")
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	_, typed := m.ctrl.Runes()
	if string(typed) != "g" {
		t.Fatalf("expected typed input to stay %q, got %q", "g", string(typed))
	}
	if m.status != "No going back." {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestPasteIsRejected(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{Difficulty: model.Easy, Mode: model.Duel})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("go"), Paste: true})
	_, typed := m.ctrl.Runes()
	if len(typed) != 0 {
		t.Fatalf("expected paste to be rejected, got %q", string(typed))
	}
	if m.status != "One key at a time." {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestSkipKeyAdvancesCursor(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{Difficulty: model.Easy, Mode: model.Solo, Character: model.DefaultTyper})
	typeString(m, "go")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, typed := m.ctrl.Runes()
	if string(typed) != "go " {
		t.Fatalf("expected skip to add a space, got %q", string(typed))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.status != "Skip already used." {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestSkipKeyWithoutAbility(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{Difficulty: model.Easy, Mode: model.Solo, Character: model.NoCharacter})
	typeString(m, "go")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, typed := m.ctrl.Runes()
	if string(typed) != "go" {
		t.Fatalf("expected typed input to stay %q, got %q", "go", string(typed))
	}
	if m.status != "No skip ability." {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestCompletionReturnsHome(t *testing.T) {
	m, sentences, _ := newTestModel(t, model.Config{Difficulty: model.Easy, Mode: model.Solo})
	if !containsAll(m.renderHeader(), []string{"Avg acc N/A", "Duel pts 0"}) {
		t.Fatalf("expected N/A average and duel points before history: %s", m.renderHeader())
	}
	cmd := typeString(m, "go on")
	if cmd == nil {
		t.Fatalf("expected return command after completion")
	}
	if _, ok := m.ctrl.Completion(); !ok {
		t.Fatalf("expected finished attempt")
	}
	if m.renderResult() == "" {
		t.Fatalf("expected result panel")
	}
	if !strings.Contains(m.renderHeader(), "Avg acc 100%") {
		t.Fatalf("expected average accuracy after completion: %s", m.renderHeader())
	}

	m.Update(returnHomeMsg{seq: m.seq - 1})
	if _, ok := m.ctrl.Completion(); !ok {
		t.Fatalf("stale return message must be ignored")
	}
	m.Update(returnHomeMsg{seq: m.seq})
	if _, ok := m.ctrl.Completion(); ok {
		t.Fatalf("expected a fresh attempt after returning home")
	}
	if len(sentences.requested) != 2 {
		t.Fatalf("expected 2 sentence requests, got %d", len(sentences.requested))
	}
}

func TestDifficultyKeyCyclesAndClicks(t *testing.T) {
	m, sentences, audio := newTestModel(t, model.Config{Difficulty: model.Hard, Mode: model.Solo})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if m.cfg.Difficulty != model.Easy {
		t.Fatalf("expected difficulty to wrap to easy, got %s", m.cfg.Difficulty)
	}
	if audio.clicks != 1 {
		t.Fatalf("expected 1 click, got %d", audio.clicks)
	}
	if got := sentences.requested[len(sentences.requested)-1]; got != model.Easy {
		t.Fatalf("expected easy sentence request, got %s", got)
	}
}

func TestModeKeyToggles(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{Difficulty: model.Easy, Mode: model.Solo})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	attempt, ok := m.ctrl.Attempt()
	if !ok || attempt.Mode != model.Duel {
		t.Fatalf("expected duel attempt, got %+v", attempt)
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := formatElapsed(75*time.Second + 420*time.Millisecond); got != "01:15.4" {
		t.Fatalf("unexpected elapsed format: %q", got)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
