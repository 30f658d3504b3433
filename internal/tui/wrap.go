package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// glyph is one rendered sentence rune with its display width.
type glyph struct {
	s       string
	width   int
	isSpace bool
	// marked glyphs carry the cursor or a mistake and survive line breaks.
	marked bool
}

// span is a half-open rune range of a word in the sentence.
type span struct {
	start int
	end   int
}

// sentenceGlyphs styles every target rune against the typed input. A cursor of -1
// means the sentence is complete.
func sentenceGlyphs(target, typed []rune, cursor int) []glyph {
	words := wordSpans(target)
	active, hasActive := activeWord(words, cursor)

	out := make([]glyph, 0, len(target))
	for i, want := range target {
		shown, style := want, pendingStyle
		marked := i == cursor
		switch {
		case i < len(typed) && typed[i] == want:
			style = correctStyle
		case i < len(typed) && want == ' ':
			// A wrong key on a gap would otherwise be invisible.
			shown, style, marked = '•', incorrectStyle, true
		case i < len(typed):
			style = incorrectStyle
		case hasActive && want != ' ' && i >= active.start && i < active.end:
			style = currentWordStyle
		}
		if i == cursor {
			style = style.Underline(true)
		}
		out = append(out, glyph{
			s:       style.Render(string(shown)),
			width:   runewidth.RuneWidth(shown),
			isSpace: want == ' ',
			marked:  marked,
		})
	}
	return out
}

func wordSpans(target []rune) []span {
	var words []span
	start := -1
	for i, r := range target {
		switch {
		case r == ' ' && start >= 0:
			words = append(words, span{start: start, end: i})
			start = -1
		case r != ' ' && start < 0:
			start = i
		}
	}
	if start >= 0 {
		words = append(words, span{start: start, end: len(target)})
	}
	return words
}

// activeWord returns the word under the cursor, or the next one when the cursor
// sits on a gap.
func activeWord(words []span, cursor int) (span, bool) {
	if cursor < 0 {
		return span{}, false
	}
	for _, w := range words {
		if cursor < w.end {
			return w, true
		}
	}
	return span{}, false
}

func joinGlyphs(glyphs []glyph) string {
	var b strings.Builder
	for _, g := range glyphs {
		b.WriteString(g.s)
	}
	return b.String()
}

func glyphsWidth(glyphs []glyph) int {
	total := 0
	for _, g := range glyphs {
		total += g.width
	}
	return total
}

// wrapGlyphs breaks the sentence into lines of at most width cells, splitting at
// spaces and hard-breaking words that are wider than a line.
func wrapGlyphs(glyphs []glyph, width int) string {
	if width <= 0 {
		return joinGlyphs(glyphs)
	}
	var lines []string
	var line []glyph
	lineWidth := 0
	flush := func() {
		for len(line) > 0 && line[len(line)-1].isSpace && !line[len(line)-1].marked {
			line = line[:len(line)-1]
		}
		lines = append(lines, joinGlyphs(line))
		line, lineWidth = nil, 0
	}

	for i := 0; i < len(glyphs); {
		end := i + 1
		for !glyphs[i].isSpace && end < len(glyphs) && !glyphs[end].isSpace {
			end++
		}
		token := glyphs[i:end]
		tokenWidth := glyphsWidth(token)
		switch {
		case lineWidth+tokenWidth <= width:
			line = append(line, token...)
			lineWidth += tokenWidth
		case token[0].isSpace:
			// The gap that ends a full line is dropped unless it is marked.
			flush()
			if token[0].marked {
				line = append(line, token...)
				lineWidth += tokenWidth
			}
		case lineWidth > 0:
			flush()
			continue
		default:
			for _, g := range token {
				if lineWidth+g.width > width && lineWidth > 0 {
					flush()
				}
				line = append(line, g)
				lineWidth += g.width
			}
		}
		i = end
	}
	if len(line) > 0 || len(lines) == 0 {
		flush()
	}
	return strings.Join(lines, "\n")
}

// renderSentence styles and wraps the sentence for a content column of width cells.
func renderSentence(target, typed []rune, width int) string {
	cursor := -1
	if len(typed) < len(target) {
		cursor = len(typed)
	}
	glyphs := sentenceGlyphs(target, typed, cursor)
	if width <= 0 {
		return joinGlyphs(glyphs)
	}
	return lipgloss.NewStyle().Width(width).Render(wrapGlyphs(glyphs, width))
}
