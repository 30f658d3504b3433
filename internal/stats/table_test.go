package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Tier", "WPM", "Accuracy"}
	rows := [][]string{
		{"easy", "42", "97%"},
		{"hard>medium", "8", "100%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Tier        WPM Accuracy" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "easy         42      97%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "hard>medium   8     100%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"A", "B"}, [][]string{{"日本", "x"}}, nil)
	if lines[0] != "A    B" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "日本 x" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
}
