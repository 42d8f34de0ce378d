package headlessterm

import "testing"

func TestExtendSelectionChar(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("hello world")

	start, end := term.ExtendSelection(0, 2, SelectionChar)
	if start != (Position{Row: 0, Col: 2}) || end != (Position{Row: 0, Col: 2}) {
		t.Errorf("char mode should not spread, got %v-%v", start, end)
	}
}

func TestExtendSelectionWord(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("hello world")

	start, end := term.ExtendSelection(0, 2, SelectionWord)
	if start.Col != 0 || end.Col != 4 {
		t.Errorf("expected word 'hello' (0..4), got %d..%d", start.Col, end.Col)
	}

	start, end = term.ExtendSelection(0, 8, SelectionWord)
	if start.Col != 6 || end.Col != 10 {
		t.Errorf("expected word 'world' (6..10), got %d..%d", start.Col, end.Col)
	}
}

func TestExtendSelectionWordOnSpace(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("a b")

	start, end := term.ExtendSelection(0, 1, SelectionWord)
	if start.Col != 1 || end.Col != 1 {
		t.Errorf("spread on a non-word char should stay put, got %d..%d", start.Col, end.Col)
	}
}

func TestExtendSelectionLine(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("hello")

	start, end := term.ExtendSelection(0, 3, SelectionLine)
	if start.Col != 0 || end.Col != 79 {
		t.Errorf("line mode should span the row, got %d..%d", start.Col, end.Col)
	}
}

func TestExtendSelectionURL(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("see https://example.com/a(b)c?d=1 end")

	// Click inside the scheme portion; the word spread already covers the
	// URL body since word chars include ':' '/' '.', and the scheme
	// detector keeps extending through the parens a plain word would stop
	// at.
	start, end := term.ExtendSelection(0, 6, SelectionWord)
	if start.Col != 4 {
		t.Errorf("expected URL start at col 4, got %d", start.Col)
	}
	if end.Col != 32 {
		t.Errorf("expected URL to extend through col 32, got %d", end.Col)
	}
}

func TestExtendSelectionURLCustomTerminators(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("https://x.y/a|b c")
	term.SetURLTerminators([]rune{'|', ' '})

	_, end := term.ExtendSelection(0, 1, SelectionWord)
	if end.Col != 12 {
		t.Errorf("custom terminator '|' should stop extension at col 12, got %d", end.Col)
	}
}

func TestNoopBidiIdentity(t *testing.T) {
	var b NoopBidi
	for _, col := range []int{0, 5, 79} {
		if got := b.VisualToLogical(nil, col); got != col {
			t.Errorf("identity resolver changed %d to %d", col, got)
		}
	}
}

func TestSetBidiResolverNilResets(t *testing.T) {
	term := New(WithSize(24, 80))
	term.SetBidiResolver(nil)

	term.mu.RLock()
	_, ok := term.bidi.(NoopBidi)
	term.mu.RUnlock()
	if !ok {
		t.Error("nil resolver should fall back to NoopBidi")
	}
}

type reverseBidi struct{ cols int }

func (r reverseBidi) VisualToLogical(line []Cell, col int) int { return r.cols - 1 - col }

func TestExtendSelectionWithBidiResolver(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("abc def")
	term.SetBidiResolver(reverseBidi{cols: 80})

	// Visual col 79 maps back to logical col 0, inside "abc".
	start, end := term.ExtendSelection(0, 79, SelectionWord)
	if start.Col != 0 || end.Col != 2 {
		t.Errorf("expected bidi-mapped word 'abc' (0..2), got %d..%d", start.Col, end.Col)
	}
}
