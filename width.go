package headlessterm

import "github.com/unilibs/uniwidth"

// runeWidth returns the display width: 2 for wide characters (CJK, emoji), 1 for normal, 0 for zero-width (combining marks, control chars).
func runeWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}

// isWideRune returns true if the rune occupies 2 columns (CJK ideographs, fullwidth forms, emoji).
func isWideRune(r rune) bool {
	return uniwidth.RuneWidth(r) == 2
}

// StringWidth returns the total display width of a string (sum of rune widths).
func StringWidth(s string) int {
	return uniwidth.StringWidth(s)
}

// WidthPolicy layers the configurable width knobs on top of uniwidth's
// base tables: East-Asian-ambiguous characters can be forced wide, and
// "single-cell CJK" downgrades width-2 characters to one column, with
// CellFlagNarrowCJK recorded on the cell so a renderer knows to squeeze
// the glyph.
type WidthPolicy struct {
	AmbiguousWide bool
	SingleCellCJK bool
}

// ambiguousWidthRune reports whether r falls in the East-Asian-ambiguous
// classes that render double-width in legacy CJK locales: the Latin-1
// symbol range, Greek and Cyrillic letters, general punctuation, and the
// box-drawing and block-element blocks.
func ambiguousWidthRune(r rune) bool {
	switch {
	case r >= 0x00A1 && r <= 0x00FF && uniwidth.RuneWidth(r) == 1:
		return true
	case r >= 0x0391 && r <= 0x03C9: // Greek
		return true
	case r >= 0x0401 && r <= 0x044F: // Cyrillic
		return true
	case r >= 0x2010 && r <= 0x2027: // general punctuation
		return true
	case r >= 0x2500 && r <= 0x257F: // box drawing
		return true
	case r >= 0x2580 && r <= 0x259F: // block elements
		return true
	}
	return false
}

// RuneWidth applies the policy: 0, 1, or 2 columns for r.
func (p WidthPolicy) RuneWidth(r rune) int {
	w := uniwidth.RuneWidth(r)
	if w == 1 && p.AmbiguousWide && ambiguousWidthRune(r) {
		return 2
	}
	if w == 2 && p.SingleCellCJK {
		return 1
	}
	return w
}

// Narrowed reports whether the policy downgraded an intrinsically wide
// rune to a single cell, i.e. the cell should carry CellFlagNarrowCJK.
func (p WidthPolicy) Narrowed(r rune) bool {
	return p.SingleCellCJK && uniwidth.RuneWidth(r) == 2
}

// SetWidthPolicy installs the terminal's character width policy; the zero
// value is uniwidth's default behavior.
func (t *Terminal) SetWidthPolicy(p WidthPolicy) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.widthPolicy = p
}

// WidthPolicy returns the active character width policy.
func (t *Terminal) WidthPolicy() WidthPolicy {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.widthPolicy
}
