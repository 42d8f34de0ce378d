package headlessterm

import "fmt"

// rectRegion normalizes a 1-based protocol rectangle (top,left,bottom,right)
// against the current scroll margins and origin mode, clamping to the grid.
// A zero bottom/right means "to the edge of the screen", per DEC convention.
func (t *Terminal) rectRegion(top, left, bottom, right int) (t0, l0, b0, r0 int) {
	if top <= 0 {
		top = 1
	}
	if left <= 0 {
		left = 1
	}
	if bottom <= 0 || bottom > t.rows {
		bottom = t.rows
	}
	if right <= 0 || right > t.cols {
		right = t.cols
	}
	if t.modes&ModeOrigin != 0 {
		// Origin mode: coordinates count from the margins and are clipped to them.
		top += t.scrollTop
		bottom += t.scrollTop
		if bottom > t.scrollBottom {
			bottom = t.scrollBottom
		}
		left += t.regionLeftLocked()
		right += t.regionLeftLocked()
		if right > t.regionRightLocked()+1 {
			right = t.regionRightLocked() + 1
		}
	}
	t0 = clamp(top-1, 0, t.rows-1)
	l0 = clamp(left-1, 0, t.cols-1)
	b0 = clamp(bottom-1, 0, t.rows-1)
	r0 = clamp(right-1, 0, t.cols-1)
	return
}

// FillRectangle implements DECFRA: fill the rectangle with a codepoint using
// the current template attributes.
func (t *Terminal) FillRectangle(ch rune, top, left, bottom, right int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t0, l0, b0, r0 := t.rectRegion(top, left, bottom, right)
	for row := t0; row <= b0; row++ {
		for col := l0; col <= r0; col++ {
			cell := t.activeBuffer.Cell(row, col)
			if cell == nil {
				continue
			}
			cell.Char = ch
			cell.Fg = t.template.Fg
			cell.Bg = t.template.Bg
			cell.UnderlineColor = t.template.UnderlineColor
			cell.Flags = t.template.Flags
			cell.Hyperlink = nil
			cell.Combining = nil
			t.activeBuffer.MarkDirty(row, col)
		}
	}
}

// EraseRectangle implements DECERA: erase the rectangle to blanks with the
// current background, ignoring protection.
func (t *Terminal) EraseRectangle(top, left, bottom, right int) {
	t.eraseRectangle(top, left, bottom, right, false)
}

// SelectiveEraseRectangle implements DECSERA: erase the rectangle to blanks,
// preserving cells marked CellFlagProtected (set via DECSCA).
func (t *Terminal) SelectiveEraseRectangle(top, left, bottom, right int) {
	t.eraseRectangle(top, left, bottom, right, true)
}

func (t *Terminal) eraseRectangle(top, left, bottom, right int, selective bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t0, l0, b0, r0 := t.rectRegion(top, left, bottom, right)
	for row := t0; row <= b0; row++ {
		for col := l0; col <= r0; col++ {
			cell := t.activeBuffer.Cell(row, col)
			if cell == nil {
				continue
			}
			if selective && cell.HasFlag(CellFlagProtected) {
				continue
			}
			protected := cell.HasFlag(CellFlagProtected)
			cell.Reset()
			cell.Bg = t.template.Bg
			if protected {
				cell.SetFlag(CellFlagProtected)
			}
			t.activeBuffer.MarkDirty(row, col)
		}
	}
}

// InsertColumns implements DECIC (CSI Pn ' }): insert n blank columns at
// the cursor, shifting existing columns right within the scroll region.
func (t *Terminal) InsertColumns(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shiftColumnsLocked(t.cursor.Col, n)
}

// DeleteColumns implements DECDC (CSI Pn ' ~): delete n columns at the
// cursor, shifting the remainder left and blanking the freed right edge.
func (t *Terminal) DeleteColumns(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shiftColumnsLocked(t.cursor.Col, -n)
}

// ShiftColumnsRight implements SR (CSI Pn SP A): shift the scroll region
// n columns right, blanking the vacated left edge.
func (t *Terminal) ShiftColumnsRight(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shiftColumnsLocked(t.regionLeftLocked(), n)
}

// ShiftColumnsLeft implements SL (CSI Pn SP @): shift the scroll region
// n columns left, blanking the vacated right edge.
func (t *Terminal) ShiftColumnsLeft(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shiftColumnsLocked(t.regionLeftLocked(), -n)
}

// SetLeftRightMarginMode implements DECSET/DECRST 69 (DECLRMM). Leaving
// the mode resets the margins to the full width.
func (t *Terminal) SetLeftRightMarginMode(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.leftRightMarginMode = on
	if !on {
		t.scrollLeft = 0
		t.scrollRight = t.cols - 1
	}
}

// SetLeftRightMargins implements DECSLRM (CSI Pl ; Pr s), honored only
// while DECLRMM is set. Arguments are 1-based; zero means the edge.
func (t *Terminal) SetLeftRightMargins(left, right int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.leftRightMarginMode {
		return
	}
	if left <= 0 {
		left = 1
	}
	if right <= 0 || right > t.cols {
		right = t.cols
	}
	if left >= right {
		return
	}
	t.scrollLeft = left - 1
	t.scrollRight = right - 1
	t.cursor.Row = 0
	t.cursor.Col = 0
	if t.modes&ModeOrigin != 0 {
		t.cursor.Row = t.scrollTop
		t.cursor.Col = t.scrollLeft
	}
}

func (t *Terminal) regionLeftLocked() int {
	if t.leftRightMarginMode {
		return t.scrollLeft
	}
	return 0
}

func (t *Terminal) regionRightLocked() int {
	if t.leftRightMarginMode && t.scrollRight < t.cols {
		return t.scrollRight
	}
	return t.cols - 1
}

// shiftColumnsLocked moves the columns from `from` through the right
// margin by n positions (positive shifts right) across every row of the
// vertical scroll region, blanking the vacated columns with the current
// background.
func (t *Terminal) shiftColumnsLocked(from, n int) {
	if n == 0 {
		return
	}
	left, right := from, t.regionRightLocked()
	if left < 0 || left > right {
		return
	}
	top, bot := t.scrollTop, t.scrollBottom-1
	if bot >= t.rows {
		bot = t.rows - 1
	}

	abs := n
	if abs < 0 {
		abs = -abs
	}
	if abs > right-left+1 {
		abs = right - left + 1
	}

	for row := top; row <= bot; row++ {
		if n > 0 {
			for col := right; col >= left+abs; col-- {
				if dst, src := t.activeBuffer.Cell(row, col), t.activeBuffer.Cell(row, col-abs); dst != nil && src != nil {
					*dst = src.Copy()
				}
			}
			for col := left; col < left+abs && col <= right; col++ {
				t.blankCellLocked(row, col)
			}
		} else {
			for col := left; col <= right-abs; col++ {
				if dst, src := t.activeBuffer.Cell(row, col), t.activeBuffer.Cell(row, col+abs); dst != nil && src != nil {
					*dst = src.Copy()
				}
			}
			for col := right - abs + 1; col <= right; col++ {
				if col >= left {
					t.blankCellLocked(row, col)
				}
			}
		}
		for col := left; col <= right; col++ {
			t.activeBuffer.MarkDirty(row, col)
		}
	}
}

func (t *Terminal) blankCellLocked(row, col int) {
	if cell := t.activeBuffer.Cell(row, col); cell != nil {
		cell.Reset()
		cell.Bg = t.template.Bg
	}
}

// SetProtected implements DECSCA: while on, printed cells carry
// CellFlagProtected and survive selective erase (DECSERA, "?"-prefixed
// ED/EL).
func (t *Terminal) SetProtected(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.protectMode = on
	if on {
		t.template.Flags |= CellFlagProtected
	} else {
		t.template.Flags &^= CellFlagProtected
	}
}

// Protected reports whether DECSCA protection is in effect.
func (t *Terminal) Protected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.protectMode
}

// SelectiveClearLine is the selective-erase ("?"-prefixed) sibling of
// ClearLine: cells with CellFlagProtected are left untouched. go-ansicode's
// Handler interface does not surface the DEC private marker for ED/EL, so a
// caller that has itself detected a leading '?' byte on the CSI sequence
// calls this directly instead of ClearLine.
func (t *Terminal) SelectiveClearLine(mode int) {
	t.mu.Lock()
	row := t.cursor.Row
	col := t.cursor.Col
	cols := t.cols
	t.mu.Unlock()

	switch mode {
	case 0:
		t.selectiveEraseRange(row, col, cols)
	case 1:
		t.selectiveEraseRange(row, 0, col+1)
	case 2:
		t.selectiveEraseRange(row, 0, cols)
	}
}

// SelectiveClearScreen is the selective-erase sibling of ClearScreen.
func (t *Terminal) SelectiveClearScreen(mode int) {
	t.mu.Lock()
	row := t.cursor.Row
	col := t.cursor.Col
	rows := t.rows
	cols := t.cols
	t.mu.Unlock()

	switch mode {
	case 0:
		t.selectiveEraseRange(row, col, cols)
		for r := row + 1; r < rows; r++ {
			t.selectiveEraseRange(r, 0, cols)
		}
	case 1:
		for r := 0; r < row; r++ {
			t.selectiveEraseRange(r, 0, cols)
		}
		t.selectiveEraseRange(row, 0, col+1)
	case 2:
		for r := 0; r < rows; r++ {
			t.selectiveEraseRange(r, 0, cols)
		}
	}
}

func (t *Terminal) selectiveEraseRange(row, startCol, endCol int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for col := startCol; col < endCol && col < t.cols; col++ {
		cell := t.activeBuffer.Cell(row, col)
		if cell == nil || cell.HasFlag(CellFlagProtected) {
			continue
		}
		cell.Reset()
		cell.Bg = t.template.Bg
		t.activeBuffer.MarkDirty(row, col)
	}
}

// CopyRectangle implements DECCRA: copy a rectangle from a (possibly
// different) page to the destination top-left. This emulator has a single
// page per screen, so srcPage/dstPage beyond 1 are accepted and ignored.
func (t *Terminal) CopyRectangle(srcTop, srcLeft, srcBottom, srcRight, srcPage, dstTop, dstLeft, dstPage int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t0, l0, b0, r0 := t.rectRegion(srcTop, srcLeft, srcBottom, srcRight)
	height := b0 - t0 + 1
	width := r0 - l0 + 1

	dt := clamp(dstTop-1, 0, t.rows-1)
	dl := clamp(dstLeft-1, 0, t.cols-1)

	// Snapshot the source first in case src/dst overlap.
	src := make([][]Cell, height)
	for i := 0; i < height; i++ {
		row := make([]Cell, width)
		for j := 0; j < width; j++ {
			if cell := t.activeBuffer.Cell(t0+i, l0+j); cell != nil {
				row[j] = cell.Copy()
			}
		}
		src[i] = row
	}

	for i := 0; i < height; i++ {
		dr := dt + i
		if dr >= t.rows {
			break
		}
		for j := 0; j < width; j++ {
			dc := dl + j
			if dc >= t.cols {
				break
			}
			if cell := t.activeBuffer.Cell(dr, dc); cell != nil {
				*cell = src[i][j]
				t.activeBuffer.MarkDirty(dr, dc)
			}
		}
	}
}

// RectAttrChange describes one DECCARA/DECRARA attribute toggle.
type RectAttrChange struct {
	Flag  CellFlags
	Clear bool // true for DECRARA "reverse" (toggle off additionally handled by caller)
}

// ChangeRectangleAttrs implements DECCARA: set the named SGR-derived flags
// on every cell in the rectangle without touching colors or content.
func (t *Terminal) ChangeRectangleAttrs(top, left, bottom, right int, flags CellFlags) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t0, l0, b0, r0 := t.rectRegion(top, left, bottom, right)
	for row := t0; row <= b0; row++ {
		for col := l0; col <= r0; col++ {
			if cell := t.activeBuffer.Cell(row, col); cell != nil {
				cell.SetFlag(flags)
				t.activeBuffer.MarkDirty(row, col)
			}
		}
	}
}

// ClearRectangleAttrs removes the named flags from every cell in the
// rectangle (DECCARA with parameter 0).
func (t *Terminal) ClearRectangleAttrs(top, left, bottom, right int, flags CellFlags) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t0, l0, b0, r0 := t.rectRegion(top, left, bottom, right)
	for row := t0; row <= b0; row++ {
		for col := l0; col <= r0; col++ {
			if cell := t.activeBuffer.Cell(row, col); cell != nil {
				cell.Flags &^= flags
				t.activeBuffer.MarkDirty(row, col)
			}
		}
	}
}

// ReverseRectangleAttrs implements DECRARA: XOR the named flags on every
// cell in the rectangle.
func (t *Terminal) ReverseRectangleAttrs(top, left, bottom, right int, flags CellFlags) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t0, l0, b0, r0 := t.rectRegion(top, left, bottom, right)
	for row := t0; row <= b0; row++ {
		for col := l0; col <= r0; col++ {
			if cell := t.activeBuffer.Cell(row, col); cell != nil {
				cell.Flags ^= flags
				t.activeBuffer.MarkDirty(row, col)
			}
		}
	}
}

// RequestRectangleChecksum implements DECRQCRA: compute the DEC checksum of
// a rectangle (the two's complement, low 16 bits, of the sum of every cell's
// base character byte value) and format the DCS reply the host writes back.
//
// Scenario: a fresh screen containing "AB" (0x41, 0x42) at the requested
// rectangle replies "\eP1!~FF7D\e\\" for request id 1, since
// 0x10000-(0x41+0x42) == 0xFF7D.
func (t *Terminal) RequestRectangleChecksum(reqID, top, left, bottom, right int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	t0, l0, b0, r0 := t.rectRegion(top, left, bottom, right)
	var sum uint32
	for row := t0; row <= b0; row++ {
		for col := l0; col <= r0; col++ {
			if cell := t.activeBuffer.Cell(row, col); cell != nil {
				sum += uint32(cell.Char)
			}
		}
	}
	checksum := uint16(-int32(sum))
	return fmt.Sprintf("\x1bP%d!~%04X\x1b\\", reqID, checksum)
}
