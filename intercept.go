package headlessterm

// Pre-decoder stream filter. go-ansicode's dispatch surface has no entry
// points for the DEC rectangle/column family, REP, DECRQM, selective
// ED/EL, NRCS designators, single shifts, or the iTerm2 OSC 1337 File
// payload, so Terminal.Write routes bytes through this filter first: the
// sequences listed in the dispatch tables below are parsed and handled
// here, everything else is replayed to the decoder byte for byte. The
// filter holds at most one in-flight escape sequence across Write calls.

type filterState int

const (
	filterGround filterState = iota
	filterEsc        // held ESC, deciding what follows
	filterCSI        // accumulating ESC [ ... final
	filterDesignate  // accumulating ESC ( / ) / * / + / - / . / / final
	filterHash       // held ESC #, awaiting the line-size digit
	filterOSC        // matching an OSC against the 1337;File= prefix
	filterOSCCapture // matched; capturing the payload until BEL/ST
	filterOSCEsc     // ESC seen while capturing (ST check)
	filterString     // inside an OSC/DCS/APC/PM/SOS we pass through
	filterStringEsc  // ESC seen inside a passed-through string
)

// filteredKind tags a complete sequence the filter hands back for dispatch.
type filteredKind int

const (
	filteredNone filteredKind = iota
	filteredCSI
	filteredDesignate // dispatched AND replayed to the decoder
	filteredInlineImage
)

const inlineImagePrefix = "1337;File="

type streamFilter struct {
	state     filterState
	buf       []byte
	oscIdx    int         // match progress into inlineImagePrefix
	stringRet filterState // state to return to after an in-string ESC
	stringBEL bool        // BEL terminates the passed-through string (OSC only)
}

func (f *streamFilter) idle() bool {
	return f.state == filterGround
}

// take hands ownership of the held buffer to the caller and resets the
// filter to ground.
func (f *streamFilter) take() []byte {
	seq := f.buf
	f.buf = nil
	f.state = filterGround
	return seq
}

// feed consumes one byte. pass reports that the current byte goes to the
// decoder as-is; replay holds previously held bytes that must now go to
// the decoder ahead of it; seq (with kind) is a complete sequence for
// Terminal dispatch.
func (t *Terminal) feedFilter(b byte) (pass bool, replay []byte, seq []byte, kind filteredKind) {
	f := &t.filter

	switch f.state {
	case filterGround:
		if b == 0x1b {
			f.state = filterEsc
			f.buf = append(f.buf[:0], b)
			return false, nil, nil, filteredNone
		}
		return true, nil, nil, filteredNone

	case filterEsc:
		switch {
		case b == '[':
			f.buf = append(f.buf, b)
			f.state = filterCSI
		case b == '(' || b == ')' || b == '*' || b == '+' || b == '-' || b == '.' || b == '/':
			f.buf = append(f.buf, b)
			f.state = filterDesignate
		case b == '#':
			f.buf = append(f.buf, b)
			f.state = filterHash
		case b == 'N':
			f.take()
			t.setSingleShift(CharsetIndexG2)
		case b == 'O':
			f.take()
			t.setSingleShift(CharsetIndexG3)
		case b == ']':
			f.buf = append(f.buf, b)
			f.state = filterOSC
			f.oscIdx = 0
		case b == 'P' || b == 'X' || b == '^' || b == '_':
			f.buf = append(f.buf, b)
			replay = f.take()
			f.state = filterString
			f.stringRet = filterString
			f.stringBEL = false // DCS/SOS/PM/APC end on ST only
			return false, replay, nil, filteredNone
		case b == 0x1b:
			// ESC ESC: forward the first, keep holding the second.
			return false, []byte{0x1b}, nil, filteredNone
		default:
			f.buf = append(f.buf, b)
			return false, f.take(), nil, filteredNone
		}
		return false, nil, nil, filteredNone

	case filterCSI:
		if b >= 0x40 && b <= 0x7e {
			f.buf = append(f.buf, b)
			seq := f.take()
			if t.interceptsCSI(seq) {
				return false, nil, seq, filteredCSI
			}
			return false, seq, nil, filteredNone
		}
		switch {
		case b == 0x1b:
			replay = append([]byte(nil), f.buf...)
			f.buf = append(f.buf[:0], 0x1b)
			f.state = filterEsc
			return false, replay, nil, filteredNone
		case b == 0x18 || b == 0x1a: // CAN/SUB abort the sequence
			f.buf = append(f.buf, b)
			return false, f.take(), nil, filteredNone
		case b < 0x20:
			// Control executed mid-sequence: forward it, keep accumulating.
			return true, nil, nil, filteredNone
		default:
			f.buf = append(f.buf, b)
			return false, nil, nil, filteredNone
		}

	case filterHash:
		// DEC line-size family. The decoder handles #8 (DECALN) itself;
		// the double-width/height selects are ours. Everything replays.
		f.buf = append(f.buf, b)
		seq := f.take()
		if b >= '3' && b <= '6' {
			t.setLineSize(b)
		}
		return false, seq, nil, filteredNone

	case filterDesignate:
		f.buf = append(f.buf, b)
		if b == 0x1b {
			replay = append([]byte(nil), f.buf[:len(f.buf)-1]...)
			f.buf = append(f.buf[:0], 0x1b)
			f.state = filterEsc
			return false, replay, nil, filteredNone
		}
		if b >= 0x20 && b <= 0x2f {
			// Intermediate (e.g. the '%' of ESC ( %6), keep going.
			return false, nil, nil, filteredNone
		}
		// Final byte: dispatch the designation and replay it too, so the
		// decoder's own coarse ASCII/line-drawing tracking stays in step.
		seq := f.take()
		return false, seq, seq, filteredDesignate

	case filterOSC:
		if b == 0x07 {
			f.buf = append(f.buf, b)
			return false, f.take(), nil, filteredNone
		}
		if b == 0x1b {
			replay = append([]byte(nil), f.buf...)
			f.buf = append(f.buf[:0], 0x1b)
			f.state = filterEsc
			return false, replay, nil, filteredNone
		}
		if f.oscIdx < len(inlineImagePrefix) && b == inlineImagePrefix[f.oscIdx] {
			f.buf = append(f.buf, b)
			f.oscIdx++
			if f.oscIdx == len(inlineImagePrefix) {
				f.state = filterOSCCapture
			}
			return false, nil, nil, filteredNone
		}
		// Some other OSC: replay the held prefix and pass the rest through.
		f.buf = append(f.buf, b)
		replay = f.take()
		f.state = filterString
		f.stringRet = filterString
		f.stringBEL = true
		return false, replay, nil, filteredNone

	case filterOSCCapture:
		if b == 0x07 {
			return false, nil, f.take(), filteredInlineImage
		}
		if b == 0x1b {
			f.state = filterOSCEsc
			return false, nil, nil, filteredNone
		}
		f.buf = append(f.buf, b)
		return false, nil, nil, filteredNone

	case filterOSCEsc:
		if b == '\\' {
			return false, nil, f.take(), filteredInlineImage
		}
		f.buf = append(f.buf, 0x1b, b)
		f.state = filterOSCCapture
		return false, nil, nil, filteredNone

	case filterString:
		if b == 0x07 && f.stringBEL {
			f.state = filterGround
			return true, nil, nil, filteredNone
		}
		if b == 0x1b {
			f.state = filterStringEsc
			return false, nil, nil, filteredNone
		}
		return true, nil, nil, filteredNone

	case filterStringEsc:
		if b == '\\' {
			f.state = filterGround
		} else {
			f.state = f.stringRet
		}
		return false, []byte{0x1b, b}, nil, filteredNone
	}
	return true, nil, nil, filteredNone
}

// parsedCSI is the decomposed form of an intercepted CSI sequence.
type parsedCSI struct {
	private       byte
	params        []int
	intermediates string
	final         byte
}

// param returns the i-th parameter, or def when absent or zero.
func (p *parsedCSI) param(i, def int) int {
	if i >= len(p.params) || p.params[i] == 0 {
		return def
	}
	return p.params[i]
}

// rawParam returns the i-th parameter with zero preserved.
func (p *parsedCSI) rawParam(i int) int {
	if i >= len(p.params) {
		return 0
	}
	return p.params[i]
}

// parseInterceptedCSI decomposes "ESC [ ..." held by the filter. Colons
// are treated as parameter separators; none of the intercepted sequences
// carry sub-parameters.
func parseInterceptedCSI(seq []byte) parsedCSI {
	var p parsedCSI
	body := seq[2:]
	i := 0
	if len(body) > 0 && body[0] >= 0x3c && body[0] <= 0x3f {
		p.private = body[0]
		i++
	}
	cur, has := 0, false
	for ; i < len(body); i++ {
		c := body[i]
		switch {
		case c >= '0' && c <= '9':
			cur = cur*10 + int(c-'0')
			if cur > 65535 {
				cur = 65535
			}
			has = true
		case c == ';' || c == ':':
			p.params = append(p.params, cur)
			cur, has = 0, false
		default:
			goto tail
		}
	}
tail:
	if has || len(p.params) > 0 {
		p.params = append(p.params, cur)
	}
	p.intermediates = string(body[i : len(body)-1])
	p.final = body[len(body)-1]
	return p
}

// interceptsCSI reports whether the sequence belongs to this filter's
// dispatch table rather than the decoder's.
func (t *Terminal) interceptsCSI(seq []byte) bool {
	p := parseInterceptedCSI(seq)
	if p.private == '?' {
		switch {
		case p.intermediates == "" && (p.final == 'J' || p.final == 'K'):
			return true
		case p.intermediates == "$" && p.final == 'p':
			return true
		}
		return false
	}
	if p.private != 0 {
		return false
	}
	switch p.intermediates {
	case "":
		if p.final == 'b' {
			return true
		}
		if p.final == 's' && len(p.params) >= 2 {
			t.mu.RLock()
			lrmm := t.leftRightMarginMode
			t.mu.RUnlock()
			return lrmm
		}
		return false
	case "$":
		switch p.final {
		case 'p', 'r', 't', 'v', 'w', 'x', 'z', '{':
			return true
		}
	case "*":
		return p.final == 'y'
	case "'":
		switch p.final {
		case '}', '~', '{', 'w', 'z', '|':
			return true
		}
	case " ":
		return p.final == '@' || p.final == 'A'
	case "\"":
		return p.final == 'q'
	}
	return false
}

// dispatchInterceptedCSI executes one sequence interceptsCSI accepted.
func (t *Terminal) dispatchInterceptedCSI(seq []byte) {
	p := parseInterceptedCSI(seq)

	if p.private == '?' {
		switch {
		case p.final == 'J':
			t.SelectiveClearScreen(p.rawParam(0))
		case p.final == 'K':
			t.SelectiveClearLine(p.rawParam(0))
		case p.intermediates == "$" && p.final == 'p':
			t.writeResponseString(t.DECRQM(p.rawParam(0), true))
		}
		return
	}

	switch p.intermediates {
	case "":
		switch p.final {
		case 'b': // REP
			t.RepeatLastChar(p.param(0, 1))
		case 's': // DECSLRM (only reachable while DECLRMM is set)
			t.SetLeftRightMargins(p.rawParam(0), p.rawParam(1))
		}
	case "$":
		switch p.final {
		case 'p': // DECRQM, ANSI modes
			t.writeResponseString(t.DECRQM(p.rawParam(0), false))
		case 'r': // DECCARA
			t.applyRectAttrs(p, false)
		case 't': // DECRARA
			t.applyRectAttrs(p, true)
		case 'v': // DECCRA
			t.CopyRectangle(p.rawParam(0), p.rawParam(1), p.rawParam(2), p.rawParam(3),
				p.param(4, 1), p.param(5, 1), p.param(6, 1), p.param(7, 1))
		case 'w': // DECRQPSR
			if p.rawParam(0) == 2 {
				t.writeResponseString(t.TabStopReport())
			}
		case 'x': // DECFRA
			t.FillRectangle(rune(p.param(0, ' ')), p.rawParam(1), p.rawParam(2), p.rawParam(3), p.rawParam(4))
		case 'z': // DECERA
			t.EraseRectangle(p.rawParam(0), p.rawParam(1), p.rawParam(2), p.rawParam(3))
		case '{': // DECSERA
			t.SelectiveEraseRectangle(p.rawParam(0), p.rawParam(1), p.rawParam(2), p.rawParam(3))
		}
	case "*":
		if p.final == 'y' { // DECRQCRA
			t.writeResponseString(t.RequestRectangleChecksum(
				p.param(0, 1), p.rawParam(2), p.rawParam(3), p.rawParam(4), p.rawParam(5)))
		}
	case "'":
		switch p.final {
		case '}': // DECIC
			t.InsertColumns(p.param(0, 1))
		case '~': // DECDC
			t.DeleteColumns(p.param(0, 1))
		case '{': // DECSLE
			t.SelectLocatorEvents(p.params)
		case 'w': // DECEFR
			t.RequestFilterRectangle(p.rawParam(0), p.rawParam(1), p.rawParam(2), p.rawParam(3))
		case 'z': // DECELR
			t.EnableLocatorReports(p.rawParam(0), p.rawParam(1))
		case '|': // DECRQLP
			t.writeResponseString(t.locatorPositionReply())
		}
	case " ":
		switch p.final {
		case '@': // SL
			t.ShiftColumnsLeft(p.param(0, 1))
		case 'A': // SR
			t.ShiftColumnsRight(p.param(0, 1))
		}
	case "\"":
		if p.final == 'q' { // DECSCA
			t.SetProtected(p.rawParam(0) == 1)
		}
	}
}

// applyRectAttrs handles DECCARA/DECRARA: parameters beyond the rectangle
// are the SGR-subset codes DEC allows (0, 1, 4, 5, 7, 8).
func (t *Terminal) applyRectAttrs(p parsedCSI, reverse bool) {
	top, left := p.rawParam(0), p.rawParam(1)
	bottom, right := p.rawParam(2), p.rawParam(3)

	var flags CellFlags
	all := CellFlagBold | CellFlagUnderline | CellFlagBlinkSlow | CellFlagReverse | CellFlagHidden
	clearAll := false
	for i := 4; i < len(p.params); i++ {
		switch p.params[i] {
		case 0:
			clearAll = true
		case 1:
			flags |= CellFlagBold
		case 4:
			flags |= CellFlagUnderline
		case 5:
			flags |= CellFlagBlinkSlow
		case 7:
			flags |= CellFlagReverse
		case 8:
			flags |= CellFlagHidden
		}
	}
	if len(p.params) <= 4 {
		clearAll = !reverse
		if reverse {
			flags = all
		}
	}

	switch {
	case reverse:
		if clearAll {
			flags = all
		}
		t.ReverseRectangleAttrs(top, left, bottom, right, flags)
	case clearAll:
		t.ClearRectangleAttrs(top, left, bottom, right, all)
		if flags != 0 {
			t.ChangeRectangleAttrs(top, left, bottom, right, flags)
		}
	default:
		t.ChangeRectangleAttrs(top, left, bottom, right, flags)
	}
}

// setLineSize applies ESC # 3/4/5/6 (DECDHL top/bottom, DECSWL, DECDWL)
// to the cursor's row.
func (t *Terminal) setLineSize(b byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row := t.cursor.Row
	all := LineAttrDoubleWidth | LineAttrDoubleHeightTop | LineAttrDoubleHeightBottom
	t.activeBuffer.ClearLineAttr(row, all)
	switch b {
	case '3':
		t.activeBuffer.SetLineAttr(row, LineAttrDoubleHeightTop|LineAttrDoubleWidth)
	case '4':
		t.activeBuffer.SetLineAttr(row, LineAttrDoubleHeightBottom|LineAttrDoubleWidth)
	case '6':
		t.activeBuffer.SetLineAttr(row, LineAttrDoubleWidth)
	}
}

// dispatchDesignation maps a complete ESC ( / ) / * / + / - / . / /
// designator to the NRCS slot it selects. Unknown finals leave the slot
// untouched (the replayed bytes still reach the decoder).
func (t *Terminal) dispatchDesignation(seq []byte) {
	slotByte := seq[1]
	final := string(seq[2:])

	var idx CharsetIndex
	ninetySix := false
	switch slotByte {
	case '(':
		idx = CharsetIndexG0
	case ')':
		idx = CharsetIndexG1
	case '*':
		idx = CharsetIndexG2
	case '+':
		idx = CharsetIndexG3
	case '-':
		idx, ninetySix = CharsetIndexG1, true
	case '.':
		idx, ninetySix = CharsetIndexG2, true
	case '/':
		idx, ninetySix = CharsetIndexG3, true
	default:
		return
	}

	set, ok := NRCSDesignator(final, ninetySix)
	if !ok {
		return
	}
	t.DesignateNRCS(idx, set)
}
