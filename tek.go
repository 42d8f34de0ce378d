package headlessterm

import "fmt"

// Tektronix 4014 graphics submode coordinate space: spec §4.4 / mintty's
// tek.c. Y grows upward, origin bottom-left.
const (
	tekWidth  = 4096
	tekHeight = 3120
)

// tekMode selects the Tek submode's current drawing mode.
type tekMode int

const (
	tekOff tekMode = iota
	tekAlpha
	tekGraph0 // move, no draw
	tekGraph  // draw vectors
	tekPointPlot
	tekSpecialPlot
	tekIncrementalPlot
	tekGIN // graphic input
)

// TekLineStyle selects the vector line style (ESC ` .. d).
type TekLineStyle int

const (
	TekLineSolid TekLineStyle = iota
	TekLineDotted
	TekLineDotDash
	TekLineShortDash
	TekLineLongDash
)

// TekVector is one drawn (or moved-to) segment in the submode's append-only
// command buffer.
type TekVector struct {
	X0, Y0, X1, Y1 int
	Style          TekLineStyle
	Draw           bool // false for a bare move (GRAPH0)

	// Beam emphasis for the host rasterizer: defocused widens the stroke,
	// write-thru skips the glow decay, intensity annotates special plot.
	Defocused bool
	WriteThru bool
	Intensity int
}

// TekChar is one alpha-mode character placed in Tek space.
type TekChar struct {
	X, Y int
	R    rune
	Size int // 0..3, the four Tek font sizes
}

// tekState holds the Tek 4014 submode's parse and drawing state.
type tekState struct {
	mode      tekMode
	sub       tekEscSub
	x, y      int
	havePoint bool

	// Tagged-address accumulation; addrStart marks the ADDRESS0 state
	// (no address byte consumed yet for the current coordinate).
	addrBuf   []byte
	addrStart bool

	fontSize  int
	style     TekLineStyle
	plotPen   bool
	defocused bool
	writeThru bool
	intensity int

	vectors []TekVector
	chars   []TekChar
	staleAt int // index into vectors beyond which the buffer hasn't been repainted

	ginActive bool
	preGIN    tekMode
}

type tekEscSub int

const (
	tekEscNone tekEscSub = iota
	tekEscSeen
)

func newTekState() *tekState {
	return &tekState{mode: tekOff, style: TekLineSolid, addrStart: true}
}

// SetTekMode enters or leaves Tek 4014 submode (the DECSET 38 mode). This
// method is the only way in: DECSET 38 in the byte stream does not call it.
func (t *Terminal) SetTekMode(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if enabled {
		t.tek.mode = tekAlpha
		t.tek.y = tekHeight - 1
	} else {
		t.tek.mode = tekOff
	}
}

// TekMode reports whether Tek submode is active and, if so, its current
// drawing mode.
func (t *Terminal) TekMode() (active bool, mode string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.tek.mode == tekOff {
		return false, ""
	}
	names := map[tekMode]string{
		tekAlpha: "alpha", tekGraph0: "graph0", tekGraph: "graph",
		tekPointPlot: "point", tekSpecialPlot: "special",
		tekIncrementalPlot: "incremental", tekGIN: "gin",
	}
	return true, names[t.tek.mode]
}

// TekSnapshot returns the accumulated vector and character commands since
// the last page reset (ESC FF), for the host to rasterize; leaving and
// re-entering the submode does not clear them. since applies to vectors
// only: chars is always the whole list. The "stale since"
// watermark lets a host redraw only the newly appended tail, per spec §9's
// redesign note, by passing back the len() it last consumed as since.
func (t *Terminal) TekSnapshot(since int) (vectors []TekVector, chars []TekChar, total int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if since < 0 || since > len(t.tek.vectors) {
		since = 0
	}
	return append([]TekVector(nil), t.tek.vectors[since:]...), append([]TekChar(nil), t.tek.chars...), len(t.tek.vectors)
}

// feedTek consumes one byte of Tek submode input, returning true if it was
// consumed (and should not reach the ECMA-48 decoder).
func (t *Terminal) feedTek(b byte) bool {
	tk := t.tek
	if tk.mode == tekOff {
		return false
	}

	if b == 0x1b {
		tk.sub = tekEscSeen
		return true
	}

	if tk.sub == tekEscSeen {
		tk.sub = tekEscNone
		switch b {
		case 0x0c: // FF, page/reset
			t.tekResetLocked()
			return true
		case 0x03: // ETX - leave Tek submode entirely
			tk.mode = tekOff
			tk.ginActive = false
			return true
		case 0x1a: // SUB - enter GIN mode
			t.enterGINLocked()
			return true
		case 0x1c: // ESC FS -> special point plot (intensity-annotated)
			tk.mode = tekSpecialPlot
			tk.addrBuf = tk.addrBuf[:0]
			tk.addrStart = true
			return true
		case 0x1d: // ESC GS -> graph mode
			tk.mode = tekGraph0
			tk.havePoint = false
			tk.addrBuf = tk.addrBuf[:0]
			tk.addrStart = true
			return true
		case 0x1e: // ESC RS -> incremental plot
			tk.mode = tekIncrementalPlot
			return true
		case 0x1f: // ESC US -> alpha mode
			tk.mode = tekAlpha
			return true
		case '`', 'a', 'b', 'c', 'd': // normal beam, line style select
			tk.style = TekLineStyle(b - '`')
			tk.defocused = false
			tk.writeThru = false
			return true
		case 'h', 'i', 'j', 'k', 'l': // defocused beam
			tk.style = TekLineStyle(b - 'h')
			tk.defocused = true
			tk.writeThru = false
			return true
		case 'p', 'q', 'r', 's', 't': // write-thru beam
			tk.style = TekLineStyle(b - 'p')
			tk.defocused = false
			tk.writeThru = true
			return true
		case '8', '9', ':', ';': // four alpha font sizes
			tk.fontSize = int(b - '8')
			return true
		}
		return true
	}

	// Bare mode-switch controls, valid in every Tek mode.
	switch b {
	case 0x05: // ENQ: status byte + current address
		t.tekEnq()
		return true
	case 0x1c: // FS: point plot
		tk.mode = tekPointPlot
		tk.addrBuf = tk.addrBuf[:0]
		tk.addrStart = true
		return true
	case 0x1d: // GS: vector graph mode, first address is a move
		tk.mode = tekGraph0
		tk.havePoint = false
		tk.addrBuf = tk.addrBuf[:0]
		tk.addrStart = true
		return true
	case 0x1e: // RS: incremental plot
		tk.mode = tekIncrementalPlot
		return true
	case 0x1f: // US: alpha mode
		tk.mode = tekAlpha
		return true
	case '\r':
		if tk.mode != tekAlpha {
			tk.mode = tekAlpha
		}
		tk.x = 0
		return true
	}

	switch tk.mode {
	case tekAlpha:
		if b >= 0x20 && b < 0x7f {
			tk.chars = append(tk.chars, TekChar{X: tk.x, Y: tk.y, R: rune(b), Size: tk.fontSize})
			tk.x += tekCharAdvance
			return true
		}
		if b == '\n' {
			tk.y -= tekLineAdvance
			return true
		}
		if b == '\b' {
			tk.x -= tekCharAdvance
			if tk.x < 0 {
				tk.x = 0
			}
			return true
		}
		return true
	case tekGraph0, tekGraph, tekPointPlot, tekSpecialPlot:
		return t.feedTekAddress(b)
	case tekIncrementalPlot:
		return t.feedTekIncremental(b)
	case tekGIN:
		// GIN mode: the host supplies a pointer position out of band via
		// ReportTekGIN; raw input bytes here are ignored (ENQ was already
		// answered above by tekEnq).
		return true
	}
	return true
}

const (
	tekCharAdvance = 14 // units per alpha-mode character cell, default font
	tekLineAdvance = 22
)

func (t *Terminal) tekResetLocked() {
	tk := t.tek
	tk.mode = tekAlpha
	tk.x, tk.y = 0, tekHeight-1
	tk.addrBuf = tk.addrBuf[:0]
	tk.addrStart = true
	tk.havePoint = false
	tk.vectors = nil
	tk.chars = nil
	tk.staleAt = 0
}

// feedTekAddress accumulates one tagged address byte. A low-X byte
// (tag bits 10) terminates the address; BEL in graph mode before any
// address byte suppresses the next vector (dark move); the first byte of
// each special-plot address carries the beam intensity.
func (t *Terminal) feedTekAddress(b byte) bool {
	tk := t.tek
	if b == 0x07 && tk.mode == tekGraph0 && tk.addrStart {
		tk.mode = tekGraph
		return true
	}
	if b < 0x20 {
		return true
	}
	if tk.mode == tekSpecialPlot && tk.addrStart {
		tk.addrStart = false
		tk.defocused = b&0x40 != 0
		tk.intensity = int(b & 0x37)
		return true
	}
	tk.addrStart = false
	tk.addrBuf = append(tk.addrBuf, b)
	if b&0x60 == 0x40 {
		prevX, prevY := tk.x, tk.y
		ok := tk.decodeAddress(tk.addrBuf)
		tk.addrBuf = tk.addrBuf[:0]
		tk.addrStart = true
		if ok {
			t.tekPlot(prevX, prevY)
			if tk.mode == tekGraph0 {
				tk.mode = tekGraph
			}
		}
	}
	return true
}

// decodeAddress applies a complete tagged byte sequence to the current
// 12-bit coordinate, per the VT3xx-GP tag table: each byte contributes two
// tag bits (bits 6..5) selecting which coordinate fragments the 5 payload
// bits update. Returns false on an unrecognized tag sequence.
func (tk *tekState) decodeAddress(buf []byte) bool {
	tag := 0
	code := make([]int, len(buf))
	for i, c := range buf {
		tag = tag<<2 | int((c>>5)&3)
		code[i] = int(c & 0x1f)
	}

	y, x := tk.y, tk.x
	switch tag {
	case 0x1F6: // 12-bit: High Y, Extra, Low Y, High X, Low X
		y = code[0]<<7 | code[2]<<2 | code[1]>>2
		x = code[3]<<7 | code[4]<<2 | (code[1] & 3)
	case 0x76: // 10-bit: High Y, Low Y, High X, Low X
		y = code[0]<<7 | code[1]<<2
		x = code[2]<<7 | code[3]<<2
	case 0x06: // High Y, Low X
		y = (y & 0x7F) | code[0]<<7
		x = (x & 0xF83) | code[1]<<2
	case 0x0E: // Low Y, Low X
		y = (y & 0xF83) | code[0]<<2
		x = (x & 0xF83) | code[1]<<2
	case 0x36: // Low Y, High X, Low X
		y = (y & 0xF83) | code[0]<<2
		x = (x & 0x3) | code[1]<<7 | code[2]<<2
	case 0x02: // Low X only
		x = (x & 0xF83) | code[0]<<2
	case 0x3E: // Extra, Low Y, Low X
		y = (y & 0xF80) | code[1]<<2 | code[0]>>2
		x = (x & 0xF80) | code[2]<<2 | (code[0] & 3)
	case 0x1E: // High Y, Low Y, Low X
		y = (y & 0x3) | code[0]<<7 | code[1]<<2
		x = (x & 0xF83) | code[2]<<2
	case 0xF6: // Extra, Low Y, High X, Low X
		y = (y & 0xF80) | code[1]<<2 | code[0]>>2
		x = code[2]<<7 | code[3]<<2 | (code[0] & 3)
	case 0x7E: // High Y, Extra, Low Y, Low X
		y = code[0]<<7 | code[2]<<2 | code[1]>>2
		x = (x & 0xF80) | code[3]<<2 | (code[1] & 3)
	case 0x16: // High Y, High X, Low X
		y = (y & 0x7F) | code[0]<<7
		x = (x & 0x3) | code[1]<<7 | code[2]<<2
	default:
		return false
	}
	tk.y, tk.x = y, x
	return true
}

// tekPlot appends the drawing command the just-decoded address implies at
// the current coordinate; (prevX, prevY) is the pre-decode position a graph
// vector starts from.
func (t *Terminal) tekPlot(prevX, prevY int) {
	tk := t.tek
	v := TekVector{
		X0: tk.x, Y0: tk.y, X1: tk.x, Y1: tk.y,
		Style:     tk.style,
		Defocused: tk.defocused,
		WriteThru: tk.writeThru,
	}
	switch tk.mode {
	case tekGraph0:
		tk.havePoint = true
	case tekGraph:
		if tk.havePoint {
			v.X0, v.Y0 = prevX, prevY
			v.Draw = true
			tk.vectors = append(tk.vectors, v)
		}
		tk.havePoint = true
	case tekPointPlot:
		v.Draw = true
		tk.vectors = append(tk.vectors, v)
	case tekSpecialPlot:
		v.Draw = true
		v.Intensity = tk.intensity
		tk.vectors = append(tk.vectors, v)
	}
}

// feedTekIncremental handles single-byte incremental plot: ' ' raises the
// pen, 'P' lowers it (plotting the current position), and the direction
// letters DEAIHJBF step one unit with bit semantics: 8 south, 4 north,
// 2 west, 1 east.
func (t *Terminal) feedTekIncremental(b byte) bool {
	tk := t.tek
	point := func() {
		tk.vectors = append(tk.vectors, TekVector{
			X0: tk.x, Y0: tk.y, X1: tk.x, Y1: tk.y,
			Style: tk.style, Draw: true,
			Defocused: tk.defocused, WriteThru: tk.writeThru,
		})
	}
	switch {
	case b == ' ':
		tk.plotPen = false
	case b == 'P':
		tk.plotPen = true
		point()
	case b == 'D' || b == 'E' || b == 'A' || b == 'I' || b == 'H' || b == 'J' || b == 'B' || b == 'F':
		if b&8 != 0 {
			tk.y--
		}
		if b&4 != 0 {
			tk.y++
		}
		if b&2 != 0 {
			tk.x--
		}
		if b&1 != 0 {
			tk.x++
		}
		if tk.plotPen {
			point()
		}
	}
	return true
}

// EnterGIN puts the Tek submode into graphic-input mode: a crosshair cursor
// is shown by the host and the next pointer click is reported back via
// ReportTekGIN.
func (t *Terminal) EnterGIN() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enterGINLocked()
}

func (t *Terminal) enterGINLocked() {
	if t.tek.mode == tekOff {
		return
	}
	t.tek.preGIN = t.tek.mode
	t.tek.mode = tekGIN
	t.tek.ginActive = true
}

// tekAddressBytes renders (x, y) in the 10-bit report form the hardware
// sends: X before Y, each as a high byte of bits 11..7 and a low byte of
// bits 6..2.
func tekAddressBytes(x, y int) string {
	return string([]byte{
		byte(0x20 | (x >> 7)), byte(0x60 | ((x >> 2) & 0x1f)),
		byte(0x20 | (y >> 7)), byte(0x40 | ((y >> 2) & 0x1f)),
	})
}

// tekEnq answers ENQ: in GIN mode just the pointer address; otherwise a
// status byte (alpha/graph discrimination in bits 2/3) followed by the
// current beam address.
func (t *Terminal) tekEnq() {
	tk := t.tek
	if tk.mode == tekGIN {
		t.writeResponseString(tekAddressBytes(tk.x, tk.y))
		return
	}
	status := byte(0x30)
	if tk.mode == tekAlpha {
		status |= 0x04
	} else {
		status |= 0x08
	}
	t.writeResponseString(string([]byte{status}) + tekAddressBytes(tk.x, tk.y))
}

// ReportTekGIN implements the GIN-mode pointer report: one status
// character, the tagged address of (x,y), CR, and an optional ETX strap.
func (t *Terminal) ReportTekGIN(ch byte, x, y int, strapETX bool) {
	t.mu.Lock()
	reply := fmt.Sprintf("%c%s\r", ch, tekAddressBytes(x, y))
	if strapETX {
		reply += "\x03"
	}
	t.tek.mode = t.tek.preGIN
	t.tek.ginActive = false
	t.mu.Unlock()
	t.writeResponseString(reply)
}
