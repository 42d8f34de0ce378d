package headlessterm

import "fmt"

// MouseButton identifies which physical button (or wheel direction)
// generated a mouse event.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonMiddle
	MouseButtonRight
	MouseButtonRelease
	MouseWheelUp
	MouseWheelDown
)

// MouseEventKind distinguishes press, release, and motion.
type MouseEventKind int

const (
	MouseEventPress MouseEventKind = iota
	MouseEventRelease
	MouseEventMotion
)

// MouseEncoding selects the byte-level encoding of the reported sequence.
type MouseEncoding int

const (
	MouseEncodingLegacy MouseEncoding = iota // 0x20-offset single bytes
	MouseEncodingUTF8
	MouseEncodingSGR   // xterm CSI < ... M/m
	MouseEncodingURXVT // urxvt CSI ...M
	MouseEncodingPixel // SGR-pixel, coordinates in device pixels
)

// wheelNotchUnits is the accumulation granularity per spec §3 Supplemented
// Features: 120 units per notch, matching mintty's termmouse.c constant.
const wheelNotchUnits = 120

// MouseEncoder accumulates wheel deltas and renders mouse events into the
// byte sequence the configured protocol/encoding expects.
type MouseEncoder struct {
	Encoding   MouseEncoding
	wheelAccum int

	// BaudRate, if nonzero, is an advisory characters-per-second cap a host
	// I/O pump may use to throttle writes (spec §5: throttling lives in the
	// host, not the interpreter — this core only stores the setting).
	BaudRate int
}

// NewMouseEncoder creates an encoder defaulting to the legacy encoding.
func NewMouseEncoder() *MouseEncoder {
	return &MouseEncoder{Encoding: MouseEncodingLegacy}
}

// AccumulateWheel adds raw wheel delta units and returns how many whole
// notches have accrued, consuming them from the accumulator.
func (m *MouseEncoder) AccumulateWheel(deltaUnits int) int {
	m.wheelAccum += deltaUnits
	notches := m.wheelAccum / wheelNotchUnits
	m.wheelAccum -= notches * wheelNotchUnits
	return notches
}

// EncodeMouseEvent renders one mouse event as the byte sequence to write to the
// child, honoring the currently active reporting mode on t and the
// encoder's configured byte encoding.
func (t *Terminal) EncodeMouseEvent(button MouseButton, kind MouseEventKind, row, col int, shift, meta, ctrl bool) (string, bool) {
	t.mu.RLock()
	modes := t.modes
	enc := t.mouseEnc
	t.mu.RUnlock()

	if enc == nil {
		return "", false
	}

	switch kind {
	case MouseEventMotion:
		if modes&ModeReportAllMouseMotion == 0 && modes&ModeReportCellMouseMotion == 0 {
			return "", false
		}
	default:
		if modes&ModeReportMouseClicks == 0 && modes&ModeReportCellMouseMotion == 0 && modes&ModeReportAllMouseMotion == 0 {
			return "", false
		}
	}

	cb := mouseButtonCode(button, kind)
	if shift {
		cb |= 4
	}
	if meta {
		cb |= 8
	}
	if ctrl {
		cb |= 16
	}
	if kind == MouseEventMotion {
		cb |= 32
	}

	// SGR mouse mode (1006) takes priority if set, regardless of encoder default.
	sgr := modes&ModeSGRMouse != 0 || enc.Encoding == MouseEncodingSGR || enc.Encoding == MouseEncodingPixel
	utf8 := modes&ModeUTF8Mouse != 0 || enc.Encoding == MouseEncodingUTF8

	switch {
	case sgr:
		finalByte := byte('M')
		if kind == MouseEventRelease {
			finalByte = 'm'
		}
		return fmt.Sprintf("\x1b[<%d;%d;%d%c", cb, col+1, row+1, finalByte), true
	case enc.Encoding == MouseEncodingURXVT:
		return fmt.Sprintf("\x1b[%d;%d;%dM", cb+32, col+1, row+1), true
	case utf8:
		return fmt.Sprintf("\x1b[M%c%s%s", cb+32, encodeMouseCoordUTF8(col+1), encodeMouseCoordUTF8(row+1)), true
	default:
		// Legacy: coordinates past 223 cannot be represented (would exceed a
		// byte); clamp per xterm's historical behavior.
		c := clampMouseCoord(col + 1)
		r := clampMouseCoord(row + 1)
		return fmt.Sprintf("\x1b[M%c%c%c", cb+32, c+32, r+32), true
	}
}

func mouseButtonCode(button MouseButton, kind MouseEventKind) int {
	switch button {
	case MouseButtonLeft:
		if kind == MouseEventRelease {
			return 3
		}
		return 0
	case MouseButtonMiddle:
		if kind == MouseEventRelease {
			return 3
		}
		return 1
	case MouseButtonRight:
		if kind == MouseEventRelease {
			return 3
		}
		return 2
	case MouseWheelUp:
		return 64
	case MouseWheelDown:
		return 65
	default:
		return 3
	}
}

func clampMouseCoord(v int) int {
	if v > 223 {
		return 223
	}
	return v
}

func encodeMouseCoordUTF8(v int) string {
	// xterm's UTF-8 mouse mode encodes coordinates as single runes offset
	// by 32, allowing values up to 2015 without needing SGR.
	return string(rune(v + 32))
}

// SetMouseEncoding selects the byte-level mouse report encoding.
func (t *Terminal) SetMouseEncoding(enc MouseEncoding) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mouseEnc == nil {
		t.mouseEnc = NewMouseEncoder()
	}
	t.mouseEnc.Encoding = enc
}

// DECLocatorFilter is an armed DECEFR rectangle: it fires once when the
// pointer leaves it.
type DECLocatorFilter struct {
	Top, Left, Bottom, Right int
	Armed                    bool
}

// locatorState tracks DECELR enablement, DECSLE event selection, the
// DECEFR filter rectangle, and the last pointer position the host
// reported (spec §4.5 "DEC Locator").
type locatorState struct {
	enabled          bool
	oneShot          bool
	reportButtonDown bool
	reportButtonUp   bool
	filter           DECLocatorFilter
	lastRow, lastCol int
	havePointer      bool
}

// SelectLocatorEvents implements DECSLE: ps values 1/2 enable button
// down/up reporting, 3/4 disable them.
func (t *Terminal) SelectLocatorEvents(ps []int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range ps {
		switch p {
		case 1:
			t.locator.reportButtonDown = true
		case 2:
			t.locator.reportButtonUp = true
		case 3:
			t.locator.reportButtonDown = false
		case 4:
			t.locator.reportButtonUp = false
		}
	}
}

// EnableLocatorReports implements DECELR: ps 0 disables the locator,
// 1 enables it, 2 enables it for one report. The units parameter is
// accepted and ignored (this core deals in cells only).
func (t *Terminal) EnableLocatorReports(ps, units int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locator.enabled = ps == 1 || ps == 2
	t.locator.oneShot = ps == 2
	_ = units
}

// UpdateLocatorPosition records the host pointer position consulted by
// DECRQLP and the DECEFR filter.
func (t *Terminal) UpdateLocatorPosition(row, col int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locator.lastRow, t.locator.lastCol = row, col
	t.locator.havePointer = true
}

// RequestLocatorPosition implements DECRQLP: returns the current pointer
// report sequence. row/col are supplied by the host (the core has no
// pointer of its own).
func (t *Terminal) RequestLocatorPosition(row, col int, buttonsDown int) string {
	return fmt.Sprintf("\x1b[1;%d;%d;%d;0&w", buttonsDown, row+1, col+1)
}

// locatorPositionReply answers a stream-issued DECRQLP from the recorded
// pointer state; a disabled or never-positioned locator reports "no
// locator" per DEC.
func (t *Terminal) locatorPositionReply() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.locator.enabled || !t.locator.havePointer {
		return "\x1b[0&w"
	}
	if t.locator.oneShot {
		t.locator.enabled = false
	}
	return fmt.Sprintf("\x1b[1;0;%d;%d;0&w", t.locator.lastRow+1, t.locator.lastCol+1)
}

// RequestFilterRectangle implements DECEFR: arms a one-shot filter
// rectangle; the host calls CheckLocatorFilter on subsequent pointer moves.
func (t *Terminal) RequestFilterRectangle(top, left, bottom, right int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locator.filter = DECLocatorFilter{Top: top, Left: left, Bottom: bottom, Right: right, Armed: true}
}

// CheckLocatorFilter reports whether (row,col) falls outside the armed
// DECEFR rectangle, disarming it if so (it fires once). The position is
// also recorded for DECRQLP.
func (t *Terminal) CheckLocatorFilter(row, col int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locator.lastRow, t.locator.lastCol = row, col
	t.locator.havePointer = true
	f := &t.locator.filter
	if !f.Armed {
		return false
	}
	if row >= f.Top && row <= f.Bottom && col >= f.Left && col <= f.Right {
		return false
	}
	f.Armed = false
	return true
}
