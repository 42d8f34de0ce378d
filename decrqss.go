package headlessterm

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// decrqssInvalid is the DCS reply xterm sends for an unrecognized or
// unsupported DECRQSS request (the "0" response named in spec §4.1/§4.6).
const decrqssInvalid = "\x1bP0$r\x1b\\"

// RequestSetting implements DCS $q (DECRQSS): echoes the current value of
// a display setting as the very escape sequence that would set it, wrapped
// in a valid-response DCS. request is the intermediate+final bytes that
// followed "$q" (e.g. "m" for SGR, "r" for DECSTBM).
func (t *Terminal) RequestSetting(request string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch request {
	case "m": // SGR
		return t.decrqssSGR()
	case "r": // DECSTBM (scrollBottom is stored exclusive)
		return fmt.Sprintf("\x1bP1$r%d;%dr\x1b\\", t.scrollTop+1, t.scrollBottom)
	case "s": // DECSLRM
		if !t.leftRightMarginMode {
			return decrqssInvalid
		}
		return fmt.Sprintf("\x1bP1$r%d;%ds\x1b\\", t.scrollLeft+1, t.scrollRight+1)
	case "\"q": // DECSCA
		lvl := 0
		if t.protectMode {
			lvl = 1
		}
		return fmt.Sprintf("\x1bP1$r%d\"q\x1b\\", lvl)
	case "\"p": // DECSCL
		lvl := 60 + t.vtLevel/100
		if lvl < 61 {
			lvl = 61
		}
		return fmt.Sprintf("\x1bP1$r%d;1\"p\x1b\\", lvl)
	case " q": // DECSCUSR
		return fmt.Sprintf("\x1bP1$r%d q\x1b\\", int(t.cursor.Style)+1)
	case "t": // DECSLPP
		return fmt.Sprintf("\x1bP1$r%dt\x1b\\", t.rows)
	case "$|": // DECSCPP
		return fmt.Sprintf("\x1bP1$r%d$|\x1b\\", t.cols)
	case "*|": // DECSNLS
		return fmt.Sprintf("\x1bP1$r%d*|\x1b\\", t.rows)
	default:
		return decrqssInvalid
	}
}

// TabStopReport implements DECTABSR (requested via DECRQPSR 2): the
// current tab stops as 1-based column numbers joined by '/'.
func (t *Terminal) TabStopReport() string {
	t.mu.RLock()
	stops := t.activeBuffer.TabStops()
	t.mu.RUnlock()

	parts := make([]string, len(stops))
	for i, c := range stops {
		parts[i] = strconv.Itoa(c + 1)
	}
	return fmt.Sprintf("\x1bP2$u%s\x1b\\", strings.Join(parts, "/"))
}

// decrqssSGR renders the current template attributes as an SGR setter
// sequence; round-tripping it through the interpreter must reproduce the
// same attribute set (spec §8): the flags and the foreground/background
// colors. The underline color is not included.
func (t *Terminal) decrqssSGR() string {
	params := []string{"0"}
	f := t.template.Flags
	if f&CellFlagBold != 0 {
		params = append(params, "1")
	}
	if f&CellFlagDim != 0 {
		params = append(params, "2")
	}
	if f&CellFlagItalic != 0 {
		params = append(params, "3")
	}
	// Underline styles use the colon sub-parameter form so the echoed
	// setter re-applies as the same style rather than "4" plus a
	// free-standing parameter.
	switch {
	case f&CellFlagDoubleUnderline != 0:
		params = append(params, "4:2")
	case f&CellFlagCurlyUnderline != 0:
		params = append(params, "4:3")
	case f&CellFlagDottedUnderline != 0:
		params = append(params, "4:4")
	case f&CellFlagDashedUnderline != 0:
		params = append(params, "4:5")
	case f&CellFlagUnderline != 0:
		params = append(params, "4")
	}
	if f&CellFlagBlinkSlow != 0 {
		params = append(params, "5")
	}
	if f&CellFlagBlinkFast != 0 {
		params = append(params, "6")
	}
	if f&CellFlagReverse != 0 {
		params = append(params, "7")
	}
	if f&CellFlagHidden != 0 {
		params = append(params, "8")
	}
	if f&CellFlagStrike != 0 {
		params = append(params, "9")
	}
	// Named ANSI colors as 30-37/90-97 (40-47/100-107); defaults add nothing.
	for i, c := range []color.Color{t.template.Fg, t.template.Bg} {
		switch v := c.(type) {
		case *NamedColor:
			if v.Name < 16 {
				params = append(params, strconv.Itoa(30+10*i+v.Name%8+60*(v.Name/8)))
			}
		case *IndexedColor:
			params = append(params, fmt.Sprintf("%d;5;%d", 38+10*i, v.Index))
		case color.RGBA:
			params = append(params, fmt.Sprintf("%d;2;%d;%d;%d", 38+10*i, v.R, v.G, v.B))
		}
	}
	return fmt.Sprintf("\x1bP1$r%sm\x1b\\", strings.Join(params, ";"))
}
