package headlessterm

// vt52 submode states. The submode corresponds to DECANM (DECSET 2) reset,
// but it is entered only through SetVT52Mode: DECRST 2 in the byte stream
// does not call it. go-ansicode models ECMA-48 only, so this submode runs as
// a byte-level pre-filter in Terminal.Write ahead of the ansicode.Decoder,
// the same layering Terminal already uses for DCS passthrough.
type vt52SubState int

const (
	vt52Ground vt52SubState = iota
	vt52Escape
	vt52DirectY // waiting for the row byte of ESC Y
	vt52DirectX // waiting for the column byte of ESC Y
)

// vt52State holds the VT52 sub-interpreter's parse position.
type vt52State struct {
	active bool
	sub    vt52SubState
	row    int
}

func newVT52State() *vt52State {
	return &vt52State{sub: vt52Ground}
}

// SetVT52Mode enables or disables the VT52 compatibility submode
// (DECSET/DECRST 2, inverted: reset enters VT52, set returns to ANSI).
func (t *Terminal) SetVT52Mode(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.vt52.active = enabled
	t.vt52.sub = vt52Ground
}

// VT52Mode reports whether the VT52 compatibility submode is active.
func (t *Terminal) VT52Mode() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.vt52.active
}

// feedVT52 consumes one byte of VT52 submode input. It returns true if the
// byte was consumed by the submode (and should not reach the ECMA-48
// decoder).
func (t *Terminal) feedVT52(b byte) bool {
	v := t.vt52
	if !v.active {
		return false
	}

	switch v.sub {
	case vt52DirectY:
		v.row = int(b) - 0x20
		v.sub = vt52DirectX
		return true
	case vt52DirectX:
		col := int(b) - 0x20
		v.sub = vt52Ground
		t.GotoLine(v.row)
		t.GotoCol(col)
		return true
	case vt52Escape:
		v.sub = vt52Ground
		switch b {
		case 'A':
			t.MoveUp(1)
		case 'B':
			t.MoveDown(1)
		case 'C':
			t.MoveForward(1)
		case 'D':
			t.MoveBackward(1)
		case 'F':
			// Enter VT52 graphics charset (treated as DEC line drawing).
			t.ConfigureCharsetLocal(CharsetIndexG0, CharsetLineDrawing)
		case 'G':
			t.ConfigureCharsetLocal(CharsetIndexG0, CharsetASCII)
		case 'H':
			t.GotoLine(0)
			t.GotoCol(0)
		case 'I':
			t.ReverseIndexLocal()
		case 'J':
			t.ClearScreenLocal(2)
		case 'K':
			t.ClearLineLocal(0)
		case 'Y':
			v.sub = vt52DirectY
		case 'Z':
			t.writeResponseString("\x1b/Z")
		case '<':
			t.vt52.active = false
		case '=':
			t.SetKeypadApplicationModeLocal(true)
		case '>':
			t.SetKeypadApplicationModeLocal(false)
		}
		return true
	default:
		if b == 0x1b {
			v.sub = vt52Escape
			return true
		}
		return false
	}
}

// The following *Local helpers call the existing public operations; they
// exist only to keep vt52.go readable without reaching into handler.go's
// unexported internals directly.
func (t *Terminal) ConfigureCharsetLocal(idx CharsetIndex, cs Charset) {
	t.mu.Lock()
	if int(idx) >= 0 && int(idx) < 4 {
		t.charsets[idx] = cs
	}
	t.mu.Unlock()
}

func (t *Terminal) ReverseIndexLocal() { t.ReverseIndex() }

func (t *Terminal) ClearScreenLocal(mode int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch mode {
	case 2:
		t.activeBuffer.ClearAll()
	}
}

func (t *Terminal) ClearLineLocal(mode int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch mode {
	case 0:
		t.activeBuffer.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cols)
	}
}

func (t *Terminal) SetKeypadApplicationModeLocal(on bool) {
	if on {
		t.SetKeypadApplicationMode()
	} else {
		t.UnsetKeypadApplicationMode()
	}
}
