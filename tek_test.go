package headlessterm

import "testing"

// tekAddr encodes (x, y) in the 10-bit tagged-address form:
// High Y, Low Y, High X, Low X.
func tekAddr(x, y int) []byte {
	return []byte{
		byte(0x20 | (y >> 7)),
		byte(0x60 | ((y >> 2) & 0x1f)),
		byte(0x20 | (x >> 7)),
		byte(0x40 | ((x >> 2) & 0x1f)),
	}
}

func TestTekModeEntry(t *testing.T) {
	term := New(WithSize(24, 80))

	if active, _ := term.TekMode(); active {
		t.Error("tek mode should start off")
	}
	term.SetTekMode(true)
	if active, mode := term.TekMode(); !active || mode != "alpha" {
		t.Errorf("expected alpha mode, got active=%v mode=%q", active, mode)
	}
}

func TestTekAlphaText(t *testing.T) {
	term := New(WithSize(24, 80))
	term.SetTekMode(true)

	term.WriteString("HI")

	_, chars, _ := term.TekSnapshot(0)
	if len(chars) != 2 {
		t.Fatalf("expected 2 alpha chars, got %d", len(chars))
	}
	if chars[0].R != 'H' || chars[1].R != 'I' {
		t.Errorf("expected 'H','I', got %q,%q", chars[0].R, chars[1].R)
	}
	if chars[1].X <= chars[0].X {
		t.Error("second char should advance right")
	}
}

func TestTekGraphVector(t *testing.T) {
	term := New(WithSize(24, 80))
	term.SetTekMode(true)

	data := []byte{0x1d} // GS: graph mode
	data = append(data, tekAddr(100, 200)...)
	data = append(data, tekAddr(500, 600)...)
	term.Write(data)

	vectors, _, _ := term.TekSnapshot(0)
	if len(vectors) != 1 {
		t.Fatalf("expected 1 vector (first address is a move), got %d", len(vectors))
	}
	v := vectors[0]
	if !v.Draw {
		t.Error("vector should be a draw")
	}
	if v.X0 != 100 || v.Y0 != 200 || v.X1 != 500 || v.Y1 != 600 {
		t.Errorf("expected (100,200)-(500,600), got (%d,%d)-(%d,%d)", v.X0, v.Y0, v.X1, v.Y1)
	}
}

func TestTekShortAddressLowXOnly(t *testing.T) {
	term := New(WithSize(24, 80))
	term.SetTekMode(true)

	data := []byte{0x1d}
	data = append(data, tekAddr(100, 200)...)
	// Low-X-only change: tag 10, payload updates bits 6..2 of X.
	data = append(data, byte(0x40|((104>>2)&0x1f)))
	term.Write(data)

	vectors, _, _ := term.TekSnapshot(0)
	if len(vectors) != 1 {
		t.Fatalf("expected 1 vector, got %d", len(vectors))
	}
	v := vectors[0]
	if v.X1 != 104 || v.Y1 != 200 {
		t.Errorf("expected short form to move only X to 104, got (%d,%d)", v.X1, v.Y1)
	}
}

func TestTekPointPlot(t *testing.T) {
	term := New(WithSize(24, 80))
	term.SetTekMode(true)

	data := []byte{0x1c} // FS: point plot
	data = append(data, tekAddr(40, 80)...)
	data = append(data, tekAddr(44, 84)...)
	term.Write(data)

	vectors, _, _ := term.TekSnapshot(0)
	if len(vectors) != 2 {
		t.Fatalf("expected 2 plotted points, got %d", len(vectors))
	}
	if vectors[0].X0 != vectors[0].X1 {
		t.Error("a point plot should have zero extent")
	}
}

func TestTekIncrementalPlot(t *testing.T) {
	term := New(WithSize(24, 80))
	term.SetTekMode(true)

	// RS, pen down (plots), step east twice, pen up, step north (no plot).
	term.Write([]byte{0x1e, 'P', 'A', 'A', ' ', 'D'})

	vectors, _, _ := term.TekSnapshot(0)
	if len(vectors) != 3 {
		t.Fatalf("expected 3 plotted points (pen-down + 2 east steps), got %d", len(vectors))
	}
	if vectors[2].X0 != vectors[1].X0+1 {
		t.Error("east step should advance x by 1")
	}
}

func TestTekLineStyleSelect(t *testing.T) {
	term := New(WithSize(24, 80))
	term.SetTekMode(true)

	data := []byte{0x1b, 'b'} // ESC b: dot-dash
	data = append(data, 0x1d)
	data = append(data, tekAddr(0, 0)...)
	data = append(data, tekAddr(100, 100)...)
	term.Write(data)

	vectors, _, _ := term.TekSnapshot(0)
	if len(vectors) != 1 || vectors[0].Style != TekLineDotDash {
		t.Errorf("expected dot-dash vector, got %+v", vectors)
	}
}

func TestTekSnapshotWatermark(t *testing.T) {
	term := New(WithSize(24, 80))
	term.SetTekMode(true)

	data := []byte{0x1d}
	data = append(data, tekAddr(0, 0)...)
	data = append(data, tekAddr(10, 10)...)
	term.Write(data)

	_, _, total := term.TekSnapshot(0)
	term.Write(tekAddr(20, 20))

	vectors, _, newTotal := term.TekSnapshot(total)
	if len(vectors) != 1 {
		t.Errorf("expected only the newly appended vector, got %d", len(vectors))
	}
	if newTotal != total+1 {
		t.Errorf("expected total %d, got %d", total+1, newTotal)
	}
}

func TestTekPageReset(t *testing.T) {
	term := New(WithSize(24, 80))
	term.SetTekMode(true)

	data := []byte{0x1d}
	data = append(data, tekAddr(0, 0)...)
	data = append(data, tekAddr(10, 10)...)
	data = append(data, 0x1b, 0x0c) // ESC FF: page reset
	term.Write(data)

	vectors, chars, _ := term.TekSnapshot(0)
	if len(vectors) != 0 || len(chars) != 0 {
		t.Error("page reset should clear the command buffer")
	}
	if active, mode := term.TekMode(); !active || mode != "alpha" {
		t.Errorf("page reset should return to alpha mode, got %v %q", active, mode)
	}
}

func TestTekGINReport(t *testing.T) {
	var responses []byte
	term := New(WithSize(24, 80), WithResponse(&testWriter{data: &responses}))
	term.SetTekMode(true)
	term.EnterGIN()

	if _, mode := term.TekMode(); mode != "gin" {
		t.Fatalf("expected gin mode, got %q", mode)
	}
	term.ReportTekGIN(' ', 512, 1024, false)

	want := string([]byte{' ', 0x20 | (512 >> 7), 0x60 | ((512 >> 2) & 0x1f), 0x20 | (1024 >> 7), 0x40 | ((1024 >> 2) & 0x1f), '\r'})
	if string(responses) != want {
		t.Errorf("expected %q, got %q", want, responses)
	}
	if _, mode := term.TekMode(); mode == "gin" {
		t.Error("report should leave GIN mode")
	}
}

func TestTekExitViaEscETX(t *testing.T) {
	term := New(WithSize(24, 80))
	term.SetTekMode(true)

	term.Write([]byte{0x1b, 0x03})

	if active, _ := term.TekMode(); active {
		t.Error("ESC ETX should leave Tek submode")
	}
}

func TestTekENQStatus(t *testing.T) {
	var responses []byte
	term := New(WithSize(24, 80), WithResponse(&testWriter{data: &responses}))
	term.SetTekMode(true)

	term.Write([]byte{0x05})

	if len(responses) != 5 {
		t.Fatalf("expected status byte + 4 address bytes, got %d bytes", len(responses))
	}
	if responses[0] != 0x34 {
		t.Errorf("alpha-mode status should be 0x34, got %#x", responses[0])
	}
}
