package headlessterm

import "testing"

func TestDECRQMAutowrap(t *testing.T) {
	term := New(WithSize(24, 80))

	// Autowrap is on by default.
	if reply := term.DECRQM(7, true); reply != "\x1b[?7;1$y" {
		t.Errorf("expected set reply, got %q", reply)
	}

	term.WriteString("\x1b[?7l")
	if reply := term.DECRQM(7, true); reply != "\x1b[?7;2$y" {
		t.Errorf("expected reset reply, got %q", reply)
	}
}

func TestDECRQMMouseModes(t *testing.T) {
	term := New(WithSize(24, 80))

	if reply := term.DECRQM(1000, true); reply != "\x1b[?1000;2$y" {
		t.Errorf("expected 1000 reset, got %q", reply)
	}
	term.WriteString("\x1b[?1000h")
	if reply := term.DECRQM(1000, true); reply != "\x1b[?1000;1$y" {
		t.Errorf("expected 1000 set, got %q", reply)
	}
}

func TestDECRQMUnrecognized(t *testing.T) {
	term := New(WithSize(24, 80))

	if reply := term.DECRQM(9999, true); reply != "\x1b[?9999;0$y" {
		t.Errorf("expected not-recognized reply, got %q", reply)
	}
}

func TestDECRQMSynchronizedUpdate(t *testing.T) {
	term := New(WithSize(24, 80))

	if reply := term.DECRQM(2026, true); reply != "\x1b[?2026;2$y" {
		t.Errorf("expected 2026 reset, got %q", reply)
	}
	term.BeginSynchronizedUpdate(0)
	if reply := term.DECRQM(2026, true); reply != "\x1b[?2026;1$y" {
		t.Errorf("expected 2026 set, got %q", reply)
	}
	term.EndSynchronizedUpdate()
	if reply := term.DECRQM(2026, true); reply != "\x1b[?2026;2$y" {
		t.Errorf("expected 2026 reset after end, got %q", reply)
	}
}

func TestDECRQMANSIFormat(t *testing.T) {
	term := New(WithSize(24, 80))

	// Non-private queries omit the '?' marker.
	if reply := term.DECRQM(9999, false); reply != "\x1b[9999;0$y" {
		t.Errorf("expected ANSI-form reply, got %q", reply)
	}
}
