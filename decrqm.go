package headlessterm

import "fmt"

// ModeReportStatus is the DECRQM reply value for a queried mode.
type ModeReportStatus int

const (
	ModeReportNotRecognized ModeReportStatus = 0
	ModeReportSet           ModeReportStatus = 1
	ModeReportReset         ModeReportStatus = 2
	ModeReportPermanentSet  ModeReportStatus = 3
	ModeReportPermanentReset ModeReportStatus = 4
)

// decPrivateModeStatus maps a DEC private mode number to its current status.
// Known modes are reported as set or reset from the live terminal state;
// unlisted modes report not recognized. No mode is reported as
// permanently set or permanently reset.
func (t *Terminal) decPrivateModeStatus(mode int) ModeReportStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	live := func(bit TerminalMode) ModeReportStatus {
		if t.modes&bit != 0 {
			return ModeReportSet
		}
		return ModeReportReset
	}

	switch mode {
	case 1: // DECCKM cursor keys
		return live(ModeCursorKeys)
	case 3: // 132/80 columns
		return live(ModeColumnMode)
	case 6: // DECOM origin mode
		return live(ModeOrigin)
	case 7: // DECAWM autowrap
		return live(ModeLineWrap)
	case 9, 1000, 1002, 1003: // mouse reporting variants
		switch mode {
		case 1000:
			return live(ModeReportMouseClicks)
		case 1002:
			return live(ModeReportCellMouseMotion)
		case 1003:
			return live(ModeReportAllMouseMotion)
		}
		return ModeReportReset
	case 12: // blinking cursor
		return live(ModeBlinkingCursor)
	case 25: // DECTCEM show cursor
		return live(ModeShowCursor)
	case 47, 1047, 1049: // alt screen variants
		return live(ModeSwapScreenAndSetRestoreCursor)
	case 1004: // focus events
		return live(ModeReportFocusInOut)
	case 1005:
		return live(ModeUTF8Mouse)
	case 1006:
		return live(ModeSGRMouse)
	case 1007:
		return live(ModeAlternateScroll)
	case 1042:
		return live(ModeUrgencyHints)
	case 2004: // bracketed paste
		return live(ModeBracketedPaste)
	case 66: // DECNKM application keypad
		return live(ModeKeypadApplication)
	case 2026: // synchronized update
		if t.syncUpdateDepth > 0 {
			return ModeReportSet
		}
		return ModeReportReset
	case 69: // DECLRMM left/right margins
		if t.leftRightMarginMode {
			return ModeReportSet
		}
		return ModeReportReset
	default:
		return ModeReportNotRecognized
	}
}

// ansiModeStatus maps an ANSI (SM/RM) mode number to its current status;
// the numbering is disjoint from the DEC private space.
func (t *Terminal) ansiModeStatus(mode int) ModeReportStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch mode {
	case 4: // IRM insert mode
		if t.modes&ModeInsert != 0 {
			return ModeReportSet
		}
		return ModeReportReset
	case 20: // LNM newline mode
		if t.modes&ModeLineFeedNewLine != 0 {
			return ModeReportSet
		}
		return ModeReportReset
	default:
		return ModeReportNotRecognized
	}
}

// DECRQM builds the CSI reply for a mode-query request. private selects
// between ANSI-standard modes (CSI Ps $ p) and DEC private modes
// (CSI ? Ps $ p).
func (t *Terminal) DECRQM(mode int, private bool) string {
	if private {
		return fmt.Sprintf("\x1b[?%d;%d$y", mode, t.decPrivateModeStatus(mode))
	}
	return fmt.Sprintf("\x1b[%d;%d$y", mode, t.ansiModeStatus(mode))
}
