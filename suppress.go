package headlessterm

import (
	"image/color"

	"github.com/danielgatis/go-ansicode"
)

// SuppressionMiddleware builds a Middleware that drops the control
// functions named by the configuration's suppress_* lists. Sequences are
// still fully parsed by the decoder; only their dispatch is swallowed.
//
// Granularity follows the decoder's handler surface: an SGR code
// suppresses the attribute kind it selects (38 covers every foreground
// form, 48 every background form), a DEC number suppresses both the set
// and reset direction of that private mode, and an OSC number detaches
// the handler that OSC feeds.
func SuppressionMiddleware(cfg *Configuration) *Middleware {
	sgr := intSet(cfg.SuppressSGR)
	dec := intSet(cfg.SuppressDEC)
	osc := intSet(cfg.SuppressOSC)

	m := &Middleware{}

	if len(sgr) > 0 {
		m.SetTerminalCharAttribute = func(attr ansicode.TerminalCharAttribute, next func(ansicode.TerminalCharAttribute)) {
			if sgr[sgrCodeOf(attr)] {
				return
			}
			next(attr)
		}
	}

	if len(dec) > 0 {
		drop := func(mode ansicode.TerminalMode, next func(ansicode.TerminalMode)) {
			if dec[decModeNumber(mode)] {
				return
			}
			next(mode)
		}
		m.SetMode = drop
		m.UnsetMode = drop
	}

	if len(osc) > 0 {
		if osc[0] || osc[2] {
			m.SetTitle = func(title string, next func(string)) {}
		}
		if osc[4] {
			m.SetColor = func(index int, c color.Color, next func(int, color.Color)) {}
		}
		if osc[7] {
			m.SetWorkingDirectory = func(uri string, next func(string)) {}
		}
		if osc[8] {
			m.SetHyperlink = func(hyperlink *ansicode.Hyperlink, next func(*ansicode.Hyperlink)) {}
		}
		if osc[52] {
			m.ClipboardLoad = func(clipboard byte, terminator string, next func(byte, string)) {}
			m.ClipboardStore = func(clipboard byte, data []byte, next func(byte, []byte)) {}
		}
		if osc[99] {
			m.DesktopNotification = func(payload *NotificationPayload, next func(*NotificationPayload)) {}
		}
	}

	return m
}

func intSet(codes []int) map[int]bool {
	if len(codes) == 0 {
		return nil
	}
	set := make(map[int]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}

// sgrCodeOf maps an attribute kind back to the SGR parameter that selects
// it; the underline styles all answer to 4, color forms to 38/48/58.
func sgrCodeOf(attr ansicode.TerminalCharAttribute) int {
	switch attr.Attr {
	case ansicode.CharAttributeReset:
		return 0
	case ansicode.CharAttributeBold:
		return 1
	case ansicode.CharAttributeDim:
		return 2
	case ansicode.CharAttributeItalic:
		return 3
	case ansicode.CharAttributeUnderline,
		ansicode.CharAttributeDoubleUnderline,
		ansicode.CharAttributeCurlyUnderline,
		ansicode.CharAttributeDottedUnderline,
		ansicode.CharAttributeDashedUnderline:
		return 4
	case ansicode.CharAttributeBlinkSlow:
		return 5
	case ansicode.CharAttributeBlinkFast:
		return 6
	case ansicode.CharAttributeReverse:
		return 7
	case ansicode.CharAttributeHidden:
		return 8
	case ansicode.CharAttributeStrike:
		return 9
	case ansicode.CharAttributeCancelBold, ansicode.CharAttributeCancelBoldDim:
		return 22
	case ansicode.CharAttributeCancelItalic:
		return 23
	case ansicode.CharAttributeCancelUnderline:
		return 24
	case ansicode.CharAttributeCancelBlink:
		return 25
	case ansicode.CharAttributeCancelReverse:
		return 27
	case ansicode.CharAttributeCancelHidden:
		return 28
	case ansicode.CharAttributeCancelStrike:
		return 29
	case ansicode.CharAttributeForeground:
		return 38
	case ansicode.CharAttributeBackground:
		return 48
	case ansicode.CharAttributeUnderlineColor:
		return 58
	default:
		return -1
	}
}

// decModeNumber maps the decoder's mode enum back to its DECSET/SM number.
func decModeNumber(mode ansicode.TerminalMode) int {
	switch mode {
	case ansicode.TerminalModeCursorKeys:
		return 1
	case ansicode.TerminalModeColumnMode:
		return 3
	case ansicode.TerminalModeInsert:
		return 4
	case ansicode.TerminalModeOrigin:
		return 6
	case ansicode.TerminalModeLineWrap:
		return 7
	case ansicode.TerminalModeBlinkingCursor:
		return 12
	case ansicode.TerminalModeLineFeedNewLine:
		return 20
	case ansicode.TerminalModeShowCursor:
		return 25
	case ansicode.TerminalModeReportMouseClicks:
		return 1000
	case ansicode.TerminalModeReportCellMouseMotion:
		return 1002
	case ansicode.TerminalModeReportAllMouseMotion:
		return 1003
	case ansicode.TerminalModeReportFocusInOut:
		return 1004
	case ansicode.TerminalModeUTF8Mouse:
		return 1005
	case ansicode.TerminalModeSGRMouse:
		return 1006
	case ansicode.TerminalModeAlternateScroll:
		return 1007
	case ansicode.TerminalModeUrgencyHints:
		return 1042
	case ansicode.TerminalModeSwapScreenAndSetRestoreCursor:
		return 1049
	case ansicode.TerminalModeBracketedPaste:
		return 2004
	default:
		return -1
	}
}
