package headlessterm

import (
	"fmt"
	"strconv"
	"strings"
)

// Key identifies a physical key independent of modifiers, matching the
// host's key-down event (spec §6 Keyboard input: "{ vk, scancode, mods,
// repeat, extended }" — this core only needs the logical key name).
type Key int

const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyBackspace
	KeyTab
	KeyEnter
	KeyEscape
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyKeypad0
	KeyKeypadEnter
	KeyChar // a plain printable key; Rune carries the value
)

// KeyEvent is a single key-down (or key-up, for Alt-code release) reported
// by the host.
type KeyEvent struct {
	Key    Key
	Rune   rune
	Shift  bool
	Ctrl   bool
	Alt    bool
	Super  bool
	Repeat bool
	KeyUp  bool
}

// ModifyOtherKeysFormat selects the wire format xterm's modifyOtherKeys
// uses once it decides a key needs modifier encoding.
type ModifyOtherKeysFormat int

const (
	FormatOtherKeysCSI27 ModifyOtherKeysFormat = iota // CSI 27;N;X~
	FormatOtherKeysCSIu                               // CSI X;N u
)

// KeyBinding is one parsed entry of the user-defined key bindings
// mini-language (spec §6, mintty's child.c/wininput.c grammar):
// "[mod+][KP_]<keyname>" mapped to a literal string, a control-letter
// escape, a CSI-tilde number, or a named function. Shell-command bindings
// are represented by ShellCommand and left for the host to execute, since
// this core does not own process spawn.
type KeyBinding struct {
	Mods         ModMask
	Keypad       bool
	KeyName      string
	Literal      string
	ControlLetter byte
	CSINumber    int
	Function     string
	ShellCommand string
}

// ModMask is a bitmask of modifier keys a binding requires.
type ModMask uint8

const (
	ModShift ModMask = 1 << iota
	ModAlt
	ModCtrl
	ModSuper
)

// composeEntry is one node of the dead-key compose trie.
type composeEntry struct {
	children map[rune]*composeEntry
	result   rune
	terminal bool
}

// Keyboard turns key events into byte sequences for the child, honoring
// the terminal's cursor-key/keypad/modifyOtherKeys modes, a compose/dead-key
// trie, user-defined bindings, and Alt-code numeric input.
type Keyboard struct {
	Format        ModifyOtherKeysFormat
	BackspaceSendsBS bool
	DeleteSendsDel   bool

	bindings    []KeyBinding
	compose     *composeEntry
	composeNode *composeEntry // in-progress dead-key walk, nil when idle

	altCodeActive bool
	altCodeValue  int
	altCodeHex    bool
}

// NewKeyboard creates a dispatcher seeded with the common Latin-1 dead-key
// combinations mintty ships by default (acute/grave/circumflex/tilde/
// diaeresis/cedilla). Hosts extend the table via AddCompose.
func NewKeyboard() *Keyboard {
	k := &Keyboard{
		Format:           FormatOtherKeysCSI27,
		BackspaceSendsBS: false,
		DeleteSendsDel:   true,
		compose:          &composeEntry{children: map[rune]*composeEntry{}},
	}
	seed := []struct {
		seq    string
		result rune
	}{
		{"´a", 'á'}, {"´e", 'é'}, {"´i", 'í'}, {"´o", 'ó'}, {"´u", 'ú'},
		{"`a", 'à'}, {"`e", 'è'}, {"`i", 'ì'}, {"`o", 'ò'}, {"`u", 'ù'},
		{"^a", 'â'}, {"^e", 'ê'}, {"^i", 'î'}, {"^o", 'ô'}, {"^u", 'û'},
		{"~a", 'ã'}, {"~n", 'ñ'}, {"~o", 'õ'},
		{"¨a", 'ä'}, {"¨e", 'ë'}, {"¨i", 'ï'}, {"¨o", 'ö'}, {"¨u", 'ü'},
		{",c", 'ç'},
	}
	for _, s := range seed {
		k.AddCompose(s.seq, s.result)
	}
	return k
}

// AddCompose registers a dead-key sequence (each rune in seq consumed in
// order) that produces result once complete.
func (k *Keyboard) AddCompose(seq string, result rune) {
	node := k.compose
	runes := []rune(seq)
	for i, r := range runes {
		next, ok := node.children[r]
		if !ok {
			next = &composeEntry{children: map[rune]*composeEntry{}}
			node.children[r] = next
		}
		node = next
		if i == len(runes)-1 {
			node.result = result
			node.terminal = true
		}
	}
}

// Compose feeds one rune of a dead-key sequence. pending reports that the
// trie has a deeper match and the caller should hold the rune; ok reports
// a completed sequence with the composed result. A rune that matches
// nothing resets the walk and composes nothing — the host then emits the
// held runes literally.
func (k *Keyboard) Compose(r rune) (out rune, ok bool, pending bool) {
	node := k.composeNode
	if node == nil {
		node = k.compose
	}
	next, found := node.children[r]
	if !found {
		k.composeNode = nil
		return 0, false, false
	}
	if next.terminal {
		k.composeNode = nil
		return next.result, true, false
	}
	k.composeNode = next
	return 0, false, true
}

// ComposeRune runs the terminal keyboard's dead-key composition for one
// rune; see Keyboard.Compose.
func (t *Terminal) ComposeRune(r rune) (rune, bool, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.kbd == nil {
		return 0, false, false
	}
	return t.kbd.Compose(r)
}

// DispatchKey converts a key event into the byte sequence to write to the
// child, consulting user bindings first, then the default mode-aware
// table. ok is false when the key has no encoding (e.g. KeyUnknown) or no
// keyboard is attached; an Alt+digit of Alt-code input is consumed with an
// empty string and ok true. Dead-key composition is not consulted here
// (see ComposeRune).
func (t *Terminal) DispatchKey(ev KeyEvent) (out string, ok bool) {
	t.mu.RLock()
	kbd := t.kbd
	appCursor := t.modes&ModeCursorKeys != 0
	appKeypad := t.modes&ModeKeypadApplication != 0
	modify := t.modifyOtherKeys
	t.mu.RUnlock()

	if kbd == nil {
		return "", false
	}

	if b, handled := matchBindings(kbd.bindings, ev); handled {
		return b, true
	}

	if ev.Alt && ev.Key == KeyChar && ev.Rune >= '0' && ev.Rune <= '9' {
		return "", handleAltCodeDigit(kbd, ev)
	}

	mods := modMaskOf(ev)

	switch ev.Key {
	case KeyUp, KeyDown, KeyLeft, KeyRight:
		return encodeCursorKey(ev.Key, appCursor, mods), true
	case KeyHome, KeyEnd:
		return encodeHomeEnd(ev.Key, appCursor, mods), true
	case KeyBackspace:
		if kbd.BackspaceSendsBS {
			return "\x08", true
		}
		return "\x7f", true
	case KeyDelete:
		if kbd.DeleteSendsDel {
			return "\x7f", true
		}
		return "\x1b[3~", true
	case KeyTab:
		if ev.Shift {
			return "\x1b[Z", true
		}
		return "\t", true
	case KeyEnter:
		return "\r", true
	case KeyEscape:
		return "\x1b", true
	case KeyInsert:
		return "\x1b[2~", true
	case KeyPageUp:
		return "\x1b[5~", true
	case KeyPageDown:
		return "\x1b[6~", true
	case KeyF1, KeyF2, KeyF3, KeyF4, KeyF5, KeyF6, KeyF7, KeyF8, KeyF9, KeyF10, KeyF11, KeyF12:
		return encodeFunctionKey(ev.Key, mods), true
	case KeyChar:
		if ev.Ctrl && ev.Rune >= '@' && ev.Rune <= '_' {
			return string(rune(ev.Rune - '@')), true
		}
		if mods != 0 && modify != 0 {
			return encodeModifyOtherKeys(kbd.Format, ev.Rune, mods), true
		}
		return string(ev.Rune), true
	case KeyKeypadEnter:
		if appKeypad {
			return "\x1bOM", true
		}
		return "\r", true
	}
	return "", false
}

func modMaskOf(ev KeyEvent) ModMask {
	var m ModMask
	if ev.Shift {
		m |= ModShift
	}
	if ev.Alt {
		m |= ModAlt
	}
	if ev.Ctrl {
		m |= ModCtrl
	}
	if ev.Super {
		m |= ModSuper
	}
	return m
}

// csiModifierParam is xterm's 1+bitmask encoding of a modifier set.
func csiModifierParam(m ModMask) int {
	p := 1
	if m&ModShift != 0 {
		p += 1
	}
	if m&ModAlt != 0 {
		p += 2
	}
	if m&ModCtrl != 0 {
		p += 4
	}
	if m&ModSuper != 0 {
		p += 8
	}
	return p
}

func encodeCursorKey(k Key, appCursor bool, mods ModMask) string {
	final := map[Key]byte{KeyUp: 'A', KeyDown: 'B', KeyRight: 'C', KeyLeft: 'D'}[k]
	if mods != 0 {
		return fmt.Sprintf("\x1b[1;%d%c", csiModifierParam(mods), final)
	}
	if appCursor {
		return fmt.Sprintf("\x1bO%c", final)
	}
	return fmt.Sprintf("\x1b[%c", final)
}

func encodeHomeEnd(k Key, appCursor bool, mods ModMask) string {
	final := byte('H')
	if k == KeyEnd {
		final = 'F'
	}
	if mods != 0 {
		return fmt.Sprintf("\x1b[1;%d%c", csiModifierParam(mods), final)
	}
	if appCursor {
		return fmt.Sprintf("\x1bO%c", final)
	}
	return fmt.Sprintf("\x1b[%c", final)
}

var functionKeyTilde = map[Key]int{
	KeyF1: 11, KeyF2: 12, KeyF3: 13, KeyF4: 14, KeyF5: 15,
	KeyF6: 17, KeyF7: 18, KeyF8: 19, KeyF9: 20, KeyF10: 21,
	KeyF11: 23, KeyF12: 24,
}

func encodeFunctionKey(k Key, mods ModMask) string {
	n := functionKeyTilde[k]
	if mods != 0 {
		return fmt.Sprintf("\x1b[%d;%d~", n, csiModifierParam(mods))
	}
	return fmt.Sprintf("\x1b[%d~", n)
}

func encodeModifyOtherKeys(format ModifyOtherKeysFormat, r rune, mods ModMask) string {
	if format == FormatOtherKeysCSIu {
		return fmt.Sprintf("\x1b[%d;%du", r, csiModifierParam(mods))
	}
	return fmt.Sprintf("\x1b[27;%d;%d~", csiModifierParam(mods), r)
}

func matchBindings(bindings []KeyBinding, ev KeyEvent) (string, bool) {
	want := modMaskOf(ev)
	for _, b := range bindings {
		if b.Mods != want {
			continue
		}
		if ev.Key == KeyChar && !strings.EqualFold(b.KeyName, string(ev.Rune)) {
			continue
		}
		switch {
		case b.Literal != "":
			return b.Literal, true
		case b.ControlLetter != 0:
			return string(rune(b.ControlLetter - '@')), true
		case b.CSINumber != 0:
			return fmt.Sprintf("\x1b[%d~", b.CSINumber), true
		}
	}
	return "", false
}

func handleAltCodeDigit(k *Keyboard, ev KeyEvent) bool {
	if !k.altCodeActive {
		k.altCodeActive = true
		k.altCodeValue = 0
	}
	k.altCodeValue = k.altCodeValue*10 + int(ev.Rune-'0')
	return true
}

// FinishAltCode completes Alt-code numeric input on Alt key release,
// returning the decimal value typed as one code point, UTF-8 encoded.
func (t *Terminal) FinishAltCode() (string, bool) {
	t.mu.Lock()
	kbd := t.kbd
	t.mu.Unlock()
	if kbd == nil || !kbd.altCodeActive {
		return "", false
	}
	v := kbd.altCodeValue
	kbd.altCodeActive = false
	kbd.altCodeValue = 0
	if v <= 0 {
		return "", false
	}
	return string(rune(v)), true
}

// ParseKeyBindings parses mintty's ";"-separated user key-binding
// mini-language: "[mod+][KP_]<keyname>:action" records, where action is a
// quoted literal string, "^X" control letter, a backtick-delimited shell
// command (returned for the host to execute, since this core does not own
// process spawn), a bare number (CSI-tilde), or a bare identifier (named
// function).
func ParseKeyBindings(spec string) ([]KeyBinding, error) {
	var out []KeyBinding
	for _, rec := range strings.Split(spec, ";") {
		rec = strings.TrimSpace(rec)
		if rec == "" {
			continue
		}
		parts := strings.SplitN(rec, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("keybinding %q: missing ':'", rec)
		}
		keyPart, action := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

		var b KeyBinding
		for _, tok := range strings.Split(keyPart, "+") {
			switch strings.ToLower(tok) {
			case "shift":
				b.Mods |= ModShift
			case "alt":
				b.Mods |= ModAlt
			case "ctrl":
				b.Mods |= ModCtrl
			case "super", "win":
				b.Mods |= ModSuper
			case "kp_", "kp":
				b.Keypad = true
			default:
				b.KeyName = tok
			}
		}

		switch {
		case strings.HasPrefix(action, "\"") && strings.HasSuffix(action, "\"") && len(action) >= 2:
			b.Literal = action[1 : len(action)-1]
		case strings.HasPrefix(action, "^") && len(action) == 2:
			b.ControlLetter = action[1]
		case strings.HasPrefix(action, "`") && strings.HasSuffix(action, "`") && len(action) >= 2:
			b.ShellCommand = action[1 : len(action)-1]
		default:
			if n, err := strconv.Atoi(action); err == nil {
				b.CSINumber = n
			} else {
				b.Function = action
			}
		}
		out = append(out, b)
	}
	return out, nil
}

// SetKeyBindings installs the parsed user-defined key bindings, consulted
// before the default dispatch table.
func (t *Terminal) SetKeyBindings(bindings []KeyBinding) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.kbd == nil {
		t.kbd = NewKeyboard()
	}
	t.kbd.bindings = bindings
}
