package headlessterm

import "image/color"

// attrStackCapacity bounds XTPUSHSGR/XTPOPSGR and XTPUSHCOLORS/XTPOPCOLORS;
// pushing past it drops the oldest entry (FIFO), matching xterm.
const attrStackCapacity = 10

// sgrStackEntry snapshots the subset of the SGR-derived template state a
// given push bitmask asked to save.
type sgrStackEntry struct {
	mask  SGRAttrMask
	templ CellTemplate
}

// SGRAttrMask selects which groups of SGR attributes XTPUSHSGR saves and
// XTPOPSGR restores, matching xterm's bitmask semantics.
type SGRAttrMask uint16

const (
	SGRAttrBold SGRAttrMask = 1 << iota
	SGRAttrUnderline
	SGRAttrBlink
	SGRAttrInverse
	SGRAttrItalic
	SGRAttrFgColor
	SGRAttrBgColor
	SGRAttrAll SGRAttrMask = 0xFFFF
)

var sgrMaskFlags = map[SGRAttrMask]CellFlags{
	SGRAttrBold:      CellFlagBold | CellFlagDim,
	SGRAttrUnderline: CellFlagUnderline | CellFlagDoubleUnderline | CellFlagCurlyUnderline | CellFlagDottedUnderline | CellFlagDashedUnderline,
	SGRAttrBlink:     CellFlagBlinkSlow | CellFlagBlinkFast,
	SGRAttrInverse:   CellFlagReverse,
	SGRAttrItalic:    CellFlagItalic,
}

// PushSGR implements XTPUSHSGR: saves the template attributes selected by
// mask onto a bounded stack.
func (t *Terminal) PushSGR(mask SGRAttrMask) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if mask == 0 {
		mask = SGRAttrAll
	}
	entry := sgrStackEntry{mask: mask, templ: t.template}
	t.sgrStack = append(t.sgrStack, entry)
	if len(t.sgrStack) > attrStackCapacity {
		t.sgrStack = t.sgrStack[1:]
	}
}

// PopSGR implements XTPOPSGR: restores the most recently pushed attributes
// limited to the fields named by the saved mask.
func (t *Terminal) PopSGR() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.sgrStack) == 0 {
		return
	}
	entry := t.sgrStack[len(t.sgrStack)-1]
	t.sgrStack = t.sgrStack[:len(t.sgrStack)-1]

	if entry.mask == SGRAttrAll {
		t.template = entry.templ
		return
	}
	for bit, flags := range sgrMaskFlags {
		if entry.mask&bit == 0 {
			continue
		}
		t.template.Flags &^= flags
		t.template.Flags |= entry.templ.Flags & flags
	}
	if entry.mask&SGRAttrFgColor != 0 {
		t.template.Fg = entry.templ.Fg
	}
	if entry.mask&SGRAttrBgColor != 0 {
		t.template.Bg = entry.templ.Bg
	}
}

// PushColors implements XTPUSHCOLORS: saves the active 256-color palette
// onto a bounded stack.
func (t *Terminal) PushColors() {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := make(map[int]color.Color, len(t.colors))
	for k, v := range t.colors {
		snap[k] = v
	}
	t.colorStack = append(t.colorStack, snap)
	if len(t.colorStack) > attrStackCapacity {
		t.colorStack = t.colorStack[1:]
	}
}

// PopColors implements XTPOPCOLORS: restores the most recently pushed
// palette. A no-op if nothing was pushed or nothing changed since.
func (t *Terminal) PopColors() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.colorStack) == 0 {
		return
	}
	snap := t.colorStack[len(t.colorStack)-1]
	t.colorStack = t.colorStack[:len(t.colorStack)-1]
	t.colors = snap
}

// ReportColors implements XTREPORTCOLORS: the number of entries currently
// saved on the color stack.
func (t *Terminal) ReportColors() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.colorStack)
}
