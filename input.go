package vtcore

import (
	"fmt"
	"strings"
)

// Key identifies a non-printable key a UI layer can report to [EncodeKey].
// Printable characters are sent through [EncodeRune] instead.
type Key int

const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
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
)

// Modifiers is a bitmask of held modifier keys, reported alongside a Key or rune.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModAlt
	ModCtrl
	ModMeta
)

// MouseButton identifies which button a mouse report concerns.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonMiddle
	MouseButtonRight
	MouseButtonNone // motion with no button held
	MouseButtonWheelUp
	MouseButtonWheelDown
)

// MouseEventKind distinguishes press/release/motion for mouse reporting.
type MouseEventKind int

const (
	MousePress MouseEventKind = iota
	MouseRelease
	MouseMotion
)

// xtermFunctionKeys maps the non-arrow special keys to their CSI ~ final or
// SS3 sequence, matched against xterm's default table.
var xtermFunctionKeys = map[Key]string{
	KeyHome:     "\x1b[H",
	KeyEnd:      "\x1b[F",
	KeyInsert:   "\x1b[2~",
	KeyDelete:   "\x1b[3~",
	KeyPageUp:   "\x1b[5~",
	KeyPageDown: "\x1b[6~",
	KeyF1:       "\x1bOP",
	KeyF2:       "\x1bOQ",
	KeyF3:       "\x1bOR",
	KeyF4:       "\x1bOS",
	KeyF5:       "\x1b[15~",
	KeyF6:       "\x1b[17~",
	KeyF7:       "\x1b[18~",
	KeyF8:       "\x1b[19~",
	KeyF9:       "\x1b[20~",
	KeyF10:      "\x1b[21~",
	KeyF11:      "\x1b[23~",
	KeyF12:      "\x1b[24~",
}

// arrowFinals gives the CSI final byte for each arrow key, shared between the
// normal ("CSI <final>") and application cursor key ("SS3 <final>") forms.
var arrowFinals = map[Key]byte{
	KeyUp:    'A',
	KeyDown:  'B',
	KeyRight: 'C',
	KeyLeft:  'D',
}

// EncodeKey translates a non-printable key press into the byte sequence the
// child process expects, honoring DECCKM (application cursor keys, mode 1)
// and the modifier-parameter convention ("CSI 1;<n><final>").
func (t *Terminal) EncodeKey(key Key, mods Modifiers) []byte {
	t.mu.RLock()
	appCursor := t.modes&ModeCursorKeys != 0
	t.mu.RUnlock()

	if final, ok := arrowFinals[key]; ok {
		if mods != 0 {
			return []byte(fmt.Sprintf("\x1b[1;%d%c", modifierParam(mods), final))
		}
		if appCursor {
			return []byte{0x1b, 'O', final}
		}
		return []byte{0x1b, '[', final}
	}

	switch key {
	case KeyBackspace:
		return []byte{0x7f}
	case KeyTab:
		if mods&ModShift != 0 {
			return []byte("\x1b[Z")
		}
		return []byte{'\t'}
	case KeyEnter:
		return []byte{'\r'}
	case KeyEscape:
		return []byte{0x1b}
	}

	if seq, ok := xtermFunctionKeys[key]; ok {
		if mods != 0 && strings.HasPrefix(seq, "\x1b[") && strings.HasSuffix(seq, "~") {
			body := seq[2 : len(seq)-1]
			return []byte(fmt.Sprintf("\x1b[%s;%d~", body, modifierParam(mods)))
		}
		return []byte(seq)
	}

	return nil
}

// modifierParam resolves the xterm modifier parameter: 1 + sum of bit values
// (shift=1, alt=2, ctrl=4), offset by 1 so "no modifiers" is never emitted
// through this path (callers only reach it when mods != 0).
func modifierParam(mods Modifiers) int {
	n := 1
	if mods&ModShift != 0 {
		n += 1
	}
	if mods&ModAlt != 0 {
		n += 2
	}
	if mods&ModCtrl != 0 {
		n += 4
	}
	return n
}

// EncodeRune translates a printable character into terminal input bytes,
// applying Ctrl and Alt transformations before UTF-8 encoding.
func (t *Terminal) EncodeRune(r rune, mods Modifiers) []byte {
	if mods&ModCtrl != 0 {
		if b, ok := ctrlRune(r); ok {
			if mods&ModAlt != 0 {
				return []byte{0x1b, b}
			}
			return []byte{b}
		}
	}

	buf := make([]byte, 0, 5)
	if mods&ModAlt != 0 {
		buf = append(buf, 0x1b)
	}
	return append(buf, []byte(string(r))...)
}

// ctrlRune maps a rune to its control-character byte per the standard
// Ctrl+letter convention (Ctrl+A=0x01 .. Ctrl+Z=0x1a), plus the handful of
// punctuation keys xterm also treats as control combinations.
func ctrlRune(r rune) (byte, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return byte(r-'a') + 1, true
	case r >= 'A' && r <= 'Z':
		return byte(r-'A') + 1, true
	case r == ' ':
		return 0, true
	case r == '[':
		return 0x1b, true
	case r == '\\':
		return 0x1c, true
	case r == ']':
		return 0x1d, true
	case r == '^':
		return 0x1e, true
	case r == '_':
		return 0x1f, true
	}
	return 0, false
}

// EncodePaste wraps pasted text in bracketed-paste markers when mode 2004 is
// enabled, stripping any embedded end-of-paste marker to prevent a malicious
// clipboard payload from injecting further input.
func (t *Terminal) EncodePaste(data []byte) []byte {
	t.mu.RLock()
	bracketed := t.modes&ModeBracketedPaste != 0
	t.mu.RUnlock()

	if !bracketed {
		return data
	}

	sanitized := strings.ReplaceAll(string(data), "\x1b[201~", "")

	out := make([]byte, 0, len(sanitized)+12)
	out = append(out, "\x1b[200~"...)
	out = append(out, sanitized...)
	out = append(out, "\x1b[201~"...)
	return out
}

// EncodeFocus reports a focus gained/lost event (mode 1004), or nil if focus
// reporting isn't enabled.
func (t *Terminal) EncodeFocus(gained bool) []byte {
	t.mu.RLock()
	enabled := t.modes&ModeReportFocusInOut != 0
	t.mu.RUnlock()

	if !enabled {
		return nil
	}
	if gained {
		return []byte("\x1b[I")
	}
	return []byte("\x1b[O")
}

// EncodeMouse reports a mouse event under whichever of the 1000/1002/1003
// mouse-tracking modes is active, using the SGR (1006) extended coordinate
// form when enabled, otherwise the classic X10 form with 1-based,
// offset-by-32 coordinates.
func (t *Terminal) EncodeMouse(row, col int, button MouseButton, mods Modifiers, kind MouseEventKind) []byte {
	t.mu.RLock()
	clicks := t.modes&ModeReportMouseClicks != 0
	cellMotion := t.modes&ModeReportCellMouseMotion != 0
	allMotion := t.modes&ModeReportAllMouseMotion != 0
	sgr := t.modes&ModeSGRMouse != 0
	t.mu.RUnlock()

	if !clicks && !cellMotion && !allMotion {
		return nil
	}
	if kind == MouseMotion {
		if !allMotion && !(cellMotion && button != MouseButtonNone) {
			return nil
		}
	}

	cb := mouseButtonCode(button, mods, kind)

	if sgr {
		final := byte('M')
		if kind == MouseRelease {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", cb, col+1, row+1, final))
	}

	// Classic X10 form: release is always reported as button code 3, and
	// coordinates are clamped so the offset-by-32 encoding stays printable.
	if kind == MouseRelease {
		cb = 3
	}
	cx := clampMouseCoord(col+1) + 32
	cy := clampMouseCoord(row+1) + 32
	return []byte{0x1b, '[', 'M', byte(cb + 32), byte(cx), byte(cy)}
}

func clampMouseCoord(n int) int {
	if n > 223 {
		return 223
	}
	return n
}

func mouseButtonCode(button MouseButton, mods Modifiers, kind MouseEventKind) int {
	var cb int
	switch button {
	case MouseButtonLeft:
		cb = 0
	case MouseButtonMiddle:
		cb = 1
	case MouseButtonRight:
		cb = 2
	case MouseButtonNone:
		cb = 3
	case MouseButtonWheelUp:
		cb = 64
	case MouseButtonWheelDown:
		cb = 65
	}
	if kind == MouseMotion {
		cb |= 32
	}
	if mods&ModShift != 0 {
		cb |= 4
	}
	if mods&ModAlt != 0 {
		cb |= 8
	}
	if mods&ModCtrl != 0 {
		cb |= 16
	}
	return cb
}
