package vtcore

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// Ensure Terminal satisfies the byte parser's callback interface.
var _ Sink = (*Terminal)(nil)

// Print handles a printable character assembled by the parser in the ground state.
func (t *Terminal) Print(r rune) {
	t.Input(r)
}

// Execute handles a C0/C1 control code.
func (t *Terminal) Execute(b byte) {
	switch b {
	case 0x07: // BEL
		t.Bell()
	case 0x08: // BS
		t.Backspace()
	case 0x09: // HT
		t.Tab(1)
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		t.LineFeed()
	case 0x0D: // CR
		t.CarriageReturn()
	case 0x0E: // SO - invoke G1 into GL
		t.SetActiveCharset(1)
	case 0x0F: // SI - invoke G0 into GL
		t.SetActiveCharset(0)
	case 0x84: // IND (8-bit)
		t.LineFeed()
	case 0x85: // NEL (8-bit)
		t.LineFeed()
		t.CarriageReturn()
	case 0x88: // HTS (8-bit)
		t.HorizontalTabSet()
	case 0x8D: // RI (8-bit)
		t.ReverseIndex()
	}
}

// EscDispatch handles a two-character (or intermediate-prefixed) escape sequence.
func (t *Terminal) EscDispatch(final byte, intermediates []byte) {
	if len(intermediates) > 0 {
		var index CharsetIndex
		switch intermediates[0] {
		case '(':
			index = CharsetIndexG0
		case ')':
			index = CharsetIndexG1
		case '*':
			index = CharsetIndexG2
		case '+':
			index = CharsetIndexG3
		case '#':
			if final == '8' {
				t.Decaln()
			}
			return
		default:
			return
		}

		charset := charsetFromFinal(final)
		if t.hasDrcsBank(final) {
			charset = CharsetDRCS
		}
		t.ConfigureCharset(index, charset)
		// A DRCS designation names the bank to pull glyphs from; the final
		// byte is the same Dscs the DECDLD load was keyed by.
		if charset == CharsetDRCS {
			t.setCharsetDscs(index, final)
		} else {
			t.setCharsetDscs(index, 0)
		}
		return
	}

	switch final {
	case 'D': // IND
		t.LineFeed()
	case 'E': // NEL
		t.LineFeed()
		t.CarriageReturn()
	case 'H': // HTS
		t.HorizontalTabSet()
	case 'M': // RI
		t.ReverseIndex()
	case 'N': // SS2
		t.SetSingleShift(2)
	case 'O': // SS3
		t.SetSingleShift(3)
	case 'n': // LS2
		t.SetActiveCharset(2)
	case 'o': // LS3
		t.SetActiveCharset(3)
	case '7': // DECSC
		t.SaveCursorPosition()
	case '8': // DECRC
		t.RestoreCursorPosition()
	case '=': // DECKPAM
		t.SetKeypadApplicationMode()
	case '>': // DECKPNM
		t.UnsetKeypadApplicationMode()
	case 'c': // RIS
		t.ResetState()
	default:
		t.unsupportedControls.Add(1)
	}
}

func charsetFromFinal(final byte) Charset {
	switch final {
	case '0':
		return CharsetLineDrawing
	case 'A':
		return CharsetUK
	case '{':
		return CharsetDRCS
	default:
		return CharsetASCII
	}
}

// CsiDispatch handles a complete CSI sequence.
func (t *Terminal) CsiDispatch(final byte, private byte, intermediates []byte, params *Params) {
	switch final {
	case 'A':
		t.MoveUp(paramOr(params, 0, 1))
	case 'B', 'e':
		t.MoveDown(paramOr(params, 0, 1))
	case 'C', 'a':
		t.MoveForward(paramOr(params, 0, 1))
	case 'D':
		t.MoveBackward(paramOr(params, 0, 1))
	case 'E':
		t.MoveDownCr(paramOr(params, 0, 1))
	case 'F':
		t.MoveUpCr(paramOr(params, 0, 1))
	case 'G', '`':
		t.GotoCol(paramOr(params, 0, 1) - 1)
	case 'H', 'f':
		row := paramOr(params, 0, 1) - 1
		col := paramOr(params, 1, 1) - 1
		t.Goto(row, col)
	case 'I':
		t.MoveForwardTabs(paramOr(params, 0, 1))
	case 'J':
		t.ClearScreen(ClearMode(paramOr(params, 0, 0)))
	case 'K':
		t.ClearLine(LineClearMode(paramOr(params, 0, 0)))
	case 'L':
		t.InsertBlankLines(paramOr(params, 0, 1))
	case 'M':
		t.DeleteLines(paramOr(params, 0, 1))
	case 'P':
		t.DeleteChars(paramOr(params, 0, 1))
	case 'S':
		t.ScrollUp(paramOr(params, 0, 1))
	case 'T':
		t.ScrollDown(paramOr(params, 0, 1))
	case 'X':
		t.EraseChars(paramOr(params, 0, 1))
	case 'Z':
		t.MoveBackwardTabs(paramOr(params, 0, 1))
	case 'd':
		t.GotoLine(paramOr(params, 0, 1) - 1)
	case 'g':
		// TBC wire values: 0 clears the stop at the cursor, 3 clears all.
		switch paramOr(params, 0, 0) {
		case 0:
			t.ClearTabs(TabulationClearModeCurrent)
		case 3:
			t.ClearTabs(TabulationClearModeAll)
		}
	case '@':
		t.InsertBlank(paramOr(params, 0, 1))
	case 'h':
		dispatchSetMode(t, private, params, true)
	case 'l':
		dispatchSetMode(t, private, params, false)
	case 'm':
		applySGRParams(params, t.SetTerminalCharAttribute)
	case 'n':
		// DEC-private DSR (e.g. ?6n) uses the same report codes as ANSI DSR.
		t.DeviceStatus(paramOr(params, 0, 0))
	case 'p':
		if len(intermediates) > 0 && intermediates[0] == '!' {
			t.SoftReset()
		}
	case 'q':
		if len(intermediates) > 0 && intermediates[0] == ' ' {
			t.SetCursorStyle(cursorStyleFromDECSCUSR(paramOr(params, 0, 0)))
		}
	case 'r':
		top := paramOr(params, 0, 1)
		bottom := paramOr(params, 1, 0)
		t.SetScrollingRegion(top, bottom)
	case 's':
		if private == 0 {
			t.SaveCursorPosition()
		}
	case 't':
		dispatchWindowManipulation(t, paramOr(params, 0, 0))
	case 'u':
		dispatchKittyKeyboard(t, private, params)
	case 'c':
		t.IdentifyTerminal(private)
	default:
		t.unsupportedControls.Add(1)
	}
}

// cursorStyleFromDECSCUSR maps a DECSCUSR (CSI Ps SP q) parameter to a cursor
// style; 0 and 1 both mean the default blinking block.
func cursorStyleFromDECSCUSR(ps int) CursorStyle {
	switch ps {
	case 2:
		return CursorStyleSteadyBlock
	case 3:
		return CursorStyleBlinkingUnderline
	case 4:
		return CursorStyleSteadyUnderline
	case 5:
		return CursorStyleBlinkingBar
	case 6:
		return CursorStyleSteadyBar
	default:
		return CursorStyleBlinkingBlock
	}
}

func paramOr(params *Params, i int, def int32) int {
	if params == nil {
		return int(def)
	}
	v := params.Get(i, def)
	if v == 0 && def != 0 {
		return int(def)
	}
	return int(v)
}

func dispatchSetMode(t *Terminal, private byte, params *Params, set bool) {
	for i := 0; i < params.Count(); i++ {
		code := params.Get(i, 0)
		mode, ok := wireModeFor(private, int(code))
		if !ok {
			t.unsupportedControls.Add(1)
			continue
		}
		if set {
			t.SetMode(mode)
		} else {
			t.UnsetMode(mode)
		}
	}
}

// wireModeFor maps a raw DEC-private (private == '?') or ANSI mode number to
// the corresponding WireMode, per the xterm/ECMA-48 mode tables.
func wireModeFor(private byte, code int) (WireMode, bool) {
	if private == '?' {
		switch code {
		case 1:
			return WireModeCursorKeys, true
		case 3:
			return WireModeColumnMode, true
		case 6:
			return WireModeOrigin, true
		case 7:
			return WireModeLineWrap, true
		case 80:
			return WireModeSixelDisplay, true
		case 12:
			return WireModeBlinkingCursor, true
		case 25:
			return WireModeShowCursor, true
		case 1000:
			return WireModeReportMouseClicks, true
		case 1002:
			return WireModeReportCellMouseMotion, true
		case 1003:
			return WireModeReportAllMouseMotion, true
		case 1004:
			return WireModeReportFocusInOut, true
		case 1005:
			return WireModeUTF8Mouse, true
		case 1006:
			return WireModeSGRMouse, true
		case 1007:
			return WireModeAlternateScroll, true
		case 1042:
			return WireModeUrgencyHints, true
		case 1047:
			return WireModeSwapScreen, true
		case 1048:
			return WireModeSaveRestoreCursor, true
		case 1049:
			return WireModeSwapScreenAndSetRestoreCursor, true
		case 2004:
			return WireModeBracketedPaste, true
		}
		return 0, false
	}

	switch code {
	case 4:
		return WireModeInsert, true
	case 20:
		return WireModeLineFeedNewLine, true
	}
	return 0, false
}

// dispatchWindowManipulation handles xterm CSI Ps t window-manipulation requests.
func dispatchWindowManipulation(t *Terminal, ps int) {
	switch ps {
	case 14:
		t.TextAreaSizePixels()
	case 16:
		t.CellSizePixels()
	case 18:
		t.TextAreaSizeChars()
	}
}

// dispatchKittyKeyboard handles the Kitty keyboard protocol's CSI u family,
// distinguished by private marker: '>' push, '<' pop, '=' set, '?' query.
func dispatchKittyKeyboard(t *Terminal, private byte, params *Params) {
	switch private {
	case '>':
		t.PushKeyboardMode(KeyboardMode(paramOr(params, 0, 0)))
	case '<':
		t.PopKeyboardMode(paramOr(params, 0, 1))
	case '=':
		mode := KeyboardMode(paramOr(params, 0, 0))
		behavior := KeyboardModeBehaviorReplace
		switch paramOr(params, 1, 1) {
		case 2:
			behavior = KeyboardModeBehaviorUnion
		case 3:
			behavior = KeyboardModeBehaviorDifference
		}
		t.SetKeyboardMode(mode, behavior)
	case '?':
		t.ReportKeyboardMode()
	}
}

// OscDispatch handles a complete OSC (Operating System Command) string.
func (t *Terminal) OscDispatch(payload []byte) {
	s := string(payload)
	semi := strings.IndexByte(s, ';')
	var prefix, rest string
	if semi < 0 {
		prefix = s
	} else {
		prefix = s[:semi]
		rest = s[semi+1:]
	}

	code, err := strconv.Atoi(prefix)
	if err != nil {
		t.discardedSequences.Add(1)
		return
	}

	switch code {
	case 0, 2:
		t.SetTitle(rest)
	case 1:
		t.SetTitle(rest)
	case 4:
		oscSetColor(t, rest)
	case 7:
		t.SetWorkingDirectory(rest)
	case 8:
		oscSetHyperlink(t, rest)
	case 10:
		oscQueryOrSetNamedColor(t, prefix, NamedColorForeground, rest)
	case 11:
		oscQueryOrSetNamedColor(t, prefix, NamedColorBackground, rest)
	case 12:
		oscQueryOrSetNamedColor(t, prefix, NamedColorCursor, rest)
	case 22:
		// Mouse pointer shape requests are not rendered headlessly; ignored.
	case 52:
		oscClipboard(t, rest)
	case 104:
		oscResetColor(t, rest)
	case 99:
		oscDesktopNotification(t, rest)
	case 133:
		oscShellIntegration(t, rest)
	case 1337:
		oscITerm2(t, rest)
	default:
		t.unsupportedControls.Add(1)
	}
}

// oscDesktopNotification parses an OSC 99 desktop notification request, a
// colon-delimited metadata block followed by a ';' and the payload text.
// See kitty's desktop-notifications protocol for the key meanings.
func oscDesktopNotification(t *Terminal, rest string) {
	metaEnd := strings.IndexByte(rest, ';')
	meta := rest
	var body string
	if metaEnd >= 0 {
		meta = rest[:metaEnd]
		body = rest[metaEnd+1:]
	}

	payload := &NotificationPayload{Done: true, PayloadType: "title"}
	for _, kv := range strings.Split(meta, ":") {
		if kv == "" {
			continue
		}
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch k {
		case "i":
			payload.ID = v
		case "d":
			payload.Done = v != "0"
		case "p":
			payload.PayloadType = v
		case "e":
			payload.Encoding = v
		case "a":
			payload.Actions = append(payload.Actions, strings.Split(v, ",")...)
		case "w":
			payload.TrackClose = v == "1"
		case "t":
			if n, err := strconv.Atoi(v); err == nil {
				payload.Timeout = n
			}
		case "n":
			payload.AppName = v
		case "y":
			payload.Type = v
		case "g":
			payload.IconName = v
		case "r":
			payload.IconCacheID = v
		case "s":
			payload.Sound = v
		case "u":
			if n, err := strconv.Atoi(v); err == nil {
				payload.Urgency = n
			}
		case "o":
			payload.Occasion = v
		}
	}

	if payload.Encoding == "1" {
		if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
			payload.Data = decoded
		}
	} else {
		payload.Data = []byte(body)
	}

	t.DesktopNotification(payload)
}

// oscITerm2 handles the iTerm2-proprietary OSC 1337 command family.
func oscITerm2(t *Terminal, rest string) {
	key, value, ok := strings.Cut(rest, "=")
	if !ok {
		return
	}
	switch key {
	case "SetUserVar":
		name, b64, ok := strings.Cut(value, "=")
		if !ok {
			return
		}
		decoded, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			t.discardedSequences.Add(1)
			return
		}
		t.SetUserVar(name, string(decoded))
	case "File":
		t.handleITerm2File(value)
	}
}

func oscQueryOrSetNamedColor(t *Terminal, prefix string, namedIndex int, rest string) {
	if rest == "?" {
		t.SetDynamicColor(prefix, namedIndex, "\x07")
		return
	}
	if c, ok := parseXColor(rest); ok {
		t.SetColor(namedIndex, c)
	}
}

func oscSetColor(t *Terminal, rest string) {
	parts := strings.Split(rest, ";")
	for i := 0; i+1 < len(parts); i += 2 {
		idx, err := strconv.Atoi(parts[i])
		if err != nil {
			continue
		}
		c, ok := parseXColor(parts[i+1])
		if ok {
			t.SetColor(idx, c)
		}
	}
}

func oscResetColor(t *Terminal, rest string) {
	if rest == "" {
		return
	}
	for _, part := range strings.Split(rest, ";") {
		idx, err := strconv.Atoi(part)
		if err == nil {
			t.ResetColor(idx)
		}
	}
}

func oscSetHyperlink(t *Terminal, rest string) {
	// OSC 8 ; params ; uri ST
	parts := strings.SplitN(rest, ";", 2)
	if len(parts) != 2 {
		return
	}
	uri := parts[1]
	if uri == "" {
		t.SetHyperlink(nil)
		return
	}

	id := ""
	for _, kv := range strings.Split(parts[0], ":") {
		if strings.HasPrefix(kv, "id=") {
			id = kv[len("id="):]
		}
	}
	t.SetHyperlink(&Hyperlink{ID: id, URI: uri})
}

func oscClipboard(t *Terminal, rest string) {
	parts := strings.SplitN(rest, ";", 2)
	if len(parts) != 2 {
		return
	}
	clipboard := byte('c')
	if len(parts[0]) > 0 {
		clipboard = parts[0][0]
	}

	if parts[1] == "?" {
		t.ClipboardLoad(clipboard, "\x07")
		return
	}

	data, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		t.discardedSequences.Add(1)
		return
	}
	t.ClipboardStore(clipboard, data)
}

func oscShellIntegration(t *Terminal, rest string) {
	parts := strings.Split(rest, ";")
	if len(parts) == 0 || len(parts[0]) == 0 {
		return
	}

	exitCode := -1
	var mark ShellIntegrationMark
	switch parts[0][0] {
	case 'A':
		mark = PromptStart
	case 'B':
		mark = CommandStart
	case 'C':
		mark = CommandExecuted
	case 'D':
		mark = CommandFinished
		if len(parts) > 1 {
			if n, err := strconv.Atoi(parts[1]); err == nil {
				exitCode = n
			}
		}
	default:
		return
	}

	t.ShellIntegrationMark(mark, exitCode)
}

// DcsHook begins a DCS (Device Control String) sequence.
func (t *Terminal) DcsHook(final byte, private byte, intermediates []byte, params *Params) {
	t.dcsFinal = final
	t.dcsParams = snapshotParams(params)
	t.dcsBuf = t.dcsBuf[:0]
}

// DcsPut accumulates one byte of DCS passthrough data.
func (t *Terminal) DcsPut(b byte) {
	t.dcsBuf = append(t.dcsBuf, b)
}

// DcsUnhook finalizes and dispatches the accumulated DCS sequence.
func (t *Terminal) DcsUnhook() {
	switch t.dcsFinal {
	case 'q':
		t.SixelReceived(t.dcsParams, t.dcsBuf)
	case '{':
		t.DrcsLoadReceived(t.dcsParams, t.dcsBuf)
	default:
		t.unsupportedControls.Add(1)
	}
	t.dcsBuf = nil
	t.dcsParams = nil
	t.dcsFinal = 0
}

func snapshotParams(params *Params) [][]uint16 {
	if params == nil {
		return nil
	}
	out := make([][]uint16, params.Count())
	for i := range out {
		sub := make([]uint16, params.SubCount(i))
		for j := range sub {
			v := params.GetSub(i, j, 0)
			if v < 0 {
				v = 0
			}
			sub[j] = uint16(v)
		}
		out[i] = sub
	}
	return out
}

// StringDispatch handles a complete SOS/PM/APC string, identified by the byte
// that introduced it ('X' for SOS, '^' for PM, '_' for APC).
func (t *Terminal) StringDispatch(kind byte, payload []byte) {
	switch kind {
	case 'X':
		t.StartOfStringReceived(payload)
	case '^':
		t.PrivacyMessageReceived(payload)
	case '_':
		t.ApplicationCommandReceived(payload)
	}
}
