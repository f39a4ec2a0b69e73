package vtcore

// ByteParser is a push-style VT500-series state machine. It turns a raw byte
// stream into a sequence of calls against a Sink — no intermediate event
// values are heap-allocated; parameter storage is fixed-capacity and cleared
// in place, so Write can run in a tight loop against whatever chunk size the
// PTY reader hands it.
//
// The state table follows the classical vt100.net parser: GROUND, ESCAPE,
// ESCAPE_INTERMEDIATE, CSI_ENTRY/PARAM/INTERMEDIATE/IGNORE,
// DCS_ENTRY/PARAM/INTERMEDIATE/PASSTHROUGH/IGNORE, OSC_STRING,
// SOS_PM_APC_STRING. Every byte not explicitly consumed by the current state
// performs the action that state defines for it; nothing the parser sees can
// leave it wedged, because any unrecognized combination is, at worst, an
// ignore.
type ByteParser struct {
	state parserState
	sink  Sink

	params     Params
	inters     [maxIntermediates]byte
	interCount int
	privateMrk byte // '?', '>', '=', '<', or 0

	oscBuf      []byte
	oscOverflow bool // string blew its cap; swallow the rest and drop it
	dcsLen      int
	pendingST   bool // saw ESC while collecting an OSC/SOS/PM/APC string

	// UTF-8 assembly, live only across GROUND.
	utf8Need  int
	utf8Got   int
	utf8Accum rune

	// stringKind records which introducer (X/^/_) put us in
	// SOS_PM_APC_STRING, so StringDispatch can route it.
	stringKind byte
}

type parserState uint8

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeIntermediate
	stateCsiEntry
	stateCsiParam
	stateCsiIntermediate
	stateCsiIgnore
	stateDcsEntry
	stateDcsParam
	stateDcsIntermediate
	stateDcsPassthrough
	stateDcsIgnore
	stateOscString
	stateSosPmApcString
)

const (
	maxParams        = 16
	maxSubParams     = 16
	maxIntermediates = 8
	maxOscLen        = 64 * 1024
	maxDcsLen        = 4 * 1024 * 1024
)

// Params holds up to maxParams positional CSI/DCS parameters, each with up
// to maxSubParams colon-separated sub-parameters. A missing value reads back
// as -1 ("default"); callers resolve the operation-specific default at
// dispatch time, per spec.
type Params struct {
	vals  [maxParams][maxSubParams]int32
	nsub  [maxParams]uint8
	count int
}

func (p *Params) reset() {
	p.count = 0
	for i := range p.nsub {
		p.nsub[i] = 0
	}
}

// Count returns the number of positional parameters collected.
func (p *Params) Count() int { return p.count }

// Get returns sub-parameter 0 of positional parameter i, or def if absent.
func (p *Params) Get(i int, def int32) int32 {
	return p.GetSub(i, 0, def)
}

// GetSub returns sub-parameter sub of positional parameter i, or def if
// either index is out of range or the value was never set (default).
func (p *Params) GetSub(i, sub int, def int32) int32 {
	if i < 0 || i >= p.count || sub < 0 || sub >= int(p.nsub[i]) {
		return def
	}
	v := p.vals[i][sub]
	if v < 0 {
		return def
	}
	return v
}

// SubCount returns how many sub-parameters positional parameter i carries
// (1 if it was given as a plain value with no ':' separators).
func (p *Params) SubCount(i int) int {
	if i < 0 || i >= p.count {
		return 0
	}
	return int(p.nsub[i])
}

func (p *Params) startParam() {
	if p.count < maxParams {
		p.count++
		idx := p.count - 1
		p.vals[idx][0] = -1
		p.nsub[idx] = 1
	}
}

func (p *Params) startSub() {
	if p.count == 0 {
		p.startParam()
	}
	idx := p.count - 1
	if int(p.nsub[idx]) < maxSubParams {
		p.nsub[idx]++
		p.vals[idx][p.nsub[idx]-1] = -1
	}
}

func (p *Params) addDigit(d byte) {
	if p.count == 0 {
		p.startParam()
	}
	idx := p.count - 1
	sub := int(p.nsub[idx]) - 1
	if sub < 0 {
		return
	}
	cur := p.vals[idx][sub]
	if cur < 0 {
		cur = 0
	}
	if cur > (1<<30)/10 {
		cur = 1 << 30
	} else {
		cur = cur*10 + int32(d-'0')
		if cur > 1<<30 {
			cur = 1 << 30
		}
	}
	p.vals[idx][sub] = cur
}

// Sink receives ByteParser callbacks. ScreenEngine implements it.
type Sink interface {
	Print(r rune)
	Execute(b byte)
	CsiDispatch(final byte, private byte, intermediates []byte, params *Params)
	EscDispatch(final byte, intermediates []byte)
	OscDispatch(payload []byte)
	DcsHook(final byte, private byte, intermediates []byte, params *Params)
	DcsPut(b byte)
	DcsUnhook()
	StringDispatch(kind byte, payload []byte)
}

// NewByteParser creates a parser that drives sink.
func NewByteParser(sink Sink) *ByteParser {
	return &ByteParser{sink: sink, oscBuf: make([]byte, 0, 256)}
}

// Write feeds data into the state machine. It always consumes the whole
// slice and never returns an error — malformed input is self-healing per
// spec (ParseMalformed/UnsupportedControl never surface to the caller).
func (p *ByteParser) Write(data []byte) (int, error) {
	for _, b := range data {
		p.step(b)
	}
	return len(data), nil
}

func (p *ByteParser) clear() {
	p.params.reset()
	p.interCount = 0
	p.privateMrk = 0
}

func (p *ByteParser) step(b byte) {
	// UTF-8 continuation bytes are only meaningful while assembling a
	// multi-byte code point in GROUND; everywhere else they're raw data
	// passed to the byte-class dispatch same as any other 0x80-0xBF byte,
	// which is harmless because no control sequence uses those bytes.
	if p.utf8Need > 0 && p.state == stateGround {
		if b&0xC0 == 0x80 {
			p.utf8Accum = (p.utf8Accum << 6) | rune(b&0x3F)
			p.utf8Got++
			if p.utf8Got == p.utf8Need {
				p.emitUTF8()
			}
			return
		}
		// Invalid: truncated sequence. Emit replacement, resync on b.
		p.utf8Need = 0
		p.sink.Print(0xFFFD)
		// fall through: reprocess b as a fresh byte
	}

	switch {
	case b == 0x18 || b == 0x1A: // CAN, SUB
		if p.state == stateDcsPassthrough {
			p.sink.DcsUnhook()
		}
		p.pendingST = false
		p.state = stateGround
		p.sink.Execute(b)
		return
	case b == 0x1B && p.state != stateOscString && p.state != stateSosPmApcString &&
		p.state != stateDcsPassthrough && p.state != stateDcsIgnore:
		// ESC always aborts the current sequence and restarts, except
		// inside string-typed states where it may be the ST terminator
		// (handled by those states directly below).
		p.clear()
		p.state = stateEscape
		return
	}

	switch p.state {
	case stateGround:
		p.stepGround(b)
	case stateEscape:
		p.stepEscape(b)
	case stateEscapeIntermediate:
		p.stepEscapeIntermediate(b)
	case stateCsiEntry:
		p.stepCsiEntry(b)
	case stateCsiParam:
		p.stepCsiParam(b)
	case stateCsiIntermediate:
		p.stepCsiIntermediate(b)
	case stateCsiIgnore:
		p.stepCsiIgnore(b)
	case stateDcsEntry:
		p.stepDcsEntry(b)
	case stateDcsParam:
		p.stepDcsParam(b)
	case stateDcsIntermediate:
		p.stepDcsIntermediate(b)
	case stateDcsPassthrough:
		p.stepDcsPassthrough(b)
	case stateDcsIgnore:
		p.stepDcsIgnore(b)
	case stateOscString:
		p.stepOscString(b)
	case stateSosPmApcString:
		p.stepStringState(b)
	}
}

func (p *ByteParser) emitUTF8() {
	p.sink.Print(p.utf8Accum)
	p.utf8Need = 0
	p.utf8Got = 0
	p.utf8Accum = 0
}

func isC0(b byte) bool {
	return b <= 0x17 || b == 0x19 || (b >= 0x1C && b <= 0x1F)
}

func (p *ByteParser) stepGround(b byte) {
	switch {
	case isC0(b):
		p.sink.Execute(b)
	case b == 0x7F:
		// DEL, ignored
	case b < 0x80:
		p.sink.Print(rune(b))
	case b&0xE0 == 0xC0:
		p.utf8Need, p.utf8Got, p.utf8Accum = 1, 0, rune(b&0x1F)
	case b&0xF0 == 0xE0:
		p.utf8Need, p.utf8Got, p.utf8Accum = 2, 0, rune(b&0x0F)
	case b&0xF8 == 0xF0:
		p.utf8Need, p.utf8Got, p.utf8Accum = 3, 0, rune(b&0x07)
	default:
		// Stray continuation byte or invalid lead byte.
		p.sink.Print(0xFFFD)
	}
}

func (p *ByteParser) stepEscape(b byte) {
	switch {
	case isC0(b):
		p.sink.Execute(b)
	case b == 0x7F:
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = stateEscapeIntermediate
	case b == '[':
		p.clear()
		p.state = stateCsiEntry
	case b == ']':
		p.oscBuf = p.oscBuf[:0]
		p.oscOverflow = false
		p.pendingST = false
		p.state = stateOscString
	case b == 'P':
		p.clear()
		p.state = stateDcsEntry
	case b == 'X' || b == '^' || b == '_':
		p.stringKind = b
		p.oscBuf = p.oscBuf[:0]
		p.oscOverflow = false
		p.pendingST = false
		p.state = stateSosPmApcString
	case b >= 0x30 && b <= 0x7E:
		p.sink.EscDispatch(b, p.inters[:p.interCount])
		p.state = stateGround
	default:
		p.state = stateGround
	}
}

func (p *ByteParser) stepEscapeIntermediate(b byte) {
	switch {
	case isC0(b):
		p.sink.Execute(b)
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
	case b >= 0x30 && b <= 0x7E:
		p.sink.EscDispatch(b, p.inters[:p.interCount])
		p.state = stateGround
	default:
		p.state = stateGround
	}
}

func (p *ByteParser) collectIntermediate(b byte) {
	if p.interCount < maxIntermediates {
		p.inters[p.interCount] = b
		p.interCount++
	}
}

func (p *ByteParser) stepCsiEntry(b byte) {
	switch {
	case isC0(b):
		p.sink.Execute(b)
	case b >= 0x3C && b <= 0x3F:
		p.privateMrk = b
		p.state = stateCsiParam
	case b >= '0' && b <= '9':
		p.params.addDigit(b)
		p.state = stateCsiParam
	case b == ';':
		p.params.startParam()
		p.state = stateCsiParam
	case b == ':':
		p.params.startSub()
		p.state = stateCsiParam
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = stateCsiIntermediate
	case b >= 0x40 && b <= 0x7E:
		p.dispatchCsi(b)
	default:
		p.state = stateCsiIgnore
	}
}

func (p *ByteParser) stepCsiParam(b byte) {
	switch {
	case isC0(b):
		p.sink.Execute(b)
	case b >= '0' && b <= '9':
		p.params.addDigit(b)
	case b == ';':
		p.params.startParam()
	case b == ':':
		p.params.startSub()
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = stateCsiIntermediate
	case b >= 0x40 && b <= 0x7E:
		p.dispatchCsi(b)
	default:
		p.state = stateCsiIgnore
	}
}

func (p *ByteParser) stepCsiIntermediate(b byte) {
	switch {
	case isC0(b):
		p.sink.Execute(b)
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
	case b >= 0x40 && b <= 0x7E:
		p.dispatchCsi(b)
	default:
		p.state = stateCsiIgnore
	}
}

func (p *ByteParser) stepCsiIgnore(b byte) {
	switch {
	case isC0(b):
		p.sink.Execute(b)
	case b >= 0x40 && b <= 0x7E:
		p.state = stateGround
	default:
		// ignore
	}
}

func (p *ByteParser) dispatchCsi(final byte) {
	if p.params.count == 0 {
		p.params.startParam()
	}
	p.sink.CsiDispatch(final, p.privateMrk, p.inters[:p.interCount], &p.params)
	p.state = stateGround
}

func (p *ByteParser) stepDcsEntry(b byte) {
	switch {
	case isC0(b):
		// ignored in DCS entry
	case b >= 0x3C && b <= 0x3F:
		p.privateMrk = b
		p.state = stateDcsParam
	case b >= '0' && b <= '9':
		p.params.addDigit(b)
		p.state = stateDcsParam
	case b == ';':
		p.params.startParam()
		p.state = stateDcsParam
	case b == ':':
		p.params.startSub()
		p.state = stateDcsParam
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = stateDcsIntermediate
	case b >= 0x40 && b <= 0x7E:
		p.hookDcs(b)
	default:
		p.state = stateDcsIgnore
	}
}

func (p *ByteParser) stepDcsParam(b byte) {
	switch {
	case isC0(b):
	case b >= '0' && b <= '9':
		p.params.addDigit(b)
	case b == ';':
		p.params.startParam()
	case b == ':':
		p.params.startSub()
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = stateDcsIntermediate
	case b >= 0x40 && b <= 0x7E:
		p.hookDcs(b)
	default:
		p.state = stateDcsIgnore
	}
}

func (p *ByteParser) stepDcsIntermediate(b byte) {
	switch {
	case isC0(b):
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
	case b >= 0x40 && b <= 0x7E:
		p.hookDcs(b)
	default:
		p.state = stateDcsIgnore
	}
}

func (p *ByteParser) hookDcs(final byte) {
	if p.params.count == 0 {
		p.params.startParam()
	}
	p.sink.DcsHook(final, p.privateMrk, p.inters[:p.interCount], &p.params)
	p.dcsLen = 0
	p.pendingST = false
	p.state = stateDcsPassthrough
}

// stepDcsPassthrough feeds bytes to the sink via DcsPut until ST (ESC \)
// ends the string, mirroring stepOscString's ESC-then-backslash handling
// since DCS_PASSTHROUGH's terminator has the identical shape.
func (p *ByteParser) stepDcsPassthrough(b byte) {
	if p.pendingST {
		p.pendingST = false
		if b == '\\' {
			p.sink.DcsUnhook()
			p.state = stateGround
			return
		}
		// Not a real ST: the ESC still ends the string, then opens a fresh
		// escape sequence that b belongs to.
		p.sink.DcsUnhook()
		p.clear()
		p.state = stateEscape
		p.step(b)
		return
	}
	if b == 0x1B {
		p.pendingST = true
		return
	}
	if p.dcsLen >= maxDcsLen {
		// ResourceExhaustion: abort the sequence, swallow the rest.
		p.sink.DcsUnhook()
		p.state = stateDcsIgnore
		p.pendingST = false
		return
	}
	p.dcsLen++
	p.sink.DcsPut(b)
}

func (p *ByteParser) stepDcsIgnore(b byte) {
	if p.pendingST {
		p.pendingST = false
		if b == '\\' {
			p.state = stateGround
			return
		}
		p.clear()
		p.state = stateEscape
		p.step(b)
		return
	}
	if b == 0x1B {
		p.pendingST = true
	}
}

func (p *ByteParser) stepOscString(b byte) {
	if p.pendingST {
		p.pendingST = false
		if b == '\\' {
			if !p.oscOverflow {
				p.sink.OscDispatch(p.oscBuf)
			}
			p.state = stateGround
			return
		}
		// Not a real ST: the ESC aborts the string and opens a fresh escape
		// sequence that b belongs to.
		p.clear()
		p.state = stateEscape
		p.step(b)
		return
	}
	switch b {
	case 0x07:
		if !p.oscOverflow {
			p.sink.OscDispatch(p.oscBuf)
		}
		p.state = stateGround
	case 0x1B:
		p.pendingST = true
	default:
		p.stringAppend(b, p.oscIs1337())
	}
}

// oscIs1337 reports whether the collected payload addresses the iTerm2
// protocol, whose File= transfers legitimately run to megabytes; those get
// the DCS-sized cap instead of the general OSC one.
func (p *ByteParser) oscIs1337() bool {
	b := p.oscBuf
	return len(b) >= 5 && b[0] == '1' && b[1] == '3' && b[2] == '3' && b[3] == '7' && b[4] == ';'
}

// stringAppend accumulates one OSC/SOS/PM/APC string byte, flipping to
// overflow-discard mode once the applicable cap is hit. A dropped string is
// swallowed to its terminator, never dispatched.
func (p *ByteParser) stringAppend(b byte, large bool) {
	if p.oscOverflow {
		return
	}
	limit := maxOscLen
	if large {
		limit = maxDcsLen
	}
	if len(p.oscBuf) >= limit {
		p.oscOverflow = true
		return
	}
	p.oscBuf = append(p.oscBuf, b)
}

func (p *ByteParser) stepStringState(b byte) {
	if p.pendingST {
		p.pendingST = false
		if b == '\\' {
			if !p.oscOverflow {
				p.sink.StringDispatch(p.stringKind, p.oscBuf)
			}
			p.state = stateGround
			return
		}
		p.clear()
		p.state = stateEscape
		p.step(b)
		return
	}
	switch b {
	case 0x07:
		if !p.oscOverflow {
			p.sink.StringDispatch(p.stringKind, p.oscBuf)
		}
		p.state = stateGround
	case 0x1B:
		p.pendingST = true
	default:
		// APC carries Kitty graphics payloads, which can also be large.
		p.stringAppend(b, p.stringKind == '_')
	}
}
