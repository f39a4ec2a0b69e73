package vtcore

import (
	"reflect"
	"strings"
	"testing"
)

// parseEvent is one recorded Sink callback, normalized for comparison.
type parseEvent struct {
	kind    string
	r       rune
	b       byte
	final   byte
	private byte
	inters  string
	params  [][]int32
	payload string
}

// recordingSink captures every parser callback in order.
type recordingSink struct {
	events []parseEvent
}

func copyParams(params *Params) [][]int32 {
	out := make([][]int32, params.Count())
	for i := range out {
		sub := make([]int32, params.SubCount(i))
		for j := range sub {
			sub[j] = params.GetSub(i, j, -1)
		}
		out[i] = sub
	}
	return out
}

func (s *recordingSink) Print(r rune) {
	s.events = append(s.events, parseEvent{kind: "print", r: r})
}

func (s *recordingSink) Execute(b byte) {
	s.events = append(s.events, parseEvent{kind: "execute", b: b})
}

func (s *recordingSink) CsiDispatch(final byte, private byte, intermediates []byte, params *Params) {
	s.events = append(s.events, parseEvent{
		kind:    "csi",
		final:   final,
		private: private,
		inters:  string(intermediates),
		params:  copyParams(params),
	})
}

func (s *recordingSink) EscDispatch(final byte, intermediates []byte) {
	s.events = append(s.events, parseEvent{kind: "esc", final: final, inters: string(intermediates)})
}

func (s *recordingSink) OscDispatch(payload []byte) {
	s.events = append(s.events, parseEvent{kind: "osc", payload: string(payload)})
}

func (s *recordingSink) DcsHook(final byte, private byte, intermediates []byte, params *Params) {
	s.events = append(s.events, parseEvent{
		kind:    "dcshook",
		final:   final,
		private: private,
		inters:  string(intermediates),
		params:  copyParams(params),
	})
}

func (s *recordingSink) DcsPut(b byte) {
	s.events = append(s.events, parseEvent{kind: "dcsput", b: b})
}

func (s *recordingSink) DcsUnhook() {
	s.events = append(s.events, parseEvent{kind: "dcsunhook"})
}

func (s *recordingSink) StringDispatch(kind byte, payload []byte) {
	s.events = append(s.events, parseEvent{kind: "string", b: kind, payload: string(payload)})
}

func parseAll(input string) []parseEvent {
	sink := &recordingSink{}
	p := NewByteParser(sink)
	p.Write([]byte(input))
	return sink.events
}

func TestParser_PrintASCII(t *testing.T) {
	events := parseAll("Hi")
	want := []parseEvent{
		{kind: "print", r: 'H'},
		{kind: "print", r: 'i'},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestParser_ExecuteC0(t *testing.T) {
	events := parseAll("a\r\nb")
	want := []parseEvent{
		{kind: "print", r: 'a'},
		{kind: "execute", b: 0x0d},
		{kind: "execute", b: 0x0a},
		{kind: "print", r: 'b'},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestParser_UTF8MultiByte(t *testing.T) {
	events := parseAll("é中")
	want := []parseEvent{
		{kind: "print", r: 'é'},
		{kind: "print", r: '中'},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestParser_UTF8SplitAcrossWrites(t *testing.T) {
	// "é" is 0xC3 0xA9; feeding the bytes in separate Write calls must
	// still produce exactly one Print event.
	sink := &recordingSink{}
	p := NewByteParser(sink)
	p.Write([]byte{0xC3})
	if len(sink.events) != 0 {
		t.Fatalf("expected no events after lead byte, got %v", sink.events)
	}
	p.Write([]byte{0xA9})
	want := []parseEvent{{kind: "print", r: 'é'}}
	if !reflect.DeepEqual(sink.events, want) {
		t.Errorf("expected %v, got %v", want, sink.events)
	}
}

func TestParser_InvalidUTF8EmitsReplacement(t *testing.T) {
	// Truncated two-byte sequence followed by ASCII: replacement, then resync.
	events := parseAll("\xC3A")
	want := []parseEvent{
		{kind: "print", r: 0xFFFD},
		{kind: "print", r: 'A'},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}

	// A stray continuation byte on its own is also a replacement.
	events = parseAll("\x80")
	want = []parseEvent{{kind: "print", r: 0xFFFD}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestParser_CsiNoParams(t *testing.T) {
	events := parseAll("\x1b[H")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %v", events)
	}
	ev := events[0]
	if ev.kind != "csi" || ev.final != 'H' || ev.private != 0 {
		t.Errorf("unexpected event %v", ev)
	}
	// Default parameter reads back as the caller's default.
	if len(ev.params) != 1 || ev.params[0][0] != -1 {
		t.Errorf("expected one default param, got %v", ev.params)
	}
}

func TestParser_CsiPositionalParams(t *testing.T) {
	events := parseAll("\x1b[5;10H")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %v", events)
	}
	ev := events[0]
	if ev.final != 'H' {
		t.Errorf("expected final H, got %c", ev.final)
	}
	want := [][]int32{{5}, {10}}
	if !reflect.DeepEqual(ev.params, want) {
		t.Errorf("expected params %v, got %v", want, ev.params)
	}
}

func TestParser_CsiSubParamsPreserved(t *testing.T) {
	// SGR 38:2:10:20:30 keeps the colon-separated sub-parameters on one
	// positional slot, distinct from 38;2;10;20;30.
	events := parseAll("\x1b[38:2:10:20:30m")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %v", events)
	}
	want := [][]int32{{38, 2, 10, 20, 30}}
	if !reflect.DeepEqual(events[0].params, want) {
		t.Errorf("expected params %v, got %v", want, events[0].params)
	}

	events = parseAll("\x1b[38;2;10;20;30m")
	want = [][]int32{{38}, {2}, {10}, {20}, {30}}
	if !reflect.DeepEqual(events[0].params, want) {
		t.Errorf("expected params %v, got %v", want, events[0].params)
	}
}

func TestParser_CsiPrivateMarker(t *testing.T) {
	events := parseAll("\x1b[?1049h")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %v", events)
	}
	ev := events[0]
	if ev.private != '?' || ev.final != 'h' {
		t.Errorf("unexpected event %v", ev)
	}
	if ev.params[0][0] != 1049 {
		t.Errorf("expected param 1049, got %v", ev.params)
	}
}

func TestParser_CsiIntermediate(t *testing.T) {
	events := parseAll("\x1b[!p")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %v", events)
	}
	ev := events[0]
	if ev.final != 'p' || ev.inters != "!" {
		t.Errorf("unexpected event %v", ev)
	}

	events = parseAll("\x1b[2 q")
	ev = events[0]
	if ev.final != 'q' || ev.inters != " " || ev.params[0][0] != 2 {
		t.Errorf("unexpected event %v", ev)
	}
}

func TestParser_CsiEmbeddedC0Executes(t *testing.T) {
	// A C0 control inside a CSI sequence executes without aborting it.
	events := parseAll("\x1b[1\n;2H")
	want := []parseEvent{
		{kind: "execute", b: 0x0a},
		{kind: "csi", final: 'H', params: [][]int32{{1}, {2}}},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestParser_CanAbortsSequence(t *testing.T) {
	// CAN mid-CSI drops the sequence; following text prints normally.
	events := parseAll("\x1b[12\x18A")
	want := []parseEvent{
		{kind: "execute", b: 0x18},
		{kind: "print", r: 'A'},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestParser_EscRestartsSequence(t *testing.T) {
	// ESC mid-CSI abandons it and starts a fresh escape.
	events := parseAll("\x1b[12\x1b[3D")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %v", events)
	}
	ev := events[0]
	if ev.final != 'D' || ev.params[0][0] != 3 {
		t.Errorf("unexpected event %v", ev)
	}
}

func TestParser_EscDispatch(t *testing.T) {
	events := parseAll("\x1b7\x1b(0\x1b#8")
	want := []parseEvent{
		{kind: "esc", final: '7'},
		{kind: "esc", final: '0', inters: "("},
		{kind: "esc", final: '8', inters: "#"},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestParser_OscBelTerminated(t *testing.T) {
	events := parseAll("\x1b]0;my title\x07")
	want := []parseEvent{{kind: "osc", payload: "0;my title"}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestParser_OscStTerminated(t *testing.T) {
	events := parseAll("\x1b]8;;https://x.test\x1b\\")
	want := []parseEvent{{kind: "osc", payload: "8;;https://x.test"}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestParser_OscAbortedByNonStEscape(t *testing.T) {
	// ESC followed by anything but backslash abandons the OSC string and
	// reprocesses the byte as a fresh escape.
	events := parseAll("\x1b]0;junk\x1bc")
	want := []parseEvent{{kind: "esc", final: 'c'}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestParser_DcsPassthrough(t *testing.T) {
	events := parseAll("\x1bPq#0ab\x1b\\")
	want := []parseEvent{
		{kind: "dcshook", final: 'q', params: [][]int32{{-1}}},
		{kind: "dcsput", b: '#'},
		{kind: "dcsput", b: '0'},
		{kind: "dcsput", b: 'a'},
		{kind: "dcsput", b: 'b'},
		{kind: "dcsunhook"},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestParser_DcsWithParams(t *testing.T) {
	events := parseAll("\x1bP1;2;3qx\x1b\\")
	if len(events) < 2 {
		t.Fatalf("expected events, got %v", events)
	}
	hook := events[0]
	if hook.kind != "dcshook" || hook.final != 'q' {
		t.Fatalf("unexpected hook event %v", hook)
	}
	want := [][]int32{{1}, {2}, {3}}
	if !reflect.DeepEqual(hook.params, want) {
		t.Errorf("expected params %v, got %v", want, hook.params)
	}
}

func TestParser_SosPmApcStrings(t *testing.T) {
	events := parseAll("\x1b_Gdata\x1b\\\x1b^secret\x07\x1bXraw\x07")
	want := []parseEvent{
		{kind: "string", b: '_', payload: "Gdata"},
		{kind: "string", b: '^', payload: "secret"},
		{kind: "string", b: 'X', payload: "raw"},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestParser_ParamOverflowIsClamped(t *testing.T) {
	// More than 16 positional parameters: extras are dropped, sequence
	// still dispatches.
	input := "\x1b[" + strings.Repeat("1;", 30) + "1m"
	events := parseAll(input)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if len(events[0].params) != 16 {
		t.Errorf("expected params capped at 16, got %d", len(events[0].params))
	}
}

func TestParser_OversizedParamValueIsClamped(t *testing.T) {
	events := parseAll("\x1b[99999999999999H")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %v", events)
	}
	if v := events[0].params[0][0]; v != 1<<30 {
		t.Errorf("expected clamped param, got %d", v)
	}
}

func TestParser_CsiIgnoreSwallowsGarbage(t *testing.T) {
	// DEL (0x7F) in CSI entry drops the sequence through the ignore state;
	// the final byte exits it without dispatching.
	events := parseAll("\x1b[\x7f5mA")
	want := []parseEvent{{kind: "print", r: 'A'}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

// TestParser_ByteResumability checks the split property: for any input S and
// any split S = A||B, parsing A then B produces the same events as parsing S
// in one call.
func TestParser_ByteResumability(t *testing.T) {
	fixtures := []string{
		"plain text with é and 中",
		"\x1b[1;31mred\x1b[0m",
		"\x1b[38:2:10:20:30mx\x1b[48;5;100my",
		"\x1b]0;title with ; semicolons\x07",
		"\x1b]8;;https://x.test\x1b\\LINK\x1b]8;;\x1b\\",
		"\x1bPq\"1;1;4;6#0;2;0;0;0#0~~~~$-\x1b\\",
		"\x1b[?1049habc\x1b[?1049l",
		"mixed\x1b[2Jcontrols\r\n\x1b(0qq\x1b(B",
		"\x1b_Gf=32,s=1,v=1;AAAA\x1b\\",
	}

	for _, fixture := range fixtures {
		whole := parseAll(fixture)
		for split := 1; split < len(fixture); split++ {
			sink := &recordingSink{}
			p := NewByteParser(sink)
			p.Write([]byte(fixture[:split]))
			p.Write([]byte(fixture[split:]))
			if !reflect.DeepEqual(sink.events, whole) {
				t.Fatalf("split at %d of %q diverged:\nwhole %v\nsplit %v",
					split, fixture, whole, sink.events)
			}
		}
	}
}

func TestParser_ReusableAcrossSequences(t *testing.T) {
	sink := &recordingSink{}
	p := NewByteParser(sink)
	p.Write([]byte("\x1b[31m"))
	p.Write([]byte("\x1b[32m"))

	if len(sink.events) != 2 {
		t.Fatalf("expected 2 events, got %v", sink.events)
	}
	if sink.events[0].params[0][0] != 31 || sink.events[1].params[0][0] != 32 {
		t.Errorf("parameter state leaked between sequences: %v", sink.events)
	}
}

func TestParams_Accessors(t *testing.T) {
	events := parseAll("\x1b[4:3m")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %v", events)
	}
	want := [][]int32{{4, 3}}
	if !reflect.DeepEqual(events[0].params, want) {
		t.Errorf("expected %v, got %v", want, events[0].params)
	}
}
