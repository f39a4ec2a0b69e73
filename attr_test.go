package vtcore

import (
	"image/color"
	"testing"
)

// sgrCollector drives applySGRParams off a parsed CSI m sequence, collecting
// the decoded attributes.
type sgrCollector struct {
	recordingSink
	attrs []TerminalCharAttribute
}

func (s *sgrCollector) CsiDispatch(final byte, private byte, intermediates []byte, params *Params) {
	if final == 'm' {
		applySGRParams(params, func(a TerminalCharAttribute) {
			s.attrs = append(s.attrs, a)
		})
	}
}

func sgrAttrs(t *testing.T, body string) []TerminalCharAttribute {
	t.Helper()
	sink := &sgrCollector{}
	p := NewByteParser(sink)
	p.Write([]byte("\x1b[" + body + "m"))
	return sink.attrs
}

func TestSGR_EmptyMeansReset(t *testing.T) {
	attrs := sgrAttrs(t, "")
	if len(attrs) != 1 || attrs[0].Attr != CharAttributeReset {
		t.Errorf("expected lone reset, got %v", attrs)
	}
}

func TestSGR_SimpleFlags(t *testing.T) {
	cases := []struct {
		body string
		want CharAttribute
	}{
		{"0", CharAttributeReset},
		{"1", CharAttributeBold},
		{"2", CharAttributeDim},
		{"3", CharAttributeItalic},
		{"4", CharAttributeUnderline},
		{"5", CharAttributeBlinkSlow},
		{"7", CharAttributeReverse},
		{"8", CharAttributeHidden},
		{"9", CharAttributeStrike},
		{"21", CharAttributeDoubleUnderline},
		{"22", CharAttributeCancelBoldDim},
		{"23", CharAttributeCancelItalic},
		{"24", CharAttributeCancelUnderline},
		{"25", CharAttributeCancelBlink},
		{"27", CharAttributeCancelReverse},
		{"28", CharAttributeCancelHidden},
		{"29", CharAttributeCancelStrike},
		{"53", CharAttributeOverline},
		{"55", CharAttributeCancelOverline},
	}
	for _, tc := range cases {
		attrs := sgrAttrs(t, tc.body)
		if len(attrs) != 1 || attrs[0].Attr != tc.want {
			t.Errorf("SGR %s: expected %v, got %v", tc.body, tc.want, attrs)
		}
	}
}

func TestSGR_UnderlineStyleSubParams(t *testing.T) {
	cases := []struct {
		body string
		want CharAttribute
	}{
		{"4:0", CharAttributeCancelUnderline},
		{"4:1", CharAttributeUnderline},
		{"4:2", CharAttributeDoubleUnderline},
		{"4:3", CharAttributeCurlyUnderline},
		{"4:4", CharAttributeDottedUnderline},
		{"4:5", CharAttributeDashedUnderline},
	}
	for _, tc := range cases {
		attrs := sgrAttrs(t, tc.body)
		if len(attrs) != 1 || attrs[0].Attr != tc.want {
			t.Errorf("SGR %s: expected %v, got %v", tc.body, tc.want, attrs)
		}
	}
}

func TestSGR_NamedColors(t *testing.T) {
	attrs := sgrAttrs(t, "31;44;92;103")
	if len(attrs) != 4 {
		t.Fatalf("expected 4 attributes, got %v", attrs)
	}
	checks := []struct {
		attr CharAttribute
		name int
	}{
		{CharAttributeForeground, 1},
		{CharAttributeBackground, 4},
		{CharAttributeForeground, 10},
		{CharAttributeBackground, 11},
	}
	for i, c := range checks {
		if attrs[i].Attr != c.attr || attrs[i].NamedColor == nil || *attrs[i].NamedColor != c.name {
			t.Errorf("attr %d: expected %v/%d, got %v", i, c.attr, c.name, attrs[i])
		}
	}
}

func TestSGR_DefaultColors(t *testing.T) {
	attrs := sgrAttrs(t, "39;49;59")
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %v", attrs)
	}
	wants := []CharAttribute{CharAttributeForeground, CharAttributeBackground, CharAttributeUnderlineColor}
	for i, want := range wants {
		a := attrs[i]
		if a.Attr != want || a.NamedColor != nil || a.IndexedColor != nil || a.RGBColor != nil {
			t.Errorf("attr %d: expected bare %v (default), got %v", i, want, a)
		}
	}
}

func TestSGR_ExtendedColorSemicolonForm(t *testing.T) {
	attrs := sgrAttrs(t, "38;2;10;20;30;1")
	if len(attrs) != 2 {
		t.Fatalf("expected RGB fg then bold, got %v", attrs)
	}
	rgb := attrs[0].RGBColor
	if attrs[0].Attr != CharAttributeForeground || rgb == nil ||
		rgb.R != 10 || rgb.G != 20 || rgb.B != 30 {
		t.Errorf("unexpected fg attribute %v", attrs[0])
	}
	if attrs[1].Attr != CharAttributeBold {
		t.Errorf("expected trailing params still applied, got %v", attrs[1])
	}

	attrs = sgrAttrs(t, "48;5;100")
	if len(attrs) != 1 || attrs[0].Attr != CharAttributeBackground ||
		attrs[0].IndexedColor == nil || attrs[0].IndexedColor.Index != 100 {
		t.Errorf("unexpected indexed bg %v", attrs)
	}
}

func TestSGR_ExtendedColorColonForm(t *testing.T) {
	attrs := sgrAttrs(t, "38:2:10:20:30;4")
	if len(attrs) != 2 {
		t.Fatalf("expected RGB fg then underline, got %v", attrs)
	}
	rgb := attrs[0].RGBColor
	if rgb == nil || rgb.R != 10 || rgb.G != 20 || rgb.B != 30 {
		t.Errorf("unexpected fg attribute %v", attrs[0])
	}
	if attrs[1].Attr != CharAttributeUnderline {
		t.Errorf("colon form must consume only its own positional slot, got %v", attrs[1])
	}

	attrs = sgrAttrs(t, "58:5:42")
	if len(attrs) != 1 || attrs[0].Attr != CharAttributeUnderlineColor ||
		attrs[0].IndexedColor == nil || attrs[0].IndexedColor.Index != 42 {
		t.Errorf("unexpected underline color %v", attrs)
	}
}

func TestSGR_ApplyFoldsIntoTemplate(t *testing.T) {
	tmpl := NewCellTemplate()

	apply := func(body string) {
		for _, a := range sgrAttrs(t, body) {
			a.Apply(&tmpl, func(attr TerminalCharAttribute) color.Color {
				if attr.NamedColor != nil {
					return &NamedColor{Name: *attr.NamedColor}
				}
				if attr.IndexedColor != nil {
					return &IndexedColor{Index: int(attr.IndexedColor.Index)}
				}
				return &NamedColor{Name: NamedColorForeground}
			})
		}
	}

	apply("1;4;53")
	if !tmpl.HasFlag(CellFlagBold) || !tmpl.HasFlag(CellFlagUnderline) || !tmpl.HasFlag(CellFlagOverline) {
		t.Errorf("expected bold+underline+overline, got %b", tmpl.Flags)
	}

	// A new underline style replaces the old one rather than stacking.
	apply("4:3")
	if tmpl.HasFlag(CellFlagUnderline) || !tmpl.HasFlag(CellFlagCurlyUnderline) {
		t.Errorf("expected curly underline to replace single, got %b", tmpl.Flags)
	}

	apply("24")
	if tmpl.HasFlag(CellFlagCurlyUnderline) {
		t.Errorf("expected SGR 24 to clear every underline style, got %b", tmpl.Flags)
	}

	apply("0")
	if tmpl.Flags != 0 {
		t.Errorf("expected reset template, got %b", tmpl.Flags)
	}
}
