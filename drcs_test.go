package vtcore

import "testing"

// decdld builds a DECDLD load for one or more glyphs under the given Dscs
// designator, using default font parameters.
func decdld(dscs string, glyphs ...string) string {
	data := dscs
	for i, g := range glyphs {
		if i > 0 {
			data += ";"
		}
		data += g
	}
	return "\x1bP1;1;0;8{" + data + "\x1b\\"
}

func TestDrcs_LoadSingleGlyph(t *testing.T) {
	term := New(WithSize(24, 80))
	// '~' lights all six bits of one column.
	term.WriteString(decdld("{", "~"))

	glyph := term.DrcsGlyphAt('{', 1)
	if glyph == nil {
		t.Fatal("expected glyph loaded at start char 1")
	}
	if glyph.Width != 1 || glyph.Height != 6 {
		t.Fatalf("expected 1x6 glyph, got %dx%d", glyph.Width, glyph.Height)
	}
	for y := 0; y < 6; y++ {
		if !glyph.Rows[y][0] {
			t.Errorf("expected row %d lit", y)
		}
	}
}

func TestDrcs_GlyphBitLayout(t *testing.T) {
	term := New(WithSize(24, 80))
	// '@' is 0x40: value 1 after the 0x3F offset, so only the top pixel.
	term.WriteString(decdld("{", "@"))

	glyph := term.DrcsGlyphAt('{', 1)
	if glyph == nil {
		t.Fatal("expected glyph loaded")
	}
	if !glyph.Rows[0][0] {
		t.Error("expected top pixel lit")
	}
	for y := 1; y < glyph.Height; y++ {
		if glyph.Rows[y][0] {
			t.Errorf("expected row %d dark", y)
		}
	}
}

func TestDrcs_MultipleGlyphs(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString(decdld("{", "~~", "??"))

	first := term.DrcsGlyphAt('{', 1)
	second := term.DrcsGlyphAt('{', 2)
	if first == nil || second == nil {
		t.Fatal("expected two glyphs loaded")
	}
	if first.Width != 2 || second.Width != 2 {
		t.Errorf("expected widths 2, got %d and %d", first.Width, second.Width)
	}
	// '?' encodes zero: the second glyph is blank.
	for y := 0; y < second.Height; y++ {
		for x := 0; x < second.Width; x++ {
			if second.Rows[y][x] {
				t.Errorf("expected blank glyph, pixel (%d,%d) lit", x, y)
			}
		}
	}
}

func TestDrcs_BandSeparatorExtendsHeight(t *testing.T) {
	term := New(WithSize(24, 80))
	// Two bands of the same column: twelve pixel rows.
	term.WriteString(decdld("{", "~/~"))

	glyph := term.DrcsGlyphAt('{', 1)
	if glyph == nil {
		t.Fatal("expected glyph loaded")
	}
	if glyph.Height != 12 {
		t.Fatalf("expected 12 rows across two bands, got %d", glyph.Height)
	}
	for y := 0; y < 12; y++ {
		if !glyph.Rows[y][0] {
			t.Errorf("expected row %d lit", y)
		}
	}
}

func TestDrcs_StartCharFromPcn(t *testing.T) {
	term := New(WithSize(24, 80))
	// Pcn=33 loads the first glyph at character offset 33 ('!' relative to
	// the set's base).
	term.WriteString("\x1bP1;33;0;8{{~\x1b\\")

	if term.DrcsGlyphAt('{', 33) == nil {
		t.Error("expected glyph at start char 33")
	}
	if term.DrcsGlyphAt('{', 1) != nil {
		t.Error("expected no glyph at char 1")
	}
}

func TestDrcs_DesignationSelectsDrcsCharset(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString(decdld("{", "~"))
	term.WriteString("\x1b({")

	term.mu.RLock()
	cs := term.charsets[0]
	term.mu.RUnlock()
	if cs != CharsetDRCS {
		t.Errorf("expected G0 designated DRCS, got %v", cs)
	}
}

func TestDrcs_PrintedCellCarriesSlotID(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString(decdld("{", "~"))
	term.WriteString("\x1b({A")

	cell := term.Cell(0, 0)
	if cell.Char != 'A' {
		t.Errorf("expected raw character kept, got %q", cell.Char)
	}
	if cell.Drcs != '{' {
		t.Errorf("expected cell tagged with bank '{', got %q", cell.Drcs)
	}

	// Back to ASCII: subsequent cells carry no bank.
	term.WriteString("\x1b(BA")
	if cell := term.Cell(0, 1); cell.Drcs != 0 {
		t.Errorf("expected no bank after ASCII designation, got %q", cell.Drcs)
	}
}

func TestDrcs_DesignationByLoadedDscsFinal(t *testing.T) {
	term := New(WithSize(24, 80))
	// A bank loaded under Dscs '@' is addressable by ESC ( @ even though
	// '@' names no built-in set.
	term.WriteString(decdld("@", "~"))
	term.WriteString("\x1b(@A")

	cell := term.Cell(0, 0)
	if cell.Drcs != '@' {
		t.Errorf("expected cell tagged with bank '@', got %q", cell.Drcs)
	}
	if term.DrcsGlyphAt(cell.Drcs, 1) == nil {
		t.Error("expected the cell's bank to resolve to the loaded glyphs")
	}
}

func TestDrcs_SlotSurvivesSaveRestoreCursor(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString(decdld("{", "~"))
	term.WriteString("\x1b({\x1b7\x1b(B\x1b8A")

	if cell := term.Cell(0, 0); cell.Drcs != '{' {
		t.Errorf("expected DECRC to restore the DRCS designation, got %q", cell.Drcs)
	}
}

func TestDrcs_UnknownSlotReturnsNil(t *testing.T) {
	term := New(WithSize(24, 80))
	if term.DrcsGlyphAt('Z', 1) != nil {
		t.Error("expected nil for unloaded slot")
	}
}

func TestDrcs_ClearedByHardReset(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString(decdld("{", "~"))
	term.WriteString("\x1bc")

	if term.DrcsGlyphAt('{', 1) != nil {
		t.Error("expected RIS to drop loaded soft fonts")
	}
}
