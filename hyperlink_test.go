package vtcore

import "testing"

func TestHyperlink_CellsCarryDistinctIDsNotPointers(t *testing.T) {
	term := New(WithSize(3, 20))

	term.WriteString("\x1b]8;;http://a.example\x07AAA\x1b]8;;\x07")
	term.WriteString("\x1b]8;;http://b.example\x07BBB\x1b]8;;\x07")

	a := term.Cell(0, 0)
	b := term.Cell(0, 3)
	if a == nil || b == nil {
		t.Fatal("expected both cells to exist")
	}
	if a.HyperlinkID == 0 || b.HyperlinkID == 0 {
		t.Fatal("expected both cells to carry a non-zero hyperlink id")
	}
	if a.HyperlinkID == b.HyperlinkID {
		t.Error("expected distinct anonymous links to get distinct ids rather than collapsing on an empty id=")
	}

	linkA, ok := term.hyperlinks.Lookup(a.HyperlinkID)
	if !ok || linkA.URI != "http://a.example" {
		t.Errorf("unexpected lookup for link a: %+v ok=%v", linkA, ok)
	}
	linkB, ok := term.hyperlinks.Lookup(b.HyperlinkID)
	if !ok || linkB.URI != "http://b.example" {
		t.Errorf("unexpected lookup for link b: %+v ok=%v", linkB, ok)
	}
}

func TestHyperlink_ExplicitIDReusesSameEntry(t *testing.T) {
	term := New(WithSize(3, 20))

	term.WriteString("\x1b]8;id=x;http://shared.example\x07AA\x1b]8;;\x07")
	term.WriteString("BB") // no link, plain text
	term.WriteString("\x1b]8;id=x;http://shared.example\x07CC\x1b]8;;\x07")

	first := term.Cell(0, 0)
	third := term.Cell(0, 4)
	if first.HyperlinkID == 0 || third.HyperlinkID == 0 {
		t.Fatal("expected both spans to carry a hyperlink id")
	}
	if first.HyperlinkID != third.HyperlinkID {
		t.Error("expected repeating the same explicit id= to reuse the same table entry")
	}
}

func TestHyperlink_RefCountMatchesReferencingCells(t *testing.T) {
	term := New(WithSize(3, 20))

	term.WriteString("\x1b]8;;http://example.com\x07hello\x1b]8;;\x07")

	id := term.Cell(0, 0).HyperlinkID
	if id == 0 {
		t.Fatal("expected a hyperlink id")
	}

	count := 0
	for col := 0; col < 5; col++ {
		if term.Cell(0, col).HyperlinkID == id {
			count++
		}
	}
	if got := term.hyperlinks.RefCount(id); got != count {
		t.Errorf("refcount = %d, want %d (cells referencing it)", got, count)
	}
}

func TestHyperlink_ClearingCellsReleasesReference(t *testing.T) {
	term := New(WithSize(3, 20))

	term.WriteString("\x1b]8;;http://example.com\x07hi\x1b]8;;\x07")
	id := term.Cell(0, 0).HyperlinkID
	if term.hyperlinks.RefCount(id) == 0 {
		t.Fatal("expected a positive refcount before clearing")
	}

	term.ClearScreen(ClearModeAll)

	if got := term.hyperlinks.RefCount(id); got != 0 {
		t.Errorf("refcount after clearing the screen = %d, want 0", got)
	}
	if term.hyperlinks.Len() != 0 {
		t.Errorf("expected the hyperlink table to be empty, got %d entries", term.hyperlinks.Len())
	}
}

func TestHyperlink_OverwritingACellReleasesItsOldLink(t *testing.T) {
	term := New(WithSize(3, 20))

	term.WriteString("\x1b]8;;http://example.com\x07X\x1b]8;;\x07")
	id := term.Cell(0, 0).HyperlinkID

	term.Goto(0, 0)
	term.Input('y') // link was already closed above, so this writes plain text

	if got := term.Cell(0, 0).HyperlinkID; got != 0 {
		t.Errorf("expected overwritten cell to have no hyperlink id, got %d", got)
	}
	if got := term.hyperlinks.RefCount(id); got != 0 {
		t.Errorf("expected old link's refcount to drop to 0, got %d", got)
	}
}

func TestClearScreen_ModeSavedClearsScrollbackToo(t *testing.T) {
	storage := NewMemoryScrollback(100)
	term := New(WithSize(3, 10), WithScrollback(storage))

	term.WriteString("line1\r\nline2\r\nline3\r\nline4\r\n")
	if term.ScrollbackLen() == 0 {
		t.Fatal("expected some scrollback before CSI 3 J")
	}

	term.WriteString("\x1b[3J")

	if got := term.ScrollbackLen(); got != 0 {
		t.Errorf("expected CSI 3 J to clear scrollback, got %d lines remaining", got)
	}
	if got := term.LineContent(0); got != "" {
		t.Errorf("expected active screen cleared too, row 0 = %q", got)
	}
}

func TestOverline_SGR53SetsFlagAnd55Resets(t *testing.T) {
	term := New(WithSize(3, 10))

	term.WriteString("\x1b[53mA")
	cell := term.Cell(0, 0)
	if cell == nil || !cell.HasFlag(CellFlagOverline) {
		t.Fatal("expected SGR 53 to set the overline flag")
	}

	term.WriteString("\x1b[55mB")
	cell = term.Cell(0, 1)
	if cell == nil || cell.HasFlag(CellFlagOverline) {
		t.Error("expected SGR 55 to clear the overline flag on subsequently written cells")
	}
}
