package vtcore

// CursorStyle determines how the cursor is rendered.
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// Cursor tracks the current position and rendering style (0-based coordinates).
type Cursor struct {
	Row     int
	Col     int
	Style   CursorStyle
	Visible bool
}

// NewCursor creates a cursor at (0, 0) with blinking block style, visible.
func NewCursor() *Cursor {
	return &Cursor{
		Row:     0,
		Col:     0,
		Style:   CursorStyleBlinkingBlock,
		Visible: true,
	}
}

// SavedCursor stores cursor position, cell attributes, and charset state for restoration.
// Used when switching between primary and alternate screens.
type SavedCursor struct {
	Row          int
	Col          int
	Attrs        CellTemplate
	OriginMode   bool
	CharsetIndex int
	Charsets     [4]Charset
	CharsetDscs  [4]byte
}

// Capture records the cursor's current position into a new SavedCursor,
// alongside the template and charset state the caller supplies (the cursor
// itself knows nothing about attributes or charsets — those live on
// Terminal). Used by DECSC (ESC 7 / CSI s) to implement save/restore.
func (c *Cursor) Capture(tmpl CellTemplate, originMode bool, charsetIndex int, charsets [4]Charset, charsetDscs [4]byte) *SavedCursor {
	return &SavedCursor{
		Row:          c.Row,
		Col:          c.Col,
		Attrs:        tmpl,
		OriginMode:   originMode,
		CharsetIndex: charsetIndex,
		Charsets:     charsets,
		CharsetDscs:  charsetDscs,
	}
}

// RestorePosition writes the saved row/col back onto c. Attribute and
// charset state are restored separately by the caller, since those live
// outside Cursor itself.
func (s *SavedCursor) RestorePosition(c *Cursor) {
	c.Row = s.Row
	c.Col = s.Col
}

// CellTemplate defines default attributes applied to newly written characters.
// Modified by SGR (Select Graphic Rendition) escape sequences.
type CellTemplate struct {
	Cell
}

// NewCellTemplate creates a template with default attributes (default colors, no flags).
func NewCellTemplate() CellTemplate {
	return CellTemplate{
		Cell: NewCell(),
	}
}

// Charset selects the character encoding variant.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetLineDrawing
	CharsetUK
	CharsetDRCS
)

// CharsetIndex selects one of four character set slots (G0-G3).
type CharsetIndex int

const (
	CharsetIndexG0 CharsetIndex = iota
	CharsetIndexG1
	CharsetIndexG2
	CharsetIndexG3
)
