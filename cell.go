package vtcore

import "image/color"

// CellFlags is a bitmask of cell rendering attributes. Widened past uint16
// once overline needed a 17th bit.
type CellFlags uint32

const (
	CellFlagBold CellFlags = 1 << iota
	CellFlagDim
	CellFlagItalic
	CellFlagUnderline
	CellFlagDoubleUnderline
	CellFlagCurlyUnderline
	CellFlagDottedUnderline
	CellFlagDashedUnderline
	CellFlagBlinkSlow
	CellFlagBlinkFast
	CellFlagReverse
	CellFlagHidden
	CellFlagStrike
	CellFlagOverline
	CellFlagWideChar
	CellFlagWideCharSpacer
	CellFlagDirty
)

// maxCombining is how many combining marks a cell retains after its base
// character; surplus marks are dropped.
const maxCombining = 2

// Cell stores the character, colors, and formatting attributes for one grid position.
// Wide characters (2 columns) use a spacer cell in the second position.
type Cell struct {
	Char           rune
	Combining      []rune // combining marks attached to Char, at most maxCombining
	Fg             color.Color
	Bg             color.Color
	UnderlineColor color.Color
	Flags          CellFlags
	HyperlinkID    uint32     // 0 means no hyperlink; non-zero resolves via the terminal's HyperlinkTable
	Drcs           byte       // DRCS bank (Dscs final byte) Char resolves against, 0 for font glyphs
	Image          *CellImage // Image reference, nil if no image
}

// Hyperlink describes an OSC 8 link to open: the URI it points at and the
// explicit id= parameter it carried, if any.
type Hyperlink struct {
	ID  string
	URI string
}

// NewCell creates a cell initialized with space character and default colors.
func NewCell() Cell {
	return Cell{
		Char: ' ',
		Fg:   &NamedColor{Name: NamedColorForeground},
		Bg:   &NamedColor{Name: NamedColorBackground},
	}
}

// Reset clears all attributes and sets the cell to default state (space character, default colors).
func (c *Cell) Reset() {
	c.Char = ' '
	c.Combining = nil
	c.Fg = &NamedColor{Name: NamedColorForeground}
	c.Bg = &NamedColor{Name: NamedColorBackground}
	c.UnderlineColor = nil
	c.Flags = 0
	c.HyperlinkID = 0
	c.Drcs = 0
	c.Image = nil
}

// AppendCombining attaches a combining mark to the cell's base character,
// dropping marks past maxCombining.
func (c *Cell) AppendCombining(r rune) {
	if len(c.Combining) < maxCombining {
		c.Combining = append(c.Combining, r)
	}
}

// HasFlag returns true if the specified flag is set.
func (c *Cell) HasFlag(flag CellFlags) bool {
	return c.Flags&flag != 0
}

// SetFlag enables the specified flag without affecting others.
func (c *Cell) SetFlag(flag CellFlags) {
	c.Flags |= flag
}

// ClearFlag disables the specified flag without affecting others.
func (c *Cell) ClearFlag(flag CellFlags) {
	c.Flags &^= flag
}

// IsDirty returns true if the cell was modified since the last ClearDirty call.
func (c *Cell) IsDirty() bool {
	return c.HasFlag(CellFlagDirty)
}

// MarkDirty marks the cell as modified for dirty tracking.
func (c *Cell) MarkDirty() {
	c.SetFlag(CellFlagDirty)
}

// ClearDirty resets the dirty tracking flag.
func (c *Cell) ClearDirty() {
	c.ClearFlag(CellFlagDirty)
}

// IsWide returns true if this cell contains a wide character (CJK, emoji, etc.) that occupies 2 columns.
func (c *Cell) IsWide() bool {
	return c.HasFlag(CellFlagWideChar)
}

// IsWideSpacer returns true if this is the second cell of a wide character (should be skipped during rendering).
func (c *Cell) IsWideSpacer() bool {
	return c.HasFlag(CellFlagWideCharSpacer)
}

// Copy returns a copy of the cell. The hyperlink id and image pointer are
// copied by value; Copy does not touch any reference count, so callers that
// persist the copy (e.g. into scrollback) must retain the id themselves.
// The combining sequence is cloned so later marks on either cell never show
// through the other.
func (c *Cell) Copy() Cell {
	var combining []rune
	if len(c.Combining) > 0 {
		combining = append([]rune(nil), c.Combining...)
	}
	return Cell{
		Char:           c.Char,
		Combining:      combining,
		Fg:             c.Fg,
		Bg:             c.Bg,
		UnderlineColor: c.UnderlineColor,
		Flags:          c.Flags,
		HyperlinkID:    c.HyperlinkID,
		Drcs:           c.Drcs,
		Image:          c.Image,
	}
}

// HasHyperlink returns true if this cell references a hyperlink table entry.
func (c *Cell) HasHyperlink() bool {
	return c.HyperlinkID != 0
}

// HasImage returns true if this cell has an image reference.
func (c *Cell) HasImage() bool {
	return c.Image != nil
}
