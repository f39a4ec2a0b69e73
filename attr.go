package vtcore

import "image/color"

// LineClearMode selects which portion of the current line EL (CSI K) clears.
type LineClearMode int

const (
	LineClearModeRight LineClearMode = iota
	LineClearModeLeft
	LineClearModeAll
)

// ClearMode selects which portion of the screen ED (CSI J) clears.
type ClearMode int

const (
	ClearModeBelow ClearMode = iota
	ClearModeAbove
	ClearModeAll
	ClearModeSaved
)

// TabulationClearMode selects which tab stops TBC (CSI g) clears.
type TabulationClearMode int

const (
	TabulationClearModeCurrent TabulationClearMode = iota
	TabulationClearModeAll
)

// WireMode identifies a DEC private or ANSI mode number as carried on the wire
// by SM/RM (CSI h/l) and DECSET/DECRST (CSI ? h/l), independent of the internal
// TerminalMode bitmask used to store the resulting state.
type WireMode int

const (
	WireModeCursorKeys WireMode = iota
	WireModeColumnMode
	WireModeInsert
	WireModeOrigin
	WireModeLineWrap
	WireModeBlinkingCursor
	WireModeLineFeedNewLine
	WireModeShowCursor
	WireModeReportMouseClicks
	WireModeReportCellMouseMotion
	WireModeReportAllMouseMotion
	WireModeReportFocusInOut
	WireModeUTF8Mouse
	WireModeSGRMouse
	WireModeAlternateScroll
	WireModeUrgencyHints
	WireModeSwapScreenAndSetRestoreCursor
	WireModeBracketedPaste
	WireModeSwapScreen
	WireModeSaveRestoreCursor
	WireModeSixelDisplay
)

// KeyboardMode is a bitmask of Kitty keyboard protocol flags (CSI > u / CSI = u).
type KeyboardMode uint8

const KeyboardModeNoMode KeyboardMode = 0

const (
	KeyboardModeDisambiguateEscapeCodes KeyboardMode = 1 << iota
	KeyboardModeReportEventTypes
	KeyboardModeReportAlternateKeys
	KeyboardModeReportAllKeysAsEscapeCodes
	KeyboardModeReportAssociatedText
)

// KeyboardModeBehavior selects how a pushed KeyboardMode combines with the current one.
type KeyboardModeBehavior int

const (
	KeyboardModeBehaviorReplace KeyboardModeBehavior = iota
	KeyboardModeBehaviorUnion
	KeyboardModeBehaviorDifference
)

// ModifyOtherKeys selects how modified keys are reported (xterm modifyOtherKeys, CSI > 4 ; n m).
type ModifyOtherKeys int

const (
	ModifyOtherKeysReset ModifyOtherKeys = iota
	ModifyOtherKeysExceptSpecial
	ModifyOtherKeysAll
)

// ShellIntegrationMark identifies which OSC 133 shell-integration marker was received.
type ShellIntegrationMark int

const (
	PromptStart ShellIntegrationMark = iota
	CommandStart
	CommandExecuted
	CommandFinished
)

// CharAttribute identifies an SGR (Select Graphic Rendition) parameter's effect.
type CharAttribute int

const (
	CharAttributeReset CharAttribute = iota
	CharAttributeBold
	CharAttributeDim
	CharAttributeItalic
	CharAttributeUnderline
	CharAttributeDoubleUnderline
	CharAttributeCurlyUnderline
	CharAttributeDottedUnderline
	CharAttributeDashedUnderline
	CharAttributeBlinkSlow
	CharAttributeBlinkFast
	CharAttributeReverse
	CharAttributeHidden
	CharAttributeStrike
	CharAttributeOverline
	CharAttributeCancelOverline
	CharAttributeCancelBold
	CharAttributeCancelBoldDim
	CharAttributeCancelItalic
	CharAttributeCancelUnderline
	CharAttributeCancelBlink
	CharAttributeCancelReverse
	CharAttributeCancelHidden
	CharAttributeCancelStrike
	CharAttributeForeground
	CharAttributeBackground
	CharAttributeUnderlineColor
)

// RGBColor is a literal 24-bit color carried by an SGR 38/48/58 ; 2 sub-sequence.
type RGBColor struct {
	R, G, B uint8
}

// PaletteColor is a palette index carried by an SGR 38/48/58 ; 5 sub-sequence.
type PaletteColor struct {
	Index uint8
}

// TerminalCharAttribute is one decoded SGR parameter, folded from raw CSI params
// by applySGRParams. At most one of RGBColor/IndexedColor/NamedColor is set, and
// only for the Foreground/Background/UnderlineColor attribute kinds.
type TerminalCharAttribute struct {
	Attr         CharAttribute
	RGBColor     *RGBColor
	IndexedColor *PaletteColor
	NamedColor   *int
}

// applySGRParams decodes the SGR (CSI ... m) parameter list into a sequence of
// TerminalCharAttribute values and applies each via fn. Handles both the
// semicolon-separated legacy indexed/RGB color forms (38;5;N and 38;2;R;G;B)
// and the colon-separated sub-parameter form (38:5:N and 38:2:R:G:B), per
// ITU T.416.
func applySGRParams(params *Params, fn func(TerminalCharAttribute)) {
	if params.Count() == 0 {
		fn(TerminalCharAttribute{Attr: CharAttributeReset})
		return
	}

	i := 0
	for i < params.Count() {
		p := params.Get(i, 0)

		switch p {
		case 0:
			fn(TerminalCharAttribute{Attr: CharAttributeReset})
		case 1:
			fn(TerminalCharAttribute{Attr: CharAttributeBold})
		case 2:
			fn(TerminalCharAttribute{Attr: CharAttributeDim})
		case 3:
			fn(TerminalCharAttribute{Attr: CharAttributeItalic})
		case 4:
			if params.SubCount(i) > 1 {
				switch params.GetSub(i, 1, 1) {
				case 0:
					fn(TerminalCharAttribute{Attr: CharAttributeCancelUnderline})
				case 2:
					fn(TerminalCharAttribute{Attr: CharAttributeDoubleUnderline})
				case 3:
					fn(TerminalCharAttribute{Attr: CharAttributeCurlyUnderline})
				case 4:
					fn(TerminalCharAttribute{Attr: CharAttributeDottedUnderline})
				case 5:
					fn(TerminalCharAttribute{Attr: CharAttributeDashedUnderline})
				default:
					fn(TerminalCharAttribute{Attr: CharAttributeUnderline})
				}
			} else {
				fn(TerminalCharAttribute{Attr: CharAttributeUnderline})
			}
		case 5:
			fn(TerminalCharAttribute{Attr: CharAttributeBlinkSlow})
		case 6:
			fn(TerminalCharAttribute{Attr: CharAttributeBlinkFast})
		case 7:
			fn(TerminalCharAttribute{Attr: CharAttributeReverse})
		case 8:
			fn(TerminalCharAttribute{Attr: CharAttributeHidden})
		case 9:
			fn(TerminalCharAttribute{Attr: CharAttributeStrike})
		case 21:
			fn(TerminalCharAttribute{Attr: CharAttributeDoubleUnderline})
		case 53:
			fn(TerminalCharAttribute{Attr: CharAttributeOverline})
		case 55:
			fn(TerminalCharAttribute{Attr: CharAttributeCancelOverline})
		case 22:
			fn(TerminalCharAttribute{Attr: CharAttributeCancelBoldDim})
		case 23:
			fn(TerminalCharAttribute{Attr: CharAttributeCancelItalic})
		case 24:
			fn(TerminalCharAttribute{Attr: CharAttributeCancelUnderline})
		case 25:
			fn(TerminalCharAttribute{Attr: CharAttributeCancelBlink})
		case 27:
			fn(TerminalCharAttribute{Attr: CharAttributeCancelReverse})
		case 28:
			fn(TerminalCharAttribute{Attr: CharAttributeCancelHidden})
		case 29:
			fn(TerminalCharAttribute{Attr: CharAttributeCancelStrike})
		case 30, 31, 32, 33, 34, 35, 36, 37:
			name := int(p - 30)
			fn(TerminalCharAttribute{Attr: CharAttributeForeground, NamedColor: &name})
		case 38:
			attr, consumed := parseExtendedColor(params, i, CharAttributeForeground)
			fn(attr)
			i += consumed
			continue
		case 39:
			fn(TerminalCharAttribute{Attr: CharAttributeForeground})
		case 40, 41, 42, 43, 44, 45, 46, 47:
			name := int(p - 40)
			fn(TerminalCharAttribute{Attr: CharAttributeBackground, NamedColor: &name})
		case 48:
			attr, consumed := parseExtendedColor(params, i, CharAttributeBackground)
			fn(attr)
			i += consumed
			continue
		case 49:
			fn(TerminalCharAttribute{Attr: CharAttributeBackground})
		case 58:
			attr, consumed := parseExtendedColor(params, i, CharAttributeUnderlineColor)
			fn(attr)
			i += consumed
			continue
		case 59:
			fn(TerminalCharAttribute{Attr: CharAttributeUnderlineColor})
		case 90, 91, 92, 93, 94, 95, 96, 97:
			name := int(p-90) + 8
			fn(TerminalCharAttribute{Attr: CharAttributeForeground, NamedColor: &name})
		case 100, 101, 102, 103, 104, 105, 106, 107:
			name := int(p-100) + 8
			fn(TerminalCharAttribute{Attr: CharAttributeBackground, NamedColor: &name})
		}

		i++
	}
}

// Apply folds this decoded SGR parameter into tmpl, resolving any carried
// color through resolve. This is where SGR semantics turn into CellFlags and
// colors on a CellTemplate, rather than living inline in the dispatch path.
func (attr TerminalCharAttribute) Apply(tmpl *CellTemplate, resolve func(TerminalCharAttribute) color.Color) {
	switch attr.Attr {
	case CharAttributeReset:
		*tmpl = NewCellTemplate()

	case CharAttributeBold:
		tmpl.SetFlag(CellFlagBold)

	case CharAttributeDim:
		tmpl.SetFlag(CellFlagDim)

	case CharAttributeItalic:
		tmpl.SetFlag(CellFlagItalic)

	case CharAttributeUnderline:
		tmpl.SetFlag(CellFlagUnderline)
		tmpl.ClearFlag(CellFlagDoubleUnderline | CellFlagCurlyUnderline | CellFlagDottedUnderline | CellFlagDashedUnderline)

	case CharAttributeDoubleUnderline:
		tmpl.SetFlag(CellFlagDoubleUnderline)
		tmpl.ClearFlag(CellFlagUnderline | CellFlagCurlyUnderline | CellFlagDottedUnderline | CellFlagDashedUnderline)

	case CharAttributeCurlyUnderline:
		tmpl.SetFlag(CellFlagCurlyUnderline)
		tmpl.ClearFlag(CellFlagUnderline | CellFlagDoubleUnderline | CellFlagDottedUnderline | CellFlagDashedUnderline)

	case CharAttributeDottedUnderline:
		tmpl.SetFlag(CellFlagDottedUnderline)
		tmpl.ClearFlag(CellFlagUnderline | CellFlagDoubleUnderline | CellFlagCurlyUnderline | CellFlagDashedUnderline)

	case CharAttributeDashedUnderline:
		tmpl.SetFlag(CellFlagDashedUnderline)
		tmpl.ClearFlag(CellFlagUnderline | CellFlagDoubleUnderline | CellFlagCurlyUnderline | CellFlagDottedUnderline)

	case CharAttributeBlinkSlow:
		tmpl.SetFlag(CellFlagBlinkSlow)

	case CharAttributeBlinkFast:
		tmpl.SetFlag(CellFlagBlinkFast)

	case CharAttributeReverse:
		tmpl.SetFlag(CellFlagReverse)

	case CharAttributeHidden:
		tmpl.SetFlag(CellFlagHidden)

	case CharAttributeStrike:
		tmpl.SetFlag(CellFlagStrike)

	case CharAttributeOverline:
		tmpl.SetFlag(CellFlagOverline)

	case CharAttributeCancelOverline:
		tmpl.ClearFlag(CellFlagOverline)

	case CharAttributeCancelBold:
		tmpl.ClearFlag(CellFlagBold)

	case CharAttributeCancelBoldDim:
		tmpl.ClearFlag(CellFlagBold | CellFlagDim)

	case CharAttributeCancelItalic:
		tmpl.ClearFlag(CellFlagItalic)

	case CharAttributeCancelUnderline:
		tmpl.ClearFlag(CellFlagUnderline | CellFlagDoubleUnderline | CellFlagCurlyUnderline | CellFlagDottedUnderline | CellFlagDashedUnderline)

	case CharAttributeCancelBlink:
		tmpl.ClearFlag(CellFlagBlinkSlow | CellFlagBlinkFast)

	case CharAttributeCancelReverse:
		tmpl.ClearFlag(CellFlagReverse)

	case CharAttributeCancelHidden:
		tmpl.ClearFlag(CellFlagHidden)

	case CharAttributeCancelStrike:
		tmpl.ClearFlag(CellFlagStrike)

	case CharAttributeForeground:
		tmpl.Fg = resolve(attr)

	case CharAttributeBackground:
		tmpl.Bg = resolve(attr)

	case CharAttributeUnderlineColor:
		if attr.RGBColor == nil && attr.IndexedColor == nil && attr.NamedColor == nil {
			tmpl.UnderlineColor = nil
		} else {
			tmpl.UnderlineColor = resolve(attr)
		}
	}
}

// parseExtendedColor decodes an SGR 38/48/58 extended color sub-sequence starting
// at params index i, returning the resolved attribute and the number of leading
// params it consumed (1 for the colon-subparam form, more for the legacy
// semicolon-separated form).
func parseExtendedColor(params *Params, i int, attr CharAttribute) (TerminalCharAttribute, int) {
	if params.SubCount(i) > 1 {
		switch params.GetSub(i, 1, -1) {
		case 2:
			return TerminalCharAttribute{
				Attr: attr,
				RGBColor: &RGBColor{
					R: uint8(params.GetSub(i, 2, 0)),
					G: uint8(params.GetSub(i, 3, 0)),
					B: uint8(params.GetSub(i, 4, 0)),
				},
			}, 1
		case 5:
			return TerminalCharAttribute{
				Attr:         attr,
				IndexedColor: &PaletteColor{Index: uint8(params.GetSub(i, 2, 0))},
			}, 1
		}
		return TerminalCharAttribute{Attr: attr}, 1
	}

	mode := params.Get(i+1, -1)
	switch mode {
	case 2:
		return TerminalCharAttribute{
			Attr: attr,
			RGBColor: &RGBColor{
				R: uint8(params.Get(i+2, 0)),
				G: uint8(params.Get(i+3, 0)),
				B: uint8(params.Get(i+4, 0)),
			},
		}, 5
	case 5:
		return TerminalCharAttribute{
			Attr:         attr,
			IndexedColor: &PaletteColor{Index: uint8(params.Get(i+2, 0))},
		}, 3
	default:
		return TerminalCharAttribute{Attr: attr}, 1
	}
}
