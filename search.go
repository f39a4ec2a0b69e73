package vtcore

import "regexp"

// SearchMatch is one regex match found by a SearchIndex, with highlight range
// expressed in the same (row, col) coordinates as [Position]: rows >= 0 are
// the active grid, rows < 0 address scrollback (-1 is the most recent line).
type SearchMatch struct {
	Row      int
	StartCol int
	EndCol   int // exclusive
	Text     string
}

// SearchIndex builds a searchable view of a terminal's scrollback plus active
// grid on demand, and evaluates a compiled regular expression against it line
// by line. It holds no reference to live terminal state after [NewSearchIndex]
// returns, so a long-running search (e.g. driving a "find next" UI) isn't
// invalidated by further writes to the terminal.
type SearchIndex struct {
	lines []searchLine
}

type searchLine struct {
	row  int // >= 0 for active grid, < 0 for scrollback
	text string
}

// NewSearchIndex snapshots a terminal's scrollback (oldest first) followed by
// its active grid (top to bottom) into a flat, searchable line list.
func NewSearchIndex(t *Terminal) *SearchIndex {
	t.mu.RLock()
	defer t.mu.RUnlock()

	scrollbackLen := t.primaryBuffer.ScrollbackLen()
	lines := make([]searchLine, 0, scrollbackLen+t.rows)

	for i := 0; i < scrollbackLen; i++ {
		line := t.primaryBuffer.ScrollbackLine(i)
		lines = append(lines, searchLine{
			row:  -(scrollbackLen - i),
			text: cellsToSearchText(line),
		})
	}

	for row := 0; row < t.rows; row++ {
		lines = append(lines, searchLine{
			row:  row,
			text: t.activeBuffer.LineContent(row),
		})
	}

	return &SearchIndex{lines: lines}
}

func cellsToSearchText(line []Cell) string {
	if line == nil {
		return ""
	}
	runes := make([]rune, 0, len(line))
	for _, cell := range line {
		if cell.IsWideSpacer() {
			continue
		}
		if cell.Char == 0 {
			runes = append(runes, ' ')
		} else {
			runes = append(runes, cell.Char)
		}
	}
	return string(runes)
}

// Find evaluates pattern as a regular expression against every indexed line
// and returns every match in top-to-bottom order. An invalid pattern returns
// an error and no matches.
func (s *SearchIndex) Find(pattern string) ([]SearchMatch, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return s.FindCompiled(re), nil
}

// FindCompiled evaluates a pre-compiled regular expression, useful when the
// same pattern is reused across several SearchIndex snapshots (e.g. "find
// next" after more output arrives).
func (s *SearchIndex) FindCompiled(re *regexp.Regexp) []SearchMatch {
	var matches []SearchMatch
	for _, line := range s.lines {
		runes := []rune(line.text)
		byteToRune := runeOffsets(line.text)

		for _, loc := range re.FindAllStringIndex(line.text, -1) {
			start := byteToRune[loc[0]]
			end := byteToRune[loc[1]]
			matches = append(matches, SearchMatch{
				Row:      line.row,
				StartCol: start,
				EndCol:   end,
				Text:     string(runes[start:end]),
			})
		}
	}
	return matches
}

// runeOffsets maps each byte offset in s that begins a rune (plus the
// past-the-end offset) to its rune index, so a regexp byte-offset match can
// be converted to the column coordinates the rest of the package uses.
func runeOffsets(s string) map[int]int {
	offsets := make(map[int]int, len(s)+1)
	runeIdx := 0
	for byteIdx := range s {
		offsets[byteIdx] = runeIdx
		runeIdx++
	}
	offsets[len(s)] = runeIdx
	return offsets
}
