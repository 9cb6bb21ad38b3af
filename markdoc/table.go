package markdoc

import (
	"strings"
	"unicode/utf8"
)

// Table is parsed tabular data: the header row fixes the column count, and
// every data row is normalized to it (short rows padded with empty cells,
// long rows truncated).
type Table struct {
	Headers []string
	Rows    [][]string
}

// ParseTable parses a run of |-delimited lines. The first line is the
// header; a second line of dashes/colons/pipes is a separator and skipped;
// everything else becomes data rows.
func ParseTable(lines []string) Table {
	t := Table{Headers: splitCells(lines[0])}
	body := lines[1:]
	if len(body) > 0 && isSeparatorLine(body[0]) {
		body = body[1:]
	}
	for _, line := range body {
		cells := splitCells(line)
		for len(cells) < len(t.Headers) {
			cells = append(cells, "")
		}
		t.Rows = append(t.Rows, cells[:len(t.Headers)])
	}
	return t
}

func splitCells(line string) []string {
	s := strings.Trim(strings.TrimSpace(line), "|")
	cells := strings.Split(s, "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

func isSeparatorLine(line string) bool {
	s := strings.TrimSpace(line)
	if len(s) < 2 || s[0] != '|' || s[len(s)-1] != '|' {
		return false
	}
	for _, c := range s[1 : len(s)-1] {
		switch c {
		case ' ', '\t', '-', ':', '|':
		default:
			return false
		}
	}
	return true
}

// Renderer converts a table into edit operations anchored at a start index.
// The two implementations are interchangeable over the same Table value;
// which to use is the caller's call, typically TextRenderer when everything
// must fit one linear batch and GridRenderer when a live insertion index is
// available.
type Renderer interface {
	Render(t Table, start int) []Request
}

// TextRenderer draws the table as monospaced text with box-drawing borders.
// It needs no live document state: the emitted operations extend the batch
// linearly like any other text.
type TextRenderer struct{}

// GridRenderer builds the document's native table grid and populates its
// cells. The start index must be the live end-of-content index, obtained by
// the caller immediately before rendering.
type GridRenderer struct{}

const minColumnWidth = 10

func (TextRenderer) Render(t Table, start int) []Request {
	reqs, _ := TextRenderer{}.render(t, start)
	return reqs
}

func (TextRenderer) render(t Table, start int) (reqs []Request, end int) {
	widths := t.columnWidths()
	index := start

	emit := func(text string) {
		reqs = append(reqs, insertText(index, text))
		index += utf8.RuneCountInString(text)
	}

	emit(borderLine("┌", "┬", "┐", widths))

	headerStart := index
	headerLine := cellLine(t.Headers, widths)
	emit(headerLine)

	emit(borderLine("├", "┼", "┤", widths))
	for _, row := range t.Rows {
		emit(cellLine(row, widths))
	}
	emit(borderLine("└", "┴", "┘", widths))

	// monospace the whole block so the columns line up
	reqs = append(reqs, updateTextStyle(start, index, TextStyle{
		WeightedFontFamily: &WeightedFontFamily{FontFamily: monoFontFamily},
		FontSize:           &Dimension{Magnitude: 10, Unit: "PT"},
	}))
	// bold the header text between its outer border bars
	reqs = append(reqs, updateTextStyle(
		headerStart+2, headerStart+utf8.RuneCountInString(headerLine)-3,
		TextStyle{Bold: boolp(true)},
	))
	return reqs, index
}

func (t Table) columnWidths() []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = utf8.RuneCountInString(h)
		if widths[i] < minColumnWidth {
			widths[i] = minColumnWidth
		}
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && utf8.RuneCountInString(cell) > widths[i] {
				widths[i] = utf8.RuneCountInString(cell)
			}
		}
	}
	return widths
}

func borderLine(left, mid, right string, widths []int) string {
	var sb strings.Builder
	sb.WriteString(left)
	for i, w := range widths {
		if i > 0 {
			sb.WriteString(mid)
		}
		sb.WriteString(strings.Repeat("─", w+2))
	}
	sb.WriteString(right)
	sb.WriteString("\n")
	return sb.String()
}

func cellLine(cells []string, widths []int) string {
	var sb strings.Builder
	sb.WriteString("│ ")
	for i, w := range widths {
		if i > 0 {
			sb.WriteString(" │ ")
		}
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		sb.WriteString(cell)
		if pad := w - utf8.RuneCountInString(cell); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
	}
	sb.WriteString(" │\n")
	return sb.String()
}

func (GridRenderer) Render(t Table, start int) []Request {
	cols := len(t.Headers)
	reqs := []Request{insertTable(1+len(t.Rows), cols, start)}

	// Populate cells last-to-first: inserting at a later index never moves
	// an earlier pending index, whereas ascending order would invalidate
	// every index after the first insert.
	for row := len(t.Rows); row >= 0; row-- {
		for col := cols - 1; col >= 0; col-- {
			text := t.cell(row, col)
			if text == "" {
				continue
			}
			index := gridCellIndex(start, row, col, cols)
			reqs = append(reqs, insertText(index, text))
			if row == 0 {
				reqs = append(reqs, updateTextStyle(
					index, index+utf8.RuneCountInString(text),
					TextStyle{Bold: boolp(true)},
				))
			}
		}
	}
	return reqs
}

// cell addresses the grid with row 0 as the header row.
func (t Table) cell(row, col int) string {
	if row == 0 {
		return t.Headers[col]
	}
	return t.Rows[row-1][col]
}

// gridCellIndex locates a cell's content within a freshly inserted grid:
// the table structure occupies 4 indices before the first cell, each row
// costs 1 + 2·cols, and each cell 2.
func gridCellIndex(start, row, col, cols int) int {
	return start + 4 + row*(1+2*cols) + col*2
}
