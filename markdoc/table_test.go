package markdoc_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docwell/docmd/markdoc"
)

func TestParseTable_normalizesRows(t *testing.T) {
	table := markdoc.ParseTable([]string{
		"| A | B | C |",
		"|---|---|---|",
		"| 1 |",
		"| 1 | 2 | 3 | 4 | 5 |",
		"| 1 | 2 | 3 |",
	})
	require.Equal(t, []string{"A", "B", "C"}, table.Headers)
	require.Len(t, table.Rows, 3)
	for i, row := range table.Rows {
		assert.Len(t, row, len(table.Headers), "row %d normalized to header width", i)
	}
	assert.Equal(t, []string{"1", "", ""}, table.Rows[0], "short row padded")
	assert.Equal(t, []string{"1", "2", "3"}, table.Rows[1], "long row truncated")
}

func TestParseTable_separatorOptional(t *testing.T) {
	table := markdoc.ParseTable([]string{"| A |", "| 1 |"})
	assert.Equal(t, [][]string{{"1"}}, table.Rows, "no separator line required")

	table = markdoc.ParseTable([]string{"| A |", "| :--- |", "| 1 |"})
	assert.Equal(t, [][]string{{"1"}}, table.Rows, "colon-aligned separator skipped")
}

func TestTextRenderer(t *testing.T) {
	table := markdoc.ParseTable([]string{"| A | B |", "|---|---|", "| 1 | 2 |"})
	reqs := markdoc.TextRenderer{}.Render(table, 1)

	var lines []string
	for _, req := range reqs {
		if req.InsertText != nil {
			lines = append(lines, req.InsertText.Text)
		}
	}
	require.Len(t, lines, 5, "top border, header, separator, one row, bottom border")

	for i, line := range lines {
		assert.True(t, strings.HasSuffix(line, "\n"), "line %d terminated", i)
		width := utf8.RuneCountInString(line)
		assert.Equal(t, utf8.RuneCountInString(lines[0]), width, "line %d same width", i)
		assert.GreaterOrEqual(t, width, 2*(10+2)+3+1, "columns at least 10 wide")
	}
	assert.True(t, strings.HasPrefix(lines[0], "┌") && strings.HasSuffix(lines[0], "┐\n"))
	assert.True(t, strings.HasPrefix(lines[1], "│ A") && strings.Contains(lines[1], "│ B"))
	assert.True(t, strings.HasPrefix(lines[2], "├") && strings.HasSuffix(lines[2], "┤\n"))
	assert.True(t, strings.HasPrefix(lines[3], "│ 1") && strings.HasSuffix(lines[3], "│\n"))
	assert.True(t, strings.HasPrefix(lines[4], "└") && strings.HasSuffix(lines[4], "┘\n"))

	// trailing style pair: monospace over the block, bold over the header
	n := len(reqs)
	mono := reqs[n-2].UpdateTextStyle
	require.NotNil(t, mono)
	assert.Equal(t, "Courier New", mono.TextStyle.WeightedFontFamily.FontFamily)
	assert.Equal(t, float64(10), mono.TextStyle.FontSize.Magnitude)

	bold := reqs[n-1].UpdateTextStyle
	require.NotNil(t, bold)
	require.NotNil(t, bold.TextStyle.Bold)
	headerStart := 1 + utf8.RuneCountInString(lines[0])
	assert.Equal(t, headerStart+2, bold.Range.StartIndex)
	assert.Equal(t, headerStart+utf8.RuneCountInString(lines[1])-3, bold.Range.EndIndex,
		"bold stops inside the closing border bar")
}

func TestTextRenderer_widthTracksWidestCell(t *testing.T) {
	table := markdoc.ParseTable([]string{
		"| A |",
		"| a very long cell value |",
	})
	reqs := markdoc.TextRenderer{}.Render(table, 1)
	row := reqs[3].InsertText
	require.NotNil(t, row)
	assert.Contains(t, row.Text, "a very long cell value")
	header := reqs[1].InsertText
	require.NotNil(t, header)
	assert.Equal(t, utf8.RuneCountInString(row.Text), utf8.RuneCountInString(header.Text))
}

func TestGridRenderer(t *testing.T) {
	table := markdoc.ParseTable([]string{
		"| A | B |",
		"|---|---|",
		"| 1 | 2 |",
		"| 3 |",
	})
	start := 17
	reqs := markdoc.GridRenderer{}.Render(table, start)

	grid := reqs[0].InsertTable
	require.NotNil(t, grid, "grid creation comes first")
	assert.Equal(t, 3, grid.Rows, "header plus two data rows")
	assert.Equal(t, 2, grid.Columns)
	assert.Equal(t, start, grid.Location.Index)

	// cell inserts run strictly descending so pending indices stay valid
	var cells []*markdoc.InsertTextRequest
	for _, req := range reqs[1:] {
		if req.InsertText != nil {
			cells = append(cells, req.InsertText)
		}
	}
	require.NotEmpty(t, cells)
	for i := 1; i < len(cells); i++ {
		assert.Less(t, cells[i].Location.Index, cells[i-1].Location.Index,
			"cell %d inserted at a strictly lower index", i)
	}

	// empty padded cell of the short row is skipped
	for _, cell := range cells {
		assert.NotEmpty(t, cell.Text)
	}
	assert.Len(t, cells, 5)

	// header cells alone get a bold span matching the inserted length
	var bolds []*markdoc.UpdateTextStyleRequest
	for _, req := range reqs[1:] {
		if req.UpdateTextStyle != nil {
			bolds = append(bolds, req.UpdateTextStyle)
		}
	}
	require.Len(t, bolds, 2)
	for _, b := range bolds {
		assert.Equal(t, 1, b.Range.EndIndex-b.Range.StartIndex)
		require.NotNil(t, b.TextStyle.Bold)
	}

	// spot check the index formula: start + 4 + row·(1+2C) + col·2
	assert.Equal(t, start+4, lastCell(cells).Location.Index, "header cell (0,0)")
	assert.Equal(t, start+4+1*(1+2*2)+1*2, cellWithText(t, cells, "2").Location.Index)
	assert.Equal(t, start+4+2*(1+2*2), cellWithText(t, cells, "3").Location.Index)
}

func lastCell(cells []*markdoc.InsertTextRequest) *markdoc.InsertTextRequest {
	return cells[len(cells)-1]
}

func cellWithText(t *testing.T, cells []*markdoc.InsertTextRequest, text string) *markdoc.InsertTextRequest {
	t.Helper()
	for _, c := range cells {
		if c.Text == text {
			return c
		}
	}
	t.Fatalf("no cell with text %q", text)
	return nil
}

func TestGridCellIndexMonotonic(t *testing.T) {
	// indices must order lexically by (row, col) for every grid shape, or
	// the descending insertion strategy would not be safe
	for _, cols := range []int{1, 2, 3, 7} {
		for _, rows := range []int{1, 2, 5} {
			start := 1
			prev := -1
			for row := 0; row <= rows; row++ {
				for col := 0; col < cols; col++ {
					idx := start + 4 + row*(1+2*cols) + col*2
					require.Greater(t, idx, prev,
						"cols=%d rows=%d cell(%d,%d)", cols, rows, row, col)
					prev = idx
				}
			}
		}
	}
}
