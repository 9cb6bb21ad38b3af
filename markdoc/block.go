package markdoc

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Compile parses Markdown source into an ordered list of phases: batches of
// edit operations split apart by tables, which each become their own phase.
//
// Within a batch the position index is 1-based relative to the insertion
// point at phase start and only ever increases. A table resets the running
// index to 1 because the true index is unknowable here: it depends on live
// document state that only the executing caller can query.
func Compile(content string) []Phase {
	var c compiler
	c.run(content)
	return c.done()
}

// CompileFlat parses Markdown source into a single batch, rendering any
// tables in place as monospaced box-drawing text instead of splitting
// phases. The result can be applied in one shot with no live-index queries.
func CompileFlat(content string) Batch {
	var c compiler
	c.flat = true
	c.run(content)
	phases := c.done()
	if len(phases) == 0 {
		return nil
	}
	return phases[0].(Batch)
}

type compiler struct {
	phaser
	index   int
	flat    bool
	pending []Request // inline spans withheld until after block styles
}

func (c *compiler) run(content string) {
	c.index = 1 // document content starts at index 1

	lines := strings.Split(content, "\n")
	for i := 0; i < len(lines); {
		line := lines[i]

		if strings.HasPrefix(line, "```") {
			i = c.codeFence(lines, i+1)
			continue
		}
		if isRuleLine(strings.TrimSpace(line)) {
			c.horizontalRule()
			i++
			continue
		}
		if isTableLine(line) {
			run := []string{line}
			for i++; i < len(lines) && isTableLine(lines[i]); i++ {
				run = append(run, lines[i])
			}
			c.emitTable(ParseTable(run))
			continue
		}
		if level, rest, ok := headingLine(line); ok {
			c.heading(level, rest)
			i++
			continue
		}
		if rest, ok := blockquoteLine(line); ok {
			c.blockquote(rest)
			i++
			continue
		}
		if checked, rest, ok := taskLine(line); ok {
			c.taskItem(checked, rest)
			i++
			continue
		}
		if nest, rest, ok := listLine(line, bulletMarker); ok {
			c.listItem(rest, nest, "BULLET_DISC_CIRCLE_SQUARE")
			i++
			continue
		}
		if nest, rest, ok := listLine(line, numberMarker); ok {
			c.listItem(rest, nest, "NUMBERED_DECIMAL_NESTED")
			i++
			continue
		}

		if strings.TrimSpace(line) != "" {
			c.paragraph(line)
		} else if i < len(lines)-1 {
			// blank line: paragraph break, except a final one which would
			// only add a stray trailing newline
			c.push(insertText(c.index, "\n"))
			c.index++
		}
		i++
	}
}

// codeFence consumes verbatim lines from i until a closing fence or end of
// input, returning the index of the first unconsumed line.
func (c *compiler) codeFence(lines []string, i int) int {
	var code []string
	for ; i < len(lines) && !strings.HasPrefix(lines[i], "```"); i++ {
		code = append(code, lines[i])
	}
	text := strings.Join(code, "\n") + "\n"
	if strings.TrimSpace(text) != "" {
		end := c.index + utf8.RuneCountInString(text)
		c.push(
			insertText(c.index, text),
			updateTextStyle(c.index, end, TextStyle{
				WeightedFontFamily: &WeightedFontFamily{FontFamily: monoFontFamily},
			}),
			codeBlockStyle(c.index, end),
		)
		c.index = end
	}
	return i + 1
}

func (c *compiler) horizontalRule() {
	text := strings.Repeat("─", 50) + "\n"
	n := utf8.RuneCountInString(text)
	end := c.index + n - 1 // style stops short of the newline
	gray := rgb(0.7, 0.7, 0.7)
	c.push(
		insertText(c.index, text),
		updateTextStyle(c.index, end, TextStyle{ForegroundColor: &gray}),
		alignStyle(c.index, end+1, "CENTER"),
	)
	c.index += n
}

func (c *compiler) emitTable(t Table) {
	if c.flat {
		reqs, end := TextRenderer{}.render(t, c.index)
		c.push(reqs...)
		c.index = end
		return
	}
	c.table(t)
	c.index = 1 // sentinel: real index unknown until the caller queries the live document
}

func (c *compiler) heading(level int, text string) {
	end := c.inserted(text + "\n")
	c.push(namedStyle(c.index, end, fmt.Sprintf("HEADING_%d", level)))
	c.pushSpans(end)
}

func (c *compiler) blockquote(text string) {
	end := c.inserted(text + "\n")
	start := c.index
	gray := rgb(0.4, 0.4, 0.4)
	c.push(
		blockquoteStyle(start, end),
		// italic gray over the text itself, excluding the trailing newline
		updateTextStyle(start, end-1, TextStyle{Italic: boolp(true), ForegroundColor: &gray}),
	)
	c.pushSpans(end)
}

func (c *compiler) taskItem(checked bool, text string) {
	glyph := "☐ "
	if checked {
		glyph = "☑ "
	}
	end := c.inserted(glyph + text + "\n")
	start := c.index
	c.push(createBullets(start, end, "BULLET_DISC_CIRCLE_SQUARE"))
	if checked {
		gray := rgb(0.6, 0.6, 0.6)
		// strike the task text, not its two-rune glyph prefix
		c.push(updateTextStyle(start+2, end-1, TextStyle{
			Strikethrough:   boolp(true),
			ForegroundColor: &gray,
		}))
	}
	c.pushSpans(end)
}

func (c *compiler) listItem(text string, nest int, preset string) {
	_ = nest // nesting renders via the preset's per-level glyphs, not per item
	end := c.inserted(text + "\n")
	c.push(createBullets(c.index, end, preset))
	c.pushSpans(end)
}

func (c *compiler) paragraph(line string) {
	c.pushSpans(c.inserted(line + "\n"))
}

// inserted runs the inline formatter over text, pushes the resulting insert
// operation, and returns the end index of the clean text. The formatter's
// style spans are withheld until pushSpans so that block-level styles land
// between the insert and the inline spans, as executors expect.
func (c *compiler) inserted(text string) (end int) {
	clean, spans := FormatInline(text, c.index)
	c.push(insertText(c.index, clean))
	c.pending = spans
	return c.index + utf8.RuneCountInString(clean)
}

func (c *compiler) pushSpans(end int) {
	c.push(c.pending...)
	c.pending = nil
	c.index = end
}

func isRuleLine(s string) bool {
	if len(s) < 3 {
		return false
	}
	d := s[0]
	if d != '-' && d != '*' && d != '_' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != d {
			return false
		}
	}
	return true
}

func isTableLine(line string) bool {
	s := strings.TrimSpace(line)
	return len(s) >= 2 && s[0] == '|' && s[len(s)-1] == '|'
}

func headingLine(line string) (level int, text string, ok bool) {
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level < 1 || level > 6 {
		return 0, "", false
	}
	rest, ok := markerGap(line[level:])
	if !ok || rest == "" {
		return 0, "", false
	}
	return level, rest, true
}

func blockquoteLine(line string) (text string, ok bool) {
	if !strings.HasPrefix(line, ">") {
		return "", false
	}
	return strings.TrimLeft(line[1:], " \t"), true
}

func taskLine(line string) (checked bool, text string, ok bool) {
	if len(line) == 0 || (line[0] != '-' && line[0] != '*') {
		return false, "", false
	}
	rest, ok := markerGap(line[1:])
	if !ok || !strings.HasPrefix(rest, "[") || len(rest) < 3 || rest[2] != ']' {
		return false, "", false
	}
	switch rest[1] {
	case 'x', 'X':
		checked = true
	case ' ':
	default:
		return false, "", false
	}
	text, ok = markerGap(rest[3:])
	if !ok || text == "" {
		return false, "", false
	}
	return checked, text, true
}

// listLine matches an optionally indented list marker, converting the
// indent to a nesting level at two spaces per level.
func listLine(line string, marker func(string) (string, bool)) (nest int, text string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	indent := len(line) - len(trimmed)
	rest, ok := marker(trimmed)
	if !ok {
		return 0, "", false
	}
	text, ok = markerGap(rest)
	if !ok || text == "" {
		return 0, "", false
	}
	return indent / 2, text, true
}

func bulletMarker(s string) (string, bool) {
	if len(s) > 0 && (s[0] == '-' || s[0] == '*') {
		return s[1:], true
	}
	return "", false
}

func numberMarker(s string) (string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != '.' {
		return "", false
	}
	return s[i+1:], true
}

// markerGap requires at least one space or tab, then returns what follows.
func markerGap(s string) (string, bool) {
	rest := strings.TrimLeft(s, " \t")
	if len(rest) == len(s) {
		return "", false
	}
	return rest, true
}
