package markdoc

import (
	"strconv"
	"strings"
)

// RenderMarkdown converts a document model back into Markdown text, one
// output line per paragraph.
//
// This is not the exact inverse of Compile: paragraph segmentation and
// blank-line handling differ between the two directions, so a
// compile-then-render round trip is close but not guaranteed lossless.
func RenderMarkdown(doc *Document) string {
	var lines []string
	for _, el := range doc.Body.Content {
		p := el.Paragraph
		if p == nil {
			continue
		}
		text := renderRuns(p.Elements)
		if text == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, classifyLine(doc, p, text))
	}
	return strings.Join(lines, "\n")
}

func renderRuns(elements []ParagraphElement) string {
	var sb strings.Builder
	for _, pe := range elements {
		tr := pe.TextRun
		if tr == nil || tr.Content == "\n" {
			continue
		}
		sb.WriteString(renderRun(strings.TrimRight(tr.Content, "\n"), tr.TextStyle))
	}
	return sb.String()
}

// renderRun wraps one run's text in delimiters, outermost first: a link
// short-circuits everything else, then code, baseline offset, highlight,
// strikethrough, underline, and finally the bold/italic combination.
func renderRun(text string, ts TextStyle) string {
	if ts.Link != nil {
		return "[" + text + "](" + ts.Link.URL + ")"
	}
	if ts.WeightedFontFamily != nil && isMonoFamily(ts.WeightedFontFamily.FontFamily) {
		return "`" + text + "`"
	}
	switch ts.BaselineOffset {
	case baselineSuper:
		return "^" + text + "^"
	case baselineSub:
		return "~" + text + "~"
	}
	if isHighlight(ts.BackgroundColor) {
		text = "==" + text + "=="
	}
	if ts.Strikethrough != nil && *ts.Strikethrough {
		text = "~~" + text + "~~"
	}
	if ts.Underline != nil && *ts.Underline {
		text = "++" + text + "++"
	}
	bold := ts.Bold != nil && *ts.Bold
	italic := ts.Italic != nil && *ts.Italic
	switch {
	case bold && italic:
		text = "***" + text + "***"
	case bold:
		text = "**" + text + "**"
	case italic:
		text = "*" + text + "*"
	}
	return text
}

func isMonoFamily(family string) bool {
	f := strings.ToLower(family)
	return strings.Contains(f, "courier") || strings.Contains(f, "mono")
}

// isHighlight detects the bright-yellow background the compiler emits for
// ==highlight== spans, with some tolerance for service-side rounding.
func isHighlight(bg *OptionalColor) bool {
	if bg == nil {
		return false
	}
	c := bg.Color.RGBColor
	return c.Red > 0.9 && c.Green > 0.9 && c.Blue < 0.2
}

// classifyLine picks the paragraph's line form: list item, blockquote,
// heading, horizontal rule, or plain text, in that precedence.
func classifyLine(doc *Document, p *Paragraph, text string) string {
	if p.Bullet != nil {
		return listLineFor(doc, p.Bullet, text)
	}
	if p.ParagraphStyle.BorderLeft != nil && p.ParagraphStyle.IndentStart != nil {
		return "> " + text
	}
	if level, ok := headingLevel(p.ParagraphStyle.NamedStyleType); ok {
		return strings.Repeat("#", level) + " " + text
	}
	if isRuleText(text) {
		return "---"
	}
	return text
}

func listLineFor(doc *Document, b *Bullet, text string) string {
	indent := strings.Repeat("  ", b.NestingLevel)

	// task paragraphs carry their state as a glyph prefix in the text
	if rest, ok := strings.CutPrefix(text, "☑ "); ok {
		return indent + "- [x] " + rest
	}
	if rest, ok := strings.CutPrefix(text, "☐ "); ok {
		return indent + "- [ ] " + rest
	}

	switch listGlyphType(doc, b) {
	case "DECIMAL", "ALPHA", "ROMAN":
		return indent + "1. " + text
	}
	return indent + "- " + text
}

func listGlyphType(doc *Document, b *Bullet) string {
	levels := doc.Lists[b.ListID].ListProperties.NestingLevels
	if b.NestingLevel < len(levels) {
		return levels[b.NestingLevel].GlyphType
	}
	return ""
}

func headingLevel(namedStyle string) (int, bool) {
	rest, ok := strings.CutPrefix(namedStyle, "HEADING_")
	if !ok {
		return 0, false
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 {
		return 0, false
	}
	return level, true
}

// isRuleText reports whether the text is nothing but dash glyphs, as the
// forward compiler emits for a horizontal rule.
func isRuleText(text string) bool {
	s := strings.TrimSpace(text)
	if s == "" {
		return false
	}
	for _, c := range s {
		switch c {
		case '─', '-', '—':
		default:
			return false
		}
	}
	return true
}
