package markdoc

import (
	"strings"
	"unicode/utf8"
)

// Inline delimiter grammar: a single left-to-right pass over one line of
// text, trying each rule below in order at every scan position and taking
// the first match. Inner spans are shortest-match and never nest; unmatched
// delimiter characters fall through as literal text.
//
// Position indices count runes, matching how the document service addresses
// content, so all advancement here is in runes rather than bytes.

const (
	monoFontFamily = "Courier New"

	baselineSuper = "SUPERSCRIPT"
	baselineSub   = "SUBSCRIPT"
)

// inlineMatch is one recognized delimited span: the clean text it emits,
// how many source bytes it consumed, and the style to apply over the clean
// text.
type inlineMatch struct {
	clean string
	size  int
	style TextStyle
}

type inlineRule func(s string) (inlineMatch, bool)

// inlineRules in match precedence order.
var inlineRules = []inlineRule{
	matchLink,
	matchStrikethrough,
	matchHighlight,
	matchUnderline,
	matchSuperscript,
	matchSubscript,
	matchBoldItalic,
	matchBold,
	matchItalic,
	matchInlineCode,
}

// FormatInline strips inline delimiters from one line of text, returning
// the clean text plus style operations whose indices are absolute, assuming
// the clean text will be inserted at index at.
func FormatInline(text string, at int) (string, []Request) {
	var (
		out   strings.Builder
		spans []Request
		pos   = at
	)
	for i := 0; i < len(text); {
		if m, ok := matchInlineAt(text[i:]); ok {
			out.WriteString(m.clean)
			n := utf8.RuneCountInString(m.clean)
			spans = append(spans, updateTextStyle(pos, pos+n, m.style))
			pos += n
			i += m.size
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		out.WriteRune(r)
		pos++
		i += size
	}
	return out.String(), spans
}

func matchInlineAt(s string) (inlineMatch, bool) {
	for _, rule := range inlineRules {
		if m, ok := rule(s); ok {
			return m, true
		}
	}
	return inlineMatch{}, false
}

func matchLink(s string) (inlineMatch, bool) {
	if !strings.HasPrefix(s, "[") {
		return inlineMatch{}, false
	}
	label, i, ok := spanTo(s[1:], ']')
	if !ok {
		return inlineMatch{}, false
	}
	rest := s[1+i:]
	if !strings.HasPrefix(rest, "(") {
		return inlineMatch{}, false
	}
	url, j, ok := spanTo(rest[1:], ')')
	if !ok {
		return inlineMatch{}, false
	}
	return inlineMatch{
		clean: label,
		size:  1 + i + 1 + j,
		style: TextStyle{Link: &Link{URL: url}},
	}, true
}

func matchStrikethrough(s string) (inlineMatch, bool) {
	inner, size, ok := delimited(s, "~~", "~~")
	if !ok {
		return inlineMatch{}, false
	}
	return inlineMatch{inner, size, TextStyle{Strikethrough: boolp(true)}}, true
}

func matchHighlight(s string) (inlineMatch, bool) {
	inner, size, ok := delimited(s, "==", "==")
	if !ok {
		return inlineMatch{}, false
	}
	yellow := rgb(1, 1, 0)
	return inlineMatch{inner, size, TextStyle{BackgroundColor: &yellow}}, true
}

func matchUnderline(s string) (inlineMatch, bool) {
	inner, size, ok := delimited(s, "++", "++")
	if !ok {
		return inlineMatch{}, false
	}
	return inlineMatch{inner, size, TextStyle{Underline: boolp(true)}}, true
}

func matchSuperscript(s string) (inlineMatch, bool) {
	if !strings.HasPrefix(s, "^") {
		return inlineMatch{}, false
	}
	inner, i, ok := spanTo(s[1:], '^')
	if !ok {
		return inlineMatch{}, false
	}
	return inlineMatch{inner, 1 + i, TextStyle{BaselineOffset: baselineSuper}}, true
}

// matchSubscript recognizes single-tilde ~text~ only: a doubled tilde on
// either end is strikethrough territory and rejected here.
func matchSubscript(s string) (inlineMatch, bool) {
	if !strings.HasPrefix(s, "~") || strings.HasPrefix(s, "~~") {
		return inlineMatch{}, false
	}
	inner, i, ok := spanTo(s[1:], '~')
	if !ok {
		return inlineMatch{}, false
	}
	if i < len(s[1:]) && s[1+i] == '~' {
		return inlineMatch{}, false
	}
	return inlineMatch{inner, 1 + i, TextStyle{BaselineOffset: baselineSub}}, true
}

func matchBoldItalic(s string) (inlineMatch, bool) {
	inner, size, ok := delimited(s, "***", "***")
	if !ok {
		return inlineMatch{}, false
	}
	return inlineMatch{inner, size, TextStyle{Bold: boolp(true), Italic: boolp(true)}}, true
}

func matchBold(s string) (inlineMatch, bool) {
	for _, mark := range []string{"**", "__"} {
		if inner, size, ok := delimited(s, mark, mark); ok {
			return inlineMatch{inner, size, TextStyle{Bold: boolp(true)}}, true
		}
	}
	return inlineMatch{}, false
}

// matchItalic handles single *text* and _text_, but only when the marker is
// not the start of a doubled (bold) marker; the inner span may contain
// neither emphasis character.
func matchItalic(s string) (inlineMatch, bool) {
	if len(s) == 0 || (s[0] != '*' && s[0] != '_') {
		return inlineMatch{}, false
	}
	if strings.HasPrefix(s, "**") || strings.HasPrefix(s, "__") {
		return inlineMatch{}, false
	}
	j := strings.IndexAny(s[1:], "*_")
	if j < 1 || s[1+j] != s[0] {
		return inlineMatch{}, false
	}
	return inlineMatch{s[1 : 1+j], j + 2, TextStyle{Italic: boolp(true)}}, true
}

func matchInlineCode(s string) (inlineMatch, bool) {
	if !strings.HasPrefix(s, "`") {
		return inlineMatch{}, false
	}
	inner, i, ok := spanTo(s[1:], '`')
	if !ok {
		return inlineMatch{}, false
	}
	gray := rgb(0.95, 0.95, 0.95)
	return inlineMatch{inner, 1 + i, TextStyle{
		WeightedFontFamily: &WeightedFontFamily{FontFamily: monoFontFamily},
		BackgroundColor:    &gray,
	}}, true
}

// delimited matches open + inner + close where inner is the shortest
// non-empty span before the next close, and must stay on one line.
func delimited(s, open, close string) (inner string, size int, ok bool) {
	if !strings.HasPrefix(s, open) {
		return "", 0, false
	}
	rest := s[len(open):]
	j := strings.Index(rest, close)
	if j < 1 || strings.ContainsRune(rest[:j], '\n') {
		return "", 0, false
	}
	return rest[:j], len(open) + j + len(close), true
}

// spanTo matches a non-empty run of bytes up to the next end byte, returning
// the run and the total size consumed including the end byte itself.
func spanTo(s string, end byte) (inner string, size int, ok bool) {
	j := strings.IndexByte(s, end)
	if j < 1 {
		return "", 0, false
	}
	return s[:j], j + 1, true
}
