package markdoc_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docwell/docmd/markdoc"
)

func paraDoc(paragraphs ...markdoc.Paragraph) *markdoc.Document {
	var doc markdoc.Document
	for i := range paragraphs {
		doc.Body.Content = append(doc.Body.Content, markdoc.StructuralElement{
			Paragraph: &paragraphs[i],
		})
	}
	return &doc
}

func runPara(runs ...markdoc.TextRun) markdoc.Paragraph {
	var p markdoc.Paragraph
	for i := range runs {
		p.Elements = append(p.Elements, markdoc.ParagraphElement{TextRun: &runs[i]})
	}
	return p
}

func TestRenderMarkdown_runWrapping(t *testing.T) {
	for _, tc := range []struct {
		name string
		run  markdoc.TextRun
		want string
	}{
		{
			name: "plain",
			run:  markdoc.TextRun{Content: "x\n"},
			want: "x",
		},
		{
			name: "bold italic together",
			run:  markdoc.TextRun{Content: "x\n", TextStyle: markdoc.TextStyle{Bold: bp(true), Italic: bp(true)}},
			want: "***x***",
		},
		{
			name: "bold only",
			run:  markdoc.TextRun{Content: "x\n", TextStyle: markdoc.TextStyle{Bold: bp(true)}},
			want: "**x**",
		},
		{
			name: "italic only",
			run:  markdoc.TextRun{Content: "x\n", TextStyle: markdoc.TextStyle{Italic: bp(true)}},
			want: "*x*",
		},
		{
			name: "link wins over everything",
			run: markdoc.TextRun{Content: "docs\n", TextStyle: markdoc.TextStyle{
				Link: &markdoc.Link{URL: "https://example.com"},
				Bold: bp(true),
			}},
			want: "[docs](https://example.com)",
		},
		{
			name: "monospace renders as code",
			run: markdoc.TextRun{Content: "ls -la\n", TextStyle: markdoc.TextStyle{
				WeightedFontFamily: &markdoc.WeightedFontFamily{FontFamily: "Courier New"},
			}},
			want: "`ls -la`",
		},
		{
			name: "other mono family counts too",
			run: markdoc.TextRun{Content: "x\n", TextStyle: markdoc.TextStyle{
				WeightedFontFamily: &markdoc.WeightedFontFamily{FontFamily: "Roboto Mono"},
			}},
			want: "`x`",
		},
		{
			name: "superscript",
			run:  markdoc.TextRun{Content: "2\n", TextStyle: markdoc.TextStyle{BaselineOffset: "SUPERSCRIPT"}},
			want: "^2^",
		},
		{
			name: "subscript",
			run:  markdoc.TextRun{Content: "2\n", TextStyle: markdoc.TextStyle{BaselineOffset: "SUBSCRIPT"}},
			want: "~2~",
		},
		{
			name: "highlight",
			run:  markdoc.TextRun{Content: "x\n", TextStyle: markdoc.TextStyle{BackgroundColor: rgb(1, 1, 0)}},
			want: "==x==",
		},
		{
			name: "dim background is not a highlight",
			run:  markdoc.TextRun{Content: "x\n", TextStyle: markdoc.TextStyle{BackgroundColor: rgb(0.5, 0.5, 0.5)}},
			want: "x",
		},
		{
			name: "strikethrough under bold",
			run:  markdoc.TextRun{Content: "x\n", TextStyle: markdoc.TextStyle{Strikethrough: bp(true), Bold: bp(true)}},
			want: "**~~x~~**",
		},
		{
			name: "underline",
			run:  markdoc.TextRun{Content: "x\n", TextStyle: markdoc.TextStyle{Underline: bp(true)}},
			want: "++x++",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := markdoc.RenderMarkdown(paraDoc(runPara(tc.run)))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRenderMarkdown_paragraphForms(t *testing.T) {
	heading := runPara(markdoc.TextRun{Content: "Title\n"})
	heading.ParagraphStyle.NamedStyleType = "HEADING_2"

	quote := runPara(markdoc.TextRun{Content: "wisdom\n"})
	quote.ParagraphStyle.BorderLeft = &markdoc.ParagraphBorder{}
	quote.ParagraphStyle.IndentStart = &markdoc.Dimension{Magnitude: 36, Unit: "PT"}

	rule := runPara(markdoc.TextRun{Content: strings.Repeat("─", 50) + "\n"})

	empty := markdoc.Paragraph{}

	plain := runPara(markdoc.TextRun{Content: "words\n"})

	got := markdoc.RenderMarkdown(paraDoc(heading, quote, rule, empty, plain))
	assert.Equal(t, "## Title\n> wisdom\n---\n\nwords", got)
}

func TestRenderMarkdown_lists(t *testing.T) {
	doc := &markdoc.Document{
		Lists: map[string]markdoc.List{
			"num": {ListProperties: markdoc.ListProperties{NestingLevels: []markdoc.NestingLevel{
				{GlyphType: "DECIMAL"},
				{GlyphType: "ALPHA"},
			}}},
			"bul": {ListProperties: markdoc.ListProperties{NestingLevels: []markdoc.NestingLevel{
				{GlyphType: "GLYPH_TYPE_UNSPECIFIED"},
			}}},
		},
	}

	add := func(listID string, nest int, text string) {
		p := runPara(markdoc.TextRun{Content: text + "\n"})
		p.Bullet = &markdoc.Bullet{ListID: listID, NestingLevel: nest}
		doc.Body.Content = append(doc.Body.Content, markdoc.StructuralElement{Paragraph: &p})
	}

	add("num", 0, "first")
	add("num", 1, "nested")
	add("bul", 0, "dot")
	add("bul", 0, "☑ shipped")
	add("bul", 0, "☐ pending")

	got := markdoc.RenderMarkdown(doc)
	assert.Equal(t, strings.Join([]string{
		"1. first",
		"  1. nested",
		"- dot",
		"- [x] shipped",
		"- [ ] pending",
	}, "\n"), got)
}

func TestRenderMarkdown_multiRunParagraph(t *testing.T) {
	p := runPara(
		markdoc.TextRun{Content: "normal "},
		markdoc.TextRun{Content: "loud", TextStyle: markdoc.TextStyle{Bold: bp(true)}},
		markdoc.TextRun{Content: " quiet\n"},
	)
	got := markdoc.RenderMarkdown(paraDoc(p))
	assert.Equal(t, "normal **loud** quiet", got)
}

func TestRenderMarkdown_skipsNonParagraphs(t *testing.T) {
	doc := paraDoc(runPara(markdoc.TextRun{Content: "kept\n"}))
	doc.Body.Content = append(doc.Body.Content, markdoc.StructuralElement{}) // e.g. a section break
	assert.Equal(t, "kept", markdoc.RenderMarkdown(doc))
}
