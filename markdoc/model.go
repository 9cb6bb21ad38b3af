package markdoc

import "strings"

// Document is the structured document model returned by the document
// service. Only the shapes the renderer and client consume are modeled;
// unknown fields pass through the JSON decoder untouched.
type Document struct {
	DocumentID string          `json:"documentId,omitempty"`
	Title      string          `json:"title,omitempty"`
	Body       Body            `json:"body,omitempty"`
	Lists      map[string]List `json:"lists,omitempty"`
}

type Body struct {
	Content []StructuralElement `json:"content,omitempty"`
}

type StructuralElement struct {
	StartIndex int        `json:"startIndex,omitempty"`
	EndIndex   int        `json:"endIndex,omitempty"`
	Paragraph  *Paragraph `json:"paragraph,omitempty"`
}

type Paragraph struct {
	Elements       []ParagraphElement `json:"elements,omitempty"`
	ParagraphStyle ParagraphStyle     `json:"paragraphStyle,omitempty"`
	Bullet         *Bullet            `json:"bullet,omitempty"`
}

type ParagraphElement struct {
	StartIndex int      `json:"startIndex,omitempty"`
	EndIndex   int      `json:"endIndex,omitempty"`
	TextRun    *TextRun `json:"textRun,omitempty"`
}

type TextRun struct {
	Content   string    `json:"content,omitempty"`
	TextStyle TextStyle `json:"textStyle,omitempty"`
}

type Bullet struct {
	ListID       string `json:"listId,omitempty"`
	NestingLevel int    `json:"nestingLevel,omitempty"`
}

type List struct {
	ListProperties ListProperties `json:"listProperties,omitempty"`
}

type ListProperties struct {
	NestingLevels []NestingLevel `json:"nestingLevels,omitempty"`
}

type NestingLevel struct {
	GlyphType string `json:"glyphType,omitempty"`
}

// Text returns the document's plain text: every text run's content
// concatenated, markers and styles dropped.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, el := range d.Body.Content {
		if el.Paragraph == nil {
			continue
		}
		for _, pe := range el.Paragraph.Elements {
			if pe.TextRun != nil {
				sb.WriteString(pe.TextRun.Content)
			}
		}
	}
	return sb.String()
}

// EndIndex returns the index just before the document's final newline: the
// insertion point for appending content.
func (d *Document) EndIndex() int {
	if n := len(d.Body.Content); n > 0 {
		return d.Body.Content[n-1].EndIndex - 1
	}
	return 1
}
