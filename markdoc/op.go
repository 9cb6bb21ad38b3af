package markdoc

import "strings"

// Request is one edit operation against a live document. Exactly one of its
// fields is set; the zero Request is invalid.
type Request struct {
	InsertText             *InsertTextRequest             `json:"insertText,omitempty"`
	UpdateTextStyle        *UpdateTextStyleRequest        `json:"updateTextStyle,omitempty"`
	UpdateParagraphStyle   *UpdateParagraphStyleRequest   `json:"updateParagraphStyle,omitempty"`
	CreateParagraphBullets *CreateParagraphBulletsRequest `json:"createParagraphBullets,omitempty"`
	InsertTable            *InsertTableRequest            `json:"insertTable,omitempty"`
}

// Location is a 1-based position within document content.
type Location struct {
	Index int `json:"index"`
}

// Range is a [StartIndex, EndIndex) span of document content.
type Range struct {
	StartIndex int `json:"startIndex"`
	EndIndex   int `json:"endIndex"`
}

type InsertTextRequest struct {
	Location Location `json:"location"`
	Text     string   `json:"text"`
}

type UpdateTextStyleRequest struct {
	Range     Range     `json:"range"`
	TextStyle TextStyle `json:"textStyle"`
	Fields    string    `json:"fields"`
}

type UpdateParagraphStyleRequest struct {
	Range          Range          `json:"range"`
	ParagraphStyle ParagraphStyle `json:"paragraphStyle"`
	Fields         string         `json:"fields"`
}

type CreateParagraphBulletsRequest struct {
	Range        Range  `json:"range"`
	BulletPreset string `json:"bulletPreset"`
}

type InsertTableRequest struct {
	Rows     int      `json:"rows"`
	Columns  int      `json:"columns"`
	Location Location `json:"location"`
}

// TextStyle is a sparse set of character style attributes: only non-nil
// (non-zero for strings) attributes are part of the update, all others are
// left untouched in the target range.
type TextStyle struct {
	Bold               *bool               `json:"bold,omitempty"`
	Italic             *bool               `json:"italic,omitempty"`
	Underline          *bool               `json:"underline,omitempty"`
	Strikethrough      *bool               `json:"strikethrough,omitempty"`
	SmallCaps          *bool               `json:"smallCaps,omitempty"`
	WeightedFontFamily *WeightedFontFamily `json:"weightedFontFamily,omitempty"`
	FontSize           *Dimension          `json:"fontSize,omitempty"`
	Link               *Link               `json:"link,omitempty"`
	ForegroundColor    *OptionalColor      `json:"foregroundColor,omitempty"`
	BackgroundColor    *OptionalColor      `json:"backgroundColor,omitempty"`
	BaselineOffset     string              `json:"baselineOffset,omitempty"`
}

type WeightedFontFamily struct {
	FontFamily string `json:"fontFamily"`
}

type Dimension struct {
	Magnitude float64 `json:"magnitude"`
	Unit      string  `json:"unit"`
}

type Link struct {
	URL string `json:"url"`
}

// OptionalColor wraps the service's doubly-nested color shape.
type OptionalColor struct {
	Color Color `json:"color"`
}

type Color struct {
	RGBColor RGBColor `json:"rgbColor"`
}

type RGBColor struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// ParagraphStyle is a sparse set of paragraph style attributes, mirroring
// TextStyle's only-set-fields-apply contract.
type ParagraphStyle struct {
	NamedStyleType  string           `json:"namedStyleType,omitempty"`
	Alignment       string           `json:"alignment,omitempty"`
	IndentStart     *Dimension       `json:"indentStart,omitempty"`
	IndentFirstLine *Dimension       `json:"indentFirstLine,omitempty"`
	IndentEnd       *Dimension       `json:"indentEnd,omitempty"`
	SpaceAbove      *Dimension       `json:"spaceAbove,omitempty"`
	SpaceBelow      *Dimension       `json:"spaceBelow,omitempty"`
	BorderLeft      *ParagraphBorder `json:"borderLeft,omitempty"`
	Shading         *Shading         `json:"shading,omitempty"`
}

type ParagraphBorder struct {
	Color     OptionalColor `json:"color"`
	Width     Dimension     `json:"width"`
	Padding   Dimension     `json:"padding"`
	DashStyle string        `json:"dashStyle"`
}

type Shading struct {
	BackgroundColor OptionalColor `json:"backgroundColor"`
}

// fieldNames builds the comma-separated update mask naming every attribute
// set on the style, in a fixed order so that output is deterministic.
func (ts TextStyle) fieldNames() string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(ts.Bold != nil, "bold")
	add(ts.Italic != nil, "italic")
	add(ts.Underline != nil, "underline")
	add(ts.Strikethrough != nil, "strikethrough")
	add(ts.WeightedFontFamily != nil, "weightedFontFamily")
	add(ts.FontSize != nil, "fontSize")
	add(ts.Link != nil, "link")
	add(ts.ForegroundColor != nil, "foregroundColor")
	add(ts.BackgroundColor != nil, "backgroundColor")
	add(ts.BaselineOffset != "", "baselineOffset")
	add(ts.SmallCaps != nil, "smallCaps")
	return strings.Join(fields, ",")
}

func insertText(index int, text string) Request {
	return Request{InsertText: &InsertTextRequest{
		Location: Location{Index: index},
		Text:     text,
	}}
}

func updateTextStyle(start, end int, ts TextStyle) Request {
	return Request{UpdateTextStyle: &UpdateTextStyleRequest{
		Range:     Range{StartIndex: start, EndIndex: end},
		TextStyle: ts,
		Fields:    ts.fieldNames(),
	}}
}

func namedStyle(start, end int, name string) Request {
	return Request{UpdateParagraphStyle: &UpdateParagraphStyleRequest{
		Range:          Range{StartIndex: start, EndIndex: end},
		ParagraphStyle: ParagraphStyle{NamedStyleType: name},
		Fields:         "namedStyleType",
	}}
}

func alignStyle(start, end int, alignment string) Request {
	return Request{UpdateParagraphStyle: &UpdateParagraphStyleRequest{
		Range:          Range{StartIndex: start, EndIndex: end},
		ParagraphStyle: ParagraphStyle{Alignment: alignment},
		Fields:         "alignment",
	}}
}

// blockquoteStyle indents the paragraph and hangs a light border off its
// left edge.
func blockquoteStyle(start, end int) Request {
	return Request{UpdateParagraphStyle: &UpdateParagraphStyleRequest{
		Range: Range{StartIndex: start, EndIndex: end},
		ParagraphStyle: ParagraphStyle{
			IndentStart:     &Dimension{Magnitude: 36, Unit: "PT"},
			IndentFirstLine: &Dimension{Magnitude: 36, Unit: "PT"},
			BorderLeft: &ParagraphBorder{
				Color:     rgb(0.8, 0.8, 0.8),
				Width:     Dimension{Magnitude: 3, Unit: "PT"},
				Padding:   Dimension{Magnitude: 12, Unit: "PT"},
				DashStyle: "SOLID",
			},
		},
		Fields: "indentStart,indentFirstLine,borderLeft",
	}}
}

// codeBlockStyle shades the paragraph background across its full width and
// pulls it in from both margins.
func codeBlockStyle(start, end int) Request {
	return Request{UpdateParagraphStyle: &UpdateParagraphStyleRequest{
		Range: Range{StartIndex: start, EndIndex: end},
		ParagraphStyle: ParagraphStyle{
			Shading:     &Shading{BackgroundColor: rgb(0.95, 0.95, 0.95)},
			IndentStart: &Dimension{Magnitude: 18, Unit: "PT"},
			IndentEnd:   &Dimension{Magnitude: 18, Unit: "PT"},
			SpaceAbove:  &Dimension{Magnitude: 6, Unit: "PT"},
			SpaceBelow:  &Dimension{Magnitude: 6, Unit: "PT"},
		},
		Fields: "shading,indentStart,indentEnd,spaceAbove,spaceBelow",
	}}
}

func createBullets(start, end int, preset string) Request {
	return Request{CreateParagraphBullets: &CreateParagraphBulletsRequest{
		Range:        Range{StartIndex: start, EndIndex: end},
		BulletPreset: preset,
	}}
}

func insertTable(rows, columns, index int) Request {
	return Request{InsertTable: &InsertTableRequest{
		Rows:     rows,
		Columns:  columns,
		Location: Location{Index: index},
	}}
}

func rgb(r, g, b float64) OptionalColor {
	return OptionalColor{Color: Color{RGBColor: RGBColor{Red: r, Green: g, Blue: b}}}
}

func boolp(v bool) *bool { return &v }
