package docsapi

import (
	"context"
	"fmt"

	"github.com/docwell/docmd/markdoc"
)

// TableMode selects how tables land in an imported document.
type TableMode int

const (
	// GridTables builds native table grids, which splits the compile into
	// phases with a live end-index query before each table.
	GridTables TableMode = iota
	// TextTables draws tables as monospaced box-drawing text so the whole
	// document applies as one batch.
	TextTables
)

// CreateFromMarkdown creates a document and fills it from Markdown source.
//
// Phase execution is NOT atomic: each phase is its own batch update, so if
// a later phase fails, everything before it remains committed. The
// returned error says which phase failed; the partially built document is
// left as-is for the caller to inspect or delete.
func (c *Client) CreateFromMarkdown(ctx context.Context, title, content string, tables TableMode) (*markdoc.Document, error) {
	doc, err := c.Create(ctx, title)
	if err != nil {
		return nil, err
	}

	if tables == TextTables {
		if batch := markdoc.CompileFlat(content); len(batch) > 0 {
			if err := c.BatchUpdate(ctx, doc.DocumentID, batch); err != nil {
				return nil, fmt.Errorf("applying content to %s: %w", doc.DocumentID, err)
			}
		}
		return c.Get(ctx, doc.DocumentID)
	}

	if err := c.RunPhases(ctx, doc.DocumentID, markdoc.Compile(content)); err != nil {
		return nil, err
	}
	return c.Get(ctx, doc.DocumentID)
}

// RunPhases executes compiled phases in order against a live document.
//
// Each batch's indices are 1-relative to its own insertion point, so every
// batch after the first is rebased onto a freshly queried end index; table
// phases query the end index themselves, since a grid can only be anchored
// at the live end of content.
func (c *Client) RunPhases(ctx context.Context, docID string, phases []markdoc.Phase) error {
	fail := func(i int, err error) error {
		return fmt.Errorf("phase %d of %d failed (earlier phases remain committed): %w",
			i+1, len(phases), err)
	}

	for i, phase := range phases {
		switch p := phase.(type) {
		case markdoc.Batch:
			if len(p) == 0 {
				continue
			}
			offset := 0
			if i > 0 {
				end, err := c.EndIndex(ctx, docID)
				if err != nil {
					return fail(i, err)
				}
				offset = end - 1
			}
			if err := c.BatchUpdate(ctx, docID, p.Rebase(offset)); err != nil {
				return fail(i, err)
			}

		case markdoc.Table:
			end, err := c.EndIndex(ctx, docID)
			if err != nil {
				return fail(i, err)
			}
			reqs := markdoc.GridRenderer{}.Render(p, end)
			if err := c.BatchUpdate(ctx, docID, reqs); err != nil {
				return fail(i, err)
			}

		default:
			return fail(i, fmt.Errorf("unknown phase type %T", phase))
		}
	}
	return nil
}
