package markdoc

// Phase is one unit of work for the executing caller: either a Batch of
// edit operations, or a Table awaiting a live end-of-document index.
//
// Phases MUST be applied strictly in emitted order. A Batch's indices are
// relative to the document state when the phase starts; a Table phase
// requires the caller to query the live document for its true insertion
// index, and invalidates this compiler's position tracking, so the caller
// must re-query again before applying any following Batch.
type Phase interface {
	phase()
}

// Batch is an ordered list of edit operations forming one phase.
type Batch []Request

func (Batch) phase() {}
func (Table) phase() {}

// Rebase returns a copy of the batch with every index shifted by offset,
// anchoring the batch's 1-relative positions to a live insertion point. The
// receiver is left untouched: emitted phases are never mutated.
func (b Batch) Rebase(offset int) Batch {
	if offset == 0 {
		return b
	}
	out := make(Batch, len(b))
	for i, req := range b {
		switch {
		case req.InsertText != nil:
			r := *req.InsertText
			r.Location.Index += offset
			out[i] = Request{InsertText: &r}
		case req.UpdateTextStyle != nil:
			r := *req.UpdateTextStyle
			r.Range.StartIndex += offset
			r.Range.EndIndex += offset
			out[i] = Request{UpdateTextStyle: &r}
		case req.UpdateParagraphStyle != nil:
			r := *req.UpdateParagraphStyle
			r.Range.StartIndex += offset
			r.Range.EndIndex += offset
			out[i] = Request{UpdateParagraphStyle: &r}
		case req.CreateParagraphBullets != nil:
			r := *req.CreateParagraphBullets
			r.Range.StartIndex += offset
			r.Range.EndIndex += offset
			out[i] = Request{CreateParagraphBullets: &r}
		case req.InsertTable != nil:
			r := *req.InsertTable
			r.Location.Index += offset
			out[i] = Request{InsertTable: &r}
		default:
			out[i] = req
		}
	}
	return out
}

// phaser accumulates the block parser's instruction stream, splitting it
// into phases at table boundaries.
type phaser struct {
	phases []Phase
	batch  Batch
}

func (p *phaser) push(reqs ...Request) {
	p.batch = append(p.batch, reqs...)
}

// table closes out any pending batch and emits the table as its own phase.
func (p *phaser) table(t Table) {
	p.flush()
	p.phases = append(p.phases, t)
}

func (p *phaser) flush() {
	if len(p.batch) > 0 {
		p.phases = append(p.phases, p.batch)
		p.batch = nil
	}
}

func (p *phaser) done() []Phase {
	p.flush()
	return p.phases
}
