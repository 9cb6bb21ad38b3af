package docsapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docwell/docmd/markdoc"
)

// Fake is an in-memory stand-in for the documents and files services,
// good enough to exercise the client against with httptest. It models a
// document as a flat rune buffer so that edit indices behave like the
// real thing: positions are 1-based, and every document ends with a
// newline that cannot be removed.
type Fake struct {
	mu   sync.Mutex
	docs map[string]*FakeDoc
	ids  []string
}

// FakeDoc is one stored document plus a journal of everything the client
// did to it, for tests to assert on.
type FakeDoc struct {
	ID      string
	Title   string
	Trashed bool

	buf []rune

	// Gets counts document reads, including end-index queries.
	Gets int
	// Batches records every batch update in arrival order.
	Batches [][]markdoc.Request
}

func NewFake() *Fake {
	return &Fake{docs: make(map[string]*FakeDoc)}
}

// Doc returns the stored document, or nil.
func (f *Fake) Doc(id string) *FakeDoc {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[id]
}

// Text returns the document text, including the terminal newline.
func (d *FakeDoc) Text() string { return string(d.buf) }

func (f *Fake) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == "POST" && path == "/documents":
		f.create(w, r)
	case r.Method == "POST" && strings.HasSuffix(path, ":batchUpdate"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/documents/"), ":batchUpdate")
		f.batchUpdate(w, r, id)
	case r.Method == "GET" && strings.HasPrefix(path, "/documents/"):
		f.get(w, strings.TrimPrefix(path, "/documents/"))
	case r.Method == "GET" && path == "/files":
		f.list(w)
	case r.Method == "PATCH" && strings.HasPrefix(path, "/files/"):
		f.patchFile(w, r, strings.TrimPrefix(path, "/files/"))
	case r.Method == "GET" && strings.HasSuffix(path, "/export"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/files/"), "/export")
		f.export(w, r, id)
	default:
		fakeError(w, http.StatusNotFound, "unknown endpoint "+r.Method+" "+path)
	}
}

func (f *Fake) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fakeError(w, http.StatusBadRequest, err.Error())
		return
	}
	d := &FakeDoc{
		ID:    uuid.NewString(),
		Title: body.Title,
		buf:   []rune{'\n'},
	}
	f.docs[d.ID] = d
	f.ids = append(f.ids, d.ID)
	json.NewEncoder(w).Encode(d.document())
}

func (f *Fake) get(w http.ResponseWriter, id string) {
	d := f.docs[id]
	if d == nil {
		fakeError(w, http.StatusNotFound, "no such document "+id)
		return
	}
	d.Gets++
	json.NewEncoder(w).Encode(d.document())
}

func (f *Fake) batchUpdate(w http.ResponseWriter, r *http.Request, id string) {
	d := f.docs[id]
	if d == nil {
		fakeError(w, http.StatusNotFound, "no such document "+id)
		return
	}
	var body struct {
		Requests []markdoc.Request `json:"requests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fakeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, req := range body.Requests {
		if err := d.apply(req); err != nil {
			fakeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	d.Batches = append(d.Batches, body.Requests)
	io.WriteString(w, `{"replies":[]}`)
}

func (f *Fake) list(w http.ResponseWriter) {
	out := struct {
		Files []File `json:"files"`
	}{Files: []File{}}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, id := range f.ids {
		d := f.docs[id]
		if d.Trashed {
			continue
		}
		out.Files = append(out.Files, File{
			ID: d.ID, Name: d.Title,
			CreatedTime: now, ModifiedTime: now,
		})
	}
	json.NewEncoder(w).Encode(out)
}

func (f *Fake) patchFile(w http.ResponseWriter, r *http.Request, id string) {
	d := f.docs[id]
	if d == nil {
		fakeError(w, http.StatusNotFound, "no such file "+id)
		return
	}
	var body struct {
		Name    *string `json:"name"`
		Trashed *bool   `json:"trashed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fakeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Name != nil {
		d.Title = *body.Name
	}
	if body.Trashed != nil {
		d.Trashed = *body.Trashed
	}
	io.WriteString(w, `{}`)
}

func (f *Fake) export(w http.ResponseWriter, r *http.Request, id string) {
	d := f.docs[id]
	if d == nil {
		fakeError(w, http.StatusNotFound, "no such file "+id)
		return
	}
	mime := r.URL.Query().Get("mimeType")
	fmt.Fprintf(w, "exported %q as %s", d.Title, mime)
}

func fakeError(w http.ResponseWriter, code int, msg string) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{"code": code, "message": msg},
	})
}

// apply mutates the buffer for requests that change content; styling
// requests only validate their ranges. Unknown request shapes are
// rejected so a malformed batch fails loudly in tests.
func (d *FakeDoc) apply(req markdoc.Request) error {
	switch {
	case req.InsertText != nil:
		return d.splice(req.InsertText.Location.Index, []rune(req.InsertText.Text))
	case req.InsertTable != nil:
		return d.insertTable(req.InsertTable)
	case req.UpdateTextStyle != nil:
		r := req.UpdateTextStyle.Range
		return d.checkRange(r.StartIndex, r.EndIndex)
	case req.UpdateParagraphStyle != nil:
		r := req.UpdateParagraphStyle.Range
		return d.checkRange(r.StartIndex, r.EndIndex)
	case req.CreateParagraphBullets != nil:
		r := req.CreateParagraphBullets.Range
		return d.checkRange(r.StartIndex, r.EndIndex)
	default:
		return fmt.Errorf("empty request")
	}
}

func (d *FakeDoc) splice(index int, text []rune) error {
	// The terminal newline may be written before but never after.
	if index < 1 || index > len(d.buf) {
		return fmt.Errorf("insert index %d outside [1,%d]", index, len(d.buf))
	}
	at := index - 1
	d.buf = append(d.buf[:at], append(text, d.buf[at:]...)...)
	return nil
}

// insertTable splices a structural placeholder sized like a real table:
// one newline before it, then per row a row marker plus two runes per
// cell. Cell text inserted afterwards interleaves with the placeholder
// exactly as the grid index formula expects.
func (d *FakeDoc) insertTable(req *markdoc.InsertTableRequest) error {
	n := 2 + req.Rows*(1+2*req.Columns)
	ph := make([]rune, n)
	ph[0] = '\n'
	for i := 1; i < n; i++ {
		ph[i] = '￼' // object replacement, stands in for structure
	}
	return d.splice(req.Location.Index, ph)
}

func (d *FakeDoc) checkRange(start, end int) error {
	if start < 1 || end <= start || end > len(d.buf)+1 {
		return fmt.Errorf("bad range [%d,%d) in document of end index %d", start, end, len(d.buf)+1)
	}
	return nil
}

// document builds the wire shape from the buffer, one paragraph per
// newline-terminated line.
func (d *FakeDoc) document() *markdoc.Document {
	doc := &markdoc.Document{DocumentID: d.ID, Title: d.Title}
	index := 1
	for _, line := range strings.SplitAfter(string(d.buf), "\n") {
		if line == "" {
			continue
		}
		n := len([]rune(line))
		doc.Body.Content = append(doc.Body.Content, markdoc.StructuralElement{
			StartIndex: index,
			EndIndex:   index + n,
			Paragraph: &markdoc.Paragraph{
				Elements: []markdoc.ParagraphElement{{
					StartIndex: index,
					EndIndex:   index + n,
					TextRun:    &markdoc.TextRun{Content: line},
				}},
			},
		})
		index += n
	}
	return doc
}
