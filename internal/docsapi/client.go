// Package docsapi is the REST client for the hosted document service: the
// external collaborator that executes compiled edit-operation batches and
// answers live document queries between phases.
package docsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/docwell/docmd/markdoc"
)

const (
	// DefaultDocsURL and DefaultDriveURL are where the real service lives;
	// tests point both at an in-process Fake.
	DefaultDocsURL  = "https://docs.googleapis.com/v1"
	DefaultDriveURL = "https://www.googleapis.com/drive/v3"

	documentMIMEType = "application/vnd.google-apps.document"
)

// ExportFormats maps export file extensions to the MIME types the service
// converts to. Markdown is absent on purpose: it is rendered locally by
// ExportMarkdown rather than by the service.
var ExportFormats = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"txt":  "text/plain",
	"html": "text/html",
	"rtf":  "application/rtf",
	"odt":  "application/vnd.oasis.opendocument.text",
	"epub": "application/epub+zip",
}

// TokenSource supplies a bearer token per request, refreshing as needed.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource for a fixed token, mostly useful in tests.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// Client talks to the document and file endpoints of the service. The zero
// value is not usable; use New.
type Client struct {
	DocsURL    string
	DriveURL   string
	HTTPClient *http.Client
	Tokens     TokenSource
}

// New builds a client against the real service endpoints.
func New(tokens TokenSource) *Client {
	return &Client{
		DocsURL:    DefaultDocsURL,
		DriveURL:   DefaultDriveURL,
		HTTPClient: http.DefaultClient,
		Tokens:     tokens,
	}
}

// File is document metadata from the file listing endpoint.
type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modifiedTime"`
	CreatedTime  string `json:"createdTime"`
}

// List returns up to limit documents, most recently modified first.
func (c *Client) List(ctx context.Context, limit int) ([]File, error) {
	q := url.Values{
		"q":        {fmt.Sprintf("mimeType='%s'", documentMIMEType)},
		"pageSize": {strconv.Itoa(limit)},
		"fields":   {"files(id, name, modifiedTime, createdTime)"},
		"orderBy":  {"modifiedTime desc"},
	}
	var out struct {
		Files []File `json:"files"`
	}
	err := c.call(ctx, "GET", c.DriveURL+"/files?"+q.Encode(), nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Files, nil
}

// Get fetches the full document model.
func (c *Client) Get(ctx context.Context, docID string) (*markdoc.Document, error) {
	var doc markdoc.Document
	if err := c.call(ctx, "GET", c.DocsURL+"/documents/"+docID, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Text fetches the document's plain text content.
func (c *Client) Text(ctx context.Context, docID string) (string, error) {
	doc, err := c.Get(ctx, docID)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}

// EndIndex queries the live end-of-content index: the insertion point for
// appending, and the index every table phase must be anchored at.
func (c *Client) EndIndex(ctx context.Context, docID string) (int, error) {
	raw, err := c.raw(ctx, "GET", c.DocsURL+"/documents/"+docID, nil)
	if err != nil {
		return 0, err
	}
	end := gjson.GetBytes(raw, "body.content|@reverse|0.endIndex")
	if !end.Exists() {
		return 0, fmt.Errorf("document %s has no content elements", docID)
	}
	return int(end.Int()) - 1, nil
}

// Create makes a new empty document.
func (c *Client) Create(ctx context.Context, title string) (*markdoc.Document, error) {
	var doc markdoc.Document
	body := map[string]string{"title": title}
	if err := c.call(ctx, "POST", c.DocsURL+"/documents", body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateTitle renames the document via the file endpoint.
func (c *Client) UpdateTitle(ctx context.Context, docID, title string) error {
	return c.call(ctx, "PATCH", c.DriveURL+"/files/"+docID, map[string]string{"name": title}, nil)
}

// Delete moves the document to the trash.
func (c *Client) Delete(ctx context.Context, docID string) error {
	return c.call(ctx, "PATCH", c.DriveURL+"/files/"+docID, map[string]bool{"trashed": true}, nil)
}

// BatchUpdate applies one ordered operation batch atomically.
func (c *Client) BatchUpdate(ctx context.Context, docID string, reqs []markdoc.Request) error {
	body := struct {
		Requests []markdoc.Request `json:"requests"`
	}{reqs}
	return c.call(ctx, "POST", c.DocsURL+"/documents/"+docID+":batchUpdate", body, nil)
}

// AppendText adds text at the end of the document.
func (c *Client) AppendText(ctx context.Context, docID, text string) error {
	end, err := c.EndIndex(ctx, docID)
	if err != nil {
		return err
	}
	return c.InsertTextAt(ctx, docID, text, end)
}

// InsertTextAt inserts text at a specific index.
func (c *Client) InsertTextAt(ctx context.Context, docID, text string, index int) error {
	return c.BatchUpdate(ctx, docID, []markdoc.Request{{
		InsertText: &markdoc.InsertTextRequest{
			Location: markdoc.Location{Index: index},
			Text:     text,
		},
	}})
}

// ExportMarkdown renders the document back to Markdown locally.
func (c *Client) ExportMarkdown(ctx context.Context, docID string) (string, error) {
	doc, err := c.Get(ctx, docID)
	if err != nil {
		return "", err
	}
	return markdoc.RenderMarkdown(doc), nil
}

// Export downloads the document converted by the service to the given MIME
// type. The caller owns closing the returned reader.
func (c *Client) Export(ctx context.Context, docID, mimeType string) (io.ReadCloser, error) {
	u := c.DriveURL + "/files/" + docID + "/export?mimeType=" + url.QueryEscape(mimeType)
	resp, err := c.send(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) call(ctx context.Context, method, url string, in, out interface{}) error {
	raw, err := c.raw(ctx, method, url, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, url, err)
	}
	return nil
}

func (c *Client) raw(ctx context.Context, method, url string, in interface{}) ([]byte, error) {
	resp, err := c.send(ctx, method, url, in)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (c *Client) send(ctx context.Context, method, url string, in interface{}) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Tokens != nil {
		tok, err := c.Tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		return nil, apiError(resp)
	}
	return resp, nil
}

func apiError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if msg := gjson.GetBytes(b, "error.message"); msg.Exists() {
		return fmt.Errorf("service error: %s (HTTP %d)", msg.String(), resp.StatusCode)
	}
	return fmt.Errorf("service error: HTTP %d", resp.StatusCode)
}
