// Command docmd edits Google Docs documents from the terminal using
// Markdown as the editing surface: local Markdown compiles into document
// edits on the way up, and documents render back to Markdown on the way
// down.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/docwell/docmd/internal/auth"
	"github.com/docwell/docmd/internal/config"
	"github.com/docwell/docmd/internal/docsapi"
	"github.com/docwell/docmd/internal/fmtout"
	"github.com/docwell/docmd/markdoc"
)

const version = "0.2.0"

var cli struct {
	Format string `help:"Output format (table or json), overriding the configured default." enum:"table,json," default:""`

	Auth   AuthGroup   `cmd:"" help:"Log in and out of the service."`
	List   ListCmd     `cmd:"" help:"List your documents."`
	Get    GetCmd      `cmd:"" help:"Print a document as Markdown."`
	Create CreateCmd   `cmd:"" help:"Create a document, optionally from a Markdown file."`
	Rename RenameCmd   `cmd:"" help:"Rename a document."`
	Append AppendCmd   `cmd:"" help:"Append Markdown to the end of a document."`
	Insert InsertCmd   `cmd:"" help:"Insert plain text at a position."`
	Delete DeleteCmd   `cmd:"" help:"Move a document to the trash."`
	Export ExportCmd   `cmd:"" help:"Download a document in another format."`
	Import ImportCmd   `cmd:"" help:"Create a document from a Markdown file."`
	Config ConfigGroup `cmd:"" help:"Read and write docmd settings."`

	Version kong.VersionFlag `help:"Print version and exit."`
}

// app carries the pieces every command needs; commands receive it via
// kong's binding mechanism.
type app struct {
	cfg     config.Config
	cfgPath string
	out     *fmtout.Printer
	stdout  io.Writer
	stdin   io.Reader

	// newClient is swapped out in tests
	newClient func() (*docsapi.Client, error)
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("docmd"),
		kong.Description("Markdown in, Markdown out: a Google Docs CLI."),
		kong.Vars{"version": "docmd " + version},
		kong.UsageOnError(),
	)

	a := &app{
		out:    fmtout.NewPrinter(os.Stderr),
		stdout: os.Stdout,
		stdin:  os.Stdin,
	}
	a.newClient = defaultClient

	if path, err := config.Path(); err == nil {
		a.cfgPath = path
		if cfg, err := config.Load(path); err == nil {
			a.cfg = cfg
		} else {
			a.out.Failuref("ignoring broken config: %v", err)
			a.cfg = config.Default()
		}
	} else {
		a.cfg = config.Default()
	}

	if err := ctx.Run(a); err != nil {
		a.out.Failuref("%v", err)
		os.Exit(1)
	}
}

func defaultClient() (*docsapi.Client, error) {
	store, err := auth.DefaultStore()
	if err != nil {
		return nil, err
	}
	return docsapi.New(auth.NewSource(store)), nil
}

// format resolves the output format: flag first, then config.
func (a *app) format() string {
	if cli.Format != "" {
		return cli.Format
	}
	return a.cfg.OutputFormat
}

// AuthGroup groups the session commands.
type AuthGroup struct {
	Login  LoginCmd  `cmd:"" help:"Authorize docmd through the browser."`
	Logout LogoutCmd `cmd:"" help:"Forget the cached token."`
	Status StatusCmd `cmd:"" help:"Show whether docmd is logged in."`
}

type LoginCmd struct{}

func (LoginCmd) Run(a *app) error {
	store, err := auth.DefaultStore()
	if err != nil {
		return err
	}
	err = auth.Login(context.Background(), store, func(authURL string) {
		a.out.Infof("Open this URL in your browser to authorize docmd:")
		fmt.Fprintf(a.out.Out, "\n  %s\n\n", authURL)
	})
	if err != nil {
		return err
	}
	a.out.Successf("Logged in.")
	return nil
}

type LogoutCmd struct{}

func (LogoutCmd) Run(a *app) error {
	store, err := auth.DefaultStore()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	a.out.Successf("Logged out.")
	return nil
}

type StatusCmd struct{}

func (StatusCmd) Run(a *app) error {
	store, err := auth.DefaultStore()
	if err != nil {
		return err
	}
	tok, err := store.Token()
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		a.out.Infof("Not logged in.")
		return nil
	case err != nil:
		return err
	case tok.Valid():
		a.out.Successf("Logged in, token valid until %s.", tok.Expiry.Local().Format("2006-01-02 15:04"))
	default:
		a.out.Infof("Logged in, token expired (it will refresh on next use).")
	}
	return nil
}

type ListCmd struct {
	Limit int `help:"Maximum number of documents to show." default:"0"`
}

func (c *ListCmd) Run(a *app) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}
	limit := c.Limit
	if limit <= 0 {
		limit = a.cfg.DefaultLimit
	}
	files, err := client.List(context.Background(), limit)
	if err != nil {
		return err
	}

	if a.format() == "json" {
		return fmtout.JSON(a.stdout, files)
	}
	if len(files) == 0 {
		a.out.Infof("No documents.")
		return nil
	}
	rows := make([][]string, len(files))
	for i, f := range files {
		rows[i] = []string{f.ID, f.Name, fmtout.Date(f.ModifiedTime)}
	}
	return fmtout.Table(a.stdout, []string{"ID", "Title", "Modified"}, rows)
}

type GetCmd struct {
	ID  string `arg:"" help:"Document ID."`
	Raw bool   `help:"Print plain text instead of Markdown."`
}

func (c *GetCmd) Run(a *app) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if c.Raw {
		text, err := client.Text(ctx, c.ID)
		if err != nil {
			return err
		}
		_, err = io.WriteString(a.stdout, text)
		return err
	}

	md, err := client.ExportMarkdown(ctx, c.ID)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(md, "\n") {
		md += "\n"
	}
	_, err = io.WriteString(a.stdout, md)
	return err
}

type CreateCmd struct {
	Title  string `arg:"" help:"Document title."`
	From   string `help:"Markdown file to import as the document body." type:"existingfile"`
	Tables string `help:"How to build tables from Markdown." enum:"grid,text" default:"grid"`
}

func (c *CreateCmd) Run(a *app) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if c.From == "" {
		doc, err := client.Create(ctx, c.Title)
		if err != nil {
			return err
		}
		a.out.Successf("Created %q (%s)", doc.Title, doc.DocumentID)
		return nil
	}

	content, err := os.ReadFile(c.From)
	if err != nil {
		return err
	}
	mode := docsapi.GridTables
	if c.Tables == "text" {
		mode = docsapi.TextTables
	}
	doc, err := client.CreateFromMarkdown(ctx, c.Title, string(content), mode)
	if err != nil {
		return err
	}
	a.out.Successf("Created %q from %s (%s)", doc.Title, c.From, doc.DocumentID)
	return nil
}

type RenameCmd struct {
	ID    string `arg:"" help:"Document ID."`
	Title string `arg:"" help:"New title."`
}

func (c *RenameCmd) Run(a *app) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}
	if err := client.UpdateTitle(context.Background(), c.ID, c.Title); err != nil {
		return err
	}
	a.out.Successf("Renamed %s to %q", c.ID, c.Title)
	return nil
}

type AppendCmd struct {
	ID   string `arg:"" help:"Document ID."`
	Text string `arg:"" optional:"" help:"Markdown to append; reads stdin when omitted."`
}

func (c *AppendCmd) Run(a *app) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}
	text := c.Text
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		text = string(data)
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	ctx := context.Background()
	end, err := client.EndIndex(ctx, c.ID)
	if err != nil {
		return err
	}
	// compile relative to 1, then shift onto the live end of content;
	// tables render as text so the whole append is one batch
	batch := markdoc.CompileFlat(text).Rebase(end - 1)
	if len(batch) == 0 {
		a.out.Infof("Nothing to append.")
		return nil
	}
	if err := client.BatchUpdate(ctx, c.ID, batch); err != nil {
		return err
	}
	a.out.Successf("Appended to %s", c.ID)
	return nil
}

type InsertCmd struct {
	ID    string `arg:"" help:"Document ID."`
	Index int    `arg:"" help:"1-based position to insert at."`
	Text  string `arg:"" help:"Plain text to insert."`
}

func (c *InsertCmd) Run(a *app) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}
	if c.Index < 1 {
		return fmt.Errorf("index must be at least 1, got %d", c.Index)
	}
	if err := client.InsertTextAt(context.Background(), c.ID, c.Text, c.Index); err != nil {
		return err
	}
	a.out.Successf("Inserted at %d in %s", c.Index, c.ID)
	return nil
}

type DeleteCmd struct {
	ID    string `arg:"" help:"Document ID."`
	Force bool   `help:"Skip the confirmation prompt."`
}

func (c *DeleteCmd) Run(a *app) error {
	if !c.Force {
		fmt.Fprintf(a.out.Out, "Move %s to the trash? [y/N] ", c.ID)
		var answer string
		fmt.Fscanln(a.stdin, &answer)
		if answer != "y" && answer != "Y" && answer != "yes" {
			a.out.Infof("Kept %s.", c.ID)
			return nil
		}
	}
	client, err := a.newClient()
	if err != nil {
		return err
	}
	if err := client.Delete(context.Background(), c.ID); err != nil {
		return err
	}
	a.out.Successf("Trashed %s", c.ID)
	return nil
}

type ExportCmd struct {
	ID  string `arg:"" help:"Document ID."`
	Out string `arg:"" help:"Output file; the extension picks the format (md, pdf, docx, txt, html, rtf, odt, epub)." type:"path"`
}

func (c *ExportCmd) Run(a *app) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}
	ctx := context.Background()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(c.Out)), ".")

	if ext == "md" || ext == "markdown" {
		md, err := client.ExportMarkdown(ctx, c.ID)
		if err != nil {
			return err
		}
		if !strings.HasSuffix(md, "\n") {
			md += "\n"
		}
		if err := os.WriteFile(c.Out, []byte(md), 0644); err != nil {
			return err
		}
		a.out.Successf("Exported %s to %s", c.ID, c.Out)
		return nil
	}

	mime, ok := docsapi.ExportFormats[ext]
	if !ok {
		return fmt.Errorf("unsupported export format %q", ext)
	}
	rc, err := client.Export(ctx, c.ID, mime)
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.out.Successf("Exported %s to %s", c.ID, c.Out)
	return nil
}

type ImportCmd struct {
	Path   string `arg:"" help:"Markdown file to import." type:"existingfile"`
	Title  string `help:"Document title; defaults to the file name."`
	Tables string `help:"How to build tables from Markdown." enum:"grid,text" default:"grid"`
}

func (c *ImportCmd) Run(a *app) error {
	title := c.Title
	if title == "" {
		base := filepath.Base(c.Path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	create := CreateCmd{Title: title, From: c.Path, Tables: c.Tables}
	return create.Run(a)
}

// ConfigGroup holds the settings commands.
type ConfigGroup struct {
	Get ConfigGetCmd `cmd:"" help:"Print one setting."`
	Set ConfigSetCmd `cmd:"" help:"Change one setting."`
}

type ConfigGetCmd struct {
	Key string `arg:"" help:"Setting name (output_format, default_limit)."`
}

func (c *ConfigGetCmd) Run(a *app) error {
	v, err := a.cfg.Get(c.Key)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, v)
	return nil
}

type ConfigSetCmd struct {
	Key   string `arg:"" help:"Setting name."`
	Value string `arg:"" help:"New value."`
}

func (c *ConfigSetCmd) Run(a *app) error {
	if err := a.cfg.Set(c.Key, c.Value); err != nil {
		return err
	}
	if a.cfgPath == "" {
		return fmt.Errorf("no config path available")
	}
	if err := config.Save(a.cfgPath, a.cfg); err != nil {
		return err
	}
	a.out.Successf("%s = %s", c.Key, c.Value)
	return nil
}
