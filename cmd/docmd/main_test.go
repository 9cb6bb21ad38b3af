package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docwell/docmd/internal/config"
	"github.com/docwell/docmd/internal/docsapi"
	"github.com/docwell/docmd/internal/fmtout"
)

func TestCLI_grammar(t *testing.T) {
	_, err := kong.New(&cli, kong.Vars{"version": "docmd test"})
	require.NoError(t, err)
}

func testApp(t *testing.T) (*app, *docsapi.Fake, *bytes.Buffer) {
	fake := docsapi.NewFake()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	var stdout bytes.Buffer
	a := &app{
		cfg:     config.Default(),
		cfgPath: filepath.Join(t.TempDir(), "config.json"),
		out:     fmtout.NewPrinter(new(bytes.Buffer)),
		stdout:  &stdout,
		stdin:   strings.NewReader(""),
		newClient: func() (*docsapi.Client, error) {
			c := docsapi.New(docsapi.StaticToken("tok"))
			c.DocsURL = srv.URL
			c.DriveURL = srv.URL
			return c, nil
		},
	}
	return a, fake, &stdout
}

func TestCreateListDelete(t *testing.T) {
	a, fake, stdout := testApp(t)

	require.NoError(t, (&CreateCmd{Title: "Notes"}).Run(a))
	require.NoError(t, (&CreateCmd{Title: "Plan"}).Run(a))

	require.NoError(t, (&ListCmd{}).Run(a))
	out := stdout.String()
	assert.Contains(t, out, "Notes")
	assert.Contains(t, out, "Plan")
	assert.Contains(t, out, "Title")

	var id string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Notes") {
			id = strings.Fields(line)[0]
		}
	}
	require.NotEmpty(t, id)
	require.NotNil(t, fake.Doc(id))

	// without --force a "n" answer keeps the document
	a.stdin = strings.NewReader("n\n")
	require.NoError(t, (&DeleteCmd{ID: id}).Run(a))
	assert.False(t, fake.Doc(id).Trashed)

	require.NoError(t, (&DeleteCmd{ID: id, Force: true}).Run(a))
	assert.True(t, fake.Doc(id).Trashed)
}

func TestImport(t *testing.T) {
	a, fake, stdout := testApp(t)

	src := filepath.Join(t.TempDir(), "meeting-notes.md")
	require.NoError(t, os.WriteFile(src, []byte("# Agenda\n\n- one\n- two\n"), 0644))
	require.NoError(t, (&ImportCmd{Path: src, Tables: "grid"}).Run(a))

	require.NoError(t, (&ListCmd{}).Run(a))
	var id string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if strings.Contains(line, "meeting-notes") {
			id = strings.Fields(line)[0]
		}
	}
	require.NotEmpty(t, id, "title defaults to the file name")
	assert.Contains(t, fake.Doc(id).Text(), "Agenda\n")
}

func TestCreateFromFileAndGet(t *testing.T) {
	a, _, stdout := testApp(t)

	src := filepath.Join(t.TempDir(), "in.md")
	require.NoError(t, os.WriteFile(src, []byte("# Title\n\nsome **bold** text\n"), 0644))

	require.NoError(t, (&CreateCmd{Title: "Doc", From: src, Tables: "grid"}).Run(a))

	require.NoError(t, (&ListCmd{}).Run(a))
	var id string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if strings.Contains(line, "Doc") && !strings.Contains(line, "ID") {
			id = strings.Fields(line)[0]
		}
	}
	require.NotEmpty(t, id)

	stdout.Reset()
	require.NoError(t, (&GetCmd{ID: id, Raw: true}).Run(a))
	assert.Contains(t, stdout.String(), "Title\n")
	assert.Contains(t, stdout.String(), "some bold text\n")
}

func TestAppendAndRename(t *testing.T) {
	a, fake, stdout := testApp(t)

	require.NoError(t, (&CreateCmd{Title: "Log"}).Run(a))
	require.NoError(t, (&ListCmd{}).Run(a))
	var id string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if strings.Contains(line, "Log") && !strings.Contains(line, "ID") {
			id = strings.Fields(line)[0]
		}
	}
	require.NotEmpty(t, id)

	require.NoError(t, (&AppendCmd{ID: id, Text: "first entry"}).Run(a))
	require.NoError(t, (&AppendCmd{ID: id, Text: "second entry"}).Run(a))
	text := fake.Doc(id).Text()
	assert.Contains(t, text, "first entry\n")
	assert.Contains(t, text, "second entry\n")
	assert.Less(t, strings.Index(text, "first"), strings.Index(text, "second"))

	require.NoError(t, (&RenameCmd{ID: id, Title: "Journal"}).Run(a))
	assert.Equal(t, "Journal", fake.Doc(id).Title)
}

func TestExportByExtension(t *testing.T) {
	a, _, stdout := testApp(t)

	require.NoError(t, (&CreateCmd{Title: "Rpt"}).Run(a))
	require.NoError(t, (&ListCmd{}).Run(a))
	var id string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if strings.Contains(line, "Rpt") && !strings.Contains(line, "ID") {
			id = strings.Fields(line)[0]
		}
	}
	require.NotEmpty(t, id)

	dir := t.TempDir()
	pdf := filepath.Join(dir, "out.pdf")
	require.NoError(t, (&ExportCmd{ID: id, Out: pdf}).Run(a))
	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.Contains(t, string(data), "application/pdf")

	md := filepath.Join(dir, "out.md")
	require.NoError(t, (&ExportCmd{ID: id, Out: md}).Run(a))
	_, err = os.Stat(md)
	require.NoError(t, err)

	err = (&ExportCmd{ID: id, Out: filepath.Join(dir, "out.xyz")}).Run(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestConfigCommands(t *testing.T) {
	a, _, stdout := testApp(t)

	require.NoError(t, (&ConfigSetCmd{Key: "output_format", Value: "json"}).Run(a))
	require.NoError(t, (&ConfigGetCmd{Key: "output_format"}).Run(a))
	assert.Equal(t, "json\n", stdout.String())

	// the new value is persisted for the next invocation
	cfg, err := config.Load(a.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat)

	assert.Error(t, (&ConfigSetCmd{Key: "output_format", Value: "xml"}).Run(a))
	assert.Error(t, (&ConfigGetCmd{Key: "nope"}).Run(a))
}

func TestListJSON(t *testing.T) {
	a, _, stdout := testApp(t)
	a.cfg.OutputFormat = "json"

	require.NoError(t, (&CreateCmd{Title: "Only"}).Run(a))
	require.NoError(t, (&ListCmd{}).Run(a))
	assert.Contains(t, stdout.String(), `"name": "Only"`)
	assert.NotContains(t, stdout.String(), "Modified", "json output has no table header")
}
