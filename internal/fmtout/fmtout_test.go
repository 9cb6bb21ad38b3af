package fmtout

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_statusLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Successf("created %q", "Notes")
	p.Infof("%d documents", 3)
	p.Failuref("no such document")
	require.NoError(t, p.Out.Err)
	assert.Equal(t, "✓ created \"Notes\"\nℹ 3 documents\n✗ no such document\n", buf.String())
}

type failAfter struct {
	n int
}

func (f *failAfter) Write(p []byte) (int, error) {
	if f.n <= 0 {
		return 0, errors.New("pipe closed")
	}
	f.n--
	return len(p), nil
}

func TestErrWriter_latchesFirstError(t *testing.T) {
	ew := &ErrWriter{Writer: &failAfter{n: 1}}
	p := &Printer{Out: ew}
	p.Infof("one")
	p.Infof("two")
	p.Infof("three")
	require.Error(t, ew.Err)
	assert.Equal(t, "pipe closed", ew.Err.Error())
}

func TestDate(t *testing.T) {
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`, Date("2026-08-01T09:30:00Z"))
	assert.Equal(t, "yesterday", Date("yesterday"), "unparseable input passes through")
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	err := Table(&buf,
		[]string{"ID", "Title"},
		[][]string{
			{"a1", "Meeting Notes"},
			{"b22", "Plan"},
		})
	require.NoError(t, err)
	assert.Equal(t,
		"ID   Title\n"+
			"---  -----\n"+
			"a1   Meeting Notes\n"+
			"b22  Plan\n",
		buf.String())
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]int{"count": 2}))
	assert.Equal(t, "{\n  \"count\": 2\n}\n", buf.String())
}
