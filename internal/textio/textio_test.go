package textio

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEncodingUTF8Default(t *testing.T) {
	enc, err := ResolveEncoding("")
	require.NoError(t, err)
	assert.Equal(t, "hi", Decode(enc, []byte("hi")))
}

func TestResolveEncodingUnsupported(t *testing.T) {
	_, err := ResolveEncoding("not-a-real-charset")
	require.Error(t, err)
	assert.Equal(t, "Unsupported encoding: not-a-real-charset", err.Error())
}

func TestDecodeReplacesMalformedBytes(t *testing.T) {
	enc, err := ResolveEncoding("utf-8")
	require.NoError(t, err)
	out := Decode(enc, []byte{'h', 'i', 0xff, 0xfe})
	assert.Contains(t, out, "hi")
	assert.True(t, strings.ContainsRune(out, '�'))
}

func TestSplitLinesPreservesEmptyLines(t *testing.T) {
	lines := SplitLines("a\n\nb\n")
	assert.Equal(t, []string{"a", "", "b"}, lines)
}

func TestSplitLinesNoTrailingNewline(t *testing.T) {
	lines := SplitLines("a\nb")
	assert.Equal(t, []string{"a", "b"}, lines)
}

func TestFormatTimeDefault(t *testing.T) {
	ts := time.Date(2026, 7, 31, 10, 20, 30, 123456000, time.UTC)
	got := FormatTime(ts, "")
	assert.Equal(t, "2026-07-31 10:20:30.123456", got)
}

func TestFormatTimeInvalidFallsBackToDefault(t *testing.T) {
	ts := time.Date(2026, 7, 31, 10, 20, 30, 0, time.UTC)
	got := FormatTime(ts, "not a real format")
	assert.Equal(t, FormatTime(ts, ""), got)
}

func TestClampLinesNoOp(t *testing.T) {
	lines := []string{"a", "b"}
	assert.Equal(t, lines, ClampLines(lines, 0))
	assert.Equal(t, lines, ClampLines(lines, 5))
}

func TestClampLinesDropsOldest(t *testing.T) {
	lines := []string{"a", "b", "c", "d"}
	got := ClampLines(lines, 2)
	require.Len(t, got, 3)
	assert.Equal(t, "… 2 earlier lines omitted …", got[0])
	assert.Equal(t, []string{"c", "d"}, got[1:])
}

func TestLineReaderFlushesTrailingPartialLine(t *testing.T) {
	r := NewLineReader(strings.NewReader("a\nb\nc"))
	var got []string
	for {
		line, ok := r.ReadLine()
		if !ok {
			break
		}
		got = append(got, line)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
