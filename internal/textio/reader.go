package textio

import (
	"bufio"
	"io"
)

// LineReader reads logical lines from r, splitting on '\n' and excluding the
// terminator, and flushing a final partial line (one with no trailing
// newline) when the underlying reader reaches EOF.
type LineReader struct {
	r       *bufio.Reader
	pending bool
}

// NewLineReader wraps r for line-oriented reading.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// ReadLine returns the next logical line and true, or ("", false) once the
// stream is exhausted (including a flushed trailing partial line).
func (lr *LineReader) ReadLine() (string, bool) {
	line, err := lr.r.ReadString('\n')
	if err == nil {
		// A logical line excludes its terminator.
		return line[:len(line)-1], true
	}
	if len(line) > 0 {
		// EOF with a partial, unterminated line still pending; flush it.
		return line, true
	}
	return "", false
}
