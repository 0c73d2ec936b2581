package supervisor

import (
	"io"
	"sync"
	"time"

	"golang.org/x/text/encoding"

	"github.com/kandev/shellmcp/internal/textio"
)

// readStream consumes one pipe line by line, decoding each line with enc and
// appending it to log with the time it was read. When the stream ends it
// sends nil on errCh. LineReader does not tell EOF apart from other read
// errors, so a failed read also ends the stream with nil and is not reported
// as an error.
func readStream(wg *sync.WaitGroup, r io.Reader, log *LogBuffer, enc encoding.Encoding, errCh chan<- error) {
	defer wg.Done()

	lr := textio.NewLineReader(r)
	for {
		line, ok := lr.ReadLine()
		if !ok {
			errCh <- nil
			return
		}
		log.Append(LogLine{
			Timestamp: time.Now(),
			Text:      textio.Decode(enc, []byte(line)),
		})
	}
}
