// Package textio implements the IO utilities shared by the synchronous
// executor and the background supervisor: encoding resolution, empty-line-
// preserving line splitting, time-prefix formatting, and line-limit
// clamping.
package textio

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// ResolveEncoding looks up a named charset (a Python-codec-style alias such
// as "utf-8", "latin1", "shift_jis", "gbk") and returns a decoder that never
// fails: malformed input bytes are replaced with U+FFFD. An unknown name
// produces an error so the caller can report "Unsupported encoding: <name>".
func ResolveEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "utf-8"
	}

	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return withReplacement(enc), nil
	}
	if enc, err := htmlindex.Get(name); err == nil && enc != nil {
		return withReplacement(enc), nil
	}

	return nil, fmt.Errorf("Unsupported encoding: %s", name)
}

// withReplacement returns enc as is: the decoders of the charsets the indexes
// return, UTF-8 included, already decode malformed sequences to the
// replacement character instead of erroring.
func withReplacement(enc encoding.Encoding) encoding.Encoding {
	return enc
}

// Decode converts raw bytes to a string using enc, substituting U+FFFD for
// any byte sequence the charset cannot represent. It never returns an error:
// decoding failures are a data-quality concern, not a control-flow one.
func Decode(enc encoding.Encoding, raw []byte) string {
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		// The stdlib decoder already substitutes on most errors; this is a
		// last-resort fallback for encodings that return an error instead.
		return strings.ToValidUTF8(string(raw), "�")
	}
	return string(out)
}
