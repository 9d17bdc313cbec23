package filer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/stackarray/pkg/core/handle"
	"github.com/matzehuels/stackarray/pkg/errors"
)

// TextWriter is the tagged-text Encoder. Each field is written as a
// right-aligned group code line followed by a value line.
type TextWriter struct {
	w    io.Writer
	kind Kind
	err  error
}

// NewTextWriter creates a tagged-text encoder for the given transfer context.
func NewTextWriter(w io.Writer, kind Kind) *TextWriter {
	return &TextWriter{w: w, kind: kind}
}

func (w *TextWriter) Kind() Kind { return w.kind }
func (w *TextWriter) Err() error { return w.err }

func (w *TextWriter) pair(code int, value string) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, "%3d\n%s\n", code, value)
}

func (w *TextWriter) Int32(code int, v int32) {
	w.pair(code, strconv.FormatInt(int64(v), 10))
}

func (w *TextWriter) Double(code int, v float64) {
	w.pair(code, strconv.FormatFloat(v, 'g', -1, 64))
}

func (w *TextWriter) Point(code int, p [3]float64) {
	for i, c := range p {
		w.Double(code+10*i, c)
	}
}

func (w *TextWriter) String(code int, s string) {
	if strings.ContainsAny(s, "\r\n") {
		if w.err == nil {
			w.err = errors.New(errors.ErrCodeInvalidInput, "tagged-text string contains a line break")
		}
		return
	}
	w.pair(code, s)
}

func (w *TextWriter) Handle(code int, id handle.ID) {
	w.pair(code, id.String())
}

// TextReader is the tagged-text Decoder.
type TextReader struct {
	sc   *bufio.Scanner
	kind Kind
	opts options
	err  error
}

// NewTextReader creates a tagged-text decoder for the given transfer context.
func NewTextReader(r io.Reader, kind Kind, opts ...Option) *TextReader {
	return &TextReader{sc: bufio.NewScanner(r), kind: kind, opts: newOptions(opts)}
}

func (r *TextReader) Kind() Kind { return r.kind }
func (r *TextReader) Err() error { return r.err }

func (r *TextReader) fail(format string, args ...any) {
	r.err = errors.New(errors.ErrCodeMakeMeProxy, format, args...)
}

// scan advances to the next line. A read error is kept as the decoder
// error; at end of input the caller reports what was missing.
func (r *TextReader) scan() bool {
	if r.sc.Scan() {
		return true
	}
	if err := r.sc.Err(); err != nil {
		r.err = errors.Wrap(errors.ErrCodeMakeMeProxy, err, "read tagged text")
	}
	return false
}

// next reads one pair and checks its group code against want.
func (r *TextReader) next(want int) (string, bool) {
	if r.err != nil {
		return "", false
	}
	if !r.scan() {
		if r.err != nil {
			return "", false
		}
		r.fail("unexpected end of tagged text, want group code %d", want)
		return "", false
	}
	code, err := strconv.Atoi(strings.TrimSpace(r.sc.Text()))
	if err != nil {
		r.fail("invalid group code %q", r.sc.Text())
		return "", false
	}
	if code != want {
		r.fail("group code %d, want %d", code, want)
		return "", false
	}
	if !r.scan() {
		if r.err != nil {
			return "", false
		}
		r.fail("missing value for group code %d", code)
		return "", false
	}
	return r.sc.Text(), true
}

func (r *TextReader) Int32(code int) int32 {
	s, ok := r.next(code)
	if !ok {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		r.fail("invalid integer %q for group code %d", s, code)
		return 0
	}
	return int32(v)
}

func (r *TextReader) Double(code int) float64 {
	s, ok := r.next(code)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		r.fail("invalid double %q for group code %d", s, code)
		return 0
	}
	return v
}

func (r *TextReader) Point(code int) [3]float64 {
	return [3]float64{r.Double(code), r.Double(code + 10), r.Double(code + 20)}
}

func (r *TextReader) String(code int) string {
	s, _ := r.next(code)
	return s
}

func (r *TextReader) Handle(code int) handle.ID {
	s, ok := r.next(code)
	if !ok {
		return handle.Null
	}
	id, err := handle.Parse(strings.TrimSpace(s))
	if err != nil {
		r.fail("invalid handle %q for group code %d", s, code)
		return handle.Null
	}
	return r.opts.translate(id)
}
