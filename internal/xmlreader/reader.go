// Package xmlreader provides a forward-only XML reader with typed attribute
// access, used by every report format parser.
//
// The reader never builds a tree: it advances through start and end tags and
// exposes the attributes of the element it is currently positioned on. Every
// schema violation is reported as an *errors.ParseError carrying the absolute
// file path and the 1-based line of the current parser position.
package xmlreader

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	ierrors "github.com/AndreyAkinshin/testimport/internal/errors"
)

// Reader is a cursor over the XML tokens of a single report file.
// It is not safe for concurrent use.
type Reader struct {
	path      string
	src       io.ReadCloser
	decoder   *xml.Decoder
	converter io.Closer
	utf16     bool

	tag    string
	attrs  []xml.Attr
	closed bool
}

// Open opens the report file at path for reading.
// The caller must call Close on every exit path.
func Open(path string) (*Reader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ierrors.Wrap(err, fmt.Sprintf("cannot resolve report path %s", path))
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, ierrors.Wrap(err, fmt.Sprintf("cannot open report file %s", abs))
	}
	return New(abs, f), nil
}

// New creates a Reader over src. The path is only used in error messages.
// The Reader takes ownership of src and closes it in Close.
func New(path string, src io.ReadCloser) *Reader {
	r := &Reader{
		path: path,
		src:  src,
	}
	d := xml.NewDecoder(r.sniffBOM(bufio.NewReader(src)))
	d.Strict = true
	// .trx files are frequently written as UTF-16 with an encoding declaration.
	d.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		if r.utf16 && strings.HasPrefix(strings.ToLower(label), "utf-16") {
			return input, nil
		}
		cr, err := charset.NewReaderLabel(label, input)
		if c, ok := cr.(io.Closer); ok {
			r.converter = c
		}
		return cr, err
	}
	r.decoder = d
	return r
}

// sniffBOM strips a UTF-8 byte order mark and transcodes UTF-16 input to
// UTF-8, since the decoder cannot read an encoding declaration that is itself
// UTF-16 encoded.
func (r *Reader) sniffBOM(br *bufio.Reader) io.Reader {
	head, _ := br.Peek(3)
	switch {
	case len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF:
		_, _ = br.Discard(3)
		return br
	case len(head) >= 2 && ((head[0] == 0xFF && head[1] == 0xFE) || (head[0] == 0xFE && head[1] == 0xFF)):
		r.utf16 = true
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		return transform.NewReader(br, dec)
	default:
		return br
	}
}

// Path returns the absolute path of the file being read.
func (r *Reader) Path() string {
	return r.path
}

// Tag returns the local name of the element the reader is positioned on.
func (r *Reader) Tag() string {
	return r.tag
}

// CheckRootTag advances to the first start tag and verifies its name.
func (r *Reader) CheckRootTag(name string) error {
	tag, ok, err := r.NextStartTag()
	if err != nil {
		return err
	}
	if !ok || tag != name {
		return r.ParseError(fmt.Sprintf("Missing root element <%s>", name))
	}
	return nil
}

// NextStartTag advances to the next start tag and returns its local name.
// ok is false when the end of the stream is reached.
func (r *Reader) NextStartTag() (tag string, ok bool, err error) {
	for {
		tok, err := r.next()
		if err != nil {
			if err == io.EOF {
				return "", false, nil
			}
			return "", false, err
		}
		if se, isStart := tok.(xml.StartElement); isStart {
			r.tag = se.Name.Local
			r.attrs = se.Attr
			return r.tag, true, nil
		}
	}
}

// NextStartOrEndTag advances to the next start or end tag.
// Start tags are rendered as "<name>" and end tags as "</name>", so callers
// can track nesting depth without building a tree.
func (r *Reader) NextStartOrEndTag() (marker string, ok bool, err error) {
	for {
		tok, err := r.next()
		if err != nil {
			if err == io.EOF {
				return "", false, nil
			}
			return "", false, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			r.tag = t.Name.Local
			r.attrs = t.Attr
			return "<" + r.tag + ">", true, nil
		case xml.EndElement:
			r.tag = t.Name.Local
			r.attrs = nil
			return "</" + r.tag + ">", true, nil
		}
	}
}

// Attribute returns the value of the attribute with the given local name on
// the current element.
func (r *Reader) Attribute(name string) (string, bool) {
	for _, a := range r.attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// RequiredAttribute is like Attribute but fails when the attribute is absent.
func (r *Reader) RequiredAttribute(name string) (string, error) {
	value, ok := r.Attribute(name)
	if !ok {
		return "", r.ParseError(fmt.Sprintf("Missing attribute %q in element <%s>", name, r.tag))
	}
	return value, nil
}

// RequiredIntAttribute returns the attribute as an integer.
func (r *Reader) RequiredIntAttribute(name string) (int, error) {
	value, err := r.RequiredAttribute(name)
	if err != nil {
		return 0, err
	}
	return r.toInt(name, value)
}

// CheckRequiredAttribute fails unless the integer attribute equals expected.
func (r *Reader) CheckRequiredAttribute(name string, expected int) error {
	actual, err := r.RequiredIntAttribute(name)
	if err != nil {
		return err
	}
	if actual != expected {
		return r.ParseError(fmt.Sprintf("Expected \"%d\" instead of \"%d\" for the %q attribute", expected, actual, name))
	}
	return nil
}

// IntAttributeOrZero returns 0 when the attribute is absent. A present but
// non-numeric value is still an error.
func (r *Reader) IntAttributeOrZero(name string) (int, error) {
	value, ok := r.Attribute(name)
	if !ok {
		return 0, nil
	}
	return r.toInt(name, value)
}

// DoubleAttribute returns the attribute as a finite float64; ok is false when
// the attribute is absent. Both "," and "." are accepted as decimal separator.
func (r *Reader) DoubleAttribute(name string) (value float64, ok bool, err error) {
	raw, ok := r.Attribute(name)
	if !ok {
		return 0, false, nil
	}
	normalized := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	value, err = strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false, r.ParseError(fmt.Sprintf("Expected a double instead of %q for the attribute %q", normalized, name))
	}
	return value, true, nil
}

func (r *Reader) toInt(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, r.ParseError(fmt.Sprintf("Expected an integer instead of %q for the attribute %q", value, name))
	}
	return n, nil
}

// ParseError builds a parse error located at the current parser position.
func (r *Reader) ParseError(message string) *ierrors.ParseError {
	return &ierrors.ParseError{
		Message: message,
		Path:    r.path,
		Line:    r.line(),
	}
}

// Close releases the decoder and the underlying file. Both are released even
// if one of them fails; any failure is reported as an *errors.ReleaseError.
// Calling Close more than once is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	if err := r.releaseDecoder(); err != nil {
		errs = append(errs, err)
	}
	if err := r.src.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &ierrors.ReleaseError{Path: r.path, Cause: errors.Join(errs...)}
	}
	return nil
}

// releaseDecoder drops the tokenizer state. A charset-converting reader that
// holds resources of its own is closed as well.
func (r *Reader) releaseDecoder() (err error) {
	if r.decoder == nil {
		return nil
	}
	if r.converter != nil {
		err = r.converter.Close()
		r.converter = nil
	}
	r.decoder = nil
	r.attrs = nil
	return err
}

func (r *Reader) next() (xml.Token, error) {
	if r.closed || r.decoder == nil {
		return nil, r.ParseError("Reader is closed")
	}
	tok, err := r.decoder.Token()
	if err == nil {
		return xml.CopyToken(tok), nil
	}
	if err == io.EOF {
		return nil, io.EOF
	}
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return nil, &ierrors.ParseError{
			Message: "Error while parsing the XML file: " + syntaxErr.Msg,
			Path:    r.path,
			Line:    syntaxErr.Line,
			Cause:   err,
		}
	}
	return nil, &ierrors.ParseError{
		Message: "Error while parsing the XML file: " + err.Error(),
		Path:    r.path,
		Line:    r.line(),
		Cause:   err,
	}
}

func (r *Reader) line() int {
	if r.decoder == nil {
		return 0
	}
	line, _ := r.decoder.InputPos()
	return line
}
