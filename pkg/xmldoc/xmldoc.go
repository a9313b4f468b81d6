// Package xmldoc loads relational XML documents into an in-memory tree.
//
// Input files are size-capped and must carry the .xml extension; violations
// are reported as input errors before any parsing happens. The raw bytes are
// decoded from a single-byte Western-European charset (ISO-8859-1 unless
// configured otherwise) and parsed with CDATA sections preserved, so that the
// patch serializer can re-emit them unchanged.
//
// A [Document] is the pristine source of a load/edit/save cycle. It is never
// mutated; callers that need to change the tree work on [Document.Clone].
package xmldoc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/matzehuels/relgraph/pkg/errors"
)

const (
	// DefaultMaxSize is the largest accepted input document (5 MB).
	DefaultMaxSize int64 = 5 << 20

	// DefaultEncoding is the charset used to decode input bytes.
	DefaultEncoding = "ISO-8859-1"
)

// Options controls how documents are accepted and decoded.
// The zero value applies DefaultMaxSize and DefaultEncoding.
type Options struct {
	MaxSize  int64  // Reject inputs larger than this; 0 means DefaultMaxSize, <0 disables
	Encoding string // IANA charset name; empty means DefaultEncoding
}

func (o Options) maxSize() int64 {
	if o.MaxSize == 0 {
		return DefaultMaxSize
	}
	return o.MaxSize
}

func (o Options) encoding() string {
	if o.Encoding == "" {
		return DefaultEncoding
	}
	return o.Encoding
}

// Document is a parsed source document together with the bytes it came from.
type Document struct {
	Name     string // File name the document was loaded from (may be empty)
	Encoding string // Charset the raw bytes were decoded with

	raw  []byte
	tree *etree.Document
}

// ReadFile checks, reads and parses the document at path.
// The size check runs on the file metadata before the content is read.
func ReadFile(path string, opts Options) (*Document, error) {
	if err := errors.ValidateDocumentName(path); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInput, err, "stat %s", path)
	}
	if err := errors.ValidateSize(info.Size(), opts.maxSize()); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInput, err, "read %s", path)
	}
	return Load(path, data, opts)
}

// Load checks name and size of an in-memory upload and parses it.
func Load(name string, data []byte, opts Options) (*Document, error) {
	if err := errors.ValidateDocumentName(name); err != nil {
		return nil, err
	}
	if err := errors.ValidateSize(int64(len(data)), opts.maxSize()); err != nil {
		return nil, err
	}
	doc, err := Parse(data, opts.encoding())
	if err != nil {
		return nil, err
	}
	doc.Name = name
	return doc, nil
}

// Parse decodes data with the named charset and parses it as XML.
// Malformed input yields a PARSE_ERROR; an unknown charset an INVALID_INPUT.
func Parse(data []byte, charset string) (*Document, error) {
	if charset == "" {
		charset = DefaultEncoding
	}
	enc, err := lookupEncoding(charset)
	if err != nil {
		return nil, err
	}
	text, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInput, err, "decode %s", charset)
	}

	tree := etree.NewDocument()
	tree.ReadSettings = etree.ReadSettings{
		CharsetReader: passthroughCharset,
		PreserveCData: true,
	}
	if err := tree.ReadFromBytes(text); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "malformed XML")
	}
	if tree.Root() == nil {
		return nil, errors.New(errors.ErrCodeParse, "document has no root element")
	}

	return &Document{
		Encoding: charset,
		raw:      bytes.Clone(data),
		tree:     tree,
	}, nil
}

// Raw returns the bytes the document was parsed from.
// The returned slice must not be modified.
func (d *Document) Raw() []byte { return d.raw }

// Tree returns the pristine parsed tree. Callers must treat it as read-only.
func (d *Document) Tree() *etree.Document { return d.tree }

// Root returns the document element.
func (d *Document) Root() *etree.Element { return d.tree.Root() }

// Clone returns a deep copy of the tree that may be freely mutated.
func (d *Document) Clone() *etree.Document { return d.tree.Copy() }

// Encode converts serialized text back into the document's charset.
func (d *Document) Encode(text string) ([]byte, error) {
	return Encode(text, d.Encoding)
}

// Encode converts text into the named charset. Characters the charset cannot
// represent are written as numeric character references.
func Encode(text, charset string) ([]byte, error) {
	if charset == "" {
		charset = DefaultEncoding
	}
	enc, err := lookupEncoding(charset)
	if err != nil {
		return nil, err
	}
	out, err := encoding.HTMLEscapeUnsupported(enc.NewEncoder()).Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", charset, err)
	}
	return out, nil
}

// ValidateEncoding reports whether charset names a supported encoding.
func ValidateEncoding(charset string) error {
	_, err := lookupEncoding(charset)
	return err
}

func lookupEncoding(charset string) (encoding.Encoding, error) {
	if strings.EqualFold(charset, DefaultEncoding) || strings.EqualFold(charset, "latin1") {
		return charmap.ISO8859_1, nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, errors.New(errors.ErrCodeInput, "unsupported encoding %q", charset)
	}
	return enc, nil
}

// passthroughCharset accepts any declared charset: the bytes handed to the
// XML reader are already UTF-8.
func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
