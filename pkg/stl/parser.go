/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: parser.go
Description: Parser configuration and the format dispatcher. Parse sniffs the first
bytes of an unseekable stream, replays them in front of the remainder and routes the
reconstructed stream to the ASCII or binary decoder.
*/

package stl

import (
	"bytes"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultMaxLineLength bounds a single ASCII line.
const DefaultMaxLineLength = 64 * 1024

// Option configures a Parser
type Option func(*Parser)

// WithLogger sets the logger used for per-session debug output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMaxTriangles rejects binary solids declaring more than n triangles.
// Zero disables the check.
func WithMaxTriangles(n uint32) Option {
	return func(p *Parser) {
		p.maxTriangles = n
	}
}

// WithSizeHint declares the total stream length in bytes. A binary solid whose
// declared count cannot fit in that length is rejected. Zero disables the check.
func WithSizeHint(size int64) Option {
	return func(p *Parser) {
		p.sizeHint = size
	}
}

// WithMaxLineLength bounds the length of one ASCII line.
func WithMaxLineLength(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxLineLength = n
		}
	}
}

// Parser decodes STL streams. A Parser holds only configuration and is safe for
// concurrent use; every call owns its own session state.
type Parser struct {
	logger        logrus.FieldLogger
	maxTriangles  uint32
	sizeHint      int64
	maxLineLength int
}

// New creates a Parser with the given options
func New(opts ...Option) *Parser {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Parser{
		logger:        discard,
		maxLineLength: DefaultMaxLineLength,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes one STL model from r, detecting its format, and emits events to h.
func Parse(r io.Reader, h Handler) error {
	return New().Parse(r, h)
}

// ParseASCII decodes an ASCII STL model from r.
func ParseASCII(r io.Reader, h Handler) error {
	return New().ParseASCII(r, h)
}

// ParseBinary decodes a binary STL model from r.
func ParseBinary(r io.Reader, h Handler) error {
	return New().ParseBinary(r, h)
}

// Detect reads the first len("solid") bytes of r and reports the format. The
// returned reader yields the complete original stream, sniffed bytes included.
// Nothing is lost when detection fails, except what the source itself refused.
func Detect(r io.Reader) (Format, io.Reader, error) {
	prefix := make([]byte, len(solidKeyword))
	n, err := io.ReadFull(r, prefix)
	if err != nil {
		return FormatUnknown, replay(prefix[:n], r), shortRead(KindTruncatedHeader, err, n, len(prefix))
	}

	format := FormatBinary
	if bytes.HasPrefix(prefix, []byte(solidKeyword)) {
		format = FormatASCII
	}
	return format, replay(prefix, r), nil
}

// replay yields prefix and then the rest of r.
func replay(prefix []byte, r io.Reader) io.Reader {
	return io.MultiReader(bytes.NewReader(prefix), r)
}

// Parse detects the format of r and runs the matching decoder.
func (p *Parser) Parse(r io.Reader, h Handler) error {
	s := p.newSession()

	format, stream, err := Detect(r)
	if err != nil {
		s.log.WithError(err).Debug("Format detection failed")
		return err
	}
	s.log = s.log.WithField("format", format.String())
	s.log.Debug("Format detected")

	if format == FormatASCII {
		return s.finish(p.parseASCII(s, stream, h))
	}
	return s.finish(p.parseBinary(s, stream, h))
}

// ParseASCII decodes r as ASCII STL without format detection.
func (p *Parser) ParseASCII(r io.Reader, h Handler) error {
	s := p.newSession()
	s.log = s.log.WithField("format", FormatASCII.String())
	return s.finish(p.parseASCII(s, r, h))
}

// ParseBinary decodes r as binary STL without format detection.
func (p *Parser) ParseBinary(r io.Reader, h Handler) error {
	s := p.newSession()
	s.log = s.log.WithField("format", FormatBinary.String())
	return s.finish(p.parseBinary(s, r, h))
}

// session is the state of one parse call.
type session struct {
	log    logrus.FieldLogger
	start  time.Time
	facets uint64
}

func (p *Parser) newSession() *session {
	return &session{
		log:   p.logger.WithField("session_id", uuid.New().String()),
		start: time.Now(),
	}
}

func (s *session) finish(err error) error {
	fields := logrus.Fields{
		"facets":   s.facets,
		"duration": time.Since(s.start),
	}
	if err != nil {
		s.log.WithFields(fields).WithError(err).Debug("Parse failed")
		return err
	}
	s.log.WithFields(fields).Debug("Parse completed")
	return nil
}
