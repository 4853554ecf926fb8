/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error taxonomy shared by the dispatcher and both decoders. Every failure
is a *ParseError carrying its kind plus the line, triangle or byte counts needed for
an actionable message. Sentinels match by kind through errors.Is.
*/

package stl

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrorKind classifies a parse failure. All kinds are fatal to the parse.
type ErrorKind int

const (
	KindIO ErrorKind = iota + 1
	KindTruncatedHeader
	KindTruncatedCount
	KindTruncatedTriangle
	KindUnexpectedEOF
	KindMalformedHeader
	KindMalformedFacetLine
	KindMalformedLoopOpen
	KindMalformedLoopClose
	KindMalformedFacetClose
	KindMalformedVertex
	KindMalformedVector
	KindInvalidCount
)

var kindNames = map[ErrorKind]string{
	KindIO:                  "i/o failure",
	KindTruncatedHeader:     "truncated header",
	KindTruncatedCount:      "truncated triangle count",
	KindTruncatedTriangle:   "truncated triangle",
	KindUnexpectedEOF:       "unexpected end of file",
	KindMalformedHeader:     "malformed header, expected 'solid'",
	KindMalformedFacetLine:  "malformed facet, expected 'facet normal' or 'endsolid'",
	KindMalformedLoopOpen:   "malformed loop, expected 'outer loop'",
	KindMalformedLoopClose:  "malformed loop, expected 'endloop'",
	KindMalformedFacetClose: "malformed facet, expected 'endfacet'",
	KindMalformedVertex:     "malformed vertex, expected 'vertex'",
	KindMalformedVector:     "malformed vector",
	KindInvalidCount:        "invalid triangle count",
}

// String returns a human readable name for the kind
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels for errors.Is. A *ParseError matches the sentinel of its kind.
var (
	ErrIO                  = &ParseError{Kind: KindIO}
	ErrTruncatedHeader     = &ParseError{Kind: KindTruncatedHeader}
	ErrTruncatedCount      = &ParseError{Kind: KindTruncatedCount}
	ErrTruncatedTriangle   = &ParseError{Kind: KindTruncatedTriangle}
	ErrUnexpectedEOF       = &ParseError{Kind: KindUnexpectedEOF}
	ErrMalformedHeader     = &ParseError{Kind: KindMalformedHeader}
	ErrMalformedFacetLine  = &ParseError{Kind: KindMalformedFacetLine}
	ErrMalformedLoopOpen   = &ParseError{Kind: KindMalformedLoopOpen}
	ErrMalformedLoopClose  = &ParseError{Kind: KindMalformedLoopClose}
	ErrMalformedFacetClose = &ParseError{Kind: KindMalformedFacetClose}
	ErrMalformedVertex     = &ParseError{Kind: KindMalformedVertex}
	ErrMalformedVector     = &ParseError{Kind: KindMalformedVector}
	ErrInvalidCount        = &ParseError{Kind: KindInvalidCount}
)

// ParseError describes why a parse stopped.
type ParseError struct {
	Kind ErrorKind

	// Line is the 1-based source line of an ASCII failure, 0 otherwise.
	Line int

	// Index is the 1-based triangle being read and Total the declared count
	// (binary only).
	Index uint32
	Total uint32

	// Read and Expected are byte counts of a short read.
	Read     int
	Expected int

	// Err is the underlying cause, if any.
	Err error
}

// Error formats the failure with whatever position information it carries
func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("stl: ")
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Kind.String())
	if e.Index > 0 {
		fmt.Fprintf(&b, " %d of %d", e.Index, e.Total)
	} else if e.Kind == KindInvalidCount {
		fmt.Fprintf(&b, " %d", e.Total)
	}
	if e.Expected > 0 {
		fmt.Fprintf(&b, ": read %d of %d bytes", e.Read, e.Expected)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *ParseError of the same kind.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *ParseError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

func ioFailure(err error, line int) *ParseError {
	return &ParseError{Kind: KindIO, Line: line, Err: err}
}

func malformed(kind ErrorKind, line int, cause error) *ParseError {
	return &ParseError{Kind: kind, Line: line, Err: cause}
}

// shortRead maps the result of io.ReadFull onto the truncation kind, or onto
// an i/o failure when the source itself failed.
func shortRead(kind ErrorKind, err error, read, expected int) *ParseError {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &ParseError{Kind: kind, Read: read, Expected: expected}
	}
	return &ParseError{Kind: KindIO, Read: read, Expected: expected, Err: err}
}
