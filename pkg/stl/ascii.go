/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: ascii.go
Description: ASCII STL decoder. A line-oriented state machine over trimmed, non-blank
lines: a solid header, then facets until endsolid. Every failure carries the 1-based
line number where it was detected.
*/

package stl

import (
	"bufio"
	"io"
	"strings"
)

// ASCII grammar keywords
const (
	keywordFacetNormal = "facet normal"
	keywordOuterLoop   = "outer loop"
	keywordVertex      = "vertex"
	keywordEndLoop     = "endloop"
	keywordEndFacet    = "endfacet"
	keywordEndSolid    = "endsolid"
)

// lineReader yields trimmed non-blank lines and tracks the physical line number.
type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func newLineReader(r io.Reader, maxLineLength int) *lineReader {
	sc := bufio.NewScanner(r)
	initial := 4096
	if maxLineLength < initial {
		initial = maxLineLength
	}
	sc.Buffer(make([]byte, 0, initial), maxLineLength)
	return &lineReader{sc: sc}
}

// next returns the next non-blank line. Running out of input is always an
// UnexpectedEOF: every caller needs a line.
func (lr *lineReader) next() (string, error) {
	for lr.sc.Scan() {
		lr.line++
		if text := strings.TrimSpace(lr.sc.Text()); text != "" {
			return text, nil
		}
	}
	if err := lr.sc.Err(); err != nil {
		return "", ioFailure(err, lr.line+1)
	}
	return "", &ParseError{Kind: KindUnexpectedEOF, Line: lr.line + 1}
}

// expect reads the next line, requires it to start with keyword and returns
// the remainder.
func (lr *lineReader) expect(keyword string, kind ErrorKind) (string, error) {
	text, err := lr.next()
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(text, keyword) {
		return "", malformed(kind, lr.line, nil)
	}
	return text[len(keyword):], nil
}

// vector parses the remainder of the current line.
func (lr *lineReader) vector(rest string) (Vector3, error) {
	v, err := parseVector(rest)
	if err != nil {
		return Vector3{}, malformed(KindMalformedVector, lr.line, err)
	}
	return v, nil
}

func (p *Parser) parseASCII(s *session, r io.Reader, h Handler) error {
	lr := newLineReader(r, p.maxLineLength)

	name, err := lr.expect(solidKeyword, KindMalformedHeader)
	if err != nil {
		return err
	}
	h.BeginASCII(strings.TrimSpace(name))

	for {
		more, err := readFacet(lr, h)
		if err != nil {
			return err
		}
		if !more {
			break
		}
		s.facets++
	}

	h.EndSolid()
	return nil
}

// readFacet consumes one facet block, or the endsolid line. It reports
// whether a facet was read.
func readFacet(lr *lineReader, h Handler) (bool, error) {
	text, err := lr.next()
	if err != nil {
		return false, err
	}
	if strings.HasPrefix(text, keywordEndSolid) {
		return false, nil
	}
	if !strings.HasPrefix(text, keywordFacetNormal) {
		return false, malformed(KindMalformedFacetLine, lr.line, nil)
	}

	normal, err := lr.vector(text[len(keywordFacetNormal):])
	if err != nil {
		return false, err
	}
	h.BeginFacet(normal)

	if _, err := lr.expect(keywordOuterLoop, KindMalformedLoopOpen); err != nil {
		return false, err
	}

	var verts [3]Vector3
	for i := range verts {
		rest, err := lr.expect(keywordVertex, KindMalformedVertex)
		if err != nil {
			return false, err
		}
		if verts[i], err = lr.vector(rest); err != nil {
			return false, err
		}
	}

	if _, err := lr.expect(keywordEndLoop, KindMalformedLoopClose); err != nil {
		return false, err
	}
	h.Triangle(verts[0], verts[1], verts[2])

	if _, err := lr.expect(keywordEndFacet, KindMalformedFacetClose); err != nil {
		return false, err
	}
	h.EndFacet()
	return true, nil
}
