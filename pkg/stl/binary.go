/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: binary.go
Description: Binary STL decoder. Reads the 80 byte header, the little-endian triangle
count and one 50 byte record per triangle, emitting events as each record arrives.
*/

package stl

import "io"

// parseBinary runs the fixed-layout read loop.
func (p *Parser) parseBinary(s *session, r io.Reader, h Handler) error {
	var header [HeaderSize]byte
	if n, err := io.ReadFull(r, header[:]); err != nil {
		return shortRead(KindTruncatedHeader, err, n, HeaderSize)
	}
	h.BeginBinary(header)

	var countBuf [countSize]byte
	if n, err := io.ReadFull(r, countBuf[:]); err != nil {
		return shortRead(KindTruncatedCount, err, n, countSize)
	}
	count := le.Uint32(countBuf[:])
	if err := p.checkCount(count); err != nil {
		return err
	}
	h.NumberOfTriangles(count)

	var rec [RecordSize]byte
	for i := uint32(0); i < count; i++ {
		n, err := io.ReadFull(r, rec[:])
		if err != nil {
			pe := shortRead(KindTruncatedTriangle, err, n, RecordSize)
			pe.Index, pe.Total = i+1, count
			return pe
		}

		f := DecodeRecord(rec[:])
		h.BeginFacet(f.Normal)
		h.Triangle(f.Vertices[0], f.Vertices[1], f.Vertices[2])
		h.EndFacet()
		s.facets++
	}

	h.EndSolid()
	return nil
}

// checkCount bounds the declared count against the configured limits.
func (p *Parser) checkCount(count uint32) error {
	if p.maxTriangles > 0 && count > p.maxTriangles {
		return &ParseError{Kind: KindInvalidCount, Total: count}
	}
	if p.sizeHint > 0 {
		need := int64(HeaderSize+countSize) + int64(count)*RecordSize
		if need > p.sizeHint {
			return &ParseError{Kind: KindInvalidCount, Total: count}
		}
	}
	return nil
}

// DecodeRecord decodes a binary triangle record. b must hold at least
// RecordSize bytes; the attribute bytes are ignored.
func DecodeRecord(b []byte) Facet {
	_ = b[RecordSize-1]
	return Facet{
		Normal: decodeVector(b[0:12]),
		Vertices: [3]Vector3{
			decodeVector(b[12:24]),
			decodeVector(b[24:36]),
			decodeVector(b[36:48]),
		},
	}
}

// EncodeRecord encodes f as a binary triangle record with the given attribute word.
func EncodeRecord(f Facet, attr uint16) [RecordSize]byte {
	var b [RecordSize]byte
	encodeVector(b[0:12], f.Normal)
	encodeVector(b[12:24], f.Vertices[0])
	encodeVector(b[24:36], f.Vertices[1])
	encodeVector(b[36:48], f.Vertices[2])
	le.PutUint16(b[48:50], attr)
	return b
}

// EncodeCount encodes a triangle count as it appears after the header.
func EncodeCount(count uint32) [countSize]byte {
	var b [countSize]byte
	le.PutUint32(b[:], count)
	return b
}
