/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: writer.go
Description: Re-encoding consumers. ASCIIWriter emits canonical ASCII STL and
BinaryWriter emits binary STL, patching the triangle count through io.Seeker when the
source did not announce it.
*/

package sinks

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kleascm/stlstream/pkg/stl"
)

// ErrCountUnknown is returned when a binary count must be patched but the
// destination cannot seek.
var ErrCountUnknown = errors.New("sinks: triangle count unknown and writer cannot seek")

// ASCIIWriter writes the event stream as ASCII STL
type ASCIIWriter struct {
	w    *bufio.Writer
	name string
	err  error
}

// NewASCIIWriter creates an ASCII STL writer on w
func NewASCIIWriter(w io.Writer) *ASCIIWriter {
	return &ASCIIWriter{w: bufio.NewWriter(w)}
}

// Err returns the first write error, if any
func (a *ASCIIWriter) Err() error {
	return a.err
}

func (a *ASCIIWriter) write(parts ...string) {
	if a.err != nil {
		return
	}
	for _, s := range parts {
		if _, a.err = a.w.WriteString(s); a.err != nil {
			return
		}
	}
}

func formatVector(v stl.Vector3) string {
	return formatFloat(v.X) + " " + formatFloat(v.Y) + " " + formatFloat(v.Z)
}

// formatFloat uses the shortest representation that parses back to the same float32
func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'e', -1, 32)
}

// BeginASCII writes the solid line
func (a *ASCIIWriter) BeginASCII(name string) {
	a.begin(name)
}

// BeginBinary writes the solid line named after the printable header text
func (a *ASCIIWriter) BeginBinary(header [stl.HeaderSize]byte) {
	a.begin(headerText(header))
}

func (a *ASCIIWriter) begin(name string) {
	a.name = strings.Join(strings.Fields(name), " ")
	if a.name == "" {
		a.write("solid\n")
		return
	}
	a.write("solid ", a.name, "\n")
}

// NumberOfTriangles is ignored; ASCII STL carries no count
func (a *ASCIIWriter) NumberOfTriangles(uint32) {}

// BeginFacet writes the facet normal line
func (a *ASCIIWriter) BeginFacet(normal stl.Vector3) {
	a.write("  facet normal ", formatVector(normal), "\n")
}

// Triangle writes the outer loop with its three vertices
func (a *ASCIIWriter) Triangle(v1, v2, v3 stl.Vector3) {
	a.write("    outer loop\n")
	for _, v := range [3]stl.Vector3{v1, v2, v3} {
		a.write("      vertex ", formatVector(v), "\n")
	}
	a.write("    endloop\n")
}

// EndFacet writes the endfacet line
func (a *ASCIIWriter) EndFacet() {
	a.write("  endfacet\n")
}

// EndSolid writes the endsolid line and flushes
func (a *ASCIIWriter) EndSolid() {
	if a.name == "" {
		a.write("endsolid\n")
	} else {
		a.write("endsolid ", a.name, "\n")
	}
	if a.err == nil {
		a.err = a.w.Flush()
	}
}

// BinaryWriter writes the event stream as binary STL
type BinaryWriter struct {
	w        io.Writer
	bw       *bufio.Writer
	declared uint32
	known    bool
	written  uint32
	facet    stl.Facet
	err      error
}

// NewBinaryWriter creates a binary STL writer on w. When the source does not
// announce a triangle count, or announces a wrong one, w must implement
// io.Seeker so the count can be patched at EndSolid.
func NewBinaryWriter(w io.Writer) *BinaryWriter {
	return &BinaryWriter{w: w, bw: bufio.NewWriter(w)}
}

// Err returns the first write error, if any
func (b *BinaryWriter) Err() error {
	return b.err
}

func (b *BinaryWriter) write(p []byte) {
	if b.err != nil {
		return
	}
	_, b.err = b.bw.Write(p)
}

// asciiHeader builds a binary header for a named solid. It never starts with
// "solid", which would make the output look like ASCII STL.
func asciiHeader(name string) [stl.HeaderSize]byte {
	var h [stl.HeaderSize]byte
	copy(h[:], "binary STL "+name)
	return h
}

// BeginASCII writes a header for the named solid and a zero count,
// patched at EndSolid
func (b *BinaryWriter) BeginASCII(name string) {
	h := asciiHeader(name)
	b.write(h[:])
	b.writeCount(0)
}

// BeginBinary copies the source header
func (b *BinaryWriter) BeginBinary(header [stl.HeaderSize]byte) {
	b.write(header[:])
}

// NumberOfTriangles writes the declared count
func (b *BinaryWriter) NumberOfTriangles(count uint32) {
	b.declared, b.known = count, true
	b.writeCount(count)
}

func (b *BinaryWriter) writeCount(count uint32) {
	c := stl.EncodeCount(count)
	b.write(c[:])
}

// BeginFacet holds the normal until the facet ends
func (b *BinaryWriter) BeginFacet(normal stl.Vector3) {
	b.facet = stl.Facet{Normal: normal}
}

// Triangle holds the vertices until the facet ends
func (b *BinaryWriter) Triangle(v1, v2, v3 stl.Vector3) {
	b.facet.Vertices = [3]stl.Vector3{v1, v2, v3}
}

// EndFacet writes one 50 byte record with zero attribute bytes
func (b *BinaryWriter) EndFacet() {
	rec := stl.EncodeRecord(b.facet, 0)
	b.write(rec[:])
	b.written++
}

// EndSolid flushes the output. When the count was never announced, or
// differs from the facets written, it seeks back and rewrites the count
// field, failing with ErrCountUnknown if the writer cannot seek.
func (b *BinaryWriter) EndSolid() {
	if b.err == nil {
		b.err = b.bw.Flush()
	}
	if b.err != nil || (b.known && b.declared == b.written) {
		return
	}
	b.err = b.patchCount()
}

// patchCount rewrites the count field after the header.
func (b *BinaryWriter) patchCount() error {
	ws, ok := b.w.(io.WriteSeeker)
	if !ok {
		return ErrCountUnknown
	}
	end, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	if _, err := ws.Seek(stl.HeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	c := stl.EncodeCount(b.written)
	if _, err := ws.Write(c[:]); err != nil {
		return fmt.Errorf("write count %d: %w", b.written, err)
	}
	if _, err := ws.Seek(end, io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	return nil
}

var (
	_ stl.Handler = (*ASCIIWriter)(nil)
	_ stl.Handler = (*BinaryWriter)(nil)
)
