/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: printer.go
Description: Debug printing consumer. Writes a readable trace of every event to an
io.Writer, one block per facet.
*/

package sinks

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kleascm/stlstream/pkg/stl"
)

// Printer writes a human readable trace of the event stream
type Printer struct {
	w   io.Writer
	err error
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Err returns the first write error, if any
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// BeginASCII prints the solid name
func (p *Printer) BeginASCII(name string) {
	p.printf("ASCII STL started: %q\n", name)
}

// BeginBinary prints the printable part of the header
func (p *Printer) BeginBinary(header [stl.HeaderSize]byte) {
	p.printf("Binary STL started: %q\n", headerText(header))
}

// NumberOfTriangles prints the declared count
func (p *Printer) NumberOfTriangles(count uint32) {
	p.printf("Triangles: %d\n", count)
}

// BeginFacet prints the facet normal
func (p *Printer) BeginFacet(normal stl.Vector3) {
	p.printf("Facet\n Normal\n    %s\n", normal)
}

// Triangle prints the three vertices
func (p *Printer) Triangle(v1, v2, v3 stl.Vector3) {
	p.printf(" Triangle\n    %s\n    %s\n    %s\n", v1, v2, v3)
}

// EndFacet prints nothing
func (p *Printer) EndFacet() {}

// EndSolid prints the closing line
func (p *Printer) EndSolid() {
	p.printf("End of solid\n")
}

// headerText returns the printable leading part of a binary header.
func headerText(header [stl.HeaderSize]byte) string {
	b := header[:]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c >= 0x20 && c < 0x7f {
			out = append(out, c)
		}
	}
	return string(bytes.TrimSpace(out))
}

var _ stl.Handler = (*Printer)(nil)
