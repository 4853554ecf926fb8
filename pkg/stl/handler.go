/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: handler.go
Description: Event sink contract for the STL decoder. A Handler receives structural
events in document order: one Begin call, zero or more facets, one EndSolid.
*/

package stl

// Handler receives the event stream of one parse.
//
// The order is always:
//
//	BeginASCII | BeginBinary
//	NumberOfTriangles            (binary only)
//	(BeginFacet Triangle EndFacet)*
//	EndSolid
//
// Calls are synchronous and made on the goroutine that called Parse. A failed
// parse may stop the sequence at any point; EndSolid is then never delivered.
type Handler interface {
	// BeginASCII opens an ASCII solid with its (trimmed) name.
	BeginASCII(name string)
	// BeginBinary opens a binary solid with its raw header block.
	BeginBinary(header [HeaderSize]byte)
	// NumberOfTriangles reports the declared triangle count of a binary solid.
	NumberOfTriangles(count uint32)
	// BeginFacet opens a facet with its normal.
	BeginFacet(normal Vector3)
	// Triangle delivers the three vertices of the open facet.
	Triangle(v1, v2, v3 Vector3)
	// EndFacet closes the open facet.
	EndFacet()
	// EndSolid terminates the stream.
	EndSolid()
}

// NopHandler implements every Handler method as a no-op. Embed it to
// implement only the events you care about.
type NopHandler struct{}

// BeginASCII does nothing
func (NopHandler) BeginASCII(string) {}

// BeginBinary does nothing
func (NopHandler) BeginBinary([HeaderSize]byte) {}

// NumberOfTriangles does nothing
func (NopHandler) NumberOfTriangles(uint32) {}

// BeginFacet does nothing
func (NopHandler) BeginFacet(Vector3) {}

// Triangle does nothing
func (NopHandler) Triangle(Vector3, Vector3, Vector3) {}

// EndFacet does nothing
func (NopHandler) EndFacet() {}

// EndSolid does nothing
func (NopHandler) EndSolid() {}

var _ Handler = NopHandler{}
