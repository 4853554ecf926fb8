/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Core value types for the STL streaming decoder. Vectors and facets are
transient values handed to a Handler; the decoder never retains them.
*/

package stl

import "fmt"

const (
	// HeaderSize is the size of the opaque binary STL header block.
	HeaderSize = 80

	// countSize is the size of the little-endian triangle count.
	countSize = 4

	// RecordSize is the size of one binary triangle record: normal, three
	// vertices and two attribute bytes.
	RecordSize = 50

	// solidKeyword opens every ASCII STL document.
	solidKeyword = "solid"
)

// Vector3 is a single-precision 3D vector. NaN and Inf components are passed through.
type Vector3 struct {
	X, Y, Z float32
}

// String renders the vector as [x,y,z]
func (v Vector3) String() string {
	return fmt.Sprintf("[%v,%v,%v]", v.X, v.Y, v.Z)
}

// Facet is one triangle with its normal, vertices in source order.
type Facet struct {
	Normal   Vector3
	Vertices [3]Vector3
}

// Format identifies which STL variant a stream holds.
type Format int

const (
	FormatUnknown Format = iota
	FormatASCII
	FormatBinary
)

// String returns the format name
func (f Format) String() string {
	switch f {
	case FormatASCII:
		return "ascii"
	case FormatBinary:
		return "binary"
	default:
		return "unknown"
	}
}
