/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: helpers_test.go
Description: Shared test fixtures for the stl package: an event recorder and a binary
model builder.
*/

package stl_test

import (
	"bytes"

	"github.com/kleascm/stlstream/pkg/stl"
)

// event is one recorded Handler call
type event struct {
	Kind    string
	Name    string
	Header  [stl.HeaderSize]byte
	Count   uint32
	Vectors []stl.Vector3
}

// recorder captures every event in order
type recorder struct {
	events []event
}

func (r *recorder) BeginASCII(name string) {
	r.events = append(r.events, event{Kind: "beginAscii", Name: name})
}

func (r *recorder) BeginBinary(header [stl.HeaderSize]byte) {
	r.events = append(r.events, event{Kind: "beginBinary", Header: header})
}

func (r *recorder) NumberOfTriangles(count uint32) {
	r.events = append(r.events, event{Kind: "numberOfTriangles", Count: count})
}

func (r *recorder) BeginFacet(normal stl.Vector3) {
	r.events = append(r.events, event{Kind: "beginFacet", Vectors: []stl.Vector3{normal}})
}

func (r *recorder) Triangle(v1, v2, v3 stl.Vector3) {
	r.events = append(r.events, event{Kind: "triangle", Vectors: []stl.Vector3{v1, v2, v3}})
}

func (r *recorder) EndFacet() {
	r.events = append(r.events, event{Kind: "endFacet"})
}

func (r *recorder) EndSolid() {
	r.events = append(r.events, event{Kind: "endSolid"})
}

// kinds returns the event names in order
func (r *recorder) kinds() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

// facetKinds repeats the facet triple n times
func facetKinds(n int) []string {
	out := make([]string, 0, 3*n)
	for i := 0; i < n; i++ {
		out = append(out, "beginFacet", "triangle", "endFacet")
	}
	return out
}

// binaryModel builds a binary STL stream declaring len(facets) triangles
func binaryModel(header [stl.HeaderSize]byte, facets ...stl.Facet) []byte {
	return binaryModelWithCount(header, uint32(len(facets)), facets...)
}

// binaryModelWithCount builds a binary STL stream with an arbitrary declared count
func binaryModelWithCount(header [stl.HeaderSize]byte, count uint32, facets ...stl.Facet) []byte {
	var buf bytes.Buffer
	buf.Write(header[:])
	c := stl.EncodeCount(count)
	buf.Write(c[:])
	for i, f := range facets {
		rec := stl.EncodeRecord(f, uint16(i))
		buf.Write(rec[:])
	}
	return buf.Bytes()
}

var cubeFacet = stl.Facet{
	Normal: stl.Vector3{X: 0, Y: 0, Z: 1},
	Vertices: [3]stl.Vector3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
	},
}

const cubeASCII = "solid cube\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nvertex 1 1 0\nendloop\nendfacet\nendsolid\n"
