/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tee.go
Description: Fan-out consumer delivering every event to several handlers in order.
*/

package sinks

import "github.com/kleascm/stlstream/pkg/stl"

type tee []stl.Handler

// Tee returns a Handler that forwards each event to every handler, in the
// order given.
func Tee(handlers ...stl.Handler) stl.Handler {
	return tee(handlers)
}

func (t tee) BeginASCII(name string) {
	for _, h := range t {
		h.BeginASCII(name)
	}
}

func (t tee) BeginBinary(header [stl.HeaderSize]byte) {
	for _, h := range t {
		h.BeginBinary(header)
	}
}

func (t tee) NumberOfTriangles(count uint32) {
	for _, h := range t {
		h.NumberOfTriangles(count)
	}
}

func (t tee) BeginFacet(normal stl.Vector3) {
	for _, h := range t {
		h.BeginFacet(normal)
	}
}

func (t tee) Triangle(v1, v2, v3 stl.Vector3) {
	for _, h := range t {
		h.Triangle(v1, v2, v3)
	}
}

func (t tee) EndFacet() {
	for _, h := range t {
		h.EndFacet()
	}
}

func (t tee) EndSolid() {
	for _, h := range t {
		h.EndSolid()
	}
}
