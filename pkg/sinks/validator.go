/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: validator.go
Description: Contract checking consumer. Tracks the event state machine and records
the first call that breaks the documented order.
*/

package sinks

import (
	"fmt"

	"github.com/kleascm/stlstream/pkg/stl"
)

type validatorState int

const (
	stateStart validatorState = iota
	stateSolid
	stateFacet
	stateTriangle
	stateDone
)

// OrderError describes an event delivered out of order
type OrderError struct {
	Event string
	State string
}

// Error implements error
func (e *OrderError) Error() string {
	return fmt.Sprintf("sinks: %s not allowed %s", e.Event, e.State)
}

var stateNames = map[validatorState]string{
	stateStart:    "before the solid begins",
	stateSolid:    "between facets",
	stateFacet:    "after BeginFacet",
	stateTriangle: "after Triangle",
	stateDone:     "after EndSolid",
}

// Validator checks that events follow the Handler contract. It wraps an
// optional next Handler, which receives every event regardless.
type Validator struct {
	next     stl.Handler
	state    validatorState
	binary   bool
	counted  bool
	declared uint32
	facets   uint64
	err      error
}

// NewValidator creates a validator forwarding to next, which may be nil
func NewValidator(next stl.Handler) *Validator {
	if next == nil {
		next = stl.NopHandler{}
	}
	return &Validator{next: next}
}

// Err returns the first ordering violation, or a count mismatch for a
// completed binary solid
func (v *Validator) Err() error {
	if v.err != nil {
		return v.err
	}
	if v.state == stateDone && v.counted && uint64(v.declared) != v.facets {
		return fmt.Errorf("sinks: declared %d triangles, received %d", v.declared, v.facets)
	}
	return nil
}

// Done reports whether EndSolid was received
func (v *Validator) Done() bool {
	return v.state == stateDone
}

// Facets returns the number of completed facets
func (v *Validator) Facets() uint64 {
	return v.facets
}

func (v *Validator) require(event string, want validatorState, next validatorState) {
	if v.err == nil && v.state != want {
		v.err = &OrderError{Event: event, State: stateNames[v.state]}
	}
	v.state = next
}

// BeginASCII must be the first event
func (v *Validator) BeginASCII(name string) {
	v.require("BeginASCII", stateStart, stateSolid)
	v.next.BeginASCII(name)
}

// BeginBinary must be the first event
func (v *Validator) BeginBinary(header [stl.HeaderSize]byte) {
	v.require("BeginBinary", stateStart, stateSolid)
	v.binary = true
	v.next.BeginBinary(header)
}

// NumberOfTriangles is allowed once, only in a binary solid and before any
// facet. The count is checked against received facets once EndSolid arrives.
func (v *Validator) NumberOfTriangles(count uint32) {
	if v.err == nil && (!v.binary || v.counted || v.facets > 0 || v.state != stateSolid) {
		v.err = &OrderError{Event: "NumberOfTriangles", State: stateNames[v.state]}
	}
	v.counted = true
	v.declared = count
	v.next.NumberOfTriangles(count)
}

// BeginFacet must follow the solid start or a closed facet
func (v *Validator) BeginFacet(normal stl.Vector3) {
	v.require("BeginFacet", stateSolid, stateFacet)
	v.next.BeginFacet(normal)
}

// Triangle must follow BeginFacet, exactly once per facet
func (v *Validator) Triangle(v1, v2, v3 stl.Vector3) {
	v.require("Triangle", stateFacet, stateTriangle)
	v.next.Triangle(v1, v2, v3)
}

// EndFacet must follow Triangle
func (v *Validator) EndFacet() {
	v.require("EndFacet", stateTriangle, stateSolid)
	v.facets++
	v.next.EndFacet()
}

// EndSolid must follow the solid start or a closed facet
func (v *Validator) EndSolid() {
	v.require("EndSolid", stateSolid, stateDone)
	v.next.EndSolid()
}

var _ stl.Handler = (*Validator)(nil)
