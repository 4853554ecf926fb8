/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: stats.go
Description: Statistics consumer. Accumulates facet counts, bounding box, surface
area and normal/degeneracy checks without retaining any facet.
*/

package sinks

import (
	"math"

	"github.com/kleascm/stlstream/pkg/stl"
)

// DefaultNormalEpsilon is the tolerance on |n|² - 1 for a unit normal
const DefaultNormalEpsilon = 1e-4

// Bounds is an axis aligned bounding box
type Bounds struct {
	Min stl.Vector3 `json:"min" yaml:"min"`
	Max stl.Vector3 `json:"max" yaml:"max"`
}

// extend grows b to contain p
func (b *Bounds) extend(p stl.Vector3) {
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Min.Z = min(b.Min.Z, p.Z)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
	b.Max.Z = max(b.Max.Z, p.Z)
}

// Report summarises one parsed model
type Report struct {
	Format              string  `json:"format" yaml:"format"`
	Name                string  `json:"name,omitempty" yaml:"name,omitempty"`
	DeclaredTriangles   *uint32 `json:"declared_triangles,omitempty" yaml:"declared_triangles,omitempty"`
	Facets              uint64  `json:"facets" yaml:"facets"`
	Bounds              *Bounds `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	SurfaceArea         float64 `json:"surface_area" yaml:"surface_area"`
	NonUnitNormals      uint64  `json:"non_unit_normals" yaml:"non_unit_normals"`
	DegenerateTriangles uint64  `json:"degenerate_triangles" yaml:"degenerate_triangles"`
	Complete            bool    `json:"complete" yaml:"complete"`
}

// Stats accumulates a Report from the event stream
type Stats struct {
	epsilon float64
	report  Report
}

// NewStats creates a statistics consumer with the default normal tolerance
func NewStats() *Stats {
	return &Stats{epsilon: DefaultNormalEpsilon, report: Report{Format: stl.FormatUnknown.String()}}
}

// WithEpsilon sets the unit normal tolerance
func (s *Stats) WithEpsilon(eps float64) *Stats {
	s.epsilon = eps
	return s
}

// Report returns a copy of the accumulated report
func (s *Stats) Report() Report {
	r := s.report
	if r.Bounds != nil {
		b := *r.Bounds
		r.Bounds = &b
	}
	return r
}

// BeginASCII records the format and solid name
func (s *Stats) BeginASCII(name string) {
	s.report.Format = stl.FormatASCII.String()
	s.report.Name = name
}

// BeginBinary records the format and uses the printable header text as name
func (s *Stats) BeginBinary(header [stl.HeaderSize]byte) {
	s.report.Format = stl.FormatBinary.String()
	s.report.Name = headerText(header)
}

// NumberOfTriangles records the declared count
func (s *Stats) NumberOfTriangles(count uint32) {
	s.report.DeclaredTriangles = &count
}

// BeginFacet counts normals outside the unit tolerance
func (s *Stats) BeginFacet(normal stl.Vector3) {
	if !IsUnit(normal, s.epsilon) {
		s.report.NonUnitNormals++
	}
}

// Triangle extends the bounds and adds the area. Zero area triangles are counted as degenerate.
func (s *Stats) Triangle(v1, v2, v3 stl.Vector3) {
	if s.report.Bounds == nil {
		s.report.Bounds = &Bounds{Min: v1, Max: v1}
	}
	for _, v := range [3]stl.Vector3{v1, v2, v3} {
		s.report.Bounds.extend(v)
	}

	area := Area(v1, v2, v3)
	if area == 0 {
		s.report.DegenerateTriangles++
	}
	s.report.SurfaceArea += area
}

// EndFacet counts a completed facet
func (s *Stats) EndFacet() {
	s.report.Facets++
}

// EndSolid marks the report complete
func (s *Stats) EndSolid() {
	s.report.Complete = true
}

// IsUnit reports whether v has unit length within eps on the squared length
func IsUnit(v stl.Vector3, eps float64) bool {
	return math.Abs(1-lengthSquared(v)) < eps
}

func lengthSquared(v stl.Vector3) float64 {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	return x*x + y*y + z*z
}

// Area returns the area of the triangle v1 v2 v3
func Area(v1, v2, v3 stl.Vector3) float64 {
	ax, ay, az := float64(v2.X-v1.X), float64(v2.Y-v1.Y), float64(v2.Z-v1.Z)
	bx, by, bz := float64(v3.X-v1.X), float64(v3.Y-v1.Y), float64(v3.Z-v1.Z)
	cx := ay*bz - az*by
	cy := az*bx - ax*bz
	cz := ax*by - ay*bx
	return 0.5 * math.Sqrt(cx*cx+cy*cy+cz*cz)
}

var _ stl.Handler = (*Stats)(nil)
