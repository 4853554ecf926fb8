/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: ascii_test.go
Description: Tests for the ASCII STL decoder: event order, vector grammar, keyword
errors with line numbers, and end-of-file handling.
*/

package stl_test

import (
	"bufio"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/kleascm/stlstream/pkg/stl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestASCIICube checks the canonical single facet example
func TestASCIICube(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, stl.Parse(strings.NewReader(cubeASCII), rec))

	require.Equal(t, []string{"beginAscii", "beginFacet", "triangle", "endFacet", "endSolid"}, rec.kinds())
	assert.Equal(t, "cube", rec.events[0].Name)
	assert.Equal(t, []stl.Vector3{cubeFacet.Normal}, rec.events[1].Vectors)
	assert.Equal(t, cubeFacet.Vertices[:], rec.events[2].Vectors)
}

// TestASCIIWhitespaceTolerance covers indentation, CRLF and blank lines
func TestASCIIWhitespaceTolerance(t *testing.T) {
	input := "solid   spaced name  \r\n\r\n" +
		"  facet normal 0 0 1\r\n" +
		"\touter loop\r\n" +
		"      vertex 0 0 0\r\n" +
		"\n" +
		"      vertex 1 0 0\r\n" +
		"      vertex 1 1 0\r\n" +
		"    endloop\r\n" +
		"  endfacet\r\n" +
		"endsolid spaced name\r\n"

	rec := &recorder{}
	require.NoError(t, stl.ParseASCII(strings.NewReader(input), rec))
	assert.Equal(t, "spaced name", rec.events[0].Name)
	assert.Equal(t, append(append([]string{"beginAscii"}, facetKinds(1)...), "endSolid"), rec.kinds())
}

// TestASCIIEmptySolid checks a solid without facets or name
func TestASCIIEmptySolid(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, stl.Parse(strings.NewReader("solid\nendsolid\n"), rec))
	assert.Equal(t, []string{"beginAscii", "endSolid"}, rec.kinds())
	assert.Equal(t, "", rec.events[0].Name)
}

// TestASCIIMultipleFacets checks repeated facet blocks
func TestASCIIMultipleFacets(t *testing.T) {
	facet := "facet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nvertex 1 1 0\nendloop\nendfacet\n"
	input := "solid many\n" + strings.Repeat(facet, 5) + "endsolid many\n"

	rec := &recorder{}
	require.NoError(t, stl.Parse(strings.NewReader(input), rec))
	assert.Equal(t, append(append([]string{"beginAscii"}, facetKinds(5)...), "endSolid"), rec.kinds())
}

// TestASCIITrailingContentIgnored checks that parsing stops at endsolid
func TestASCIITrailingContentIgnored(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, stl.Parse(strings.NewReader(cubeASCII+"garbage after the solid\n"), rec))
	assert.Equal(t, "endSolid", rec.events[len(rec.events)-1].Kind)
}

// TestASCIIVectorPrecision checks values match standard float32 parsing bit for bit
func TestASCIIVectorPrecision(t *testing.T) {
	tokens := []string{"1e-3", "-2.5E+02", "3.4028235e38", "0.1", "-0", "123456.789"}
	input := "solid p\n" +
		"facet normal " + tokens[0] + " " + tokens[1] + " " + tokens[2] + "\n" +
		"outer loop\n" +
		"vertex " + tokens[3] + " " + tokens[4] + " " + tokens[5] + "\n" +
		"vertex 0 0 0\nvertex 0 0 0\nendloop\nendfacet\nendsolid\n"

	want := make([]float32, len(tokens))
	for i, tok := range tokens {
		f, err := strconv.ParseFloat(tok, 32)
		require.NoError(t, err)
		want[i] = float32(f)
	}

	rec := &recorder{}
	require.NoError(t, stl.Parse(strings.NewReader(input), rec))

	n := rec.events[1].Vectors[0]
	v := rec.events[2].Vectors[0]
	assert.Equal(t, math.Float32bits(want[0]), math.Float32bits(n.X))
	assert.Equal(t, math.Float32bits(want[1]), math.Float32bits(n.Y))
	assert.Equal(t, math.Float32bits(want[2]), math.Float32bits(n.Z))
	assert.Equal(t, math.Float32bits(want[3]), math.Float32bits(v.X))
	assert.Equal(t, math.Float32bits(want[4]), math.Float32bits(v.Y))
	assert.Equal(t, math.Float32bits(want[5]), math.Float32bits(v.Z))
}

// TestASCIINonFiniteValues checks NaN and Inf pass through unchanged
func TestASCIINonFiniteValues(t *testing.T) {
	input := strings.Replace(cubeASCII, "facet normal 0 0 1", "facet normal NaN Inf -Inf", 1)

	rec := &recorder{}
	require.NoError(t, stl.Parse(strings.NewReader(input), rec))

	n := rec.events[1].Vectors[0]
	assert.True(t, math.IsNaN(float64(n.X)))
	assert.True(t, math.IsInf(float64(n.Y), 1))
	assert.True(t, math.IsInf(float64(n.Z), -1))
}

// TestASCIIOutOfRangeValues checks overflow rounds to Inf and underflow to zero
func TestASCIIOutOfRangeValues(t *testing.T) {
	input := strings.Replace(cubeASCII, "facet normal 0 0 1", "facet normal 1e39 -1e39 1e-46", 1)

	rec := &recorder{}
	require.NoError(t, stl.Parse(strings.NewReader(input), rec))

	n := rec.events[1].Vectors[0]
	assert.True(t, math.IsInf(float64(n.X), 1))
	assert.True(t, math.IsInf(float64(n.Y), -1))
	assert.Equal(t, float32(0), n.Z)

	input = strings.Replace(cubeASCII, "vertex 1 0 0", "vertex 1e39x 0 0", 1)
	err := stl.Parse(strings.NewReader(input), &recorder{})
	require.ErrorIs(t, err, stl.ErrMalformedVector)
}

// TestASCIIExtraVectorTokens checks that tokens after the third are ignored
func TestASCIIExtraVectorTokens(t *testing.T) {
	input := strings.Replace(cubeASCII, "vertex 1 0 0", "vertex 1 0 0 7 extra", 1)

	rec := &recorder{}
	require.NoError(t, stl.Parse(strings.NewReader(input), rec))
	assert.Equal(t, stl.Vector3{X: 1}, rec.events[2].Vectors[1])
}

// TestASCIIGrammarErrors checks each grammar violation and its line number
func TestASCIIGrammarErrors(t *testing.T) {
	tests := []struct {
		name    string
		replace string
		with    string
		kind    stl.ErrorKind
		line    int
		events  []string
	}{
		{
			name: "endloop replaced", replace: "endloop", with: "endlop",
			kind: stl.KindMalformedLoopClose, line: 7,
			events: []string{"beginAscii", "beginFacet"},
		},
		{
			name: "endloop replaced by endfacet", replace: "endloop", with: "endfacet",
			kind: stl.KindMalformedLoopClose, line: 7,
			events: []string{"beginAscii", "beginFacet"},
		},
		{
			name: "outer loop missing", replace: "outer loop", with: "inner loop",
			kind: stl.KindMalformedLoopOpen, line: 3,
			events: []string{"beginAscii", "beginFacet"},
		},
		{
			name: "vertex keyword", replace: "vertex 1 0 0", with: "vertx 1 0 0",
			kind: stl.KindMalformedVertex, line: 5,
			events: []string{"beginAscii", "beginFacet"},
		},
		{
			name: "fourth vertex", replace: "endloop", with: "vertex 2 2 2",
			kind: stl.KindMalformedLoopClose, line: 7,
			events: []string{"beginAscii", "beginFacet"},
		},
		{
			name: "endfacet", replace: "endfacet", with: "end facet",
			kind: stl.KindMalformedFacetClose, line: 8,
			events: []string{"beginAscii", "beginFacet", "triangle"},
		},
		{
			name: "facet line", replace: "facet normal", with: "facet norm",
			kind: stl.KindMalformedFacetLine, line: 2,
			events: []string{"beginAscii"},
		},
		{
			name: "normal not a number", replace: "facet normal 0 0 1", with: "facet normal 0 x 1",
			kind: stl.KindMalformedVector, line: 2,
			events: []string{"beginAscii"},
		},
		{
			name: "vertex too few components", replace: "vertex 1 1 0", with: "vertex 1 1",
			kind: stl.KindMalformedVector, line: 6,
			events: []string{"beginAscii", "beginFacet"},
		},
		{
			name: "vertex not a number", replace: "vertex 0 0 0", with: "vertex 0 0 zero",
			kind: stl.KindMalformedVector, line: 4,
			events: []string{"beginAscii", "beginFacet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Replace(cubeASCII, tt.replace, tt.with, 1)
			rec := &recorder{}
			err := stl.Parse(strings.NewReader(input), rec)
			require.Error(t, err)

			var pe *stl.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.line, pe.Line)
			assert.Equal(t, tt.events, rec.kinds())
			assert.Contains(t, err.Error(), "line "+strconv.Itoa(tt.line))
		})
	}
}

// TestASCIIMalformedHeader checks direct ASCII parsing of a non-solid header
func TestASCIIMalformedHeader(t *testing.T) {
	rec := &recorder{}
	err := stl.ParseASCII(strings.NewReader("\n\nsolxd cube\nendsolid\n"), rec)
	require.ErrorIs(t, err, stl.ErrMalformedHeader)

	var pe *stl.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
	assert.Empty(t, rec.events)
}

// TestASCIIUnexpectedEOF truncates the cube after every line
func TestASCIIUnexpectedEOF(t *testing.T) {
	lines := strings.SplitAfter(cubeASCII, "\n")
	// drop the empty tail and the endsolid line
	lines = lines[:len(lines)-2]

	for n := 1; n <= len(lines); n++ {
		input := strings.Join(lines[:n], "")
		rec := &recorder{}
		err := stl.Parse(strings.NewReader(input), rec)
		require.ErrorIs(t, err, stl.ErrUnexpectedEOF, "truncated after %d lines", n)

		var pe *stl.ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, n+1, pe.Line)
		assert.NotContains(t, rec.kinds(), "endSolid")
	}
}

// TestASCIILineTooLong checks the line length bound
func TestASCIILineTooLong(t *testing.T) {
	input := "solid " + strings.Repeat("x", 100) + "\nendsolid\n"

	p := stl.New(stl.WithMaxLineLength(32))
	err := p.Parse(strings.NewReader(input), &recorder{})
	require.ErrorIs(t, err, stl.ErrIO)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
	assert.Equal(t, 1, errorLine(t, err))
}

func errorLine(t *testing.T, err error) int {
	t.Helper()
	var pe *stl.ParseError
	require.True(t, errors.As(err, &pe))
	return pe.Line
}
