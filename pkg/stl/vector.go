/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: vector.go
Description: Vector decoding helpers. ASCII vectors are three decimal tokens; binary
vectors are three little-endian IEEE-754 single-precision bit patterns.
*/

package stl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// le is shorthand for the byte order of every binary STL field
var le = binary.LittleEndian

// parseVector reads the first three whitespace separated tokens of s as
// float32 components. Tokens past the third are ignored. Out of range
// tokens keep the rounded value, ±Inf or zero.
func parseVector(s string) (Vector3, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return Vector3{}, fmt.Errorf("expected 3 components, found %d", len(fields))
	}

	var c [3]float32
	for i := range c {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Vector3{}, err
		}
		c[i] = float32(f)
	}
	return Vector3{X: c[0], Y: c[1], Z: c[2]}, nil
}

// decodeVector reads 12 bytes at the start of b.
func decodeVector(b []byte) Vector3 {
	return Vector3{
		X: math.Float32frombits(le.Uint32(b[0:4])),
		Y: math.Float32frombits(le.Uint32(b[4:8])),
		Z: math.Float32frombits(le.Uint32(b[8:12])),
	}
}

// encodeVector writes v into the first 12 bytes of b.
func encodeVector(b []byte, v Vector3) {
	le.PutUint32(b[0:4], math.Float32bits(v.X))
	le.PutUint32(b[4:8], math.Float32bits(v.Y))
	le.PutUint32(b[8:12], math.Float32bits(v.Z))
}
