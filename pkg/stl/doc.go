/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: doc.go
Description: Package documentation for the STL streaming decoder.
*/

// Package stl decodes STL triangle-mesh files, ASCII and binary, as a stream
// of events delivered to a Handler. No mesh is built in memory; a Handler that
// wants one assembles it itself.
//
// Format detection needs only an io.Reader: the first five bytes are read and
// replayed in front of the rest of the stream. A stream starting with "solid"
// is ASCII, anything else is binary.
//
//	err := stl.Parse(f, handler)
//	if errors.Is(err, stl.ErrTruncatedTriangle) {
//		// the file was cut short
//	}
//
// Every failure is a *ParseError. Events already delivered are not taken back,
// so a Handler may see a partial sequence ending without EndSolid.
package stl
