// Package payload encodes rendered diagrams for embedding in documentation.
//
// A [Payload] is the standard base64 encoding, with padding, of an SVG
// document. [Payload.DataURI] prefixes it with the image/svg+xml media type
// so it can be used directly as a markdown link target. Encoding is pure:
// the same SVG text always yields the same payload, and [Decode] reverses
// it exactly.
package payload

import (
	"encoding/base64"

	"github.com/matzehuels/railmacro/pkg/diagram"
	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
)

// DataURIPrefix precedes the payload in a data URI.
const DataURIPrefix = "data:image/svg+xml;base64,"

// Payload is base64-encoded SVG text.
type Payload string

// Encode returns the payload for svg.
func Encode(svg string) Payload {
	return Payload(base64.StdEncoding.EncodeToString([]byte(svg)))
}

// FromDiagram serialises d and encodes the result.
func FromDiagram(d *diagram.Diagram) Payload {
	return Payload(base64.StdEncoding.EncodeToString(d.Bytes()))
}

// DataURI returns the payload as an image/svg+xml data URI.
func (p Payload) DataURI() string {
	return DataURIPrefix + string(p)
}

// String returns the encoded text.
func (p Payload) String() string {
	return string(p)
}

// Decode returns the SVG text encoded in p.
func Decode(p Payload) (string, error) {
	b, err := base64.StdEncoding.DecodeString(string(p))
	if err != nil {
		return "", rmerrors.Wrap(rmerrors.ErrCodeInvalidFormat, err, "payload is not valid base64")
	}
	return string(b), nil
}
