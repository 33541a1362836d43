// Package stream provides MJPEG ingestion from a camera's HTTP endpoint.
//
// The camera serves a continuous chunked byte stream of concatenated JPEG
// images. Client demuxes that stream into discrete frames by scanning for
// JPEG start/end markers, the same way the camera's own viewer does.
package stream

import (
	"time"
)

// Frame is one demuxed image from the camera stream.
// Data holds the encoded JPEG (start marker through end marker, inclusive).
// Frames are never mutated after creation; ownership passes to the consumer.
type Frame struct {
	Data      []byte
	Width     int
	Height    int
	Seq       uint64
	Timestamp time.Time
}
