package stream

import (
	"bytes"
)

// JPEG frame markers.
var (
	soiMarker = []byte{0xFF, 0xD8} // start of image
	eoiMarker = []byte{0xFF, 0xD9} // end of image
)

// DefaultMaxBuffer bounds the demux accumulator. A well-formed camera frame
// is tens of kilobytes; anything past this is a corrupt stream.
const DefaultMaxBuffer = 1 << 20 // 1 MiB

// Demuxer accumulates stream bytes and extracts complete JPEG frames.
// It is not safe for concurrent use; the read loop owns it exclusively.
type Demuxer struct {
	buf       []byte
	maxBuffer int

	// Stats
	frames int
	resets int
}

// NewDemuxer creates a demuxer with the given accumulator cap.
// A cap of 0 uses DefaultMaxBuffer.
func NewDemuxer(maxBuffer int) *Demuxer {
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBuffer
	}
	return &Demuxer{maxBuffer: maxBuffer}
}

// Push appends a chunk and returns every complete JPEG now available, in
// stream order. When the accumulator exceeds its cap without a complete
// frame, Push drops the buffered bytes, resyncs, and returns a
// *FramingError alongside any frames already extracted.
func (d *Demuxer) Push(chunk []byte) ([][]byte, error) {
	d.buf = append(d.buf, chunk...)

	var out [][]byte
	for {
		frame, ok := d.next()
		if !ok {
			break
		}
		d.frames++
		out = append(out, frame)
	}

	if len(d.buf) > d.maxBuffer {
		err := &FramingError{Buffered: len(d.buf), Cap: d.maxBuffer}
		d.buf = nil
		d.resets++
		return out, err
	}
	return out, nil
}

// next extracts one frame from the buffer, discarding leading garbage.
func (d *Demuxer) next() ([]byte, bool) {
	soi := bytes.Index(d.buf, soiMarker)
	if soi < 0 {
		// No start marker anywhere; keep only the last byte in case a
		// marker straddles the chunk boundary.
		if len(d.buf) > 1 {
			d.buf = d.buf[len(d.buf)-1:]
		}
		return nil, false
	}

	eoi := bytes.Index(d.buf[soi:], eoiMarker)
	if eoi < 0 {
		// Drop garbage ahead of the start marker, wait for more bytes.
		if soi > 0 {
			d.buf = d.buf[soi:]
		}
		return nil, false
	}
	end := soi + eoi + len(eoiMarker)

	frame := make([]byte, end-soi)
	copy(frame, d.buf[soi:end])
	d.buf = d.buf[end:]
	return frame, true
}

// Frames returns how many frames have been extracted.
func (d *Demuxer) Frames() int { return d.frames }

// Resets returns how many times framing was lost and the buffer dropped.
func (d *Demuxer) Resets() int { return d.resets }

// Buffered returns the current accumulator size.
func (d *Demuxer) Buffered() int { return len(d.buf) }
