// Package sink provides the small write-target primitives the H.264/WebVTT
// bytestream writers are built on: a size-counting discard sink and the
// SEI payload_type/payload_size prefix encoder.
package sink

import "io"

// CountingSink is a write target that discards every byte but remembers how
// many were written. It never returns an error. The WebVTT wire encoder uses
// it for the two-pass size measurement the SEI size-prefix rule requires:
// a record is written once into a CountingSink to learn its length, then
// written again into the real sink behind a payload_size prefix.
type CountingSink struct {
	count int
}

// Write implements io.Writer.
func (s *CountingSink) Write(p []byte) (int, error) {
	s.count += len(p)
	return len(p), nil
}

// Count returns the number of bytes written so far.
func (s *CountingSink) Count() int {
	return s.count
}

// WriteSizePrefix emits n as the ITU-T H.264 SEI ff_byte run: floor(n/255)
// bytes of 0xFF followed by one byte holding n mod 255.
func WriteSizePrefix(w io.Writer, n int) error {
	var b [1]byte
	for n >= 255 {
		b[0] = 0xFF
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
		n -= 255
	}
	b[0] = byte(n)
	_, err := w.Write(b[:])
	return err
}

// WriteSEIHeader emits payload_type then payload_size, each via WriteSizePrefix,
// as mandated by the SEI message syntax.
func WriteSEIHeader(w io.Writer, payloadType, payloadSize int) error {
	if err := WriteSizePrefix(w, payloadType); err != nil {
		return err
	}
	return WriteSizePrefix(w, payloadSize)
}
