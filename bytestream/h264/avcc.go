package h264

import (
	"encoding/binary"
	"fmt"
	"io"
)

// InvalidLengthSizeError reports an AVCC length_size outside {1, 2, 4}.
type InvalidLengthSizeError struct{ LengthSize int }

func (e *InvalidLengthSizeError) Error() string {
	return fmt.Sprintf("AVCC length_size %d is unsupported (must be 1, 2, or 4)", e.LengthSize)
}

// NalUnitTooLargeError reports a NAL body that would exceed the max size
// addressable by the chosen AVCC length_size.
type NalUnitTooLargeError struct {
	Max, Required int
}

func (e *NalUnitTooLargeError) Error() string {
	return fmt.Sprintf("NAL unit body of %d bytes exceeds max size of %d for the configured length_size", e.Required, e.Max)
}

var avccMaxLength = map[int]int{1: 0xff, 2: 0xffff, 4: 0xffffffff}

// AVCCWriter frames NAL units with a length prefix instead of a start code.
// Since the prefix must be written before the body, each NAL unit is first
// buffered in memory and only flushed to the underlying sink on FinishRbsp.
type AVCCWriter struct {
	lengthSize int
	inner      io.Writer
}

// NewAVCCWriter wraps inner in an AVCC framing writer using the given
// length-prefix size, which must be 1, 2, or 4 bytes.
func NewAVCCWriter(lengthSize int, inner io.Writer) (*AVCCWriter, error) {
	if _, ok := avccMaxLength[lengthSize]; !ok {
		return nil, &InvalidLengthSizeError{LengthSize: lengthSize}
	}
	return &AVCCWriter{lengthSize: lengthSize, inner: inner}, nil
}

// StartWriteNalUnit begins buffering a new NAL unit body.
func (w *AVCCWriter) StartWriteNalUnit() AVCCNalUnitWriter {
	buf := &avccBuffer{avcc: w}
	return AVCCNalUnitWriter{inner: newNalUnitWriter[*avccBuffer](buf)}
}

// avccBuffer accumulates one NAL unit's body in memory, rejecting writes
// that would push it past the length_size's max addressable size.
type avccBuffer struct {
	body []byte
	avcc *AVCCWriter
}

func (b *avccBuffer) Write(p []byte) (int, error) {
	max := avccMaxLength[b.avcc.lengthSize]
	if len(b.body)+len(p) > max {
		return 0, &NalUnitTooLargeError{Max: max, Required: len(b.body) + len(p)}
	}
	b.body = append(b.body, p...)
	return len(p), nil
}

func (b *avccBuffer) finish() (*AVCCWriter, error) {
	var prefix []byte
	switch b.avcc.lengthSize {
	case 1:
		prefix = []byte{byte(len(b.body))}
	case 2:
		prefix = make([]byte, 2)
		binary.BigEndian.PutUint16(prefix, uint16(len(b.body)))
	case 4:
		prefix = make([]byte, 4)
		binary.BigEndian.PutUint32(prefix, uint32(len(b.body)))
	}
	if _, err := b.avcc.inner.Write(prefix); err != nil {
		return nil, err
	}
	if _, err := b.avcc.inner.Write(b.body); err != nil {
		return nil, err
	}
	return b.avcc, nil
}

// AVCCNalUnitWriter is the AVCC-specialized header-writing stage: it wraps
// the generic NalUnitWriter so FinishRbsp can flush the length prefix
// instead of just returning the in-memory buffer.
type AVCCNalUnitWriter struct {
	inner NalUnitWriter[*avccBuffer]
}

// WriteNalHeader packs and writes the header byte, returning the RBSP stage.
func (w AVCCNalUnitWriter) WriteNalHeader(header NalHeader) (*AVCCRbspWriter, error) {
	rbsp, err := w.inner.WriteNalHeader(header)
	if err != nil {
		return nil, err
	}
	return &AVCCRbspWriter{inner: rbsp}, nil
}

// AVCCRbspWriter is the AVCC-specialized RBSP stage.
type AVCCRbspWriter struct {
	inner *RbspWriter[*avccBuffer]
}

// Write implements io.Writer.
func (w *AVCCRbspWriter) Write(p []byte) (int, error) {
	return w.inner.Write(p)
}

// FinishRbsp appends the RBSP stop bit, then flushes the length prefix and
// buffered body to the underlying sink, returning the reusable AVCCWriter.
func (w *AVCCRbspWriter) FinishRbsp() (*AVCCWriter, error) {
	buf, err := w.inner.FinishRbsp()
	if err != nil {
		return nil, err
	}
	return buf.finish()
}
