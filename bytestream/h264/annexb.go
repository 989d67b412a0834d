package h264

import "io"

// AnnexBWriter frames NAL units with Annex B start codes: a leading zero
// byte plus 00 00 01 on the very first NAL unit written to the sink, and
// 00 00 01 on every one after that. It is stateful across the lifetime of
// the output sink, so a single AnnexBWriter should be reused for every NAL
// unit belonging to the same bytestream.
type AnnexBWriter struct {
	inner          io.Writer
	wroteFirstUnit bool
}

// NewAnnexBWriter wraps inner in an Annex B framing writer.
func NewAnnexBWriter(inner io.Writer) *AnnexBWriter {
	return &AnnexBWriter{inner: inner}
}

// Write implements io.Writer, passing bytes straight through to the
// underlying sink. NAL unit writer stages write through this so that
// StartWriteNalUnit can be called again afterwards on the same instance.
func (w *AnnexBWriter) Write(p []byte) (int, error) {
	return w.inner.Write(p)
}

// StartWriteNalUnit emits the Annex B start code for the next NAL unit and
// returns the header-writing stage.
func (w *AnnexBWriter) StartWriteNalUnit() (NalUnitWriter[*AnnexBWriter], error) {
	if !w.wroteFirstUnit {
		if _, err := w.inner.Write([]byte{0x00}); err != nil {
			return NalUnitWriter[*AnnexBWriter]{}, err
		}
		w.wroteFirstUnit = true
	}
	if _, err := w.inner.Write([]byte{0x00, 0x00, 0x01}); err != nil {
		return NalUnitWriter[*AnnexBWriter]{}, err
	}
	return newNalUnitWriter[*AnnexBWriter](w), nil
}
