package h264

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAVCCWriterRejectsUnsupportedLengthSize(t *testing.T) {
	_, err := NewAVCCWriter(3, &bytes.Buffer{})
	require.Error(t, err)
	var lenErr *InvalidLengthSizeError
	require.ErrorAs(t, err, &lenErr)
	require.Equal(t, 3, lenErr.LengthSize)
}

func TestAVCCWriterWritesLengthPrefixedNalUnit(t *testing.T) {
	var buf bytes.Buffer
	avcc, err := NewAVCCWriter(4, &buf)
	require.NoError(t, err)

	header, err := NewNalHeader(NalUnitTypeSEI, 0)
	require.NoError(t, err)

	nalUnit := avcc.StartWriteNalUnit()
	rbsp, err := nalUnit.WriteNalHeader(header)
	require.NoError(t, err)
	_, err = rbsp.Write([]byte{0x01, 0x02, 0x03})
	require.NoError(t, err)
	_, err = rbsp.FinishRbsp()
	require.NoError(t, err)

	// body = header byte + 01 02 03 + trailing 0x80 = 5 bytes
	expected := []byte{0x00, 0x00, 0x00, 0x05, header.Byte(), 0x01, 0x02, 0x03, 0x80}
	require.Equal(t, expected, buf.Bytes())
}

func TestAVCCWriterRejectsOversizedBody(t *testing.T) {
	var buf bytes.Buffer
	avcc, err := NewAVCCWriter(1, &buf)
	require.NoError(t, err)

	header, err := NewNalHeader(NalUnitTypeSEI, 0)
	require.NoError(t, err)

	nalUnit := avcc.StartWriteNalUnit()
	rbsp, err := nalUnit.WriteNalHeader(header)
	require.NoError(t, err)

	_, err = rbsp.Write(make([]byte, 0xff))
	require.Error(t, err)
	var tooLarge *NalUnitTooLargeError
	require.ErrorAs(t, err, &tooLarge)
}

// TestAVCCWriterRejectsOversizedBodyS5 is the length_size=1 overflow
// scenario: a 300-byte body (including the 1-byte header) overflows the
// 255-byte max addressable by a single length-prefix byte on the write
// that pushes the cumulative total past it. The body bytes are nonzero so
// that no emulation-prevention bytes change the count.
func TestAVCCWriterRejectsOversizedBodyS5(t *testing.T) {
	var buf bytes.Buffer
	avcc, err := NewAVCCWriter(1, &buf)
	require.NoError(t, err)

	header, err := NewNalHeader(NalUnitTypeSEI, 0)
	require.NoError(t, err)

	nalUnit := avcc.StartWriteNalUnit()
	rbsp, err := nalUnit.WriteNalHeader(header)
	require.NoError(t, err)

	_, err = rbsp.Write(bytes.Repeat([]byte{0xAA}, 200))
	require.NoError(t, err)

	_, err = rbsp.Write(bytes.Repeat([]byte{0xAA}, 99))
	require.Error(t, err)
	var tooLarge *NalUnitTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	require.Equal(t, 255, tooLarge.Max)
	require.Equal(t, 300, tooLarge.Required)
}

func TestAVCCWriterReusableAcrossNalUnits(t *testing.T) {
	var buf bytes.Buffer
	avcc, err := NewAVCCWriter(2, &buf)
	require.NoError(t, err)
	header, err := NewNalHeader(NalUnitTypeSEI, 0)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		nalUnit := avcc.StartWriteNalUnit()
		rbsp, err := nalUnit.WriteNalHeader(header)
		require.NoError(t, err)
		reused, err := rbsp.FinishRbsp()
		require.NoError(t, err)
		require.Same(t, avcc, reused)
	}

	expected := []byte{0x00, 0x02, header.Byte(), 0x80, 0x00, 0x02, header.Byte(), 0x80}
	require.Equal(t, expected, buf.Bytes())
}
