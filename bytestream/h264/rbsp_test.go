package h264

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRbspWriterEscapesStartCodePrefixes(t *testing.T) {
	var buf bytes.Buffer
	w := newRbspWriter[*bytes.Buffer](&buf)

	_, err := w.Write([]byte{0x00, 0x00, 0x00, 0x01})
	require.NoError(t, err)

	inner, err := w.FinishRbsp()
	require.NoError(t, err)
	require.Same(t, &buf, inner)

	require.Equal(t, []byte{0x00, 0x00, 0x03, 0x00, 0x01, 0x80}, buf.Bytes())
}

func TestRbspWriterPassesThroughNonEmulatingBytes(t *testing.T) {
	var buf bytes.Buffer
	w := newRbspWriter[*bytes.Buffer](&buf)

	_, err := w.Write([]byte{0x01, 0x02, 0x03, 0x04})
	require.NoError(t, err)
	_, err = w.FinishRbsp()
	require.NoError(t, err)

	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x80}, buf.Bytes())
}

func TestRbspWriterTracksEmulationAcrossWriteCalls(t *testing.T) {
	var buf bytes.Buffer
	w := newRbspWriter[*bytes.Buffer](&buf)

	_, err := w.Write([]byte{0x00, 0x00})
	require.NoError(t, err)
	_, err = w.Write([]byte{0x02})
	require.NoError(t, err)
	_, err = w.FinishRbsp()
	require.NoError(t, err)

	require.Equal(t, []byte{0x00, 0x00, 0x03, 0x02, 0x80}, buf.Bytes())
}

func TestNalUnitWriterWritesHeaderThenDelegatesToRbsp(t *testing.T) {
	var buf bytes.Buffer
	nalUnit := newNalUnitWriter[*bytes.Buffer](&buf)

	header, err := NewNalHeader(NalUnitTypeSEI, 0)
	require.NoError(t, err)

	rbsp, err := nalUnit.WriteNalHeader(header)
	require.NoError(t, err)

	_, err = rbsp.Write([]byte{0xAB})
	require.NoError(t, err)
	_, err = rbsp.FinishRbsp()
	require.NoError(t, err)

	require.Equal(t, []byte{header.Byte(), 0xAB, 0x80}, buf.Bytes())
}
