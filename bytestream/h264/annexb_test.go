package h264

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnnexBWriterLeadingZeroOnlyOnFirstUnit(t *testing.T) {
	var buf bytes.Buffer
	annexB := NewAnnexBWriter(&buf)

	header, err := NewNalHeader(NalUnitTypeSEI, 0)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		nalUnit, err := annexB.StartWriteNalUnit()
		require.NoError(t, err)
		rbsp, err := nalUnit.WriteNalHeader(header)
		require.NoError(t, err)
		_, err = rbsp.FinishRbsp()
		require.NoError(t, err)
	}

	expected := []byte{0x00, 0x00, 0x00, 0x01, header.Byte(), 0x80, 0x00, 0x00, 0x01, header.Byte(), 0x80}
	require.Equal(t, expected, buf.Bytes())
}
