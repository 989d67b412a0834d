package sink

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountingSinkCountsWithoutStoringBytes(t *testing.T) {
	var s CountingSink
	n, err := s.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	n, err = s.Write([]byte{4, 5})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 5, s.Count())
}

func TestWriteSizePrefixUnderThreshold(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSizePrefix(&buf, 42))
	require.Equal(t, []byte{42}, buf.Bytes())
}

func TestWriteSizePrefixExactMultipleOf255(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSizePrefix(&buf, 255))
	require.Equal(t, []byte{0xFF, 0x00}, buf.Bytes())
}

func TestWriteSizePrefixAboveThreshold(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSizePrefix(&buf, 300))
	require.Equal(t, []byte{0xFF, 45}, buf.Bytes())
}

func TestWriteSEIHeaderEncodesTypeThenSize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSEIHeader(&buf, 5, 260))
	require.Equal(t, []byte{5, 0xFF, 5}, buf.Bytes())
}
