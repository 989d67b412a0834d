package muxer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWebvttStringRejectsInteriorNul(t *testing.T) {
	_, err := NewWebvttString("hel\x00lo")
	require.Error(t, err)
	var nulErr *NulError
	require.ErrorAs(t, err, &nulErr)
	require.Equal(t, 3, nulErr.NulPosition)
}

func TestNewWebvttStringAcceptsPlainText(t *testing.T) {
	s, err := NewWebvttString("Hello")
	require.NoError(t, err)
	require.Equal(t, "Hello", s.String())
}
