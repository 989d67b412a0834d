package h264

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNalHeaderValid(t *testing.T) {
	cases := []struct {
		name    string
		unit    NalUnitType
		refIdc  uint8
		want    byte
	}{
		{"non-IDR slice with reference", NalUnitTypeNonIDRSlice, 2, 0x41},
		{"IDR slice requires nonzero ref_idc", NalUnitTypeIDRSlice, 3, 0x65},
		{"SEI requires zero ref_idc", NalUnitTypeSEI, 0, 0x06},
		{"SPS with reference", NalUnitTypeSPS, 1, 0x27},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := NewNalHeader(tc.unit, tc.refIdc)
			require.NoError(t, err)
			require.Equal(t, tc.want, h.Byte())
		})
	}
}

func TestNewNalHeaderInvalid(t *testing.T) {
	_, err := NewNalHeader(NalUnitTypeSEI, 4)
	require.Error(t, err)
	var refIdcErr *NalRefIdcOutOfRangeError
	require.ErrorAs(t, err, &refIdcErr)

	_, err = NewNalHeader(0, 0)
	require.Error(t, err)
	var typeErr *NalUnitTypeOutOfRangeError
	require.ErrorAs(t, err, &typeErr)

	_, err = NewNalHeader(32, 0)
	require.Error(t, err)
	require.ErrorAs(t, err, &typeErr)

	_, err = NewNalHeader(NalUnitTypeSEI, 1)
	require.Error(t, err)
	var combErr *InvalidNalRefIdcForNalUnitTypeError
	require.ErrorAs(t, err, &combErr)

	_, err = NewNalHeader(NalUnitTypeIDRSlice, 0)
	require.Error(t, err)
	require.ErrorAs(t, err, &combErr)
}
