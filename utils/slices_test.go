package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlices(t *testing.T) {

	t.Run("ConvertSlice", func(t *testing.T) {
		require.Equal(t, []uint64{2, 3, 5}, ConvertSlice[uint64]([]uint32{2, 3, 5}))
		require.Equal(t, []int64{-1, 4}, ConvertSlice[int64]([]int32{-1, 4}))
		require.Nil(t, ConvertSlice[uint64, uint32](nil))
		require.Equal(t, []uint64{}, ConvertSlice[uint64]([]uint32{}))
	})

	t.Run("Abs", func(t *testing.T) {
		require.Equal(t, int32(3), Abs(int32(-3)))
		require.Equal(t, 7, Abs(7))
	})

	t.Run("IndexZero", func(t *testing.T) {
		require.Equal(t, -1, IndexZero([]int{1, 2}))
		require.Equal(t, 1, IndexZero([]uint32{1, 0, 0}))
		require.Equal(t, -1, IndexZero[int](nil))
	})

	t.Run("Product", func(t *testing.T) {
		prod, ok := Product([]uint32{2, 3, 7})
		require.True(t, ok)
		require.Equal(t, uint64(42), prod)

		_, ok = Product([]uint64{1 << 40, 1 << 30})
		require.False(t, ok)

		prod, ok = Product[uint64](nil)
		require.True(t, ok)
		require.Equal(t, uint64(1), prod)
	})
}
