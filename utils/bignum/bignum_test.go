package bignum

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLog2(t *testing.T) {

	t.Run("PowerOfTwo", func(t *testing.T) {
		require.Equal(t, 300.0, Log2(new(big.Int).Lsh(big.NewInt(1), 300), 128))
		require.Equal(t, 0.0, Log2(Product(nil), 128))
	})

	t.Run("Product", func(t *testing.T) {
		moduli := []uint64{4294967291, 4294967279, 65537}
		want := math.Log2(4294967291) + math.Log2(4294967279) + math.Log2(65537)
		require.InDelta(t, want, Log2(Product(moduli), 256), 1e-9)
	})

	t.Run("NonPositive", func(t *testing.T) {
		require.Panics(t, func() { Log2(Product([]uint64{7, 0}), 128) })
	})
}
