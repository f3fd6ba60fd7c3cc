// (c) 2024 Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package params

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBls12381MultiExpDiscountClampsAndDecreases(t *testing.T) {
	// k=1 has no discount.
	require.Equal(t, uint64(1000), Bls12381MultiExpDiscount("g1", 1))
	require.Equal(t, uint64(1000), Bls12381MultiExpDiscount("g2", 1))

	// Out-of-range k clamps to the table bounds instead of panicking.
	require.Equal(t, Bls12381MultiExpDiscount("g1", 128), Bls12381MultiExpDiscount("g1", 500))
	require.Equal(t, Bls12381MultiExpDiscount("g1", 1), Bls12381MultiExpDiscount("g1", 0))

	prev := uint64(1001)
	for k := 1; k <= 128; k++ {
		d := Bls12381MultiExpDiscount("g1", k)
		require.LessOrEqual(t, d, prev)
		prev = d
	}
}
