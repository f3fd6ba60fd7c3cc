// (c) 2024 Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evmcore/precompiles/params"
)

func TestBLS12381G1AddIdentity(t *testing.T) {
	c := &bls12381G1Add{}
	input := make([]byte, 2*g1PointLength) // identity + identity
	require.Equal(t, uint64(params.Bls12381G1AddGas), c.RequiredGas(input))

	out, err := c.Run(input)
	require.NoError(t, err)
	require.Equal(t, make([]byte, g1PointLength), out)
}

func TestBLS12381G2AddIdentity(t *testing.T) {
	c := &bls12381G2Add{}
	input := make([]byte, 2*g2PointLength)
	require.Equal(t, uint64(params.Bls12381G2AddGas), c.RequiredGas(input))

	out, err := c.Run(input)
	require.NoError(t, err)
	require.Equal(t, make([]byte, g2PointLength), out)
}

func TestBLS12381G1AddWrongLength(t *testing.T) {
	c := &bls12381G1Add{}
	_, err := c.Run(make([]byte, g1PointLength))
	require.ErrorIs(t, err, ErrParsingInput)
}

func TestBLS12381PaddedCoordinateRejectsNonzeroPrefix(t *testing.T) {
	data := make([]byte, paddedFpLength)
	data[0] = 1 // nonzero byte in the mandatory zero-prefix
	_, err := decodeFieldElement(data)
	require.ErrorIs(t, err, ErrParsingInput)
}

func TestBLS12381G1MSMRejectsNonMultipleLength(t *testing.T) {
	c := &bls12381G1MultiExp{}
	_, err := c.Run(make([]byte, g1MSMPairLength+1))
	require.ErrorIs(t, err, ErrParsingInput)
}

func TestBLS12381G2MSMRejectsEmptyInput(t *testing.T) {
	c := &bls12381G2MultiExp{}
	_, err := c.Run(nil)
	require.ErrorIs(t, err, ErrParsingInput)
}

func TestBLS12381PairingRejectsNonMultipleLength(t *testing.T) {
	c := &bls12381Pairing{}
	_, err := c.Run(make([]byte, pairingPairBytes-1))
	require.ErrorIs(t, err, ErrParsingInput)
}

func TestBLS12381MapFpToG1Gas(t *testing.T) {
	c := &bls12381MapG1{}
	require.Equal(t, uint64(params.Bls12381MapFpToG1Gas), c.RequiredGas(make([]byte, paddedFpLength)))
}

func TestBLS12381MapFp2ToG2ZeroInput(t *testing.T) {
	c := &bls12381MapG2{}
	input := make([]byte, 2*paddedFpLength) // Fp2 zero element
	out, err := c.Run(input)
	require.NoError(t, err)
	require.Equal(t, fp2ZeroMappedToG2[:], out)
}

func TestBLS12381G1MultiExpDiscountedGas(t *testing.T) {
	c := &bls12381G1MultiExp{}
	// A single (point, scalar) pair has no discount: 1000 per-mille.
	oneGas := c.RequiredGas(make([]byte, g1MSMPairLength))
	require.Equal(t, params.Bls12381G1MulGas, oneGas)

	// More pairs must cost less per-pair than a single pair, since the G1
	// discount for two pairs is below 1000 per-mille.
	twoGas := c.RequiredGas(make([]byte, 2*g1MSMPairLength))
	require.Less(t, twoGas/2, oneGas)
}
