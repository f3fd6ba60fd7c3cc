// (c) 2024 Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmcore/precompiles/params"
)

func hexMustDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestIsPrecompile(t *testing.T) {
	pointEval := common.BytesToAddress([]byte{0x0a})
	g1Add := common.BytesToAddress([]byte{0x0b})
	ecrecoverA := common.BytesToAddress([]byte{0x01})
	unknown := common.BytesToAddress([]byte{0x12})

	assert.False(t, IsPrecompile(pointEval, params.Berlin))
	assert.True(t, IsPrecompile(pointEval, params.Cancun))
	assert.True(t, IsPrecompile(pointEval, params.Prague))

	assert.False(t, IsPrecompile(g1Add, params.Cancun))
	assert.True(t, IsPrecompile(g1Add, params.Prague))

	assert.True(t, IsPrecompile(ecrecoverA, params.Homestead))
	assert.True(t, IsPrecompile(ecrecoverA, params.Prague))

	assert.False(t, IsPrecompile(unknown, params.Prague))
}

func TestECRECOVER(t *testing.T) {
	c := &ecrecover{}

	t.Run("malformed v returns empty result and charges full gas", func(t *testing.T) {
		input := make([]byte, 128) // v, r, s all zero: v=0 is not 27/28
		gas := c.RequiredGas(input)
		require.Equal(t, uint64(params.EcrecoverGas), gas)
		out, err := c.Run(input)
		require.NoError(t, err)
		require.Nil(t, out)
	})

	t.Run("not enough gas", func(t *testing.T) {
		input := make([]byte, 128)
		gasRemaining := params.EcrecoverGas - 1
		_, err := RunPrecompiledContract(c, input, &gasRemaining)
		require.ErrorIs(t, err, ErrNotEnoughGas)
	})

	t.Run("exact gas leaves zero remaining", func(t *testing.T) {
		input := make([]byte, 128)
		gasRemaining := params.EcrecoverGas
		_, err := RunPrecompiledContract(c, input, &gasRemaining)
		require.NoError(t, err)
		require.Zero(t, gasRemaining)
	})
}

func TestSHA256Empty(t *testing.T) {
	c := &sha256hash{}
	out, err := c.Run(nil)
	require.NoError(t, err)
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hex.EncodeToString(out))
	require.Equal(t, uint64(params.Sha256BaseGas), c.RequiredGas(nil))
}

func TestRIPEMD160Empty(t *testing.T) {
	c := &ripemd160hash{}
	out, err := c.Run(nil)
	require.NoError(t, err)
	want := hexMustDecode(t, "0000000000000000000000009c1185a5c5e9fc54612808977ee8f548b2258d31")
	require.Equal(t, want, out)
}

func TestIdentity(t *testing.T) {
	c := &dataCopy{}
	in := []byte("the quick brown fox")
	out, err := c.Run(in)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func modExpLen1Vector(base, exp, mod byte) []byte {
	lenField := func(n byte) []byte {
		b := make([]byte, 32)
		b[31] = n
		return b
	}
	input := make([]byte, 0, 99)
	input = append(input, lenField(1)...) // B=1
	input = append(input, lenField(1)...) // E=1
	input = append(input, lenField(1)...) // M=1
	input = append(input, base, exp, mod)
	return input
}

func TestModExpVector(t *testing.T) {
	c := &bigModExp{}
	// B=1, E=1, M=1, base=2, exp=3, mod=5 => 2^3 mod 5 = 3.
	input := modExpLen1Vector(2, 3, 5)
	gas := c.RequiredGas(input)
	require.Equal(t, uint64(params.ModExpStaticCost), gas)

	out, err := c.Run(input)
	require.NoError(t, err)
	require.Equal(t, []byte{3}, out)
}

func TestModExpZeroBaseAndModulus(t *testing.T) {
	c := &bigModExp{}
	input := make([]byte, 96) // B=0, E=0, M=0
	gas := c.RequiredGas(input)
	require.Equal(t, uint64(params.ModExpStaticCost), gas)
	out, err := c.Run(input)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestECADDInfinityPlusInfinity(t *testing.T) {
	c := &bn256Add{}
	input := make([]byte, 128)
	require.Equal(t, uint64(params.Bn256AddGasIstanbul), c.RequiredGas(input))
	out, err := c.Run(input)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 64), out)
}

func TestECPAIRINGEmptyInput(t *testing.T) {
	c := &bn256Pairing{}
	require.Equal(t, uint64(params.Bn256PairingBaseGasIstanbul), c.RequiredGas(nil))
	out, err := c.Run(nil)
	require.NoError(t, err)
	require.Equal(t, true32Byte, out)
}

func TestECPAIRINGBadLength(t *testing.T) {
	c := &bn256Pairing{}
	_, err := c.Run(make([]byte, 191))
	require.ErrorIs(t, err, errBadPairingInput)
}

func TestBlake2FInvalidLength(t *testing.T) {
	c := &blake2F{}
	_, err := c.Run(make([]byte, 212))
	require.ErrorIs(t, err, errBlake2FInvalidInputLength)
}

func TestBlake2FInvalidFinalFlag(t *testing.T) {
	c := &blake2F{}
	input := make([]byte, blake2FInputLength)
	input[212] = 2
	_, err := c.Run(input)
	require.ErrorIs(t, err, errBlake2FInvalidFinalFlag)
}

func TestPointEvaluationInvalidLength(t *testing.T) {
	c := &kzgPointEvaluation{}
	_, err := c.Run(make([]byte, 191))
	require.ErrorIs(t, err, errBlobVerifyInvalidLength)
}

func TestPointEvaluationMismatchedHash(t *testing.T) {
	c := &kzgPointEvaluation{}
	input := make([]byte, blobVerifyInputLength)
	// versionedHash left all-zero will not match SHA256(commitment) with
	// version byte overwritten, for any all-zero commitment.
	_, err := c.Run(input)
	require.ErrorIs(t, err, errBlobVerifyMismatchedHash)
}

func TestGetData(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	require.Equal(t, []byte{3, 4, 0, 0}, getData(data, 2, 4))
	require.Equal(t, []byte{0, 0}, getData(data, 10, 2))
	require.Equal(t, []byte{}, getData(data, 0, 0))
}

func TestAllZero(t *testing.T) {
	require.True(t, allZero(nil))
	require.True(t, allZero(make([]byte, 5)))
	require.False(t, allZero([]byte{0, 0, 1}))
}

func TestActivePrecompilesRemainStableAcrossForks(t *testing.T) {
	addrs := []common.Address{
		ecrecoverAddr, sha256hashAddr, ripemd160hashAddr, dataCopyAddr,
		bigModExpAddr, bn256AddAddr, bn256ScalarMulAddr, bn256PairingAddr, blake2FAddr,
	}
	forks := []params.Fork{params.Homestead, params.Byzantium, params.Istanbul, params.Berlin, params.Cancun, params.Prague}
	for _, addr := range addrs {
		for _, f := range forks {
			_, ok := ActivePrecompiles(f)[addr]
			assert.True(t, ok, "address %s missing at fork %v", addr.Hex(), f)
		}
	}
}

// TestIsPrecompileAgreesWithActivePrecompiles guards against the two
// functions disagreeing about which addresses are active at a given fork:
// a caller that gates with IsPrecompile before calling ExecutePrecompile
// must never see ErrInvalidPrecompileAddress as a result.
func TestIsPrecompileAgreesWithActivePrecompiles(t *testing.T) {
	addrs := []common.Address{
		ecrecoverAddr, sha256hashAddr, ripemd160hashAddr, dataCopyAddr,
		bigModExpAddr, bn256AddAddr, bn256ScalarMulAddr, bn256PairingAddr, blake2FAddr,
		pointEvaluationAddr, bls12381G1AddAddr,
	}
	forks := []params.Fork{params.Homestead, params.Byzantium, params.Istanbul, params.Berlin, params.Cancun, params.Prague}
	for _, addr := range addrs {
		for _, f := range forks {
			_, active := ActivePrecompiles(f)[addr]
			assert.Equal(t, IsPrecompile(addr, f), active, "address %s, fork %v", addr.Hex(), f)
		}
	}
}
