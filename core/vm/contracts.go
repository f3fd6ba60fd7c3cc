// (c) 2019-2020, Ava Labs, Inc.
//
// This file is a derived work, based on the go-ethereum library whose original
// notices appear below.
//
// It is distributed under a license compatible with the licensing terms of the
// original code from which it is derived.
//
// Much love to the original authors for their work.
// **********
// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package vm implements the dispatch and execution core for the EVM's
// precompiled contracts: the fixed set of native addresses (0x01..0x11) the
// interpreter routes to instead of running bytecode.
package vm

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/blake2b"
	"github.com/ethereum/go-ethereum/crypto/bn256"
	"github.com/ethereum/go-ethereum/crypto/kzg4844"
	"golang.org/x/crypto/ripemd160"

	"github.com/evmcore/precompiles/params"
)

// PrecompiledContract is the basic interface for native Go contracts. The
// implementation requires a deterministic gas count based on the input size
// of the Run method of the contract. RequiredGas must stay cheap: for
// variable-cost precompiles it may only parse lengths, never perform the
// expensive arithmetic - that happens in Run, after gas has been charged.
type PrecompiledContract interface {
	RequiredGas(input []byte) uint64  // RequiredGas calculates the contract gas use
	Run(input []byte) ([]byte, error) // Run runs the precompiled contract
}

var (
	ecrecoverAddr       = common.BytesToAddress([]byte{0x01})
	sha256hashAddr      = common.BytesToAddress([]byte{0x02})
	ripemd160hashAddr   = common.BytesToAddress([]byte{0x03})
	dataCopyAddr        = common.BytesToAddress([]byte{0x04})
	bigModExpAddr       = common.BytesToAddress([]byte{0x05})
	bn256AddAddr        = common.BytesToAddress([]byte{0x06})
	bn256ScalarMulAddr  = common.BytesToAddress([]byte{0x07})
	bn256PairingAddr    = common.BytesToAddress([]byte{0x08})
	blake2FAddr         = common.BytesToAddress([]byte{0x09})
	pointEvaluationAddr = common.BytesToAddress([]byte{0x0a})
	bls12381G1AddAddr   = common.BytesToAddress([]byte{0x0b})
	bls12381G1MSMAddr   = common.BytesToAddress([]byte{0x0c})
	bls12381G2AddAddr   = common.BytesToAddress([]byte{0x0d})
	bls12381G2MSMAddr   = common.BytesToAddress([]byte{0x0e})
	bls12381PairingAddr = common.BytesToAddress([]byte{0x0f})
	bls12381MapG1Addr   = common.BytesToAddress([]byte{0x10})
	bls12381MapG2Addr   = common.BytesToAddress([]byte{0x11})
)

// baseContracts is the set of precompiles active at every fork this core
// knows about (0x01..0x09). spec.md only specifies the modern (EIP-2565
// MODEXP, EIP-1108 alt_bn128, EIP-152 Blake2f) gas formulas, so unlike
// upstream go-ethereum/coreth there is no separate Homestead/Byzantium/
// Istanbul/Berlin ladder with historical pricing: every address below is
// always priced the same way, regardless of fork.
var baseContracts = map[common.Address]PrecompiledContract{
	ecrecoverAddr:      &ecrecover{},
	sha256hashAddr:     &sha256hash{},
	ripemd160hashAddr:  &ripemd160hash{},
	dataCopyAddr:       &dataCopy{},
	bigModExpAddr:      &bigModExp{},
	bn256AddAddr:       &bn256Add{},
	bn256ScalarMulAddr: &bn256ScalarMul{},
	bn256PairingAddr:   &bn256Pairing{},
	blake2FAddr:        &blake2F{},
}

// cancunContracts adds the point evaluation precompile (EIP-4844) to
// baseContracts.
var cancunContracts = mergeContracts(baseContracts, map[common.Address]PrecompiledContract{
	pointEvaluationAddr: &kzgPointEvaluation{},
})

// PrecompiledContractsBLS contains the EIP-2537 BLS12-381 suite activated at
// Prague. Exported so tests (and bls12381.go) can exercise it in isolation.
var PrecompiledContractsBLS = map[common.Address]PrecompiledContract{
	bls12381G1AddAddr:   &bls12381G1Add{},
	bls12381G1MSMAddr:   &bls12381G1MultiExp{},
	bls12381G2AddAddr:   &bls12381G2Add{},
	bls12381G2MSMAddr:   &bls12381G2MultiExp{},
	bls12381PairingAddr: &bls12381Pairing{},
	bls12381MapG1Addr:   &bls12381MapG1{},
	bls12381MapG2Addr:   &bls12381MapG2{},
}

// PrecompiledContractsPrague is the union of cancunContracts and
// PrecompiledContractsBLS.
var PrecompiledContractsPrague = mergeContracts(cancunContracts, PrecompiledContractsBLS)

func mergeContracts(sets ...map[common.Address]PrecompiledContract) map[common.Address]PrecompiledContract {
	merged := make(map[common.Address]PrecompiledContract, 32)
	for _, set := range sets {
		for addr, c := range set {
			merged[addr] = c
		}
	}
	return merged
}

// IsPrecompile reports whether address is an active precompile at fork. Only
// the point evaluation address (0x0a) and the BLS12-381 range (0x0b..0x11)
// are fork-gated; every other known address is always a member of the set
// regardless of fork.
func IsPrecompile(address common.Address, fork params.Fork) bool {
	if address == pointEvaluationAddr && fork < params.Cancun {
		return false
	}
	if _, isBLS := PrecompiledContractsBLS[address]; isBLS && fork < params.Prague {
		return false
	}
	_, ok := PrecompiledContractsPrague[address]
	return ok
}

// ActivePrecompiles returns the precompile set enabled at fork. It always
// agrees with IsPrecompile: the only distinctions either function observes
// are <Cancun, >=Cancun, and >=Prague.
func ActivePrecompiles(fork params.Fork) map[common.Address]PrecompiledContract {
	switch {
	case fork >= params.Prague:
		return PrecompiledContractsPrague
	case fork >= params.Cancun:
		return cancunContracts
	default:
		return baseContracts
	}
}

// ExecutePrecompile looks up the precompile at address for fork, charges its
// gas against *gasRemaining, and runs it. Callers are expected to gate with
// IsPrecompile first; an address that isn't active at this fork yields
// ErrInvalidPrecompileAddress.
func ExecutePrecompile(address common.Address, calldata []byte, fork params.Fork, gasRemaining *uint64) ([]byte, error) {
	contract, ok := ActivePrecompiles(fork)[address]
	if !ok {
		return nil, ErrInvalidPrecompileAddress
	}
	return RunPrecompiledContract(contract, calldata, gasRemaining)
}

// RunPrecompiledContract charges the contract's required gas against
// *gasRemaining and, if enough was available, runs it. For precompiles whose
// cost depends on the input (MODEXP, MSM, pairing checks) RequiredGas only
// parses lengths, so the expensive arithmetic in Run never executes unless
// gas was actually available to pay for it.
func RunPrecompiledContract(p PrecompiledContract, input []byte, gasRemaining *uint64) ([]byte, error) {
	gasCost := p.RequiredGas(input)
	if err := charge(gasCost, gasRemaining); err != nil {
		return nil, err
	}
	return p.Run(input)
}

// getData returns a slice from data of length size starting at start,
// right-padded with zeros if the requested window runs past the end of
// data. A start past len(data) is clamped to len(data); start+size is not
// checked for uint64 overflow, and size is allocated in full.
func getData(data []byte, start uint64, size uint64) []byte {
	dlen := uint64(len(data))
	if start > dlen {
		start = dlen
	}
	end := start + size
	if end > dlen {
		end = dlen
	}
	return common.RightPadBytes(data[start:end], int(size))
}

// allZero reports whether every byte of b is zero.
func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// ECRECOVER implemented as a native contract.
type ecrecover struct{}

func (c *ecrecover) RequiredGas(input []byte) uint64 {
	return params.EcrecoverGas
}

const ecRecoverInputLength = 128

func (c *ecrecover) Run(input []byte) ([]byte, error) {
	input = common.RightPadBytes(input, ecRecoverInputLength)
	// "input" is (hash, v, r, s), each 32 bytes, but for ecrecover we want
	// (r, s, v).
	r := new(big.Int).SetBytes(input[64:96])
	s := new(big.Int).SetBytes(input[96:128])
	v := input[63] - 27

	// A malformed v/r/s is a null-success, not an error: it still burns the
	// full ECRECOVER gas and returns an empty result.
	if !allZero(input[32:63]) || !crypto.ValidateSignatureValues(v, r, s, false) {
		return nil, nil
	}
	// "input" must not be modified, so a fresh buffer holds (r, s, v).
	sig := make([]byte, 65)
	copy(sig, input[64:128])
	sig[64] = v

	pubKey, err := crypto.Ecrecover(input[:32], sig)
	if err != nil {
		return nil, nil
	}
	// The first byte of pubKey is the uncompressed-point marker and is
	// dropped before hashing.
	return common.LeftPadBytes(crypto.Keccak256(pubKey[1:])[12:], 32), nil
}

// SHA256 implemented as a native contract.
type sha256hash struct{}

func (c *sha256hash) RequiredGas(input []byte) uint64 {
	return uint64(len(input)+31)/32*params.Sha256PerWordGas + params.Sha256BaseGas
}

func (c *sha256hash) Run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return h[:], nil
}

// RIPEMD160 implemented as a native contract.
type ripemd160hash struct{}

func (c *ripemd160hash) RequiredGas(input []byte) uint64 {
	return uint64(len(input)+31)/32*params.Ripemd160PerWordGas + params.Ripemd160BaseGas
}

func (c *ripemd160hash) Run(input []byte) ([]byte, error) {
	ripemd := ripemd160.New()
	ripemd.Write(input)
	return common.LeftPadBytes(ripemd.Sum(nil), 32), nil
}

// dataCopy implements the Identity precompile.
type dataCopy struct{}

func (c *dataCopy) RequiredGas(input []byte) uint64 {
	return uint64(len(input)+31)/32*params.IdentityPerWordGas + params.IdentityBaseGas
}

func (c *dataCopy) Run(in []byte) ([]byte, error) {
	return common.CopyBytes(in), nil
}

// bigModExp implements arbitrary-precision modular exponentiation (EIP-198),
// priced by the EIP-2565 formula.
type bigModExp struct{}

var (
	big1  = big.NewInt(1)
	big7  = big.NewInt(7)
	big8  = big.NewInt(8)
	big32 = big.NewInt(32)
)

func (c *bigModExp) RequiredGas(input []byte) uint64 {
	var (
		baseLen = new(big.Int).SetBytes(getData(input, 0, 32))
		expLen  = new(big.Int).SetBytes(getData(input, 32, 32))
		modLen  = new(big.Int).SetBytes(getData(input, 64, 32))
	)
	if len(input) > 96 {
		input = input[96:]
	} else {
		input = input[:0]
	}
	// The adjusted exponent length only needs the head 32 bytes of E.
	var expHead *big.Int
	if big.NewInt(int64(len(input))).Cmp(baseLen) <= 0 {
		expHead = new(big.Int)
	} else {
		if expLen.Cmp(big32) > 0 {
			expHead = new(big.Int).SetBytes(getData(input, baseLen.Uint64(), 32))
		} else {
			expHead = new(big.Int).SetBytes(getData(input, baseLen.Uint64(), expLen.Uint64()))
		}
	}
	var msb int
	if bitlen := expHead.BitLen(); bitlen > 0 {
		msb = bitlen - 1
	}
	adjExpLen := new(big.Int)
	if expLen.Cmp(big32) > 0 {
		adjExpLen.Sub(expLen, big32)
		adjExpLen.Mul(big8, adjExpLen)
	}
	adjExpLen.Add(adjExpLen, big.NewInt(int64(msb)))

	gas := new(big.Int).Set(math.BigMax(modLen, baseLen))
	gas = gas.Add(gas, big7)
	gas = gas.Div(gas, big8)
	gas.Mul(gas, gas)
	gas.Mul(gas, math.BigMax(adjExpLen, big1))
	gas.Div(gas, big.NewInt(int64(params.ModExpQuadCoeffDiv)))
	if gas.BitLen() > 64 {
		return math.MaxUint64
	}
	if gas.Uint64() < params.ModExpStaticCost {
		return params.ModExpStaticCost
	}
	return gas.Uint64()
}

func (c *bigModExp) Run(input []byte) ([]byte, error) {
	var (
		baseLen = new(big.Int).SetBytes(getData(input, 0, 32)).Uint64()
		expLen  = new(big.Int).SetBytes(getData(input, 32, 32)).Uint64()
		modLen  = new(big.Int).SetBytes(getData(input, 64, 32)).Uint64()
	)
	if len(input) > 96 {
		input = input[96:]
	} else {
		input = input[:0]
	}
	if baseLen == 0 && modLen == 0 {
		return []byte{}, nil
	}
	var (
		base = new(big.Int).SetBytes(getData(input, 0, baseLen))
		exp  = new(big.Int).SetBytes(getData(input, baseLen, expLen))
		mod  = new(big.Int).SetBytes(getData(input, baseLen+expLen, modLen))
		v    []byte
	)
	switch {
	case mod.BitLen() == 0:
		// Modulus 0: every output byte is zero, by definition.
		return common.LeftPadBytes([]byte{}, int(modLen)), nil
	case base.BitLen() == 1:
		// Base 1: avoid a full exponentiation, base.Exp would get there
		// anyway but this shortcuts the common case cheaply.
		v = base.Mod(base, mod).Bytes()
	default:
		v = base.Exp(base, exp, mod).Bytes()
	}
	return common.LeftPadBytes(v, int(modLen)), nil
}

// newCurvePoint unmarshals a binary blob into a bn256 (alt_bn128) G1 point.
func newCurvePoint(blob []byte) (*bn256.G1, error) {
	p := new(bn256.G1)
	if _, err := p.Unmarshal(blob); err != nil {
		return nil, err
	}
	return p, nil
}

// newTwistPoint unmarshals a binary blob into a bn256 G2 (twist) point.
func newTwistPoint(blob []byte) (*bn256.G2, error) {
	p := new(bn256.G2)
	if _, err := p.Unmarshal(blob); err != nil {
		return nil, err
	}
	return p, nil
}

func runBn256Add(input []byte) ([]byte, error) {
	x, err := newCurvePoint(getData(input, 0, 64))
	if err != nil {
		return nil, err
	}
	y, err := newCurvePoint(getData(input, 64, 64))
	if err != nil {
		return nil, err
	}
	res := new(bn256.G1)
	res.Add(x, y)
	return res.Marshal(), nil
}

// bn256Add implements ECADD (0x06) at the EIP-1108 (Istanbul) price.
type bn256Add struct{}

func (c *bn256Add) RequiredGas(input []byte) uint64  { return params.Bn256AddGasIstanbul }
func (c *bn256Add) Run(input []byte) ([]byte, error) { return runBn256Add(input) }

func runBn256ScalarMul(input []byte) ([]byte, error) {
	p, err := newCurvePoint(getData(input, 0, 64))
	if err != nil {
		return nil, err
	}
	res := new(bn256.G1)
	res.ScalarMult(p, new(big.Int).SetBytes(getData(input, 64, 32)))
	return res.Marshal(), nil
}

// bn256ScalarMul implements ECMUL (0x07) at the EIP-1108 (Istanbul) price.
type bn256ScalarMul struct{}

func (c *bn256ScalarMul) RequiredGas(input []byte) uint64 {
	return params.Bn256ScalarMulGasIstanbul
}
func (c *bn256ScalarMul) Run(input []byte) ([]byte, error) { return runBn256ScalarMul(input) }

var (
	// true32Byte is returned when a pairing check succeeds.
	true32Byte = []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	// false32Byte is returned when a pairing check fails.
	false32Byte = make([]byte, 32)
)

func runBn256Pairing(input []byte) ([]byte, error) {
	if len(input)%192 > 0 {
		return nil, errBadPairingInput
	}
	var (
		cs []*bn256.G1
		ts []*bn256.G2
	)
	for i := 0; i < len(input); i += 192 {
		c, err := newCurvePoint(input[i : i+64])
		if err != nil {
			return nil, err
		}
		t, err := newTwistPoint(input[i+64 : i+192])
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
		ts = append(ts, t)
	}
	if bn256.PairingCheck(cs, ts) {
		return true32Byte, nil
	}
	return false32Byte, nil
}

// bn256Pairing implements ECPAIRING (0x08) at the EIP-1108 (Istanbul) price.
type bn256Pairing struct{}

func (c *bn256Pairing) RequiredGas(input []byte) uint64 {
	return params.Bn256PairingBaseGasIstanbul + uint64(len(input)/192)*params.Bn256PairingPerPointGasIstanbul
}
func (c *bn256Pairing) Run(input []byte) ([]byte, error) { return runBn256Pairing(input) }

// blake2F implements the Blake2b F compression function precompile
// (EIP-152).
type blake2F struct{}

const (
	blake2FInputLength        = 213
	blake2FFinalBlockBytes    = byte(1)
	blake2FNonFinalBlockBytes = byte(0)
)

func (c *blake2F) RequiredGas(input []byte) uint64 {
	// A malformed length can't be costed; Run rejects it explicitly.
	if len(input) != blake2FInputLength {
		return 0
	}
	return uint64(binary.BigEndian.Uint32(input[0:4])) * params.Blake2FRoundCost
}

func (c *blake2F) Run(input []byte) ([]byte, error) {
	if len(input) != blake2FInputLength {
		return nil, errBlake2FInvalidInputLength
	}
	if input[212] != blake2FNonFinalBlockBytes && input[212] != blake2FFinalBlockBytes {
		return nil, errBlake2FInvalidFinalFlag
	}
	var (
		rounds = binary.BigEndian.Uint32(input[0:4])
		final  = input[212] == blake2FFinalBlockBytes

		h [8]uint64
		m [16]uint64
		t [2]uint64
	)
	for i := 0; i < 8; i++ {
		offset := 4 + i*8
		h[i] = binary.LittleEndian.Uint64(input[offset : offset+8])
	}
	for i := 0; i < 16; i++ {
		offset := 68 + i*8
		m[i] = binary.LittleEndian.Uint64(input[offset : offset+8])
	}
	t[0] = binary.LittleEndian.Uint64(input[196:204])
	t[1] = binary.LittleEndian.Uint64(input[204:212])

	blake2b.F(&h, m, t, final, rounds)

	output := make([]byte, 64)
	for i := 0; i < 8; i++ {
		offset := i * 8
		binary.LittleEndian.PutUint64(output[offset:offset+8], h[i])
	}
	return output, nil
}

// kzgPointEvaluation implements the EIP-4844 point evaluation precompile.
type kzgPointEvaluation struct{}

func (b *kzgPointEvaluation) RequiredGas(input []byte) uint64 {
	return params.PointEvaluationGas
}

const (
	blobVerifyInputLength          = 192
	blobCommitmentVersionKZG uint8 = 0x01
	// blobPrecompileReturnValue is FIELD_ELEMENTS_PER_BLOB followed by
	// BLS_MODULUS, both left-padded to 32 bytes, as required by EIP-4844.
	blobPrecompileReturnValue = "000000000000000000000000000000000000000000000000000000000000100073eda753299d7d483339d80809a1d80553bda402fffe5bfeffffffff00000001"
)

func (b *kzgPointEvaluation) Run(input []byte) ([]byte, error) {
	if len(input) != blobVerifyInputLength {
		return nil, errBlobVerifyInvalidLength
	}
	var versionedHash common.Hash
	copy(versionedHash[:], input[:32])

	var (
		point kzg4844.Point
		claim kzg4844.Claim
	)
	copy(point[:], input[32:64])
	copy(claim[:], input[64:96])

	var commitment kzg4844.Commitment
	copy(commitment[:], input[96:144])
	if kZGToVersionedHash(commitment) != versionedHash {
		return nil, errBlobVerifyMismatchedHash
	}

	var proof kzg4844.Proof
	copy(proof[:], input[144:192])

	if err := kzg4844.VerifyProof(commitment, point, claim, proof); err != nil {
		return nil, fmt.Errorf("%w: %v", errBlobVerifyKZGProof, err)
	}
	return common.Hex2Bytes(blobPrecompileReturnValue), nil
}

// kZGToVersionedHash implements kzg_to_versioned_hash from EIP-4844.
func kZGToVersionedHash(kzg kzg4844.Commitment) common.Hash {
	h := sha256.Sum256(kzg[:])
	h[0] = blobCommitmentVersionKZG
	return h
}
