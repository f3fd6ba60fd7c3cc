// (c) 2024 Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
//
// This file is a derived work, based on the go-ethereum library whose original
// notices appear in core/vm/contracts.go.

package params

// Gas costs for the native precompiled contracts. Names and values follow
// the EIPs referenced in each comment; they are consensus constants, not
// tuning knobs.
const (
	// EIP-2: ECRECOVER (0x01).
	EcrecoverGas uint64 = 3000

	// SHA2-256 (0x02).
	Sha256BaseGas    uint64 = 60
	Sha256PerWordGas uint64 = 12

	// RIPEMD-160 (0x03).
	Ripemd160BaseGas    uint64 = 600
	Ripemd160PerWordGas uint64 = 120

	// Identity (0x04).
	IdentityBaseGas    uint64 = 15
	IdentityPerWordGas uint64 = 3

	// EIP-198 / EIP-2565: MODEXP (0x05).
	ModExpQuadCoeffDiv uint64 = 3
	ModExpStaticCost   uint64 = 200

	// EIP-196 / EIP-1108: ECADD, ECMUL (0x06, 0x07).
	Bn256AddGasIstanbul       uint64 = 150
	Bn256ScalarMulGasIstanbul uint64 = 6000

	// EIP-197 / EIP-1108: ECPAIRING (0x08).
	Bn256PairingBaseGasIstanbul     uint64 = 45000
	Bn256PairingPerPointGasIstanbul uint64 = 34000

	// EIP-152: Blake2f (0x09). One gas per round of the F compression
	// function.
	Blake2FRoundCost uint64 = 1

	// EIP-4844: point evaluation (0x0a).
	PointEvaluationGas uint64 = 50000

	// EIP-2537: BLS12-381 suite (0x0b..0x11).
	Bls12381G1AddGas       uint64 = 375
	Bls12381G1MulGas       uint64 = 12000
	Bls12381G2AddGas       uint64 = 600
	Bls12381G2MulGas       uint64 = 22500
	Bls12381MapFpToG1Gas   uint64 = 5500
	Bls12381MapFp2ToG2Gas  uint64 = 23800
	Bls12381PairingBaseGas uint64 = 37700
	Bls12381PairingPerPair uint64 = 32600
)

// Bls12381MultiExpDiscount returns the EIP-2537 multi-scalar
// multiplication discount (expressed in per-mille) for k pairs of the given
// group, where k is clamped to the table's length.
func Bls12381MultiExpDiscount(group string, k int) uint64 {
	table := bls12381G1MultiExpDiscountTable
	if group == "g2" {
		table = bls12381G2MultiExpDiscountTable
	}
	if k < 1 {
		k = 1
	}
	if k > len(table) {
		k = len(table)
	}
	return table[k-1]
}

// bls12381G1MultiExpDiscountTable is the EIP-2537 discount curve for
// G1MSM, indexed by k-1 (k = number of (point, scalar) pairs), expressed in
// per-mille of the undiscounted cost.
var bls12381G1MultiExpDiscountTable = [128]uint64{
	1000, 734, 620, 554, 509, 477, 452, 432, 415, 401, 390, 379,
	370, 362, 355, 349, 343, 338, 333, 328, 324, 320, 317, 313,
	310, 307, 304, 302, 299, 297, 295, 293, 291, 289, 287, 285,
	283, 282, 280, 279, 277, 276, 275, 273, 272, 271, 270, 269,
	267, 266, 265, 264, 263, 262, 262, 261, 260, 259, 258, 257,
	257, 256, 255, 254, 254, 253, 252, 252, 251, 251, 250, 249,
	249, 248, 248, 247, 247, 246, 246, 245, 245, 244, 244, 243,
	243, 242, 242, 241, 241, 240, 240, 240, 239, 239, 238, 238,
	238, 237, 237, 237, 236, 236, 236, 235, 235, 235, 234, 234,
	234, 233, 233, 233, 233, 232, 232, 232, 231, 231, 231, 231,
	230, 230, 230, 230, 229, 229, 229, 174,
}

// bls12381G2MultiExpDiscountTable is the EIP-2537 discount curve for
// G2MSM, same shape as bls12381G1MultiExpDiscountTable.
var bls12381G2MultiExpDiscountTable = [128]uint64{
	1000, 713, 590, 518, 470, 434, 407, 386, 368, 353, 340, 329,
	319, 311, 303, 296, 290, 284, 279, 274, 269, 265, 261, 258,
	254, 251, 248, 245, 242, 240, 238, 235, 233, 231, 229, 227,
	225, 223, 222, 220, 219, 217, 216, 214, 213, 212, 210, 209,
	208, 207, 206, 205, 204, 203, 202, 201, 200, 199, 198, 197,
	196, 196, 195, 194, 193, 192, 192, 191, 190, 190, 189, 188,
	188, 187, 187, 186, 185, 185, 184, 184, 183, 183, 182, 182,
	181, 181, 180, 180, 179, 179, 178, 178, 178, 177, 177, 176,
	176, 176, 175, 175, 174, 174, 174, 173, 173, 173, 172, 172,
	172, 171, 171, 171, 170, 170, 170, 169, 169, 169, 168, 168,
	168, 168, 167, 167, 167, 167, 166, 107,
}
