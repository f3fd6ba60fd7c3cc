// (c) 2024 Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
//
// This file is a derived work, based on the go-ethereum library whose original
// notices appear in contracts.go.

package vm

import "errors"

// ErrorKind tags a precompile failure with the taxonomy from the
// specification. Callers treat every kind uniformly as "precompile failed"
// and burn the remaining gas; the tag exists for tracing and testing.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotEnoughGas
	KindParsingInputError
	KindInvalidPoint
	KindPointNotInSubgroup
	KindPointNotInCurve
	KindPairingError
	KindTypeConversion
	KindSlicing
	KindOverflow
	KindUnderflow
	KindInvalidPrecompileAddress
)

// PrecompileError wraps an error with its taxonomy tag, without changing how
// a caller observes the failure (all kinds burn the remaining gas).
type PrecompileError struct {
	Kind ErrorKind
	Err  error
}

func (e *PrecompileError) Error() string { return e.Err.Error() }

func (e *PrecompileError) Unwrap() error { return e.Err }

func newErr(kind ErrorKind, msg string) error {
	return &PrecompileError{Kind: kind, Err: errors.New(msg)}
}

var (
	ErrNotEnoughGas              = newErr(KindNotEnoughGas, "out of gas")
	ErrParsingInput              = newErr(KindParsingInputError, "invalid input")
	ErrInvalidPoint              = newErr(KindInvalidPoint, "invalid point")
	ErrPointNotInSubgroup        = newErr(KindPointNotInSubgroup, "point is not in the correct subgroup")
	ErrPointNotInCurve           = newErr(KindPointNotInCurve, "point is not on the curve")
	ErrPairing                   = newErr(KindPairingError, "pairing computation failed")
	ErrTypeConversion            = newErr(KindTypeConversion, "type conversion failed")
	ErrSlicing                   = newErr(KindSlicing, "slice out of bounds")
	ErrOverflow                  = newErr(KindOverflow, "integer overflow")
	ErrUnderflow                 = newErr(KindUnderflow, "integer underflow")
	ErrInvalidPrecompileAddress  = newErr(KindInvalidPrecompileAddress, "invalid precompile address")
	errBadPairingInput           = newErr(KindParsingInputError, "bad elliptic curve pairing size")
	errBlake2FInvalidInputLength = newErr(KindParsingInputError, "invalid input length")
	errBlake2FInvalidFinalFlag   = newErr(KindParsingInputError, "invalid final flag")
	errBlobVerifyInvalidLength   = newErr(KindParsingInputError, "invalid input length")
	errBlobVerifyMismatchedHash  = newErr(KindParsingInputError, "mismatched versioned hash")
	errBlobVerifyKZGProof        = newErr(KindParsingInputError, "error verifying kzg proof")
)

// charge is the single gas-metering primitive every precompile calls
// through: it checked-subtracts cost from *gas, or fails with
// ErrNotEnoughGas without mutating *gas.
func charge(cost uint64, gas *uint64) error {
	if cost > *gas {
		return ErrNotEnoughGas
	}
	*gas -= cost
	return nil
}
