// (c) 2024 Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
//
// This file is a derived work, based on the go-ethereum library whose original
// notices appear in core/vm/contracts.go.

package params

// Fork identifies a protocol upgrade. Forks are ordered; later forks have
// higher values. Only the Cancun and Prague boundaries affect which
// precompiled contracts are active - see core/vm.ActivePrecompiles. The
// earlier forks are retained so callers can express "this chain has not yet
// reached Cancun" without a magic pre-Cancun sentinel.
type Fork int

const (
	Homestead Fork = iota
	Byzantium
	Istanbul
	Berlin
	Cancun
	Prague
)
