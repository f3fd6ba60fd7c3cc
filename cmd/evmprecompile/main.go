// (c) 2024 Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command evmprecompile invokes a single EVM precompiled contract against
// hex-encoded calldata, for debugging gas and output computation outside of
// a full node.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"

	"github.com/evmcore/precompiles/core/vm"
	"github.com/evmcore/precompiles/params"
)

var forkNames = map[string]params.Fork{
	"homestead": params.Homestead,
	"byzantium": params.Byzantium,
	"istanbul":  params.Istanbul,
	"berlin":    params.Berlin,
	"cancun":    params.Cancun,
	"prague":    params.Prague,
}

func main() {
	app := &cli.App{
		Name:  "evmprecompile",
		Usage: "run a single EVM precompiled contract against hex calldata",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Usage:    "precompile address, e.g. 0x01 or 0x0a",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "input",
				Usage: "hex-encoded calldata (0x-prefixed or not)",
				Value: "0x",
			},
			&cli.StringFlag{
				Name:  "fork",
				Usage: "protocol fork: homestead|byzantium|istanbul|berlin|cancun|prague",
				Value: "prague",
			},
			&cli.StringFlag{
				Name:  "gas",
				Usage: "gas supplied to the call, decimal or 0x-hex",
				Value: "1000000000",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	fork, ok := forkNames[strings.ToLower(ctx.String("fork"))]
	if !ok {
		return fmt.Errorf("unknown fork %q", ctx.String("fork"))
	}
	addr, err := parseAddress(ctx.String("address"))
	if err != nil {
		return err
	}
	input, err := hex.DecodeString(strings.TrimPrefix(ctx.String("input"), "0x"))
	if err != nil {
		return fmt.Errorf("invalid --input: %w", err)
	}
	gas, err := parseGas(ctx.String("gas"))
	if err != nil {
		return fmt.Errorf("invalid --gas: %w", err)
	}

	if !vm.IsPrecompile(addr, fork) {
		return fmt.Errorf("%s is not an active precompile at fork %s", addr.Hex(), ctx.String("fork"))
	}

	gasRemaining := gas
	out, err := vm.ExecutePrecompile(addr, input, fork, &gasRemaining)
	if err != nil {
		log.Error("precompile execution failed", "address", addr.Hex(), "fork", ctx.String("fork"), "err", err)
		return err
	}
	fmt.Printf("output:       0x%x\n", out)
	fmt.Printf("gas remaining: %d\n", gasRemaining)
	return nil
}

func parseAddress(s string) (common.Address, error) {
	s = strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid --address: %w", err)
	}
	return common.BytesToAddress(raw), nil
}

// parseGas accepts either plain decimal or 0x-prefixed hex and returns the
// value as a uint64, the width the gas counter is carried in throughout
// core/vm.
func parseGas(s string) (uint64, error) {
	var (
		n   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err = uint256.FromHex(s)
	} else {
		n, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("value %s overflows uint64", s)
	}
	return n.Uint64(), nil
}
