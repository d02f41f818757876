// Command tephra-sim drives the rollup protocol core through a synthetic
// propose/prove/verify workload and reports the basefee trajectory.
//
// Usage:
//
//	tephra-sim [flags]
//
// Flags:
//
//	--blocks       Number of blocks to simulate (default: 64)
//	--gasused      Gas consumed per simulated block (default: 6000000)
//	--gaslimit     Gas limit for each proposal (default: 6000000)
//	--batch        Blocks finalized per verification pass (default: 4)
//	--verbosity    Log level: debug, info, warn, error (default: info)
//	--version      Print version and exit
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tephra-chain/tephra/crypto"
	"github.com/tephra-chain/tephra/log"
	"github.com/tephra-chain/tephra/metrics"
	"github.com/tephra-chain/tephra/proofs"
	"github.com/tephra-chain/tephra/protocol"
	"github.com/tephra-chain/tephra/registry"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

// simConfig holds the simulation workload parameters.
type simConfig struct {
	Blocks    uint64
	GasUsed   uint64
	GasLimit  uint64
	Batch     uint64
	Verbosity string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	logger := log.New(log.ParseLevel(cfg.Verbosity))
	log.SetDefault(logger)

	logger.Info("tephra-sim starting",
		"version", version,
		"blocks", cfg.Blocks,
		"gas_used", cfg.GasUsed,
		"gas_limit", cfg.GasLimit,
		"batch", cfg.Batch)

	if err := simulate(cfg, logger); err != nil {
		logger.Error("simulation failed", "err", err)
		return 1
	}
	return 0
}

// simulate runs the propose/prove/verify loop against a fresh core with a
// permissive proof oracle, then dumps the collected metrics.
func simulate(cfg simConfig, logger *log.Logger) error {
	book := registry.NewAddressBook()
	if err := book.Register(registry.NameProofVerifier, common.HexToAddress("0x00000000000000000000000000000000000a11ce")); err != nil {
		return err
	}

	verifiers := proofs.NewRegistry()
	if err := verifiers.Register(1, 0, proofs.AcceptAllVerifier{}); err != nil {
		return err
	}

	coreCfg := protocol.DefaultConfig()
	coreCfg.GenesisHash = crypto.Keccak256Hash([]byte("tephra-sim genesis"))

	collector := metrics.NewCollector()
	core, err := protocol.NewState(coreCfg, protocol.Dependencies{
		Resolver:  book,
		Verifiers: verifiers,
		Logger:    logger,
		Metrics:   collector,
	})
	if err != nil {
		return err
	}

	proposer := common.HexToAddress("0x0000000000000000000000000000000000c0ffee")
	prover := common.HexToAddress("0x0000000000000000000000000000000000decade")

	vars := core.GetStateVariables()
	parentHash := coreCfg.GenesisHash
	parentGasUsed := uint64(0)
	logger.Info("genesis", "basefee", vars.Basefee, "gas_excess", vars.GasExcess)

	for id := uint64(1); id <= cfg.Blocks; id++ {
		meta, err := core.ProposeBlock(protocol.ProposalInput{
			Beneficiary: proposer,
			GasLimit:    cfg.GasLimit,
		}, nil)
		if err != nil {
			return fmt.Errorf("propose block %d: %w", id, err)
		}

		blockHash := simBlockHash(id)
		if err := core.ProveBlock(id, protocol.Evidence{
			ParentHash:    parentHash,
			ParentGasUsed: parentGasUsed,
			BlockHash:     blockHash,
			SignalRoot:    crypto.Keccak256Hash(blockHash[:]),
			GasUsed:       cfg.GasUsed,
			Prover:        prover,
			Proof:         []byte{0x01},
		}); err != nil {
			return fmt.Errorf("prove block %d: %w", id, err)
		}
		parentHash = blockHash
		parentGasUsed = cfg.GasUsed

		if id%cfg.Batch == 0 {
			if err := core.VerifyBlocks(cfg.Batch); err != nil {
				return fmt.Errorf("verify through block %d: %w", id, err)
			}
		}

		vars = core.GetStateVariables()
		logger.Info("block",
			"id", meta.ID,
			"basefee", vars.Basefee,
			"gas_excess", vars.GasExcess,
			"last_verified", vars.LastVerifiedID)
	}

	// Drain whatever the batching left behind.
	if err := core.VerifyBlocks(cfg.Blocks); err != nil {
		return fmt.Errorf("final verification: %w", err)
	}

	vars = core.GetStateVariables()
	logger.Info("simulation complete",
		"blocks", vars.NumBlocks,
		"last_verified", vars.LastVerifiedID,
		"basefee", vars.Basefee,
		"gas_excess", vars.GasExcess)

	for name, entry := range collector.Snapshot() {
		logger.Info("metric", "name", name, "value", entry.Value)
	}
	return nil
}

// simBlockHash derives a deterministic per-block hash for the synthetic
// chain.
func simBlockHash(id uint64) common.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return crypto.Keccak256Hash(buf[:])
}

// parseFlags parses CLI arguments into a simConfig. Returns the config,
// whether the caller should exit immediately, and the exit code.
func parseFlags(args []string) (simConfig, bool, int) {
	var cfg simConfig
	fs := flag.NewFlagSet("tephra-sim", flag.ContinueOnError)

	uint64Var(fs, &cfg.Blocks, "blocks", 64, "number of blocks to simulate")
	uint64Var(fs, &cfg.GasUsed, "gasused", 6_000_000, "gas consumed per simulated block")
	uint64Var(fs, &cfg.GasLimit, "gaslimit", 6_000_000, "gas limit for each proposal")
	uint64Var(fs, &cfg.Batch, "batch", 4, "blocks finalized per verification pass")
	fs.StringVar(&cfg.Verbosity, "verbosity", "info", "log level (debug, info, warn, error)")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, true, 2
	}

	if *showVersion {
		fmt.Printf("tephra-sim %s (commit %s)\n", version, commit)
		return cfg, true, 0
	}

	if cfg.Blocks == 0 || cfg.Batch == 0 {
		fmt.Fprintln(os.Stderr, "Error: --blocks and --batch must be positive")
		return cfg, true, 2
	}
	if cfg.GasLimit == 0 {
		fmt.Fprintln(os.Stderr, "Error: --gaslimit must be positive")
		return cfg, true, 2
	}

	return cfg, false, 0
}
