package protocol

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Config holds the deployment parameters of the protocol. It is fixed at
// init and immutable thereafter.
type Config struct {
	// RingBufferSize is the capacity of the block ring buffer, bounding
	// how many blocks may be pending verification at once.
	RingBufferSize uint64

	// MaxForkChoicesPerBlock bounds the competing-parent fan-out of one
	// block.
	MaxForkChoicesPerBlock uint16

	// MaxVerificationsPerCall caps how many blocks one finalization call
	// may process, whatever bound the caller asks for.
	MaxVerificationsPerCall uint64

	// BlockMaxGasLimit is the largest gas limit a proposal may declare.
	BlockMaxGasLimit uint64

	// GasTarget is the target purchase size for pricing calibration and
	// basefee computation.
	GasTarget uint64

	// GasExcessMax is the pricing curve's expected maximum cumulative
	// usage. The counter starts at the curve midpoint GasExcessMax/2,
	// where a target-sized purchase costs exactly InitialBasefee.
	GasExcessMax uint64

	// InitialBasefee is the midpoint spot price used for calibration.
	InitialBasefee uint64

	// Ratio2x1x is the expected percent price ratio between a 2x-target
	// and a 1x-target purchase at the curve midpoint (111 = 1.11x).
	Ratio2x1x uint64

	// GenesisHeight is the base-chain height at deployment.
	GenesisHeight uint64

	// GenesisHash is the externally supplied genesis block commitment.
	GenesisHash common.Hash
}

// DefaultConfig returns deployment parameters with a curve calibrated so a
// 6M-gas target purchase at the midpoint costs 5 gwei with a 1.11x
// doubling ratio. GenesisHash must still be supplied per deployment.
func DefaultConfig() Config {
	return Config{
		RingBufferSize:          2048,
		MaxForkChoicesPerBlock:  16,
		MaxVerificationsPerCall: 20,
		BlockMaxGasLimit:        6_000_000,
		GasTarget:               6_000_000,
		GasExcessMax:            4_000_000_000,
		InitialBasefee:          5_000_000_000,
		Ratio2x1x:               111,
	}
}

// Validate checks that every parameter is usable. All violations are
// configuration errors wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.RingBufferSize < 2:
		return fmt.Errorf("%w: ring buffer size must be at least 2", ErrInvalidConfig)
	case c.MaxForkChoicesPerBlock == 0:
		return fmt.Errorf("%w: max fork choices per block must be positive", ErrInvalidConfig)
	case c.MaxVerificationsPerCall == 0:
		return fmt.Errorf("%w: max verifications per call must be positive", ErrInvalidConfig)
	case c.BlockMaxGasLimit == 0:
		return fmt.Errorf("%w: block max gas limit must be positive", ErrInvalidConfig)
	case c.GasTarget == 0:
		return fmt.Errorf("%w: gas target must be positive", ErrInvalidConfig)
	case c.GasExcessMax == 0:
		return fmt.Errorf("%w: gas excess max must be positive", ErrInvalidConfig)
	case c.InitialBasefee == 0:
		return fmt.Errorf("%w: initial basefee must be positive", ErrInvalidConfig)
	case c.Ratio2x1x <= 100:
		return fmt.Errorf("%w: ratio2x1x must exceed 100 percent", ErrInvalidConfig)
	case c.GenesisHash == (common.Hash{}):
		return fmt.Errorf("%w: genesis hash must be set", ErrInvalidConfig)
	}
	return nil
}
