// Package pricing implements the bonded exponential fee curve that converts
// cumulative gas usage into a spot gas price.
//
// The curve models the total amount paid for cumulative usage x as
// y(x) = exp(x * xScale) / yScale; the price for purchasing `amount` units
// starting from usage `excess` is the average marginal price over the
// purchased range, (y(excess+amount) - y(excess)) / amount.
//
// The package is a stateless function library: callers hold the calibrated
// (xScale, yScale) pair and the cumulative usage counter themselves.
package pricing

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Pricing errors.
var (
	// ErrOutOfSpace reports that cumulative usage has pushed the curve's
	// exponent past the representable range. It denotes resource
	// exhaustion and is deliberately distinct from any rounding or
	// clamping behavior.
	ErrOutOfSpace = errors.New("pricing: cumulative gas usage out of curve range")

	// ErrZeroScale reports an uncalibrated scale parameter.
	ErrZeroScale = errors.New("pricing: scale parameters must be non-zero")

	// ErrInvalidCalibration reports calibration inputs that cannot
	// produce a usable curve.
	ErrInvalidCalibration = errors.New("pricing: invalid calibration input")

	// ErrRatioMismatch reports that the calibrated curve does not
	// reproduce the configured 2x/1x price ratio. This is a deployment
	// configuration error, not a runtime condition.
	ErrRatioMismatch = errors.New("pricing: 2x/1x price ratio mismatch")
)

// CalculateScales calibrates the curve at configuration time.
//
// xMax is the expected maximum cumulative gas usage, price the desired spot
// price for a target-sized purchase at the curve midpoint xMax/2, and
// ratio2x1x the expected percent ratio between a 2*target purchase and a
// target purchase at that midpoint (111 meaning 1.11x).
//
// It picks xScale so the exponent at xMax exactly fills the fixed-point
// exponential's input range, then derives yScale so the midpoint price
// matches. The ratio check re-evaluates the calibrated curve; a mismatch
// means the configured constants are mutually inconsistent and the
// deployment must not proceed.
func CalculateScales(xMax, price, target, ratio2x1x uint64) (uint64, *uint256.Int, error) {
	if xMax == 0 || price == 0 || target == 0 {
		return 0, nil, ErrInvalidCalibration
	}

	xScale := new(big.Int).Div(MaxExpInput, new(big.Int).SetUint64(xMax)).Uint64()
	if xScale == 0 {
		return 0, nil, ErrInvalidCalibration
	}

	mid := xMax / 2

	// Derive yScale: evaluating the curve with yScale=price yields the
	// factor that makes the midpoint target-purchase price come out at
	// exactly `price`.
	yScale, err := CalculatePrice(xScale, uint256.NewInt(price), mid, target)
	if err != nil {
		return 0, nil, err
	}
	if yScale.IsZero() {
		return 0, nil, ErrInvalidCalibration
	}

	price1x, err := CalculatePrice(xScale, yScale, mid, target)
	if err != nil {
		return 0, nil, err
	}
	price2x, err := CalculatePrice(xScale, yScale, mid, 2*target)
	if err != nil {
		return 0, nil, err
	}
	if price1x.IsZero() {
		return 0, nil, ErrInvalidCalibration
	}

	ratio := new(uint256.Int).Mul(price2x, uint256.NewInt(100))
	ratio.Div(ratio, price1x)
	if !ratio.Eq(uint256.NewInt(ratio2x1x)) {
		return 0, nil, fmt.Errorf("%w: got %s, want %d", ErrRatioMismatch, ratio, ratio2x1x)
	}
	return xScale, yScale, nil
}

// CalculatePrice returns the average marginal price for purchasing `amount`
// units of gas starting from cumulative usage `excess`.
//
// A zero amount is priced as a purchase of one unit; this is an explicit
// policy so callers querying the spot price never divide by zero.
// If the purchase pushes the exponent past MaxExpInput the call fails with
// ErrOutOfSpace.
func CalculatePrice(xScale uint64, yScale *uint256.Int, excess, amount uint64) (*uint256.Int, error) {
	if xScale == 0 || yScale == nil || yScale.IsZero() {
		return nil, ErrZeroScale
	}
	if amount == 0 {
		amount = 1
	}
	if excess+amount < excess {
		return nil, ErrOutOfSpace
	}

	before, err := curveQty(xScale, excess)
	if err != nil {
		return nil, err
	}
	after, err := curveQty(xScale, excess+amount)
	if err != nil {
		return nil, err
	}

	diff := new(big.Int).Sub(after, before)
	diff.Div(diff, new(big.Int).SetUint64(amount))
	diff.Div(diff, yScale.ToBig())

	out, overflow := uint256.FromBig(diff)
	if overflow {
		return nil, ErrOutOfSpace
	}
	return out, nil
}

// curveQty evaluates y(x) = exp(x * xScale) in 1e18 fixed point, rejecting
// exponents beyond the representable input range.
func curveQty(xScale, x uint64) (*big.Int, error) {
	exponent := new(big.Int).Mul(new(big.Int).SetUint64(x), new(big.Int).SetUint64(xScale))
	if exponent.Cmp(MaxExpInput) > 0 {
		return nil, ErrOutOfSpace
	}
	return expFixed(exponent), nil
}
