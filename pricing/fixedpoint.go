package pricing

import "math/big"

// The exponential is evaluated in 1e18 fixed point ("wad"): an input x
// represents x/1e18 and the result represents e^(x/1e18) scaled by 1e18.
var fixedOne = big.NewInt(1_000_000_000_000_000_000)

// MaxExpInput is the largest wad input the fixed-point exponential accepts.
// Above this the true result no longer fits the curve's working range, so
// callers must treat larger exponents as resource exhaustion rather than
// clamping.
var MaxExpInput, _ = new(big.Int).SetString("135305999368893231588", 10)

// expFixed computes e^(x/1e18) in 1e18 fixed point using a Taylor
// expansion accumulated in integers. The caller guarantees
// 0 <= x <= MaxExpInput; within that range every intermediate term fits
// comfortably in a big.Int and the series terminates once the running
// term truncates to zero.
func expFixed(x *big.Int) *big.Int {
	i := big.NewInt(1)
	one := big.NewInt(1)
	output := new(big.Int)

	// accum_0 = 1e18 * 1e18; accum_i = accum_{i-1} * x / (1e18 * i).
	accum := new(big.Int).Mul(fixedOne, fixedOne)
	tmp := new(big.Int)
	denom := new(big.Int)
	for accum.Sign() > 0 {
		output.Add(output, accum)
		tmp.Mul(accum, x)
		denom.Mul(fixedOne, i)
		accum.Div(tmp, denom)
		i.Add(i, one)
	}
	return output.Div(output, fixedOne)
}
