package protocol

import "errors"

// Protocol errors. Three recoverable classes plus configuration errors:
// caller errors require corrected input, capacity errors clear once the
// chain makes progress through other calls, and proof rejections require
// different evidence. Configuration errors surface from NewState only and
// indicate a deployment bug. No failure leaves partial state behind, and
// nothing here retries; retry policy belongs to the caller.
var (
	// Caller/input errors.
	ErrBeneficiaryZero  = errors.New("protocol: proposal beneficiary must be non-zero")
	ErrGasLimitZero     = errors.New("protocol: proposal gas limit must be positive")
	ErrGasLimitTooHigh  = errors.New("protocol: proposal gas limit exceeds block maximum")
	ErrTxListTooLarge   = errors.New("protocol: transaction list exceeds maximum size")
	ErrSidecarInvalid   = errors.New("protocol: transaction-list sidecar rejected")
	ErrInvalidBlockID   = errors.New("protocol: block id not in provable range")
	ErrInvalidEvidence  = errors.New("protocol: evidence is missing required fields")
	ErrZeroMaxBlocks    = errors.New("protocol: maxBlocks must be positive")

	// Capacity errors.
	ErrTooManyBlocks      = errors.New("protocol: too many pending blocks")
	ErrTooManyForkChoices = errors.New("protocol: fork-choice capacity reached for block")

	// Oracle rejection.
	ErrProofRejected = errors.New("protocol: proof rejected by verifier")

	// Read-surface errors.
	ErrBlockNotFound      = errors.New("protocol: block not found")
	ErrBlockNotVerified   = errors.New("protocol: block not verified")
	ErrForkChoiceNotFound = errors.New("protocol: fork choice not found")

	// Configuration errors (init time only).
	ErrInvalidConfig = errors.New("protocol: invalid configuration")
)
