package types

import "errors"

var (
	// ErrInvalidSignature is returned when a signature does not verify (or cannot be decoded)
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidPublicKey is returned when a public key is not a base58 encoded 32 byte key
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrUnauthenticated is returned when no valid session exists
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrForbidden is returned when a session acts on behalf of another identity
	ErrForbidden = errors.New("forbidden")

	// ErrFeatureLocked is returned when a gated feature was not verified on-chain
	ErrFeatureLocked = errors.New("feature verification required")

	// ErrNotFound is returned when the record does not exist
	ErrNotFound = errors.New("not found")

	// ErrValidation is the parent of all input validation errors
	ErrValidation = errors.New("validation error")

	// ErrReplayDetected is returned when a signature was already used
	ErrReplayDetected = errors.New("signature already used - replay attack detected")

	// ErrAlreadyVerified is returned when a feature is already unlocked for the identity
	ErrAlreadyVerified = errors.New("feature already verified")

	// ErrAlreadyPublished is returned when publishOnce is enabled and the identity is already on-chain
	ErrAlreadyPublished = errors.New("identity already published")

	// ErrConflict is returned on unique constraint violations
	ErrConflict = errors.New("conflict")

	// ErrFeePayerNotConfigured is returned when the fee payer secret is missing
	ErrFeePayerNotConfigured = errors.New("fee payer not configured")

	// ErrFeePayerInvalid is returned when the fee payer secret cannot be parsed
	ErrFeePayerInvalid = errors.New("invalid fee payer private key format")

	// ErrInsufficientFunds is returned when the fee payer balance is below the operating minimum
	ErrInsufficientFunds = errors.New("insufficient fee payer balance")

	// ErrLedger is returned when submission or confirmation failed
	ErrLedger = errors.New("ledger error")
)

// ValidationError carries a user facing message and unwraps to ErrValidation
type ValidationError struct {
	Message string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// AlreadyVerifiedError carries the existing verification so the caller can return its txHash
type AlreadyVerifiedError struct {
	Verification *FeatureVerification
}

func (e *AlreadyVerifiedError) Error() string {
	return ErrAlreadyVerified.Error()
}

func (e *AlreadyVerifiedError) Unwrap() error {
	return ErrAlreadyVerified
}
