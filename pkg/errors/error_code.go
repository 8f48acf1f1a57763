package errors

// ErrorCode represents a typed error code for categorizing errors.
type ErrorCode int

// General errors (1-99).
const (
	// ErrCodeUnknown is used when the error type cannot be determined.
	ErrCodeUnknown ErrorCode = 1
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = 2
)

// Validation errors (100-199).
const (
	// ErrCodeInvalidParameter indicates an invalid parameter value.
	ErrCodeInvalidParameter ErrorCode = 100
	// ErrCodeMissingParameter indicates a required parameter was not provided.
	ErrCodeMissingParameter ErrorCode = 101
	// ErrCodeInvalidConfig indicates the engine configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = 102
)

// Market data errors (200-299).
const (
	// ErrCodeMarketDataUnavailable indicates the market data provider returned no data.
	ErrCodeMarketDataUnavailable ErrorCode = 200
	// ErrCodeMarketDataFetchFailed indicates a provider request failed.
	ErrCodeMarketDataFetchFailed ErrorCode = 201
	// ErrCodeImplausiblePrice indicates a quote fell outside the configured plausibility band.
	ErrCodeImplausiblePrice ErrorCode = 202
)

// Indicator errors (300-399).
const (
	// ErrCodeInsufficientHistory indicates the candle series is too short for the calculation.
	ErrCodeInsufficientHistory ErrorCode = 300
	// ErrCodeIndicatorCalculation indicates an indicator computation failed.
	ErrCodeIndicatorCalculation ErrorCode = 301
)

// Signal errors (400-499).
const (
	// ErrCodeInvalidSignal indicates a signal failed validation.
	ErrCodeInvalidSignal ErrorCode = 400
)

// Admission errors (500-599). These are refusals, not failures: the ledger
// declined to commit a trade because an operating invariant would be violated.
const (
	// ErrCodeCooldownActive indicates a trade on the same symbol committed within the cooldown window.
	ErrCodeCooldownActive ErrorCode = 500
	// ErrCodeConcurrencyCap indicates the open-trade cap has been reached.
	ErrCodeConcurrencyCap ErrorCode = 501
	// ErrCodeSolvencyFloor indicates the balance is at or below the minimum operating threshold.
	ErrCodeSolvencyFloor ErrorCode = 502
)

// Engine errors (600-699).
const (
	// ErrCodeEngineNotConnected indicates start was requested without a market data provider.
	ErrCodeEngineNotConnected ErrorCode = 600
	// ErrCodeEngineAlreadyRunning indicates start was requested while the engine is running.
	ErrCodeEngineAlreadyRunning ErrorCode = 601
	// ErrCodeEngineNotRunning indicates stop was requested while the engine is stopped.
	ErrCodeEngineNotRunning ErrorCode = 602
	// ErrCodeEngineInitFailed indicates the engine failed to initialize.
	ErrCodeEngineInitFailed ErrorCode = 603
)

// Persistence errors (700-799).
const (
	// ErrCodeSnapshotLoadFailed indicates a state snapshot could not be loaded.
	ErrCodeSnapshotLoadFailed ErrorCode = 700
	// ErrCodeSnapshotSaveFailed indicates a state snapshot could not be saved.
	ErrCodeSnapshotSaveFailed ErrorCode = 701
	// ErrCodeCredentialStore indicates a credential file operation failed.
	ErrCodeCredentialStore ErrorCode = 702
)

// IsAdmissionRefusal reports whether the code is one of the ledger admission
// refusal codes. Refusals are normal operation, not failures, but callers need
// to distinguish them from "no signal" for observability.
func IsAdmissionRefusal(code ErrorCode) bool {
	return code >= ErrCodeCooldownActive && code <= ErrCodeSolvencyFloor
}
