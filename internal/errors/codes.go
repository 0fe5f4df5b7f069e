// Package errors provides structured error handling for the retrieval core.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Corpus errors (snapshot load, index integrity)
//   - 3XX: Oracle errors (LLM completion, embeddings)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryCorpus indicates corpus snapshot and index errors.
	CategoryCorpus Category = "CORPUS"
	// CategoryOracle indicates external oracle (LLM, embedding) errors.
	CategoryOracle Category = "ORACLE"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Corpus errors (200-299). Snapshot failures are fatal to the
	// retrieval subsystem: there is nothing to search without the tree.
	ErrCodeCorpusNotFound  = "ERR_201_CORPUS_NOT_FOUND"
	ErrCodeCorpusMalformed = "ERR_202_CORPUS_MALFORMED"
	ErrCodeSnapshotCorrupt = "ERR_203_SNAPSHOT_CORRUPT"

	// Oracle errors (300-399). Always recovered at the adapter boundary
	// by falling back to literal-keyword behavior.
	ErrCodeOracleUnavailable = "ERR_301_ORACLE_UNAVAILABLE"
	ErrCodeOracleTimeout     = "ERR_302_ORACLE_TIMEOUT"
	ErrCodeOracleMalformed   = "ERR_303_ORACLE_MALFORMED"
	ErrCodeOracleRateLimited = "ERR_304_ORACLE_RATE_LIMITED"
	ErrCodeBudgetExceeded    = "ERR_305_BUDGET_EXCEEDED"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeQueryEmpty   = "ERR_402_QUERY_EMPTY"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeSearchFailed = "ERR_502_SEARCH_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryCorpus
	case '3':
		return CategoryOracle
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeCorpusNotFound, ErrCodeCorpusMalformed, ErrCodeSnapshotCorrupt:
		return SeverityFatal
	}

	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
// Budget exhaustion is deliberately not retryable: retrying only burns
// more of the quota that is already gone.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeOracleUnavailable, ErrCodeOracleTimeout, ErrCodeOracleRateLimited:
		return true
	default:
		return false
	}
}
