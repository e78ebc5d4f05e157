// Package errors provides structured error handling for wordex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Corpus errors (enumeration, document reads)
//   - 3XX: Merge errors (invariant violations)
//   - 4XX: Storage errors (bucket flush, catalog)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryCorpus indicates enumeration and document read errors.
	CategoryCorpus Category = "CORPUS"
	// CategoryMerge indicates merge invariant violations.
	CategoryMerge Category = "MERGE"
	// CategoryStorage indicates bucket flush and catalog errors.
	CategoryStorage Category = "STORAGE"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines how an error affects a running pipeline.
type Severity string

const (
	// SeverityFatal aborts the whole run.
	SeverityFatal Severity = "FATAL"
	// SeveritySkip excludes one document and continues.
	SeveritySkip Severity = "SKIP"
	// SeverityError indicates a failed operation outside the pipeline.
	SeverityError Severity = "ERROR"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Corpus errors (200-299)
	ErrCodeEnumeration   = "ERR_201_ENUMERATION"
	ErrCodeDocNotFound   = "ERR_202_DOC_NOT_FOUND"
	ErrCodeDocPermission = "ERR_203_DOC_PERMISSION"
	ErrCodeDocTooLarge   = "ERR_204_DOC_TOO_LARGE"
	ErrCodeDocDecode     = "ERR_205_DOC_DECODE"
	ErrCodeDocIO         = "ERR_206_DOC_IO"

	// Merge errors (300-399)
	ErrCodeDuplicatePosting = "ERR_301_DUPLICATE_POSTING"
	ErrCodeFragmentReplayed = "ERR_302_FRAGMENT_REPLAYED"

	// Storage errors (400-499)
	ErrCodeBucketWrite  = "ERR_401_BUCKET_WRITE"
	ErrCodeOutputLocked = "ERR_402_OUTPUT_LOCKED"
	ErrCodeCatalog      = "ERR_403_CATALOG"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
	ErrCodeDeadline = "ERR_502_DEADLINE"
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
		return CategoryMerge
	case '4':
		return CategoryStorage
	default:
		return CategoryInternal
	}
}

// severityFromCode determines the default severity for an error code.
// Per-document read errors are skippable; everything else aborts the run
// that encounters it. The pipeline may escalate skippable codes to fatal
// via configuration.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeDocNotFound, ErrCodeDocPermission, ErrCodeDocTooLarge,
		ErrCodeDocDecode, ErrCodeDocIO:
		return SeveritySkip
	case ErrCodeConfigNotFound, ErrCodeConfigInvalid:
		return SeverityError
	default:
		return SeverityFatal
	}
}
