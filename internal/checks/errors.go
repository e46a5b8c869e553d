package checks

import "fmt"

// FailureCode categorizes why a check could not pass.
type FailureCode string

const (
	// CodeConfigMismatch is fatal to the session: the supplied tool mapping
	// contradicts the job metadata.
	CodeConfigMismatch FailureCode = "CONFIG_MISMATCH"

	// CodeMissingData marks an absent metadata or inventory field. Always
	// non-fatal; the affected rule is skipped.
	CodeMissingData FailureCode = "MISSING_DATA"

	// CodeFetchFailed marks an unreachable or unknown inventory record or
	// job metadata. Non-fatal to the session but blocking for the affected
	// tool when a mandatory rule needed the record.
	CodeFetchFailed FailureCode = "FETCH_FAILED"

	// CodeRuleViolation marks a present but non-compliant value. Blocking
	// only under error severity.
	CodeRuleViolation FailureCode = "RULE_VIOLATION"
)

// CheckError is a classified check failure.
type CheckError struct {
	Code    FailureCode
	Message string
	Tool    int
	Err     error
}

func (e *CheckError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CheckError) Unwrap() error { return e.Err }
