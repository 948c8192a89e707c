package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the lookup pipeline. Enrichment-provider
// failures never surface as errors; they degrade to absent values.
var (
	// ErrInvalidCVEID rejects identifiers that do not match the CVE
	// grammar. Raised before any storage or network access.
	ErrInvalidCVEID = errors.New("invalid CVE identifier")

	// ErrRecordNotFound signals that no raw record exists for the id.
	ErrRecordNotFound = errors.New("CVE record not found")
)

// TransformationError reports an unexpected shape violation while
// normalizing a raw record. The whole lookup fails atomically; a
// report missing its identity fields is useless to the caller.
type TransformationError struct {
	CVEID  string
	Reason string
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("cannot transform record %s: %s", e.CVEID, e.Reason)
}

// NewTransformationError builds a TransformationError for the record.
func NewTransformationError(cveID, reason string) *TransformationError {
	return &TransformationError{CVEID: cveID, Reason: reason}
}
