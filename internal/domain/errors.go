// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict (optimistic locking).
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrValidation indicates a malformed request or a field-level rule
// violation. The wrapping message carries the specifics.
var ErrValidation = errors.New("validation failed")

// ErrUnauthenticated indicates the caller could not be resolved to a user.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden indicates the caller's role does not permit the operation.
var ErrForbidden = errors.New("forbidden")

// ErrQuotaExceeded indicates the tenant's subscription tier does not allow
// another resource of the requested class. Expected and frequent; callers
// present it as an upgrade prompt, not a system error.
var ErrQuotaExceeded = errors.New("quota exceeded")

// ErrAlreadyAssigned indicates the vehicle (or, under the single-vehicle
// policy, the technician) already has an open assignment.
var ErrAlreadyAssigned = errors.New("already assigned")

// ErrAssignmentClosed indicates an attempted mutation of a closed
// assignment. Closed rows are immutable.
var ErrAssignmentClosed = errors.New("assignment closed")

// ErrInsufficientStock indicates the operation would drive a stock quantity
// negative. Nothing is applied.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidStockBounds indicates min/max stock levels that contradict each
// other (max < min) or are negative.
var ErrInvalidStockBounds = errors.New("invalid stock bounds")

// ErrStorageUnavailable indicates a transient persistence failure. Callers
// may retry a bounded number of times with backoff.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrIntegrityViolation is surfaced only by the Integrity Auditor. Its
// appearance means a prior bug or race left the data inconsistent; the
// auditor repairs and reports it, never tolerates it silently.
var ErrIntegrityViolation = errors.New("integrity violation")
