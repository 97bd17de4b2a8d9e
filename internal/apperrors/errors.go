package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrDuplicateTransaction indicates that a ledger entry with the same
// (member, type, reference) combination already exists within the
// deduplication window. Callers must not retry blindly; inspect the
// existing transaction first.
var ErrDuplicateTransaction = errors.New("duplicate transaction detected")

// ErrInsufficientFunds indicates that a payment or debit would exceed the
// member's completed-transaction balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrConflict indicates the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("conflicting state")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
