// Package errs provides the error taxonomy shared by the dispatch domain and its adapters.
//
// Every error type follows the same pattern:
//   - a sentinel variable (e.g. ErrValueIsRequired) usable with errors.Is
//   - a struct carrying details plus an optional cause
//   - NewXxxError / NewXxxErrorWithCause constructors
//   - Unwrap returning the sentinel
//
// Mapping to the dispatch failure classes:
//   - validation: ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError
//   - state conflict: StateConflictError
//   - not found: ObjectNotFoundError
//   - data integrity: DataIntegrityError
package errs
