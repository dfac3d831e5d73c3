// Package errs provides the typed errors shared by the order pipeline.
//
// Every type follows one pattern: a sentinel (ErrValueIsRequired, ErrLookupFailed, ...),
// a struct carrying the details, New... and New...WithCause constructors, and an
// Unwrap method so callers classify failures with errors.Is / errors.As.
//
// The types map onto the pipeline's error taxonomy:
//   - validation: ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError
//   - lookup (geocoding, routing): LookupError
//   - bus publish failures: TransportError
//   - missing entities: ObjectNotFoundError
package errs
