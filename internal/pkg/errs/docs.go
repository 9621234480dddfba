// Package errs provides the typed errors shared by the tracking engine.
//
// Every error type wraps one sentinel so callers classify with errors.Is:
//   - ErrObjectNotFound: order or category unknown (not retried)
//   - ErrForbidden: actor lacks authority for the requested stage change
//   - ErrInvalidTransition: stage ordering or terminal-state violation; refresh before retrying
//   - ErrConflict: a concurrent writer won the race; safe to retry once after re-reading
//   - ErrValueIsInvalid, ErrValueIsRequired, ErrValueIsOutOfRange: input validation
//
// ErrInsufficientHistory is an internal signal of the ETA estimator; it is never
// surfaced to clients and maps to an unknown estimate.
package errs
