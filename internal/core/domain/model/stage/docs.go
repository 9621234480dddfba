// Package stage is the stage registry: the immutable, ordered catalogue of lifecycle
// stages each order category moves through.
//
// A Sequence belongs to one category. Its stages are sorted by rank, the last one is the
// only terminal stage (COMPLETED in the shipped catalogue), and one non-terminal stage is
// the cancellable boundary: the last stage at which a customer may still cancel.
// CANCELLED is a global terminal key that never appears inside a Sequence.
//
// Registries are built once at process start and shared read-only between requests.
package stage
