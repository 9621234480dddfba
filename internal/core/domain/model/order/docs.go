// Package order provides the Order aggregate root of the tracking engine: identity,
// ownership, the current lifecycle stage and the first-entry time of every stage the
// order has passed through.
//
// The package includes:
//   - Order: the aggregate root with set-once stage timestamps and an optimistic version
//   - Timestamps: the stage entry times, monotonic in stage rank
//   - CancellationRecord: the append-only audit entry written when an order is cancelled
//
// Key business rules:
//   - New orders start in the first stage of their category
//   - An order only ever moves to the immediate successor of its current stage, or to CANCELLED
//   - A stage timestamp is written once and never overwritten
//   - COMPLETED and CANCELLED absorb every further transition
//   - The worker is bound when the worker-assigning stage is entered and cannot change afterwards
//
// Authorization is not the aggregate's concern; see the services package.
package order
