// Package kernel holds the shared value objects of the tracking domain.
//
// The package includes:
//   - UUID: identifier of orders, customers and workers
//   - Actor: the authenticated party requesting a stage change (customer, worker or system)
//
// Both are immutable and safe for concurrent use. Zero values are invalid and fail Validate.
package kernel
