// Package services provides the domain services of the tracking engine. They coordinate
// an order aggregate with its category's stage sequence and historical statistics,
// implementing the rules that do not belong to a single aggregate.
//
// The package includes:
//   - TransitionEngine: validates, authorizes and applies single lifecycle transitions
//   - TimelineProjector: derives the client-facing stage list of an order
//   - ETAEstimator: predicts the minutes left from per-stage dwell averages
//   - CancellationPolicy: decides whether a customer may still cancel
//
// All services are pure values: they hold no state and never touch storage.
package services
