package ports

// TrackingMetrics receives business-level observations from the use cases.
type TrackingMetrics interface {
	// TransitionApplied counts a committed transition into target.
	TransitionApplied(categoryID, target string)
	// TransitionRejected counts a failed mutation by error kind.
	TransitionRejected(kind string)
	// EstimateServed counts tracking snapshots with and without an ETA.
	EstimateServed(available bool)
}
