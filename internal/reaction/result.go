package reaction

// Result reports the outcome of a single reaction. It is created once per
// React call and never mutated afterwards.
type Result struct {
	// Success reports whether the full command batch was produced and executed.
	Success bool

	// PluginID identifies the reactor that produced this result.
	PluginID string

	// ReactorID identifies the owning pipeline, when one was configured.
	ReactorID string

	// Event is the triggering event. Back-reference only.
	Event Event

	// Message is a human-readable summary of the outcome.
	Message string

	// Err carries the underlying failure detail. Non-nil iff Success is false.
	Err error
}
