package logging

// Standard structured field keys.
const (
	// FieldComponent identifies the emitting subsystem.
	FieldComponent = "component"
	// FieldEventType is a stable machine-readable event name.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRunID tags every line emitted by one run loop.
	FieldRunID = "run_id"
	// FieldAppID carries the application id a line is about.
	FieldAppID = "app_id"
)
