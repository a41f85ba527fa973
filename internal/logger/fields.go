package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields propagated through the call chain.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldLocator is the image source locator (path or URL)
	FieldLocator = "locator"

	// FieldBackend is the active cache backend name
	FieldBackend = "backend"
)

// Metric fields used for aggregation.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldStatus is the HTTP status or operation status
	FieldStatus = "status"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldCount is a generic count field
	FieldCount = "count"
)
