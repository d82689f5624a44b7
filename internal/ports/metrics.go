package ports

// Load and save outcomes used as the "result" label
const (
	ResultLoaded    = "loaded"
	ResultCreated   = "created"
	ResultFormat    = "format_error"
	ResultUndefined = "undefined_error"
	ResultSuccess   = "success"
	ResultFailure   = "failure"
)

// MetricsRecorder receives session events for instrumentation
type MetricsRecorder interface {
	RecordRegistration(rosterSize int)
	RecordLoad(result string, rosterSize int)
	RecordSave(err error)
}
