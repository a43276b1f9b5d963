package logging

// LogEntry represents a structured log record with fields relevant to
// parallel state processing.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// State-processing fields
	StateID   string  // Cache entry / parallel state the record refers to
	Coherence float64 // Coherence of that state at log time, if known
	Latency   int64   // Operation duration in milliseconds

	// General structured data
	Fields map[string]interface{}
}
