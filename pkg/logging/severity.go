package logging

import "strings"

// Severity orders log levels from most to least verbose.
type Severity int32

const (
	DEBUG Severity = iota
	INFO
	WARN
	ERROR
	FATAL
)

var severityNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (s Severity) String() string {
	if s < DEBUG || s > FATAL {
		return "INFO"
	}
	return severityNames[s]
}

// ParseSeverity converts a level name to a Severity, case-insensitively.
// Unknown names parse as INFO.
func ParseSeverity(level string) Severity {
	for i, name := range severityNames {
		if strings.EqualFold(level, name) {
			return Severity(i)
		}
	}
	return INFO
}
