package cardiograph

import (
	"fmt"
	"strings"
)

// Warning describes a non-fatal condition encountered during a
// conversion, such as a row with no recoverable trace ink. The run
// still produced output, but it may be incomplete.
type Warning struct {
	// Row is the affected row index, or -1 when the warning is not
	// tied to a row.
	Row int

	// Message describes the condition.
	Message string
}

func (w Warning) String() string {
	if w.Row >= 0 {
		return fmt.Sprintf("row %d: %s", w.Row, w.Message)
	}
	return w.Message
}

// FormatWarnings joins warnings into a single semicolon-separated
// string for logging.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}
