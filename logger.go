package cgmres

import (
	"fmt"
	"io"
	"strings"
)

// Logger accumulates per-sample and per-iteration text during a Solver's
// lifetime and writes it to Output on demand. Modeled directly on the
// teacher's accumulating logger: Logf buffers, nothing is written to
// Output until Flush is called, so update()'s hot path never performs I/O
// even when VerboseLevel > 0.
type Logger struct {
	Output io.Writer
	buff   strings.Builder
}

// NewLogger wraps w in a Logger that buffers until Flush.
func NewLogger(w io.Writer) *Logger {
	return &Logger{Output: w}
}

// Logf appends a formatted line to the logger's buffer.
func (log *Logger) Logf(format string, a ...interface{}) {
	if log == nil {
		return
	}
	fmt.Fprintf(&log.buff, format, a...)
}

// Flush writes the buffered text to Output and resets the buffer.
func (log *Logger) Flush() {
	if log == nil || log.Output == nil {
		return
	}
	io.WriteString(log.Output, log.buff.String())
	log.buff.Reset()
}
