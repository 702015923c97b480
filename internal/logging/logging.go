package logging

import (
	"io"
	"log"
	"os"
)

const ErrPrefix string = "[ERROR]"
const FatalPrefix string = "[FATAL]"
const WarnPrefix string = "[WARN]"

var std *log.Logger = New(os.Stdout)

// New : logger writing timestamped lines to w
func New(w io.Writer) *log.Logger {
	return log.New(w, "", log.Ltime|log.Lmicroseconds)
}

// Default : process-wide logger
func Default() *log.Logger {
	return std
}

// Discard : logger that drops everything, for tests
func Discard() *log.Logger {
	return New(io.Discard)
}

// OrDefault returns l, or the process-wide logger when l is nil.
func OrDefault(l *log.Logger) *log.Logger {
	if l == nil {
		return std
	}
	return l
}
