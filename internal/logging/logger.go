// Package logging provides the structured logging abstraction used by the
// services and commands. Callers depend on Logger; the logrus-backed adapter
// is wired once by the container.
package logging

// Logger is the structured logger used across the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a logger that attaches err to every entry.
	WithError(err error) Logger

	// WithField returns a logger that attaches a single key/value pair.
	WithField(key string, value interface{}) Logger

	// WithFields returns a logger that attaches all given fields.
	WithFields(fields ...Field) Logger

	// Fatal logs at fatal level and exits the program.
	Fatal(msg string, fields ...Field)

	// Fatalf logs a formatted message at fatal level and exits the program.
	Fatalf(msg string, args ...interface{})
}

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
