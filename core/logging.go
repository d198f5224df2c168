package core

// Logger is any leveled logging service.
//
// Implementations may give special treatment to certain argument types,
// eg. attaching the acting user to an error report.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
