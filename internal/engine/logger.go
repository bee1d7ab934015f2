package engine

// Logger is the logging interface injected into the engine package via
// Config. The engine never writes to a process-global logger; callers that
// want output pass their own implementation (the server's leveled logger
// satisfies this interface).
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// NoOpLogger discards all output. It is the default when Config.Logger is
// left nil.
type NoOpLogger struct{}

func (NoOpLogger) Debugf(string, ...any) {}
func (NoOpLogger) Infof(string, ...any)  {}
func (NoOpLogger) Warnf(string, ...any)  {}
func (NoOpLogger) Errorf(string, ...any) {}

// NewNoOpLogger returns a logger that drops everything.
func NewNoOpLogger() Logger {
	return NoOpLogger{}
}
