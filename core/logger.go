package core

// Logger is a leveled, structured logger.
// expected args: error, map[string]interface{}, or alternating key/value pairs
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
