package out

import "strings"

type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

var logLevelOrder = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
}

// ParseLogLevel не зависит от регистра, неизвестное значение даёт INFO
func ParseLogLevel(value string) LogLevel {
	level := LogLevel(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := logLevelOrder[level]; !ok {
		return LogLevelInfo
	}
	return level
}

// Enabled: пишется ли событие уровня l при пороге min
func (l LogLevel) Enabled(min LogLevel) bool {
	return logLevelOrder[l] >= logLevelOrder[min]
}

type LogFields map[string]interface{}

// LoggerPort пишет события с именами вида "rooms.pipeline.state".
// Поля из WithFields добавляются ко всем событиям дочернего логгера.
type LoggerPort interface {
	Debug(event string, fields LogFields)
	Info(event string, fields LogFields)
	Warn(event string, fields LogFields)
	Error(event string, fields LogFields)
	WithFields(fields LogFields) LoggerPort
	WithModule(module string) LoggerPort
}
