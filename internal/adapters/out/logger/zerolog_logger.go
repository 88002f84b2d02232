package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

// ZerologLogger пишет JSON-строки, используется вне локального окружения
type ZerologLogger struct {
	logger        zerolog.Logger
	defaultFields out.LogFields
	module        string
}

func NewZerologLogger(version string) *ZerologLogger {
	return NewZerologLoggerWithWriter(version, os.Stdout)
}

func NewZerologLoggerWithWriter(version string, writer io.Writer) *ZerologLogger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.New(writer).With().
		Timestamp().
		Str("version", version).
		Logger()

	return &ZerologLogger{
		logger:        logger,
		defaultFields: make(out.LogFields),
		module:        "unknown",
	}
}

func (l *ZerologLogger) WithFields(fields out.LogFields) out.LoggerPort {
	return &ZerologLogger{
		logger:        l.logger,
		defaultFields: mergeFields(l.defaultFields, fields),
		module:        l.module,
	}
}

func (l *ZerologLogger) WithModule(module string) out.LoggerPort {
	return &ZerologLogger{
		logger:        l.logger,
		defaultFields: l.defaultFields,
		module:        module,
	}
}

var zerologLevels = map[out.LogLevel]zerolog.Level{
	out.LogLevelDebug: zerolog.DebugLevel,
	out.LogLevelInfo:  zerolog.InfoLevel,
	out.LogLevelWarn:  zerolog.WarnLevel,
	out.LogLevelError: zerolog.ErrorLevel,
}

// SetLevel задаёт порог. Вызывать до создания дочерних логгеров
func (l *ZerologLogger) SetLevel(level out.LogLevel) {
	l.logger = l.logger.Level(zerologLevels[level])
}

func (l *ZerologLogger) Debug(event string, fields out.LogFields) {
	l.write(l.logger.Debug(), event, fields)
}

func (l *ZerologLogger) Info(event string, fields out.LogFields) {
	l.write(l.logger.Info(), event, fields)
}

func (l *ZerologLogger) Warn(event string, fields out.LogFields) {
	l.write(l.logger.Warn(), event, fields)
}

func (l *ZerologLogger) Error(event string, fields out.LogFields) {
	l.write(l.logger.Error(), event, fields)
}

func (l *ZerologLogger) write(e *zerolog.Event, event string, fields out.LogFields) {
	e.Str("module", l.module).
		Fields(map[string]interface{}(mergeFields(l.defaultFields, fields))).
		Msg(event)
}
