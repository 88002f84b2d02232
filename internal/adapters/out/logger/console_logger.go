package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[37m"
)

var levelColors = map[out.LogLevel]string{
	out.LogLevelDebug: colorGray,
	out.LogLevelInfo:  colorGreen,
	out.LogLevelWarn:  colorYellow,
	out.LogLevelError: colorRed,
}

// ConsoleLogger: цветной вывод для локальной разработки
type ConsoleLogger struct {
	defaultFields out.LogFields
	module        string
	location      *time.Location
	writer        io.Writer
	minLevel      out.LogLevel
	mu            *sync.Mutex
}

func NewConsoleLogger(timezone string) (*ConsoleLogger, error) {
	return NewConsoleLoggerWithWriter(timezone, os.Stdout)
}

func NewConsoleLoggerWithWriter(timezone string, writer io.Writer) (*ConsoleLogger, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	return &ConsoleLogger{
		defaultFields: make(out.LogFields),
		module:        "unknown",
		location:      loc,
		writer:        writer,
		minLevel:      out.LogLevelDebug,
		mu:            &sync.Mutex{},
	}, nil
}

func (l *ConsoleLogger) WithFields(fields out.LogFields) out.LoggerPort {
	return &ConsoleLogger{
		defaultFields: mergeFields(l.defaultFields, fields),
		module:        l.module,
		location:      l.location,
		writer:        l.writer,
		minLevel:      l.minLevel,
		mu:            l.mu,
	}
}

func (l *ConsoleLogger) WithModule(module string) out.LoggerPort {
	return &ConsoleLogger{
		defaultFields: l.defaultFields,
		module:        module,
		location:      l.location,
		writer:        l.writer,
		minLevel:      l.minLevel,
		mu:            l.mu,
	}
}

// SetLevel задаёт порог. Вызывать до создания дочерних логгеров
func (l *ConsoleLogger) SetLevel(level out.LogLevel) {
	l.minLevel = level
}

func (l *ConsoleLogger) Debug(event string, fields out.LogFields) {
	l.log(out.LogLevelDebug, event, fields)
}

func (l *ConsoleLogger) Info(event string, fields out.LogFields) {
	l.log(out.LogLevelInfo, event, fields)
}

func (l *ConsoleLogger) Warn(event string, fields out.LogFields) {
	l.log(out.LogLevelWarn, event, fields)
}

func (l *ConsoleLogger) Error(event string, fields out.LogFields) {
	l.log(out.LogLevelError, event, fields)
}

func (l *ConsoleLogger) log(level out.LogLevel, event string, fields out.LogFields) {
	if !level.Enabled(l.minLevel) {
		return
	}

	merged := mergeFields(l.defaultFields, fields)
	merged["event"] = event

	timestamp := time.Now().In(l.location).Format("2006-01-02 15:04:05.000")
	fieldsBytes, _ := json.MarshalIndent(merged, "", "  ")

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.writer, "%s[%s]%s %s[%s]%s %s[%s]%s\n%s\n",
		colorGray, timestamp, colorReset,
		levelColors[level], level, colorReset,
		colorCyan, l.module, colorReset,
		string(fieldsBytes),
	)
}

func mergeFields(base, extra out.LogFields) out.LogFields {
	merged := make(out.LogFields, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
