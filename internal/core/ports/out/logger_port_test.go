package out

import "testing"

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		" WARN ":  LogLevelWarn,
		"Error":   LogLevelError,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}

	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Errorf("ParseLogLevel(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestLogLevelEnabled(t *testing.T) {
	if LogLevelDebug.Enabled(LogLevelInfo) {
		t.Error("debug must be filtered at info")
	}
	if !LogLevelError.Enabled(LogLevelWarn) {
		t.Error("error must pass at warn")
	}
	if !LogLevelInfo.Enabled(LogLevelInfo) {
		t.Error("level must pass at itself")
	}
}
