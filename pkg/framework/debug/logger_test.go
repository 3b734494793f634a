package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	t.Run("BasicLogging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "womp", FlagLevel|FlagPrefix)

		logger.Info("registered voice %d", 3)

		output := buf.String()
		if !strings.Contains(output, "[INFO]") {
			t.Error("Missing log level")
		}
		if !strings.Contains(output, "[womp]") {
			t.Error("Missing prefix")
		}
		if !strings.Contains(output, "registered voice 3") {
			t.Error("Missing message")
		}
		if !strings.HasSuffix(output, "\n") {
			t.Error("Missing trailing newline")
		}
	})

	t.Run("LogLevels", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagLevel)
		logger.SetLevel(LogLevelWarn)

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")

		output := buf.String()
		if strings.Contains(output, "debug message") {
			t.Error("Debug message should not be logged")
		}
		if strings.Contains(output, "info message") {
			t.Error("Info message should not be logged")
		}
		if !strings.Contains(output, "warn message") {
			t.Error("Warn message should be logged")
		}
		if !strings.Contains(output, "error message") {
			t.Error("Error message should be logged")
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", DefaultFlags)
		logger.SetEnabled(false)

		logger.Info("should not appear")

		if buf.Len() > 0 {
			t.Error("Disabled logger should not write")
		}
	})

	t.Run("FileInfo", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagShortFile|FlagLevel)

		logger.Info("test")

		output := buf.String()
		if !strings.Contains(output, "logger_test.go:") {
			t.Errorf("Missing file info in output: %s", output)
		}
	})

	t.Run("Named", func(t *testing.T) {
		var buf bytes.Buffer
		parent := New(&buf, "engine", FlagLevel|FlagPrefix)
		parent.SetLevel(LogLevelDebug)
		child := parent.Named("kick")

		child.Debug("armed")

		output := buf.String()
		if !strings.Contains(output, "[kick]") || strings.Contains(output, "[engine]") {
			t.Errorf("Named prefix not applied: %s", output)
		}
		if child.Level() != LogLevelDebug {
			t.Errorf("child level = %v, want DEBUG", child.Level())
		}
	})

	t.Run("FatalPanics", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagLevel)
		defer func() {
			if recover() == nil {
				t.Error("Fatal should panic")
			}
			if !strings.Contains(buf.String(), "[FATAL] boom") {
				t.Errorf("Fatal message not written: %s", buf.String())
			}
		}()
		logger.Fatal("boom")
	})
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "atom.log")
	logger, closer, err := NewFileLogger(path, "host", FlagLevel|FlagPrefix)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	logger.Info("started")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "[host] started") {
		t.Errorf("log file content = %q", data)
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevelFatal, "FATAL"},
		{LogLevelOff, "OFF"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"", LogLevelInfo, false},
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{" warning ", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"fatal", LogLevelFatal, false},
		{"off", LogLevelOff, false},
		{"verbose", LogLevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func BenchmarkLogger(b *testing.B) {
	logger := New(bytes.NewBuffer(nil), "BENCH", DefaultFlags)

	b.Run("Enabled", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			logger.Info("Benchmark message %d", i)
		}
	})

	b.Run("Filtered", func(b *testing.B) {
		logger.SetLevel(LogLevelError)
		for i := 0; i < b.N; i++ {
			logger.Debug("Benchmark message %d", i)
		}
	})
}
