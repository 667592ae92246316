package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{
		level:  WARN,
		output: &buf,
		fields: make(map[string]interface{}),
	}

	logger.Debug("indexing task")
	logger.Info("applied tool call")
	if buf.Len() > 0 {
		t.Error("DEBUG and INFO should be filtered when level is WARN")
	}

	logger.Warn("retrieval degraded")
	if !strings.Contains(buf.String(), "retrieval degraded") {
		t.Error("WARN should not be filtered")
	}
}

func TestLogger_FormatWithArgs(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{
		level:  DEBUG,
		output: &buf,
		fields: make(map[string]interface{}),
	}

	logger.Info("reindex task %d", 42)

	output := buf.String()
	if !strings.Contains(output, "[INFO]") {
		t.Error("output should contain level")
	}
	if !strings.Contains(output, "reindex task 42") {
		t.Errorf("output should contain formatted message: %s", output)
	}
}

func TestWithField_DerivedLoggerIsIndependent(t *testing.T) {
	var buf bytes.Buffer
	base := &Logger{
		level:  DEBUG,
		output: &buf,
		fields: map[string]interface{}{"component": "assistant"},
	}

	derived := base.WithField("task_id", int64(7))

	if derived.fields["component"] != "assistant" {
		t.Error("existing field not preserved")
	}
	if _, ok := base.fields["task_id"]; ok {
		t.Error("base logger was modified")
	}

	derived.Info("applied tool call")
	output := buf.String()
	if !strings.Contains(output, "component=assistant") || !strings.Contains(output, "task_id=7") {
		t.Errorf("output missing fields: %s", output)
	}
}

func TestWithFields(t *testing.T) {
	logger := WithFields(map[string]interface{}{
		"component": "dispatcher",
		"field":     "priority",
	})

	if logger.fields["component"] != "dispatcher" || logger.fields["field"] != "priority" {
		t.Errorf("fields = %v", logger.fields)
	}
	if len(defaultLogger.fields) > 0 {
		t.Error("package-level WithFields must not touch the default logger")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	origOutput := defaultLogger.output
	origLevel := defaultLogger.level
	defer func() {
		defaultLogger.output = origOutput
		defaultLogger.level = origLevel
	}()

	SetOutput(&buf)
	SetLevel(DEBUG)

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")

	output := buf.String()
	for _, tag := range []string{"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]"} {
		if !strings.Contains(output, tag) {
			t.Errorf("output missing %s", tag)
		}
	}
}

func TestLogger_ConcurrentAccess(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{
		level:  DEBUG,
		output: &buf,
		fields: make(map[string]interface{}),
	}

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(n int) {
			logger.Info("turn %d", n)
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 10 {
		t.Errorf("expected 10 log lines, got %d", len(lines))
	}
}

func TestDefaultLoggerInitialization(t *testing.T) {
	if defaultLogger == nil {
		t.Fatal("defaultLogger should be initialized")
	}
	if defaultLogger.level != INFO {
		t.Error("default level should be INFO")
	}
	if defaultLogger.output != os.Stdout {
		t.Error("default output should be os.Stdout")
	}
}
