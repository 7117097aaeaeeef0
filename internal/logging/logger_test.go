package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newBufferLogger(t *testing.T, level LogLevel) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := NewLogger(Config{Level: level, Output: &buf, Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}
	return logger, &buf
}

func TestNewLogger_LevelMapping(t *testing.T) {
	tests := []struct {
		level         LogLevel
		debugEnabled  bool
		normalEnabled bool
	}{
		{LogLevelQuiet, false, false},
		{LogLevelNormal, false, true},
		{LogLevelVerbose, true, true},
		{LogLevelDebug, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			logger, _ := newBufferLogger(t, tt.level)
			if got := logger.IsLevelEnabled(LogLevelVerbose); got != tt.debugEnabled {
				t.Errorf("verbose enabled = %v, want %v", got, tt.debugEnabled)
			}
			if got := logger.IsLevelEnabled(LogLevelNormal); got != tt.normalEnabled {
				t.Errorf("normal enabled = %v, want %v", got, tt.normalEnabled)
			}
			if got := logger.GetLevel(); got != tt.level {
				t.Errorf("GetLevel() = %s, want %s", got, tt.level)
			}
		})
	}
}

func TestLogger_QuietSuppressesInfo(t *testing.T) {
	logger, buf := newBufferLogger(t, LogLevelQuiet)

	logger.Info("routine message")
	if buf.Len() != 0 {
		t.Errorf("quiet logger emitted info output: %s", buf.String())
	}

	logger.Error("real problem")
	if !strings.Contains(buf.String(), "real problem") {
		t.Errorf("quiet logger must still emit errors: %s", buf.String())
	}
}

func TestLogQueryTier_RiskyLogsAtWarn(t *testing.T) {
	logger, buf := newBufferLogger(t, LogLevelNormal)

	// Non-risky tiers log at debug, invisible at normal level.
	logger.LogQueryTier("Account", "backup-columns", "SELECT Id FROM Account", false)
	if buf.Len() != 0 {
		t.Errorf("non-risky tier leaked at normal level: %s", buf.String())
	}

	logger.LogQueryTier("Account", "full-object-scan", "SELECT Id FROM Account", true)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["level"] != "warning" {
		t.Errorf("level = %v, want warning", entry["level"])
	}
	if entry["tier"] != "full-object-scan" {
		t.Errorf("tier = %v", entry["tier"])
	}
	if entry["object"] != "Account" {
		t.Errorf("object = %v", entry["object"])
	}
}

func TestLogObjectSkipped(t *testing.T) {
	logger, buf := newBufferLogger(t, LogLevelNormal)

	logger.LogObjectSkipped("Case", "operation DeleteSource has no defined inverse")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["object"] != "Case" {
		t.Errorf("object = %v", entry["object"])
	}
	if entry["reason"] == "" {
		t.Error("skip entries must carry a reason")
	}
}

func TestLogPlanAssembly(t *testing.T) {
	logger, buf := newBufferLogger(t, LogLevelNormal)

	logger.LogPlanAssembly("/backups/run-1", 3, 1, 125*time.Millisecond, nil)
	if !strings.Contains(buf.String(), "plan_assembly") {
		t.Errorf("missing operation field: %s", buf.String())
	}

	buf.Reset()
	logger.LogPlanAssembly("/backups/run-1", 0, 0, time.Millisecond, errors.New("boom"))
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["level"] != "error" {
		t.Errorf("failed assembly should log at error level, got %v", entry["level"])
	}
	if entry["error"] != "boom" {
		t.Errorf("error field = %v", entry["error"])
	}
}

func TestLogOperationStart(t *testing.T) {
	logger, buf := newBufferLogger(t, LogLevelNormal)

	done := logger.LogOperationStart("plan_rollback", map[string]interface{}{"backup_dir": "/backups/run-1"})
	if buf.Len() != 0 {
		t.Errorf("start entries log at debug, invisible at normal level: %s", buf.String())
	}

	done(nil)
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["operation"] != "plan_rollback" || entry["success"] != true {
		t.Errorf("completion entry = %v", entry)
	}
	if entry["backup_dir"] != "/backups/run-1" {
		t.Errorf("caller fields must carry through, got %v", entry["backup_dir"])
	}

	buf.Reset()
	failed := logger.LogOperationStart("plan_rollback", nil)
	failed(errors.New("boom"))
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["level"] != "error" || entry["error"] != "boom" {
		t.Errorf("failed operation entry = %v", entry)
	}
}

func TestSetLevel(t *testing.T) {
	logger, buf := newBufferLogger(t, LogLevelNormal)

	logger.SetLevel(LogLevelQuiet)
	logger.Info("should vanish")
	if buf.Len() != 0 {
		t.Errorf("output after lowering level: %s", buf.String())
	}

	logger.SetLevel(LogLevelVerbose)
	logger.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("debug output missing after raising level: %s", buf.String())
	}
}

func TestTruncateQuery(t *testing.T) {
	short := "SELECT Id FROM Account"
	if got := truncateQuery(short); got != short {
		t.Errorf("short queries pass through, got %q", got)
	}

	long := strings.Repeat("x", 300)
	got := truncateQuery(long)
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncateQuery() len = %d", len(got))
	}
}
