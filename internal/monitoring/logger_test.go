package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	Logf("simulated %d steps", 4)

	if len(lines) != 1 || lines[0] != "simulated 4 steps" {
		t.Fatalf("custom logger got %q", lines)
	}

	SetLogger(nil)
	Logf("muted")
	if len(lines) != 1 {
		t.Error("no-op logger should not reach the previous logger")
	}
}

func TestPrefixed(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	logf := Prefixed("sim")

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	logf("body %s", "earth")

	if got != "[sim] body earth" {
		t.Errorf("Prefixed logger wrote %q", got)
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()

	Logf("test message: %s", "value")
}
