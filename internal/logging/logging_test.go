package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"off", LevelOff},
		{"none", LevelOff},
		{"basic", LevelBasic},
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" debug ", LevelDebug},
		{"", LevelBasic},
		{"garbage", LevelBasic},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := ParseLevel(tc.input); got != tc.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetLevel(LevelBasic)
	defer SetLevel(LevelBasic)

	Basicf("lifecycle event")
	Debugf("diagnostic detail")
	Errorf("something broke")

	out := buf.String()
	if !strings.Contains(out, "lifecycle event") {
		t.Error("basic message missing at basic level")
	}
	if strings.Contains(out, "diagnostic detail") {
		t.Error("debug message logged at basic level")
	}
	if !strings.Contains(out, "ERROR: something broke") {
		t.Error("error message missing")
	}

	buf.Reset()
	SetLevel(LevelOff)
	Basicf("lifecycle event")
	Errorf("still broken")
	out = buf.String()
	if strings.Contains(out, "lifecycle event") {
		t.Error("basic message logged when logging is off")
	}
	if !strings.Contains(out, "still broken") {
		t.Error("errors must be logged even when logging is off")
	}

	buf.Reset()
	SetLevel(LevelDebug)
	Debugf("diagnostic detail")
	if !strings.Contains(buf.String(), "diagnostic detail") {
		t.Error("debug message missing at debug level")
	}
}
