package supervisor

import (
	"testing"

	"github.com/turtacn/inventa/pkg/consts"
)

func TestDecodeLine_Levels(t *testing.T) {
	cases := []struct {
		line string
		want EventLevel
	}{
		{consts.ReadyTokenPrefix + "8080", LevelReady},
		{"  " + consts.ReadyTokenPrefix + "8080", LevelReady},
		{"ERROR: address already in use", LevelError},
		{"ERR: something broke", LevelError},
		{`{"time":"t","level":"ERROR","msg":"boom"}`, LevelError},
		{"WARN: disk slow", LevelWarning},
		{"WARNING: disk slow", LevelWarning},
		{`{"level":"WARN","msg":"careful"}`, LevelWarning},
		{"INFO: starting up", LevelInfo},
		{`{"level":"INFO","msg":"hello"}`, LevelInfo},
		{"some free-form line", LevelUnclassified},
		{"", LevelUnclassified},
	}

	for _, c := range cases {
		ev := decodeLine(c.line)
		if ev.Level != c.want {
			t.Errorf("decodeLine(%q): expected %s, got %s", c.line, c.want, ev.Level)
		}
		if ev.Message != c.line {
			t.Errorf("decodeLine(%q): message must be preserved verbatim, got %q", c.line, ev.Message)
		}
		if ev.When.IsZero() {
			t.Errorf("decodeLine(%q): timestamp must be set", c.line)
		}
	}
}

func TestReadyPort(t *testing.T) {
	port, ok := readyPort(consts.ReadyTokenPrefix + "43210")
	if !ok || port != 43210 {
		t.Errorf("Expected port 43210, got %d (ok=%v)", port, ok)
	}

	if _, ok := readyPort(consts.ReadyTokenPrefix + "not-a-port"); ok {
		t.Error("Malformed port must not parse")
	}
	if _, ok := readyPort(consts.ReadyTokenPrefix); ok {
		t.Error("Empty port must not parse")
	}
	if _, ok := readyPort(consts.ReadyTokenPrefix + "0"); ok {
		t.Error("Port 0 must not parse")
	}
	if _, ok := readyPort(consts.ReadyTokenPrefix + "70000"); ok {
		t.Error("Out-of-range port must not parse")
	}
}
