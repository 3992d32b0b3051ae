package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		wantErr   bool
	}{
		{"debug", true, false},
		{"INFO", false, false},
		{" warn ", false, false},
		{"loud", false, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		l, err := New(tt.level, &buf)
		if (err != nil) != tt.wantErr {
			t.Fatalf("New(%q) err = %v", tt.level, err)
		}
		if err != nil {
			continue
		}
		l.Debug("tick")
		if got := strings.Contains(buf.String(), "tick"); got != tt.debugSeen {
			t.Errorf("%q: debug visible = %v, want %v", tt.level, got, tt.debugSeen)
		}
	}
}

func TestComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	root, err := New("info", &buf)
	if err != nil {
		t.Fatal(err)
	}
	Component(root, "stream").Info("listening")
	if !strings.Contains(buf.String(), "stream") {
		t.Errorf("prefix missing: %q", buf.String())
	}
	Component(nil, "x").Info("dropped")
}
