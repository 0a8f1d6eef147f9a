package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json", Output: &buf})

	l.Info("md opened", "component", "loopback", "device", "loop0")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "md opened" {
		t.Errorf("msg = %v, want %q", entry["msg"], "md opened")
	}
	if entry["component"] != "loopback" {
		t.Errorf("component = %v, want loopback", entry["component"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: "json", Output: &buf})

	l.Debug("dropped")
	l.Info("dropped too")
	if buf.Len() != 0 {
		t.Fatalf("below-level output leaked: %s", buf.String())
	}

	l.Warn("kept")
	if buf.Len() == 0 {
		t.Fatal("warn output missing")
	}
}

func TestWith_AttachesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json", Output: &buf})

	l.With("transport", "rc_verbs").Info("resource query failed")

	if !strings.Contains(buf.String(), `"transport":"rc_verbs"`) {
		t.Fatalf("bound field missing: %s", buf.String())
	}
}

func TestRedact_RkeyBuffer(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json", Output: &buf})

	l.Info("rkey unpacked", "rkey_buffer", []byte{0xde, 0xad, 0xbe, 0xef})

	out := buf.String()
	if strings.Contains(out, "dead") || strings.Contains(out, "3q2+") {
		t.Fatalf("raw key bytes leaked: %s", out)
	}
	if !strings.Contains(out, "<4 bytes>") {
		t.Fatalf("length annotation missing: %s", out)
	}
}

func TestRedact_StringSecret(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json", Output: &buf})

	l.Info("config read", "shared_secret", "hunter2", "device", "loop0")

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Fatalf("secret leaked: %s", out)
	}
	if !strings.Contains(out, "loop0") {
		t.Fatalf("non-sensitive field lost: %s", out)
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"rkey_buffer", true},
		{"packed_mkey", true},
		{"device", false},
		{"component", false},
	}

	for _, tt := range tests {
		if got := IsSensitiveKey(tt.key); got != tt.want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
