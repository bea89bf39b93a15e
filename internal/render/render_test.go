package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlainTextStripsANSI(t *testing.T) {
	got := PlainText("\x1b[31mred\x1b[0m")
	if got != "red" {
		t.Fatalf("PlainText() = %q, want %q", got, "red")
	}
}

func TestDowngraderWritesLine(t *testing.T) {
	var buf bytes.Buffer
	d := NewDowngrader(&buf)

	if err := d.WriteLine("hello"); err != nil {
		t.Fatalf("WriteLine() error = %v", err)
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("output = %q, want to contain %q", buf.String(), "hello")
	}
}
