package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"sfcc/internal/diag"
	"sfcc/internal/source"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.WarnLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "info"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("hello", zap.String("k", "v"))
	log.Debug("hidden")
	_ = log.Sync()
	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, `"k": "v"`) {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry leaked: %q", out)
	}

	if _, err := New(Config{Format: "xml"}, &buf); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestReporter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := Reporter{Logger: zap.New(core)}

	d := diag.NewError(diag.TplNoRoot, source.Span{}, "template has no root element")
	d.File = "a.vue"
	d.Pos = source.LineCol{Line: 3, Col: 5}
	r.Report(d.WithNote("add an element"))
	r.Report(diag.New(diag.SevWarning, diag.TplForWithoutKey, source.Span{}, "missing key"))
	Reporter{}.Report(d)

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	first := entries[0]
	if first.Level != zapcore.ErrorLevel || first.Message != "template has no root element" {
		t.Errorf("first = %v %q", first.Level, first.Message)
	}
	fields := first.ContextMap()
	if fields["code"] != "TPL2002" || fields["file"] != "a.vue" || fields["line"] != uint32(3) || fields["note"] != "add an element" {
		t.Errorf("fields = %v", fields)
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Errorf("second level = %v, want warn", entries[1].Level)
	}
}
