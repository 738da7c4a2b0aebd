package logger

import (
	"log/slog"
	"testing"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewSyncAndAsync(t *testing.T) {
	log, closer := New(config.Logging{Level: "info", Service: "vehix-test"})
	if log == nil {
		t.Fatal("expected logger")
	}
	closer.Close()

	log, closer = New(config.Logging{Level: "info", Service: "vehix-test", Async: true})
	log.Info("buffered record")
	closer.Close() // must flush without panicking
}
