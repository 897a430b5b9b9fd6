package probectl

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"err":     zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"weird":   zerolog.InfoLevel, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "warn")
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected log output: %q", out)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("PROBE_TEST_STR", "x")
	if envStr("PROBE_TEST_STR", "d") != "x" || envStr("PROBE_TEST_UNSET", "d") != "d" {
		t.Fatalf("envStr mismatch")
	}
	t.Setenv("PROBE_TEST_BOOL", "yes")
	if !envBool("PROBE_TEST_BOOL", false) || envBool("PROBE_TEST_UNSET", false) {
		t.Fatalf("envBool mismatch")
	}
}

func TestIsTerminal_NonTTYWriters(t *testing.T) {
	f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if isTerminal(f) {
		t.Fatalf("%s reported as a terminal", os.DevNull)
	}
	if isTerminal(&bytes.Buffer{}) {
		t.Fatalf("buffer reported as a terminal")
	}
}
