package prober

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ollamaprobe/internal/config"
)

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.Observe(Result{Check: CheckModels, Status: 200, OK: true, Duration: 250 * time.Millisecond})
	m.Observe(Result{Check: CheckGenerate, Status: 404})

	p := filepath.Join(t.TempDir(), "probe.prom")
	if err := m.WriteTextfile(p); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	for _, want := range []string{
		`ollamaprobe_check_status_code{check="models"} 200`,
		`ollamaprobe_check_status_code{check="generate"} 404`,
		`ollamaprobe_check_success{check="models"} 1`,
		`ollamaprobe_check_success{check="generate"} 0`,
		`ollamaprobe_check_duration_seconds{check="models"} 0.25`,
		`ollamaprobe_checks_total 2`,
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %q in:\n%s", want, s)
		}
	}
}

func TestRun_RefusedConnectionRecordsFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	ts.Close()

	cfg := config.Default()
	cfg.BaseURL = base
	m := NewMetrics()
	p := New(cfg, WithMetrics(m))
	if _, err := p.Run(context.Background()); err == nil {
		t.Fatalf("expected transport error")
	}

	path := filepath.Join(t.TempDir(), "down.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`ollamaprobe_check_success{check="models"} 0`,
		`ollamaprobe_check_status_code{check="models"} 0`,
		`ollamaprobe_checks_total 1`,
	} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("missing %q in:\n%s", want, b)
		}
	}
}
