package prober

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ollamaprobe/internal/config"
	"ollamaprobe/internal/mockserver"
)

func TestSDK_AgainstMockServer(t *testing.T) {
	ts := httptest.NewServer(mockserver.NewMux(mockserver.DefaultOptions()))
	defer ts.Close()
	cfg := config.Default()
	cfg.BaseURL = ts.URL
	var out bytes.Buffer
	p := New(cfg, WithHTTPClient(ts.Client()), WithOutput(&out))

	steps, err := p.SDK(context.Background())
	require.NoError(t, err)
	require.Len(t, steps, 5)
	for _, s := range steps {
		assert.True(t, s.OK(), "%s/%s failed: %v", s.Client, s.Name, s.Err)
	}
	assert.Equal(t, "0.0.0-mock", steps[1].Detail)
	assert.Equal(t, "1 models: gpt-oss:120b-cloud", steps[2].Detail)
	assert.Contains(t, steps[4].Detail, "mock Ollama server")
	assert.Contains(t, out.String(), "Testing Ollama Go client...")
	assert.Contains(t, out.String(), "Testing OpenAI Go client...")
}

func TestSDK_ContinuesAfterFailures(t *testing.T) {
	opts := mockserver.DefaultOptions()
	opts.StatusOverrides = map[string]int{"/api/tags": http.StatusInternalServerError}
	opts.Token = "secret"
	opts.RequireAuth = true
	ts := httptest.NewServer(mockserver.NewMux(opts))
	defer ts.Close()
	cfg := config.Default()
	cfg.BaseURL = ts.URL
	var out bytes.Buffer
	p := New(cfg, WithHTTPClient(ts.Client()), WithOutput(&out))

	steps, err := p.SDK(context.Background())
	require.NoError(t, err)
	require.Len(t, steps, 5)
	assert.True(t, steps[0].OK())
	assert.False(t, steps[2].OK(), "list should fail on forced 500")
	assert.True(t, steps[3].OK())
	assert.False(t, steps[4].OK(), "chat should fail with the wrong token")
	assert.Equal(t, 2, strings.Count(out.String(), "FAILED"))
}
