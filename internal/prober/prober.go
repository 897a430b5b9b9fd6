package prober

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ollamaprobe/internal/config"
	"ollamaprobe/pkg/types"
)

// Check names, also used as metric labels.
const (
	CheckModels   = "models"
	CheckGenerate = "generate"
	CheckChat     = "chat"
	CheckChatAuth = "chat_auth"
)

const (
	pathModels   = "/v1/models"
	pathGenerate = "/api/generate"
	pathChat     = "/v1/chat/completions"
)

var (
	banner    = strings.Repeat("=", 60)
	separator = strings.Repeat("-", 60)
)

// Prober issues the fixed set of checks against one server and prints a
// human-readable summary of each response.
type Prober struct {
	cfg     config.Config
	client  *http.Client
	out     io.Writer
	log     zerolog.Logger
	metrics *Metrics
}

// Option customizes a Prober.
type Option func(*Prober)

// WithHTTPClient replaces the HTTP client. Tests point it at httptest servers.
func WithHTTPClient(c *http.Client) Option { return func(p *Prober) { p.client = c } }

// WithOutput sets where the report is printed.
func WithOutput(w io.Writer) Option { return func(p *Prober) { p.out = w } }

// WithLogger installs a structured logger for diagnostics.
func WithLogger(l zerolog.Logger) Option { return func(p *Prober) { p.log = l } }

// WithMetrics records every result into m.
func WithMetrics(m *Metrics) Option { return func(p *Prober) { p.metrics = m } }

// New builds a Prober for cfg. cfg is expected to be validated.
// Without WithHTTPClient the client carries cfg's timeout, or none.
func New(cfg config.Config, opts ...Option) *Prober {
	p := &Prober{
		cfg: cfg,
		out: io.Discard,
		log: zerolog.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	if p.client == nil {
		timeout, _ := cfg.ClientTimeout()
		p.client = &http.Client{Timeout: timeout}
	}
	return p
}

// Config returns the configuration the prober was built with.
func (p *Prober) Config() config.Config { return p.cfg }

// Run executes every check in order and prints the full report.
// A transport failure stops the run; the partial report is returned with the error.
func (p *Prober) Run(ctx context.Context) (Report, error) {
	var rep Report
	p.printf("Testing Ollama at %s with model %s\n\n", p.cfg.BaseURL, p.cfg.Model)
	p.println(banner)

	r, err := p.ListModels(ctx)
	if err != nil {
		return rep, err
	}
	rep.Results = append(rep.Results, r)

	r, err = p.Generate(ctx)
	if err != nil {
		return rep, err
	}
	rep.Results = append(rep.Results, r)

	rs, err := p.ChatCompletions(ctx)
	rep.Results = append(rep.Results, rs...)
	if err != nil {
		return rep, err
	}

	p.println("\nDone!")
	return rep, nil
}

// ListModels checks GET /v1/models and pretty-prints the listing.
func (p *Prober) ListModels(ctx context.Context) (Result, error) {
	p.println("Testing /v1/models endpoint...")
	r, err := p.do(ctx, CheckModels, http.MethodGet, pathModels, nil, false)
	if err != nil {
		return r, err
	}
	p.printResult("Available models", r, true)
	p.println(separator)
	return r, nil
}

// Generate checks the native POST /api/generate endpoint.
func (p *Prober) Generate(ctx context.Context) (Result, error) {
	p.println("Testing native Ollama API (/api/generate)...")
	body := types.GenerateRequest{Model: p.cfg.Model, Prompt: p.cfg.Prompt, Stream: false}
	r, err := p.do(ctx, CheckGenerate, http.MethodPost, pathGenerate, body, false)
	if err != nil {
		return r, err
	}
	p.printResult("Response", r, false)
	p.println(separator)
	return r, nil
}

// ChatCompletions checks POST /v1/chat/completions twice: without and then
// with a bearer token.
func (p *Prober) ChatCompletions(ctx context.Context) ([]Result, error) {
	p.println(chatHeader)
	var out []Result
	for _, auth := range []bool{false, true} {
		p.println(chatLabel(auth))
		r, err := p.ChatCompletion(ctx, auth)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	p.println(separator)
	return out, nil
}

// ChatCompletionSection runs one chat variant framed like the full chat section,
// with the header, the variant label and the closing separator.
func (p *Prober) ChatCompletionSection(ctx context.Context, auth bool) (Result, error) {
	p.println(chatHeader)
	p.println(chatLabel(auth))
	r, err := p.ChatCompletion(ctx, auth)
	if err != nil {
		return r, err
	}
	p.println(separator)
	return r, nil
}

const chatHeader = "Testing OpenAI-compatible API (/v1/chat/completions)..."

func chatLabel(auth bool) string {
	if auth {
		return "\n2. With Authorization: Bearer token:"
	}
	return "\n1. Without Authorization header:"
}

// ChatCompletion sends a single-turn chat request and prints its status and body.
func (p *Prober) ChatCompletion(ctx context.Context, auth bool) (Result, error) {
	body := types.ChatCompletionRequest{
		Model:    p.cfg.Model,
		Messages: []types.ChatMessage{{Role: "user", Content: p.cfg.Prompt}},
		Stream:   false,
	}
	check := CheckChat
	if auth {
		check = CheckChatAuth
	}
	r, err := p.do(ctx, check, http.MethodPost, pathChat, body, auth)
	if err != nil {
		return r, err
	}
	p.printResult("Response", r, false)
	return r, nil
}

func (p *Prober) do(ctx context.Context, check, method, path string, payload any, auth bool) (Result, error) {
	r := Result{Check: check, Method: method, URL: p.cfg.BaseURL + path, Auth: auth}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return r, fmt.Errorf("%s: encode request: %w", check, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return r, fmt.Errorf("%s: %w", check, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	}

	p.log.Debug().Str("check", check).Str("method", method).Str("url", r.URL).Bool("auth", auth).Msg("probe request")
	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		r.Duration = time.Since(start)
		p.log.Error().Err(err).Str("check", check).Msg("probe transport error")
		p.observe(r)
		return r, fmt.Errorf("%s: %w", check, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	r.Duration = time.Since(start)
	if err != nil {
		// Status stays 0: an unreadable body counts as a failed exchange.
		p.observe(r)
		return r, fmt.Errorf("%s: read body: %w", check, err)
	}

	r.Status = resp.StatusCode
	r.OK = resp.StatusCode >= 200 && resp.StatusCode < 300
	r.Body = raw
	if r.OK {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			p.log.Warn().Err(err).Str("check", check).Msg("success response is not JSON")
		} else {
			r.Parsed = v
		}
	}
	p.log.Info().Str("check", check).Int("status", r.Status).Dur("dur", r.Duration).Msg("probe done")
	p.observe(r)
	return r, nil
}

func (p *Prober) observe(r Result) {
	if p.metrics != nil {
		p.metrics.Observe(r)
	}
}

// printResult writes "Status: N" then either the formatted JSON body or the raw error text.
func (p *Prober) printResult(label string, r Result, indent bool) {
	p.printf("Status: %d\n", r.Status)
	if !r.OK {
		p.printf("Error: %s\n", r.Body)
		return
	}
	p.printf("%s: %s\n", label, r.formatBody(indent))
}

func (p *Prober) printf(format string, a ...any) { fmt.Fprintf(p.out, format, a...) }
func (p *Prober) println(a ...any)               { fmt.Fprintln(p.out, a...) }
