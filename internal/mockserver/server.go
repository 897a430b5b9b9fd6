// Package mockserver serves a small fake of the Ollama HTTP API: the native
// /api endpoints and the OpenAI-compatible /v1 shim. It backs offline runs of
// the probe and its tests.
package mockserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ollamaprobe/pkg/types"
)

// mockReply is the canned assistant text.
const mockReply = "Hi there! This is a mock Ollama server."

// NewMux builds the router for opts.
func NewMux(opts Options) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if opts.Logger != nil {
		r.Use(requestLogger(*opts.Logger))
	}
	if opts.CORSEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSAllowedOrigins,
			AllowedMethods: opts.CORSAllowedMethods,
			AllowedHeaders: opts.CORSAllowedHeaders,
		}))
	}
	if len(opts.StatusOverrides) > 0 {
		r.Use(forceStatus(opts.StatusOverrides))
	}

	h := &handlers{opts: opts, now: time.Now}

	r.Get("/", h.root)
	r.Head("/", h.root)
	r.Get("/api/version", h.version)
	r.Get("/api/tags", h.tags)
	r.Post("/api/generate", h.generate)
	r.Get("/v1/models", h.models)
	r.Post("/v1/chat/completions", h.chat)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// forceStatus answers configured paths with a fixed status and a plain-text body.
func forceStatus(overrides map[string]int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if code, ok := overrides[r.URL.Path]; ok {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(code)
				_, _ = fmt.Fprintf(w, "mock: forced status %d for %s", code, r.URL.Path)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type handlers struct {
	opts Options
	now  func() time.Time
}

func (h *handlers) root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write([]byte("Ollama is running"))
	}
}

func (h *handlers) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.VersionResponse{Version: h.opts.Version})
}

func (h *handlers) tags(w http.ResponseWriter, r *http.Request) {
	resp := types.TagsResponse{Models: make([]types.TagModel, 0, len(h.opts.Models))}
	ts := h.now().UTC().Format(time.RFC3339)
	for _, m := range h.opts.Models {
		resp.Models = append(resp.Models, types.TagModel{Name: m, Model: m, ModifiedAt: ts, Digest: "mock"})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) models(w http.ResponseWriter, r *http.Request) {
	resp := types.ModelList{Object: "list", Data: make([]types.ModelEntry, 0, len(h.opts.Models))}
	created := h.now().Unix()
	for _, m := range h.opts.Models {
		resp.Data = append(resp.Data, types.ModelEntry{ID: m, Object: "model", Created: created, OwnedBy: "library"})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) generate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if status, msg := h.decode(w, r, &req); status != 0 {
		writeNativeError(w, status, msg)
		return
	}
	if !h.opts.hasModel(req.Model) {
		writeNativeError(w, http.StatusNotFound, fmt.Sprintf("model %q not found, try pulling it first", req.Model))
		return
	}
	resp := types.GenerateResponse{
		Model:      req.Model,
		CreatedAt:  h.now().UTC().Format(time.RFC3339Nano),
		Response:   mockReply,
		Done:       true,
		DoneReason: "stop",
	}
	if req.Stream {
		// Single final NDJSON chunk.
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	if h.opts.RequireAuth && r.Header.Get("Authorization") != "Bearer "+h.opts.Token {
		authRejectedTotal.Inc()
		writeOpenAIError(w, http.StatusUnauthorized, "invalid_request_error", "missing or invalid bearer token")
		return
	}
	var req types.ChatCompletionRequest
	if status, msg := h.decode(w, r, &req); status != 0 {
		writeOpenAIError(w, status, "invalid_request_error", msg)
		return
	}
	if len(req.Messages) == 0 {
		writeOpenAIError(w, http.StatusBadRequest, "invalid_request_error", "messages must not be empty")
		return
	}
	if !h.opts.hasModel(req.Model) {
		writeOpenAIError(w, http.StatusNotFound, "not_found_error", fmt.Sprintf("model %q not found", req.Model))
		return
	}
	if req.Stream {
		writeOpenAIError(w, http.StatusBadRequest, "invalid_request_error", "streaming is not supported by the mock server")
		return
	}
	now := h.now()
	writeJSON(w, http.StatusOK, types.ChatCompletionResponse{
		ID:      fmt.Sprintf("chatcmpl-%d", now.UnixNano()%1000),
		Object:  "chat.completion",
		Created: now.Unix(),
		Model:   req.Model,
		Choices: []types.ChatCompletionChoice{{
			Index:        0,
			Message:      types.ChatMessage{Role: "assistant", Content: mockReply},
			FinishReason: "stop",
		}},
		Usage: types.Usage{PromptTokens: 10, CompletionTokens: 9, TotalTokens: 19},
	})
}

// decode validates the content type and decodes a bounded JSON body into v.
// A non-zero status means the request was rejected.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, v any) (int, string) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return http.StatusUnsupportedMediaType, "Content-Type must be application/json"
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.maxBody())
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return http.StatusBadRequest, "invalid JSON body"
	}
	return 0, ""
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, opts Options) error {
	srv := &http.Server{Addr: addr, Handler: NewMux(opts), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if opts.Logger != nil {
			opts.Logger.Info().Str("addr", addr).Strs("models", opts.Models).Bool("require_auth", opts.RequireAuth).Msg("mock server listening")
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("mock server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
