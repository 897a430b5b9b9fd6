package probectl

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ollamaprobe/internal/config"
	"ollamaprobe/internal/mockserver"
	"ollamaprobe/internal/prober"
)

// buildRootCmdWith constructs the command tree bound to opts.
func buildRootCmdWith(opts *Options) *cobra.Command {
	root := &cobra.Command{
		Use:   "ollamaprobe",
		Short: "Probe a local Ollama server's native and OpenAI-compatible endpoints",
		Long: "ollamaprobe sends one request to each of GET /v1/models, POST /api/generate and\n" +
			"POST /v1/chat/completions (without and with a bearer token) and prints status and body.\n" +
			"Running it without a subcommand is the same as 'ollamaprobe run'.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          noArgs,
		RunE:          func(cmd *cobra.Command, args []string) error { return runAll(cmd, opts) },
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error { return usageError{err} })

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "Config file (.yaml, .yml, .json or .toml)")
	pf.StringVar(&opts.BaseURL, "base-url", "", "Server base URL (default http://localhost:11434, env OLLAMA_PROBE_BASE_URL or OLLAMA_HOST)")
	pf.StringVarP(&opts.Model, "model", "m", "", "Model name (default gpt-oss:120b-cloud, env OLLAMA_PROBE_MODEL)")
	pf.StringVar(&opts.Prompt, "prompt", "", "Prompt text (default \"Hello! Say hi in one sentence.\")")
	pf.StringVar(&opts.Token, "token", "", "Bearer token for the authenticated chat check (default ollama, env OLLAMA_PROBE_TOKEN)")
	pf.StringVar(&opts.Timeout, "timeout", "", "Per-request timeout such as 30s; 0 or empty means none (env OLLAMA_PROBE_TIMEOUT)")
	pf.StringVar(&opts.LogLvl, "log-level", opts.LogLvl, "Log level: debug|info|warn|error|off (env OLLAMA_PROBE_LOG_LEVEL)")
	pf.StringVar(&opts.MetricsFile, "metrics-file", opts.MetricsFile, "Write Prometheus textfile metrics to this path")
	pf.BoolVar(&opts.Strict, "strict", opts.Strict, "Exit 1 if any check returns a non-2xx status")

	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run every check in order (models, generate, chat, chat with token)",
		Example: "  ollamaprobe run\n  ollamaprobe run --base-url http://gpu-box:11434 --model llama3.2 --strict",
		Args:    noArgs,
		RunE:    func(cmd *cobra.Command, args []string) error { return runAll(cmd, opts) },
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "GET /v1/models and pretty-print the listing",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd, opts, fnListModels)
		},
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "POST /api/generate with stream disabled",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd, opts, fnGenerate)
		},
	}

	var onlyAuth, onlyNoAuth bool
	chatCmd := &cobra.Command{
		Use:     "chat",
		Short:   "POST /v1/chat/completions without and with a bearer token",
		Example: "  ollamaprobe chat\n  ollamaprobe chat --auth --token sk-local",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if onlyAuth && onlyNoAuth {
				return usagef("--auth and --no-auth are mutually exclusive")
			}
			s, err := opts.newSession()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var rep prober.Report
			switch {
			case onlyAuth || onlyNoAuth:
				r, err := fnChatCompletion(s.prober, ctx, onlyAuth)
				if err != nil {
					return s.finish(rep, err)
				}
				rep.Results = append(rep.Results, r)
			default:
				rs, err := fnChatCompletions(s.prober, ctx)
				rep.Results = rs
				if err != nil {
					return s.finish(rep, err)
				}
			}
			return s.finish(rep, nil)
		},
	}
	chatCmd.Flags().BoolVar(&onlyAuth, "auth", false, "Only send the request with the Authorization header")
	chatCmd.Flags().BoolVar(&onlyNoAuth, "no-auth", false, "Only send the request without the Authorization header")

	sdkCmd := &cobra.Command{
		Use:   "sdk",
		Short: "Check the server through the official Ollama and OpenAI Go clients",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.newSession()
			if err != nil {
				return err
			}
			steps, err := fnSDK(s.prober, cmd.Context())
			if err != nil {
				return err
			}
			if opts.Strict {
				for _, st := range steps {
					if !st.OK() {
						return fmt.Errorf("sdk %s/%s: %w", st.Client, st.Name, st.Err)
					}
				}
			}
			return nil
		},
	}

	mockOpts := mockserver.DefaultOptions()
	var mockAddr string
	mockCmd := &cobra.Command{
		Use:     "mock",
		Short:   "Serve a fake Ollama API for offline runs",
		Example: "  ollamaprobe mock --addr :11434\n  ollamaprobe mock --require-auth --fail /api/generate=404",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(mockOpts.Models) == 0 {
				return usagef("mock needs at least one --serve-model")
			}
			cfg, err := config.Resolve(opts.ConfigPath, os.Getenv)
			if err != nil {
				return err
			}
			mockOpts.Token = config.Merge(cfg, config.Config{Token: opts.Token}).Token
			l := newLogger(opts.stderr, opts.LogLvl)
			mockOpts.Logger = &l
			return fnServeMock(cmd.Context(), mockAddr, mockOpts)
		},
	}
	mf := mockCmd.Flags()
	mf.StringVar(&mockAddr, "addr", "127.0.0.1:11434", "Listen address")
	mf.StringSliceVar(&mockOpts.Models, "serve-model", mockOpts.Models, "Model names to serve (repeatable)")
	mf.BoolVar(&mockOpts.RequireAuth, "require-auth", false, "Reject chat requests without a matching bearer token")
	mf.StringToIntVar(&mockOpts.StatusOverrides, "fail", nil, "Force a status for a path, e.g. /api/generate=404 (repeatable)")
	mf.BoolVar(&mockOpts.CORSEnabled, "cors", false, "Enable permissive CORS")
	mf.StringSliceVar(&mockOpts.CORSAllowedOrigins, "cors-origins", []string{"*"}, "Allowed CORS origins")
	mockOpts.CORSAllowedMethods = []string{"GET", "HEAD", "POST", "OPTIONS"}
	mockOpts.CORSAllowedHeaders = []string{"Authorization", "Content-Type"}

	root.AddCommand(runCmd, modelsCmd, generateCmd, chatCmd, sdkCmd, mockCmd)
	return root
}

// noArgs rejects positional arguments as a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}

func runAll(cmd *cobra.Command, opts *Options) error {
	s, err := opts.newSession()
	if err != nil {
		return err
	}
	rep, err := fnRun(s.prober, cmd.Context())
	return s.finish(rep, err)
}

// runSingle runs one check that returns a single result.
func runSingle(cmd *cobra.Command, opts *Options, check func(*prober.Prober, context.Context) (prober.Result, error)) error {
	s, err := opts.newSession()
	if err != nil {
		return err
	}
	r, err := check(s.prober, cmd.Context())
	if err != nil {
		return s.finish(prober.Report{}, err)
	}
	return s.finish(prober.Report{Results: []prober.Result{r}}, nil)
}
