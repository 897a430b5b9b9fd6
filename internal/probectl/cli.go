package probectl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ollamaprobe/internal/common/fsutil"
	"ollamaprobe/internal/config"
	"ollamaprobe/internal/prober"
)

// Options holds the persistent flags shared by every probe command.
type Options struct {
	ConfigPath  string
	BaseURL     string
	Model       string
	Prompt      string
	Token       string
	Timeout     string
	LogLvl      string
	MetricsFile string
	Strict      bool

	stdout io.Writer
	stderr io.Writer
}

// usageError marks errors caused by bad invocation; they exit with code 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, a ...any) error { return usageError{fmt.Errorf(format, a...)} }

// resolveConfig layers defaults, config file, env and finally the flags.
func (o *Options) resolveConfig() (config.Config, error) {
	cfg, err := config.Resolve(o.ConfigPath, os.Getenv)
	if err != nil {
		return cfg, err
	}
	cfg = config.Merge(cfg, config.Config{
		BaseURL: o.BaseURL,
		Model:   o.Model,
		Prompt:  o.Prompt,
		Token:   o.Token,
		Timeout: o.Timeout,
	})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// session is one resolved invocation: the prober plus its optional metrics.
type session struct {
	opts    *Options
	prober  *prober.Prober
	metrics *prober.Metrics
}

func (o *Options) newSession() (*session, error) {
	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(o.stderr, o.LogLvl)
	log.Debug().Str("base_url", cfg.BaseURL).Str("model", cfg.Model).Str("timeout", cfg.Timeout).Msg("resolved config")
	s := &session{opts: o}
	popts := []prober.Option{prober.WithOutput(o.stdout), prober.WithLogger(log)}
	if o.MetricsFile != "" {
		s.metrics = prober.NewMetrics()
		popts = append(popts, prober.WithMetrics(s.metrics))
	}
	s.prober = prober.New(cfg, popts...)
	return s, nil
}

// finish writes the metrics file and applies --strict to the collected results.
// runErr, if any, wins over both.
func (s *session) finish(rep prober.Report, runErr error) error {
	if s.metrics != nil {
		path, err := fsutil.ExpandHome(s.opts.MetricsFile)
		if err == nil {
			err = s.metrics.WriteTextfile(path)
		}
		if err != nil {
			if runErr == nil {
				return fmt.Errorf("write metrics: %w", err)
			}
			fmt.Fprintf(s.opts.stderr, "write metrics: %v\n", err)
		}
	}
	if runErr != nil {
		return runErr
	}
	if s.opts.Strict && !rep.OK() {
		failed := rep.Failed()
		return fmt.Errorf("%d of %d checks failed (first: %s, status %d)", len(failed), len(rep.Results), failed[0].Check, failed[0].Status)
	}
	return nil
}

// MainWithIO runs the CLI with explicit args and output streams and returns
// an exit code: 0 success, 1 failure, 2 usage error.
func MainWithIO(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &Options{
		LogLvl:      envStr("OLLAMA_PROBE_LOG_LEVEL", "warn"),
		MetricsFile: os.Getenv("OLLAMA_PROBE_METRICS_FILE"),
		Strict:      envBool("OLLAMA_PROBE_STRICT", false),
		stdout:      stdout,
		stderr:      stderr,
	}
	root := buildRootCmdWith(opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, err.Error())
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(stderr, "Run 'ollamaprobe --help' for usage.")
		return 2
	}
	return 1
}

// MainWithArgs is a testable variant of Main that accepts args explicitly.
func MainWithArgs(args []string) int { return MainWithIO(args, os.Stdout, os.Stderr) }

// Main returns an exit code for use by cmd/ollamaprobe.
func Main() int { return MainWithArgs(os.Args[1:]) }
