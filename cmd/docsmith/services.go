package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/docsmith/internal/analysis"
	"github.com/jackzampolin/docsmith/internal/config"
	"github.com/jackzampolin/docsmith/internal/home"
	"github.com/jackzampolin/docsmith/internal/llmcall"
	"github.com/jackzampolin/docsmith/internal/output"
	"github.com/jackzampolin/docsmith/internal/prompts"
	"github.com/jackzampolin/docsmith/internal/providers"
	"github.com/jackzampolin/docsmith/internal/render"
	"github.com/jackzampolin/docsmith/internal/svcctx"
)

// callSink is the trace file, opened on first write.
var callSink *appendFile

// setupServices builds the shared services and attaches them to the
// command context.
func setupServices(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	h, err := home.New(homeDir)
	if err != nil {
		return err
	}

	mgr, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return err
	}
	cfg := mgr.Get()

	registry := providers.NewRegistryFromConfig(cfg.ToProviderRegistryConfig())
	registry.SetLogger(logger)
	mgr.OnChange(func(c *config.Config) {
		registry.Reload(c.ToProviderRegistryConfig())
		logger.Info("config reloaded", "file", mgr.File())
	})

	resolver := prompts.NewResolver(prompts.NewStore(h.PromptsDir(), logger), logger)
	analysis.RegisterPrompts(resolver)

	callSink = &appendFile{path: h.CallsPath()}
	s := &svcctx.Services{
		Config:   mgr,
		Registry: registry,
		Logger:   logger,
		Home:     h,
		Prompts:  resolver,
		Recorder: llmcall.NewRecorder(logger, callSink),
		Calls:    llmcall.NewStore(h.CallsPath()),
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(svcctx.WithServices(ctx, s))
	return nil
}

func closeServices() error {
	if callSink == nil {
		return nil
	}
	return callSink.Close()
}

// appendFile is an io.Writer that creates its file and parent directory
// on first write.
type appendFile struct {
	path string

	mu sync.Mutex
	f  *os.File
}

func (a *appendFile) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.f == nil {
		if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
			return 0, err
		}
		f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return 0, err
		}
		a.f = f
	}
	return a.f.Write(p)
}

func (a *appendFile) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.f == nil {
		return nil
	}
	err := a.f.Close()
	a.f = nil
	return err
}

// out returns a structured writer for the command's stdout.
func out(cmd *cobra.Command) (*output.Writer, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.New(cmd.OutOrStdout(), format), nil
}

// printer returns a coloured status printer on stderr.
func printer(cmd *cobra.Command) *render.Printer {
	return render.NewPrinter(cmd.ErrOrStderr())
}

// analysisClient builds an analysis client on the named provider, or the
// configured default when name is empty.
func analysisClient(ctx context.Context, name string) (*analysis.Client, error) {
	s := svcctx.ServicesFrom(ctx)
	if s == nil {
		return nil, fmt.Errorf("services not initialised")
	}
	cfg := s.Config.Get()
	if name == "" {
		name = cfg.Defaults.LLMProvider
	}
	llm, err := s.Registry.GetLLM(name)
	if err != nil {
		return nil, fmt.Errorf("%w (enabled providers: %v; check api_key in %s)", err, s.Registry.ListLLM(), configLocation(s))
	}
	return analysis.NewClient(llm, cfg.AnalysisConfig(),
		analysis.WithLogger(s.Logger),
		analysis.WithResolver(s.Prompts),
		analysis.WithRecorder(s.Recorder),
	), nil
}

func configLocation(s *svcctx.Services) string {
	if f := s.Config.File(); f != "" {
		return f
	}
	return s.Home.ConfigPath()
}

// withRetries runs fn until it succeeds, fails with a non-retryable error or
// the retry budget is spent. retries < 0 uses the configured default.
func withRetries(ctx context.Context, retries int, fn func() error) error {
	if retries < 0 {
		retries = svcctx.ConfigFrom(ctx).Get().Analysis.Retries
	}
	if retries < 0 {
		retries = 0
	}
	logger := svcctx.LoggerFrom(ctx)
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(uint(retries)+1),
		retry.Delay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(analysis.IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("retrying service call", "attempt", n+1, "error", err)
		}),
	)
}
