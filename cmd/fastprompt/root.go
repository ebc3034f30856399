package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leofalp/fastprompt/core/client"
	"github.com/leofalp/fastprompt/core/client/middleware"
	"github.com/leofalp/fastprompt/internal/config"
	"github.com/leofalp/fastprompt/providers/observability/slogobs"
)

var Version = "dev"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	provider   string
	model      string
	timeout    time.Duration
	logLevel   string
	payloadLog string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "fastprompt",
		Version: Version,
		Short:   "Send prompts to OpenAI or Gemini and get normalized JSON back",
		Long: `fastprompt sends a system prompt and a user prompt, optionally with an
image, to a chat or vision model and prints a normalized result: the parsed
output, token usage and the request echo.

Credentials come from OPENAI_API_KEY and GEMINI_API_KEY; a .env file in the
working directory is loaded automatically.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&opts.provider, "provider", "", "provider to use: openai or gemini")
	flags.StringVar(&opts.model, "model", "", "model identifier (defaults per provider)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout, e.g. 30s")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn or error")
	flags.StringVar(&opts.payloadLog, "payload-log", "", "log each request: minimal, standard or verbose")

	cmd.AddCommand(newChatCmd(opts), newBatchCmd(opts))
	return cmd
}

// newClient builds a client from the config file, the environment and the
// flags, in increasing precedence. A non-empty provider overrides all three.
func (o *rootOptions) newClient(logOutput io.Writer, provider string) (*client.Client, error) {
	cfg, err := config.Load(o.configPath, firstNonEmpty(provider, o.provider))
	if err != nil {
		return nil, err
	}

	if o.model != "" {
		if err = cfg.SetModel(o.model); err != nil {
			return nil, err
		}
	}
	if o.timeout > 0 {
		if err = cfg.SetTimeout(o.timeout); err != nil {
			return nil, err
		}
	}

	adapter, err := cfg.NewAdapter()
	if err != nil {
		return nil, err
	}

	obsOpts := []slogobs.Option{
		slogobs.WithOutput(logOutput),
		slogobs.WithFormat(slogobs.ParseFormat(cfg.LogFormat)),
	}
	if level := firstNonEmpty(o.logLevel, cfg.LogLevel); level != "" {
		parsed, err := slogobs.ParseLogLevel(level)
		if err != nil {
			return nil, err
		}
		obsOpts = append(obsOpts, slogobs.WithLevel(parsed))
	}
	observer := slogobs.New(obsOpts...)

	clientOpts := []client.Option{client.WithObserver(observer)}
	if o.payloadLog != "" {
		level, err := parsePayloadLog(o.payloadLog)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts, client.WithMiddleware(middleware.NewLoggingMiddleware(observer.Logger(), level)))
	}

	return client.New(adapter, clientOpts...)
}

func parsePayloadLog(value string) (middleware.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "minimal":
		return middleware.LogLevelMinimal, nil
	case "standard":
		return middleware.LogLevelStandard, nil
	case "verbose":
		return middleware.LogLevelVerbose, nil
	}
	return 0, fmt.Errorf("unknown payload log level %q", value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
