// Command verifiable-tweet composes a tweet and posts it through the
// verifiable Twitter subagent.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	subagent "github.com/anatolykoptev/go-twitter-subagent"
	"github.com/anatolykoptev/go-twitter-subagent/action"
	"github.com/anatolykoptev/go-twitter-subagent/llm"
	"github.com/anatolykoptev/go-twitter-subagent/settings"
)

// Opts with all cli flags
type Opts struct {
	Settings string `long:"settings" env:"TWITTER_SUBAGENT_SETTINGS" description:"YAML settings file"`
	Endpoint string `long:"endpoint" description:"subagent URL or unix socket path, overrides the settings file"`
	DryRun   string `long:"dry-run" env:"TWITTER_DRY_RUN" description:"log the tweet instead of posting when \"true\""`

	Text       string `long:"text" description:"post this text instead of generating one"`
	Agent      string `long:"agent" default:"agent" description:"agent name used in the prompt"`
	Context    string `long:"context" description:"recent conversation rendered into the prompt"`
	Topics     string `long:"topics" description:"topics rendered into the prompt"`
	Directions string `long:"directions" description:"post directions rendered into the prompt"`

	LLM struct {
		APIKey  string `long:"api-key" env:"OPENAI_API_KEY" description:"API key"`
		BaseURL string `long:"base-url" env:"OPENAI_BASE_URL" description:"OpenAI-compatible API base URL"`
		Model   string `long:"model" env:"SMALL_MODEL" description:"model used for tweet generation"`
	} `group:"llm" namespace:"llm"`

	Attempts       int           `long:"attempts" default:"1" description:"post attempts on transport failure or timeout"`
	PostsPerWindow int           `long:"posts-per-window" description:"cap on posts per rate-limit window, 0 for none"`
	Timeout        time.Duration `long:"timeout" default:"2m" description:"overall deadline"`

	JSONLog bool `long:"json-log" description:"log as JSON"`
	Dbg     bool `long:"dbg" env:"DEBUG" description:"debug mode"`
}

// hostRuntime is the action runtime backed by a settings store.
type hostRuntime struct {
	store  *settings.Store
	logger *slog.Logger
	gen    llm.Generator
}

func (r *hostRuntime) Setting(name string) string { return r.store.Setting(name) }
func (r *hostRuntime) Logger() *slog.Logger       { return r.logger }
func (r *hostRuntime) Generator() llm.Generator   { return r.gen }

func main() {
	var opts Opts
	p := flags.NewParser(&opts, flags.Default)
	if _, err := p.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	logger := setupLog(opts.JSONLog, opts.Dbg)
	if err := run(opts, logger); err != nil {
		logger.Error("verifiable-tweet failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(opts Opts, logger *slog.Logger) error {
	store, err := settings.Load(opts.Settings)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if opts.Endpoint != "" {
		store.Set(action.SettingSubagentURL, opts.Endpoint)
	}

	var gen llm.Generator = llm.Static{Text: opts.Text}
	if opts.Text == "" {
		gen = llm.NewChatGenerator(llm.ChatConfig{
			APIKey:     opts.LLM.APIKey,
			BaseURL:    opts.LLM.BaseURL,
			SmallModel: opts.LLM.Model,
			Logger:     logger,
		})
	}
	rt := &hostRuntime{store: store, logger: logger, gen: gen}

	plugin := action.NewPlugin(action.Options{
		DryRun:         action.ParseDryRun(opts.DryRun),
		Retry:          subagent.RetryConfig{MaxAttempts: opts.Attempts},
		PostsPerWindow: opts.PostsPerWindow,
	})
	post, _ := plugin.Action(action.PostActionName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	msg := action.Message{Text: opts.Context}
	state := &action.State{
		AgentName:      opts.Agent,
		RecentMessages: opts.Context,
		Topics:         opts.Topics,
		PostDirections: opts.Directions,
	}

	if !post.Validate(ctx, rt, msg, state) {
		return fmt.Errorf("%s not configured: %w", plugin.Name, action.MissingSettings(rt))
	}
	if !post.Handle(ctx, rt, msg, state) {
		return errors.New("tweet was not posted")
	}
	return nil
}

func setupLog(jsonLog, dbg bool) *slog.Logger {
	level := slog.LevelInfo
	if dbg {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level, AddSource: dbg}

	var h slog.Handler = slog.NewTextHandler(os.Stderr, hopts)
	if jsonLog {
		h = slog.NewJSONHandler(os.Stderr, hopts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}
