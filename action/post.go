// Package action implements the POST_VERIFIABLE_TWEET agent action: it
// composes a tweet with the runtime's generator and posts it through the
// verifiable Twitter subagent.
package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-stealth/ratelimit"
	"github.com/hashicorp/go-multierror"

	subagent "github.com/anatolykoptev/go-twitter-subagent"
	"github.com/anatolykoptev/go-twitter-subagent/llm"
)

// Setting names read from the runtime.
const (
	SettingConsumerKey       = "TWITTER_CONSUMER_KEY"
	SettingConsumerSecret    = "TWITTER_CONSUMER_SECRET"
	SettingAccessToken       = "TWITTER_ACCESS_TOKEN"
	SettingAccessTokenSecret = "TWITTER_ACCESS_TOKEN_SECRET"
	SettingMaxTweetLength    = "MAX_TWEET_LENGTH"
	SettingSubagentURL       = "TWITTER_SUBAGENT_URL"
)

// EnvDryRun is the environment variable hosts read into Options.DryRun.
const EnvDryRun = "TWITTER_DRY_RUN"

// DefaultMaxTweetLength is the platform limit. Truncation only applies
// when MAX_TWEET_LENGTH is set.
const DefaultMaxTweetLength = 280

const (
	PostActionName = "POST_VERIFIABLE_TWEET"

	// rateLimitKey is the limiter bucket shared by all posts of one action.
	rateLimitKey = "tweet"
	// upstreamRateLimitPause blocks posting after the subagent reports a
	// platform rate limit.
	upstreamRateLimitPause = 15 * time.Minute
)

var credentialSettings = []string{
	SettingConsumerKey,
	SettingConsumerSecret,
	SettingAccessToken,
	SettingAccessTokenSecret,
}

// PosterFactory builds the poster for one Handle call.
type PosterFactory func(cfg subagent.ClientConfig) (subagent.Poster, error)

// Options configures a post action.
type Options struct {
	// DryRun logs the composed tweet instead of posting it.
	DryRun bool

	// NewPoster overrides how the subagent client is built.
	// Default: subagent.NewClient
	NewPoster PosterFactory

	// Retry wraps the poster in subagent.Retrier when MaxAttempts > 1.
	Retry subagent.RetryConfig

	// PostsPerWindow caps posts per rate-limit window. 0 disables the cap.
	PostsPerWindow int
}

// ParseDryRun reports whether v enables dry run: "true" in any case.
func ParseDryRun(v string) bool {
	return strings.EqualFold(v, "true")
}

// ExampleMessage is one turn of an example conversation.
type ExampleMessage struct {
	User   string
	Text   string
	Action string
}

// Action is the POST_VERIFIABLE_TWEET action.
type Action struct {
	Name        string
	Similes     []string
	Description string
	Examples    [][]ExampleMessage

	opts    Options
	limiter *ratelimit.Limiter
}

// NewPostAction creates the post action.
func NewPostAction(opts Options) *Action {
	if opts.NewPoster == nil {
		opts.NewPoster = func(cfg subagent.ClientConfig) (subagent.Poster, error) {
			return subagent.NewClient(cfg)
		}
	}
	a := &Action{
		Name:        PostActionName,
		Similes:     []string{PostActionName},
		Description: "Post a tweet to Twitter",
		Examples:    postExamples,
		opts:        opts,
	}
	if opts.PostsPerWindow > 0 {
		cfg := ratelimit.DefaultConfig
		cfg.RequestsPerWindow = opts.PostsPerWindow
		a.limiter = ratelimit.NewLimiter(cfg)
	}
	return a
}

// MissingSettings returns an error naming every credential setting that
// is unset or empty, or nil when all are present.
func MissingSettings(rt Runtime) error {
	var result *multierror.Error
	for _, name := range credentialSettings {
		if rt.Setting(name) == "" {
			result = multierror.Append(result, fmt.Errorf("missing setting %s", name))
		}
	}
	return result.ErrorOrNil()
}

// Validate reports whether all four credential settings are present.
func (a *Action) Validate(_ context.Context, rt Runtime, _ Message, _ *State) bool {
	return MissingSettings(rt) == nil
}

// Handle composes a tweet and posts it. Every failure is logged and
// reported as false; it never returns an error or panics.
func (a *Action) Handle(ctx context.Context, rt Runtime, msg Message, state *State) (ok bool) {
	logger := runtimeLogger(rt).With(slog.String("action", a.Name))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("post: handler panic", slog.Any("panic", r))
			ok = false
		}
	}()

	if err := a.handle(ctx, rt, msg, state, logger); err != nil {
		logger.Error("post: failed", slog.Any("error", err))
		return false
	}
	return true
}

func (a *Action) handle(ctx context.Context, rt Runtime, _ Message, state *State, logger *slog.Logger) error {
	poster, err := a.newPoster(rt, logger)
	if err != nil {
		return err
	}

	text, err := a.compose(ctx, rt, state, logger)
	if err != nil {
		return fmt.Errorf("compose tweet: %w", err)
	}
	if text == "" {
		return errors.New("no content generated for tweet")
	}
	logger.Info("post: generated tweet content", slog.String("text", text))

	if a.opts.DryRun {
		logger.Info("post: dry run, would have posted tweet", slog.String("text", text))
		return nil
	}

	if a.limiter != nil {
		if a.limiter.IsRateLimited(rateLimitKey) {
			return fmt.Errorf("post rate limited until %s", a.limiter.AvailableAt(rateLimitKey).Format(time.RFC3339))
		}
		if !a.limiter.Allow(rateLimitKey) {
			return errors.New("post rate limit reached")
		}
	}

	report, err := poster.PostTweet(ctx, text)
	if err != nil {
		a.noteUpstreamRateLimit(err)
		return err
	}
	logger.Info("post: attestation report", slog.String("report", report.String()))
	return nil
}

func (a *Action) newPoster(rt Runtime, logger *slog.Logger) (subagent.Poster, error) {
	cfg := subagent.ClientConfig{
		Credentials: subagent.Credentials{
			ConsumerKey:       rt.Setting(SettingConsumerKey),
			ConsumerSecret:    rt.Setting(SettingConsumerSecret),
			AccessToken:       rt.Setting(SettingAccessToken),
			AccessTokenSecret: rt.Setting(SettingAccessTokenSecret),
		},
		Endpoint: rt.Setting(SettingSubagentURL),
		Logger:   logger,
	}
	poster, err := a.opts.NewPoster(cfg)
	if err != nil {
		return nil, fmt.Errorf("create subagent client: %w", err)
	}
	if a.opts.Retry.MaxAttempts > 1 {
		poster = subagent.NewRetrier(poster, a.opts.Retry, logger)
	}
	return poster, nil
}

// compose generates the tweet text. Output that fails the schema check is
// logged and yields "" rather than an error.
func (a *Action) compose(ctx context.Context, rt Runtime, state *State, logger *slog.Logger) (string, error) {
	gen := rt.Generator()
	if gen == nil {
		return "", errors.New("runtime has no generator")
	}

	prompt, err := composePrompt(state)
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	obj, err := gen.GenerateObject(ctx, llm.Request{
		Prompt:     prompt,
		Schema:     TweetSchema,
		Stop:       []string{"\n"},
		ModelClass: llm.ModelSmall,
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	content, err := parseTweetContent(obj)
	if err != nil {
		logger.Error("post: invalid tweet content", slog.Any("error", err), slog.String("object", string(obj)))
		return "", nil
	}

	text := strings.TrimSpace(content.Text)
	if limit, err := strconv.Atoi(rt.Setting(SettingMaxTweetLength)); err == nil && limit > 0 {
		text = TruncateToCompleteSentence(text, limit)
	}
	return text, nil
}

// noteUpstreamRateLimit pauses posting when the subagent reports that
// the platform rejected the post for rate limiting.
func (a *Action) noteUpstreamRateLimit(err error) {
	if a.limiter == nil {
		return
	}
	var upstream *subagent.UpstreamError
	if !errors.As(err, &upstream) {
		return
	}
	msg := strings.ToLower(upstream.Message)
	if upstream.Code == 429 || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests") {
		a.limiter.MarkRateLimited(rateLimitKey, time.Now().Add(upstreamRateLimitPause))
	}
}
