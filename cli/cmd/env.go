package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/docqa/adapter"
	"github.com/pithecene-io/docqa/adapter/redis"
	"github.com/pithecene-io/docqa/adapter/webhook"
	"github.com/pithecene-io/docqa/cli/config"
	"github.com/pithecene-io/docqa/gateway"
	"github.com/pithecene-io/docqa/gateway/stub"
	"github.com/pithecene-io/docqa/log"
	"github.com/pithecene-io/docqa/metrics"
	"github.com/pithecene-io/docqa/session"
)

// defaultLogLevel keeps one-shot output readable; --log-level overrides.
const defaultLogLevel = "warn"

// defaultAdapterRetries applies when adapter.retries is not configured.
const defaultAdapterRetries = 3

// env is everything a command needs for one session.
type env struct {
	cfg    *config.Config
	sess   *session.Session
	logger *log.Logger
}

// Close logs the session counters and releases the session and logger.
func (e *env) Close() error {
	snap := e.sess.Metrics.Snapshot()
	e.logger.Debug("session closed", map[string]any{
		"backend":           snap.Backend,
		"calls":             snap.Calls,
		"failures":          snap.Failures,
		"transport_failure": snap.TransportFailure,
		"documents_indexed": snap.DocumentsIndexed,
		"questions_asked":   snap.QuestionsAsked,
		"answers_received":  snap.AnswersReceived,
		"notify_failure":    snap.NotifyFailure,
	})
	return errors.Join(e.sess.Close(), e.logger.Close())
}

// loadConfig resolves the config file and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Resolve(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("base-url") {
		cfg.Gateway.BaseURL = c.String("base-url")
	}
	if c.IsSet("timeout") {
		cfg.Gateway.Timeout = config.Duration{Duration: c.Duration("timeout")}
	}
	if c.Bool("stub") {
		cfg.Gateway.Stub = true
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.Log.File = c.String("log-file")
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup builds a session from config and flags. Logs go to logOut unless a
// log file is configured. Failures are returned as config exit errors.
func setup(c *cli.Context, logOut io.Writer) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, configError(err)
	}

	id := uuid.NewString()
	logger, err := log.NewLogger(id, log.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Output:     logOut,
	})
	if err != nil {
		return nil, configError(err)
	}

	gw, backend, err := newGateway(cfg.Gateway)
	if err != nil {
		_ = logger.Close()
		return nil, configError(err)
	}

	ad, err := newAdapter(cfg.Adapter)
	if err != nil {
		_ = logger.Close()
		return nil, configError(err)
	}

	sess, err := session.New(session.Config{
		ID:      id,
		Gateway: gw,
		Logger:  logger,
		Metrics: metrics.NewCollector(id, backend),
		Adapter: ad,
	})
	if err != nil {
		_ = logger.Close()
		return nil, configError(err)
	}

	logger.Debug("session started", map[string]any{"backend": backend, "base_url": cfg.Gateway.BaseURL})
	return &env{cfg: cfg, sess: sess, logger: logger}, nil
}

// newGateway returns the configured gateway and its metrics label.
func newGateway(cfg config.GatewayConfig) (gateway.Gateway, string, error) {
	if cfg.Stub {
		return stub.New(stub.WithLatency(cfg.StubLatency.Duration)), "stub", nil
	}
	client, err := gateway.New(gateway.Config{
		BaseURL: cfg.BaseURL,
		Headers: cfg.Headers,
		Timeout: cfg.Timeout.Duration,
	})
	if err != nil {
		return nil, "", err
	}
	return client, "http", nil
}

// newAdapter returns nil when no adapter is configured.
func newAdapter(cfg config.AdapterConfig) (adapter.Adapter, error) {
	retries := defaultAdapterRetries
	if cfg.Retries != nil {
		retries = *cfg.Retries
	}

	switch cfg.Type {
	case "":
		return nil, nil
	case config.AdapterWebhook:
		return webhook.New(webhook.Config{
			URL:     cfg.URL,
			Headers: cfg.Headers,
			Timeout: cfg.Timeout.Duration,
			Retries: retries,
		})
	case config.AdapterRedis:
		return redis.New(redis.Config{
			URL:     cfg.URL,
			Channel: cfg.Channel,
			Timeout: cfg.Timeout.Duration,
			Retries: retries,
		})
	default:
		return nil, fmt.Errorf("unknown adapter type %q", cfg.Type)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// errWriter is where one-shot commands log.
func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
