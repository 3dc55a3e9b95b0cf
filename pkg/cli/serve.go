package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pullhook/pkg/cli/config"
	controller "github.com/m-mizutani/pullhook/pkg/controller/http"
	"github.com/m-mizutani/pullhook/pkg/infra/git"
	"github.com/m-mizutani/pullhook/pkg/infra/metrics"
	"github.com/m-mizutani/pullhook/pkg/usecase"
	"github.com/urfave/cli/v3"
)

type serveConfig struct {
	file    config.ConfigFile
	server  config.Server
	webhook config.Webhook
	sync    config.Sync
	sentry  config.Sentry
	slack   config.Slack
}

func (c *serveConfig) flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, c.file.Flags()...)
	flags = append(flags, c.server.Flags()...)
	flags = append(flags, c.webhook.Flags()...)
	flags = append(flags, c.sync.Flags()...)
	flags = append(flags, c.sentry.Flags()...)
	flags = append(flags, c.slack.Flags()...)
	return flags
}

// resolve merges the config file under flags and environment, then validates
func (c *serveConfig) resolve(cmd *cli.Command) error {
	f, err := c.file.Load()
	if err != nil {
		return err
	}

	c.server.ApplyFile(cmd, f)
	c.webhook.ApplyFile(cmd, f)
	c.sentry.ApplyFile(cmd, f)
	c.slack.ApplyFile(cmd, f)
	if err := c.sync.ApplyFile(cmd, f); err != nil {
		return err
	}

	if err := c.webhook.Validate(); err != nil {
		return err
	}
	return c.sync.Validate()
}

// newServer builds the HTTP server and everything behind it
func (c *serveConfig) newServer(ctx context.Context) (*controller.Server, error) {
	recorder := metrics.NewRecorder()

	executor := git.NewExecutor(
		git.WithBinary(c.sync.GitBinary),
		git.WithRemote(c.sync.Remote),
		git.WithTimeout(c.sync.Timeout),
	)

	opts := []usecase.WebhookOption{usecase.WithSyncRecorder(recorder)}
	if n := c.slack.Notifier(); n != nil {
		opts = append(opts, usecase.WithNotifier(n))
	}

	webhookUC, err := usecase.NewWebhook(usecase.WebhookConfig{
		Secret:     c.webhook.Secret,
		Insecure:   c.webhook.Insecure,
		ProjectDir: c.sync.ProjectDir,
		Branches:   c.sync.Branches,
	}, executor, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create webhook use case")
	}

	server, err := controller.NewServer(
		ctx,
		webhookUC,
		controller.WithAddr(c.server.Addr),
		controller.WithMetrics(recorder),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create HTTP server")
	}
	return server, nil
}

func cmdServe() *cli.Command {
	var cfg serveConfig

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   cfg.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if err := cfg.resolve(c); err != nil {
				return err
			}

			flush, err := cfg.sentry.Configure()
			if err != nil {
				return err
			}
			defer flush()

			if cfg.webhook.Insecure && cfg.webhook.Secret == "" {
				logger.Warn("Signature verification is disabled")
			}

			logger.Info("Starting pullhook server",
				slog.String("addr", cfg.server.Addr),
				slog.Any("webhook", cfg.webhook),
				slog.Any("sync", cfg.sync),
				slog.Any("slack", cfg.slack),
				slog.Any("sentry", cfg.sentry),
			)

			server, err := cfg.newServer(ctx)
			if err != nil {
				return err
			}

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", cfg.server.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "HTTP server stopped unexpectedly")
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-errCh:
				return err
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
