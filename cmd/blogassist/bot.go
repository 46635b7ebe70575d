package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xaenox/blog-assistant/internal/bot"
)

func newBotCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return runBot(cmd.Context(), a)
		},
	}
}

func runBot(parent context.Context, a *app) error {
	if a.cfg.Telegram.Token == "" {
		return errors.New("telegram token missing; provide telegram.token or TELEGRAM_TOKEN")
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bot.New(a.cfg.Telegram.Token, a.svc, a.persister, a.logger)
	if err != nil {
		a.logger.Error("Failed to create bot", zap.Error(err))
		return err
	}

	a.startEviction(ctx)

	if err := b.Start(ctx); err != nil {
		a.logger.Error("Bot error", zap.Error(err))
		return err
	}
	return nil
}
