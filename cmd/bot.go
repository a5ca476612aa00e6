package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	telegram "board-finder/internal/api"
)

func newBotCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Long: `Runs the Telegram bot until interrupted.

Requires TELEGRAM_TOKEN. A photo sent in the main menu is looked up in the
catalog; /register starts collecting frames of a new sample.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.TelegramToken == "" {
				return errors.New("TELEGRAM_TOKEN is required")
			}

			app, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			bot, err := telegram.NewBot(opts.cfg.TelegramToken, app)
			if err != nil {
				return err
			}

			slog.Info("Bot is running...")
			return bot.Run(cmd.Context())
		},
	}
}
