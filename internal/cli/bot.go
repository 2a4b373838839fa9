package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"capital-quiz/internal/audio"
	"capital-quiz/internal/config"
	"capital-quiz/internal/transport/telegram"
	"github.com/spf13/cobra"
)

// NewBotCmd runs only the Telegram front end.
func NewBotCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the quiz as a Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(*configPath)
			if err != nil {
				return err
			}
			token := telegramToken(cfg)
			if token == "" {
				return fmt.Errorf("TELEGRAM_BOT_TOKEN or telegram.token is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			bot, err := telegram.NewBot(token, newService(st, audio.Nop{}))
			if err != nil {
				return err
			}
			bot.SetIdleTimeout(config.TTLDuration(cfg.Redis.TTL, telegram.DefaultIdleTimeout))
			return bot.Run(ctx)
		},
	}
}
