package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"capital-quiz/internal/audio"
	"capital-quiz/internal/config"
	transport "capital-quiz/internal/transport/http"
	"capital-quiz/internal/transport/telegram"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Serve the WebSocket bridge (and the Telegram bot when a token is set)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	// remote renderers play their own sounds
	service := newService(st, audio.Nop{})
	mux := transport.NewMux(transport.NewWSHandler(service), transport.NewQRHandler(cfg.Server.PublicURL))

	var bot *telegram.Bot
	if token := telegramToken(cfg); token != "" {
		bot, err = telegram.NewBot(token, service)
		if err != nil {
			return err
		}
		// idle chats expire together with their redis liveness key
		bot.SetIdleTimeout(config.TTLDuration(cfg.Redis.TTL, telegram.DefaultIdleTimeout))
	}

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Printf("starting quiz server on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if bot != nil {
		group.Go(func() error {
			return bot.Run(ctx)
		})
	}

	return group.Wait()
}

func telegramToken(cfg config.Config) string {
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		return token
	}
	return cfg.Telegram.Token
}
