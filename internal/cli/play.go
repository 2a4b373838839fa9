package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"capital-quiz/internal/app"
	"capital-quiz/internal/audio"
	"capital-quiz/internal/config"
	"capital-quiz/internal/domain"
	"capital-quiz/internal/transport/terminal"
	"github.com/spf13/cobra"
)

// NewPlayCmd plays the quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		profile    string
		difficulty string
		mute       bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in this terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(*configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			var sounds app.SoundPlayer = audio.Nop{}
			if !mute {
				sounds = localSounds(cfg)
			}
			service := newService(st, sounds)

			if difficulty != "" {
				if err := applyDifficulty(ctx, service, profile, difficulty); err != nil {
					return err
				}
			}
			return terminal.NewGame(service, profile, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "local", "settings profile")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Easy, Normal or Hard (saved to settings)")
	cmd.Flags().BoolVar(&mute, "mute", false, "do not open the audio device")
	return cmd
}

func applyDifficulty(ctx context.Context, service *app.QuizService, profile, raw string) error {
	d, err := domain.ParseDifficulty(raw)
	if err != nil {
		return err
	}
	_, _, err = service.UpdateSettings(ctx, profile, domain.SettingsUpdate{Difficulty: &d})
	return err
}
