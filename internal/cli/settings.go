package cli

import (
	"context"

	"capital-quiz/internal/app"
	"capital-quiz/internal/audio"
	"capital-quiz/internal/config"
	"capital-quiz/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewSettingsCmd inspects and edits stored settings.
func NewSettingsCmd(configPath *string) *cobra.Command {
	var profile string
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change stored settings",
	}
	cmd.PersistentFlags().StringVar(&profile, "profile", "local", "settings profile")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), *configPath, func(service *app.QuizService) error {
				settings, err := service.Settings(cmd.Context(), profile)
				if err != nil {
					return err
				}
				return printSettings(cmd, settings)
			})
		},
	}

	var (
		difficulty string
		sound      bool
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change difficulty or sound",
		RunE: func(cmd *cobra.Command, args []string) error {
			update := domain.SettingsUpdate{}
			if cmd.Flags().Changed("difficulty") {
				d, err := domain.ParseDifficulty(difficulty)
				if err != nil {
					return err
				}
				update.Difficulty = &d
			}
			if cmd.Flags().Changed("sound") {
				update.SoundEnabled = &sound
			}
			return withService(cmd.Context(), *configPath, func(service *app.QuizService) error {
				settings, _, err := service.UpdateSettings(cmd.Context(), profile, update)
				if err != nil {
					return err
				}
				if err := service.End(cmd.Context(), profile); err != nil {
					return err
				}
				return printSettings(cmd, settings)
			})
		},
	}
	set.Flags().StringVar(&difficulty, "difficulty", "", "Easy, Normal or Hard")
	set.Flags().BoolVar(&sound, "sound", true, "enable sound effects")

	cmd.AddCommand(show, set)
	return cmd
}

func withService(ctx context.Context, configPath string, fn func(*app.QuizService) error) error {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return err
	}
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(newService(st, audio.Nop{}))
}

func printSettings(cmd *cobra.Command, settings domain.Settings) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer enc.Close()
	return enc.Encode(settings)
}
