package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"anagramstudy/internal/study"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const releaseVersion = "0.1.0"

func newCmd(cfg *study.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ANAGRAMSTUDY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "anagramstudy",
		Short:         "Terminal client for the anagram word study.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			app, err := study.New(*cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Run(context.Background())
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	defaults := study.DefaultConfig()
	fs.StringVar(&cfg.BackendURL, "backend-url", defaults.BackendURL, "study backend base URL (env: ANAGRAMSTUDY_BACKEND_URL)")
	fs.BoolVar(&cfg.Mock, "mock", false, "run against a built-in mock backend (env: ANAGRAMSTUDY_MOCK)")
	fs.StringVar(&cfg.LogPath, "log-path", "", "JSON-lines diagnostic log file, empty disables (env: ANAGRAMSTUDY_LOG_PATH)")
	fs.BoolVar(&cfg.ASCIIOnly, "ascii", false, "draw with plain ASCII only (env: ANAGRAMSTUDY_ASCII)")
	fs.BoolVar(&cfg.Debug, "debug", false, "verbose UI logging to stderr (env: ANAGRAMSTUDY_DEBUG)")
	fs.StringVar(&cfg.SurveyURL, "survey-url", defaults.SurveyURL, "post-game survey URL (env: ANAGRAMSTUDY_SURVEY_URL)")
	fs.StringVar(&cfg.SurveyCode, "survey-code", defaults.SurveyCode, "expected survey completion code (env: ANAGRAMSTUDY_SURVEY_CODE)")
	fs.IntVar(&cfg.InactivityThresholdSeconds, "inactivity-threshold", defaults.InactivityThresholdSeconds, "seconds without input before the participant counts as idle (env: ANAGRAMSTUDY_INACTIVITY_THRESHOLD)")
	fs.StringVar(&cfg.UI.StyleVariant, "style", defaults.UI.StyleVariant, "color theme: calm_blue, warm_paper, high_contrast (env: ANAGRAMSTUDY_STYLE)")
	fs.StringVar(&cfg.UI.MotionLevel, "motion", defaults.UI.MotionLevel, "animation level: full, reduced, off (env: ANAGRAMSTUDY_MOTION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("anagramstudy v{{.Version}}\n")
	cmd.SilenceUsage = true

	return cmd
}

func main() {
	log.SetFlags(0)
	cfg := &study.Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}
