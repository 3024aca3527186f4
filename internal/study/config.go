package study

import (
	"fmt"
	"net/url"
)

// Config controls runtime behavior for the participant client.
type Config struct {
	BackendURL string
	Mock       bool
	LogPath    string
	ASCIIOnly  bool
	Debug      bool

	SurveyURL  string
	SurveyCode string

	// Seconds without input before the participant counts as inactive.
	InactivityThresholdSeconds int

	UI UIConfig
}

type UIConfig struct {
	StyleVariant string
	MotionLevel  string
}

func DefaultConfig() Config {
	return Config{
		BackendURL:                 "http://127.0.0.1:8000",
		SurveyURL:                  "https://example.com/survey",
		SurveyCode:                 "12345",
		InactivityThresholdSeconds: 5,
		UI: UIConfig{
			StyleVariant: "calm_blue",
			MotionLevel:  "full",
		},
	}
}

func (c *Config) Validate() error {
	if !c.Mock {
		u, err := url.Parse(c.BackendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid backend URL %q", c.BackendURL)
		}
	}
	if c.SurveyCode == "" {
		return fmt.Errorf("survey completion code must not be empty")
	}
	if c.InactivityThresholdSeconds <= 0 {
		c.InactivityThresholdSeconds = 5
	}
	switch c.UI.StyleVariant {
	case "", "calm_blue", "warm_paper", "high_contrast":
	default:
		return fmt.Errorf("invalid ui style variant %q", c.UI.StyleVariant)
	}
	if c.UI.StyleVariant == "" {
		c.UI.StyleVariant = "calm_blue"
	}
	switch c.UI.MotionLevel {
	case "", "off", "reduced", "full":
	default:
		return fmt.Errorf("invalid ui motion level %q", c.UI.MotionLevel)
	}
	if c.UI.MotionLevel == "" {
		c.UI.MotionLevel = "full"
	}
	return nil
}
