package ui

import "charm.land/lipgloss/v2"

type Theme struct {
	Header       lipgloss.Style
	Status       lipgloss.Style
	PanelBorder  lipgloss.Style
	PanelBody    lipgloss.Style
	Accent       lipgloss.Style
	Valid        lipgloss.Style
	Invalid      lipgloss.Style
	Muted        lipgloss.Style
	Timer        lipgloss.Style
	TimerLow     lipgloss.Style
	Notification lipgloss.Style
	LetterPool   lipgloss.Style
	LetterPicked lipgloss.Style
}

func DefaultTheme() Theme {
	return calmBlueTheme()
}

func ThemeForVariant(variant string) Theme {
	switch variant {
	case "warm_paper":
		return warmPaperTheme()
	case "high_contrast":
		return highContrastTheme()
	default:
		return DefaultTheme()
	}
}

func calmBlueTheme() Theme {
	ink := lipgloss.Color("#101826")
	slate := lipgloss.Color("#22304A")
	powder := lipgloss.Color("#EAF2FF")
	blue := lipgloss.Color("#6AC2FF")
	mint := lipgloss.Color("#6FE6A8")
	rose := lipgloss.Color("#FF7A95")
	amber := lipgloss.Color("#FFCE63")
	border := lipgloss.Color("#46598A")

	return Theme{
		Header:       lipgloss.NewStyle().Background(ink).Foreground(powder).Padding(0, 1),
		Status:       lipgloss.NewStyle().Background(slate).Foreground(powder).Padding(0, 1),
		PanelBorder:  lipgloss.NewStyle().Foreground(border),
		PanelBody:    lipgloss.NewStyle().Foreground(powder),
		Accent:       lipgloss.NewStyle().Foreground(blue).Bold(true),
		Valid:        lipgloss.NewStyle().Foreground(mint).Bold(true),
		Invalid:      lipgloss.NewStyle().Foreground(rose).Bold(true),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("#93A3C4")),
		Timer:        lipgloss.NewStyle().Foreground(blue).Bold(true),
		TimerLow:     lipgloss.NewStyle().Foreground(rose).Bold(true),
		Notification: lipgloss.NewStyle().Foreground(amber).Bold(true),
		LetterPool:   lipgloss.NewStyle().Foreground(powder).Bold(true),
		LetterPicked: lipgloss.NewStyle().Foreground(amber).Bold(true),
	}
}

func warmPaperTheme() Theme {
	night := lipgloss.Color("#241E18")
	bark := lipgloss.Color("#3A3228")
	paper := lipgloss.Color("#F6EFE3")
	honey := lipgloss.Color("#E9B872")
	sage := lipgloss.Color("#86C79C")
	clay := lipgloss.Color("#D87A6A")

	return Theme{
		Header:       lipgloss.NewStyle().Background(night).Foreground(paper).Padding(0, 1),
		Status:       lipgloss.NewStyle().Background(bark).Foreground(paper).Padding(0, 1),
		PanelBorder:  lipgloss.NewStyle().Foreground(bark),
		PanelBody:    lipgloss.NewStyle().Foreground(paper),
		Accent:       lipgloss.NewStyle().Foreground(honey).Bold(true),
		Valid:        lipgloss.NewStyle().Foreground(sage).Bold(true),
		Invalid:      lipgloss.NewStyle().Foreground(clay).Bold(true),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("#B5A893")),
		Timer:        lipgloss.NewStyle().Foreground(honey).Bold(true),
		TimerLow:     lipgloss.NewStyle().Foreground(clay).Bold(true),
		Notification: lipgloss.NewStyle().Foreground(honey).Bold(true),
		LetterPool:   lipgloss.NewStyle().Foreground(paper).Bold(true),
		LetterPicked: lipgloss.NewStyle().Foreground(honey).Bold(true),
	}
}

func highContrastTheme() Theme {
	black := lipgloss.Color("#000000")
	grey := lipgloss.Color("#1C1C1C")
	white := lipgloss.Color("#FFFFFF")
	yellow := lipgloss.Color("#FFFF00")
	green := lipgloss.Color("#00FF66")
	red := lipgloss.Color("#FF4040")

	return Theme{
		Header:       lipgloss.NewStyle().Background(black).Foreground(white).Padding(0, 1),
		Status:       lipgloss.NewStyle().Background(grey).Foreground(white).Padding(0, 1),
		PanelBorder:  lipgloss.NewStyle().Foreground(white),
		PanelBody:    lipgloss.NewStyle().Foreground(white),
		Accent:       lipgloss.NewStyle().Foreground(yellow).Bold(true),
		Valid:        lipgloss.NewStyle().Foreground(green).Bold(true),
		Invalid:      lipgloss.NewStyle().Foreground(red).Bold(true),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("#BBBBBB")),
		Timer:        lipgloss.NewStyle().Foreground(yellow).Bold(true),
		TimerLow:     lipgloss.NewStyle().Foreground(red).Bold(true),
		Notification: lipgloss.NewStyle().Foreground(yellow).Bold(true),
		LetterPool:   lipgloss.NewStyle().Foreground(white).Bold(true),
		LetterPicked: lipgloss.NewStyle().Foreground(yellow).Bold(true),
	}
}
