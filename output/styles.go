package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Color constants - Dracula theme
const (
	colorCurrentLine = "#44475a"
	colorForeground  = "#f8f8f2"
	colorComment     = "#6272a4"
	colorCyan        = "#8be9fd"
	colorGreen       = "#50fa7b"
	colorOrange      = "#ffb86c"
	colorPurple      = "#bd93f9"
	colorRed         = "#ff5555"
	colorYellow      = "#f1fa8c"
)

// Common string constants and section formatting
const (
	separatorLine = "─────────────────────────────────────"

	runTitleFormat = "Gardening run %s"
	dryRunSuffix   = " (dry run)"
	summaryText    = "%d repositories | %d actions | %d failures | Elapsed: %s"

	repoSuccessFormat = "✓ %s"
	repoErrorFormat   = "✗ %s"
	repoStatsFormat   = "%d pull requests, %d actions"
	failureFormat     = "! %s"

	noActionsText = "nothing to do"
)

// -- Common style constructors

// creates a function that wraps styles to a specified width
func wrapStyleFunc(width int) func(style ...lipgloss.Style) lipgloss.Style {
	return func(styles ...lipgloss.Style) lipgloss.Style {
		var style lipgloss.Style
		if len(styles) > 0 {
			style = styles[0]
		} else {
			style = lipgloss.NewStyle()
		}

		return style.Width(width - 4).MarginLeft(2)
	}
}

// create a common style with the given foreground color
func color(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// summaryStyles contains styles for the run summary and the listings
type summaryStyles struct {
	wrap func(style ...lipgloss.Style) lipgloss.Style

	title     lipgloss.Style
	separator lipgloss.Style

	repoSuccess lipgloss.Style
	repoError   lipgloss.Style
	stats       lipgloss.Style

	rule    lipgloss.Style
	action  lipgloss.Style
	failure lipgloss.Style
	dryRun  lipgloss.Style

	status lipgloss.Style
}

func newSummaryStyles(width int, plain bool) summaryStyles {
	if plain {
		none := lipgloss.NewStyle()

		return summaryStyles{
			wrap:        wrapStyleFunc(width),
			title:       none,
			separator:   none,
			repoSuccess: none,
			repoError:   none,
			stats:       none,
			rule:        none,
			action:      none,
			failure:     none,
			dryRun:      none,
			status:      none,
		}
	}

	return summaryStyles{
		wrap: wrapStyleFunc(width),

		title:     color(colorCyan).Bold(true),
		separator: color(colorCurrentLine),

		repoSuccess: color(colorGreen).Bold(true),
		repoError:   color(colorRed).Bold(true),
		stats:       color(colorComment),

		rule:    color(colorPurple),
		action:  color(colorForeground),
		failure: color(colorOrange),
		dryRun:  color(colorYellow).Italic(true),

		status: color(colorPurple).Italic(true),
	}
}
