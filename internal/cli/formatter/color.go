package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// DisableColor renders every style as plain text, for output that is not
// going to a terminal.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// StatusColor returns the style for a progress status label.
func StatusColor(status domain.StatusLabel) lipgloss.Style {
	switch status {
	case domain.StatusCompleted:
		return StyleGreen
	case domain.StatusInProgress, domain.StatusStarted:
		return StyleYellow
	case domain.StatusNotStarted:
		return StyleRed
	default:
		return StyleDim
	}
}

// StatusIndicator returns a colored label such as "● IN PROGRESS".
func StatusIndicator(status domain.StatusLabel) string {
	style := StatusColor(status)
	switch status {
	case domain.StatusCompleted:
		return style.Render("✔ COMPLETED")
	case domain.StatusInProgress:
		return style.Render("● IN PROGRESS")
	case domain.StatusStarted:
		return style.Render("○ STARTED")
	case domain.StatusNotStarted:
		return style.Render("○ NOT STARTED")
	default:
		return style.Render("? UNKNOWN")
	}
}

// LockIndicator renders a gate flag.
func LockIndicator(open bool, openText, closedText string) string {
	if open {
		return StyleGreen.Render("● " + openText)
	}
	return StyleRed.Render("▲ " + closedText)
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
