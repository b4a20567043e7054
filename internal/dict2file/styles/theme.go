// Package styles holds the terminal presentation of dict2file: the banner,
// the closing summary and the markdown style used to list dictionaries.
package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
)

// EntryColor is the golden tone dictionary entries are printed in.
const EntryColor = "#EACD53"

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(charmtone.Zest.Hex())).
			Background(lipgloss.Color(charmtone.Charple.Hex())).
			Padding(0, 1)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Squid.Hex()))
	countStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(charmtone.Guac.Hex()))
	pathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Malibu.Hex()))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Zest.Hex()))
	entryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(EntryColor))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(charmtone.Cheeky.Hex()))
)

// Banner is printed once before the first module is scanned.
func Banner(version string) string {
	return bannerStyle.Render("dict2file") + " " +
		dimStyle.Render(version+" · extracting comparison constants into a fuzzing dictionary")
}

// Summary reports the outcome of a run.
func Summary(entries int, path string) string {
	if entries == 0 {
		return warnStyle.Render("No entries found for a dictionary.")
	}
	noun := "entries"
	if entries == 1 {
		noun = "entry"
	}
	return fmt.Sprintf("%s %s %s %s",
		dimStyle.Render("[+] Wrote"),
		countStyle.Render(fmt.Sprint(entries)),
		dimStyle.Render("dictionary "+noun+" to"),
		pathStyle.Render(path))
}

// Entry styles one rendered dictionary literal.
func Entry(s string) string { return entryStyle.Render(s) }

// Error styles a fatal error line.
func Error(err error) string { return errorStyle.Render("error: ") + err.Error() }
