package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives all human-facing command output. Tests swap it.
var stdout io.Writer = os.Stdout

// Palette, in 256-color codes.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings, e.g. the inspect table title.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleDim renders paths, counts and other secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue renders array names and values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleWarning renders warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// marker is the leading symbol of a status line.
type marker struct {
	icon  string
	style lipgloss.Style
}

var (
	markSuccess = marker{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	markError   = marker{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	markWarning = marker{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	markInfo    = marker{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

// States of a computed array in the stats line.
var (
	stateCached   = marker{"cached", lipgloss.NewStyle().Foreground(colorGreen)}
	stateComputed = marker{"fresh", lipgloss.NewStyle().Foreground(colorGray)}
)

func status(m marker, msg string) {
	fmt.Fprintln(stdout, m.style.Render(m.icon)+" "+msg)
}

func printSuccess(format string, args ...any) { status(markSuccess, fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { status(markError, fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { status(markInfo, fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	status(markWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented dim line under the last status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written artifact path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

// printKeyValue prints one field of a saved array record.
func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats summarizes a computed array, e.g. "polar · 8 items · 1 erased · cached".
func printStats(kind string, items, visible int, cached bool) {
	var parts []string
	if kind != "" {
		parts = append(parts, StyleDim.Render(kind))
	}
	parts = append(parts, StyleDim.Render(fmt.Sprintf("%d items", items)))
	if erased := items - visible; erased > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d erased", erased)))
	}
	state := stateComputed
	if cached {
		state = stateCached
	}
	parts = append(parts, state.style.Render(state.icon))
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(stdout) }
