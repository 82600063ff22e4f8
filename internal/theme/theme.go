// Package theme renders the annotation color palette selected by the
// --theme flag, replacing the teacher's on/off-only text-color stub with an
// actual ANSI palette built on lipgloss.
package theme

import "github.com/charmbracelet/lipgloss"

// Name identifies a palette.
type Name string

const (
	// Light is the default palette, tuned for light-background terminals.
	Light Name = "light"
	// Dark is tuned for dark-background terminals.
	Dark Name = "dark"
)

// Palette holds the rendering styles for each annotation kind the terminal
// engine prints.
type Palette struct {
	Outgoing lipgloss.Style
	Incoming lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Status   lipgloss.Style
	Detail   lipgloss.Style
}

// New builds the Palette for the named theme. An unrecognized name falls
// back to Light.
func New(name Name) Palette {
	if name == Dark {
		return Palette{
			Outgoing: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
			Incoming: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
			Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
			Detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		}
	}

	return Palette{
		Outgoing: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		Incoming: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		Detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("0")),
	}
}

// Parse converts a --theme flag value into a Name, defaulting to Light for
// any unrecognized value.
func Parse(s string) Name {
	if Name(s) == Dark {
		return Dark
	}
	return Light
}
