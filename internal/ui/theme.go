package ui

import (
	"image/color"

	"charm.land/bubbles/v2/table"
	"charm.land/lipgloss/v2"
)

// Theme defines the colors of the editor.
type Theme struct {
	PromptFG    color.Color // Prompt marker
	InputFG     color.Color // Expression text
	CursorFG    color.Color // Cursor cell
	CursorBG    color.Color
	SelectedFG  color.Color // Highlighted candidate
	SelectedBG  color.Color
	DetailFG    color.Color // Candidate type and operator class
	StatusColor color.Color // Normal status text
	StatusError color.Color // Error status text and caret
	HeaderFG    color.Color // Results table header
	HeaderBG    color.Color
	HelpFG      color.Color
}

// DefaultTheme returns the built-in dark palette.
func DefaultTheme() Theme {
	return Theme{
		PromptFG:    lipgloss.Color("12"),
		InputFG:     lipgloss.Color("255"),
		CursorFG:    lipgloss.Color("0"),
		CursorBG:    lipgloss.Color("255"),
		SelectedFG:  lipgloss.Color("0"),
		SelectedBG:  lipgloss.Color("14"),
		DetailFG:    lipgloss.Color("244"),
		StatusColor: lipgloss.Color("248"),
		StatusError: lipgloss.Color("9"),
		HeaderFG:    lipgloss.Color("12"),
		HeaderBG:    lipgloss.Color("236"),
		HelpFG:      lipgloss.Color("240"),
	}
}

type styles struct {
	prompt, input, cursor, selected, detail, status, errorText, help lipgloss.Style
}

func newStyles(th Theme, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			prompt: plain, input: plain, cursor: plain.Reverse(true), selected: plain.Reverse(true),
			detail: plain, status: plain, errorText: plain, help: plain,
		}
	}
	return styles{
		prompt:    lipgloss.NewStyle().Foreground(th.PromptFG).Bold(true),
		input:     lipgloss.NewStyle().Foreground(th.InputFG),
		cursor:    lipgloss.NewStyle().Foreground(th.CursorFG).Background(th.CursorBG),
		selected:  lipgloss.NewStyle().Foreground(th.SelectedFG).Background(th.SelectedBG),
		detail:    lipgloss.NewStyle().Foreground(th.DetailFG),
		status:    lipgloss.NewStyle().Foreground(th.StatusColor),
		errorText: lipgloss.NewStyle().Foreground(th.StatusError),
		help:      lipgloss.NewStyle().Foreground(th.HelpFG),
	}
}

func tableStyles(th Theme, noColor bool) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(0)
	cellStyle := lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	// the table is a preview; no row is highlighted
	s.Selected = cellStyle
	s.Cell = cellStyle
	if noColor {
		s.Header = s.Header.UnsetForeground().UnsetBackground()
	} else {
		s.Header = s.Header.Foreground(th.HeaderFG).Background(th.HeaderBG)
	}
	return s
}
