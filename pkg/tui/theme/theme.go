package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the browse and chat screens.
type Theme struct {
	Header   lipgloss.Style
	Filters  lipgloss.Style
	Lost     lipgloss.Style
	Found    lipgloss.Style
	Title    lipgloss.Style
	Meta     lipgloss.Style
	Selected lipgloss.Style
	Pager    PagerTheme
	Chat     ChatTheme
	Footer   FooterTheme
}

// PagerTheme styles the page list under the items.
type PagerTheme struct {
	Page    lipgloss.Style
	Current lipgloss.Style
	Count   lipgloss.Style
}

// ChatTheme styles a message thread.
type ChatTheme struct {
	Sender  lipgloss.Style
	Self    lipgloss.Style
	Time    lipgloss.Style
	Text    lipgloss.Style
	Hint    lipgloss.Style
	Compose lipgloss.Style
}

// FooterTheme groups styles used by the bottom status and help lines.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	meta := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)

	return Theme{
		Header:   accent.Underline(true),
		Filters:  meta,
		Lost:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Found:    lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true),
		Title:    lipgloss.NewStyle().Bold(true),
		Meta:     meta,
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
		Pager: PagerTheme{
			Page:    meta,
			Current: accent.Reverse(true),
			Count:   meta.Italic(true),
		},
		Chat: ChatTheme{
			Sender:  lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
			Self:    accent,
			Time:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			Text:    lipgloss.NewStyle().PaddingLeft(2),
			Hint:    meta.Italic(true),
			Compose: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		},
	}
}
