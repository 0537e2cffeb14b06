package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Styles returns the default palette.
func Styles() *Palette {
	return styles
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	border lipgloss.Style
	header lipgloss.Style
}

// NewPalette builds a [Palette] from foreground colors for titles, success, errors, warnings and muted text.
func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		border: NewStyle(h),
		header: NewBold(t).Padding(0, 1),
	}
}

// Title renders a section heading.
func (p *Palette) Title(s string) string { return p.title.Render(s) }

// OK renders a success line.
func (p *Palette) OK(s string) string { return p.ok.Render("✓ " + s) }

// Err renders an error line.
func (p *Palette) Err(s string) string { return p.err.Render("✗ " + s) }

// Warn renders a warning line.
func (p *Palette) Warn(s string) string { return p.warn.Render("! " + s) }

// Muted renders secondary text such as hints and empty states.
func (p *Palette) Muted(s string) string { return p.help.Render(s) }

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
