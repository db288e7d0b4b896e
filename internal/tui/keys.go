package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit, Tab, ShiftTab, Enter, Escape key.Binding

	// Accounts tab
	New, Delete, Rename, Filter key.Binding

	Up, Down key.Binding

	// Reports tab
	Left, Right, Period, Refresh key.Binding

	// Journal
	NewEntry, Reverse key.Binding
}

// bind labels a binding with its first key.
func bind(desc string, ks ...string) key.Binding {
	return key.NewBinding(key.WithKeys(ks...), key.WithHelp(ks[0], desc))
}

var keys = keyMap{
	Quit:     bind("quit", "q", "ctrl+c"),
	Tab:      bind("switch", "tab"),
	ShiftTab: bind("back", "shift+tab"),
	Enter:    bind("details", "enter"),
	Escape:   bind("back", "esc"),

	New:    bind("new", "n"),
	Delete: bind("delete", "d"),
	Rename: bind("rename", "r"),
	Filter: bind("filter", "f"),

	Up:   bind("up", "up", "k"),
	Down: bind("down", "down", "j"),

	Left:    bind("prev report", "left", "h"),
	Right:   bind("next report", "right", "l"),
	Period:  bind("period", "p"),
	Refresh: bind("refresh", "ctrl+r"),

	NewEntry: bind("new entry", "t"),
	Reverse:  bind("reverse", "x"),
}

// helpLine renders bindings as "key:desc" pairs.
func helpLine(bs ...key.Binding) string {
	parts := make([]string, 0, len(bs))
	for _, b := range bs {
		h := b.Help()
		parts = append(parts, h.Key+":"+h.Desc)
	}
	return strings.Join(parts, "  ")
}
