package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev      key.Binding
	Next      key.Binding
	First     key.Binding
	Last      key.Binding
	Increment key.Binding
	Decrement key.Binding
	Reset     key.Binding
	New       key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Style     key.Binding
	Copy      key.Binding
	Help      key.Binding
	Quit      key.Binding

	// Title editor
	Save   key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev")),
		Next:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next")),
		First:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
		Last:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
		Increment: key.NewBinding(key.WithKeys("+", "=", "up", "k"), key.WithHelp("+", "add")),
		Decrement: key.NewBinding(key.WithKeys("-", "_", "down", "j"), key.WithHelp("-", "sub")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:      key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "title")),
		Delete:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Style:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "style")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Save:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Increment, k.Decrement, k.Reset, k.New, k.Edit, k.Delete, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.First, k.Last},
		{k.Increment, k.Decrement, k.Reset, k.Style},
		{k.New, k.Edit, k.Delete, k.Copy},
		{k.Help, k.Quit},
	}
}

func (k keyMap) editorHelp() []key.Binding {
	return []key.Binding{k.Save, k.Cancel}
}
