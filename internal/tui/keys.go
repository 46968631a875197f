package tui

import "github.com/charmbracelet/bubbles/key"

type boardKeyMap struct {
	Quit       key.Binding
	NextColumn key.Binding
	MoveLeft   key.Binding
	MoveRight  key.Binding
	Up         key.Binding
	Down       key.Binding
	Delete     key.Binding
	New        key.Binding
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextColumn, k.MoveLeft, k.MoveRight, k.New, k.Delete, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextColumn},
		{k.MoveLeft, k.MoveRight},
		{k.New, k.Delete, k.Quit},
	}
}

type editorKeyMap struct {
	Submit      key.Binding
	ToggleField key.Binding
	Cancel      key.Binding
	Newline     key.Binding
	Backspace   key.Binding
}

func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.ToggleField, k.Newline, k.Cancel}
}

func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.ToggleField}, {k.Newline, k.Backspace, k.Cancel}}
}

func defaultBoardKeys() boardKeyMap {
	return boardKeyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		NextColumn: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next column")),
		MoveLeft:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "move back")),
		MoveRight:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "move on")),
		Up:         key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:       key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		New:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
	}
}

func defaultEditorKeys() editorKeyMap {
	return editorKeyMap{
		Submit:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		ToggleField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch field")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Newline:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "newline")),
		Backspace:   key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "erase")),
	}
}
